package dto

import "crm-engine/internal/assistant"

type ChatRequest struct {
	Message string           `json:"message"`
	History []assistant.Turn `json:"history"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}
