package handler

import (
	"crm-engine/internal/api/handler/dto"
	"crm-engine/internal/assistant"
	"crm-engine/internal/domain/customer"
	"crm-engine/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

type ChatHandler struct {
	assistant *assistant.Assistant
	service   customer.RecordService
	logger    *slog.Logger
}

func NewChatHandler(a *assistant.Assistant, s customer.RecordService, l *slog.Logger) *ChatHandler {
	if a == nil {
		panic("assistant cannot be nil")
	}
	if s == nil {
		panic("record service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &ChatHandler{
		assistant: a,
		service:   s,
		logger:    l.With("component", "ChatHandler"),
	}
}

// Chat handles POST /chat
// @Summary Ask the assistant about the record table
// @Description Forwards the message, the prior turns and a summary of the current table snapshot to the completion provider. Read-only: the table is never mutated.
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Message plus prior conversation turns"
// @Success 200 {object} dto.ChatResponse "Assistant reply"
// @Failure 400 {object} dto.ErrorResponse "Empty message or invalid payload"
// @Failure 502 {object} dto.ErrorResponse "The completion provider failed"
// @Failure 500 {object} dto.ErrorResponse "Unexpected error"
// @Router /chat [post]
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received chat request")

	var req dto.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.logger.WarnContext(r.Context(), "Validation failed: message is empty")
		respondError(w, fmt.Errorf("%w: message cannot be empty", apperrors.ErrInvalidArgument))
		return
	}

	rows := h.service.Snapshot(r.Context())

	reply, err := h.assistant.Chat(r.Context(), req.Message, rows, req.History)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrRemote) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Assistant failed to produce a reply", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Chat reply produced", slog.Int("replyLen", len(reply)))
	respondJSON(w, http.StatusOK, dto.ChatResponse{Reply: reply})
}
