package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"crm-engine/internal/config"
	"crm-engine/internal/pkg/apperrors"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the narrow contract against the completion provider: one blocking
// round trip, no retry, no streaming.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type OpenAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	logger      *slog.Logger
}

var _ Client = (*OpenAIClient)(nil)

func NewOpenAIClient(cfg config.AssistantConfig, logger *slog.Logger) *OpenAIClient {
	if logger == nil {
		panic("logger cannot be nil")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger.With(slog.String("component", "OpenAIClient"), slog.String("model", cfg.Model)),
	}
}

// Complete posts the conversation to the chat-completions endpoint and
// returns the trimmed first choice. Provider-side rejections surface as
// remote errors, distinct from transport or decoding failures.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.apiKey == "" {
		return "", apperrors.WrapRemoteError(fmt.Errorf("API key not configured"), "assistant API key not configured")
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Completion request failed", slog.Any("error", err))
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "Provider rejected completion request", slog.Int("status", resp.StatusCode))
		return "", apperrors.WrapRemoteError(
			fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body)),
			"completion provider rejected the request",
		)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", apperrors.WrapRemoteError(
			fmt.Errorf("API error: %s", parsed.Error.Message),
			"completion provider returned an error",
		)
	}
	if len(parsed.Choices) == 0 {
		return "", apperrors.WrapRemoteError(fmt.Errorf("no completion returned"), "completion provider returned no choices")
	}

	reply := strings.TrimSpace(parsed.Choices[0].Message.Content)
	c.logger.DebugContext(ctx, "Completion finished", slog.Duration("elapsed", time.Since(start)), slog.Int("replyLen", len(reply)))
	return reply, nil
}
