package output

import (
	"context"

	"gui-agent/internal/domain/entity"
)

type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages    []entity.Message
	Temperature float32
	TopP        float32
	MaxTokens   int
}

type ChatResponse struct {
	Message          entity.Message
	PromptTokens     int
	CompletionTokens int
}
