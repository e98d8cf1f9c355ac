package roles

import (
	"context"
	"fmt"
	"time"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
)

// Caller performs one model round-trip for a role.
type Caller struct {
	llm     output.LLMPort
	timeout time.Duration
	logger  output.LoggerPort
	metrics output.MetricsPort
}

func NewCaller(llm output.LLMPort, timeout time.Duration, logger output.LoggerPort, metrics output.MetricsPort) *Caller {
	return &Caller{llm: llm, timeout: timeout, logger: logger, metrics: metrics}
}

// Call claims the snapshot, sends the role prompt plus userText and the
// screenshot, and returns the raw reply. Every failure, including the per-call
// timeout, is a TransportFault.
func (c *Caller) Call(ctx context.Context, tmpl RoleTemplate, userText string, snapshot *entity.Snapshot) (string, error) {
	if err := snapshot.Claim(); err != nil {
		return "", entity.NewFault(entity.TransportFault, tmpl.Role, err)
	}

	user := entity.Message{Role: entity.RoleUser, Content: userText}
	if uri := snapshot.DataURI(); uri != "" {
		user.ImageURLs = []string{uri}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.llm.Chat(callCtx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: tmpl.Prompt},
			user,
		},
		Temperature: tmpl.Temperature,
		TopP:        tmpl.TopP,
		MaxTokens:   tmpl.MaxTokens,
	})
	elapsed := time.Since(start)
	c.metrics.ObserveModelCall(tmpl.Role, elapsed, err)

	if err != nil {
		c.logger.Warn("Model call failed", "role", tmpl.Role, "duration", elapsed, "error", err)
		return "", entity.NewFault(entity.TransportFault, tmpl.Role, fmt.Errorf("model call: %w", err))
	}

	raw := resp.Message.Content
	c.logger.Info("Model call completed", "role", tmpl.Role, "duration", elapsed, "raw_len", len(raw))
	c.logger.Debug("Model raw response", "role", tmpl.Role, "raw", raw)
	return raw, nil
}
