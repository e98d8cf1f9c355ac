package openrouter

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"gui-agent/internal/application/port/output"
)

var _ output.LLMPort = (*RateLimitedLLM)(nil)

type LimitConfig struct {
	RequestsPerMinute float64
	MaxConcurrent     int
}

func DefaultLimitConfig() LimitConfig {
	return LimitConfig{RequestsPerMinute: 60, MaxConcurrent: 4}
}

type RateLimitStats struct {
	Allowed  int64
	Waited   int64
	Rejected int64
	WaitTime time.Duration
}

// RateLimitedLLM wraps any LLMPort with a request-rate limiter and a
// concurrency cap. One instance is shared by every run in the process, so
// all of its state is safe for concurrent use.
type RateLimitedLLM struct {
	inner     output.LLMPort
	limiter   *rate.Limiter
	semaphore chan struct{}
	logger    output.LoggerPort

	allowed  atomic.Int64
	waited   atomic.Int64
	rejected atomic.Int64
	waitNs   atomic.Int64
}

func NewRateLimitedLLM(inner output.LLMPort, cfg LimitConfig, logger output.LoggerPort) *RateLimitedLLM {
	l := &RateLimitedLLM{inner: inner, logger: logger}
	if cfg.RequestsPerMinute > 0 {
		burst := int(cfg.RequestsPerMinute / 60.0 * 2)
		if burst < 1 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60.0), burst)
	}
	if cfg.MaxConcurrent > 0 {
		l.semaphore = make(chan struct{}, cfg.MaxConcurrent)
	}
	return l
}

func (l *RateLimitedLLM) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	start := time.Now()
	if err := l.acquire(ctx); err != nil {
		l.rejected.Add(1)
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}
	defer l.release()

	if waited := time.Since(start); waited > 100*time.Millisecond {
		l.waited.Add(1)
		l.waitNs.Add(int64(waited))
		l.logger.Debug("Model call delayed by rate limit", "waited", waited)
	}
	l.allowed.Add(1)

	return l.inner.Chat(ctx, req)
}

func (l *RateLimitedLLM) acquire(ctx context.Context) error {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if l.semaphore != nil {
		select {
		case l.semaphore <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (l *RateLimitedLLM) release() {
	if l.semaphore != nil {
		<-l.semaphore
	}
}

func (l *RateLimitedLLM) Stats() RateLimitStats {
	return RateLimitStats{
		Allowed:  l.allowed.Load(),
		Waited:   l.waited.Load(),
		Rejected: l.rejected.Load(),
		WaitTime: time.Duration(l.waitNs.Load()),
	}
}
