package dryrun

import (
	"context"
	"strings"
	"sync"

	"gui-agent/internal/application/port/output"
)

var _ output.ActuatorPort = (*Actuator)(nil)

// Actuator records and logs input instead of injecting it. Used for
// rehearsal runs against a live model without touching the desktop.
type Actuator struct {
	mu     sync.Mutex
	events []string
	logger output.LoggerPort
}

func New(logger output.LoggerPort) *Actuator {
	return &Actuator{logger: logger.WithField("actuator", "dry_run")}
}

func (a *Actuator) Hotkey(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.record("hotkey " + strings.Join(keys, "+"))
	a.logger.Info("Dry run hotkey", "keys", keys)
	return nil
}

func (a *Actuator) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.record("write " + text)
	a.logger.Info("Dry run write", "chars", len(text))
	return nil
}

func (a *Actuator) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.record("press " + key)
	a.logger.Info("Dry run press", "key", key)
	return nil
}

// Events returns the recorded input in order.
func (a *Actuator) Events() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.events))
	copy(out, a.events)
	return out
}

func (a *Actuator) record(e string) {
	a.mu.Lock()
	a.events = append(a.events, e)
	a.mu.Unlock()
}
