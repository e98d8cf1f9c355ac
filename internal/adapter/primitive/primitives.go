package primitive

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
)

type Limits struct {
	MaxSleep     time.Duration
	MaxTextLen   int
	MaxComboKeys int
	MaxRepeat    int
}

func DefaultLimits() Limits {
	return Limits{
		MaxSleep:     5 * time.Second,
		MaxTextLen:   2000,
		MaxComboKeys: 4,
		MaxRepeat:    20,
	}
}

// RegisterAll installs the four allow-listed primitives.
func RegisterAll(reg output.PrimitiveRegistry, actuator output.ActuatorPort, limits Limits, logger output.LoggerPort) {
	reg.Register(NewHotkeyPrimitive(actuator, limits, logger))
	reg.Register(NewWritePrimitive(actuator, limits, logger))
	reg.Register(NewPressPrimitive(actuator, limits, logger))
	reg.Register(NewSleepPrimitive(limits, logger))
}

type HotkeyPrimitive struct {
	actuator output.ActuatorPort
	limits   Limits
	logger   output.LoggerPort
}

func NewHotkeyPrimitive(actuator output.ActuatorPort, limits Limits, logger output.LoggerPort) *HotkeyPrimitive {
	return &HotkeyPrimitive{actuator: actuator, limits: limits, logger: logger}
}

func (p *HotkeyPrimitive) Name() entity.Primitive { return entity.PrimitiveHotkey }
func (p *HotkeyPrimitive) Description() string {
	return "hotkey('ctrl', 'l') presses the keys together and releases them in reverse order"
}

func (p *HotkeyPrimitive) Validate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("hotkey needs at least one key")
	}
	if len(args) > p.limits.MaxComboKeys {
		return fmt.Errorf("hotkey accepts at most %d keys, got %d", p.limits.MaxComboKeys, len(args))
	}
	_, err := normalizeAll(args)
	return err
}

func (p *HotkeyPrimitive) Execute(ctx context.Context, args []string) error {
	keys, err := normalizeAll(args)
	if err != nil {
		return err
	}
	p.logger.Debug("Primitive hotkey", "keys", keys)
	return p.actuator.Hotkey(ctx, keys...)
}

type WritePrimitive struct {
	actuator output.ActuatorPort
	limits   Limits
	logger   output.LoggerPort
}

func NewWritePrimitive(actuator output.ActuatorPort, limits Limits, logger output.LoggerPort) *WritePrimitive {
	return &WritePrimitive{actuator: actuator, limits: limits, logger: logger}
}

func (p *WritePrimitive) Name() entity.Primitive { return entity.PrimitiveWrite }
func (p *WritePrimitive) Description() string {
	return "write('text') types literal text into the focused element"
}

func (p *WritePrimitive) Validate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("write takes exactly one argument, got %d", len(args))
	}
	text := args[0]
	if !utf8.ValidString(text) {
		return fmt.Errorf("write text is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(text); n > p.limits.MaxTextLen {
		return fmt.Errorf("write text is %d characters, limit %d", n, p.limits.MaxTextLen)
	}
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return fmt.Errorf("write text contains control character %U", r)
		}
	}
	return nil
}

func (p *WritePrimitive) Execute(ctx context.Context, args []string) error {
	p.logger.Debug("Primitive write", "length", len(args[0]))
	return p.actuator.Write(ctx, args[0])
}

type PressPrimitive struct {
	actuator output.ActuatorPort
	limits   Limits
	logger   output.LoggerPort
}

func NewPressPrimitive(actuator output.ActuatorPort, limits Limits, logger output.LoggerPort) *PressPrimitive {
	return &PressPrimitive{actuator: actuator, limits: limits, logger: logger}
}

func (p *PressPrimitive) Name() entity.Primitive { return entity.PrimitivePress }
func (p *PressPrimitive) Description() string {
	return "press('enter') taps one key; press('tab', 3) taps it repeatedly"
}

func (p *PressPrimitive) Validate(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("press takes a key and an optional count, got %d arguments", len(args))
	}
	if _, ok := NormalizeKey(args[0]); !ok {
		return fmt.Errorf("key %q is not allowed", args[0])
	}
	_, err := p.repeat(args)
	return err
}

func (p *PressPrimitive) repeat(args []string) (int, error) {
	if len(args) < 2 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("press count %q is not an integer", args[1])
	}
	if n < 1 || n > p.limits.MaxRepeat {
		return 0, fmt.Errorf("press count %d outside 1..%d", n, p.limits.MaxRepeat)
	}
	return n, nil
}

func (p *PressPrimitive) Execute(ctx context.Context, args []string) error {
	key, _ := NormalizeKey(args[0])
	n, err := p.repeat(args)
	if err != nil {
		return err
	}
	p.logger.Debug("Primitive press", "key", key, "count", n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.actuator.Press(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

type SleepPrimitive struct {
	limits Limits
	logger output.LoggerPort
}

func NewSleepPrimitive(limits Limits, logger output.LoggerPort) *SleepPrimitive {
	return &SleepPrimitive{limits: limits, logger: logger}
}

func (p *SleepPrimitive) Name() entity.Primitive { return entity.PrimitiveSleep }
func (p *SleepPrimitive) Description() string {
	return fmt.Sprintf("sleep(0.5) waits the given seconds, at most %s", p.limits.MaxSleep)
}

// Interruptible lets cancellation cut a sleep short; no input is held.
func (p *SleepPrimitive) Interruptible() bool { return true }

func (p *SleepPrimitive) Validate(args []string) error {
	_, err := p.duration(args)
	return err
}

func (p *SleepPrimitive) duration(args []string) (time.Duration, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("sleep takes exactly one argument, got %d", len(args))
	}
	secs, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("sleep duration %q is not a number", args[0])
	}
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, fmt.Errorf("sleep duration %q is not finite", args[0])
	}
	// compare in seconds; huge values overflow time.Duration
	if secs < 0 || secs > p.limits.MaxSleep.Seconds() {
		return 0, fmt.Errorf("sleep %.2fs outside 0..%s", secs, p.limits.MaxSleep)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func (p *SleepPrimitive) Execute(ctx context.Context, args []string) error {
	d, err := p.duration(args)
	if err != nil {
		return err
	}
	p.logger.Debug("Primitive sleep", "duration", d)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func normalizeAll(args []string) ([]string, error) {
	keys := make([]string, 0, len(args))
	for _, a := range args {
		k, ok := NormalizeKey(a)
		if !ok {
			return nil, fmt.Errorf("key %q is not allowed", a)
		}
		keys = append(keys, k)
	}
	return keys, nil
}
