package output

import "context"

// ActuatorPort injects synthetic input into the controlled surface. Key names
// are the normalized lower-case names accepted by the script primitives.
type ActuatorPort interface {
	Hotkey(ctx context.Context, keys ...string) error
	Write(ctx context.Context, text string) error
	Press(ctx context.Context, key string) error
}
