package entity

import "strings"

// Primitive is one of the allow-listed operations a script may call.
type Primitive string

const (
	PrimitiveHotkey Primitive = "hotkey"
	PrimitiveWrite  Primitive = "write"
	PrimitivePress  Primitive = "press"
	PrimitiveSleep  Primitive = "sleep"
)

// Statement is a single parsed call. Args keep their literal text; numbers
// are not converted until the primitive validates them.
type Statement struct {
	Primitive Primitive `json:"primitive"`
	Args      []string  `json:"args"`
	Line      int       `json:"line"`
}

type Script struct {
	Statements []Statement `json:"statements"`
}

// Call renders a single statement in script syntax. String arguments are
// always quoted, so Call(PrimitiveSleep, "0.5") yields sleep("0.5"), which
// the sleep primitive accepts.
func Call(p Primitive, args ...string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = Quote(a)
	}
	return string(p) + "(" + strings.Join(quoted, ", ") + ")"
}

// Sequence joins statements with "; ".
func Sequence(stmts ...string) string {
	return strings.Join(stmts, "; ")
}

// Quote renders s as a double-quoted script literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
