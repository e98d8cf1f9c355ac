package envelope

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"gui-agent/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Objects returns the balanced top-level {...} substrings of raw in order of
// appearance. Braces inside JSON string literals do not count, so
// `{"script": "write('}')"}` is returned whole. An opening brace that is
// never closed is skipped and scanning resumes right after it.
func Objects(raw string) []string {
	var out []string
	for pos := 0; pos < len(raw); {
		obj, start, next := scanObject(raw, pos)
		if start < 0 {
			break
		}
		if obj == "" {
			pos = start + 1
			continue
		}
		out = append(out, obj)
		pos = next
	}
	return out
}

// scanObject finds the first '{' at or after pos and returns the balanced
// object starting there, or "" when it is never closed.
func scanObject(raw string, pos int) (obj string, start, next int) {
	start = -1
	for i := pos; i < len(raw); i++ {
		if raw[i] == '{' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", -1, len(raw)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], start, i + 1
			}
		}
	}
	return "", start, len(raw)
}

// decodeFirst unmarshals the first object in raw that is valid JSON. Each
// candidate decodes into a fresh T so a broken object cannot leak fields
// into the one after it.
func decodeFirst[T any](raw string) (T, error) {
	var zero T
	objects := Objects(raw)
	if len(objects) == 0 {
		return zero, entity.ErrNoStructuredObject
	}
	var firstErr error
	for _, obj := range objects {
		var v T
		err := json.Unmarshal([]byte(obj), &v)
		if err == nil {
			return v, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return zero, fmt.Errorf("%w: %v", entity.ErrNoStructuredObject, firstErr)
}
