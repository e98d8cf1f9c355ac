package actionrunner

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokLParen
	tokRParen
	tokComma
	tokSep
	tokAssign
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of script"
	case tokIdent:
		return "name"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokSep:
		return "statement separator"
	case tokAssign:
		return "'='"
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string
	line int
}

// lex splits a script into tokens. Newlines and ';' both separate
// statements; '#' starts a comment that runs to the end of the line.
func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	line := 1
	for i := 0; i < len(rs); {
		c := rs[i]
		switch {
		case c == '\n':
			toks = append(toks, token{tokSep, "\n", line})
			line++
			i++
		case c == ';':
			toks = append(toks, token{tokSep, ";", line})
			i++
		case c == '#':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case unicode.IsSpace(c):
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", line})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", line})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ",", line})
			i++
		case c == '=':
			toks = append(toks, token{tokAssign, "=", line})
			i++
		case c == '"' || c == '\'':
			s, n, err := lexString(rs[i:])
			if err != nil {
				return nil, &ParseError{Line: line, Msg: err.Error()}
			}
			toks = append(toks, token{tokString, s, line})
			i += n
		case c == '-' || c == '.' || unicode.IsDigit(c):
			j := i + 1
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			text := string(rs[i:j])
			if text == "-" || text == "." {
				return nil, &ParseError{Line: line, Msg: fmt.Sprintf("unexpected %q", text)}
			}
			toks = append(toks, token{tokNumber, text, line})
			i = j
		case c == '_' || unicode.IsLetter(c):
			j := i + 1
			for j < len(rs) && (rs[j] == '_' || rs[j] == '.' || unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j])) {
				j++
			}
			toks = append(toks, token{tokIdent, string(rs[i:j]), line})
			i = j
		default:
			return nil, &ParseError{Line: line, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{tokEOF, "", line})
	return toks, nil
}

// lexString reads a quoted literal starting at rs[0] and returns its value
// and the number of runes consumed.
func lexString(rs []rune) (string, int, error) {
	quote := rs[0]
	var b strings.Builder
	for i := 1; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\n':
			return "", 0, fmt.Errorf("unterminated string")
		case c == '\\':
			i++
			if i >= len(rs) {
				return "", 0, fmt.Errorf("unterminated string")
			}
			switch rs[i] {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			case '\\', '\'', '"':
				b.WriteRune(rs[i])
			default:
				return "", 0, fmt.Errorf("unknown escape \\%c", rs[i])
			}
		default:
			b.WriteRune(c)
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}
