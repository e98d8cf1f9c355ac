package actionrunner

import (
	"fmt"
	"strings"

	"gui-agent/internal/domain/entity"
)

type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// qualified names accepted for each primitive, as emitted by models trained
// on desktop automation snippets
var callNames = map[string]entity.Primitive{
	"hotkey":              entity.PrimitiveHotkey,
	"pyautogui.hotkey":    entity.PrimitiveHotkey,
	"write":               entity.PrimitiveWrite,
	"typewrite":           entity.PrimitiveWrite,
	"pyautogui.write":     entity.PrimitiveWrite,
	"pyautogui.typewrite": entity.PrimitiveWrite,
	"press":               entity.PrimitivePress,
	"pyautogui.press":     entity.PrimitivePress,
	"sleep":               entity.PrimitiveSleep,
	"time.sleep":          entity.PrimitiveSleep,
}

// import lines naming these modules are accepted and ignored
var knownModules = map[string]bool{
	"pyautogui": true,
	"time":      true,
}

// Parse turns script text into statements. It checks syntax and names only;
// argument validation belongs to the primitives.
func Parse(src string) (entity.Script, error) {
	toks, err := lex(src)
	if err != nil {
		return entity.Script{}, err
	}
	p := &parser{toks: toks}
	return p.program()
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorf(t, "expected %s, found %s", kind, describe(t))
	}
	return t, nil
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &ParseError{Line: t.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) program() (entity.Script, error) {
	var script entity.Script
	for {
		for p.peek().kind == tokSep {
			p.next()
		}
		if p.peek().kind == tokEOF {
			return script, nil
		}

		stmt, ok, err := p.statement()
		if err != nil {
			return entity.Script{}, err
		}
		if ok {
			script.Statements = append(script.Statements, stmt)
		}

		if t := p.peek(); t.kind != tokSep && t.kind != tokEOF {
			return entity.Script{}, p.errorf(t, "expected end of statement, found %s", describe(t))
		}
	}
}

// statement returns ok=false for accepted import lines.
func (p *parser) statement() (entity.Statement, bool, error) {
	name, err := p.expect(tokIdent)
	if err != nil {
		return entity.Statement{}, false, err
	}

	if name.text == "import" {
		return entity.Statement{}, false, p.imports()
	}
	if name.text == "from" {
		return entity.Statement{}, false, p.errorf(name, "from-imports are not allowed")
	}

	prim, ok := callNames[name.text]
	if !ok {
		return entity.Statement{}, false, p.errorf(name, "%q is not an allowed operation", name.text)
	}

	if _, err := p.expect(tokLParen); err != nil {
		return entity.Statement{}, false, err
	}

	stmt := entity.Statement{Primitive: prim, Line: name.line, Args: []string{}}
	if p.peek().kind == tokRParen {
		p.next()
		return stmt, true, nil
	}
	for {
		arg := p.next()
		switch arg.kind {
		case tokString, tokNumber:
			stmt.Args = append(stmt.Args, arg.text)
		case tokIdent:
			if p.peek().kind == tokAssign {
				return entity.Statement{}, false, p.errorf(arg, "keyword argument %q is not supported", arg.text)
			}
			return entity.Statement{}, false, p.errorf(arg, "arguments must be literals, found name %q", arg.text)
		default:
			return entity.Statement{}, false, p.errorf(arg, "expected argument, found %s", describe(arg))
		}

		t := p.next()
		switch t.kind {
		case tokComma:
			continue
		case tokRParen:
			return stmt, true, nil
		default:
			return entity.Statement{}, false, p.errorf(t, "expected ',' or ')', found %s", describe(t))
		}
	}
}

func (p *parser) imports() error {
	for {
		mod, err := p.expect(tokIdent)
		if err != nil {
			return err
		}
		if !knownModules[mod.text] {
			return p.errorf(mod, "import of %q is not allowed", mod.text)
		}
		if p.peek().kind != tokComma {
			return nil
		}
		p.next()
	}
}

func describe(t token) string {
	switch t.kind {
	case tokIdent, tokNumber:
		return fmt.Sprintf("%s %q", t.kind, t.text)
	case tokString:
		return "string literal"
	case tokSep:
		if strings.TrimSpace(t.text) == "" {
			return "end of line"
		}
	}
	return t.kind.String()
}
