package actionrunner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gui-agent/internal/domain/entity"
)

func TestParse(t *testing.T) {
	src := "import pyautogui, time\n" +
		"# focus the address bar\n" +
		"pyautogui.hotkey('ctrl', 'l')\n" +
		"time.sleep(0.5)\n" +
		`write("a;b # not a comment"); press('tab', 2)` + "\n" +
		"typewrite('it\\'s')\n"

	script, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, script.Statements, 5)

	assert.Equal(t, entity.Statement{Primitive: entity.PrimitiveHotkey, Args: []string{"ctrl", "l"}, Line: 3}, script.Statements[0])
	assert.Equal(t, []string{"0.5"}, script.Statements[1].Args)
	assert.Equal(t, []string{"a;b # not a comment"}, script.Statements[2].Args)
	assert.Equal(t, entity.PrimitivePress, script.Statements[3].Primitive)
	assert.Equal(t, []string{"tab", "2"}, script.Statements[3].Args)
	assert.Equal(t, entity.PrimitiveWrite, script.Statements[4].Primitive)
	assert.Equal(t, []string{"it's"}, script.Statements[4].Args)
}

func TestParseRoundTripsEntityCall(t *testing.T) {
	src := entity.Sequence(
		entity.Call(entity.PrimitiveWrite, "say \"hi\"\\ \n now"),
		entity.Call(entity.PrimitiveSleep, "0.25"),
	)
	script, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, script.Statements, 2)
	assert.Equal(t, "say \"hi\"\\ \n now", script.Statements[0].Args[0])
	assert.Equal(t, "0.25", script.Statements[1].Args[0])
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown call", "os.system('rm -rf /')"},
		{"exec", "exec('print(1)')"},
		{"bad import", "import os"},
		{"from import", "from pyautogui import press"},
		{"keyword argument", "press('tab', presses=3)"},
		{"name argument", "write(secret)"},
		{"missing paren", "press('enter'"},
		{"trailing junk", "press('enter') press('tab')"},
		{"unterminated", "write('abc)"},
		{"newline in string", "write('a\nb')"},
		{"bad escape", `write('\x41')`},
		{"attribute call", "pyautogui.moveTo(1, 2)"},
		{"stray char", "press('a') + press('b')"},
		{"assignment", "x = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Positive(t, pe.Line)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	script, err := Parse("\n# nothing\n;;\n")
	require.NoError(t, err)
	assert.Empty(t, script.Statements)
}
