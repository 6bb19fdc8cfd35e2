package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotDefined(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		line  int
		quiet bool
		want  string
	}{
		{"x", "main.js", 12, false, `"x" is not defined in main.js:12`},
		{"x", "main.js", 12, true, `"x" is not defined in 12`},
		{"x", "", 12, false, `"x" is not defined in 12`},
	}

	for _, tt := range tests {
		got := NotDefined(tt.name, tt.file, tt.line, tt.quiet)
		assert.Equal(t, tt.want, got)
	}
}

func TestKindsImplementEngineError(t *testing.T) {
	errs := []EngineError{
		&SyntaxError{Msg: "bad token"},
		&TypeError{Msg: "not a function"},
		&ReferenceError{Msg: "x is not defined"},
		&RangeError{Msg: "invalid array length"},
		&CompileError{Msg: "bad jump"},
		&RuntimeError{Msg: "uncaught"},
		&InternalError{Msg: "opcode mismatch"},
		&MemoryError{Msg: "out of memory"},
	}

	for _, e := range errs {
		assert.NotEmpty(t, e.Message(), e.Kind())
		assert.NotEmpty(t, e.Error(), e.Kind())
	}
}

func TestPositionCarriedThroughError(t *testing.T) {
	e := &TypeError{Position: Position{File: "a.js", Line: 3, Column: 5}, Msg: "nope"}
	assert.Equal(t, "a.js", e.Pos().File)
	assert.Equal(t, 3, e.Pos().Line)
	assert.Contains(t, e.Error(), "nope")
}
