package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucernalang/lucerna/lang/parser"
	"github.com/lucernalang/lucerna/lang/resolver"
)

func compile(t *testing.T, src string) []Code {
	t.Helper()
	chunk, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	res := resolver.Analyze(chunk)
	prog, err := Compile(chunk, res)
	require.NoError(t, err)
	return prog.Code
}

func ops(code []Code) []Op {
	out := make([]Op, len(code))
	for i, c := range code {
		out[i] = c.Op
	}
	return out
}

func TestCompileNoUnpatchedJumps(t *testing.T) {
	code := compile(t, `
var i = 0
while i < 3 do
	if i == 1 then
		i = i + 10
	else
		i = i + 1
	end
end
return i
`)
	for _, c := range code {
		if c.Op == OpJump {
			assert.NotZero(t, c.Offset, "unpatched jump reached finalized code")
		}
	}
}

func TestCompileTableLitReverseEmission(t *testing.T) {
	code := compile(t, `return {a = 1, b = 2}`)
	// Entries compile in reverse declaration order, so "b" is pushed first.
	var names []string
	for _, c := range code {
		if c.Op == OpLoadString {
			names = append(names, c.Str)
		}
	}
	require.Len(t, names, 2)
	assert.Equal(t, "b", names[0])
	assert.Equal(t, "a", names[1])
}

func TestCompileSelfAssignmentDoesNotEscapeAsCapture(t *testing.T) {
	code := compile(t, `
func f()
	var y = 1
	y = 2
	return y
end
return f()
`)
	// f captures nothing: y is entirely local, even though the resolver's
	// always-capture rule records an assignment-triggered capture for it.
	for _, c := range code {
		assert.NotEqual(t, OpAddCapture, c.Op)
	}
}

func TestCompileClosureCapturesOuterLocal(t *testing.T) {
	code := compile(t, `
var c = 0
func inc()
	c = c + 1
	return c
end
return inc()
`)
	found := false
	for _, c := range code {
		if c.Op == OpAddCapture {
			found = true
			assert.Equal(t, 0, c.ID)
		}
	}
	assert.True(t, found, "expected inc to capture c")
}

func TestCompileUndefinedNameErrors(t *testing.T) {
	chunk, err := parser.Parse([]byte(`return undefined_name`))
	require.NoError(t, err)
	res := resolver.Analyze(chunk)
	_, err = Compile(chunk, res)
	assert.Error(t, err)
}

func TestCompileIfWithoutElse(t *testing.T) {
	code := compile(t, `
var x = 0
if true then
	x = 1
end
return x
`)
	opList := ops(code)
	assert.Contains(t, opList, OpJumpIfFalse)
}
