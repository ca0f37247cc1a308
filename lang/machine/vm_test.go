package machine_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucernalang/lucerna/lang/compiler"
	"github.com/lucernalang/lucerna/lang/machine"
	"github.com/lucernalang/lucerna/lang/parser"
	"github.com/lucernalang/lucerna/lang/resolver"
)

func run(t *testing.T, src string) machine.Value {
	t.Helper()
	chunk, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	res := resolver.Analyze(chunk)
	prog, err := compiler.Compile(chunk, res)
	require.NoError(t, err)
	rt := machine.NewRuntime(&bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{})
	v, err := machine.Execute(prog.Code, rt)
	require.NoError(t, err)
	return v
}

// The six end-to-end scenarios exercise the full pipeline: scanning,
// parsing, scope analysis, compiling and executing.

func TestIntegerAddition(t *testing.T) {
	v := run(t, `var x = 1 + 2 return x`)
	assert.Equal(t, machine.Int(3), v)
}

func TestNumericPromotionToFloat(t *testing.T) {
	v := run(t, `var x = 1 var y = 2.0 var z = x + y return z`)
	assert.Equal(t, machine.Float(3.0), v)
}

func TestFunctionCallReturnsSum(t *testing.T) {
	v := run(t, `
func add(a, b)
	return a + b
end
return add(2, 3)
`)
	assert.Equal(t, machine.Int(5), v)
}

func TestClosureCapturesSharedCell(t *testing.T) {
	v := run(t, `
var c = 0
func inc()
	c = c + 1
	return c
end
inc()
inc()
return inc()
`)
	assert.Equal(t, machine.Int(3), v)
}

func TestTableFieldAssignAndRead(t *testing.T) {
	v := run(t, `
var t = {a = 1, b = 2}
t.a = 10
return t.a
`)
	assert.Equal(t, machine.Int(10), v)
}

func TestWhileLoopCounts(t *testing.T) {
	v := run(t, `
var i = 0
while i < 3 do
	i = i + 1
end
return i
`)
	assert.Equal(t, machine.Int(3), v)
}

func TestTableLiteralLaterKeyWins(t *testing.T) {
	v := run(t, `
var t = {a = 1, a = 2}
return t.a
`)
	assert.Equal(t, machine.Int(2), v)
}

func TestAndOrNotShortCircuit(t *testing.T) {
	assert.Equal(t, machine.Bool(false), run(t, `return true and false`))
	assert.Equal(t, machine.Bool(true), run(t, `return false or true`))
	assert.Equal(t, machine.Bool(false), run(t, `return not true`))
	assert.Equal(t, machine.Bool(true), run(t, `return not false`))
}

func TestIfElseBranches(t *testing.T) {
	v := run(t, `
var x = 0
if true then
	x = 1
else
	x = 2
end
return x
`)
	assert.Equal(t, machine.Int(1), v)

	v = run(t, `
var x = 0
if false then
	x = 1
else
	x = 2
end
return x
`)
	assert.Equal(t, machine.Int(2), v)
}

func TestConcat(t *testing.T) {
	v := run(t, `return "a" .. 1 .. true .. nil`)
	assert.Equal(t, machine.String("a1truenil"), v)
}

func TestArrayLiteralAndIndex(t *testing.T) {
	v := run(t, `
var a = [1, 2, 3]
a[1] = 20
return a[1]
`)
	assert.Equal(t, machine.Int(20), v)
}

func TestDivisionByIntTruncates(t *testing.T) {
	v := run(t, `return 7 / 2`)
	assert.Equal(t, machine.Int(3), v)
}

func TestPowIntIntErrors(t *testing.T) {
	chunk, err := parser.Parse([]byte(`return 2 ^ 3`))
	require.NoError(t, err)
	res := resolver.Analyze(chunk)
	prog, err := compiler.Compile(chunk, res)
	require.NoError(t, err)
	rt := machine.NewRuntime(&bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{})
	_, err = machine.Execute(prog.Code, rt)
	assert.Error(t, err)
}
