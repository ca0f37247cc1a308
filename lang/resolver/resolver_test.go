package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lucernalang/lucerna/lang/parser"
)

func analyzeSource(t *testing.T, src string) *Result {
	t.Helper()
	chunk, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	return Analyze(chunk)
}

func TestTopLevelDefinitions(t *testing.T) {
	res := analyzeSource(t, `
var x = 1
let y = 2
`)
	require.Equal(t, []string{"x", "y"}, res.Top.Definitions)
	require.Empty(t, res.Top.Captures)
}

func TestAssignmentAlwaysCaptures(t *testing.T) {
	res := analyzeSource(t, `
var x = 1
x = 2
`)
	require.Equal(t, []string{"x"}, res.Top.Definitions)
	require.Equal(t, []string{"x"}, res.Top.Captures,
		"bare assignment records a capture even for a name defined in the same scope")
}

func TestFuncCapturesOuterVar(t *testing.T) {
	res := analyzeSource(t, `
var x = 1
func f()
  return x
end
`)
	funcInfo := findFuncInfo(t, res)
	require.Equal(t, []string{"x"}, funcInfo.Captures)
	require.Empty(t, funcInfo.Definitions)
}

func TestFuncParamsAreDefinitions(t *testing.T) {
	res := analyzeSource(t, `
func f(a, b)
  var c = a
  return c
end
`)
	funcInfo := findFuncInfo(t, res)
	require.Equal(t, []string{"a", "b", "c"}, funcInfo.Definitions)
	require.Empty(t, funcInfo.Captures)
}

func TestNestedFuncCaptureBubbles(t *testing.T) {
	res := analyzeSource(t, `
func outer()
  var x = 1
  func inner()
    return x
  end
end
`)
	require.Len(t, res.Funcs, 2)
	for node, info := range res.Funcs {
		_ = node
		if len(info.Captures) > 0 {
			require.Equal(t, []string{"x"}, info.Captures)
		}
	}
}

func findFuncInfo(t *testing.T, res *Result) *FuncInfo {
	t.Helper()
	require.Len(t, res.Funcs, 1)
	for _, info := range res.Funcs {
		return info
	}
	return nil
}
