package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucernalang/lucerna/internal/maincmd"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.lucerna")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestTokenizeFilesPrintsTokens(t *testing.T) {
	path := writeSource(t, `var x = 1`)
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}

	err := maincmd.TokenizeFiles(context.Background(), stdio, path)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "1:1: var var")
	assert.Contains(t, out.String(), "1:5: identifier x")
	assert.Empty(t, errOut.String())
}

func TestParseFilesPrintsTree(t *testing.T) {
	path := writeSource(t, `var x = 1 + 2 return x`)
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}

	err := maincmd.ParseFiles(context.Background(), stdio, path)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "var x = (1 + 2)")
	assert.Contains(t, out.String(), "return x")
}

func TestResolveFilesPrintsCaptures(t *testing.T) {
	path := writeSource(t, `
var c = 0
func inc()
	c = c + 1
	return c
end
return inc()
`)
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}

	err := maincmd.ResolveFiles(context.Background(), stdio, path)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "inc: definitions=[] captures=[c]")
}

func TestCompileFilesPrintsBytecode(t *testing.T) {
	path := writeSource(t, `return 1 + 2`)
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}

	err := maincmd.CompileFiles(context.Background(), stdio, path)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "LoadInt 1")
	assert.Contains(t, out.String(), "Add")
	assert.Contains(t, out.String(), "Return")
}

func TestRunFilesExecutesAndPrintsValue(t *testing.T) {
	path := writeSource(t, `return 1 + 2`)
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}

	c := &maincmd.Cmd{}
	err := c.RunFiles(context.Background(), stdio, path)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "3")
}

func TestCmdMainHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	c := &maincmd.Cmd{}
	code := c.Main([]string{"lucerna", "--help"}, stdio)
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, out.String(), "Compiler and runtime for the lucerna programming language.")
}

func TestCmdMainUnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	c := &maincmd.Cmd{}
	code := c.Main([]string{"lucerna", "bogus", "file.lucerna"}, stdio)
	assert.Equal(t, mainer.InvalidArgs, code)
}
