package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/bindc/runtime/codec"
	"github.com/aledsdavies/bindc/runtime/compiler"
)

// isolate keeps the user's settings and environment out of a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("BINDC_SETTINGS", filepath.Join(dir, "missing.toml"))
	for _, key := range []string{"BINDC_FILE", "BINDC_FORMAT", "BINDC_COLOR", "BINDC_DEBUG", "BINDC_WATCH_DEBOUNCE", "NO_COLOR"} {
		t.Setenv(key, "")
	}
	return dir
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestCompileText(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "keys.conf", "super + {1-3}\n    focus {1-3}\n")

	out, _, err := run(t, "", "compile", path)
	require.NoError(t, err)
	assert.Equal(t, "binding: [super, 1] → focus 1\n"+
		"binding: [super, 2] → focus 2\n"+
		"binding: [super, 3] → focus 3\n", out)
}

func TestCompileFormats(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "keys.conf", "super + 5\n    alacritty\n")

	out, _, err := run(t, "", "compile", "--format", "json", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"command": "alacritty"`)

	out, _, err = run(t, "", "compile", "--format", "yaml", path)
	require.NoError(t, err)
	assert.Contains(t, out, "command: alacritty")

	out, _, err = run(t, "", "compile", "--format", "cbor", path)
	require.NoError(t, err)
	cfg, err := codec.UnmarshalCanonical([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "alacritty", cfg.Bindings[0].Command)
}

func TestCompileStdin(t *testing.T) {
	isolate(t)
	out, _, err := run(t, "a\n    x\n", "compile", "-f", "-")
	require.NoError(t, err)
	assert.Equal(t, "binding: [a] → x\n", out)
}

func TestCompileUsesFileSetting(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "keys.conf", "b\n    y\n")
	t.Setenv("BINDC_FILE", path)

	out, _, err := run(t, "", "compile")
	require.NoError(t, err)
	assert.Equal(t, "binding: [b] → y\n", out)
}

func TestCompileError(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "keys.conf", "shift + k + m\n    broken\n")

	_, _, err := run(t, "", "compile", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, compiler.ErrGrammar))
	assert.Equal(t, ExitCompileError, exitCode(err))

	var buf bytes.Buffer
	FormatError(&buf, err, false)
	assert.Contains(t, buf.String(), "Error: "+path+":1:")
	assert.Contains(t, buf.String(), "1 | shift + k + m")
}

func TestCompileMissingFile(t *testing.T) {
	dir := isolate(t)
	_, _, err := run(t, "", "compile", filepath.Join(dir, "nope.conf"))
	require.Error(t, err)
	assert.Equal(t, ExitReadError, exitCode(err))
}

func TestCheck(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "more.conf", "c\n    z\n")
	path := writeConfig(t, dir, "keys.conf", "include more.conf\na\n    x\nignore super + q\n")

	out, _, err := run(t, "", "check", "--color", "never", path)
	require.NoError(t, err)
	assert.Equal(t, "ok "+path+": 2 bindings, 1 unbinds, 0 modes, 2 files\n", out)
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "bindc dev\n", out)
}

func TestUnknownFormat(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "keys.conf", "a\n    x\n")
	_, _, err := run(t, "", "compile", "--format", "toml", path)
	assert.ErrorContains(t, err, `unknown format "toml"`)
	assert.Equal(t, ExitUsage, exitCode(err))
}

func TestFormatErrorCardinality(t *testing.T) {
	_, err := compiler.Compile(compiler.FromString("{a,b}\n    x\n"))
	require.Error(t, err)

	var buf bytes.Buffer
	FormatError(&buf, err, false)
	out := buf.String()
	assert.Contains(t, out, "binding_variants: 2")
	assert.Contains(t, out, "command_variants: 1")
	assert.Contains(t, out, "Hint: Each trigger variant needs exactly one command variant")
}

func TestFormatErrorPlain(t *testing.T) {
	var buf bytes.Buffer
	FormatError(&buf, errors.New("boom"), true)
	assert.Equal(t, ColorRed+"Error: "+ColorReset+"boom\n", buf.String())

	buf.Reset()
	FormatError(&buf, nil, false)
	assert.Empty(t, buf.String())
}

func TestShouldUseColor(t *testing.T) {
	isolate(t)
	var buf bytes.Buffer
	assert.True(t, ShouldUseColor(colorAlways, &buf))
	assert.False(t, ShouldUseColor(colorNever, &buf))
	assert.False(t, ShouldUseColor(colorAuto, &buf))
}

func TestRunWatch(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "keys.conf", "a\n    first\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	s := Settings{Color: colorNever, Debounce: 20 * time.Millisecond, Format: codec.FormatText}
	go func() { done <- runWatch(ctx, out, &bytes.Buffer{}, path, s, newLogger(&bytes.Buffer{}, false)) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "compiled "+path) }, 5*time.Second, 10*time.Millisecond)
	writeConfig(t, dir, "keys.conf", "a\n    second\n")
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "+ binding: [a] → second") }, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "- binding: [a] → first")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
