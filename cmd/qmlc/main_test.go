package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func disableColor(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	disableColor(t)
	t.Setenv("HOME", t.TempDir())
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestTypesCommand(t *testing.T) {
	out, _, err := run(t, "types", "testdata/builtins.qmltypes")
	require.NoError(t, err)
	require.Contains(t, out, "CLASS")
	require.Contains(t, out, "QQuickItem")
	require.Contains(t, out, "QtQuick/Item 2.0")
}

func TestTypesRequiresFiles(t *testing.T) {
	_, _, err := run(t, "types")
	require.ErrorContains(t, err, "no .qmltypes files given")
}

func TestCheckCommand(t *testing.T) {
	out, stderr, err := run(t, "--types", "testdata/builtins.qmltypes", "check", "testdata/main.json")
	require.NoError(t, err)
	require.Equal(t, "testdata/main.json: ok\n", out)
	require.Empty(t, stderr)
}

func TestCheckReportsErrors(t *testing.T) {
	out, stderr, err := run(t, "--types", "testdata/builtins.qmltypes",
		"check", "testdata/main.json", "testdata/broken.json")
	require.ErrorIs(t, err, errCheckFailed)
	require.Equal(t, "testdata/main.json: ok\n", out)
	require.Contains(t, stderr, `Cannot assign to non-existent property "widht"`)
	require.Contains(t, stderr, "file:///app/Broken.qml")
	require.Contains(t, stderr, "width")
}

func TestCompileCommand(t *testing.T) {
	out, _, err := run(t, "--types", "testdata/builtins.qmltypes", "compile", "testdata/main.json")
	require.NoError(t, err)
	require.Contains(t, out, "unit file:///app/Main.qml")
	require.Contains(t, out, "functions: 1")
	require.Regexp(t, `0 Item \S+ id=root \(root\)`, out)
	require.Contains(t, out, "root 0: root=0")
	require.Contains(t, out, "OPCODE")

	out, _, err = run(t, "--types", "testdata/builtins.qmltypes", "compile", "--no-dis", "testdata/main.json")
	require.NoError(t, err)
	require.NotContains(t, out, "OPCODE")
}

func TestConfigFile(t *testing.T) {
	types, err := filepath.Abs("testdata/builtins.qmltypes")
	require.NoError(t, err)
	cfg := filepath.Join(t.TempDir(), "qmlc.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("types:\n  - "+types+"\nlog-level: error\n"), 0o600))

	out, _, err := run(t, "--config", cfg, "check", "testdata/main.json")
	require.NoError(t, err)
	require.Equal(t, "testdata/main.json: ok\n", out)

	_, _, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "types")
	require.ErrorContains(t, err, "reading config")
}

func TestEnvironment(t *testing.T) {
	t.Setenv("QMLC_LOG_LEVEL", "bogus")
	_, _, err := run(t, "--types", "testdata/builtins.qmltypes", "check", "testdata/main.json")
	require.Error(t, err)
}
