package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-openapi/testify/v2/require"
)

const sampleBench = `suite "hashing" {
  iterations: 500
  warmup: 50
  requires: ["go"]
  baseline: "go"

  bench "sha256" {
    description: "hash a buffer"
    go: { h := sha256.Sum256(data) }
  }
}
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hashing.bench")
	require.NoError(t, os.WriteFile(path, []byte(sampleBench), 0o644))

	return path
}

func TestCheckCommandReportsCounts(t *testing.T) {
	path := writeSample(t)

	var configPath string
	cmd := newCheckCommand(&configPath)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "suites:  1")
	require.Contains(t, out.String(), "benchmarks: 1")
}

func TestCheckCommandShowAST(t *testing.T) {
	path := writeSample(t)

	var configPath string
	cmd := newCheckCommand(&configPath)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--show-ast"})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), `suite "hashing"`)
	require.Contains(t, out.String(), `bench "sha256"`)
}

func TestCheckCommandRejectsMissingFile(t *testing.T) {
	var configPath string
	cmd := newCheckCommand(&configPath)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.bench")})

	require.Error(t, cmd.Execute())
}

func TestFmtCommandPrintsCanonicalForm(t *testing.T) {
	path := writeSample(t)

	cmd := newFmtCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), `suite "hashing"`)
	require.Contains(t, out.String(), "h := sha256.Sum256(data)")
}

func TestFmtCommandWriteInPlace(t *testing.T) {
	path := writeSample(t)

	cmd := newFmtCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{path, "--write"})

	require.NoError(t, cmd.Execute())

	rewritten, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(rewritten), `suite "hashing"`)
}

func TestStubCommandsReturnNotImplemented(t *testing.T) {
	for _, cmd := range newStubCommands() {
		cmd := cmd
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		err := cmd.Execute()
		require.ErrorIs(t, err, ErrNotImplemented)
	}
}

func TestRootCommandHasEveryTopLevelSubcommand(t *testing.T) {
	root := NewRootCommand()

	want := []string{"check", "compile", "cache", "run", "codegen", "fmt",
		"init", "new", "add", "remove", "install", "build", "lsp", "upgrade"}

	got := map[string]bool{}
	for _, sub := range root.Commands() {
		got[sub.Name()] = true
	}

	for _, name := range want {
		require.True(t, got[name], "missing subcommand %q", name)
	}
}
