package project

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasres/internal/trace"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigFull(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[analysis]
jobs = 3
max_diagnostics = 20
trace_level = "debug"

[files]
include = ["src/**.pbundle"]
exclude = ["src/gen/**"]

[units]
scope_names = ["Vcl", "System"]
aliases = { WinTypes = "Windows" }
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Analysis.Jobs)
	assert.Equal(t, 20, cfg.Analysis.MaxDiagnostics)
	assert.Equal(t, []string{"src/**.pbundle"}, cfg.Files.Include)
	assert.Equal(t, []string{"Vcl", "System"}, cfg.Units.ScopeNames)
	assert.Equal(t, "Windows", cfg.Units.Aliases["WinTypes"])

	level, err := cfg.TraceLevel()
	require.NoError(t, err)
	assert.Equal(t, trace.LevelDebug, level)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[analysis]\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Analysis.Jobs)
	assert.Equal(t, DefaultMaxDiagnostics, cfg.Analysis.MaxDiagnostics)
	assert.Equal(t, DefaultInclude, cfg.Files.Include)
	assert.Empty(t, cfg.Units.ScopeNames)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"negative jobs":   "[analysis]\njobs = -1\n",
		"zero diagnostic": "[analysis]\nmax_diagnostics = 0\n",
		"trace level":     "[analysis]\ntrace_level = \"loud\"\n",
		"empty include":   "[files]\ninclude = []\n",
		"bad glob":        "[files]\ninclude = [\"[a-\"]\n",
		"empty scope":     "[units]\nscope_names = [\" \"]\n",
		"unknown key":     "[analysis]\nworkers = 2\n",
		"syntax":          "[analysis\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, t.TempDir(), body))
			require.Error(t, err)
		})
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[analysis]\njobs = 2\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, found, err := Discover(nested)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, cfg.Analysis.Jobs)

	wantRoot, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, wantRoot, cfg.Root)
}

func TestDiscoverWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, found, err := Discover(dir)
	require.NoError(t, err)
	if found {
		t.Skip("a pasres.toml exists above the temp directory")
	}
	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, DefaultMaxDiagnostics, cfg.Analysis.MaxDiagnostics)
}

func TestMatcherCollect(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"main.pbundle", "src/lib.pbundle", "src/gen/auto.pbundle", "notes.txt"} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	m, err := NewMatcher([]string{"**.pbundle"}, []string{"src/gen/**"})
	require.NoError(t, err)

	files, err := m.Collect(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "main.pbundle"),
		filepath.Join(root, "src", "lib.pbundle"),
	}, files)
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pbundle")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))
	got, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, HashBytes([]byte("payload")), got)
	assert.NotEqual(t, got, Combine(got))
}
