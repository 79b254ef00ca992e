package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bmsC6 = `{"x": [10, 20], "y": [1e19, 1e20], "values": [[1, 2], [3, 4]]}`

// setupEnv isolates settings lookup and points the data root at a temporary
// corpus holding the default beam stopping file for H in C6.
func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	dataRoot := filepath.Join(home, "data")
	file := filepath.Join(dataRoot, "adf21", "bms97#h", "bms97#h_c6.dat")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
	require.NoError(t, os.WriteFile(file, []byte(bmsC6), 0o644))

	t.Setenv("OPENADAS_DATA_ROOT", dataRoot)
	t.Setenv("OPENADAS_LOG_LEVEL", "error")
	return dataRoot
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestWavelengthCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "wavelength", "H", "0", "3-2")
	require.NoError(t, err)
	assert.Equal(t, "656.28 nm\n", out)

	out, err = run(t, "wavelength", "--trace", "D", "0", "3-2")
	require.NoError(t, err)
	assert.Contains(t, out, `"strategy":"species"`)
	assert.Contains(t, out, "656.1 nm")
}

func TestWavelengthCommandErrors(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "wavelength", "Xx", "0", "3-2")
	assert.ErrorContains(t, err, `unknown species "Xx"`)

	_, err = run(t, "wavelength", "H", "zero", "3-2")
	assert.ErrorContains(t, err, "stage must be an integer")

	_, err = run(t, "wavelength", "W", "40", "3-2")
	assert.Error(t, err)
}

func TestRateBeamStoppingCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "rate", "bms", "H", "C", "6", "--energy", "15", "--density", "1e19")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	_, err = run(t, "rate", "bms", "H", "C", "6", "--energy", "50", "--density", "1e19")
	assert.Error(t, err, "extrapolation is off by default")
}

func TestConfigCommands(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "config", "entries", "--category", "bms")
	require.NoError(t, err)
	assert.Contains(t, out, "bms.H.C.6")
	assert.NotContains(t, out, "wavelength.")

	out, err = run(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "ok:")

	out, err = run(t, "config", "eval", `resolve_wavelength("D", 0, "3-2")`)
	require.NoError(t, err)
	assert.Equal(t, "656.1\n", out)

	out, err = run(t, "config", "show", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"bms"`)

	_, err = run(t, "config", "show", "--format", "xml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestConfigFilesLayerOverDefaults(t *testing.T) {
	setupEnv(t)
	site := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(site, []byte("bms:\n  H:\n    C:\n      6: adf21/local/bms_c6.dat\n"), 0o644))
	t.Setenv("OPENADAS_CONFIG_FILES", site)

	out, err := run(t, "config", "trace", "bms.H.C.6")
	require.NoError(t, err)
	assert.Contains(t, out, "site")
	assert.Contains(t, out, "adf21/local/bms_c6.dat")
	assert.Contains(t, out, "embedded")
}

func TestAuditReportsMissingFiles(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "audit")
	assert.ErrorContains(t, err, "reference missing files")
	assert.Contains(t, out, "missing adf21/bms97#h/bms97#h_h1.dat")
	assert.NotContains(t, out, "missing adf21/bms97#h/bms97#h_c6.dat")
	assert.Contains(t, out, "(fs corpus)")
}

func TestMetricsOut(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "metrics.prom")

	_, err := run(t, "--metrics-out", path, "rate", "bms", "H", "C", "6", "--energy", "15", "--density", "1e19")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `openadas_lookups_total{outcome="hit",quantity="bms"} 1`)
}
