package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-openadas/internal/corpus"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	v, err := New("")
	require.NoError(t, err)
	s, err := Load(v)
	require.NoError(t, err)

	assert.Empty(t, s.DataRoot)
	assert.False(t, s.AllowExtrapolation)
	assert.Empty(t, s.ConfigFiles)
	assert.Equal(t, "expr", s.Engine)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, corpus.DriverFilesystem, s.Corpus.Driver)
}

func TestFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "openadas.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
data_root = "/srv/adas"
allow_extrapolation = true
config_files = ["site.toml", "user.yaml"]

[log]
json = true
`), 0o644))

	t.Setenv("OPENADAS_ENGINE", "cel")
	t.Setenv("OPENADAS_LOG_LEVEL", "debug")
	t.Setenv("OPENADAS_CORPUS_DRIVER", "s3")
	t.Setenv("OPENADAS_CORPUS_S3_BUCKET", "adas")

	v, err := New(file)
	require.NoError(t, err)
	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/srv/adas", s.DataRoot)
	assert.True(t, s.AllowExtrapolation)
	assert.Equal(t, []string{"site.toml", "user.yaml"}, s.ConfigFiles)
	assert.Equal(t, "cel", s.Engine)
	assert.True(t, s.Log.JSON)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, corpus.DriverS3, s.Corpus.Driver)
	assert.Equal(t, "adas", s.Corpus.S3.Bucket)
	assert.Equal(t, "/srv/adas", s.Corpus.Root, "corpus root follows the data root")
}

func TestDiscoveredFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openadas.toml"), []byte(`engine = "js"`), 0o644))
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	v, err := New("")
	require.NoError(t, err)
	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "js", s.Engine)
}

func TestExplicitFileMustExist(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
