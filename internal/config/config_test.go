package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"bizwiz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 10000, cfg.Database.ChunkSize)
	assert.Equal(t, 4, cfg.Files.ReadWorkers)
	assert.Equal(t, "diagonal", cfg.Files.ConcatHow)
	assert.Equal(t, "%Y-%m-%d", cfg.Files.DateLayout)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bizwiz.yaml")
	content := `
database:
  driver: sqlite
  url: "file::memory:"
  chunk_size: 500
  conn_timeout: 5s
files:
  read_workers: 2
smtp:
  host: smtp.example.com
  from: reports@example.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("BIZWIZ_CHUNK_SIZE", "250")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.URL)
	assert.Equal(t, 250, cfg.Database.ChunkSize)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnTimeout)
	assert.Equal(t, 2, cfg.Files.ReadWorkers)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("BIZWIZ_DB_DRIVER", "oracle")

	_, err := Load("")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestValidate_BadFrom(t *testing.T) {
	cfg := Default()
	cfg.SMTP.From = "not-an-address"
	assert.Error(t, Validate(cfg))
}
