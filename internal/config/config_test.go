package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_url: https://api.example.com\ntimeout: 10s\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.ServerURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_url: https://file.example.com\n"), 0600))

	t.Setenv("SKYBOOK_SERVER_URL", "https://env.example.com")
	t.Setenv("SKYBOOK_TIMEOUT", "45s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.ServerURL)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
}

func TestLoad_BadTimeout(t *testing.T) {
	t.Setenv("SKYBOOK_TIMEOUT", "not-a-duration")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_url: [not closed\n"), 0600))

	_, err := Load(path)
	require.Error(t, err)
}
