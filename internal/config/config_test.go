package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sketchive.yaml")

	configContent := `
store:
  url: "http://192.168.1.10:8080/"
  timeout_seconds: 5

board:
  whiteboard_id: 12
  owner_id: 3
  create_if_missing: true
  width: 800
  height: 600
  color: red

server:
  listen: ":9000"
  allowed_origins: ["http://localhost:3000"]
  advertise: true

database:
  url: "postgres://localhost/sketchive?sslmode=disable"
  migrate: true

log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://192.168.1.10:8080", cfg.Store.URL)
	assert.Equal(t, 5, cfg.Store.TimeoutSeconds)
	assert.Equal(t, int64(12), cfg.Board.WhiteboardID)
	assert.Equal(t, int64(3), cfg.Board.OwnerID)
	assert.True(t, cfg.Board.CreateIfMissing)
	assert.Equal(t, 800, cfg.Board.Width)
	assert.Equal(t, "red", cfg.Board.Color)
	assert.Equal(t, 3.0, cfg.Board.LineWidth)
	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Server.Advertise)
	assert.True(t, cfg.Database.Migrate)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Defaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("{}\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Store.URL)
	assert.Equal(t, 10, cfg.Store.TimeoutSeconds)
	assert.Equal(t, 1024, cfg.Board.Width)
	assert.Equal(t, 768, cfg.Board.Height)
	assert.Equal(t, "#000000", cfg.Board.Color)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Zero(t, cfg.Board.WhiteboardID)
}

func TestLoad_DiscoverLeavesURLEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "discover.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("store:\n  discover: true\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Empty(t, cfg.Store.URL)
	assert.Equal(t, 3, cfg.Store.DiscoverTimeoutSeconds)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "board: [\n"},
		{"negative width", "board:\n  width: -5\n"},
		{"unknown level", "log:\n  level: loud\n"},
		{"unknown format", "log:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0644))
			_, err := Load(configPath)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SKETCHIVE_STORE_URL", "http://store.local:8080")
	t.Setenv("SKETCHIVE_WHITEBOARD_ID", "44")
	t.Setenv("SKETCHIVE_OWNER_ID", "2")
	t.Setenv("SKETCHIVE_LISTEN", ":7070")
	t.Setenv("SKETCHIVE_DATABASE_URL", "postgres://db/sketchive")
	t.Setenv("SKETCHIVE_LOG_LEVEL", "warn")

	cfg, err := LoadFromEnv("missing.yaml")
	require.NoError(t, err)

	assert.Equal(t, "http://store.local:8080", cfg.Store.URL)
	assert.Equal(t, int64(44), cfg.Board.WhiteboardID)
	assert.Equal(t, int64(2), cfg.Board.OwnerID)
	assert.Equal(t, ":7070", cfg.Server.Listen)
	assert.Equal(t, "postgres://db/sketchive", cfg.Database.URL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFromEnv_DotEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sketchive.yaml"), []byte("board:\n  whiteboard_id: 5\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SKETCHIVE_OWNER_ID=8\n"), 0644))
	t.Setenv("SKETCHIVE_OWNER_ID", "")
	os.Unsetenv("SKETCHIVE_OWNER_ID")

	cfg, err := LoadFromEnv("sketchive.yaml")
	require.NoError(t, err)
	assert.Equal(t, int64(5), cfg.Board.WhiteboardID)
	assert.Equal(t, int64(8), cfg.Board.OwnerID)
}

func TestLoadFromEnv_BadID(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SKETCHIVE_WHITEBOARD_ID", "twelve")
	_, err := LoadFromEnv("missing.yaml")
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv("SKETCHIVE_CONFIG", "")
	assert.Equal(t, DefaultPath, Path())
	t.Setenv("SKETCHIVE_CONFIG", "/etc/sketchive.yaml")
	assert.Equal(t, "/etc/sketchive.yaml", Path())
}
