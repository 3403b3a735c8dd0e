package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("MAX_DRAFTS", "")
	t.Setenv("DISPLAY_SANITIZE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 200, cfg.MaxDrafts)
	assert.False(t, cfg.SanitizeDisplay)
	assert.True(t, cfg.GeneratedSecret)
	assert.Len(t, cfg.SessionSecret, 64)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_SECRET", " s3cret ")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("MAX_DRAFTS", "5")
	t.Setenv("DISPLAY_SANITIZE", "true")
	t.Setenv("user", "editor")
	t.Setenv("password", "pw")
	t.Setenv("host", "db.internal")
	t.Setenv("port", "6543")
	t.Setenv("dbname", "tulisan")
	t.Setenv("DB_SSLMODE", "disable")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSqlite, cfg.StoreDriver)
	assert.Equal(t, []byte("s3cret"), cfg.SessionSecret)
	assert.False(t, cfg.GeneratedSecret)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.MaxDrafts)
	assert.True(t, cfg.SanitizeDisplay)
	assert.Equal(t, "postgres://editor:pw@db.internal:6543/tulisan?sslmode=disable", cfg.PostgresDSN())
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"STORE_DRIVER":     "mongo",
		"SESSION_TTL":      "forever",
		"MAX_DRAFTS":       "0",
		"DISPLAY_SANITIZE": "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDefaultEditorConfig(t *testing.T) {
	cfg := DefaultEditorConfig()
	assert.Equal(t, "/assets/libs/tinymce/tinymce.min.js", cfg.ScriptSrc)
	assert.Equal(t, 500, cfg.Height)
	assert.True(t, cfg.Menubar)
	assert.Contains(t, cfg.Plugins, "wordcount")
	assert.Contains(t, cfg.Toolbar, "undo redo")
}

func TestLoadEditorConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("height: 320\nmenubar: false\n"), 0o644))

	cfg, err := LoadEditorConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Height)
	assert.False(t, cfg.Menubar)
	assert.Equal(t, "/assets/libs/tinymce/tinymce.min.js", cfg.ScriptSrc)
}

func TestLoadEditorConfigErrors(t *testing.T) {
	_, err := LoadEditorConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("height: [1, 2\n"), 0o644))
	_, err = LoadEditorConfig(path)
	assert.Error(t, err)
}
