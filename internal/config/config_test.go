package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg := MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))

		assert.Equal(t, "http://localhost:8080", cfg.ApiBaseURL)
		assert.Equal(t, 20*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 3, cfg.MaxRetries)
		assert.Equal(t, 10, cfg.PageLimit)
		assert.Equal(t, "happy-thoughts.db", cfg.StatePath)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"api_base_url: https://api.example.com\n"+
				"request_timeout: 5s\n"+
				"page_limit: 20\n"+
				"log_level: debug\n"), 0o644))

		cfg := MustLoad(path)

		assert.Equal(t, "https://api.example.com", cfg.ApiBaseURL)
		assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 20, cfg.PageLimit)
		assert.Equal(t, "debug", cfg.LogLevel)
		// Untouched keys keep their defaults.
		assert.Equal(t, 3, cfg.MaxRetries)
	})

	t.Run("environment wins over file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api_base_url: https://file.example.com\n"), 0o644))
		t.Setenv("HAPPY_THOUGHTS_API_URL", "https://env.example.com")
		t.Setenv("HAPPY_THOUGHTS_LOG_LEVEL", "warn")

		cfg := MustLoad(path)

		assert.Equal(t, "https://env.example.com", cfg.ApiBaseURL)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("broken file panics", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api_base_url: [unclosed\n"), 0o644))

		assert.Panics(t, func() { MustLoad(path) })
	})
}
