package config

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"CHARACTER_API_URL", "CHARACTER_API_TOKEN", "DB_PATH", "SERVER_PORT", "LOG_LEVEL", "REFERENCE_PATH", "SYNC_DEBOUNCE", "SYNC_MAX_RETRIES"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "", cfg.APIURL)
	assert.Equal(t, "characters.db", cfg.DBPath)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, time.Second, cfg.SaveDebounce)
	assert.Equal(t, uint64(3), cfg.SaveMaxRetries)
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CHARACTER_API_URL", "https://example.test/api")
	t.Setenv("CHARACTER_API_TOKEN", "secret")
	t.Setenv("SYNC_DEBOUNCE", "250ms")
	t.Setenv("SYNC_MAX_RETRIES", "0")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/api", cfg.APIURL)
	assert.Equal(t, "secret", cfg.APIToken)
	assert.Equal(t, 250*time.Millisecond, cfg.SaveDebounce)
	assert.Equal(t, uint64(0), cfg.SaveMaxRetries)
}

func TestLoadRejectsInvalid(t *testing.T) {
	chdir(t, t.TempDir())

	t.Run("debounce", func(t *testing.T) {
		t.Setenv("SYNC_DEBOUNCE", "soon")
		_, err := Load(zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("token without url", func(t *testing.T) {
		t.Setenv("CHARACTER_API_URL", "")
		t.Setenv("CHARACTER_API_TOKEN", "secret")
		_, err := Load(zerolog.Nop())
		assert.Error(t, err)
	})
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
