package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"

func setRequired(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("HMAC_SECRET", "hmac")
	t.Setenv("ENCRYPTION_KEY", testKey)
}

func TestNewConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5.0, cfg.LoanMargin)
	assert.Equal(t, 15*time.Second, cfg.NarrativeTimeout)
	assert.Equal(t, "0 9 1 * *", cfg.DigestSchedule)

	key, err := cfg.EncryptionKeyBytes()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestNewConfig_MissingSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	_, err := NewConfig()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestNewConfig_BadEncryptionKey(t *testing.T) {
	setRequired(t)
	t.Setenv("ENCRYPTION_KEY", "abcd")

	_, err := NewConfig()
	assert.Error(t, err)
}

func TestNewConfig_FileThenEnv(t *testing.T) {
	setRequired(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "payfirst.yaml")
	data := []byte("port: \"9000\"\nnarrative_url: http://narrator:8000/narrate\nnarrative_timeout: 3s\nloan_margin: 2.5\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "http://narrator:8000/narrate", cfg.NarrativeURL)
	assert.Equal(t, 3*time.Second, cfg.NarrativeTimeout)
	assert.Equal(t, 2.5, cfg.LoanMargin)
}

func TestNewConfig_InvalidNumbers(t *testing.T) {
	setRequired(t)
	t.Setenv("LOAN_MARGIN", "five")
	_, err := NewConfig()
	assert.Error(t, err)

	t.Setenv("LOAN_MARGIN", "1")
	t.Setenv("NARRATIVE_TIMEOUT", "soon")
	_, err = NewConfig()
	assert.Error(t, err)
}
