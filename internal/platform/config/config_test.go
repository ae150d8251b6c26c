package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kycconfig "kycgate/internal/kyc/config"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, kycconfig.Default(), cfg.KYC)
}

func TestFromLookupOverrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"KYC_ADDR":                 ":9090",
		"KYC_LOG_LEVEL":            "debug",
		"KYC_MIN_AGE":              "18",
		"KYC_MAX_AGE":              " 99 ",
		"KYC_CONFIDENCE_THRESHOLD": "0.8",
		"KYC_BATCH_CONCURRENCY":    "8",
		"KYC_MIN_BIRTH_YEAR":       "1910",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, kycconfig.Config{
		MinBirthYear:        1910,
		MinAge:              18,
		MaxAge:              99,
		ConfidenceThreshold: 0.8,
		BatchConcurrency:    8,
	}, cfg.KYC)
}

func TestFromLookupRejectsInvalidThresholds(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"non-numeric age":     {"KYC_MIN_AGE": "adult"},
		"threshold above one": {"KYC_CONFIDENCE_THRESHOLD": "1.2"},
		"threshold not float": {"KYC_CONFIDENCE_THRESHOLD": "high"},
		"inverted age range":  {"KYC_MIN_AGE": "50", "KYC_MAX_AGE": "20"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(env))
			assert.ErrorIs(t, err, kycconfig.ErrInvalidConfig)
		})
	}

	t.Run("bad shutdown timeout", func(t *testing.T) {
		_, err := FromLookup(lookupFrom(map[string]string{"KYC_SHUTDOWN_TIMEOUT": "soon"}))
		assert.Error(t, err)
	})
}

func TestFromLookupConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kyc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_age: 21\nconfidence_threshold: 0.6\n"), 0o600))

	cfg, err := FromLookup(lookupFrom(map[string]string{
		"KYC_CONFIG_FILE": path,
		"KYC_MIN_AGE":     "25",
	}))
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.KYC.MinAge, "env overrides file")
	assert.Equal(t, 0.6, cfg.KYC.ConfidenceThreshold)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("KYC_ADDR", ":7070")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
}
