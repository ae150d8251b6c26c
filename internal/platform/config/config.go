package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	kycconfig "kycgate/internal/kyc/config"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// KYC holds the verification thresholds, after file and env overrides.
	KYC kycconfig.Config
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Server config from any key lookup. KYC thresholds start
// from the defaults, then KYC_CONFIG_FILE (YAML), then individual KYC_*
// variables. The result is validated; an invalid threshold is an error.
func FromLookup(lookup LookupFunc) (Server, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := Server{
		Addr:      get("KYC_ADDR", ":8080"),
		LogLevel:  get("KYC_LOG_LEVEL", "info"),
		LogFormat: get("KYC_LOG_FORMAT", "json"),
		KYC:       kycconfig.Default(),
	}

	timeout, err := time.ParseDuration(get("KYC_SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Server{}, fmt.Errorf("KYC_SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = timeout

	if path := get("KYC_CONFIG_FILE", ""); path != "" {
		fileCfg, err := kycconfig.LoadFile(path)
		if err != nil {
			return Server{}, err
		}
		cfg.KYC = fileCfg
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"KYC_MIN_BIRTH_YEAR", &cfg.KYC.MinBirthYear},
		{"KYC_MIN_AGE", &cfg.KYC.MinAge},
		{"KYC_MAX_AGE", &cfg.KYC.MaxAge},
		{"KYC_BATCH_CONCURRENCY", &cfg.KYC.BatchConcurrency},
	}
	for _, f := range ints {
		raw := get(f.key, "")
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Server{}, fmt.Errorf("%w: %s=%q is not an integer", kycconfig.ErrInvalidConfig, f.key, raw)
		}
		*f.dst = n
	}

	if raw := get("KYC_CONFIDENCE_THRESHOLD", ""); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Server{}, fmt.Errorf("%w: KYC_CONFIDENCE_THRESHOLD=%q is not a number", kycconfig.ErrInvalidConfig, raw)
		}
		cfg.KYC.ConfidenceThreshold = threshold
	}

	if err := cfg.KYC.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}
