// Package config holds the thresholds consumed by the verification pipeline.
//
// The configuration is a plain value passed explicitly into the validator and
// rule engine. Nothing here reads the environment; see internal/platform/config
// for that.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig is wrapped by every configuration error. A pipeline built
// from an invalid Config must refuse to run.
var ErrInvalidConfig = errors.New("invalid kyc configuration")

// Config captures the tunable bounds of the KYC rules.
type Config struct {
	// MinBirthYear is the earliest plausible birth year (inclusive).
	MinBirthYear int `yaml:"min_birth_year"`

	// MinAge and MaxAge bound the plausible holder age in whole years (inclusive).
	MinAge int `yaml:"min_age"`
	MaxAge int `yaml:"max_age"`

	// ConfidenceThreshold routes documents to review when the model confidence
	// is strictly below it.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// BatchConcurrency caps parallel verification inside one batch.
	BatchConcurrency int `yaml:"batch_concurrency"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		MinBirthYear:        1900,
		MinAge:              0,
		MaxAge:              120,
		ConfidenceThreshold: 0.5,
		BatchConcurrency:    4,
	}
}

// Validate reports the first invalid bound, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.MinBirthYear < 1 || c.MinBirthYear > time.Now().Year():
		return fmt.Errorf("%w: min birth year %d must be between 1 and the current year", ErrInvalidConfig, c.MinBirthYear)
	case c.MinAge < 0:
		return fmt.Errorf("%w: min age %d must not be negative", ErrInvalidConfig, c.MinAge)
	case c.MaxAge < 0:
		return fmt.Errorf("%w: max age %d must not be negative", ErrInvalidConfig, c.MaxAge)
	case c.MaxAge < c.MinAge:
		return fmt.Errorf("%w: max age %d is below min age %d", ErrInvalidConfig, c.MaxAge, c.MinAge)
	case c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 || math.IsNaN(c.ConfidenceThreshold):
		return fmt.Errorf("%w: confidence threshold %v must be within [0,1]", ErrInvalidConfig, c.ConfidenceThreshold)
	case c.BatchConcurrency < 1:
		return fmt.Errorf("%w: batch concurrency %d must be at least 1", ErrInvalidConfig, c.BatchConcurrency)
	}
	return nil
}
