package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Integrity errors: malformed or duplicate panel input. Fatal, the run aborts.
	ErrDataIntegrity = errors.New("panel data integrity violation")
	ErrDuplicateKey  = fmt.Errorf("%w: duplicate (country, year) key", ErrDataIntegrity)
	ErrMalformedRow  = fmt.Errorf("%w: malformed row", ErrDataIntegrity)

	// Configuration errors: invalid split ranges or roster. Fatal, checked before training.
	ErrConfiguration    = errors.New("invalid pipeline configuration")
	ErrSplitOverlap     = fmt.Errorf("%w: split year ranges overlap", ErrConfiguration)
	ErrSplitOrdering    = fmt.Errorf("%w: split ranges out of chronological order", ErrConfiguration)
	ErrEmptyRoster      = fmt.Errorf("%w: model roster is empty", ErrConfiguration)
	ErrUnknownAlgorithm = fmt.Errorf("%w: unknown algorithm", ErrConfiguration)

	// Derivation errors: insufficient history for a country. Recovered per-country.
	ErrFeatureDerivation   = errors.New("feature derivation failed")
	ErrInsufficientHistory = fmt.Errorf("%w: insufficient observations for window", ErrFeatureDerivation)

	// Training errors: one algorithm fails or diverges. Recovered per-model.
	ErrModelTraining  = errors.New("model training failed")
	ErrTrainingBudget = fmt.Errorf("%w: training budget exceeded", ErrModelTraining)
	ErrDiverged       = fmt.Errorf("%w: optimization diverged", ErrModelTraining)

	// Leakage guards
	ErrLeakage    = errors.New("data leakage detected")
	ErrFutureData = fmt.Errorf("%w: feature references future year", ErrLeakage)

	// Artifact errors
	ErrArtifactNotFound = errors.New("artifact not found")
)

// Error constructors with context

func NewDuplicateKeyError(country string, year int) error {
	return fmt.Errorf("%w: %s/%d", ErrDuplicateKey, country, year)
}

func NewInsufficientHistoryError(country string, got, need int) error {
	return fmt.Errorf("%w: country %s has %d observations, need %d", ErrInsufficientHistory, country, got, need)
}

func NewTrainingError(algorithm string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrModelTraining, algorithm, err)
}

func NewConfigurationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrConfiguration, field, reason)
}

// Error checking helpers

func IsDataIntegrityError(err error) bool {
	return errors.Is(err, ErrDataIntegrity)
}

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsFeatureDerivationError(err error) bool {
	return errors.Is(err, ErrFeatureDerivation)
}

func IsModelTrainingError(err error) bool {
	return errors.Is(err, ErrModelTraining)
}

// IsFatal reports whether the error is an unrecoverable precondition failure.
// Derivation and training errors are isolated per-unit and never fatal.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDataIntegrity) || errors.Is(err, ErrConfiguration)
}
