// Package config holds the run settings for a translation session and the
// validation/normalization rules applied at the configuration boundary. The
// orchestrator assumes it receives settings that already passed through here.
package config

import (
	"fmt"
	"time"
)

// Mode selects how pending entries are sent to the provider.
type Mode string

const (
	// ModeBatch groups entries into batch requests of up to BatchSize units.
	ModeBatch Mode = "batch"
	// ModeSingle sends one request per entry, enabling glossary support.
	ModeSingle Mode = "single"
)

// Provider names a supported translation backend.
type Provider string

const (
	ProviderAlgebras Provider = "algebras"
	ProviderGemini   Provider = "gemini"
)

const (
	MinBatchSize    = 1
	MaxBatchSize    = 100
	MinParallel     = 1
	MaxParallel     = 10
	DefaultBatch    = 25
	DefaultParallel = 4
)

// Settings holds all configuration required for running a translation session.
type Settings struct {
	// Provider selection
	Provider Provider
	Model    string
	APIKey   string

	// Languages
	SourceLanguage  string // "auto" or empty resolves against the collection
	TargetLanguages []string

	// Processing parameters
	Mode         Mode
	BatchSize    int
	MaxParallel  int
	RequestDelay time.Duration

	// Behavior flags
	OnlyMissing bool
	Normalize   bool
	UISafe      bool

	// Provider options
	CustomPrompt string
	GlossaryID   string
	// Tuning carries opaque provider-specific values (temperature, token
	// budget) passed through without interpretation.
	Tuning map[string]string
}

func clampInt(value, min, max int) (int, bool) {
	if value < min {
		return min, true
	}
	if value > max {
		return max, true
	}
	return value, false
}

// Normalized applies safe bounds to settings values and returns any adjustments.
func (s Settings) Normalized() (Settings, []string) {
	var notes []string
	if s.Mode == "" {
		s.Mode = ModeBatch
	}
	if s.BatchSize == 0 {
		s.BatchSize = DefaultBatch
	}
	if s.MaxParallel == 0 {
		s.MaxParallel = DefaultParallel
	}
	if clamped, changed := clampInt(s.BatchSize, MinBatchSize, MaxBatchSize); changed {
		notes = append(notes, fmt.Sprintf("batch-size clamped from %d to %d (allowed %d-%d)", s.BatchSize, clamped, MinBatchSize, MaxBatchSize))
		s.BatchSize = clamped
	}
	if clamped, changed := clampInt(s.MaxParallel, MinParallel, MaxParallel); changed {
		notes = append(notes, fmt.Sprintf("parallel clamped from %d to %d (allowed %d-%d)", s.MaxParallel, clamped, MinParallel, MaxParallel))
		s.MaxParallel = clamped
	}
	if s.RequestDelay < 0 {
		notes = append(notes, fmt.Sprintf("request-delay raised from %s to 0", s.RequestDelay))
		s.RequestDelay = 0
	}
	return s, notes
}

// Validate checks whether the settings describe a runnable session.
// An unsupported provider is a hard error, never silently rewritten.
func (s Settings) Validate() error {
	switch s.Provider {
	case ProviderAlgebras, ProviderGemini:
	case "":
		return fmt.Errorf("provider is required")
	default:
		return fmt.Errorf("unsupported provider %q (supported: %s, %s)", s.Provider, ProviderAlgebras, ProviderGemini)
	}
	switch s.Mode {
	case ModeBatch, ModeSingle:
	default:
		return fmt.Errorf("unsupported mode %q (supported: %s, %s)", s.Mode, ModeBatch, ModeSingle)
	}
	if s.BatchSize < MinBatchSize || s.BatchSize > MaxBatchSize {
		return fmt.Errorf("batch-size must be between %d and %d, got %d", MinBatchSize, MaxBatchSize, s.BatchSize)
	}
	if s.MaxParallel < MinParallel || s.MaxParallel > MaxParallel {
		return fmt.Errorf("parallel must be between %d and %d, got %d", MinParallel, MaxParallel, s.MaxParallel)
	}
	if s.RequestDelay < 0 {
		return fmt.Errorf("request-delay must be 0 or greater, got %s", s.RequestDelay)
	}
	if s.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	// An empty target list is valid: targets are discovered from the
	// collection (every table except the source).
	return nil
}
