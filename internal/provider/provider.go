// Package provider defines the contract between the orchestrator and a
// translation backend. Scheduling, retries and merging live above this
// boundary; a client only turns units into results or a single error.
package provider

import "context"

// Unit is the minimal payload sent for one item. A batch is an ordered
// sequence of units; result slot i corresponds to unit slot i.
type Unit struct {
	Key  string
	Text string
}

// Result is one translated unit. Err carries a per-unit provider error
// message; a unit with a non-empty Err must not be merged.
type Result struct {
	Key        string
	Translated string
	Confidence float64
	Err        string
}

// Options carries per-request behavior. Tuning values are opaque
// pass-throughs the client forwards without interpreting.
type Options struct {
	// UISafe asks the provider to avoid translations longer than the source,
	// for fixed-width UI elements.
	UISafe bool
	// Prompt is an optional custom instruction appended to the provider's
	// translation prompt.
	Prompt string
	// GlossaryID selects a provider-side terminology list. Honored only by
	// TranslateSingle; batch clients must flag and ignore it.
	GlossaryID string
	// Normalize applies escape-sequence cleanup to every returned string.
	Normalize bool
	// Tuning holds provider-specific knobs (temperature, token budgets).
	Tuning map[string]string
}

// Translator is a translation backend. Both operations are retry-free:
// a failed call returns one error and no results, and the caller decides
// whether to retry.
type Translator interface {
	// TranslateBatch sends all units as one request and returns results in
	// request order.
	TranslateBatch(ctx context.Context, units []Unit, sourceLang, targetLang string, opts Options) ([]Result, error)
	// TranslateSingle translates exactly one unit, honoring the glossary.
	TranslateSingle(ctx context.Context, unit Unit, sourceLang, targetLang string, opts Options) (Result, error)
}
