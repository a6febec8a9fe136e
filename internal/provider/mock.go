package provider

import (
	"context"
	"sync"
)

// Mock is a Translator for tests. The zero value translates every unit to
// its text suffixed with "_" and the target language code.
type Mock struct {
	mu sync.Mutex

	// BatchErr / SingleErr, when set, fail every corresponding call.
	BatchErr  error
	SingleErr error
	// Transform overrides the default text_lang transformation.
	Transform func(text, targetLang string) string
	// TruncateTo, when positive, drops trailing batch results to simulate a
	// short provider response.
	TruncateTo int

	BatchCalls  int
	SingleCalls int
	LastOptions Options
}

var _ Translator = (*Mock)(nil)

func (m *Mock) translate(text, targetLang string) string {
	if m.Transform != nil {
		return m.Transform(text, targetLang)
	}
	return text + "_" + targetLang
}

func (m *Mock) TranslateBatch(ctx context.Context, units []Unit, sourceLang, targetLang string, opts Options) ([]Result, error) {
	m.mu.Lock()
	m.BatchCalls++
	m.LastOptions = opts
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.BatchErr != nil {
		return nil, m.BatchErr
	}

	results := make([]Result, 0, len(units))
	for _, u := range units {
		results = append(results, Result{
			Key:        u.Key,
			Translated: m.translate(u.Text, targetLang),
			Confidence: 1,
		})
	}
	if m.TruncateTo > 0 && len(results) > m.TruncateTo {
		results = results[:m.TruncateTo]
	}
	return results, nil
}

func (m *Mock) TranslateSingle(ctx context.Context, unit Unit, sourceLang, targetLang string, opts Options) (Result, error) {
	m.mu.Lock()
	m.SingleCalls++
	m.LastOptions = opts
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if m.SingleErr != nil {
		return Result{}, m.SingleErr
	}
	return Result{
		Key:        unit.Key,
		Translated: m.translate(unit.Text, targetLang),
		Confidence: 1,
	}, nil
}

// Calls returns the total number of requests the mock served.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.BatchCalls + m.SingleCalls
}
