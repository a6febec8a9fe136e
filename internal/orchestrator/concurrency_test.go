package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/irakli/algebras-go/internal/catalog"
	"github.com/irakli/algebras-go/internal/provider"
)

func TestRun_BoundsInFlightRequests(t *testing.T) {
	const parallel = 2

	var inFlight, peak atomic.Int32
	mock := &provider.Mock{
		Transform: func(text, targetLang string) string {
			current := inFlight.Add(1)
			for {
				old := peak.Load()
				if current <= old || peak.CompareAndSwap(old, current) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
			return text + "_" + targetLang
		},
	}

	settings := testSettings()
	settings.MaxParallel = parallel
	settings.TargetLanguages = []string{"es"}
	o, _ := New(mock, settings)

	c := catalog.NewCollection()
	for i := 0; i < 8; i++ {
		key := fmt.Sprintf("key%d", i)
		c.AddKey(key)
		c.EnsureTable("en").Upsert(key, key)
	}

	report, err := o.Run(context.Background(), c, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Translated != 8 {
		t.Errorf("translated = %d, want 8", report.Translated)
	}
	if got := peak.Load(); got > parallel {
		t.Errorf("peak in-flight requests = %d, want at most %d", got, parallel)
	}
}

func TestRun_InterRequestDelayHoldsGateSlot(t *testing.T) {
	const delay = 30 * time.Millisecond

	mock := &provider.Mock{}
	settings := testSettings()
	settings.MaxParallel = 1
	settings.RequestDelay = delay
	settings.TargetLanguages = []string{"es"}
	o, _ := New(mock, settings)

	c := catalog.NewCollection()
	for _, key := range []string{"a", "b", "c"} {
		c.AddKey(key)
		c.EnsureTable("en").Upsert(key, key)
	}

	start := time.Now()
	if _, err := o.Run(context.Background(), c, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Three requests through a single gate slot pay the delay after each.
	if elapsed := time.Since(start); elapsed < 3*delay {
		t.Errorf("run took %s, want at least %s with the courtesy delay", elapsed, 3*delay)
	}
}

type progressRecorder struct {
	spyReporter
	statuses []string
}

func (r *progressRecorder) ReportProgress(status string, fraction float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	r.progress = append(r.progress, fraction)
}

func TestRun_ProgressMessageMatchesFraction(t *testing.T) {
	mock := &provider.Mock{}
	settings := testSettings()
	settings.MaxParallel = 4
	settings.BatchSize = 1
	settings.TargetLanguages = []string{"es"}
	o, _ := New(mock, settings)

	c := catalog.NewCollection()
	const n = 20
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key%02d", i)
		c.AddKey(key)
		c.EnsureTable("en").Upsert(key, key)
	}

	rec := &progressRecorder{}
	if _, err := o.Run(context.Background(), c, rec); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.statuses) != n {
		t.Fatalf("got %d progress updates, want %d", len(rec.statuses), n)
	}
	// Each update's "done/total batches" text must agree with its fraction:
	// both are taken from the same counter snapshot.
	for i, status := range rec.statuses {
		var done, total int
		if _, err := fmt.Sscanf(status, "es: %d/%d batches", &done, &total); err != nil {
			t.Fatalf("unexpected progress status %q: %v", status, err)
		}
		if total != n {
			t.Errorf("status %q reports total %d, want %d", status, total, n)
		}
		want := float64(done) / float64(total)
		if got := rec.progress[i]; got != want {
			t.Errorf("status %q carries fraction %v, want %v", status, got, want)
		}
	}
}

func TestRun_ConcurrentMergesYieldCompleteTable(t *testing.T) {
	mock := &provider.Mock{}
	settings := testSettings()
	settings.MaxParallel = 10
	settings.BatchSize = 1
	settings.TargetLanguages = []string{"es"}
	o, _ := New(mock, settings)

	c := catalog.NewCollection()
	const n = 50
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key%03d", i)
		c.AddKey(key)
		c.EnsureTable("en").Upsert(key, key)
	}

	report, err := o.Run(context.Background(), c, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Translated != n {
		t.Fatalf("translated = %d, want %d", report.Translated, n)
	}
	es, _ := c.Table("es")
	if es.Len() != n {
		t.Errorf("es table has %d entries, want %d", es.Len(), n)
	}
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key%03d", i)
		if got, _ := es.Get(key); got != key+"_es" {
			t.Errorf("es[%s] = %q, want %q", key, got, key+"_es")
		}
	}
}
