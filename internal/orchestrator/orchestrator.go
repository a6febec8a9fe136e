// Package orchestrator drives a translation run: it resolves the work per
// target language, partitions it into batch jobs, dispatches the jobs under a
// bounded-concurrency gate with an optional inter-request delay, merges
// results into the target tables, and reports progress throughout.
//
// Provider-level failures are data, not faults: they are aggregated on the
// run report and the language loop keeps going. Only precondition violations
// (missing collection, no resolvable target languages) abort a run.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/irakli/algebras-go/internal/apperrors"
	"github.com/irakli/algebras-go/internal/batch"
	"github.com/irakli/algebras-go/internal/catalog"
	"github.com/irakli/algebras-go/internal/config"
	"github.com/irakli/algebras-go/internal/langcode"
	"github.com/irakli/algebras-go/internal/logger"
	"github.com/irakli/algebras-go/internal/provider"
	"github.com/rivo/uniseg"
)

const maxAttempts = 3

// Reporter receives run lifecycle events. Implementations must tolerate
// concurrent ReportProgress calls; Start, Completed and Fail are only ever
// called from the goroutine that called Run.
type Reporter interface {
	Start(description, status string)
	ReportProgress(status string, fraction float64)
	Completed(message string)
	Fail(err error)
}

type nopReporter struct{}

func (nopReporter) Start(string, string)           {}
func (nopReporter) ReportProgress(string, float64) {}
func (nopReporter) Completed(string)               {}
func (nopReporter) Fail(error)                     {}

// Report summarizes one run. Errors holds every per-batch and per-unit
// failure in the order it was recorded; a run with an empty Errors list
// translated everything it set out to translate.
type Report struct {
	RunID          string
	SourceLanguage string
	Translated     int
	Failed         int
	Errors         []error
}

// Orchestrator runs translation sessions against a single provider client.
// Settings are expected to have passed config validation already; New only
// guards the bounds it relies on for scheduling.
type Orchestrator struct {
	client   provider.Translator
	settings config.Settings
}

func New(client provider.Translator, settings config.Settings) (*Orchestrator, error) {
	if client == nil {
		return nil, fmt.Errorf("translator client is required")
	}
	if settings.BatchSize < config.MinBatchSize || settings.BatchSize > config.MaxBatchSize {
		return nil, fmt.Errorf("batch size must be between %d and %d, got %d", config.MinBatchSize, config.MaxBatchSize, settings.BatchSize)
	}
	if settings.MaxParallel < config.MinParallel || settings.MaxParallel > config.MaxParallel {
		return nil, fmt.Errorf("parallelism must be between %d and %d, got %d", config.MinParallel, config.MaxParallel, settings.MaxParallel)
	}
	return &Orchestrator{client: client, settings: settings}, nil
}

// Run translates every pending entry of every target language and merges the
// results into the collection. The returned error is non-nil only for
// precondition violations and cancellation; provider failures are collected
// on the report instead.
func (o *Orchestrator) Run(ctx context.Context, collection *catalog.Collection, reporter Reporter) (*Report, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}
	report := &Report{RunID: uuid.NewString()}

	if collection == nil {
		err := apperrors.Precondition("collection is required")
		reporter.Fail(err)
		return report, err
	}

	// The source is resolved once and stays stable for the whole run.
	source, err := catalog.ResolveSource(collection, o.settings.SourceLanguage)
	if err != nil {
		err = apperrors.Precondition(err.Error())
		reporter.Fail(err)
		return report, err
	}
	report.SourceLanguage = source.Code()

	targets := o.resolveTargets(collection, source)
	if len(targets) == 0 {
		err := apperrors.Precondition("no target languages to translate")
		reporter.Fail(err)
		return report, err
	}

	reporter.Start(
		fmt.Sprintf("Translating from %s", langcode.DisplayName(source.Code())),
		fmt.Sprintf("%d target language(s)", len(targets)),
	)
	logger.Info("Translation run started",
		"run_id", report.RunID,
		"source", source.Code(),
		"targets", targets,
		"mode", o.settings.Mode,
		"batch_size", o.settings.BatchSize,
		"parallel", o.settings.MaxParallel,
	)

	for _, target := range targets {
		if ctx.Err() != nil {
			break
		}
		o.runLanguage(ctx, collection, source, target, reporter, report)
	}

	if ctx.Err() != nil {
		logger.Warn("Translation run canceled", "run_id", report.RunID, "translated", report.Translated)
		reporter.Fail(ctx.Err())
		return report, ctx.Err()
	}

	logger.Info("Translation run finished",
		"run_id", report.RunID,
		"translated", report.Translated,
		"failed", report.Failed,
		"errors", len(report.Errors),
	)
	if len(report.Errors) > 0 {
		reporter.Completed(fmt.Sprintf("Done with errors: %d translated, %d failed", report.Translated, report.Failed))
	} else {
		reporter.Completed(fmt.Sprintf("Done: %d translated", report.Translated))
	}
	return report, nil
}

// resolveTargets returns the effective target set: the explicit list when one
// is configured, otherwise every table in the collection. The source language
// is excluded either way.
func (o *Orchestrator) resolveTargets(collection *catalog.Collection, source *catalog.Table) []string {
	candidates := o.settings.TargetLanguages
	if len(candidates) == 0 {
		candidates = collection.Languages()
	}
	var targets []string
	for _, code := range candidates {
		if langcode.Equal(code, source.Code()) {
			continue
		}
		targets = append(targets, code)
	}
	return targets
}

func (o *Orchestrator) runLanguage(ctx context.Context, collection *catalog.Collection, source *catalog.Table, targetCode string, reporter Reporter, report *Report) {
	entries := catalog.Pending(collection, source, targetCode, o.settings.OnlyMissing)
	if len(entries) == 0 {
		reporter.ReportProgress(fmt.Sprintf("%s: nothing to translate", targetCode), 1)
		reporter.Completed(fmt.Sprintf("%s: up to date", langcode.DisplayName(targetCode)))
		return
	}

	table := collection.EnsureTable(targetCode)

	batchSize := o.settings.BatchSize
	if o.settings.Mode == config.ModeSingle {
		batchSize = 1
	}
	jobs := batch.Plan(entries, batchSize)
	total := len(jobs)

	var (
		mu        sync.Mutex
		completed int
		merged    int
		failed    int
	)

	workers := o.settings.MaxParallel
	if workers > total {
		workers = total
	}

	jobCh := make(chan batch.Job, total)
	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				select {
				case <-ctx.Done():
					mu.Lock()
					failed += len(job.Units)
					report.Errors = append(report.Errors, fmt.Errorf("%s batch %d: %w", targetCode, job.Index, ctx.Err()))
					mu.Unlock()
					return
				default:
				}

				jobMerged, jobFailed, errs := o.dispatch(ctx, job, source.Code(), targetCode, table)

				mu.Lock()
				completed++
				merged += jobMerged
				failed += jobFailed
				report.Errors = append(report.Errors, errs...)
				done := completed
				mu.Unlock()

				reporter.ReportProgress(fmt.Sprintf("%s: %d/%d batches", targetCode, done, total), float64(done)/float64(total))

				// The gate slot is held through the courtesy delay, so the
				// pause applies per request that used the gate.
				if o.settings.RequestDelay > 0 {
					timer := time.NewTimer(o.settings.RequestDelay)
					select {
					case <-ctx.Done():
						timer.Stop()
						return
					case <-timer.C:
					}
				}
			}
		}()
	}
	wg.Wait()

	// Jobs never admitted through the gate count as failed.
	if ctx.Err() != nil {
		for job := range jobCh {
			failed += len(job.Units)
			report.Errors = append(report.Errors, fmt.Errorf("%s batch %d: %w", targetCode, job.Index, ctx.Err()))
		}
	}

	report.Translated += merged
	report.Failed += failed

	if ctx.Err() != nil {
		return
	}
	logger.Info("Language completed", "target", targetCode, "translated", merged, "failed", failed)
	if failed > 0 {
		reporter.Completed(fmt.Sprintf("%s: %d translated, %d failed", langcode.DisplayName(targetCode), merged, failed))
	} else {
		reporter.Completed(fmt.Sprintf("%s: %d translated", langcode.DisplayName(targetCode), merged))
	}
}

// dispatch sends one job through the client with retries, then merges the
// aligned results into the target table. It returns the merged and failed
// unit counts plus every error worth surfacing on the report.
func (o *Orchestrator) dispatch(ctx context.Context, job batch.Job, sourceLang, targetCode string, table *catalog.Table) (mergedCount, failedCount int, errs []error) {
	results, err := o.translateWithRetry(ctx, job, sourceLang, targetCode)
	if err != nil {
		return 0, len(job.Units), []error{fmt.Errorf("%s batch %d: %w", targetCode, job.Index, err)}
	}

	// Alignment is positional: result i belongs to unit i. A response longer
	// than the request is truncated; a shorter one marks the trailing units
	// failed instead of shifting assignments.
	aligned := len(results)
	if aligned > len(job.Units) {
		logger.Warn("Provider returned surplus results; extras discarded",
			"target", targetCode, "batch", job.Index, "requested", len(job.Units), "returned", len(results))
		aligned = len(job.Units)
	}
	if aligned < len(job.Units) {
		errs = append(errs, fmt.Errorf("%s batch %d: response length mismatch: %d result(s) for %d unit(s)",
			targetCode, job.Index, len(results), len(job.Units)))
	}

	for i, unit := range job.Units {
		if i >= aligned {
			failedCount++
			continue
		}
		res := results[i]
		if res.Err != "" {
			failedCount++
			errs = append(errs, fmt.Errorf("%s batch %d: unit %q: %s", targetCode, job.Index, unit.Key, res.Err))
			continue
		}
		if res.Translated == "" {
			failedCount++
			errs = append(errs, fmt.Errorf("%s batch %d: unit %q: empty translation", targetCode, job.Index, unit.Key))
			continue
		}
		o.auditLength(unit, res, targetCode)
		table.Upsert(unit.Key, res.Translated)
		mergedCount++
	}
	return mergedCount, failedCount, errs
}

func (o *Orchestrator) translateWithRetry(ctx context.Context, job batch.Job, sourceLang, targetCode string) ([]provider.Result, error) {
	opts := o.options()

	var results []provider.Result
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if o.settings.Mode == config.ModeSingle && len(job.Units) == 1 {
			var res provider.Result
			res, err = o.client.TranslateSingle(ctx, job.Units[0], sourceLang, targetCode, opts)
			results = []provider.Result{res}
		} else {
			results, err = o.client.TranslateBatch(ctx, job.Units, sourceLang, targetCode, opts)
		}
		if err == nil {
			return results, nil
		}

		retry, backoff := retryDecision(ctx, err, attempt, maxAttempts)
		if !retry {
			break
		}
		logger.Warn("Batch failed, retrying",
			"target", targetCode, "batch", job.Index, "attempt", attempt, "backoff", backoff, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, err
}

func (o *Orchestrator) options() provider.Options {
	return provider.Options{
		UISafe:     o.settings.UISafe,
		Prompt:     o.settings.CustomPrompt,
		GlossaryID: o.settings.GlossaryID,
		Normalize:  o.settings.Normalize,
		Tuning:     o.settings.Tuning,
	}
}

// auditLength warns when a UI-safe run still produced a translation longer
// than its source, measured in grapheme clusters so combining marks and
// emoji count as one user-perceived character.
func (o *Orchestrator) auditLength(unit provider.Unit, res provider.Result, targetCode string) {
	if !o.settings.UISafe {
		return
	}
	sourceLen := uniseg.GraphemeClusterCount(unit.Text)
	translatedLen := uniseg.GraphemeClusterCount(res.Translated)
	if translatedLen > sourceLen {
		logger.Warn("Translation exceeds source length in UI-safe mode",
			"target", targetCode, "key", unit.Key, "source_len", sourceLen, "translated_len", translatedLen)
	}
}

func retryDecision(ctx context.Context, err error, attempt, maxAttempts int) (bool, time.Duration) {
	if err == nil {
		return false, 0
	}
	if attempt >= maxAttempts {
		return false, 0
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, 0
	}
	if !apperrors.IsRetryable(err) {
		return false, 0
	}
	base := 1 * time.Second
	maxBackoff := 20 * time.Second
	jitterMax := 1 * time.Second

	backoff := base << (attempt - 1)
	if apperrors.IsRateLimit(err) {
		backoff = backoff * 2
	}
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(jitterMax)))
	return true, backoff + jitter
}
