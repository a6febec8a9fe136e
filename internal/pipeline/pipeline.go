// Package pipeline wires the catalog storage, the configured provider client
// and the orchestrator into one translation run against a directory of
// language tables.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/irakli/algebras-go/internal/algebras"
	"github.com/irakli/algebras-go/internal/catalog"
	"github.com/irakli/algebras-go/internal/config"
	"github.com/irakli/algebras-go/internal/files"
	"github.com/irakli/algebras-go/internal/gemini"
	"github.com/irakli/algebras-go/internal/logger"
	"github.com/irakli/algebras-go/internal/orchestrator"
	"github.com/irakli/algebras-go/internal/provider"
)

// RunConfig holds everything Run needs besides the context.
type RunConfig struct {
	// Dir is the catalog directory holding one YAML table per language.
	Dir string
	// LogPath optionally receives JSONL logs; validated against symlinks
	// before use.
	LogPath string

	Settings config.Settings

	// Reporter receives run lifecycle events; nil disables reporting.
	Reporter orchestrator.Reporter

	// DryRun runs the full translation in memory but skips writing the
	// results back to disk.
	DryRun bool

	// newClient overrides provider construction in tests.
	newClient func(ctx context.Context, settings config.Settings) (provider.Translator, func() error, error)
}

// Run executes the full translation pipeline: load, translate, save.
func Run(ctx context.Context, cfg RunConfig) (Result, error) {
	var notes []string
	cfg.Settings, notes = cfg.Settings.Normalized()
	for _, note := range notes {
		logger.Warn("Settings normalized", "detail", note)
	}
	if err := cfg.Settings.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Dir == "" {
		return Result{}, fmt.Errorf("catalog directory is required")
	}
	if info, err := os.Stat(cfg.Dir); err != nil {
		return Result{}, fmt.Errorf("failed to stat catalog directory: %w", err)
	} else if !info.IsDir() {
		return Result{}, fmt.Errorf("catalog path is not a directory: %s", cfg.Dir)
	}
	if cfg.LogPath != "" {
		if err := files.RejectSymlinkPath(cfg.LogPath); err != nil {
			return Result{}, err
		}
	}

	collection, err := catalog.LoadDir(cfg.Dir)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("Loaded catalog", "dir", cfg.Dir, "keys", len(collection.Keys()), "languages", collection.Languages())

	newClient := cfg.newClient
	if newClient == nil {
		newClient = buildClient
	}
	client, closeClient, err := newClient(ctx, cfg.Settings)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create %s client: %w", cfg.Settings.Provider, err)
	}
	defer func() {
		if err := closeClient(); err != nil {
			logger.Warn("Failed to close provider client", "error", err)
		}
	}()

	o, err := orchestrator.New(client, cfg.Settings)
	if err != nil {
		return Result{}, fmt.Errorf("failed to initialize orchestrator: %w", err)
	}

	report, err := o.Run(ctx, collection, cfg.Reporter)
	if err != nil {
		return Result{Status: RunStatusFailure, Report: report}, err
	}

	result := Result{Status: statusFromReport(report), Report: report}
	logger.Info("Translation finished", "status", result.Status, "translated", report.Translated, "failed", report.Failed)

	if cfg.DryRun {
		logger.Info("Dry run, skipping save", "dir", cfg.Dir)
		return result, nil
	}
	if report.Translated > 0 {
		if err := catalog.SaveDir(collection, cfg.Dir); err != nil {
			return result, fmt.Errorf("failed to save catalog: %w", err)
		}
		result.Dir = cfg.Dir
		logger.Info("Saved results", "dir", cfg.Dir)
	}
	return result, nil
}

func buildClient(ctx context.Context, settings config.Settings) (provider.Translator, func() error, error) {
	switch settings.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, settings.APIKey, settings.Model)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	case config.ProviderAlgebras:
		return algebras.NewClient(settings.APIKey, settings.Model), func() error { return nil }, nil
	default:
		// Validate rejects anything else before we get here.
		return nil, nil, fmt.Errorf("unsupported provider %q", settings.Provider)
	}
}
