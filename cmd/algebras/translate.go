package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/irakli/algebras-go/internal/apperrors"
	"github.com/irakli/algebras-go/internal/cleanup"
	"github.com/irakli/algebras-go/internal/config"
	"github.com/irakli/algebras-go/internal/files"
	"github.com/irakli/algebras-go/internal/logger"
	"github.com/irakli/algebras-go/internal/pipeline"
	"github.com/spf13/cobra"
)

type translateOptions struct {
	provider     string
	modelName    string
	sourceLang   string
	targetLangs  []string
	onlyMissing  bool
	mode         string
	batchSize    int
	parallel     int
	requestDelay time.Duration
	glossaryID   string
	customPrompt string
	uiSafe       bool
	noNormalize  bool
	dryRun       bool
	logFilePath  string
	allowEnv     bool
	envOnly      bool
	debug        bool
}

func newTranslateCmd() *cobra.Command {
	opts := translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate <catalog-dir>",
		Short: "Translate a directory of language tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				_ = cmd.Usage()
				return fmt.Errorf("catalog directory is required")
			}
			return runTranslate(cmd, args, &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addTranslateFlags(cmd, &opts)
	return cmd
}

func addTranslateFlags(cmd *cobra.Command, opts *translateOptions) {
	cmd.Flags().StringVar(&opts.provider, "provider", "algebras", "Translation provider (algebras or gemini)")
	cmd.Flags().StringVar(&opts.modelName, "model", "", "Provider model name (provider default if empty)")
	cmd.Flags().StringVar(&opts.sourceLang, "source", "auto", "Source language code (auto = first table)")
	cmd.Flags().StringSliceVar(&opts.targetLangs, "target", nil, "Target language codes (default: every other table)")
	cmd.Flags().BoolVar(&opts.onlyMissing, "only-missing", false, "Translate only entries missing from the target tables")
	cmd.Flags().StringVar(&opts.mode, "mode", "batch", "Dispatch mode (batch or single)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", config.DefaultBatch, "Entries per request (1-100)")
	cmd.Flags().IntVar(&opts.parallel, "parallel", config.DefaultParallel, "Concurrent requests (1-10)")
	cmd.Flags().DurationVar(&opts.requestDelay, "delay", 0, "Pause after each request (e.g. 500ms)")
	cmd.Flags().StringVar(&opts.glossaryID, "glossary", "", "Glossary id (single mode only)")
	cmd.Flags().StringVar(&opts.customPrompt, "prompt", "", "Extra instructions appended to the translation prompt")
	cmd.Flags().BoolVar(&opts.uiSafe, "ui-safe", false, "Ask for translations no longer than their source")
	cmd.Flags().BoolVar(&opts.noNormalize, "no-normalize", false, "Disable escape-sequence cleanup of translations")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Translate without writing results back to disk")
	cmd.Flags().StringVar(&opts.logFilePath, "log-file", "", "Path to save machine-readable JSONL logs")
	cmd.Flags().BoolVar(&opts.allowEnv, "allow-env", false, "Allow reading API key from environment variables")
	cmd.Flags().BoolVar(&opts.envOnly, "env-only", false, "Use only environment variables for API keys")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
}

func runTranslate(cmd *cobra.Command, args []string, opts *translateOptions) error {
	if len(args) < 1 {
		return fmt.Errorf("catalog directory is required")
	}
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Warning: expected 1 argument but got %d. Did you forget quotes around the path?\n", len(args))
		fmt.Fprintf(os.Stderr, "  Using catalog: %s\n", args[0])
	}

	logLevel := logger.LevelInfo
	if opts.debug {
		logLevel = logger.LevelDebug
	}
	var logFileW io.Writer
	if opts.logFilePath != "" {
		if err := files.RejectSymlinkPath(opts.logFilePath); err != nil {
			return err
		}
		f, err := os.OpenFile(opts.logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register(f.Close)
		logFileW = f
	}
	logger.Init(logLevel, logFileW)

	startTime := time.Now()

	provider := parseProvider(opts.provider)
	actualKey, source, err := resolveAPIKey(provider, opts.allowEnv, opts.envOnly)
	if err != nil {
		return err
	}
	logger.Info("Using API Key", "provider", string(provider), "source", source)

	cfg := pipeline.RunConfig{
		Dir:     args[0],
		LogPath: opts.logFilePath,
		Settings: config.Settings{
			Provider:        provider,
			Model:           opts.modelName,
			APIKey:          actualKey,
			SourceLanguage:  opts.sourceLang,
			TargetLanguages: opts.targetLangs,
			Mode:            config.Mode(strings.ToLower(opts.mode)),
			BatchSize:       opts.batchSize,
			MaxParallel:     opts.parallel,
			RequestDelay:    opts.requestDelay,
			OnlyMissing:     opts.onlyMissing,
			Normalize:       !opts.noNormalize,
			UISafe:          opts.uiSafe,
			CustomPrompt:    opts.customPrompt,
			GlossaryID:      opts.glossaryID,
		},
		Reporter: logReporter{},
		DryRun:   opts.dryRun,
	}

	ctx, stop := signalContext()
	defer stop()
	result, err := pipeline.Run(ctx, cfg)

	if err != nil {
		if ctx.Err() != nil && !apperrors.IsPrecondition(err) {
			logger.Warn("Translation canceled", "error", err)
			return nil
		}
		return err
	}

	printRunSummary(result, time.Since(startTime))
	return runStatusError(result)
}

func printRunSummary(result pipeline.Result, duration time.Duration) {
	fmt.Println("\n--- Run Summary ---")
	fmt.Printf("Time: %s\n", duration)
	fmt.Printf("Status: %s\n", result.Status)
	if result.Report != nil {
		fmt.Printf("Translated: %d\n", result.Report.Translated)
		fmt.Printf("Failed: %d\n", result.Report.Failed)
		for _, err := range result.Report.Errors {
			fmt.Printf("  - %v\n", err)
		}
	}
	if result.Dir != "" {
		fmt.Printf("Saved to: %s\n", result.Dir)
	}
}

func runStatusError(result pipeline.Result) error {
	switch result.Status {
	case pipeline.RunStatusSuccess, pipeline.RunStatusSkipped:
		return nil
	case pipeline.RunStatusPartialSuccess, pipeline.RunStatusFailure:
		return fmt.Errorf("translation finished with status: %s", result.Status)
	default:
		return fmt.Errorf("translation finished with unknown status: %q", result.Status)
	}
}
