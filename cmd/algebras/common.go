package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/irakli/algebras-go/internal/auth"
	"github.com/irakli/algebras-go/internal/config"
	"github.com/irakli/algebras-go/internal/logger"
	"golang.org/x/term"
)

var (
	isTerminal   = term.IsTerminal
	getKey       = auth.GetKey
	getEnvKey    = auth.GetEnvKey
	getStatus    = auth.GetStatus
	promptForKey = auth.PromptForAPIKey
)

func providerDisplayName(provider config.Provider) string {
	if provider == config.ProviderGemini {
		return "Gemini"
	}
	return "Algebras"
}

func parseProvider(value string) config.Provider {
	return config.Provider(strings.ToLower(strings.TrimSpace(value)))
}

// resolveAPIKey handles the logic for finding the API key.
func resolveAPIKey(provider config.Provider, allowEnv, envOnly bool) (string, string, error) {
	if envOnly {
		if key, ok := getEnvKey(provider); ok {
			return key, "Environment Variable", nil
		}
		return "", "", fmt.Errorf("env-only set but %s is not set", auth.EnvVarName(provider))
	}

	if key, source := getKey(provider, false); key != "" {
		return key, source, nil
	}

	if allowEnv {
		if key, ok := getEnvKey(provider); ok {
			return key, "Environment Variable", nil
		}
	}

	if isTerminal(int(os.Stdin.Fd())) {
		key, err := promptForKey(fmt.Sprintf("%s API Key (press Enter to skip): ", providerDisplayName(provider)))
		if err != nil {
			return "", "", fmt.Errorf("error reading API key: %w", err)
		}
		if strings.TrimSpace(key) != "" {
			return strings.TrimSpace(key), "Terminal Prompt", nil
		}
	}

	if !isTerminal(int(os.Stdin.Fd())) {
		return "", "", fmt.Errorf("no API key available (non-interactive shell); set keychain or use --allow-env")
	}
	if allowEnv {
		return "", "", fmt.Errorf("API key is required; not found in keychain or environment")
	}
	return "", "", fmt.Errorf("API key is required; not found in keychain (environment disabled by default; use --allow-env)")
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("Cancellation requested")
		cancel()
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}

// logReporter forwards run lifecycle events to the structured logger.
type logReporter struct{}

func (logReporter) Start(description, status string) {
	logger.Info("Run started", "description", description, "status", status)
}

func (logReporter) ReportProgress(status string, fraction float64) {
	logger.Info("Progress", "status", status, "percent", int(fraction*100))
}

func (logReporter) Completed(message string) {
	logger.Info(message)
}

func (logReporter) Fail(err error) {
	logger.Error("Run failed", "error", err)
}
