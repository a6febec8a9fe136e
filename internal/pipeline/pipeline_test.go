package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/irakli/algebras-go/internal/apperrors"
	"github.com/irakli/algebras-go/internal/config"
	"github.com/irakli/algebras-go/internal/provider"
)

func writeTable(t *testing.T, dir, code, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, code+".yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("write table %s: %v", code, err)
	}
}

func testRunConfig(t *testing.T, mock provider.Translator) RunConfig {
	t.Helper()
	dir := t.TempDir()
	writeTable(t, dir, "en", "greet: Hello\nfarewell: Bye\n")
	writeTable(t, dir, "es", "")

	return RunConfig{
		Dir: dir,
		Settings: config.Settings{
			Provider:        config.ProviderAlgebras,
			APIKey:          "test",
			Mode:            config.ModeBatch,
			BatchSize:       10,
			MaxParallel:     2,
			SourceLanguage:  "en",
			TargetLanguages: []string{"es"},
		},
		newClient: func(ctx context.Context, settings config.Settings) (provider.Translator, func() error, error) {
			return mock, func() error { return nil }, nil
		},
	}
}

func TestRun_TranslatesAndSaves(t *testing.T) {
	mock := &provider.Mock{}
	cfg := testRunConfig(t, mock)

	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != RunStatusSuccess {
		t.Errorf("status = %s, want %s", result.Status, RunStatusSuccess)
	}
	if result.Dir != cfg.Dir {
		t.Errorf("result dir = %q, want %q", result.Dir, cfg.Dir)
	}

	data, err := os.ReadFile(filepath.Join(cfg.Dir, "es.yaml"))
	if err != nil {
		t.Fatalf("read es table: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "greet: Hello_es") || !strings.Contains(content, "farewell: Bye_es") {
		t.Errorf("saved table missing translations:\n%s", content)
	}
	// Source key order must survive the round trip.
	if strings.Index(content, "greet") > strings.Index(content, "farewell") {
		t.Errorf("key order not preserved:\n%s", content)
	}

	manifest, err := os.ReadFile(filepath.Join(cfg.Dir, "collection.yaml"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.Contains(string(manifest), "en") || !strings.Contains(string(manifest), "es") {
		t.Errorf("manifest missing languages:\n%s", manifest)
	}
}

func TestRun_DryRunLeavesDiskUntouched(t *testing.T) {
	mock := &provider.Mock{}
	cfg := testRunConfig(t, mock)
	cfg.DryRun = true

	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != RunStatusSuccess {
		t.Errorf("status = %s, want %s", result.Status, RunStatusSuccess)
	}
	if result.Dir != "" {
		t.Errorf("dry run must not report a saved dir, got %q", result.Dir)
	}
	data, _ := os.ReadFile(filepath.Join(cfg.Dir, "es.yaml"))
	if strings.Contains(string(data), "Hello_es") {
		t.Errorf("dry run wrote to disk:\n%s", data)
	}
}

func TestRun_EmptyTargetListDiscoversFromCatalog(t *testing.T) {
	mock := &provider.Mock{}
	cfg := testRunConfig(t, mock)
	cfg.Settings.TargetLanguages = nil

	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != RunStatusSuccess {
		t.Errorf("status = %s, want %s", result.Status, RunStatusSuccess)
	}
	data, err := os.ReadFile(filepath.Join(cfg.Dir, "es.yaml"))
	if err != nil {
		t.Fatalf("read es table: %v", err)
	}
	if !strings.Contains(string(data), "greet: Hello_es") {
		t.Errorf("discovered target not translated:\n%s", data)
	}
}

func TestRun_UpToDateCatalogIsSkipped(t *testing.T) {
	mock := &provider.Mock{}
	cfg := testRunConfig(t, mock)
	cfg.Settings.OnlyMissing = true
	writeTable(t, cfg.Dir, "es", "greet: Hola\nfarewell: Adios\n")

	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != RunStatusSkipped {
		t.Errorf("status = %s, want %s", result.Status, RunStatusSkipped)
	}
	if result.Dir != "" {
		t.Errorf("nothing translated, nothing should be saved, got dir %q", result.Dir)
	}
	if calls := mock.Calls(); calls != 0 {
		t.Errorf("provider called %d times for an up-to-date catalog", calls)
	}
}

func TestRun_PartialFailureStillSaves(t *testing.T) {
	mock := &provider.Mock{TruncateTo: 1}
	cfg := testRunConfig(t, mock)

	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != RunStatusPartialSuccess {
		t.Errorf("status = %s, want %s", result.Status, RunStatusPartialSuccess)
	}
	data, _ := os.ReadFile(filepath.Join(cfg.Dir, "es.yaml"))
	if !strings.Contains(string(data), "greet: Hello_es") {
		t.Errorf("merged result not saved:\n%s", data)
	}
}

func TestRun_AllBatchesFailed(t *testing.T) {
	mock := &provider.Mock{BatchErr: apperrors.New(apperrors.KindBadRequest, "rejected", nil)}
	cfg := testRunConfig(t, mock)

	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("provider failures must not fail Run, got %v", err)
	}
	if result.Status != RunStatusFailure {
		t.Errorf("status = %s, want %s", result.Status, RunStatusFailure)
	}
	// Nothing translated, nothing written.
	if result.Dir != "" {
		t.Errorf("failed run must not save, got dir %q", result.Dir)
	}
}

func TestRun_InvalidSettings(t *testing.T) {
	cfg := testRunConfig(t, &provider.Mock{})
	cfg.Settings.Provider = "openai"

	_, err := Run(context.Background(), cfg)
	if err == nil {
		t.Fatalf("expected hard error for unsupported provider")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("error = %q, want configuration error", err.Error())
	}
}

func TestRun_SettingsAreClampedNotRejected(t *testing.T) {
	mock := &provider.Mock{}
	cfg := testRunConfig(t, mock)
	cfg.Settings.MaxParallel = 64

	if _, err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("out-of-range parallelism should clamp, got %v", err)
	}
}

func TestRun_MissingDir(t *testing.T) {
	cfg := testRunConfig(t, &provider.Mock{})
	cfg.Dir = filepath.Join(cfg.Dir, "does-not-exist")

	if _, err := Run(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for missing catalog directory")
	}
}

func TestRun_PreconditionFailurePropagates(t *testing.T) {
	mock := &provider.Mock{}
	cfg := testRunConfig(t, mock)
	// Source only, no other table, no explicit targets.
	cfg.Settings.TargetLanguages = nil
	dir := t.TempDir()
	writeTable(t, dir, "en", "greet: Hello\n")
	cfg.Dir = dir

	result, err := Run(context.Background(), cfg)
	if err == nil {
		t.Fatalf("expected precondition error")
	}
	if !apperrors.IsPrecondition(err) {
		t.Errorf("expected precondition kind, got %v", err)
	}
	if result.Status != RunStatusFailure {
		t.Errorf("status = %s, want %s", result.Status, RunStatusFailure)
	}
}
