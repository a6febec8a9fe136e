package auth

import (
	"testing"

	"github.com/irakli/algebras-go/internal/config"
	"github.com/zalando/go-keyring"
)

func TestKeychainRoundTrip(t *testing.T) {
	keyring.MockInit()

	if GetStatus(config.ProviderAlgebras) {
		t.Fatalf("expected no key before save")
	}
	if err := SaveKey(config.ProviderAlgebras, "  secret-key \n"); err != nil {
		t.Fatalf("SaveKey: %v", err)
	}
	key, source := GetKey(config.ProviderAlgebras, false)
	if key != "secret-key" {
		t.Errorf("key = %q, want trimmed %q", key, "secret-key")
	}
	if source != "Keychain" {
		t.Errorf("source = %q, want Keychain", source)
	}
	// Accounts are per provider.
	if GetStatus(config.ProviderGemini) {
		t.Errorf("gemini key should not exist")
	}
	if err := DeleteKey(config.ProviderAlgebras); err != nil {
		t.Fatalf("DeleteKey: %v", err)
	}
	if GetStatus(config.ProviderAlgebras) {
		t.Errorf("expected no key after delete")
	}
}

func TestGetKey_EnvFallback(t *testing.T) {
	keyring.MockInit()
	t.Setenv("GEMINI_API_KEY", "env-key")

	key, source := GetKey(config.ProviderGemini, true)
	if key != "env-key" || source != "Environment Variable" {
		t.Errorf("got (%q, %q), want env fallback", key, source)
	}

	key, source = GetKey(config.ProviderGemini, false)
	if key != "" || source != "" {
		t.Errorf("env must be ignored when allowEnv=false, got (%q, %q)", key, source)
	}
}

func TestGetEnvKey(t *testing.T) {
	t.Setenv("ALGEBRAS_API_KEY", "   ")
	if _, ok := GetEnvKey(config.ProviderAlgebras); ok {
		t.Errorf("blank env var should not count as a key")
	}
	t.Setenv("ALGEBRAS_API_KEY", "abc")
	key, ok := GetEnvKey(config.ProviderAlgebras)
	if !ok || key != "abc" {
		t.Errorf("got (%q, %v), want (abc, true)", key, ok)
	}
}
