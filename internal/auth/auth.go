package auth

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/irakli/algebras-go/internal/config"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const (
	serviceName     = "algebras"
	algebrasAccount = "algebras-api-key"
	geminiAccount   = "gemini-api-key"
	algebrasEnvVar  = "ALGEBRAS_API_KEY"
	geminiEnvVar    = "GEMINI_API_KEY"
)

func accountFor(provider config.Provider) string {
	if provider == config.ProviderGemini {
		return geminiAccount
	}
	return algebrasAccount
}

func envVarFor(provider config.Provider) string {
	if provider == config.ProviderGemini {
		return geminiEnvVar
	}
	return algebrasEnvVar
}

// GetKey retrieves the API key for a provider. If allowEnv is false,
// environment variables are ignored.
func GetKey(provider config.Provider, allowEnv bool) (string, string) {
	// 1. Try Keychain
	key, err := keyring.Get(serviceName, accountFor(provider))
	if err == nil && key != "" {
		return strings.TrimSpace(key), "Keychain"
	}

	if allowEnv {
		// 2. Try Env Var (optional)
		key = os.Getenv(envVarFor(provider))
		if key != "" {
			return strings.TrimSpace(key), "Environment Variable"
		}
	}

	return "", ""
}

// SaveKey saves the key for a provider to the OS Keychain.
func SaveKey(provider config.Provider, key string) error {
	return keyring.Set(serviceName, accountFor(provider), strings.TrimSpace(key))
}

// DeleteKey removes the key for a provider from the OS Keychain.
func DeleteKey(provider config.Provider) error {
	return keyring.Delete(serviceName, accountFor(provider))
}

// GetStatus returns whether a key exists for a provider in the keychain.
func GetStatus(provider config.Provider) bool {
	key, err := keyring.Get(serviceName, accountFor(provider))
	return err == nil && key != ""
}

// PromptForAPIKey securely prompts the user for their API key.
func PromptForAPIKey(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

// GetEnvKey retrieves the key from environment variables only.
func GetEnvKey(provider config.Provider) (string, bool) {
	key := strings.TrimSpace(os.Getenv(envVarFor(provider)))
	if key == "" {
		return "", false
	}
	return key, true
}

// EnvVarName returns the environment variable consulted for a provider,
// for user-facing help text.
func EnvVarName(provider config.Provider) string {
	return envVarFor(provider)
}
