package main

import (
	"fmt"
	"strings"

	"github.com/irakli/algebras-go/internal/auth"
	"github.com/irakli/algebras-go/internal/config"
	"github.com/spf13/cobra"
)

type envOptions struct {
	provider string
}

func newEnvCmd() *cobra.Command {
	opts := envOptions{}
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage API keys in OS Keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvStatus(cmd, &opts)
		},
	}

	cmd.SetUsageTemplate(envUsageTemplate)
	cmd.PersistentFlags().StringVar(&opts.provider, "provider", "algebras", "Provider to manage (algebras or gemini)")

	cmd.AddCommand(
		newEnvSetupCmd(&opts),
		newEnvDeleteCmd(&opts),
		newEnvStatusCmd(&opts),
	)
	return cmd
}

func newEnvSetupCmd(opts *envOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Save API key to keychain (prompt only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvSetup(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newEnvDeleteCmd(opts *envOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete key from keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvDelete(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newEnvStatusCmd(opts *envOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show key status (default if no action given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvStatus(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func envProvider(opts *envOptions) (config.Provider, error) {
	provider := parseProvider(opts.provider)
	switch provider {
	case config.ProviderAlgebras, config.ProviderGemini:
		return provider, nil
	default:
		return "", fmt.Errorf("invalid provider. Must be 'algebras' or 'gemini'")
	}
}

func runEnvSetup(cmd *cobra.Command, opts *envOptions) error {
	provider, err := envProvider(opts)
	if err != nil {
		return err
	}

	promptKey, err := promptForKey(fmt.Sprintf("%s API Key: ", providerDisplayName(provider)))
	if err != nil {
		return fmt.Errorf("error reading key: %w", err)
	}
	key := strings.TrimSpace(promptKey)
	if key == "" {
		return fmt.Errorf("API key is required for setup")
	}
	if err := auth.SaveKey(provider, key); err != nil {
		return fmt.Errorf("error saving key: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s API key to keychain.\n", provider)
	return nil
}

func runEnvDelete(cmd *cobra.Command, opts *envOptions) error {
	provider, err := envProvider(opts)
	if err != nil {
		return err
	}
	if err := auth.DeleteKey(provider); err != nil {
		return fmt.Errorf("error deleting key: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s API key from keychain.\n", provider)
	return nil
}

func runEnvStatus(cmd *cobra.Command, opts *envOptions) error {
	provider, err := envProvider(opts)
	if err != nil {
		return err
	}

	if getStatus(provider) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s API Key: Found (source=Keychain)\n", provider)
		return nil
	}
	if envKey, ok := getEnvKey(provider); ok && envKey != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s API Key: Found (source=Environment Variable; disabled by default, use --allow-env)\n", provider)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s API Key: Not Found (keychain empty, env not set)\n", provider)
	return nil
}
