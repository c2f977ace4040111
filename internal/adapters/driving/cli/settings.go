package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/llm/gemini"
	"github.com/custodia-labs/kbrag/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect application settings",
	Long: `View the effective settings and check the summarization backend.

Settings come from kbrag.toml in the workspace (or ~/.kbrag/config.toml,
or --config), overridden by KBRAG_* environment variables.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the summarization backend",
	Long: `Checks that the configured summarization backend accepts the API key
by pinging the provider. No tokens are generated.`,
	RunE: runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	st := newStyles(cmd.OutOrStdout())

	data, err := file.MarshalSettings(a.Settings)
	if err != nil {
		return fmt.Errorf("failed to render settings: %w", err)
	}

	source := a.settingsFile
	if source == "" {
		source = "(none, using defaults)"
	}
	cmd.Println(st.Muted("# workspace: " + a.Settings.WorkspacePath))
	cmd.Println(st.Muted("# settings file: " + source))
	cmd.Println()
	cmd.Print(string(data))
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	st := newStyles(cmd.OutOrStdout())
	distill := a.Settings.Distill

	cmd.Println(st.Title("[Distill]"))
	cmd.Printf("  Provider: %s\n", distill.Provider)
	cmd.Printf("  Model: %s\n", modelName(distill))
	if distill.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(distill.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	if distill.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", distill.BaseURL)
	}
	cmd.Println()

	if !distill.Enabled {
		cmd.Println(st.Warn("Distillation is disabled; answers list the best matching chunks."))
		return nil
	}
	if !distill.IsConfigured() {
		cmd.Println(st.Warn("No API key set; answers list the best matching chunks."))
		cmd.Println("Set KBRAG_API_KEY or [distill] api_key to enable summarization.")
		return nil
	}
	if a.Validator == nil {
		return errors.New("settings validator not configured")
	}

	cmd.Print("Validating configuration... ")
	if err := a.Validator.ValidateLLM(distill); err != nil {
		cmd.Println(st.Err("FAILED"))
		return fmt.Errorf("summarization backend validation failed: %w", err)
	}
	cmd.Println(st.OK("OK"))
	return nil
}

// modelName returns the configured model or the provider default.
func modelName(d domain.DistillSettings) string {
	if d.Model != "" {
		return d.Model
	}
	switch d.Provider {
	case domain.ProviderGemini:
		return gemini.DefaultModel + " (default)"
	default:
		return anthropic.DefaultModel + " (default)"
	}
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
