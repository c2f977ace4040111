// Package cli provides the kbrag command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbrag/internal/logger"
)

// version is reported by the version command. main sets it with SetVersion.
var version = "dev"

// Persistent flag values.
var (
	flagPath     string
	flagConfig   string
	flagVerbose  bool
	flagLogLevel string
)

// skipBootstrap marks commands that run without settings or services.
const skipBootstrap = "kbrag/skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "kbrag",
	Short: "Answer questions from a workspace knowledge base",
	Long: `kbrag answers questions about a project from its knowledge base:
a root rules file (CLAUDE.md by default) and a documentation folder
(.claude by default) inside the workspace.

Questions are turned into keywords, searched with ripgrep (or grep),
split into chunks, ranked, and distilled by a summarization backend
into a short answer. Without a configured backend the best chunks are
returned as they are.

Settings are read from kbrag.toml in the workspace (or
~/.kbrag/config.toml), then KBRAG_* environment variables, then flags.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  runBootstrap,
	PersistentPostRunE: runShutdown,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagPath, "path", "", "workspace root (default: current directory)")
	pf.StringVar(&flagConfig, "config", "", "settings file (default: kbrag.toml or ~/.kbrag/config.toml)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "print debug output")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Command output goes to stdout; logs and
// the MCP listening notice go to stderr.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	if _, ok := cmd.Annotations[skipBootstrap]; ok {
		return nil
	}
	if app != nil {
		return nil
	}

	loaded, err := loadSettings(flagPath, flagConfig)
	if err != nil {
		return err
	}
	if err := configureLogging(cmd, loaded.logLevel); err != nil {
		return err
	}

	a, err := NewApp(loaded.settings)
	if err != nil {
		return err
	}
	a.settingsFile = loaded.file
	a.owned = true
	app = a
	return nil
}

func runShutdown(_ *cobra.Command, _ []string) error {
	if app == nil || !app.owned {
		return nil
	}
	err := app.Close()
	app = nil
	return err
}

// configureLogging applies --verbose, then --log-level, then the
// environment level. Verbose wins over everything.
func configureLogging(cmd *cobra.Command, envLevel string) error {
	if flagVerbose {
		logger.SetVerbose(true)
		return nil
	}

	name := envLevel
	if cmd.Flags().Changed("log-level") {
		name = flagLogLevel
	}
	if name == "" {
		return nil
	}

	level, err := logger.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)
	return nil
}

// requireApp returns the wired services or an error for commands that
// were run without bootstrap.
func requireApp() (*App, error) {
	if app == nil {
		return nil, errors.New("knowledge service not configured")
	}
	return app, nil
}
