package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/kbrag/internal/adapters/driven/config/env"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// loadedSettings is the outcome of loadSettings.
type loadedSettings struct {
	settings domain.Settings

	// file is the settings file that was applied, empty if none.
	file string

	// logLevel is KBRAG_LOG_LEVEL, empty if unset.
	logLevel string
}

// loadSettings builds the settings from defaults, the settings file, the
// environment and the --path flag, in that order of precedence.
func loadSettings(pathFlag, configFlag string) (loadedSettings, error) {
	var out loadedSettings

	environment, err := env.Load()
	if err != nil {
		return out, err
	}
	if level, ok := environment.LogLevel(); ok {
		out.logLevel = level
	}

	workspace, err := resolveWorkspace(pathFlag, environment)
	if err != nil {
		return out, err
	}

	settings := domain.DefaultSettings(workspace)

	path, found, err := file.FindSettingsFile(workspace, configFlag)
	if err != nil {
		return out, err
	}
	if found {
		sf, err := file.LoadSettingsFile(path)
		if err != nil {
			return out, err
		}
		if err := sf.Apply(&settings); err != nil {
			return out, err
		}
		out.file = path
		logger.Debug("Loaded settings from %s", path)
	}

	if err := environment.Apply(&settings); err != nil {
		return out, err
	}
	settings.WorkspacePath = workspace

	if err := validateSettings(settings); err != nil {
		return out, err
	}

	out.settings = settings
	return out, nil
}

// resolveWorkspace picks the workspace from the flag, the environment or
// the current directory. It must exist and is returned absolute.
func resolveWorkspace(pathFlag string, environment *env.Environment) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	workspace := pathFlag
	if workspace == "" {
		probe := domain.DefaultSettings(cwd)
		if err := environment.Apply(&probe); err != nil {
			return "", err
		}
		workspace = probe.WorkspacePath
	}

	abs, err := filepath.Abs(workspace)
	if err != nil {
		return "", fmt.Errorf("resolve workspace %s: %w", workspace, err)
	}

	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: workspace %s does not exist", domain.ErrInvalidInput, abs)
	}
	if err != nil {
		return "", fmt.Errorf("stat workspace %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: workspace %s is not a directory", domain.ErrInvalidInput, abs)
	}
	return abs, nil
}

// validateSettings rejects values the pipeline cannot run with.
func validateSettings(s domain.Settings) error {
	positive := []struct {
		name  string
		value int
	}{
		{"search.max_results", s.Search.MaxResults},
		{"search.chunk_size", s.Search.ChunkSize},
		{"search.top_chunks", s.Search.TopChunks},
		{"distill.simple_budget", s.Distill.SimpleBudget},
		{"distill.code_example_budget", s.Distill.CodeExampleBudget},
		{"distill.complex_budget", s.Distill.ComplexBudget},
		{"distill.default_budget", s.Distill.DefaultBudget},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", domain.ErrInvalidInput, p.name, p.value)
		}
	}

	if s.Search.Timeout <= 0 {
		return fmt.Errorf("%w: search.timeout must be positive", domain.ErrInvalidInput)
	}
	if s.Distill.CacheTTL <= 0 {
		return fmt.Errorf("%w: distill.cache_ttl must be positive", domain.ErrInvalidInput)
	}
	if s.Distill.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: distill.requests_per_second must not be negative", domain.ErrInvalidInput)
	}
	if !s.Distill.Provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q (want anthropic or gemini)", domain.ErrInvalidInput, s.Distill.Provider)
	}
	if !s.Distill.CacheBackend.IsValid() {
		return fmt.Errorf("%w: unknown cache backend %q (want memory or sqlite)",
			domain.ErrInvalidInput, s.Distill.CacheBackend)
	}
	if s.KnowledgeBase.RootFile == "" && s.KnowledgeBase.DocsFolder == "" {
		return fmt.Errorf("%w: knowledge_base needs a root_file or docs_folder", domain.ErrInvalidInput)
	}
	return nil
}
