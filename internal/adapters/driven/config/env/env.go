// Package env overlays settings from environment variables.
//
// Every variable carries the KBRAG_ prefix (KBRAG_MAX_RESULTS,
// KBRAG_CACHE_TTL, ...). A few bare names are honoured as well:
// KNOWLEDGE_BASE_PATH selects the workspace, ANTHROPIC_API_KEY and
// GEMINI_API_KEY supply the key of the matching provider.
package env

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure Environment implements the interface.
var _ driven.SettingsSource = (*Environment)(nil)

// Prefix is prepended to every variable name.
const Prefix = "KBRAG"

// variables lists what can be read. Nil pointers are unset variables.
type variables struct {
	WorkspacePath *string `envconfig:"KNOWLEDGE_BASE_PATH"`

	RootFile        *string  `split_words:"true"`
	DocsFolder      *string  `split_words:"true"`
	FilePatterns    []string `split_words:"true"`
	ExcludePatterns []string `split_words:"true"`

	MaxResults    *int           `split_words:"true"`
	ChunkSize     *int           `split_words:"true"`
	TopChunks     *int           `split_words:"true"`
	SearchTimeout *time.Duration `split_words:"true"`

	DistillEnabled    *bool          `split_words:"true"`
	Provider          *string        `split_words:"true"`
	Model             *string        `split_words:"true"`
	APIKey            *string        `split_words:"true"`
	AnthropicAPIKey   *string        `envconfig:"ANTHROPIC_API_KEY"`
	GeminiAPIKey      *string        `envconfig:"GEMINI_API_KEY"`
	BaseURL           *string        `split_words:"true"`
	SimpleBudget      *int           `split_words:"true"`
	CodeExampleBudget *int           `split_words:"true"`
	ComplexBudget     *int           `split_words:"true"`
	DefaultBudget     *int           `split_words:"true"`
	CacheTTL          *time.Duration `split_words:"true"`
	CacheBackend      *string        `split_words:"true"`
	CacheDir          *string        `split_words:"true"`
	RequestsPerSecond *float64       `split_words:"true"`

	LogLevel *string `split_words:"true"`
}

// Environment is a settings source backed by the process environment.
type Environment struct {
	vars variables
}

// Load reads the environment. Malformed values (a non-numeric
// KBRAG_MAX_RESULTS, say) are reported as domain.ErrInvalidInput.
func Load() (*Environment, error) {
	e := &Environment{}
	if err := envconfig.Process(Prefix, &e.vars); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", domain.ErrInvalidInput, err)
	}
	return e, nil
}

// Name identifies the source in error messages.
func (e *Environment) Name() string {
	return "environment"
}

// LogLevel returns KBRAG_LOG_LEVEL if set.
func (e *Environment) LogLevel() (string, bool) {
	if e.vars.LogLevel == nil {
		return "", false
	}
	return *e.vars.LogLevel, true
}

// Apply overwrites the fields of s that are set in the environment.
// KBRAG_API_KEY wins over the provider-specific key; the provider-specific
// key is chosen after KBRAG_PROVIDER has been applied.
func (e *Environment) Apply(s *domain.Settings) error {
	v := e.vars

	setString(&s.WorkspacePath, v.WorkspacePath)

	setString(&s.KnowledgeBase.RootFile, v.RootFile)
	setString(&s.KnowledgeBase.DocsFolder, v.DocsFolder)
	if v.FilePatterns != nil {
		s.KnowledgeBase.FilePatterns = v.FilePatterns
	}
	if v.ExcludePatterns != nil {
		s.KnowledgeBase.ExcludePatterns = v.ExcludePatterns
	}

	setInt(&s.Search.MaxResults, v.MaxResults)
	setInt(&s.Search.ChunkSize, v.ChunkSize)
	setInt(&s.Search.TopChunks, v.TopChunks)
	if v.SearchTimeout != nil {
		s.Search.Timeout = *v.SearchTimeout
	}

	if v.DistillEnabled != nil {
		s.Distill.Enabled = *v.DistillEnabled
	}
	if v.Provider != nil {
		s.Distill.Provider = domain.Provider(*v.Provider)
	}
	setString(&s.Distill.Model, v.Model)
	switch {
	case v.APIKey != nil:
		s.Distill.APIKey = *v.APIKey
	case s.Distill.Provider == domain.ProviderGemini && v.GeminiAPIKey != nil:
		s.Distill.APIKey = *v.GeminiAPIKey
	case s.Distill.Provider != domain.ProviderGemini && v.AnthropicAPIKey != nil:
		s.Distill.APIKey = *v.AnthropicAPIKey
	}
	setString(&s.Distill.BaseURL, v.BaseURL)
	setInt(&s.Distill.SimpleBudget, v.SimpleBudget)
	setInt(&s.Distill.CodeExampleBudget, v.CodeExampleBudget)
	setInt(&s.Distill.ComplexBudget, v.ComplexBudget)
	setInt(&s.Distill.DefaultBudget, v.DefaultBudget)
	if v.CacheTTL != nil {
		s.Distill.CacheTTL = *v.CacheTTL
	}
	if v.CacheBackend != nil {
		s.Distill.CacheBackend = domain.CacheBackend(*v.CacheBackend)
	}
	setString(&s.Distill.CacheDir, v.CacheDir)
	if v.RequestsPerSecond != nil {
		s.Distill.RequestsPerSecond = *v.RequestsPerSecond
	}
	return nil
}

func setString(dst, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst, v *int) {
	if v != nil {
		*dst = *v
	}
}
