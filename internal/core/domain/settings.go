package domain

import (
	"path/filepath"
	"time"
)

const unknownDescription = "Unknown"

// Default values used when no configuration overrides them.
const (
	DefaultRootFile          = "CLAUDE.md"
	DefaultDocsFolder        = ".claude"
	DefaultMaxResults        = 50
	DefaultChunkSize         = 500
	DefaultTopChunks         = 10
	DefaultSearchTimeout     = 30 * time.Second
	DefaultSimpleBudget      = 1000
	DefaultComplexBudget     = 4000
	DefaultCodeExampleBudget = 6000
	DefaultBudget            = 2000
	DefaultCacheTTL          = time.Hour
	DefaultProvider          = ProviderAnthropic
	DefaultCacheBackend      = CacheBackendMemory
)

// Provider identifies a summarization backend.
type Provider string

// Supported providers.
const (
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// IsValid returns true if the provider is recognised.
func (p Provider) IsValid() bool {
	return p == ProviderAnthropic || p == ProviderGemini
}

// CacheBackend identifies where distilled responses are cached.
type CacheBackend string

// Supported cache backends.
const (
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendSQLite CacheBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	return b == CacheBackendMemory || b == CacheBackendSQLite
}

// Settings is the complete configuration read by the core.
// The core never loads or validates it; adapters do.
type Settings struct {
	// WorkspacePath is the absolute workspace root.
	WorkspacePath string

	KnowledgeBase KnowledgeBaseSettings
	Search        SearchSettings
	Distill       DistillSettings
}

// KnowledgeBaseSettings locates the knowledge base inside the workspace.
type KnowledgeBaseSettings struct {
	// RootFile is the primary rules document, relative to the workspace.
	RootFile string

	// DocsFolder is the documentation tree, relative to the workspace.
	DocsFolder string

	// FilePatterns are globs of files to include in search.
	FilePatterns []string

	// ExcludePatterns are globs of files and directories to skip.
	ExcludePatterns []string
}

// SearchSettings bounds the search and ranking stages.
type SearchSettings struct {
	// MaxResults is the total matched-line budget across all roots.
	MaxResults int

	// ChunkSize is the approximate target chunk size in tokens.
	ChunkSize int

	// TopChunks is the number of ranked chunks kept.
	TopChunks int

	// Timeout bounds each search tool invocation.
	Timeout time.Duration
}

// DistillSettings configures the summarization step.
type DistillSettings struct {
	// Enabled turns distillation on. When false answers are raw chunk listings.
	Enabled bool

	// Provider selects the summarization backend.
	Provider Provider

	// Model overrides the provider's default model.
	Model string

	// APIKey is the provider credential. Without it distillation degrades.
	APIKey string

	// BaseURL overrides the provider endpoint (proxies, tests).
	BaseURL string

	// Token budgets per intent.
	SimpleBudget      int
	CodeExampleBudget int
	ComplexBudget     int
	DefaultBudget     int

	// CacheTTL is the response cache time-to-live.
	CacheTTL time.Duration

	// CacheBackend selects the response cache implementation.
	CacheBackend CacheBackend

	// CacheDir holds the SQLite cache database when CacheBackend is sqlite.
	CacheDir string

	// RequestsPerSecond limits summarization calls. Zero disables limiting.
	RequestsPerSecond float64
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings(workspace string) Settings {
	return Settings{
		WorkspacePath: workspace,
		KnowledgeBase: KnowledgeBaseSettings{
			RootFile:   DefaultRootFile,
			DocsFolder: DefaultDocsFolder,
			FilePatterns: []string{
				"*.md",
				"*.py",
				"*.prg", "*.ch",
				"*.c", "*.h",
				"*.cs",
				"*.ts", "*.tsx",
				"*.js", "*.jsx",
				"*.sql",
				"*.ps1",
				"*.sh", "*.bash",
			},
			ExcludePatterns: []string{"*.pyc", "__pycache__", ".git", "node_modules"},
		},
		Search: SearchSettings{
			MaxResults: DefaultMaxResults,
			ChunkSize:  DefaultChunkSize,
			TopChunks:  DefaultTopChunks,
			Timeout:    DefaultSearchTimeout,
		},
		Distill: DistillSettings{
			Enabled:           true,
			Provider:          DefaultProvider,
			SimpleBudget:      DefaultSimpleBudget,
			CodeExampleBudget: DefaultCodeExampleBudget,
			ComplexBudget:     DefaultComplexBudget,
			DefaultBudget:     DefaultBudget,
			CacheTTL:          DefaultCacheTTL,
			CacheBackend:      DefaultCacheBackend,
		},
	}
}

// RootFilePath returns the absolute path of the root rules file.
func (s Settings) RootFilePath() string {
	return filepath.Join(s.WorkspacePath, s.KnowledgeBase.RootFile)
}

// DocsFolderPath returns the absolute path of the documentation folder.
func (s Settings) DocsFolderPath() string {
	return filepath.Join(s.WorkspacePath, s.KnowledgeBase.DocsFolder)
}

// TokenBudget returns the token budget for an intent.
// Unrecognised intents get DefaultBudget.
func (d DistillSettings) TokenBudget(intent Intent) int {
	switch intent {
	case IntentSimple:
		return d.SimpleBudget
	case IntentCodeExample:
		return d.CodeExampleBudget
	case IntentComplex:
		return d.ComplexBudget
	default:
		return d.DefaultBudget
	}
}

// IsConfigured returns true if a summarization backend can be created.
func (d DistillSettings) IsConfigured() bool {
	return d.Enabled && d.APIKey != ""
}
