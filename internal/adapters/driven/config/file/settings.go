package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure SettingsFile implements the interface.
var _ driven.SettingsSource = (*SettingsFile)(nil)

// Settings file locations.
const (
	// WorkspaceFileName is looked up in the workspace root first.
	WorkspaceFileName = "kbrag.toml"

	// ConfigDirName is the per-user directory below the home directory.
	ConfigDirName = ".kbrag"

	// UserFileName is the settings file inside ConfigDirName.
	UserFileName = "config.toml"
)

// fileSettings mirrors the TOML layout. Pointer fields distinguish
// "absent" from a zero value so absent keys leave settings untouched.
type fileSettings struct {
	KnowledgeBase struct {
		RootFile        *string  `toml:"root_file"`
		DocsFolder      *string  `toml:"docs_folder"`
		FilePatterns    []string `toml:"file_patterns"`
		ExcludePatterns []string `toml:"exclude_patterns"`
	} `toml:"knowledge_base"`

	Search struct {
		MaxResults *int    `toml:"max_results"`
		ChunkSize  *int    `toml:"chunk_size"`
		TopChunks  *int    `toml:"top_chunks"`
		Timeout    *string `toml:"timeout"`
	} `toml:"search"`

	Distill struct {
		Enabled           *bool    `toml:"enabled"`
		Provider          *string  `toml:"provider"`
		Model             *string  `toml:"model"`
		APIKey            *string  `toml:"api_key"`
		BaseURL           *string  `toml:"base_url"`
		SimpleBudget      *int     `toml:"simple_budget"`
		CodeExampleBudget *int     `toml:"code_example_budget"`
		ComplexBudget     *int     `toml:"complex_budget"`
		DefaultBudget     *int     `toml:"default_budget"`
		CacheTTL          *string  `toml:"cache_ttl"`
		CacheBackend      *string  `toml:"cache_backend"`
		CacheDir          *string  `toml:"cache_dir"`
		RequestsPerSecond *float64 `toml:"requests_per_second"`
	} `toml:"distill"`
}

// SettingsFile overlays the values of a TOML settings file.
type SettingsFile struct {
	path string
	data fileSettings
}

// LoadSettingsFile reads and parses a TOML settings file.
// Unknown keys are rejected so that typos do not pass silently.
func LoadSettingsFile(path string) (*SettingsFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	f := &SettingsFile{path: path}
	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f.data); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s: %s", domain.ErrInvalidInput, path, strict.String())
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, path, err)
	}
	return f, nil
}

// FindSettingsFile returns the settings file to load.
// An explicit path must exist. Otherwise kbrag.toml in the workspace wins
// over ~/.kbrag/config.toml. The boolean is false when no file applies.
func FindSettingsFile(workspace, explicit string) (string, bool, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", false, fmt.Errorf("settings file %s: %w", explicit, err)
		}
		return explicit, true, nil
	}

	candidates := []string{filepath.Join(workspace, WorkspaceFileName)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ConfigDirName, UserFileName))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true, nil
		}
	}
	return "", false, nil
}

// Name returns the file path.
func (f *SettingsFile) Name() string {
	return f.path
}

// Apply overwrites the fields of s that the file sets.
func (f *SettingsFile) Apply(s *domain.Settings) error {
	kb := f.data.KnowledgeBase
	setString(&s.KnowledgeBase.RootFile, kb.RootFile)
	setString(&s.KnowledgeBase.DocsFolder, kb.DocsFolder)
	if kb.FilePatterns != nil {
		s.KnowledgeBase.FilePatterns = kb.FilePatterns
	}
	if kb.ExcludePatterns != nil {
		s.KnowledgeBase.ExcludePatterns = kb.ExcludePatterns
	}

	sr := f.data.Search
	setInt(&s.Search.MaxResults, sr.MaxResults)
	setInt(&s.Search.ChunkSize, sr.ChunkSize)
	setInt(&s.Search.TopChunks, sr.TopChunks)
	if err := setDuration(&s.Search.Timeout, sr.Timeout, "search.timeout"); err != nil {
		return err
	}

	d := f.data.Distill
	if d.Enabled != nil {
		s.Distill.Enabled = *d.Enabled
	}
	if d.Provider != nil {
		s.Distill.Provider = domain.Provider(*d.Provider)
	}
	setString(&s.Distill.Model, d.Model)
	setString(&s.Distill.APIKey, d.APIKey)
	setString(&s.Distill.BaseURL, d.BaseURL)
	setInt(&s.Distill.SimpleBudget, d.SimpleBudget)
	setInt(&s.Distill.CodeExampleBudget, d.CodeExampleBudget)
	setInt(&s.Distill.ComplexBudget, d.ComplexBudget)
	setInt(&s.Distill.DefaultBudget, d.DefaultBudget)
	if err := setDuration(&s.Distill.CacheTTL, d.CacheTTL, "distill.cache_ttl"); err != nil {
		return err
	}
	if d.CacheBackend != nil {
		s.Distill.CacheBackend = domain.CacheBackend(*d.CacheBackend)
	}
	setString(&s.Distill.CacheDir, d.CacheDir)
	if d.RequestsPerSecond != nil {
		s.Distill.RequestsPerSecond = *d.RequestsPerSecond
	}
	return nil
}

// MarshalSettings renders settings in the file layout.
// The API key is replaced by a marker so the output is safe to print.
func MarshalSettings(s domain.Settings) ([]byte, error) {
	var f fileSettings
	f.KnowledgeBase.RootFile = &s.KnowledgeBase.RootFile
	f.KnowledgeBase.DocsFolder = &s.KnowledgeBase.DocsFolder
	f.KnowledgeBase.FilePatterns = s.KnowledgeBase.FilePatterns
	f.KnowledgeBase.ExcludePatterns = s.KnowledgeBase.ExcludePatterns

	timeout := s.Search.Timeout.String()
	f.Search.MaxResults = &s.Search.MaxResults
	f.Search.ChunkSize = &s.Search.ChunkSize
	f.Search.TopChunks = &s.Search.TopChunks
	f.Search.Timeout = &timeout

	provider := string(s.Distill.Provider)
	backend := string(s.Distill.CacheBackend)
	ttl := s.Distill.CacheTTL.String()
	key := redact(s.Distill.APIKey)
	f.Distill.Enabled = &s.Distill.Enabled
	f.Distill.Provider = &provider
	f.Distill.Model = &s.Distill.Model
	f.Distill.APIKey = &key
	f.Distill.BaseURL = &s.Distill.BaseURL
	f.Distill.SimpleBudget = &s.Distill.SimpleBudget
	f.Distill.CodeExampleBudget = &s.Distill.CodeExampleBudget
	f.Distill.ComplexBudget = &s.Distill.ComplexBudget
	f.Distill.DefaultBudget = &s.Distill.DefaultBudget
	f.Distill.CacheTTL = &ttl
	f.Distill.CacheBackend = &backend
	f.Distill.CacheDir = &s.Distill.CacheDir
	f.Distill.RequestsPerSecond = &s.Distill.RequestsPerSecond

	return toml.Marshal(f)
}

func redact(key string) string {
	if key == "" {
		return ""
	}
	return "********"
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, key string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	*dst = d
	return nil
}
