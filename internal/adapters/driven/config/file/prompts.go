package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads distillation prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptDistill: `You are a knowledge base assistant for a software development project.
Extract relevant information to answer the query based on the provided context.

Query: %s

%s

Context from knowledge base:
%s

Provide a helpful response in up to %d tokens.
If the context doesn't contain relevant information, say so clearly.
Always include source file references when citing specific information.`,

	driven.PromptInstructionsCodeExample: `Instructions for code examples:
- Include COMPLETE, working code snippets that can be used directly
- Show the full function or section, not just fragments
- Include necessary imports or dependencies
- Add brief comments explaining key parts
- Reference the source file paths`,

	driven.PromptInstructionsComplex: `Instructions for detailed explanations:
- Provide comprehensive coverage of the topic
- Explain the reasoning and context
- Include relevant code examples where helpful
- Describe any gotchas or important considerations
- Reference source files for further reading`,

	driven.PromptInstructionsSimple: `Instructions for quick answers:
- Be concise and direct
- Focus on the most important information
- Include specific details (file paths, function names, values)
- Highlight any critical warnings or gotchas`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.kbrag/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ConfigDirName, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# kbrag Prompts

This directory contains the prompts used to distill knowledge base answers.

## Files

- ` + "`distill.txt`" + ` - Frame of every distillation request
- ` + "`instructions_simple.txt`" + ` - Guidance for short factual questions
- ` + "`instructions_code_example.txt`" + ` - Guidance for code example requests
- ` + "`instructions_complex.txt`" + ` - Guidance for explanations and comparisons

## Customisation

Edit any file to change how answers are written. Changes take effect on the
next command, or when ` + "`kbrag mcp serve --watch`" + ` sees the edit.

## Format Placeholders

` + "`distill.txt`" + ` uses Go fmt placeholders, in this order:
- ` + "`%s`" + ` - the question
- ` + "`%s`" + ` - the instructions for the question's intent
- ` + "`%s`" + ` - the knowledge base excerpts
- ` + "`%d`" + ` - the token budget

Keep all four placeholders in the same order. A frame with broken
placeholders is ignored in favour of the built-in one.
`
	return os.WriteFile(path, []byte(content), 0600)
}
