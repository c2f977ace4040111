package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockSearchTool implements driven.SearchTool with canned output.
type mockSearchTool struct {
	name      string
	available bool
	lines     map[string][]string // root -> output lines
	err       error
	requests  []driven.SearchRequest
}

func (m *mockSearchTool) Name() string {
	return m.name
}

func (m *mockSearchTool) Available(_ context.Context) bool {
	return m.available
}

func (m *mockSearchTool) Search(_ context.Context, req driven.SearchRequest) ([]string, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.lines[req.Root], nil
}

// scanTool implements driven.SearchTool by scanning files in-process,
// printing path:line:content like rg does.
type scanTool struct{}

func (scanTool) Name() string {
	return "scan"
}

func (scanTool) Available(_ context.Context) bool {
	return true
}

func (scanTool) Search(_ context.Context, req driven.SearchRequest) ([]string, error) {
	re, err := regexp.Compile("(?i)" + req.Pattern)
	if err != nil {
		return nil, err
	}

	var out []string
	err = filepath.WalkDir(req.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		count := 0
		for i, line := range strings.Split(string(data), "\n") {
			if req.MaxCount > 0 && count >= req.MaxCount {
				break
			}
			if re.MatchString(line) {
				out = append(out, fmt.Sprintf("%s:%d:%s", path, i+1, line))
				count++
			}
		}
		return nil
	})
	return out, err
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	prompts  []string
	opts     []driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-model"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

func (m *mockLLMService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("prompt %q not found", name)
}

func (m *mockPromptStore) Reload() {}

// failingCache implements driven.ResponseCache and fails every call.
type failingCache struct{}

func (failingCache) Get(_ context.Context, _ string) (string, bool, error) {
	return "", false, fmt.Errorf("cache down")
}

func (failingCache) Put(_ context.Context, _, _ string) error {
	return fmt.Errorf("cache down")
}

func (failingCache) Clear(_ context.Context) (int, error) {
	return 0, fmt.Errorf("cache down")
}

func (failingCache) Len(_ context.Context) (int, error) {
	return 0, fmt.Errorf("cache down")
}
