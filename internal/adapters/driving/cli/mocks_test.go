package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
)

var (
	_ driving.KnowledgeService  = (*mockKnowledgeService)(nil)
	_ driven.ResponseCache      = (*mockCache)(nil)
	_ driven.PromptStore        = (*mockPromptStore)(nil)
	_ driven.LLMConfigValidator = (*mockValidator)(nil)
)

// mockKnowledgeService is a mock implementation of driving.KnowledgeService.
type mockKnowledgeService struct {
	answer    *domain.Answer
	structure string
	err       error

	lastQuery string
	lastOpts  domain.AskOptions
}

func (m *mockKnowledgeService) Ask(_ context.Context, query string, opts domain.AskOptions) (*domain.Answer, error) {
	m.lastQuery = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockKnowledgeService) ListStructure(_ context.Context) (string, error) {
	return m.structure, m.err
}

// mockCache is a mock implementation of driven.ResponseCache.
type mockCache struct {
	mu      sync.Mutex
	entries int
	clears  int
	err     error
}

func (m *mockCache) Get(_ context.Context, _ string) (string, bool, error) {
	return "", false, m.err
}

func (m *mockCache) Put(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockCache) Clear(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	n := m.entries
	m.entries = 0
	m.clears++
	return n, nil
}

func (m *mockCache) Len(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, m.err
}

func (m *mockCache) clearCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

// mockPromptStore is a mock implementation of driven.PromptStore.
type mockPromptStore struct {
	mu      sync.Mutex
	reloads int
}

func (m *mockPromptStore) Load(_ string) (string, error) {
	return "", errors.New("not found")
}

func (m *mockPromptStore) Reload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloads++
}

func (m *mockPromptStore) reloadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reloads
}

// mockValidator is a mock implementation of driven.LLMConfigValidator.
type mockValidator struct {
	err    error
	called bool
}

func (m *mockValidator) ValidateLLM(_ domain.DistillSettings) error {
	m.called = true
	return m.err
}

// testApp bundles an App with its mocks.
type testApp struct {
	app       *App
	knowledge *mockKnowledgeService
	cache     *mockCache
	prompts   *mockPromptStore
	validator *mockValidator
}

// setupTestApp installs an App backed by mocks and restores the previous
// App and the command flags when the test ends.
func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	ta := &testApp{
		knowledge: &mockKnowledgeService{
			answer: &domain.Answer{
				Text:        "Run make test.",
				Intent:      domain.IntentSimple,
				TokenBudget: 1000,
				Sources:     []string{"CLAUDE.md"},
			},
			structure: "# Knowledge Base Structure\n",
		},
		cache:     &mockCache{entries: 3},
		prompts:   &mockPromptStore{},
		validator: &mockValidator{},
	}
	ta.app = &App{
		Settings:  domain.DefaultSettings(t.TempDir()),
		Knowledge: ta.knowledge,
		Cache:     ta.cache,
		Prompts:   ta.prompts,
		Validator: ta.validator,
	}

	old := app
	SetApp(ta.app)
	t.Cleanup(func() {
		app = old
		askContext = ""
		askRaw = false
		askJSON = false
	})
	return ta
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
