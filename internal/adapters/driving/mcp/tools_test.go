package mcp

import (
	"context"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

func newTestServer(t *testing.T, knowledge *mockKnowledgeService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Knowledge: knowledge})
	require.NoError(t, err)
	return server
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("maps answer to output", func(t *testing.T) {
		knowledge := &mockKnowledgeService{answer: &domain.Answer{
			Text:        "distilled",
			Intent:      domain.IntentCodeExample,
			TokenBudget: 6000,
			Cached:      true,
			Partial:     true,
			Sources:     []string{"CLAUDE.md", ".claude/db.md"},
		}}
		server := newTestServer(t, knowledge)

		res, out, err := server.handleAsk(ctx, nil, AskInput{Query: "show me an example", Raw: true})
		require.NoError(t, err)

		require.Len(t, res.Content, 1)
		assert.Equal(t, "distilled", res.Content[0].(*mcp.TextContent).Text)
		assert.Equal(t, AskOutput{
			Answer:      "distilled",
			Intent:      "code_example",
			TokenBudget: 6000,
			Cached:      true,
			Partial:     true,
			Sources:     []string{"CLAUDE.md", ".claude/db.md"},
		}, out)
		assert.True(t, knowledge.lastOpts.Raw)
	})

	t.Run("degraded answer is not an error", func(t *testing.T) {
		knowledge := &mockKnowledgeService{answer: &domain.Answer{Text: "raw", Degraded: true}}
		_, out, err := newTestServer(t, knowledge).handleAsk(ctx, nil, AskInput{Query: "q"})
		require.NoError(t, err)
		assert.True(t, out.Degraded)
	})

	t.Run("propagates errors", func(t *testing.T) {
		knowledge := &mockKnowledgeService{err: fmt.Errorf("search: %w", domain.ErrSearchToolUnavailable)}
		_, _, err := newTestServer(t, knowledge).handleAsk(ctx, nil, AskInput{Query: "q"})
		assert.ErrorIs(t, err, domain.ErrSearchToolUnavailable)
	})
}

func TestServer_handleList(t *testing.T) {
	ctx := context.Background()

	t.Run("returns structure", func(t *testing.T) {
		knowledge := &mockKnowledgeService{structure: "No knowledge base found."}
		res, out, err := newTestServer(t, knowledge).handleList(ctx, nil, ListInput{})
		require.NoError(t, err)
		assert.Equal(t, "No knowledge base found.", out.Structure)
		assert.Equal(t, "No knowledge base found.", res.Content[0].(*mcp.TextContent).Text)
	})

	t.Run("propagates errors", func(t *testing.T) {
		knowledge := &mockKnowledgeService{err: assert.AnError}
		_, _, err := newTestServer(t, knowledge).handleList(ctx, nil, ListInput{})
		assert.ErrorIs(t, err, assert.AnError)
	})
}
