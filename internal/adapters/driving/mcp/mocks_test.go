package mcp

import (
	"context"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
)

var _ driving.KnowledgeService = (*mockKnowledgeService)(nil)

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
