package driving

import (
	"context"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// KnowledgeService answers questions against the workspace knowledge base.
type KnowledgeService interface {
	// Ask runs the retrieval pipeline for a natural-language question.
	// Missing knowledge base and empty results are reported in the answer text,
	// not as errors. Only an empty query or an unusable search tool is an error.
	Ask(ctx context.Context, query string, opts domain.AskOptions) (*domain.Answer, error)

	// ListStructure describes the files that make up the knowledge base.
	ListStructure(ctx context.Context) (string, error)
}
