package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// Ensure KnowledgeService implements the interface.
var _ driving.KnowledgeService = (*KnowledgeService)(nil)

// structureExtensions are the docs-folder file types shown in the structure listing.
var structureExtensions = map[string]bool{
	".md":  true,
	".prg": true,
	".py":  true,
	".c":   true,
}

// KnowledgeService answers questions against the workspace knowledge base:
// keywords, search, chunking, ranking, then distillation.
type KnowledgeService struct {
	settings  domain.Settings
	fs        driven.FileSystem
	searcher  *Searcher
	chunker   *Chunker
	ranker    *Ranker
	distiller *Distiller
}

// NewKnowledgeService creates the question-answering pipeline.
func NewKnowledgeService(
	settings domain.Settings,
	fs driven.FileSystem,
	searcher *Searcher,
	chunker *Chunker,
	ranker *Ranker,
	distiller *Distiller,
) *KnowledgeService {
	return &KnowledgeService{
		settings:  settings,
		fs:        fs,
		searcher:  searcher,
		chunker:   chunker,
		ranker:    ranker,
		distiller: distiller,
	}
}

// HasKnowledgeBase reports whether the root file or docs folder exists.
func (s *KnowledgeService) HasKnowledgeBase() bool {
	return len(s.searcher.Roots()) > 0
}

// Ask answers a natural-language question. Missing knowledge base and empty
// results are answered with explanatory text; only an unusable search
// tool or an empty query is an error.
func (s *KnowledgeService) Ask(ctx context.Context, query string, opts domain.AskOptions) (*domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", domain.ErrInvalidInput)
	}

	if !s.HasKnowledgeBase() {
		return &domain.Answer{Text: s.noKnowledgeBaseMessage()}, nil
	}

	queryID := uuid.NewString()
	logger.Section("Ask " + queryID)
	logger.Info("[%s] Processing query: %s", queryID[:8], truncate(query, 50))

	searchQuery := query
	if ctxText := strings.TrimSpace(opts.Context); ctxText != "" {
		searchQuery = query + " " + ctxText
	}
	keywords := ExtractKeywords(searchQuery)
	logger.Debug("[%s] Keywords: %v", queryID[:8], keywords)

	outcome, err := s.searcher.Search(ctx, keywords)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Info("[%s] Found %d search results", queryID[:8], len(outcome.Results))

	answer := &domain.Answer{Partial: outcome.Partial}
	if len(outcome.Results) == 0 {
		answer.Text = fmt.Sprintf("No relevant information found for query: %s", query)
		return answer, nil
	}

	chunks, err := s.chunker.ChunkFromResults(ctx, outcome.Results)
	if err != nil {
		return nil, err
	}
	logger.Info("[%s] Created %d chunks", queryID[:8], len(chunks))
	if len(chunks) == 0 {
		answer.Text = fmt.Sprintf("No relevant content found for query: %s", query)
		return answer, nil
	}

	ranked := s.ranker.RankAndDeduplicate(chunks, keywords)
	logger.Info("[%s] Ranked and deduplicated to %d chunks", queryID[:8], len(ranked))
	for _, rc := range ranked {
		logger.Debug("  %s", rc)
	}
	answer.Sources = sources(ranked)

	if opts.Raw || !s.settings.Distill.Enabled {
		answer.Intent = domain.ClassifyQuery(query)
		answer.TokenBudget = s.settings.Distill.TokenBudget(answer.Intent)
		answer.Text = FormatChunksForResponse(ranked)
		return answer, nil
	}

	result := s.distiller.Distill(ctx, query, ranked)
	answer.Text = result.Content
	answer.Intent = result.Intent
	answer.TokenBudget = result.TokenBudget
	answer.Cached = result.Cached
	answer.Degraded = result.Degraded
	if result.Degraded {
		logger.Info("[%s] Answer degraded: %s", queryID[:8], result.Reason)
	}
	return answer, nil
}

// ListStructure describes the knowledge base: the root file with its size,
// then the docs folder's known file types and subfolders with file counts.
func (s *KnowledgeService) ListStructure(_ context.Context) (string, error) {
	if !s.HasKnowledgeBase() {
		return "No knowledge base found.", nil
	}

	kb := s.settings.KnowledgeBase
	parts := []string{"# Knowledge Base Structure\n"}

	if root, err := s.fs.Stat(s.settings.RootFilePath()); err == nil && !root.IsDir {
		parts = append(parts, fmt.Sprintf("- **%s** (root): %d bytes - Main rules file", kb.RootFile, root.Size))
	}

	entries, err := s.fs.ListDir(s.settings.DocsFolderPath())
	if err == nil {
		parts = append(parts, fmt.Sprintf("\n**%s/ folder:**", kb.DocsFolder))
		for _, entry := range entries {
			switch {
			case !entry.IsDir && structureExtensions[filepath.Ext(entry.Name)]:
				parts = append(parts, fmt.Sprintf("  - %s: %d bytes", entry.Name, entry.Size))
			case entry.IsDir && !strings.HasPrefix(entry.Name, "."):
				count, err := s.fs.CountFiles(entry.Path)
				if err != nil {
					logger.Warn("Count files in %s: %v", entry.Path, err)
					continue
				}
				parts = append(parts, fmt.Sprintf("  - %s/: %d files", entry.Name, count))
			}
		}
	}

	return strings.Join(parts, "\n"), nil
}

func (s *KnowledgeService) noKnowledgeBaseMessage() string {
	kb := s.settings.KnowledgeBase
	return fmt.Sprintf(
		"No knowledge base found. Expected %s in workspace root and/or %s/ folder with documentation.",
		kb.RootFile, kb.DocsFolder,
	)
}

// sources returns the distinct chunk files in rank order.
func sources(ranked []domain.RankedChunk) []string {
	seen := make(map[string]bool, len(ranked))
	var out []string
	for _, rc := range ranked {
		if !seen[rc.Chunk.FilePath] {
			seen[rc.Chunk.FilePath] = true
			out = append(out, rc.Chunk.FilePath)
		}
	}
	return out
}

func truncate(s string, n int) string {
	cut := prefixRunes(s, n)
	if len(cut) < len(s) {
		return cut + "..."
	}
	return s
}
