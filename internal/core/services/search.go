package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// outputLinePattern parses path:line:content. The lazy path group stops at
// the first colon followed by digits and another colon.
var outputLinePattern = regexp.MustCompile(`^(.+?):(\d+):(.*)$`)

// Searcher scans the knowledge base roots with the first available search
// tool. Roots are scanned in order (root rules file, then the docs folder)
// until the result budget is used up.
type Searcher struct {
	settings domain.Settings
	fs       driven.FileSystem
	tools    []driven.SearchTool

	mu          sync.Mutex
	unavailable map[string]bool
}

// NewSearcher creates a searcher. Tools are tried in the given order.
func NewSearcher(settings domain.Settings, fs driven.FileSystem, tools ...driven.SearchTool) *Searcher {
	return &Searcher{
		settings:    settings,
		fs:          fs,
		tools:       tools,
		unavailable: make(map[string]bool),
	}
}

// Roots returns the existing search roots in priority order.
func (s *Searcher) Roots() []string {
	var roots []string
	for _, root := range []string{s.settings.RootFilePath(), s.settings.DocsFolderPath()} {
		if _, err := s.fs.Stat(root); err == nil {
			roots = append(roots, root)
		}
	}
	return roots
}

// BuildPattern joins the keywords into one case-insensitive alternation,
// each keyword matched literally.
func BuildPattern(keywords []string) string {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return strings.Join(quoted, "|")
}

// Search finds lines containing any keyword. A timeout stops the scan and
// returns what was collected with Partial set. It fails only when no
// search tool can be run.
func (s *Searcher) Search(ctx context.Context, keywords []string) (domain.SearchOutcome, error) {
	logger.Section("Search")

	var outcome domain.SearchOutcome
	if len(keywords) == 0 {
		logger.Debug("No keywords, skipping search")
		return outcome, nil
	}

	budget := s.settings.Search.MaxResults
	if budget <= 0 {
		budget = domain.DefaultMaxResults
	}
	pattern := BuildPattern(keywords)
	logger.Debug("Pattern: %s (budget %d)", pattern, budget)

	for _, root := range s.Roots() {
		remaining := budget - len(outcome.Results)
		if remaining <= 0 {
			break
		}

		lines, tool, err := s.searchRoot(ctx, driven.SearchRequest{
			Pattern:   pattern,
			Root:      root,
			Workspace: s.settings.WorkspacePath,
			Include:   s.settings.KnowledgeBase.FilePatterns,
			Exclude:   s.settings.KnowledgeBase.ExcludePatterns,
			MaxCount:  remaining,
		})
		if tool != "" {
			outcome.Tool = tool
		}
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			logger.Warn("Search of %s timed out, returning %d partial results", root, len(outcome.Results))
			outcome.Partial = true
			break
		}
		if err != nil {
			return outcome, err
		}

		results := ParseSearchOutput(lines, keywords)
		// --max-count is per file, so a directory root can overshoot.
		if len(results) > remaining {
			results = results[:remaining]
		}
		logger.Debug("%s: %d results from %s", tool, len(results), root)
		outcome.Results = append(outcome.Results, results...)
	}

	logger.Debug("Search found %d results", len(outcome.Results))
	return outcome, nil
}

// searchRoot runs one root through the tool chain. A tool that turns out to
// be missing is marked unavailable and the next one retries the same root.
func (s *Searcher) searchRoot(ctx context.Context, req driven.SearchRequest) ([]string, string, error) {
	for _, tool := range s.tools {
		if !s.isAvailable(ctx, tool) {
			continue
		}

		lines, err := s.invoke(ctx, tool, req)
		if errors.Is(err, domain.ErrToolNotFound) {
			logger.Warn("%s not found, falling back", tool.Name())
			s.markUnavailable(tool)
			continue
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, tool.Name(), fmt.Errorf("%s search of %s: %w", tool.Name(), req.Root, err)
		}
		return lines, tool.Name(), err
	}
	return nil, "", domain.ErrSearchToolUnavailable
}

func (s *Searcher) invoke(ctx context.Context, tool driven.SearchTool, req driven.SearchRequest) ([]string, error) {
	timeout := s.settings.Search.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultSearchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	lines, err := tool.Search(ctx, req)
	logger.Debug("%s took %v", tool.Name(), time.Since(start))
	return lines, err
}

func (s *Searcher) isAvailable(ctx context.Context, tool driven.SearchTool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if down, checked := s.unavailable[tool.Name()]; checked {
		return !down
	}
	ok := tool.Available(ctx)
	s.unavailable[tool.Name()] = !ok
	if !ok {
		logger.Debug("%s is not available", tool.Name())
	}
	return ok
}

func (s *Searcher) markUnavailable(tool driven.SearchTool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable[tool.Name()] = true
}

// ParseSearchOutput converts path:line:content lines into results. Lines that
// do not parse are skipped. Each result records the first keyword, in the
// given order, that appears in its content.
func ParseSearchOutput(lines []string, keywords []string) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		m := outputLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNumber, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		content := m[3]
		results = append(results, domain.SearchResult{
			FilePath:       m[1],
			LineNumber:     lineNumber,
			LineContent:    strings.TrimSpace(content),
			MatchedKeyword: firstMatchingKeyword(content, keywords),
		})
	}
	return results
}

func firstMatchingKeyword(content string, keywords []string) string {
	lower := strings.ToLower(content)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return kw
		}
	}
	return ""
}
