package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// charsPerToken is the rough conversion used for the chunk size target.
const charsPerToken = 4

// defaultChunkWorkers bounds concurrent file reads in ChunkFromResults.
const defaultChunkWorkers = 4

// Chunker splits files into structurally meaningful chunks.
type Chunker struct {
	fs        driven.FileSystem
	charLimit int
	workers   int
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker)

// WithChunkSize sets the approximate target chunk size in tokens.
// Chunks are never split to meet it; larger ones are only reported in debug logs.
func WithChunkSize(tokens int) ChunkerOption {
	return func(c *Chunker) {
		if tokens > 0 {
			c.charLimit = tokens * charsPerToken
		}
	}
}

// WithWorkers sets how many files are chunked concurrently.
func WithWorkers(n int) ChunkerOption {
	return func(c *Chunker) {
		if n > 0 {
			c.workers = n
		}
	}
}

// NewChunker creates a chunker that reads files through fs.
func NewChunker(fs driven.FileSystem, opts ...ChunkerOption) *Chunker {
	c := &Chunker{
		fs:        fs,
		charLimit: domain.DefaultChunkSize * charsPerToken,
		workers:   defaultChunkWorkers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChunkFile reads and segments one file. An unreadable file yields no chunks.
func (c *Chunker) ChunkFile(path string) []domain.Chunk {
	content, err := c.fs.ReadText(path)
	if err != nil {
		logger.Debug("Skipping unreadable file %s: %v", path, err)
		return nil
	}
	chunks := ChunkContent(path, content)
	for _, chunk := range chunks {
		if len(chunk.Content) > c.charLimit {
			logger.Debug("Chunk %s exceeds target size (%d > %d chars)", chunk, len(chunk.Content), c.charLimit)
		}
	}
	return chunks
}

// ChunkContent segments already-read content according to the file's grammar.
func ChunkContent(path, content string) []domain.Chunk {
	lines := strings.Split(content, "\n")

	family := ClassifyFile(path)
	switch family {
	case GrammarMarkdown:
		return chunkMarkdown(path, lines)
	case GrammarPlain:
		return []domain.Chunk{wholeFile(path, lines)}
	default:
		return chunkCode(path, lines, family)
	}
}

// section marks where a chunk starts and the header it carries.
type section struct {
	start  int
	header string
}

func chunkMarkdown(path string, lines []string) []domain.Chunk {
	var sections []section
	for i, line := range lines {
		if m := markdownHeading.FindStringSubmatch(line); m != nil {
			sections = append(sections, section{start: i, header: strings.TrimSpace(m[2])})
		}
	}
	if len(sections) == 0 {
		return []domain.Chunk{wholeFile(path, lines)}
	}

	// Text before the first heading is not part of any section.
	chunks := make([]domain.Chunk, 0, len(sections))
	for _, chunk := range cut(path, lines, sections) {
		if strings.TrimSpace(chunk.Content) == "" {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

func chunkCode(path string, lines []string, family GrammarFamily) []domain.Chunk {
	pattern := family.declarationPattern()
	if pattern == nil {
		return []domain.Chunk{wholeFile(path, lines)}
	}

	var sections []section
	for i, line := range lines {
		m := pattern.FindStringSubmatch(line)
		if m == nil || isControlFlow(m[1]) {
			continue
		}
		sections = append(sections, section{start: i, header: "function " + m[1]})
	}
	if len(sections) == 0 {
		return []domain.Chunk{wholeFile(path, lines)}
	}
	return cut(path, lines, sections)
}

// cut turns section starts into chunks, each running to the line before
// the next start or to the end of the file.
func cut(path string, lines []string, sections []section) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(sections))
	for i, s := range sections {
		end := len(lines) - 1
		if i+1 < len(sections) {
			end = sections[i+1].start - 1
		}
		chunks = append(chunks, domain.Chunk{
			FilePath:  path,
			StartLine: s.start + 1,
			EndLine:   end + 1,
			Content:   strings.Join(lines[s.start:end+1], "\n"),
			Header:    s.header,
		})
	}
	return chunks
}

func wholeFile(path string, lines []string) domain.Chunk {
	return domain.Chunk{
		FilePath:  path,
		StartLine: 1,
		EndLine:   len(lines),
		Content:   strings.Join(lines, "\n"),
	}
}

// ChunkFromResults maps search hits back to the chunks that contain them.
// Each file is chunked once and a chunk holding several hits is returned
// once. Files keep the order of their first hit.
func (c *Chunker) ChunkFromResults(ctx context.Context, results []domain.SearchResult) ([]domain.Chunk, error) {
	if len(results) == 0 {
		return nil, nil
	}

	var files []string
	hits := make(map[string][]int)
	for _, r := range results {
		if _, ok := hits[r.FilePath]; !ok {
			files = append(files, r.FilePath)
		}
		hits[r.FilePath] = append(hits[r.FilePath], r.LineNumber)
	}

	perFile := make([][]domain.Chunk, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perFile[i] = selectHit(c.ChunkFile(file), hits[file])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("chunk results: %w", err)
	}

	var chunks []domain.Chunk
	for _, fileChunks := range perFile {
		chunks = append(chunks, fileChunks...)
	}
	logger.Debug("Mapped %d results in %d files to %d chunks", len(results), len(files), len(chunks))
	return chunks, nil
}

func selectHit(chunks []domain.Chunk, lines []int) []domain.Chunk {
	var selected []domain.Chunk
	for _, chunk := range chunks {
		for _, line := range lines {
			if chunk.Contains(line) {
				selected = append(selected, chunk)
				break
			}
		}
	}
	return selected
}
