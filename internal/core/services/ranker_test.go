package services

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

func chunk(path, header, content string) domain.Chunk {
	return domain.Chunk{
		FilePath:  path,
		StartLine: 1,
		EndLine:   strings.Count(content, "\n") + 1,
		Content:   content,
		Header:    header,
	}
}

func TestRanker_Empty(t *testing.T) {
	r := NewRanker(10)
	assert.Empty(t, r.Rank(nil, []string{"alpha"}))
	assert.Empty(t, r.Rank([]domain.Chunk{chunk("a.md", "", "alpha")}, nil))
	assert.Empty(t, r.Deduplicate(nil))
}

func TestRanker_MoreKeywordsRankHigher(t *testing.T) {
	chunks := []domain.Chunk{
		chunk("one.md", "", "only alpha here"),
		chunk("both.md", "", "alpha and beta together"),
		chunk("none.md", "", "nothing to see"),
		chunk("other.md", "", "gamma"),
	}

	ranked := NewRanker(10).Rank(chunks, []string{"alpha", "beta"})
	require.Len(t, ranked, 2)
	assert.Equal(t, "both.md", ranked[0].Chunk.FilePath)
	assert.Equal(t, "one.md", ranked[1].Chunk.FilePath)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, []string{"alpha", "beta"}, ranked[0].MatchedKeywords)
}

func TestRanker_ExcludesUnmatched(t *testing.T) {
	chunks := []domain.Chunk{
		chunk("a.md", "", "alpha"),
		chunk("b.md", "", "beta"),
	}

	ranked := NewRanker(10).Rank(chunks, []string{"alpha"})
	require.Len(t, ranked, 1)
	assert.Equal(t, "a.md", ranked[0].Chunk.FilePath)
	for _, rc := range ranked {
		assert.Greater(t, rc.Score, 0.0)
	}
}

func TestRanker_ScoreFormula(t *testing.T) {
	chunks := []domain.Chunk{
		chunk("a.md", "Alpha setup", "alpha alpha"),
		chunk("b.md", "", "beta"),
		chunk("c.md", "", "gamma"),
	}

	ranked := NewRanker(10).Rank(chunks, []string{"alpha"})
	require.Len(t, ranked, 1)

	// tf counts the header too: "alpha setup alpha alpha".
	want := math.Log(1+3)*math.Log(3.0/2.0)*2.0 + 1.0
	assert.InDelta(t, want, ranked[0].Score, 1e-9)
}

func TestRanker_HeaderBoost(t *testing.T) {
	chunks := []domain.Chunk{
		chunk("body.md", "", "cache cache"),
		chunk("head.md", "cache", "cache"),
		chunk("x.md", "", "unrelated"),
		chunk("y.md", "", "unrelated too"),
	}

	ranked := NewRanker(10).Rank(chunks, []string{"cache"})
	require.Len(t, ranked, 2)
	assert.Equal(t, "head.md", ranked[0].Chunk.FilePath)
}

func TestRanker_CommonTermPenalised(t *testing.T) {
	// A keyword in every chunk has a negative IDF. Chunks still rank
	// through the diversity bonus but score below sqrt(matched).
	chunks := []domain.Chunk{
		chunk("a.md", "", "common"),
		chunk("b.md", "", "common"),
	}

	ranked := NewRanker(10).Rank(chunks, []string{"common"})
	require.Len(t, ranked, 2)
	assert.Less(t, ranked[0].Score, 1.0)
	assert.InDelta(t, math.Log(2)*math.Log(2.0/3.0)+1, ranked[0].Score, 1e-9)
}

func TestRanker_StableTiesAndTopN(t *testing.T) {
	chunks := []domain.Chunk{
		chunk("1.md", "", "alpha"),
		chunk("2.md", "", "alpha"),
		chunk("3.md", "", "alpha"),
		chunk("4.md", "", "zzz"),
	}

	ranked := NewRanker(2).Rank(chunks, []string{"alpha"})
	require.Len(t, ranked, 2)
	assert.Equal(t, "1.md", ranked[0].Chunk.FilePath)
	assert.Equal(t, "2.md", ranked[1].Chunk.FilePath)
}

func TestRanker_DuplicateKeywordsCountOnce(t *testing.T) {
	chunks := []domain.Chunk{chunk("a.md", "", "alpha"), chunk("b.md", "", "x")}

	once := NewRanker(10).Rank(chunks, []string{"alpha"})
	twice := NewRanker(10).Rank(chunks, []string{"alpha", "ALPHA"})
	require.Len(t, twice, 1)
	assert.InDelta(t, once[0].Score, twice[0].Score, 1e-9)
	assert.Equal(t, []string{"alpha"}, twice[0].MatchedKeywords)
}

func TestRanker_Deduplicate(t *testing.T) {
	prefix := strings.Repeat("x", 200)
	ranked := []domain.RankedChunk{
		{Chunk: chunk("first.md", "", prefix+" tail one"), Score: 3},
		{Chunk: chunk("unique.md", "", "something else"), Score: 2},
		{Chunk: chunk("second.md", "", prefix+" tail two"), Score: 1},
	}

	deduped := NewRanker(10).Deduplicate(ranked)
	require.Len(t, deduped, 2)
	assert.Equal(t, "first.md", deduped[0].Chunk.FilePath, "higher-ranked copy wins")
	assert.Equal(t, "unique.md", deduped[1].Chunk.FilePath)
}

func TestRanker_DeduplicateCountsCharacters(t *testing.T) {
	// 199 multi-byte runes then a differing rune: distinct within 200 characters.
	base := strings.Repeat("é", 199)
	ranked := []domain.RankedChunk{
		{Chunk: chunk("a.md", "", base+"a")},
		{Chunk: chunk("b.md", "", base+"b")},
	}
	assert.Len(t, NewRanker(10).Deduplicate(ranked), 2)
}

func TestRanker_RankAndDeduplicate(t *testing.T) {
	chunks := []domain.Chunk{
		chunk("a.md", "", "alpha beta"),
		chunk("copy.md", "", "alpha beta"),
		chunk("c.md", "", "gamma"),
	}

	ranked := NewRanker(10).RankAndDeduplicate(chunks, []string{"alpha", "beta"})
	require.Len(t, ranked, 1)
	assert.Equal(t, "a.md", ranked[0].Chunk.FilePath)
}

func TestPrefixRunes(t *testing.T) {
	assert.Equal(t, "ab", prefixRunes("abc", 2))
	assert.Equal(t, "abc", prefixRunes("abc", 5))
	assert.Equal(t, "éé", prefixRunes("ééé", 2))
	assert.Equal(t, "", prefixRunes("abc", 0))
}
