package services

import (
	"math"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// Ranking constants.
const (
	headerBoost      = 2.0
	fingerprintRunes = 200
)

// Ranker scores chunks against query keywords with a TF-IDF-like formula.
type Ranker struct {
	topN int
}

// NewRanker creates a ranker that keeps at most topN chunks.
func NewRanker(topN int) *Ranker {
	if topN <= 0 {
		topN = domain.DefaultTopChunks
	}
	return &Ranker{topN: topN}
}

// Rank scores every chunk and returns those with a positive score, best
// first, limited to the configured top N. Equal scores keep input order.
//
// A keyword's term score is ln(1+tf) * ln(N/(1+df)), doubled when the
// keyword is in the chunk header. A keyword present in every chunk gets a
// negative term score. The chunk score adds sqrt(number of matched keywords).
func (r *Ranker) Rank(chunks []domain.Chunk, keywords []string) []domain.RankedChunk {
	if len(chunks) == 0 || len(keywords) == 0 {
		return nil
	}
	keywords = uniqueLower(keywords)

	texts := make([]string, len(chunks))
	df := make(map[string]int, len(keywords))
	for i, chunk := range chunks {
		texts[i] = strings.ToLower(chunk.Header + " " + chunk.Content)
		for _, kw := range keywords {
			if strings.Contains(texts[i], kw) {
				df[kw]++
			}
		}
	}

	total := float64(len(chunks))
	ranked := make([]domain.RankedChunk, 0, len(chunks))
	for i, chunk := range chunks {
		header := strings.ToLower(chunk.Header)

		var score float64
		var matched []string
		for _, kw := range keywords {
			tf := strings.Count(texts[i], kw)
			if tf == 0 {
				continue
			}
			matched = append(matched, kw)

			boost := 1.0
			if strings.Contains(header, kw) {
				boost = headerBoost
			}
			score += math.Log(1+float64(tf)) * math.Log(total/float64(1+df[kw])) * boost
		}
		if len(matched) == 0 {
			continue
		}
		score += math.Sqrt(float64(len(matched)))

		if score > 0 {
			ranked = append(ranked, domain.RankedChunk{
				Chunk:           chunk,
				Score:           score,
				MatchedKeywords: matched,
			})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > r.topN {
		ranked = ranked[:r.topN]
	}
	return ranked
}

// Deduplicate drops chunks whose first 200 characters repeat an earlier,
// higher-ranked chunk.
func (r *Ranker) Deduplicate(ranked []domain.RankedChunk) []domain.RankedChunk {
	if len(ranked) == 0 {
		return nil
	}

	seen := make(map[uint64]struct{}, len(ranked))
	result := make([]domain.RankedChunk, 0, len(ranked))
	for _, rc := range ranked {
		fp := xxhash.Sum64String(prefixRunes(rc.Chunk.Content, fingerprintRunes))
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		result = append(result, rc)
	}
	return result
}

// RankAndDeduplicate ranks then deduplicates.
func (r *Ranker) RankAndDeduplicate(chunks []domain.Chunk, keywords []string) []domain.RankedChunk {
	return r.Deduplicate(r.Rank(chunks, keywords))
}

// prefixRunes returns the first n characters of s.
func prefixRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func uniqueLower(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(w)
		if _, ok := seen[w]; ok || w == "" {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
