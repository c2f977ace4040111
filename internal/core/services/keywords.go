package services

import (
	"regexp"
	"strings"
)

// minKeywordLength is the shortest token kept as a keyword.
const minKeywordLength = 3

// identifierPattern matches word-like tokens that do not start with a digit.
var identifierPattern = regexp.MustCompile(`\b[a-zA-Z_][a-zA-Z0-9_]*\b`)

// stopWords are common English function words and pronouns.
var stopWords = toSet(
	"a", "an", "the", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "do", "does", "did", "will", "would", "could",
	"should", "may", "might", "must", "shall", "can", "need", "dare",
	"ought", "used", "to", "of", "in", "for", "on", "with", "at", "by",
	"from", "as", "into", "through", "during", "before", "after", "above",
	"below", "between", "under", "again", "further", "then", "once", "here",
	"there", "when", "where", "why", "how", "all", "each", "few", "more",
	"most", "other", "some", "such", "no", "nor", "not", "only", "own",
	"same", "so", "than", "too", "very", "just", "also", "now", "i", "me",
	"my", "myself", "we", "our", "ours", "you", "your", "yours", "he", "him",
	"his", "she", "her", "hers", "it", "its", "they", "them", "their",
	"what", "which", "who", "whom", "this", "that", "these", "those", "am",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// ExtractKeywords turns a natural-language query into the ordered list of
// lowercase search terms used by both the search and ranking stages.
// Stop words and tokens of two characters or fewer are dropped and
// duplicates keep their first position.
func ExtractKeywords(query string) []string {
	tokens := identifierPattern.FindAllString(strings.ToLower(query), -1)

	seen := make(map[string]struct{}, len(tokens))
	keywords := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) < minKeywordLength {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}
	return keywords
}

// IsStopWord reports whether word is filtered out as a stop word.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}
