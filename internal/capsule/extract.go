package capsule

import (
	"strings"
	"unicode/utf8"
)

// MaxExtractedTags bounds the tag set derived from content.
const MaxExtractedTags = 5

// minTokenLen is the shortest token kept by ExtractTags (exclusive bound:
// tokens of length <= 3 are discarded).
const minTokenLen = 4

// stopwords are never kept as tags.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "must": true, "shall": true,
	"of": true, "in": true, "for": true, "on": true, "with": true,
	"at": true, "by": true, "from": true, "as": true, "into": true,
	"through": true, "during": true, "before": true, "after": true,
	"above": true,
}

// ExtractTags derives a bounded keyword set from free text. It lowercases
// the text, splits on whitespace, discards tokens of length <= 3 and
// stopwords, keeps the first MaxExtractedTags survivors in original order,
// then deduplicates. Deterministic for a given input; empty or all-stopword
// content yields an empty set, which is valid.
func ExtractTags(content string) []string {
	words := strings.Fields(strings.ToLower(content))

	kept := make([]string, 0, MaxExtractedTags)
	for _, w := range words {
		if utf8.RuneCountInString(w) < minTokenLen || stopwords[w] {
			continue
		}
		kept = append(kept, w)
		if len(kept) == MaxExtractedTags {
			break
		}
	}

	return NormalizeTags(kept)
}
