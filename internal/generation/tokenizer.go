package generation

import "regexp"

// WordTokenizer approximates the generative model's tokenizer with
// whitespace-delimited token boundaries. Truncation cuts at a token end
// inside the original string, so the kept prefix is byte-identical to the
// source text and line boundaries survive for sanitation.
type WordTokenizer struct {
	boundary *regexp.Regexp
}

func NewWordTokenizer() *WordTokenizer {
	return &WordTokenizer{boundary: regexp.MustCompile(`\S+`)}
}

func (t *WordTokenizer) Count(text string) int {
	return len(t.boundary.FindAllStringIndex(text, -1))
}

func (t *WordTokenizer) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	spans := t.boundary.FindAllStringIndex(text, -1)
	if len(spans) <= maxTokens {
		return text
	}
	return text[:spans[maxTokens-1][1]]
}
