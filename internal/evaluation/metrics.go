package evaluation

import (
	"regexp"
	"strings"
)

// Fixed references for offline scoring of generated answers.
const (
	referenceAnswer = "O Centro de Referência LGBTI+ Laura Vermont está localizado na Avenida Nordestina, 496 – São Miguel Paulista."
	referenceName   = "Centro de Referência LGBTI+ Laura Vermont"
)

var referenceRe = regexp.MustCompile(`Centro\s+de\s+Refer[eê]ncia\s+LGBTI\+?\s+Laura\s+Vermont`)

// Scores are the offline quality metrics computed per generated answer.
type Scores struct {
	Equals           bool    `json:"equals"`
	Contains         bool    `json:"contains"`
	RegexMatch       bool    `json:"regex_match"`
	LevenshteinRatio float64 `json:"levenshtein_ratio"`
}

// Score evaluates an answer against the fixed references.
func Score(answer string) Scores {
	return Scores{
		Equals:           answer == referenceAnswer,
		Contains:         strings.Contains(strings.ToLower(answer), strings.ToLower(referenceName)),
		RegexMatch:       referenceRe.MatchString(answer),
		LevenshteinRatio: levenshteinRatio(answer, referenceName),
	}
}

// levenshteinRatio is 1 - distance/max(len), on runes; 1.0 means identical.
func levenshteinRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
