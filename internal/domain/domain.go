package domain

import (
	"context"
	"time"
)

// Document is one normalized corpus entry. IDs are dense decimal strings
// assigned during corpus loading and stable across additive index rebuilds.
type Document struct {
	ID      string
	Text    string
	Subject map[string][]string
}

// Retrieved pairs a document with its squared Euclidean distance to a query.
type Retrieved struct {
	Document Document
	Distance float64
}

// Exchange is one answered question within a conversation.
type Exchange struct {
	Question string
	Answer   string
	At       time.Time
}

// Conversation holds per-session history. It is passed explicitly into the
// pipeline so no cross-request state lives in globals.
type Conversation struct {
	Exchanges []Exchange
}

// Append records an answered exchange.
func (c *Conversation) Append(question, answer string) {
	c.Exchanges = append(c.Exchanges, Exchange{Question: question, Answer: answer, At: time.Now()})
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GenerationParams are the fixed decoding settings for one generation call.
// Not every backend honors every field; unsupported ones are ignored.
type GenerationParams struct {
	MaxTokens         int
	Temperature       float32
	TopP              float32
	RepetitionPenalty float32
	NumBeams          int
}

// Generator produces free text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// Tokenizer counts and truncates text in model token units. Truncate keeps
// the prefix byte-for-byte so line structure survives for sanitation.
type Tokenizer interface {
	Count(text string) int
	Truncate(text string, maxTokens int) string
}

// AnswerCache stores previously computed answers keyed by the raw question.
// Implementations must swallow storage failures: Get degrades to a miss and
// Set to a no-op.
type AnswerCache interface {
	Get(ctx context.Context, question string) (string, bool)
	Set(ctx context.Context, question, answer string, ttl time.Duration)
}
