// Package pipeline orchestrates the full answering flow: intent routing,
// answer cache, vector retrieval, contact extraction, and generative
// synthesis, in that fixed order of precedence.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vivi/internal/domain"
	"vivi/internal/eventlog"
	"vivi/internal/extractor"
	"vivi/internal/router"
	"vivi/internal/synthesizer"
)

// Searcher is the retrieval-facing slice of the vector index.
type Searcher interface {
	Search(query []float32, k int) ([]domain.Retrieved, error)
}

// EventSink receives one event per decision path taken.
type EventSink interface {
	Append(kind string, payload map[string]any)
}

// EvaluationSink records fully-synthesized exchanges for offline review.
type EvaluationSink interface {
	Record(question, answer, contextUsed string, at time.Time)
}

// ResponseSynthesizer produces the generated answer for unclassified
// questions.
type ResponseSynthesizer interface {
	Synthesize(ctx context.Context, question string, docs []domain.Document) synthesizer.Result
}

// Pipeline answers questions. Safe for concurrent use: the index serializes
// appends against searches, the cache delegates racing writes to Redis, and
// the sinks serialize their own file writes.
type Pipeline struct {
	router      *router.Router
	cache       domain.AnswerCache
	embedder    domain.Embedder
	searcher    Searcher
	synthesizer ResponseSynthesizer
	events      EventSink
	evaluations EvaluationSink
	logger      *zap.Logger
	topK        int
	cacheTTL    time.Duration
}

// Options configures a Pipeline.
type Options struct {
	Router      *router.Router
	Cache       domain.AnswerCache
	Embedder    domain.Embedder
	Searcher    Searcher
	Synthesizer ResponseSynthesizer
	Events      EventSink
	Evaluations EvaluationSink
	Logger      *zap.Logger
	TopK        int
	CacheTTL    time.Duration
}

func New(opts Options) *Pipeline {
	if opts.Router == nil {
		opts.Router = router.New()
	}
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Pipeline{
		router:      opts.Router,
		cache:       opts.Cache,
		embedder:    opts.Embedder,
		searcher:    opts.Searcher,
		synthesizer: opts.Synthesizer,
		events:      opts.Events,
		evaluations: opts.Evaluations,
		logger:      opts.Logger,
		topK:        opts.TopK,
		cacheTTL:    opts.CacheTTL,
	}
}

// Answer runs one question through the pipeline. Conversation history is
// appended on every answered question; conv may be nil for one-shot use.
// The returned error is operator-facing (retrieval infrastructure only);
// every content-level failure comes back as a natural-language answer.
func (p *Pipeline) Answer(ctx context.Context, conv *domain.Conversation, question string) (string, error) {
	started := time.Now()
	p.events.Append(eventlog.KindQuestionReceived, map[string]any{"pergunta": question})

	match := p.router.Classify(question)
	switch match.Intent {
	case router.Identity, router.NameOrigin, router.Provenance:
		p.cache.Set(ctx, question, match.Response, p.cacheTTL)
		p.events.Append(cannedEventKind(match.Intent), map[string]any{
			"pergunta": question,
			"resposta": match.Response,
		})
		return p.done(conv, question, match.Response), nil
	}

	if answer, ok := p.cache.Get(ctx, question); ok {
		p.events.Append(eventlog.KindCacheHit, map[string]any{
			"pergunta": question,
			"resposta": answer,
		})
		return p.done(conv, question, answer), nil
	}

	docs, err := p.retrieve(ctx, question)
	if err != nil {
		p.logger.Error("retrieval failed", zap.String("question", question), zap.Error(err))
		return "", err
	}

	if match.Intent == router.ContactLookup {
		answer := extractor.Extract(question, docs)
		p.cache.Set(ctx, question, answer, p.cacheTTL)
		p.events.Append(eventlog.KindContactAnswer, map[string]any{
			"pergunta": question,
			"resposta": answer,
		})
		return p.done(conv, question, answer), nil
	}

	p.events.Append(eventlog.KindDocumentsRetrieved, map[string]any{
		"pergunta":   question,
		"documentos": documentIDs(docs),
	})

	res := p.synthesizer.Synthesize(ctx, question, docs)
	switch {
	case res.Synthesized:
		p.cache.Set(ctx, question, res.Answer, p.cacheTTL)
		p.evaluations.Record(question, res.Answer, res.Context, time.Now())
		p.events.Append(eventlog.KindAnswerGenerated, map[string]any{
			"pergunta":                question,
			"resposta":                res.Answer,
			"tempo_execucao_segundos": time.Since(started).Seconds(),
		})
	case res.Failed:
		p.events.Append(eventlog.KindGenerationFailed, map[string]any{
			"pergunta": question,
			"resposta": res.Answer,
		})
	default:
		p.events.Append(eventlog.KindInsufficientContext, map[string]any{
			"pergunta": question,
			"resposta": res.Answer,
		})
	}
	return p.done(conv, question, res.Answer), nil
}

func (p *Pipeline) retrieve(ctx context.Context, question string) ([]domain.Document, error) {
	vec, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	hits, err := p.searcher.Search(vec, p.topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	docs := make([]domain.Document, 0, len(hits))
	for _, h := range hits {
		if h.Document.Text != "" {
			docs = append(docs, h.Document)
		}
	}
	return docs, nil
}

func (p *Pipeline) done(conv *domain.Conversation, question, answer string) string {
	if conv != nil {
		conv.Append(question, answer)
	}
	return answer
}

func cannedEventKind(intent router.Intent) string {
	switch intent {
	case router.Identity:
		return eventlog.KindIdentityAnswer
	case router.NameOrigin:
		return eventlog.KindNameOriginAnswer
	default:
		return eventlog.KindProvenanceAnswer
	}
}

func documentIDs(docs []domain.Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}
