// Package eventlog records pipeline events in a single JSON array file,
// rewritten in full on each append. Adequate for modest volumes; writers are
// serialized so concurrent answers never interleave partial records.
package eventlog

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event kinds, one per pipeline decision path.
const (
	KindQuestionReceived    = "question_received"
	KindIdentityAnswer      = "identity_answer"
	KindNameOriginAnswer    = "name_origin_answer"
	KindProvenanceAnswer    = "provenance_answer"
	KindCacheHit            = "cache_hit"
	KindDocumentsRetrieved  = "documents_retrieved"
	KindContactAnswer       = "contact_answer"
	KindInsufficientContext = "insufficient_context"
	KindAnswerGenerated     = "answer_generated"
	KindGenerationFailed    = "generation_failed"
)

// Event is one append-only log record.
type Event struct {
	Kind      string         `json:"evento"`
	Payload   map[string]any `json:"dados,omitempty"`
	Timestamp float64        `json:"timestamp"`
}

// Log appends events to a JSON array file. Persistence failures are
// swallowed: logging can never abort an answer.
type Log struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

func New(path string, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{path: path, logger: logger}
}

// Append records one event with the current timestamp.
func (l *Log) Append(kind string, payload map[string]any) {
	event := Event{
		Kind:      kind,
		Payload:   payload,
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var events []Event
	if data, err := os.ReadFile(l.path); err == nil {
		// unreadable prior content means the log starts fresh
		_ = json.Unmarshal(data, &events)
	}
	events = append(events, event)

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		l.logger.Warn("event log marshal failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		l.logger.Warn("event log write failed", zap.String("path", l.path), zap.Error(err))
	}
}
