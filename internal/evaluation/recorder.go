// Package evaluation persists every fully-synthesized exchange together with
// offline quality scores, one JSON array file rewritten on each append.
package evaluation

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Record is one answered exchange plus its scores.
type Record struct {
	Question  string `json:"pergunta"`
	Answer    string `json:"resposta"`
	Context   string `json:"contexto"`
	Timestamp string `json:"timestamp"`
	Scores    Scores `json:"scores"`
}

// Recorder appends evaluation records. Write failures are swallowed;
// malformed prior content is treated as an empty log.
type Recorder struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

func NewRecorder(path string, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{path: path, logger: logger}
}

// Record appends one evaluation entry scored against the fixed references.
func (r *Recorder) Record(question, answer, contextUsed string, at time.Time) {
	rec := Record{
		Question:  question,
		Answer:    answer,
		Context:   contextUsed,
		Timestamp: at.Format("2006-01-02 15:04:05"),
		Scores:    Score(answer),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var records []Record
	if data, err := os.ReadFile(r.path); err == nil {
		_ = json.Unmarshal(data, &records)
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		r.logger.Warn("evaluation marshal failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		r.logger.Warn("evaluation write failed", zap.String("path", r.path), zap.Error(err))
	}
}
