// Package corpus loads the normalized knowledge corpus produced by the
// external cleaning stage. Each input file is a JSON object whose top-level
// values are nested objects, lists, or bare strings; every such value becomes
// one document with its text fragments flattened and newline-joined.
package corpus

import (
	"encoding/json"
	"errors"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"vivi/internal/domain"
)

// ErrNoDocuments is returned when no input file yields a single document.
var ErrNoDocuments = errors.New("corpus: no documents loaded")

// Load reads every corpus file and returns the flattened documents with dense
// sequential IDs assigned across files in order. A malformed or unreadable
// file is skipped; it never aborts the batch.
func Load(paths []string, logger *zap.Logger) ([]domain.Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var docs []domain.Document
	next := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable corpus file", zap.String("path", path), zap.Error(err))
			continue
		}
		var root map[string]json.RawMessage
		if err := json.Unmarshal(data, &root); err != nil {
			logger.Warn("skipping malformed corpus file", zap.String("path", path), zap.Error(err))
			continue
		}
		for _, key := range sortedKeys(root) {
			docs = appendEntries(docs, &next, key, root[key])
		}
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	return docs, nil
}

// appendEntries turns one top-level corpus value into documents. A nested
// object yields one document per sub-key, a list one per element.
func appendEntries(docs []domain.Document, next *int, key string, raw json.RawMessage) []domain.Document {
	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err == nil {
		for _, sub := range sortedKeys(asObject) {
			fragments := flatten(asObject[sub])
			if doc, ok := newDocument(*next, key+"."+sub, fragments); ok {
				docs = append(docs, doc)
				*next++
			}
		}
		return docs
	}
	var asList []json.RawMessage
	if err := json.Unmarshal(raw, &asList); err == nil {
		for _, item := range asList {
			fragments := flatten(item)
			if doc, ok := newDocument(*next, key, fragments); ok {
				docs = append(docs, doc)
				*next++
			}
		}
		return docs
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if doc, ok := newDocument(*next, key, []string{asString}); ok {
			docs = append(docs, doc)
			*next++
		}
	}
	return docs
}

func newDocument(id int, subjectKey string, fragments []string) (domain.Document, bool) {
	kept := fragments[:0]
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return domain.Document{}, false
	}
	return domain.Document{
		ID:      strconv.Itoa(id),
		Text:    strings.Join(kept, "\n"),
		Subject: map[string][]string{subjectKey: kept},
	}, true
}

// flatten collects every string found anywhere under the given JSON value,
// in document order.
func flatten(raw json.RawMessage) []string {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return []string{asString}
	}
	var asList []json.RawMessage
	if err := json.Unmarshal(raw, &asList); err == nil {
		var out []string
		for _, item := range asList {
			out = append(out, flatten(item)...)
		}
		return out
	}
	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err == nil {
		var out []string
		for _, key := range sortedKeys(asObject) {
			out = append(out, flatten(asObject[key])...)
		}
		return out
	}
	return nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// deterministic document IDs require a stable key order
	sort.Strings(keys)
	return keys
}
