package eventlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var events []Event
	require.NoError(t, json.Unmarshal(data, &events))
	return events
}

func TestAppendCreatesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	l := New(path, nil)

	l.Append(KindQuestionReceived, map[string]any{"pergunta": "oi"})

	events := readEvents(t, path)
	require.Len(t, events, 1)
	assert.Equal(t, KindQuestionReceived, events[0].Kind)
	assert.Equal(t, "oi", events[0].Payload["pergunta"])
	assert.Greater(t, events[0].Timestamp, 0.0)
}

func TestAppendPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	l := New(path, nil)

	l.Append(KindQuestionReceived, nil)
	l.Append(KindCacheHit, nil)
	l.Append(KindAnswerGenerated, nil)

	events := readEvents(t, path)
	require.Len(t, events, 3)
	assert.Equal(t, KindQuestionReceived, events[0].Kind)
	assert.Equal(t, KindCacheHit, events[1].Kind)
	assert.Equal(t, KindAnswerGenerated, events[2].Kind)
}

func TestMalformedPriorContentStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{ not json"), 0o644))

	l := New(path, nil)
	l.Append(KindCacheHit, nil)

	events := readEvents(t, path)
	require.Len(t, events, 1)
	assert.Equal(t, KindCacheHit, events[0].Kind)
}

func TestWriteFailureSwallowed(t *testing.T) {
	// a directory path cannot be written as a file
	l := New(t.TempDir(), nil)
	assert.NotPanics(t, func() {
		l.Append(KindQuestionReceived, nil)
	})
}

func TestConcurrentAppendsDoNotInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	l := New(path, nil)

	var wg sync.WaitGroup
	const writers = 8
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Append(KindQuestionReceived, nil)
		}()
	}
	wg.Wait()

	events := readEvents(t, path)
	assert.Len(t, events, writers)
}
