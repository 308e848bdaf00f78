package evaluation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRecords(t *testing.T, path string) []Record {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []Record
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func TestRecordAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aval.json")
	r := NewRecorder(path, nil)
	at := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

	r.Record("pergunta?", "resposta.", "contexto usado", at)
	r.Record("outra?", "outra resposta.", "mais contexto", at)

	records := readRecords(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "pergunta?", records[0].Question)
	assert.Equal(t, "resposta.", records[0].Answer)
	assert.Equal(t, "contexto usado", records[0].Context)
	assert.Equal(t, "2025-03-14 15:09:26", records[0].Timestamp)
}

func TestMalformedPriorContentStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aval.json")
	require.NoError(t, os.WriteFile(path, []byte("not an array"), 0o644))

	r := NewRecorder(path, nil)
	r.Record("q", "a", "c", time.Now())

	records := readRecords(t, path)
	assert.Len(t, records, 1)
}

func TestScoreContains(t *testing.T) {
	s := Score("O Centro de Referência LGBTI+ Laura Vermont fica na Zona Leste.")
	assert.True(t, s.Contains)
	assert.True(t, s.RegexMatch)
	assert.False(t, s.Equals)
	assert.Greater(t, s.LevenshteinRatio, 0.0)
}

func TestScoreRegexToleratesSpacing(t *testing.T) {
	s := Score("Centro  de  Referencia LGBTI Laura Vermont")
	assert.True(t, s.RegexMatch)
}

func TestScoreEqualsExactReference(t *testing.T) {
	s := Score("O Centro de Referência LGBTI+ Laura Vermont está localizado na Avenida Nordestina, 496 – São Miguel Paulista.")
	assert.True(t, s.Equals)
}

func TestLevenshteinRatio(t *testing.T) {
	assert.Equal(t, 1.0, levenshteinRatio("abc", "abc"))
	assert.Equal(t, 0.0, levenshteinRatio("", "abc"))
	assert.InDelta(t, 2.0/3.0, levenshteinRatio("abc", "abd"), 1e-9)
}
