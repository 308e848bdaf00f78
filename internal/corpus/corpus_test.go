package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadNestedObject(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cartilha.json", `{
		"paragrafos": {
			"p1": ["Primeira parte do texto.", "Segunda parte do texto."],
			"p2": "Um parágrafo simples."
		}
	}`)

	docs, err := Load([]string{path}, nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "0", docs[0].ID)
	assert.Equal(t, "Primeira parte do texto.\nSegunda parte do texto.", docs[0].Text)
	assert.Equal(t, map[string][]string{"paragrafos.p1": {"Primeira parte do texto.", "Segunda parte do texto."}}, docs[0].Subject)

	assert.Equal(t, "1", docs[1].ID)
	assert.Equal(t, "Um parágrafo simples.", docs[1].Text)
}

func TestLoadList(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "centros.json", `{
		"centros": [
			{"nome": "Centro A", "endereco": "Rua X, 1"},
			{"nome": "Centro B", "endereco": "Rua Y, 2"}
		]
	}`)

	docs, err := Load([]string{path}, nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Rua X, 1\nCentro A", docs[0].Text)
	assert.Equal(t, map[string][]string{"centros": {"Rua X, 1", "Centro A"}}, docs[0].Subject)
}

func TestLoadBareString(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "nota.json", `{"aviso": "Procure ajuda especializada."}`)

	docs, err := Load([]string{path}, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Procure ajuda especializada.", docs[0].Text)
}

func TestMalformedFileSkipped(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "quebrado.json", `{not json`)
	good := writeFile(t, dir, "ok.json", `{"aviso": "texto válido"}`)

	docs, err := Load([]string{bad, good}, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "texto válido", docs[0].Text)
}

func TestIDsContinueAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"k": "um"}`)
	b := writeFile(t, dir, "b.json", `{"k": "dois"}`)

	docs, err := Load([]string{a, b}, nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "0", docs[0].ID)
	assert.Equal(t, "1", docs[1].ID)
}

func TestEmptyValuesSkipped(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "vazio.json", `{"a": "", "b": "   ", "c": "texto"}`)

	docs, err := Load([]string{path}, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "texto", docs[0].Text)
	assert.Equal(t, "0", docs[0].ID)
}

func TestNoDocuments(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "quebrado.json", `[`)

	_, err := Load([]string{bad}, nil)
	assert.ErrorIs(t, err, ErrNoDocuments)
}
