// Package index implements a flat vector index over the corpus: one
// fixed-dimension embedding per document, exhaustive squared-Euclidean
// search, append-only growth, and a three-artifact persistence format
// (binary vectors plus two JSON side files mapping id to text and subject).
package index

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"sync"

	"vivi/internal/domain"
)

var (
	// ErrEmptyCorpus is returned by Build when there is nothing to encode.
	ErrEmptyCorpus = errors.New("index: empty corpus")
	// ErrNotReady is returned by Search before a Build or Load.
	ErrNotReady = errors.New("index: not built or loaded")
)

const blobMagic = uint32(0x56495649) // "VIVI"

// Index is an append-only flat vector index. Vector slot i holds document
// id strconv.Itoa(i); slots are never reused or mutated, so concurrent
// readers under the RWMutex can never observe a partially written vector.
type Index struct {
	mu       sync.RWMutex
	dim      int
	vectors  [][]float32
	texts    map[string]string
	subjects map[string]map[string][]string
	ready    bool
}

// New returns an empty, not-yet-ready index.
func New() *Index {
	return &Index{
		texts:    make(map[string]string),
		subjects: make(map[string]map[string][]string),
	}
}

// Build encodes every document and replaces the index contents. The vector
// dimension is fixed by the first embedding; any later mismatch aborts.
func (ix *Index) Build(ctx context.Context, docs []domain.Document, emb domain.Embedder) error {
	if len(docs) == 0 {
		return ErrEmptyCorpus
	}
	vectors, err := encodeAll(ctx, docs, emb, 0)
	if err != nil {
		return err
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.dim = len(vectors[0])
	ix.vectors = vectors
	ix.texts = make(map[string]string, len(docs))
	ix.subjects = make(map[string]map[string][]string, len(docs))
	for _, d := range docs {
		ix.texts[d.ID] = d.Text
		ix.subjects[d.ID] = d.Subject
	}
	ix.ready = true
	return nil
}

// Append encodes new documents and adds them after the existing slots.
// Incoming documents are re-identified as max existing id + 1 onward;
// existing vectors are never touched.
func (ix *Index) Append(ctx context.Context, docs []domain.Document, emb domain.Embedder) error {
	if len(docs) == 0 {
		return nil
	}
	ix.mu.RLock()
	ready, dim := ix.ready, ix.dim
	ix.mu.RUnlock()
	if !ready {
		return ErrNotReady
	}
	vectors, err := encodeAll(ctx, docs, emb, dim)
	if err != nil {
		return err
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for i, d := range docs {
		id := strconv.Itoa(len(ix.vectors))
		ix.vectors = append(ix.vectors, vectors[i])
		ix.texts[id] = d.Text
		ix.subjects[id] = d.Subject
	}
	return nil
}

func encodeAll(ctx context.Context, docs []domain.Document, emb domain.Embedder, dim int) ([][]float32, error) {
	vectors := make([][]float32, len(docs))
	for i, d := range docs {
		v, err := emb.Embed(ctx, d.Text)
		if err != nil {
			return nil, fmt.Errorf("index: embedding document %s: %w", d.ID, err)
		}
		if dim == 0 {
			dim = len(v)
		}
		if len(v) != dim {
			return nil, fmt.Errorf("index: dimension mismatch for document %s: got %d, want %d", d.ID, len(v), dim)
		}
		vectors[i] = v
	}
	return vectors, nil
}

// Search returns the k nearest documents by squared Euclidean distance, in
// non-decreasing distance order with ties broken by ascending id. Fewer than
// k results are returned when the index is smaller than k.
func (ix *Index) Search(query []float32, k int) ([]domain.Retrieved, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if !ix.ready {
		return nil, ErrNotReady
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("index: query dimension %d, index dimension %d", len(query), ix.dim)
	}
	if k <= 0 {
		return nil, nil
	}
	type hit struct {
		slot int
		dist float64
	}
	hits := make([]hit, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = hit{slot: i, dist: squaredL2(query, v)}
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].dist != hits[b].dist {
			return hits[a].dist < hits[b].dist
		}
		return hits[a].slot < hits[b].slot
	})
	if k > len(hits) {
		k = len(hits)
	}
	out := make([]domain.Retrieved, 0, k)
	for _, h := range hits[:k] {
		id := strconv.Itoa(h.slot)
		out = append(out, domain.Retrieved{
			Document: domain.Document{ID: id, Text: ix.texts[id], Subject: ix.subjects[id]},
			Distance: h.dist,
		})
	}
	return out, nil
}

// Size reports the number of indexed documents.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

func squaredL2(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Save writes the vector blob and the two JSON side files.
func (ix *Index) Save(vectorsPath, textsPath, subjectsPath string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if !ix.ready {
		return ErrNotReady
	}
	f, err := os.Create(vectorsPath)
	if err != nil {
		return err
	}
	if err := writeBlob(f, ix.dim, ix.vectors); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := writeJSON(textsPath, ix.texts); err != nil {
		return err
	}
	return writeJSON(subjectsPath, ix.subjects)
}

// Load reads all three artifacts. A missing artifact is a fatal startup
// condition for serving; the error names the offending file.
func (ix *Index) Load(vectorsPath, textsPath, subjectsPath string) error {
	f, err := os.Open(vectorsPath)
	if err != nil {
		return fmt.Errorf("index: opening vector blob %s: %w", vectorsPath, err)
	}
	dim, vectors, err := readBlob(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("index: reading vector blob %s: %w", vectorsPath, err)
	}
	var texts map[string]string
	if err := readJSON(textsPath, &texts); err != nil {
		return fmt.Errorf("index: reading id-to-text map %s: %w", textsPath, err)
	}
	var subjects map[string]map[string][]string
	if err := readJSON(subjectsPath, &subjects); err != nil {
		return fmt.Errorf("index: reading id-to-subject map %s: %w", subjectsPath, err)
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.dim = dim
	ix.vectors = vectors
	ix.texts = texts
	ix.subjects = subjects
	ix.ready = true
	return nil
}

func writeBlob(w io.Writer, dim int, vectors [][]float32) error {
	header := []uint32{blobMagic, uint32(dim), uint32(len(vectors))}
	for _, h := range header {
		if err := binary.Write(w, binary.LittleEndian, h); err != nil {
			return err
		}
	}
	for _, v := range vectors {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func readBlob(r io.Reader) (int, [][]float32, error) {
	var magic, dim, count uint32
	for _, p := range []*uint32{&magic, &dim, &count} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return 0, nil, err
		}
	}
	if magic != blobMagic {
		return 0, nil, errors.New("bad magic")
	}
	vectors := make([][]float32, count)
	for i := range vectors {
		vectors[i] = make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, vectors[i]); err != nil {
			return 0, nil, err
		}
	}
	return int(dim), vectors, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
