// Package memory is a brute-force in-process vector store, used by tests in
// place of a running Qdrant instance.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/patrickmvla/shiru/internal/vectorstore"
)

// Store keeps points in memory and searches by cosine similarity.
// Stored vectors are expected to be L2-normalized, so the dot product is
// the cosine similarity.
type Store struct {
	mu         sync.RWMutex
	vectorSize int
	points     []vectorstore.Point
}

func New(vectorSize int) *Store {
	return &Store{vectorSize: vectorSize}
}

func (s *Store) EnsureCollection(ctx context.Context) error {
	return nil
}

func (s *Store) Upsert(ctx context.Context, points []vectorstore.Point) error {
	if len(points) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range points {
		if len(p.Vector) != s.vectorSize {
			return fmt.Errorf("%w: point %d has %d dimensions, want %d",
				vectorstore.ErrDimensionMismatch, i, len(p.Vector), s.vectorSize)
		}
	}
	s.points = append(s.points, points...)
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]vectorstore.ContextChunk, error) {
	if len(vector) != s.vectorSize {
		return nil, fmt.Errorf("%w: query has %d dimensions, want %d",
			vectorstore.ErrDimensionMismatch, len(vector), s.vectorSize)
	}
	if limit <= 0 {
		limit = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := make([]vectorstore.ContextChunk, 0, len(s.points))
	for _, p := range s.points {
		chunks = append(chunks, vectorstore.ContextChunk{
			Text:   p.Payload.Text,
			Source: p.Payload.Source,
			Score:  dot(p.Vector, vector),
		})
	}
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].Score > chunks[j].Score })
	if len(chunks) > limit {
		chunks = chunks[:limit]
	}
	return chunks, nil
}

// Len reports the number of stored points.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
