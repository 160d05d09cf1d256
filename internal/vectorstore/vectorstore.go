// Package vectorstore defines the vector storage contract shared by the
// ingestion and retrieval pipelines.
package vectorstore

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable wraps connectivity or service failures from the store.
	ErrUnavailable = errors.New("vector store unavailable")
	// ErrDimensionMismatch means a vector does not match the collection geometry.
	// This is a configuration error, never a retry case.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrGeometryMismatch means an existing collection was created with a
	// different vector size or distance metric than the one configured.
	ErrGeometryMismatch = errors.New("collection geometry mismatch")
)

// Payload is the data stored alongside each vector.
type Payload struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// Point is one stored vector with its payload. Points are never mutated
// after creation; re-ingesting a document creates new points.
type Point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload Payload   `json:"payload"`
}

// ContextChunk is a search hit: a stored payload plus its similarity score.
type ContextChunk struct {
	Text   string
	Source string
	Score  float32
}

// Store owns one logical collection of fixed geometry.
type Store interface {
	// EnsureCollection creates the collection if missing and verifies the
	// geometry of an existing one. Safe to call repeatedly.
	EnsureCollection(ctx context.Context) error
	// Upsert writes points as one batch and returns only once they are
	// visible. Zero points is a no-op.
	Upsert(ctx context.Context, points []Point) error
	// Search returns up to limit nearest points by cosine similarity,
	// highest similarity first.
	Search(ctx context.Context, vector []float32, limit int) ([]ContextChunk, error)
}
