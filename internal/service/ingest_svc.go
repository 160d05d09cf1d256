package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/patrickmvla/shiru/internal/chunker"
	"github.com/patrickmvla/shiru/internal/vectorstore"
)

// Embedder converts text into a fixed-length normalized vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// DocumentParser turns raw document bytes into normalized text.
type DocumentParser interface {
	Parse(ctx context.Context, filename string, data []byte) (string, error)
}

// IngestService runs one uploaded document through the write path:
// parse, chunk, embed, store.
type IngestService struct {
	parser   DocumentParser
	splitter *chunker.Splitter
	embedder Embedder
	store    vectorstore.Store
}

func NewIngestService(parser DocumentParser, splitter *chunker.Splitter, embedder Embedder, store vectorstore.Store) *IngestService {
	return &IngestService{
		parser:   parser,
		splitter: splitter,
		embedder: embedder,
		store:    store,
	}
}

// Ingest indexes one document and returns the number of chunks stored.
// A document that parses to no text is a successful no-op returning 0.
// Every point gets a fresh id, so re-ingesting the same document adds
// duplicate points rather than replacing earlier ones.
func (s *IngestService) Ingest(ctx context.Context, filename string, data []byte) (int, error) {
	text, err := s.parser.Parse(ctx, filename, data)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", filename, err)
	}

	chunks := s.splitter.Split(text)
	if len(chunks) == 0 {
		log.Printf("No text extracted from %q, nothing to index", filename)
		return 0, nil
	}

	// Chunks are embedded one at a time; point i always carries chunk i.
	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("embed chunk %d of %q: %w", i, filename, err)
		}
		points[i] = vectorstore.Point{
			ID:     uuid.New().String(),
			Vector: vec,
			Payload: vectorstore.Payload{
				Source: filename,
				Text:   chunk,
			},
		}
	}

	if err := s.store.EnsureCollection(ctx); err != nil {
		return 0, fmt.Errorf("ensure collection: %w", err)
	}
	if err := s.store.Upsert(ctx, points); err != nil {
		return 0, fmt.Errorf("store %q: %w", filename, err)
	}

	log.Printf("Indexed %d chunks from %q", len(points), filename)
	return len(points), nil
}
