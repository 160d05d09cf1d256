package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	openaiembed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
)

// ErrModelUnavailable means the embedding backend could not be initialized.
// It is fatal to the calling pipeline and is never retried silently.
var ErrModelUnavailable = errors.New("embedding model unavailable")

// EmbeddingService converts text into fixed-length L2-normalized vectors
// through an OpenAI-compatible embedding endpoint. The underlying embedder
// is constructed lazily on first use; concurrent first calls share a single
// initialization, and its outcome (instance or error) is memoized.
type EmbeddingService struct {
	apiKey     string
	baseURL    string
	model      string
	dimensions int

	newEmbedder func(ctx context.Context) (embedding.Embedder, error)

	once     sync.Once
	embedder embedding.Embedder
	initErr  error
}

// NewEmbeddingService creates an embedding service. Nothing is initialized
// until the first Embed call.
func NewEmbeddingService(apiKey, baseURL, model string, dimensions int) *EmbeddingService {
	if model == "" {
		model = "BAAI/bge-large-en-v1.5"
	}
	if dimensions == 0 {
		dimensions = 1024
	}
	s := &EmbeddingService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		dimensions: dimensions,
	}
	s.newEmbedder = s.defaultEmbedder
	return s
}

func (s *EmbeddingService) defaultEmbedder(ctx context.Context) (embedding.Embedder, error) {
	return openaiembed.NewEmbedder(ctx, &openaiembed.EmbeddingConfig{
		APIKey:  s.apiKey,
		BaseURL: s.baseURL,
		Model:   s.model,
		Timeout: 60 * time.Second,
	})
}

func (s *EmbeddingService) instance(ctx context.Context) (embedding.Embedder, error) {
	s.once.Do(func() {
		log.Printf("Initializing embedding model %s", s.model)
		s.embedder, s.initErr = s.newEmbedder(ctx)
	})
	if s.initErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, s.initErr)
	}
	return s.embedder, nil
}

// Dimensions returns the configured vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// Embed returns the normalized embedding of one text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one request. Output order matches input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	emb, err := s.instance(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := emb.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}
	if len(raw) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(raw))
	}

	out := make([][]float32, len(raw))
	for i, v := range raw {
		if len(v) != s.dimensions {
			return nil, fmt.Errorf("embedding has %d dimensions, model configured for %d", len(v), s.dimensions)
		}
		out[i] = normalize(v)
	}
	return out, nil
}

// normalize converts to float32 and scales to unit L2 norm, so cosine
// similarity in the store reduces to a dot product.
func normalize(v []float64) []float32 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out
}
