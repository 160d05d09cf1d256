// Package qdrant implements the vector store contract over Qdrant's REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmvla/shiru/internal/vectorstore"
)

const distanceCosine = "Cosine"

// Store is a REST client bound to one Qdrant collection.
type Store struct {
	baseURL    string
	apiKey     string
	collection string
	vectorSize int
	httpClient *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize int
	Timeout    time.Duration
}

func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Store{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		vectorSize: cfg.VectorSize,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type collectionInfo struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// EnsureCollection creates the collection with cosine geometry if it does
// not exist. An existing collection must match the configured vector size
// and distance; a mismatch would silently corrupt every search, so it fails
// loudly here instead.
func (s *Store) EnsureCollection(ctx context.Context) error {
	url := fmt.Sprintf("%s/collections/%s", s.baseURL, s.collection)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	s.auth(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", vectorstore.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var info collectionInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return fmt.Errorf("decode collection info: %w", err)
		}
		got := info.Result.Config.Params.Vectors
		if got.Size != s.vectorSize || got.Distance != distanceCosine {
			return fmt.Errorf("%w: collection %q has size=%d distance=%s, want size=%d distance=%s",
				vectorstore.ErrGeometryMismatch, s.collection, got.Size, got.Distance, s.vectorSize, distanceCosine)
		}
		return nil
	case http.StatusNotFound:
		return s.createCollection(ctx)
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: check collection: status %d: %s", vectorstore.ErrUnavailable, resp.StatusCode, string(body))
	}
}

func (s *Store) createCollection(ctx context.Context) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.vectorSize,
			"distance": distanceCosine,
		},
	}
	url := fmt.Sprintf("%s/collections/%s", s.baseURL, s.collection)
	if err := s.doJSON(ctx, http.MethodPut, url, body, nil); err != nil {
		return fmt.Errorf("create collection %q: %w", s.collection, err)
	}
	return nil
}

// Upsert writes all points in one batch with wait=true, so the call returns
// only after the points are persisted and visible to search.
func (s *Store) Upsert(ctx context.Context, points []vectorstore.Point) error {
	if len(points) == 0 {
		return nil
	}
	for i, p := range points {
		if len(p.Vector) != s.vectorSize {
			return fmt.Errorf("%w: point %d has %d dimensions, collection expects %d",
				vectorstore.ErrDimensionMismatch, i, len(p.Vector), s.vectorSize)
		}
	}

	body := map[string]any{"points": points}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.baseURL, s.collection)
	if err := s.doJSON(ctx, http.MethodPut, url, body, nil); err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search returns the limit nearest stored points by cosine similarity,
// highest score first, as ordered by Qdrant.
func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]vectorstore.ContextChunk, error) {
	if len(vector) != s.vectorSize {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, collection expects %d",
			vectorstore.ErrDimensionMismatch, len(vector), s.vectorSize)
	}
	if limit <= 0 {
		limit = 5
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	var out struct {
		Result []struct {
			Score   float32             `json:"score"`
			Payload vectorstore.Payload `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", s.baseURL, s.collection)
	if err := s.doJSON(ctx, http.MethodPost, url, body, &out); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	chunks := make([]vectorstore.ContextChunk, 0, len(out.Result))
	for _, r := range out.Result {
		chunks = append(chunks, vectorstore.ContextChunk{
			Text:   r.Payload.Text,
			Source: r.Payload.Source,
			Score:  r.Score,
		})
	}
	return chunks, nil
}

func (s *Store) doJSON(ctx context.Context, method, url string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	s.auth(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", vectorstore.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s %s: status %d: %s", vectorstore.ErrUnavailable, method, url, resp.StatusCode, string(body))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (s *Store) auth(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}
