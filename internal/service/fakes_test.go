package service

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/patrickmvla/shiru/internal/vectorstore"
)

// fakeParser returns canned text or an error.
type fakeParser struct {
	text string
	err  error
}

func (f *fakeParser) Parse(ctx context.Context, filename string, data []byte) (string, error) {
	return f.text, f.err
}

// fakeEmbedder produces a deterministic unit vector per text.
type fakeEmbedder struct {
	dims int
	err  error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	v := make([]float32, f.dims)
	v[len(text)%f.dims] = 1
	return v, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }

// recordingStore records calls so tests can assert on pipeline behavior.
type recordingStore struct {
	mu          sync.Mutex
	ensureCalls int
	upserted    [][]vectorstore.Point
	results     []vectorstore.ContextChunk
	ensureErr   error
	upsertErr   error
	searchErr   error
}

func (r *recordingStore) EnsureCollection(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureCalls++
	return r.ensureErr
}

func (r *recordingStore) Upsert(ctx context.Context, points []vectorstore.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserted = append(r.upserted, points)
	return nil
}

func (r *recordingStore) Search(ctx context.Context, vector []float32, limit int) ([]vectorstore.ContextChunk, error) {
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	if limit < len(r.results) {
		return r.results[:limit], nil
	}
	return r.results, nil
}

func (r *recordingStore) points() []vectorstore.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []vectorstore.Point
	for _, batch := range r.upserted {
		all = append(all, batch...)
	}
	return all
}

// fakeChatModel captures the prompt and replies with canned text.
type fakeChatModel struct {
	prompt []*schema.Message
	reply  string
	err    error
	calls  int
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.calls++
	f.prompt = input
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.reply}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}
