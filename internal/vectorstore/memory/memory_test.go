package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickmvla/shiru/internal/vectorstore"
)

func TestRoundTrip(t *testing.T) {
	s := New(2)
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx))

	err := s.Upsert(ctx, []vectorstore.Point{
		{ID: "p1", Vector: []float32{1, 0}, Payload: vectorstore.Payload{Source: "a.pdf", Text: "hello"}},
		{ID: "p2", Vector: []float32{0, 1}, Payload: vectorstore.Payload{Source: "b.pdf", Text: "world"}},
	})
	require.NoError(t, err)

	chunks, err := s.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "hello", chunks[0].Text)
	assert.Equal(t, "a.pdf", chunks[0].Source)
	assert.Greater(t, chunks[0].Score, chunks[1].Score)
}

func TestSearch_Limit(t *testing.T) {
	s := New(2)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Upsert(ctx, []vectorstore.Point{
			{ID: string(rune('a' + i)), Vector: []float32{1, 0}, Payload: vectorstore.Payload{Source: "x", Text: "t"}},
		}))
	}
	chunks, err := s.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	s := New(3)
	err := s.Upsert(context.Background(), []vectorstore.Point{{ID: "p", Vector: []float32{1}}})
	assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
	assert.Zero(t, s.Len())
}
