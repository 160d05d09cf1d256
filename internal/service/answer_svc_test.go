package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickmvla/shiru/internal/vectorstore"
)

func TestAnswer_GroundedPromptAndSources(t *testing.T) {
	store := &recordingStore{results: []vectorstore.ContextChunk{
		{Text: "Refunds are issued within 30 days.", Source: "policy.pdf", Score: 0.91},
		{Text: "Contact support for refunds.", Source: "faq.pdf", Score: 0.85},
		{Text: "Refund requests need a receipt.", Source: "policy.pdf", Score: 0.80},
	}}
	chat := &fakeChatModel{reply: "Refunds are issued within 30 days."}
	svc := NewAnswerService(&fakeEmbedder{dims: 4}, store, chat, 5)

	ans, err := svc.Answer(context.Background(), "What is the refund policy?")
	require.NoError(t, err)

	assert.Equal(t, "Refunds are issued within 30 days.", ans.Text)
	assert.Equal(t, []Source{{Source: "policy.pdf"}, {Source: "faq.pdf"}}, ans.Sources,
		"sources deduplicate by first occurrence")
	assert.Equal(t, 1, chat.calls, "exactly one LLM call, no retries")

	require.Len(t, chat.prompt, 2)
	system, user := chat.prompt[0].Content, chat.prompt[1].Content
	assert.Contains(t, system, RefusalSentence)
	assert.Contains(t, system, "ONLY on the provided context")
	assert.Contains(t, user, "Refunds are issued within 30 days.\n---\nContact support for refunds.",
		"context blocks keep search order")
	assert.Contains(t, user, "What is the refund policy?")
}

func TestAnswer_EmptyStore(t *testing.T) {
	chat := &fakeChatModel{reply: RefusalSentence}
	svc := NewAnswerService(&fakeEmbedder{dims: 4}, &recordingStore{}, chat, 5)

	ans, err := svc.Answer(context.Background(), "What is the refund policy?")
	require.NoError(t, err)
	assert.Contains(t, ans.Text, RefusalSentence)
	assert.Empty(t, ans.Sources)
	assert.NotNil(t, ans.Sources, "sources must serialize as [] rather than null")
}

func TestAnswer_GenerationFailure(t *testing.T) {
	store := &recordingStore{results: []vectorstore.ContextChunk{
		{Text: "context", Source: "a.pdf", Score: 0.9},
	}}
	chat := &fakeChatModel{err: errors.New("rate limited")}
	svc := NewAnswerService(&fakeEmbedder{dims: 4}, store, chat, 5)

	_, err := svc.Answer(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestAnswer_SearchFailure(t *testing.T) {
	store := &recordingStore{searchErr: vectorstore.ErrUnavailable}
	chat := &fakeChatModel{}
	svc := NewAnswerService(&fakeEmbedder{dims: 4}, store, chat, 5)

	_, err := svc.Answer(context.Background(), "anything")
	assert.ErrorIs(t, err, vectorstore.ErrUnavailable)
	assert.Zero(t, chat.calls, "no LLM call when retrieval fails")
}

func TestAnswer_EmbedFailure(t *testing.T) {
	svc := NewAnswerService(&fakeEmbedder{dims: 4, err: ErrModelUnavailable}, &recordingStore{}, &fakeChatModel{}, 5)
	_, err := svc.Answer(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrModelUnavailable)
}
