package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/patrickmvla/shiru/internal/vectorstore"
)

// ErrGenerationFailed wraps LLM failures. Retrieval having succeeded is not
// surfaced as a partial success.
var ErrGenerationFailed = errors.New("answer generation failed")

// RefusalSentence is what the model must emit when the retrieved context
// does not contain the answer.
const RefusalSentence = "I could not find the answer in the provided documents."

const groundingSystemPrompt = `You are an expert study assistant. Your goal is to answer questions based ONLY on the provided context.
Read the context below and answer the user's question accurately.
If the answer is not available in the context, clearly state "` + RefusalSentence + `" Do not use any outside knowledge.`

const answerPromptTemplate = `--- CONTEXT ---
{context}
--- END CONTEXT ---

User's Question: {question}

Answer:`

// Answer is a grounded reply with its deduplicated source documents.
type Answer struct {
	Text    string
	Sources []Source
}

// Source names one document that contributed retrieved context.
type Source struct {
	Source string `json:"source"`
}

// AnswerService runs the read path for one question: embed the query,
// retrieve the nearest chunks, and generate a grounded answer with a single
// LLM call.
type AnswerService struct {
	embedder  Embedder
	store     vectorstore.Store
	chatModel model.BaseChatModel
	topK      int
	template  prompt.ChatTemplate
}

func NewAnswerService(embedder Embedder, store vectorstore.Store, chatModel model.BaseChatModel, topK int) *AnswerService {
	if topK <= 0 {
		topK = 5
	}
	return &AnswerService{
		embedder:  embedder,
		store:     store,
		chatModel: chatModel,
		topK:      topK,
		template: prompt.FromMessages(schema.FString,
			schema.SystemMessage(groundingSystemPrompt),
			schema.UserMessage(answerPromptTemplate),
		),
	}
}

// Answer responds to query using only ingested content. The model's reply is
// returned verbatim; sources keep the first-occurrence order of the search
// results.
func (s *AnswerService) Answer(ctx context.Context, query string) (*Answer, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := s.store.Search(ctx, vec, s.topK)
	if err != nil {
		return nil, fmt.Errorf("search context: %w", err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	msgs, err := s.template.Format(ctx, map[string]any{
		"context":  strings.Join(texts, "\n---\n"),
		"question": query,
	})
	if err != nil {
		return nil, fmt.Errorf("format prompt: %w", err)
	}

	reply, err := s.chatModel.Generate(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return &Answer{
		Text:    reply.Content,
		Sources: dedupeSources(chunks),
	}, nil
}

func dedupeSources(chunks []vectorstore.ContextChunk) []Source {
	seen := make(map[string]struct{}, len(chunks))
	sources := make([]Source, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := seen[c.Source]; ok {
			continue
		}
		seen[c.Source] = struct{}{}
		sources = append(sources, Source{Source: c.Source})
	}
	return sources
}
