package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-ai/lectern/internal/models"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2, 3}
	}
	return out, nil
}

type fakeSearchStore struct {
	hits    []models.SearchHit
	err     error
	allowed []string
}

func (f *fakeSearchStore) EnsureSchema(context.Context) error { return nil }

func (f *fakeSearchStore) UpsertChunks(context.Context, []models.Chunk) error { return nil }

func (f *fakeSearchStore) DeleteByDocumentHashes(context.Context, []string) error { return nil }

func (f *fakeSearchStore) Close() error { return nil }

func (f *fakeSearchStore) ListDocumentHashes(context.Context) (map[string]struct{}, error) {
	return nil, nil
}

func (f *fakeSearchStore) SimilaritySearch(_ context.Context, _ []float32, allowed []string, _ int) ([]models.SearchHit, error) {
	f.allowed = allowed
	if f.err != nil {
		return nil, f.err
	}
	if len(allowed) == 0 {
		return nil, nil
	}
	return f.hits, nil
}

type fakeLLM struct {
	answer  string
	err     error
	calls   int
	prompts []string
}

func (f *fakeLLM) Generate(_ context.Context, _, userPrompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, userPrompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func TestAnswerGroundsPromptInRetrievedChunks(t *testing.T) {
	store := &fakeSearchStore{hits: []models.SearchHit{
		{ContentHash: "hash1", Text: "course.pdf - Dates: deadline: March 5", Similarity: 0.92},
		{ContentHash: "hash2", Text: "course.pdf - Intro: welcome", Similarity: 0.41},
	}}
	llm := &fakeLLM{answer: "The deadline is March 5."}

	svc := NewAnswerService(store, &fakeEmbedder{}, llm, 4)
	res := svc.Answer(context.Background(), "What is the deadline?", []string{"hash1", "hash2"})

	assert.Equal(t, "The deadline is March 5.", res.Response)
	assert.Empty(t, res.Message)
	assert.Empty(t, res.Error)

	require.Equal(t, 1, llm.calls)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "deadline: March 5")
	assert.Contains(t, prompt, "What is the deadline?")
	assert.Contains(t, prompt, "hash1")
}

func TestAnswerNoAllowedDocumentsReturnsMessageWithoutLLM(t *testing.T) {
	store := &fakeSearchStore{hits: []models.SearchHit{
		{ContentHash: "other", Text: "would match, but out of scope"},
	}}
	llm := &fakeLLM{}

	svc := NewAnswerService(store, &fakeEmbedder{}, llm, 4)
	res := svc.Answer(context.Background(), "What is the deadline?", nil)

	assert.Equal(t, NoResultsMessage, res.Message)
	assert.Empty(t, res.Response)
	assert.Zero(t, llm.calls)
}

func TestAnswerEmbeddingFailureReturnsErrorPayload(t *testing.T) {
	svc := NewAnswerService(&fakeSearchStore{}, &fakeEmbedder{err: errors.New("model offline")}, &fakeLLM{}, 4)
	res := svc.Answer(context.Background(), "question", []string{"h"})

	assert.Empty(t, res.Response)
	assert.Contains(t, res.Error, "Error:")
	assert.Contains(t, res.Error, "model offline")
}

func TestAnswerSearchFailureReturnsErrorPayload(t *testing.T) {
	store := &fakeSearchStore{err: errors.New("db unreachable")}
	llm := &fakeLLM{}

	svc := NewAnswerService(store, &fakeEmbedder{}, llm, 4)
	res := svc.Answer(context.Background(), "question", []string{"h"})

	assert.Contains(t, res.Error, "db unreachable")
	assert.Zero(t, llm.calls)
}

func TestAnswerLLMFailureReturnsErrorPayload(t *testing.T) {
	store := &fakeSearchStore{hits: []models.SearchHit{{ContentHash: "h", Text: "some text"}}}
	llm := &fakeLLM{err: errors.New("generation quota exceeded")}

	svc := NewAnswerService(store, &fakeEmbedder{}, llm, 4)
	res := svc.Answer(context.Background(), "question", []string{"h"})

	assert.Contains(t, res.Error, "generation quota exceeded")
}

func TestAnswerScopePassedToStore(t *testing.T) {
	store := &fakeSearchStore{}
	svc := NewAnswerService(store, &fakeEmbedder{}, &fakeLLM{}, 4)
	svc.Answer(context.Background(), "question", []string{"only-this-hash"})

	assert.Equal(t, []string{"only-this-hash"}, store.allowed)
}
