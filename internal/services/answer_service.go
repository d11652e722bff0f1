package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/lectern-ai/lectern/internal/core"
)

// NoResultsMessage is returned when similarity search finds nothing among
// the allowed documents. It is an answer, not an error.
const NoResultsMessage = "No relevant results were found in the knowledge base."

const promptTemplate = `You are an expert assistant answering questions from relevant retrieved information.
Use the following context to answer the user's question clearly and concisely.
If the context does not contain enough information, say so in the answer.

### CONTEXT:
%s

### USER QUESTION:
%s

### DOCUMENT TEXT FRAGMENTS:
The fragments above come from different documents and are separated by line breaks. Each fragment may contain information relevant to the user's question. %s

### INSTRUCTIONS:
- Use only the provided context to answer.
- Be direct and clear in the answer.
- Answer in the language of the user's question.
- If the information is not sufficient, say: "I could not find enough information in the provided context."
- Include the name of the source document in the answer. If the document name is not explicit in the text fragment, omit that part of the answer.`

// AnswerResult is the response payload of the retrieval pipeline. Exactly
// one field is set: Response on success, Message when nothing relevant was
// retrieved, Error on failure.
type AnswerResult struct {
	Response string `json:"response,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// AnswerService answers questions grounded in retrieved chunks, scoped to
// a caller-supplied set of document hashes.
type AnswerService struct {
	store    core.VectorStore
	embedder core.EmbeddingProvider
	llm      core.LLMProvider
	topK     int
}

func NewAnswerService(store core.VectorStore, embedder core.EmbeddingProvider, llm core.LLMProvider, topK int) *AnswerService {
	if topK <= 0 {
		topK = 4
	}
	return &AnswerService{store: store, embedder: embedder, llm: llm, topK: topK}
}

// Answer never propagates a failure: every error becomes a structured
// payload so the HTTP layer always has a well-formed body to return.
func (s *AnswerService) Answer(ctx context.Context, question string, allowedHashes []string) AnswerResult {
	res, err := s.answer(ctx, question, allowedHashes)
	if err != nil {
		log.Printf("answer failed: %v", err)
		return AnswerResult{Error: fmt.Sprintf("Error: %v", err)}
	}
	return res
}

func (s *AnswerService) answer(ctx context.Context, question string, allowedHashes []string) (AnswerResult, error) {
	vecs, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return AnswerResult{}, fmt.Errorf("embed question: %w", err)
	}
	if len(vecs) != 1 {
		return AnswerResult{}, fmt.Errorf("embed question: got %d vectors", len(vecs))
	}

	hits, err := s.store.SimilaritySearch(ctx, vecs[0], allowedHashes, s.topK)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("similarity search: %w", err)
	}
	if len(hits) == 0 {
		return AnswerResult{Message: NoResultsMessage}, nil
	}

	texts := make([]string, len(hits))
	docs := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
		docs[i] = h.ContentHash
	}

	prompt := fmt.Sprintf(promptTemplate, strings.Join(texts, "\n"), question, strings.Join(docs, "\n"))

	answer, err := s.llm.Generate(ctx, "", prompt)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("generate answer: %w", err)
	}
	return AnswerResult{Response: answer}, nil
}
