package core

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/lectern-ai/lectern/internal/models"
)

// ErrNotFound is returned by a BlobStore when no object exists for a hash.
var ErrNotFound = errors.New("blob not found")

// Word is one positioned text token produced by the PDF extraction
// primitive. FontSize drives title detection in the segmenter; extractors
// without font information report 0.
type Word struct {
	Text     string
	FontSize float64
}

// PageWords carries the ordered words of a single page.
type PageWords struct {
	Number int
	Words  []Word
}

// WordExtractor is the external PDF extraction primitive. Implementations
// stream pages in document order on the returned channel and close it when
// done; errors surface through the errgroup.
type WordExtractor interface {
	ExtractWords(ctx context.Context, g *errgroup.Group, path string) (<-chan PageWords, error)
}

// CorpusSource reports the documents currently eligible for ingestion from
// the external content-management system.
type CorpusSource interface {
	ListDocuments(ctx context.Context) ([]models.DocumentRef, error)
	Close() error
}

// BlobStore fetches document bytes by content hash. Objects live under a
// two-level hash-bucket layout: <hash[0:2]>/<hash[2:4]>/<hash>.
type BlobStore interface {
	Fetch(ctx context.Context, contentHash string) ([]byte, error)
}

// VectorStore owns the persisted chunk schema. Upserts are keyed by
// (content_hash, text) and atomic per call, so re-ingesting identical
// content never duplicates rows.
type VectorStore interface {
	EnsureSchema(ctx context.Context) error
	UpsertChunks(ctx context.Context, chunks []models.Chunk) error
	ListDocumentHashes(ctx context.Context) (map[string]struct{}, error)
	DeleteByDocumentHashes(ctx context.Context, hashes []string) error
	SimilaritySearch(ctx context.Context, queryVec []float32, allowedHashes []string, topK int) ([]models.SearchHit, error)
	Close() error
}

// EmbeddingProvider turns texts into fixed-dimension vectors, one per
// input, order-preserving. Ingestion and retrieval must share an instance
// or similarity scores are meaningless.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider generates a completion for a grounded prompt.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
