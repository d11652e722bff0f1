package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lectern-ai/lectern/internal/core"
	"github.com/lectern-ai/lectern/internal/models"
)

// SyncEngine reconciles the vector store against the CMS corpus. After a
// run, the store's distinct content-hash set equals the corpus hash set:
// hashes missing from the corpus are deleted, hashes missing from the
// store are processed through extract → segment → split → embed → upsert.
type SyncEngine struct {
	corpus    core.CorpusSource
	blobs     core.BlobStore
	store     core.VectorStore
	embedder  core.EmbeddingProvider
	tokens    *TokenStream
	segmenter *Segmenter
	chunkCfg  ChunkConfig
	tempDir   string
}

// NewSyncEngine wires the reconciliation pipeline. tempDir receives the
// staged PDF copies; empty means the system temp directory.
func NewSyncEngine(
	corpus core.CorpusSource,
	blobs core.BlobStore,
	store core.VectorStore,
	embedder core.EmbeddingProvider,
	tokens *TokenStream,
	segmenter *Segmenter,
	chunkCfg ChunkConfig,
	tempDir string,
) *SyncEngine {
	return &SyncEngine{
		corpus:    corpus,
		blobs:     blobs,
		store:     store,
		embedder:  embedder,
		tokens:    tokens,
		segmenter: segmenter,
		chunkCfg:  chunkCfg,
		tempDir:   tempDir,
	}
}

// Run executes one reconciliation pass. A fetch-phase failure aborts the
// run; a failure on an individual document is logged and the run moves to
// the next one. Run assumes it is the only writer — concurrent passes must
// be serialized by the caller.
func (e *SyncEngine) Run(ctx context.Context) error {
	runID := uuid.NewString()[:8]

	refs, err := e.corpus.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("fetch corpus metadata: %w", err)
	}
	log.Printf("sync %s: corpus reports %d eligible documents", runID, len(refs))

	if err := e.store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	storeHashes, err := e.store.ListDocumentHashes(ctx)
	if err != nil {
		return fmt.Errorf("list store hashes: %w", err)
	}

	corpusHashes := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		corpusHashes[ref.ContentHash] = struct{}{}
	}

	var obsolete []string
	for h := range storeHashes {
		if _, ok := corpusHashes[h]; !ok {
			obsolete = append(obsolete, h)
		}
	}
	if len(obsolete) > 0 {
		if err := e.store.DeleteByDocumentHashes(ctx, obsolete); err != nil {
			return fmt.Errorf("delete obsolete documents: %w", err)
		}
		log.Printf("sync %s: deleted %d obsolete documents", runID, len(obsolete))
	}

	var toProcess []models.DocumentRef
	for _, ref := range refs {
		if _, ok := storeHashes[ref.ContentHash]; !ok {
			toProcess = append(toProcess, ref)
		}
	}
	log.Printf("sync %s: %d documents to process", runID, len(toProcess))

	for _, ref := range toProcess {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.processDocument(ctx, ref); err != nil {
			log.Printf("sync %s: processing %q (%s) failed: %v", runID, ref.Filename, ref.ContentHash, err)
			continue
		}
	}
	return nil
}

// processDocument stages one document's bytes, runs the extraction
// pipeline, and upserts the embedded chunks. The staged copy is removed
// whether or not processing succeeds.
func (e *SyncEngine) processDocument(ctx context.Context, ref models.DocumentRef) error {
	data, err := e.blobs.Fetch(ctx, ref.ContentHash)
	if errors.Is(err, core.ErrNotFound) {
		log.Printf("WARN: document %q (%s) missing from corpus storage, skipping", ref.Filename, ref.ContentHash)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch blob: %w", err)
	}

	tmp, err := os.CreateTemp(e.tempDir, "lectern-*.pdf")
	if err != nil {
		return fmt.Errorf("stage temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write staged copy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close staged copy: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	pages, err := e.tokens.Pages(gctx, g, tmp.Name())
	if err != nil {
		return fmt.Errorf("open token stream: %w", err)
	}

	var sections []models.Section
	g.Go(func() error {
		var segErr error
		sections, segErr = e.segmenter.Segment(gctx, pages)
		return segErr
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	texts := SplitSections(ref.Filename, sections, e.chunkCfg)
	if len(texts) == 0 {
		log.Printf("WARN: document %q (%s) yielded no usable chunks, skipping", ref.Filename, ref.ContentHash)
		return nil
	}

	vecs, err := e.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vecs) != len(texts) {
		return fmt.Errorf("embed size mismatch: got %d vectors for %d chunks", len(vecs), len(texts))
	}

	chunks := make([]models.Chunk, len(texts))
	for i := range texts {
		chunks[i] = models.Chunk{
			ContentHash:  ref.ContentHash,
			DocumentName: ref.Filename,
			Text:         texts[i],
			Embedding:    vecs[i],
		}
	}
	if err := e.store.UpsertChunks(ctx, chunks); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}
	log.Printf("upserted %d chunks for %q (%s)", len(chunks), ref.Filename, ref.ContentHash)
	return nil
}
