package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lectern-ai/lectern/internal/config"
	"github.com/lectern-ai/lectern/internal/core"
	"github.com/lectern-ai/lectern/internal/core/blobstore"
	"github.com/lectern-ai/lectern/internal/core/corpus"
	"github.com/lectern-ai/lectern/internal/core/database"
	"github.com/lectern-ai/lectern/internal/core/ingest"
	"github.com/lectern-ai/lectern/internal/core/llm"
)

func main() {
	interval := flag.Duration("interval", 0, "rerun the sync every interval; 0 runs once and exits")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()

	store, err := database.NewStore(ctx, cfg.DatabaseURL, cfg.EmbedDim)
	if err != nil {
		log.Fatalf("vector store: %v", err)
	}
	defer store.Close()

	source, err := corpus.NewMySQLSource(ctx, cfg.CorpusDSN)
	if err != nil {
		log.Fatalf("corpus source: %v", err)
	}
	defer source.Close()

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel, cfg.EmbedDim)
	if err != nil {
		log.Fatalf("embedder: %v", err)
	}
	defer embedder.Close()

	tokens := ingest.NewTokenStream(ingest.NewDocconvExtractor(false), cfg.PageOffset)
	segmenter := ingest.NewSegmenter(ingest.SegmentConfig{
		TitleFontThreshold: cfg.TitleFontThreshold,
		MinChars:           cfg.MinChars,
	})
	engine := ingest.NewSyncEngine(source, blobs, store, embedder, tokens, segmenter, ingest.ChunkConfig{
		MaxLen:   cfg.ChunkMaxLen,
		Overlap:  cfg.ChunkOverlap,
		MinChars: cfg.MinChars,
	}, "")

	for {
		runOnce(ctx, store, engine)
		if *interval <= 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(*interval):
		}
	}
}

// runOnce executes a single pass under the advisory run lock so
// overlapping schedules never interleave their diff and write phases.
func runOnce(ctx context.Context, store *database.Store, engine *ingest.SyncEngine) {
	release, acquired, err := store.AcquireRunLock(ctx)
	if err != nil {
		log.Printf("run lock: %v", err)
		return
	}
	if !acquired {
		log.Println("another sync run holds the lock, skipping this pass")
		return
	}
	defer release()

	start := time.Now()
	if err := engine.Run(ctx); err != nil {
		log.Printf("sync run failed: %v", err)
		return
	}
	log.Printf("sync run finished in %s", time.Since(start).Round(time.Millisecond))
}

func newBlobStore(ctx context.Context, cfg *config.Config) (core.BlobStore, error) {
	if cfg.StorageBackend == "s3" {
		return blobstore.NewS3Store(ctx, cfg)
	}
	return blobstore.NewFileDir(cfg.CorpusDataPath)
}
