package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lectern-ai/lectern/internal/config"
	"github.com/lectern-ai/lectern/internal/core/database"
	"github.com/lectern-ai/lectern/internal/core/llm"
	"github.com/lectern-ai/lectern/internal/services"
)

// App holds the retrieval side of the system: the vector store read path,
// the shared embedding model, the generation client, and the HTTP server.
type App struct {
	Store    *database.Store
	Embedder *llm.GeminiEmbedder
	LLM      *llm.GeminiLLM
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	store, err := database.NewStore(appCtx, cfg.DatabaseURL, cfg.EmbedDim)
	if err != nil {
		return nil, fmt.Errorf("vector store: %w", err)
	}
	if err := store.EnsureSchema(appCtx); err != nil {
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	log.Println("Database initialized and ready.")

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel, cfg.EmbedDim)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the LLM provider: %w", err)
	}

	answers := services.NewAnswerService(store, embedder, llmProvider, cfg.TopK)
	server := NewServer(cfg, answers)

	return &App{Store: store, Embedder: embedder, LLM: llmProvider, Server: server}, nil
}

func (a *App) Close() {
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.Store != nil {
		_ = a.Store.Close()
	}
}
