package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Rohit-Gupta-126/aeromind/internal/config"
	"github.com/Rohit-Gupta-126/aeromind/internal/format"
	"github.com/Rohit-Gupta-126/aeromind/internal/graph"
	"github.com/Rohit-Gupta-126/aeromind/internal/ingestion"
	"github.com/Rohit-Gupta-126/aeromind/internal/ingestion/ocr"
	"github.com/Rohit-Gupta-126/aeromind/internal/llm"
	"github.com/Rohit-Gupta-126/aeromind/internal/logging"
	"github.com/Rohit-Gupta-126/aeromind/internal/processing"
	"github.com/Rohit-Gupta-126/aeromind/internal/rag"
	"github.com/Rohit-Gupta-126/aeromind/internal/storage"
)

// app holds the wired components shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	pool     *pgxpool.Pool
	store    *storage.VectorStore
	cache    *storage.RedisCache
	indexer  *ingestion.Indexer
	workflow *graph.Workflow
}

// setup loads configuration and builds the logger. A missing API key fails here.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	if err := storage.Migrate(ctx, cfg.Store.DatabaseURL, cfg.Store.EmbeddingDim); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("database schema ready")

	pool, err := storage.Connect(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to PostgreSQL database")

	gemini, err := llm.NewGemini(ctx, cfg.LLM)
	if err != nil {
		pool.Close()
		return nil, err
	}
	embedder, err := processing.NewEmbedder(gemini, cfg.Store.EmbeddingDim)
	if err != nil {
		pool.Close()
		return nil, err
	}

	store := storage.NewVectorStore(pool)
	cache := storage.NewRedisCache(ctx, cfg.Cache, logger)
	watcher := rag.NewIndexWatcher(store, cfg.Cache.StalenessWindow)

	var ocrFunc ingestion.OCRFunc
	if cfg.Ingestion.EnableOCR {
		ocrFunc = ocr.Extract
	}
	indexer := ingestion.NewIndexer(cfg.Ingestion, ingestion.NewExtractor(ocrFunc), embedder, store, watcher, logger)

	gateway := llm.New(gemini, cfg.LLM, logger)
	retriever := rag.NewRetriever(embedder, store, watcher, cache, logger)
	engineering := graph.NewEngineeringAgent(retriever, gateway, cfg.Retrieval.TopK, logger)
	router := graph.NewRouter(gateway, engineering, graph.SafetyAgent{}, logger)
	workflow := graph.NewWorkflow(router, graph.NewVerifier(gateway, logger), format.New(logger), logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		pool:     pool,
		store:    store,
		cache:    cache,
		indexer:  indexer,
		workflow: workflow,
	}, nil
}

func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close redis client", zap.Error(err))
	}
	a.pool.Close()
	_ = a.logger.Sync()
}
