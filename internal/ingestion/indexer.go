// Package ingestion discovers documents, extracts their text and rebuilds
// the vector index from them.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Rohit-Gupta-126/aeromind/internal/config"
	"github.com/Rohit-Gupta-126/aeromind/internal/logging"
	"github.com/Rohit-Gupta-126/aeromind/internal/metrics"
	"github.com/Rohit-Gupta-126/aeromind/internal/processing"
	"github.com/Rohit-Gupta-126/aeromind/internal/storage"
)

// ErrNoDocuments is returned when the documents directory holds no
// extractable text, in which case the existing index is left alone.
var ErrNoDocuments = errors.New("no indexable documents found")

type IndexStore interface {
	ReplaceIndex(ctx context.Context, docs []storage.DocumentRecord, chunks []storage.ChunkRecord) (int64, error)
}

type ChunkEmbedder interface {
	EmbedChunks(ctx context.Context, chunks []string) ([][]float32, error)
}

// GenerationPublisher is notified after every successful rebuild.
type GenerationPublisher interface {
	Publish(gen int64)
}

// SkippedFile is a document left out of the index.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Stats summarizes one index build.
type Stats struct {
	Documents  int           `json:"documents"`
	Chunks     int           `json:"chunks"`
	Skipped    []SkippedFile `json:"skipped"`
	Generation int64         `json:"generation"`
	Duration   time.Duration `json:"duration"`
}

// WasSkipped reports whether path was left out of the build.
func (s Stats) WasSkipped(path string) bool {
	for _, f := range s.Skipped {
		if f.Path == path {
			return true
		}
	}
	return false
}

// Indexer rebuilds the whole index from the documents directory. Builds
// are serialized.
type Indexer struct {
	dir       string
	chunker   *processing.Chunker
	extractor *Extractor
	embedder  ChunkEmbedder
	store     IndexStore
	publisher GenerationPublisher
	logger    *zap.Logger

	mu sync.Mutex
}

func NewIndexer(cfg config.IngestionConfig, extractor *Extractor, embedder ChunkEmbedder, store IndexStore, publisher GenerationPublisher, logger *zap.Logger) *Indexer {
	return &Indexer{
		dir:       cfg.DocumentsDir,
		chunker:   processing.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		extractor: extractor,
		embedder:  embedder,
		store:     store,
		publisher: publisher,
		logger:    logging.OrNop(logger).Named("ingestion"),
	}
}

// Dir returns the documents directory.
func (ix *Indexer) Dir() string { return ix.dir }

// OCREnabled reports whether image files are accepted.
func (ix *Indexer) OCREnabled() bool { return ix.extractor.OCREnabled() }

// BuildIndex reads every document, splits and embeds it, and replaces the
// persisted index. Files that cannot be read are skipped; embedding and
// store failures abort the build and keep the previous index.
func (ix *Indexer) BuildIndex(ctx context.Context) (Stats, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	start := time.Now()
	stats, err := ix.build(ctx)
	stats.Duration = time.Since(start)
	if err != nil {
		metrics.IndexRebuildsTotal.WithLabelValues("failure").Inc()
		ix.logger.Error("index build failed", zap.Error(err))
		return stats, err
	}

	metrics.IndexRebuildsTotal.WithLabelValues("success").Inc()
	metrics.IndexChunks.Set(float64(stats.Chunks))
	ix.logger.Info("index build complete",
		zap.Int("documents", stats.Documents),
		zap.Int("chunks", stats.Chunks),
		zap.Int("skipped", len(stats.Skipped)),
		zap.Int64("generation", stats.Generation),
		zap.Duration("duration", stats.Duration))
	return stats, nil
}

func (ix *Indexer) build(ctx context.Context) (Stats, error) {
	stats := Stats{Skipped: []SkippedFile{}}

	files, err := LoadLocalFiles(ix.dir, ix.extractor.OCREnabled())
	if err != nil {
		return stats, err
	}

	var (
		docs   []storage.DocumentRecord
		chunks []processing.Chunk
		texts  []string
	)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		ix.logger.Info("indexing", zap.String("source", f))

		text, err := ix.extractor.ExtractText(ctx, f)
		if err != nil {
			ix.logger.Warn("skip file", zap.String("source", f), zap.Error(err))
			stats.Skipped = append(stats.Skipped, SkippedFile{Path: f, Reason: err.Error()})
			continue
		}
		parts, err := ix.chunker.ChunkText(text)
		if err != nil {
			return stats, fmt.Errorf("chunk %s: %w", f, err)
		}
		if len(parts) == 0 {
			stats.Skipped = append(stats.Skipped, SkippedFile{Path: f, Reason: ErrNoText.Error()})
			continue
		}

		source := ix.sourceName(f)
		meta := processing.Metadata{Path: f, Source: source, ImportedAt: time.Now(), Chunks: len(parts)}
		docs = append(docs, storage.DocumentRecord{Filename: meta.Source, ChunkCount: meta.Chunks, IndexedAt: meta.ImportedAt})
		for i, p := range parts {
			chunks = append(chunks, processing.Chunk{Source: source, Index: i, Content: p})
			texts = append(texts, p)
		}
	}
	if len(chunks) == 0 {
		return stats, fmt.Errorf("%w in %s", ErrNoDocuments, ix.dir)
	}

	embs, err := ix.embedder.EmbedChunks(ctx, texts)
	if err != nil {
		return stats, err
	}

	records := make([]storage.ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = storage.ChunkRecord{Source: c.Source, Index: c.Index, Content: c.Content, Embedding: embs[i]}
	}
	gen, err := ix.store.ReplaceIndex(ctx, docs, records)
	if err != nil {
		return stats, fmt.Errorf("replace index: %w", err)
	}
	if ix.publisher != nil {
		ix.publisher.Publish(gen)
	}

	stats.Documents = len(docs)
	stats.Chunks = len(records)
	stats.Generation = gen
	return stats, nil
}

// sourceName is the path relative to the documents directory, which is the
// bare file name for top-level documents.
func (ix *Indexer) sourceName(path string) string {
	rel, err := filepath.Rel(ix.dir, path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}
