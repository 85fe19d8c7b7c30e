// Package rag retrieves document context for a question from the vector index.
package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Rohit-Gupta-126/aeromind/internal/logging"
	"github.com/Rohit-Gupta-126/aeromind/internal/metrics"
	"github.com/Rohit-Gupta-126/aeromind/internal/storage"
)

// DefaultTopK is the number of chunks retrieved when the caller passes k < 1.
const DefaultTopK = 3

// UnknownSource stands in for chunks stored without a source name.
const UnknownSource = "unknown"

type QueryEmbedder interface {
	QueryEmbedding(ctx context.Context, query string) ([]float32, error)
}

type Searcher interface {
	SimilaritySearch(ctx context.Context, queryEmb []float32, topK int) ([]storage.SearchResult, error)
}

// Cache is satisfied by *storage.RedisCache.
type Cache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, v any) error
}

type cachedRetrieval struct {
	Context string   `json:"context"`
	Sources []string `json:"sources"`
}

// Retriever turns a query into joined chunk context and source names.
type Retriever struct {
	embedder QueryEmbedder
	searcher Searcher
	watcher  *IndexWatcher
	cache    Cache
	logger   *zap.Logger
}

// NewRetriever builds a Retriever. cache may be nil.
func NewRetriever(embedder QueryEmbedder, searcher Searcher, watcher *IndexWatcher, cache Cache, logger *zap.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		watcher:  watcher,
		cache:    cache,
		logger:   logging.OrNop(logger).Named("retriever"),
	}
}

// Retrieve returns the top-k chunk texts joined by a blank line and the
// distinct non-empty sources they came from. Any failure, including an
// empty index, yields "" and no sources.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (string, []string) {
	if k < 1 {
		k = DefaultTopK
	}

	gen, err := r.watcher.Current(ctx)
	if err != nil {
		r.logger.Error("vector index not loaded", zap.Error(err))
		return "", []string{}
	}

	key := cacheKey(gen, k, query)
	if r.cache != nil {
		var hit cachedRetrieval
		err := r.cache.Get(ctx, key, &hit)
		switch {
		case err == nil:
			metrics.RetrievalCacheHits.Inc()
			r.logger.Debug("retrieval cache hit", zap.String("question", query))
			if hit.Sources == nil {
				hit.Sources = []string{}
			}
			return hit.Context, hit.Sources
		case errors.Is(err, storage.ErrCacheMiss):
			metrics.RetrievalCacheMisses.Inc()
		default:
			metrics.RetrievalCacheMisses.Inc()
			r.logger.Warn("retrieval cache read failed", zap.Error(err))
		}
	}

	vec, err := r.embedder.QueryEmbedding(ctx, query)
	if err != nil {
		r.logger.Error("error retrieving context", zap.String("question", query), zap.Error(err))
		return "", []string{}
	}
	results, err := r.searcher.SimilaritySearch(ctx, vec, k)
	if err != nil {
		r.logger.Error("error retrieving context", zap.String("question", query), zap.Error(err))
		return "", []string{}
	}
	if len(results) == 0 {
		r.logger.Info("no documents found", zap.String("question", query))
		return "", []string{}
	}

	text, sources := assemble(results)
	r.logger.Info("retrieved documents",
		zap.String("question", query),
		zap.Int("count", len(results)),
		zap.Strings("sources", sources))

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, cachedRetrieval{Context: text, Sources: sources}); err != nil {
			r.logger.Warn("retrieval cache write failed", zap.Error(err))
		}
	}
	return text, sources
}

func assemble(results []storage.SearchResult) (string, []string) {
	texts := make([]string, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	sources := []string{}
	for _, res := range results {
		texts = append(texts, res.Content)
		src := res.Source
		if src == "" {
			src = UnknownSource
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		sources = append(sources, src)
	}
	return strings.Join(texts, "\n\n"), sources
}

func cacheKey(gen int64, k int, query string) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("aeromind:retrieval:%d:%d:%s", gen, k, hex.EncodeToString(sum[:]))
}
