package processing

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
)

const embedBatchSize = 100

var (
	ErrNoChunks   = errors.New("no chunks")
	ErrEmptyQuery = errors.New("empty query")
)

// Embedder produces fixed-dimension vectors for chunks and queries.
type Embedder struct {
	impl embeddings.Embedder
	dim  int
}

// NewEmbedder wraps an embedding client (the Gemini client in production).
func NewEmbedder(client embeddings.EmbedderClient, dim int) (*Embedder, error) {
	impl, err := embeddings.NewEmbedder(client,
		embeddings.WithBatchSize(embedBatchSize),
		embeddings.WithStripNewLines(true),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &Embedder{impl: impl, dim: dim}, nil
}

// Dimension returns the vector length every embedding must have.
func (e *Embedder) Dimension() int { return e.dim }

// EmbedChunks produces one embedding per chunk, in order.
func (e *Embedder) EmbedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}
	out, err := e.impl.EmbedDocuments(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(out) != len(chunks) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(out))
	}
	for i, v := range out {
		if len(v) != e.dim {
			return nil, fmt.Errorf("chunk %d: expected embedding dim %d, got %d", i, e.dim, len(v))
		}
	}
	return out, nil
}

// QueryEmbedding produces an embedding for a query string.
func (e *Embedder) QueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	v, err := e.impl.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(v) != e.dim {
		return nil, fmt.Errorf("expected embedding dim %d, got %d", e.dim, len(v))
	}
	return v, nil
}
