package processing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/embeddings"
)

func TestChunker_ChunkText(t *testing.T) {
	t.Run("Should keep every chunk within the configured size", func(t *testing.T) {
		text := strings.Repeat("Thrust vectoring improves control authority. ", 60)
		chunks, err := NewChunker(200, 40).ChunkText(text)
		require.NoError(t, err)
		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(c), 200)
			assert.NotEmpty(t, c)
		}
	})

	t.Run("Should return a single chunk for short text", func(t *testing.T) {
		chunks, err := NewChunker(800, 100).ChunkText("Short note on stall speed.")
		require.NoError(t, err)
		assert.Equal(t, []string{"Short note on stall speed."}, chunks)
	})

	t.Run("Should return nothing for blank text", func(t *testing.T) {
		chunks, err := NewChunker(800, 100).ChunkText("  \n\n ")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}

func fixedClient(dim int, calls *int) embeddings.EmbedderClientFunc {
	return func(_ context.Context, texts []string) ([][]float32, error) {
		*calls++
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = make([]float32, dim)
		}
		return out, nil
	}
}

func TestEmbedder(t *testing.T) {
	t.Run("Should embed every chunk", func(t *testing.T) {
		var calls int
		e, err := NewEmbedder(fixedClient(4, &calls), 4)
		require.NoError(t, err)

		vecs, err := e.EmbedChunks(context.Background(), []string{"a", "b", "c"})
		require.NoError(t, err)
		assert.Len(t, vecs, 3)
		assert.Equal(t, 1, calls)
	})

	t.Run("Should reject vectors of the wrong dimension", func(t *testing.T) {
		var calls int
		e, err := NewEmbedder(fixedClient(3, &calls), 4)
		require.NoError(t, err)

		_, err = e.QueryEmbedding(context.Background(), "thrust")
		assert.ErrorContains(t, err, "expected embedding dim 4, got 3")
	})

	t.Run("Should reject empty input", func(t *testing.T) {
		var calls int
		e, err := NewEmbedder(fixedClient(4, &calls), 4)
		require.NoError(t, err)

		_, err = e.EmbedChunks(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNoChunks)
		_, err = e.QueryEmbedding(context.Background(), "")
		assert.ErrorIs(t, err, ErrEmptyQuery)
		assert.Zero(t, calls)
	})

	t.Run("Should wrap provider errors", func(t *testing.T) {
		client := embeddings.EmbedderClientFunc(func(context.Context, []string) ([][]float32, error) {
			return nil, errors.New("quota")
		})
		e, err := NewEmbedder(client, 4)
		require.NoError(t, err)

		_, err = e.QueryEmbedding(context.Background(), "thrust")
		assert.ErrorContains(t, err, "quota")
	})
}
