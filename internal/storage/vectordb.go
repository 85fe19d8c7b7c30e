package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// ErrNoIndex is returned when the index tables have not been created.
var ErrNoIndex = errors.New("vector index has not been initialized")

// DB is the subset of *pgxpool.Pool used by VectorStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// ChunkRecord is one chunk row to be written into the index.
type ChunkRecord struct {
	Source    string
	Index     int
	Content   string
	Embedding []float32
}

// DocumentRecord describes one indexed source document.
type DocumentRecord struct {
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
	IndexedAt  time.Time `json:"indexed_at"`
}

// SearchResult is a chunk returned by a similarity search.
type SearchResult struct {
	Source  string
	Content string
}

type VectorStore struct {
	db DB
}

func NewVectorStore(db DB) *VectorStore {
	return &VectorStore{db: db}
}

// ReplaceIndex atomically swaps the whole index for the given documents and
// chunks and returns the new index generation.
func (s *VectorStore) ReplaceIndex(ctx context.Context, docs []DocumentRecord, chunks []ChunkRecord) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin index rebuild: %w", err)
	}

	generation, err := replaceIndex(ctx, tx, docs, chunks)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit index rebuild: %w", err)
	}
	return generation, nil
}

func replaceIndex(ctx context.Context, tx pgx.Tx, docs []DocumentRecord, chunks []ChunkRecord) (int64, error) {
	if _, err := tx.Exec(ctx, "DELETE FROM chunks"); err != nil {
		return 0, fmt.Errorf("clear chunks: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM documents"); err != nil {
		return 0, fmt.Errorf("clear documents: %w", err)
	}
	for _, c := range chunks {
		_, err := tx.Exec(ctx,
			"INSERT INTO chunks (source, chunk_index, content, embedding) VALUES ($1, $2, $3, $4)",
			c.Source, c.Index, c.Content, pgvector.NewVector(c.Embedding))
		if err != nil {
			return 0, fmt.Errorf("insert chunk %s#%d: %w", c.Source, c.Index, err)
		}
	}
	for _, d := range docs {
		_, err := tx.Exec(ctx,
			"INSERT INTO documents (filename, chunk_count) VALUES ($1, $2)",
			d.Filename, d.ChunkCount)
		if err != nil {
			return 0, fmt.Errorf("insert document %s: %w", d.Filename, err)
		}
	}

	var generation int64
	err := tx.QueryRow(ctx,
		"UPDATE index_meta SET generation = generation + 1, rebuilt_at = CURRENT_TIMESTAMP WHERE id = 1 RETURNING generation",
	).Scan(&generation)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNoIndex
	}
	if err != nil {
		return 0, fmt.Errorf("bump index generation: %w", err)
	}
	return generation, nil
}

// SimilaritySearch returns the topK chunks nearest to queryEmb, nearest first.
func (s *VectorStore) SimilaritySearch(ctx context.Context, queryEmb []float32, topK int) ([]SearchResult, error) {
	rows, err := s.db.Query(ctx,
		"SELECT source, content FROM chunks ORDER BY embedding <-> $1 LIMIT $2",
		pgvector.NewVector(queryEmb), topK)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Source, &r.Content); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return results, nil
}

// Generation returns the current index generation.
func (s *VectorStore) Generation(ctx context.Context) (int64, error) {
	var generation int64
	err := s.db.QueryRow(ctx, "SELECT generation FROM index_meta WHERE id = 1").Scan(&generation)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNoIndex
	}
	if err != nil {
		return 0, fmt.Errorf("read index generation: %w", err)
	}
	return generation, nil
}

// Documents lists the documents in the current index.
func (s *VectorStore) Documents(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := s.db.Query(ctx,
		"SELECT filename, chunk_count, indexed_at FROM documents ORDER BY filename")
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []DocumentRecord{}
	for rows.Next() {
		var d DocumentRecord
		if err := rows.Scan(&d.Filename, &d.ChunkCount, &d.IndexedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// ChunkCount returns the number of chunks in the index.
func (s *VectorStore) ChunkCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

func (s *VectorStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
