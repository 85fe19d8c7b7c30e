package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id BIGSERIAL PRIMARY KEY,
	source TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	content TEXT NOT NULL,
	embedding vector(%d) NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	filename TEXT PRIMARY KEY,
	chunk_count INTEGER NOT NULL,
	indexed_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS index_meta (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	generation BIGINT NOT NULL DEFAULT 0,
	rebuilt_at TIMESTAMPTZ
);

INSERT INTO index_meta (id, generation) VALUES (1, 0) ON CONFLICT (id) DO NOTHING;
`

// pq error code for insufficient_privilege.
const codeInsufficientPrivilege = "42501"

// Migrate creates the pgvector extension and index tables if missing.
func Migrate(ctx context.Context, databaseURL string, dim int) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == codeInsufficientPrivilege {
			return fmt.Errorf("pgvector extension is not installed and the database role cannot create it: %w", err)
		}
		return fmt.Errorf("create vector extension: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf(schema, dim)); err != nil {
		return fmt.Errorf("create index tables: %w", err)
	}
	return nil
}
