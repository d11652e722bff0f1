package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lectern-ai/lectern/internal/core"
	"github.com/lectern-ai/lectern/internal/models"
)

//go:embed scripts/initdb.sql
var schemaFS embed.FS

// runLockKey identifies the sync run advisory lock. One key, one writer.
const runLockKey int64 = 0x6c656374_65726e01

var _ core.VectorStore = (*Store)(nil)

// Store implements core.VectorStore on Postgres with the pgvector
// extension, via the pgx stdlib driver.
type Store struct {
	db  *sql.DB
	dim int
}

// NewStore opens and pings the database. dim is the embedding column
// width; it must match the embedding model's output dimension exactly.
func NewStore(ctx context.Context, databaseURL string, dim int) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dim)
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Store{db: db, dim: dim}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// EnsureSchema creates the chunk table and vector extension if absent.
// Safe to call on every run.
func (s *Store) EnsureSchema(ctx context.Context) error {
	sqlBytes, err := schemaFS.ReadFile("scripts/initdb.sql")
	if err != nil {
		return fmt.Errorf("read initdb.sql: %w", err)
	}
	schema := fmt.Sprintf(string(sqlBytes), s.dim)

	schemaCtx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()
	if _, err := s.db.ExecContext(schemaCtx, schema); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}
	return nil
}

// UpsertChunks writes one document's chunks in a single transaction. On a
// (content_hash, text) conflict the row keeps its identity and only
// document_name and embedding are replaced, so re-ingesting identical
// content is a no-op apart from the refreshed embedding.
func (s *Store) UpsertChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO document_chunks (content_hash, document_name, text, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (content_hash, text) DO UPDATE
		SET document_name = EXCLUDED.document_name,
		    embedding = EXCLUDED.embedding
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		if len(ch.Embedding) != s.dim {
			_ = tx.Rollback()
			return fmt.Errorf("embedding dimension mismatch: got %d want %d", len(ch.Embedding), s.dim)
		}
		vec := pgvector.NewVector(ch.Embedding)
		if _, err := stmt.ExecContext(ctx, ch.ContentHash, ch.DocumentName, ch.Text, vec); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ListDocumentHashes(ctx context.Context) (map[string]struct{}, error) {
	const q = `SELECT DISTINCT content_hash FROM document_chunks`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hashes := make(map[string]struct{})
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes[h] = struct{}{}
	}
	return hashes, rows.Err()
}

func (s *Store) DeleteByDocumentHashes(ctx context.Context, hashes []string) error {
	if len(hashes) == 0 {
		return nil
	}
	const q = `DELETE FROM document_chunks WHERE content_hash = ANY($1)`
	_, err := s.db.ExecContext(ctx, q, hashes)
	return err
}

// SimilaritySearch returns the topK most similar chunks among the allowed
// document hashes, best first. Order among exactly-tied scores is up to
// the database.
func (s *Store) SimilaritySearch(ctx context.Context, queryVec []float32, allowedHashes []string, topK int) ([]models.SearchHit, error) {
	if len(allowedHashes) == 0 {
		return nil, nil
	}
	if len(queryVec) != s.dim {
		return nil, fmt.Errorf("query dimension mismatch: got %d want %d", len(queryVec), s.dim)
	}

	const q = `
		SELECT content_hash, text, 1 - (embedding <=> $1) AS similarity
		FROM document_chunks
		WHERE content_hash = ANY($2)
		ORDER BY similarity DESC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, q, pgvector.NewVector(queryVec), allowedHashes, topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []models.SearchHit
	for rows.Next() {
		var h models.SearchHit
		if err := rows.Scan(&h.ContentHash, &h.Text, &h.Similarity); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// AcquireRunLock takes the session advisory lock serializing sync runs.
// It returns false when another run holds the lock. The release func
// unlocks and returns the session to the pool.
func (s *Store) AcquireRunLock(ctx context.Context) (release func(), acquired bool, err error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock conn: %w", err)
	}

	var got bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, runLockKey).Scan(&got); err != nil {
		_ = conn.Close()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !got {
		_ = conn.Close()
		return nil, false, nil
	}

	release = func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, runLockKey)
		_ = conn.Close()
	}
	return release, true, nil
}
