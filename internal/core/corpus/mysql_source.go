package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/lectern-ai/lectern/internal/core"
	"github.com/lectern-ai/lectern/internal/models"
)

var _ core.CorpusSource = (*MySQLSource)(nil)

// MySQLSource reads document metadata from the CMS files table. Only
// non-empty-named PDFs outside housekeeping components are eligible:
// recycle-bin copies, user uploads, and annotated feedback PDFs never
// reach the index.
type MySQLSource struct {
	db *sql.DB
}

func NewMySQLSource(ctx context.Context, dsn string) (*MySQLSource, error) {
	if dsn == "" {
		return nil, fmt.Errorf("CORPUS_DSN is empty")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open corpus db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping corpus db: %w", err)
	}
	return &MySQLSource{db: db}, nil
}

func (s *MySQLSource) ListDocuments(ctx context.Context) ([]models.DocumentRef, error) {
	const q = `
		SELECT DISTINCT contenthash, filename
		FROM mdl_files
		WHERE filename <> ''
		  AND mimetype = 'application/pdf'
		  AND component NOT IN ('tool_recyclebin', 'user', 'assignfeedback_editpdf')
	`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query corpus files: %w", err)
	}
	defer rows.Close()

	var refs []models.DocumentRef
	for rows.Next() {
		var ref models.DocumentRef
		if err := rows.Scan(&ref.ContentHash, &ref.Filename); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (s *MySQLSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
