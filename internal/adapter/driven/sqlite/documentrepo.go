package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
	"github.com/ericfisherdev/careerhub/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.DocumentStore = (*DocumentRepo)(nil)

// DocumentRepo is the SQLite implementation of the DocumentStore port interface.
type DocumentRepo struct {
	db *DB
}

// NewDocumentRepo creates a new DocumentRepo backed by the given DB.
func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Create inserts document metadata. The parent application must exist.
func (r *DocumentRepo) Create(ctx context.Context, doc model.Document) error {
	const query = `INSERT INTO documents (id, application_id, user_id, name, kind, url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	kind := doc.Kind
	if kind == "" {
		kind = model.DocumentKindOther
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		doc.ID, doc.ApplicationID, doc.UserID, doc.Name, string(kind), doc.URL, formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("create document %s: %w", doc.ID, err)
	}

	return nil
}

// ListByApplication returns the documents of an application, oldest first.
func (r *DocumentRepo) ListByApplication(ctx context.Context, applicationID string) ([]model.Document, error) {
	const query = `SELECT id, application_id, user_id, name, kind, url, created_at
		FROM documents WHERE application_id = ? ORDER BY created_at, name`

	rows, err := r.db.Reader.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list documents for %s: %w", applicationID, err)
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		var doc model.Document
		var kind, createdAt string
		if err := rows.Scan(&doc.ID, &doc.ApplicationID, &doc.UserID, &doc.Name, &kind, &doc.URL, &createdAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.Kind = model.DocumentKind(kind)
		if doc.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at for document %s: %w", doc.ID, err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}
