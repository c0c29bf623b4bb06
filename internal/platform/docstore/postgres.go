package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tripdesk/tripdesk/internal/shared"
)

// Querier is the subset of pgxpool.Pool used by PostgresStore.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps documents in the documents table as JSONB.
type PostgresStore struct {
	db Querier
}

// NewPostgresStore constructs a PostgresStore on top of a pool.
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectColumns = `SELECT id::text, collection, doc_key, body, created_at FROM documents`

// FindByKey fetches the document holding key in collection.
func (s *PostgresStore) FindByKey(ctx context.Context, collection, key string) (Document, error) {
	row := s.db.QueryRow(ctx, selectColumns+` WHERE collection = $1 AND doc_key = $2`, collection, key)
	return scanDocument(row)
}

// FindByID fetches a document by its generated ID.
func (s *PostgresStore) FindByID(ctx context.Context, collection, id string) (Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Document{}, shared.ErrNotFound
	}
	row := s.db.QueryRow(ctx, selectColumns+` WHERE collection = $1 AND id = $2`, collection, id)
	return scanDocument(row)
}

// List returns every document of a collection in insertion order.
func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.Query(ctx, selectColumns+` WHERE collection = $1 ORDER BY created_at, id`, collection)
	if err != nil {
		return nil, fmt.Errorf("docstore: list %s: %w", collection, err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("docstore: list %s: %w", collection, err)
	}
	return docs, nil
}

// Insert stores body and returns the generated ID.
func (s *PostgresStore) Insert(ctx context.Context, collection, key string, body any) (string, error) {
	raw, err := encodeBody(body)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = s.db.Exec(ctx,
		`INSERT INTO documents (id, collection, doc_key, body) VALUES ($1, $2, $3, $4)`,
		id, collection, pgtype.Text{String: key, Valid: key != ""}, raw)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", ErrDuplicateKey
		}
		return "", fmt.Errorf("docstore: insert %s: %w", collection, err)
	}
	return id, nil
}

// DeleteByID removes a document and reports how many rows were deleted.
func (s *PostgresStore) DeleteByID(ctx context.Context, collection, id string) (int64, error) {
	if _, err := uuid.Parse(id); err != nil {
		return 0, nil
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return 0, fmt.Errorf("docstore: delete %s/%s: %w", collection, id, err)
	}
	return tag.RowsAffected(), nil
}

func scanDocument(row pgx.Row) (Document, error) {
	var (
		doc  Document
		key  pgtype.Text
		body []byte
	)
	if err := row.Scan(&doc.ID, &doc.Collection, &key, &body, &doc.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, shared.ErrNotFound
		}
		return Document{}, fmt.Errorf("docstore: scan: %w", err)
	}
	doc.Key = key.String
	doc.Body = body
	return doc, nil
}

var _ Store = (*PostgresStore)(nil)
