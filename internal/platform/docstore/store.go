// Package docstore is a collection-oriented document store. Records are JSON
// bodies grouped by collection, addressed by a generated ID and optionally by a
// unique key within their collection.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tripdesk/tripdesk/internal/shared"
)

// ErrDuplicateKey is returned by Insert when the key already exists in the
// collection. It matches shared.ErrConflict.
var ErrDuplicateKey = fmt.Errorf("docstore: duplicate key: %w", shared.ErrConflict)

// Document is a stored record.
type Document struct {
	ID         string
	Collection string
	Key        string
	Body       json.RawMessage
	CreatedAt  time.Time
}

// Decode unmarshals the document body into target.
func (d Document) Decode(target any) error {
	if err := json.Unmarshal(d.Body, target); err != nil {
		return fmt.Errorf("docstore: decode %s/%s: %w", d.Collection, d.ID, err)
	}
	return nil
}

// Store is implemented by every document store backend. Lookups that match
// nothing return shared.ErrNotFound.
type Store interface {
	FindByKey(ctx context.Context, collection, key string) (Document, error)
	FindByID(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	// Insert stores body under a new ID. An empty key disables the uniqueness check.
	Insert(ctx context.Context, collection, key string, body any) (string, error)
	DeleteByID(ctx context.Context, collection, id string) (int64, error)
}

func encodeBody(body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode body: %w", err)
	}
	return raw, nil
}
