package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/tripdesk/tripdesk/internal/platform/docstore"
	"github.com/tripdesk/tripdesk/internal/shared"
)

// CredentialsCollection is the document collection holding credential records.
const CredentialsCollection = "credentials"

// Repository defines persistence operations for the auth module.
type Repository interface {
	// FindByEmail returns shared.ErrNotFound when no credential exists.
	FindByEmail(ctx context.Context, email string) (Credential, error)
	// Create returns shared.ErrAlreadyRegistered when the email is taken.
	Create(ctx context.Context, cred Credential) (string, error)
}

// DocRepository implements Repository on a document store.
type DocRepository struct {
	store docstore.Store
}

// NewRepository constructs a document-store backed repository.
func NewRepository(store docstore.Store) *DocRepository {
	return &DocRepository{store: store}
}

// FindByEmail fetches a credential by its normalised email.
func (r *DocRepository) FindByEmail(ctx context.Context, email string) (Credential, error) {
	doc, err := r.store.FindByKey(ctx, CredentialsCollection, email)
	if err != nil {
		return Credential{}, err
	}
	var cred Credential
	if err := doc.Decode(&cred); err != nil {
		return Credential{}, err
	}
	cred.ID = doc.ID
	return cred, nil
}

// Create inserts a credential keyed by its email.
func (r *DocRepository) Create(ctx context.Context, cred Credential) (string, error) {
	id, err := r.store.Insert(ctx, CredentialsCollection, cred.Email, cred)
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return "", shared.ErrAlreadyRegistered
		}
		return "", fmt.Errorf("auth: create credential: %w", err)
	}
	return id, nil
}
