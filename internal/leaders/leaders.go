// Package leaders keeps the roster of area and group leaders.
package leaders

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/platform/docstore"
	"github.com/tripdesk/tripdesk/internal/shared"
)

// Collection holds leader records keyed by email.
const Collection = "leaders"

// Leader is one roster entry.
type Leader struct {
	ID          string    `json:"id,omitempty"`
	FullName    string    `json:"full_name" validate:"required,max=200"`
	Email       string    `json:"email" validate:"required,email,max=254"`
	PhoneNumber string    `json:"phone_number" validate:"required,max=32"`
	Area        string    `json:"area" validate:"required,max=200"`
	GroupID     string    `json:"group_id" validate:"required,max=64"`
	Position    string    `json:"position" validate:"required,max=100"`
	CreatedAt   time.Time `json:"created_at"`
}

// Service manages leader records.
type Service struct {
	store docstore.Store
	now   func() time.Time
}

// NewService constructs a leaders service.
func NewService(store docstore.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// RegisterBulk stores every leader or none. Emails must be unique across the
// batch and the existing roster.
func (s *Service) RegisterBulk(ctx context.Context, batch []Leader) ([]string, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: at least one leader required", shared.ErrValidation)
	}
	batch = slices.Clone(batch)
	seen := make(map[string]struct{}, len(batch))
	for i := range batch {
		email := auth.NormalizeIdentityKey(batch[i].Email)
		if _, dup := seen[email]; dup {
			return nil, fmt.Errorf("%w: leader with email %s listed twice", shared.ErrConflict, email)
		}
		seen[email] = struct{}{}
		batch[i].Email = email

		_, err := s.store.FindByKey(ctx, Collection, email)
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: leader with email %s already exists", shared.ErrConflict, email)
		case !errors.Is(err, shared.ErrNotFound):
			return nil, fmt.Errorf("leaders: lookup %s: %w", email, err)
		}
	}

	ids := make([]string, 0, len(batch))
	now := s.now().UTC()
	for _, leader := range batch {
		leader.ID = ""
		leader.CreatedAt = now
		id, err := s.store.Insert(ctx, Collection, leader.Email, leader)
		if err != nil {
			if errors.Is(err, docstore.ErrDuplicateKey) {
				return ids, fmt.Errorf("%w: leader with email %s already exists", shared.ErrConflict, leader.Email)
			}
			return ids, fmt.Errorf("leaders: insert %s: %w", leader.Email, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Delete removes a leader by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteByID(ctx, Collection, id)
	if err != nil {
		return fmt.Errorf("leaders: delete: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("leader %s: %w", id, shared.ErrNotFound)
	}
	return nil
}
