package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tripdesk/tripdesk/internal/platform/docstore"
	"github.com/tripdesk/tripdesk/internal/shared"
)

// Service stores transport selections.
type Service struct {
	store docstore.Store
	now   func() time.Time
}

// NewService constructs a transport service.
func NewService(store docstore.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Select records mode for email on tripID. Repeating an identical choice is a
// conflict.
func (s *Service) Select(ctx context.Context, email, tripID string, mode Mode) (Selection, error) {
	details, ok := DetailsFor(mode)
	if !ok {
		return Selection{}, fmt.Errorf("%w: invalid transport mode %q", shared.ErrValidation, mode)
	}
	sel := Selection{
		Email:     email,
		TripID:    tripID,
		Mode:      mode,
		Details:   details,
		CreatedAt: s.now().UTC(),
	}
	key := tripID + ":" + email + ":" + string(mode)
	id, err := s.store.Insert(ctx, Collection, key, sel)
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return Selection{}, fmt.Errorf("%w: %s already selected for this trip", shared.ErrConflict, mode)
		}
		return Selection{}, fmt.Errorf("transport: select: %w", err)
	}
	sel.ID = id
	return sel, nil
}
