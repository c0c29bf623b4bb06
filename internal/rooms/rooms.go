// Package rooms allots rooms to travellers on a trip.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tripdesk/tripdesk/internal/platform/docstore"
	"github.com/tripdesk/tripdesk/internal/shared"
	"github.com/tripdesk/tripdesk/jobs"
)

// Collection holds room allotments.
const Collection = "room_allotments"

// Allotment assigns a room to an email on a trip.
type Allotment struct {
	ID              string    `json:"id,omitempty"`
	Email           string    `json:"email" validate:"required,email,max=254"`
	TripID          string    `json:"trip_id" validate:"required,max=64"`
	Destination     string    `json:"destination" validate:"required,max=200"`
	Building        string    `json:"building" validate:"required,max=200"`
	RoomNumber      string    `json:"room_number" validate:"required,max=32"`
	AllottedMembers []string  `json:"allotted_members" validate:"omitempty,dive,required,max=200"`
	AllottedBy      string    `json:"allotted_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Notifier queues user-facing notifications.
type Notifier interface {
	Notify(ctx context.Context, n jobs.Notification) error
}

// Service records room allotments.
type Service struct {
	store    docstore.Store
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a rooms service. notifier may be nil.
func NewService(store docstore.Store, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, notifier: notifier, logger: logger, now: time.Now}
}

// Allot stores an allotment. The same (email, trip, room) can be allotted once.
func (s *Service) Allot(ctx context.Context, a Allotment, allottedBy string) (Allotment, error) {
	a.ID = ""
	a.AllottedBy = allottedBy
	a.CreatedAt = s.now().UTC()
	if a.AllottedMembers == nil {
		a.AllottedMembers = []string{}
	}
	key := a.TripID + ":" + a.Email + ":" + a.RoomNumber
	id, err := s.store.Insert(ctx, Collection, key, a)
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return Allotment{}, fmt.Errorf("%w: room already allotted to this user for this trip", shared.ErrConflict)
		}
		return Allotment{}, fmt.Errorf("rooms: allot: %w", err)
	}
	a.ID = id

	if s.notifier != nil {
		err := s.notifier.Notify(ctx, jobs.Notification{
			Kind:      jobs.KindRoomAllotted,
			Recipient: a.Email,
			Subject:   fmt.Sprintf("Room %s allotted", a.RoomNumber),
			Body:      fmt.Sprintf("%s, %s (%s)", a.Building, a.Destination, a.TripID),
			Reference: id,
		})
		if err != nil {
			s.logger.Warn("enqueue notification", slog.String("kind", jobs.KindRoomAllotted), slog.Any("error", err))
		}
	}
	return a, nil
}
