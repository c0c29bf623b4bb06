package trips

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tripdesk/tripdesk/internal/platform/cache"
	"github.com/tripdesk/tripdesk/internal/platform/docstore"
	"github.com/tripdesk/tripdesk/internal/shared"
	"github.com/tripdesk/tripdesk/jobs"
)

// Notifier queues user-facing notifications.
type Notifier interface {
	Notify(ctx context.Context, n jobs.Notification) error
}

// Service wraps trip business rules. Reads go through the cache; writes
// invalidate it.
type Service struct {
	repo     Repository
	cache    *cache.Cache
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a trips service. cache and notifier may be nil.
func NewService(repo Repository, c *cache.Cache, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: c, notifier: notifier, logger: logger, now: time.Now}
}

// Create stores a new trip.
func (s *Service) Create(ctx context.Context, input CreateTripInput) (string, error) {
	if input.Schedule.EndDate < input.Schedule.StartDate {
		return "", fmt.Errorf("%w: end_date before start_date", shared.ErrValidation)
	}
	id, err := s.repo.Create(ctx, Trip{
		Name:           input.Name,
		Description:    input.Description,
		Location:       input.Location,
		Itinerary:      normalizeItinerary(input.Itinerary),
		Schedule:       input.Schedule,
		Transportation: input.Transportation,
		CreatedAt:      s.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	s.invalidate(ctx)
	return id, nil
}

// List returns every trip.
func (s *Service) List(ctx context.Context) ([]Trip, error) {
	var out []Trip
	err := s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		return s.repo.List(ctx)
	}, "list")
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Trip{}
	}
	return out, nil
}

// Get returns a trip or shared.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Trip, error) {
	var out Trip
	err := s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		return s.repo.Get(ctx, id)
	}, "trip", id)
	return out, err
}

// Delete removes a trip.
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("trip %s: %w", id, shared.ErrNotFound)
	}
	s.invalidate(ctx)
	return nil
}

// Apply records an individual application by applicant for a trip.
func (s *Service) Apply(ctx context.Context, tripID, applicant string) (Application, error) {
	trip, err := s.repo.Get(ctx, tripID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Application{}, fmt.Errorf("trip %s: %w", tripID, shared.ErrNotFound)
		}
		return Application{}, err
	}

	app := Application{
		TripID:    trip.ID,
		Applicant: applicant,
		Status:    StatusPending,
		CreatedAt: s.now().UTC(),
	}
	id, err := s.repo.CreateApplication(ctx, app)
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return Application{}, fmt.Errorf("%w: already applied to this trip", shared.ErrConflict)
		}
		return Application{}, fmt.Errorf("trips: create application: %w", err)
	}
	app.ID = id

	s.notify(ctx, jobs.Notification{
		Kind:      jobs.KindTripApplication,
		Recipient: applicant,
		Subject:   "Application received for " + trip.Name,
		Body:      "Your application is " + StatusPending + ".",
		Reference: id,
	})
	return app, nil
}

// loaderError marks an error produced by the store loader, as opposed to the
// cache. singleflight hands the same value to every waiter.
type loaderError struct{ err error }

func (e loaderError) Error() string { return e.err.Error() }
func (e loaderError) Unwrap() error { return e.err }

// cached runs loader through the cache, falling back to loader alone when the
// cache itself fails. Loader errors are returned without a second load.
func (s *Service) cached(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	marked := func(ctx context.Context) (any, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, loaderError{err: err}
		}
		return value, nil
	}
	key, err := s.cache.BuildKey(ctx, parts...)
	if err == nil {
		err = s.cache.FetchJSON(ctx, key, dest, marked)
		var le loaderError
		switch {
		case err == nil:
			return nil
		case errors.As(err, &le):
			return le.err
		case ctx.Err() != nil:
			return ctx.Err()
		}
	}
	s.logger.Warn("trips cache unavailable", slog.Any("error", err))
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	return assign(dest, value)
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("trips cache bump", slog.Any("error", err))
	}
}

func (s *Service) notify(ctx context.Context, n jobs.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("enqueue notification", slog.String("kind", n.Kind), slog.Any("error", err))
	}
}

func assign(dest, value any) error {
	switch d := dest.(type) {
	case *[]Trip:
		v, ok := value.([]Trip)
		if !ok {
			return fmt.Errorf("trips: unexpected %T", value)
		}
		*d = v
	case *Trip:
		v, ok := value.(Trip)
		if !ok {
			return fmt.Errorf("trips: unexpected %T", value)
		}
		*d = v
	default:
		return fmt.Errorf("trips: unsupported destination %T", dest)
	}
	return nil
}

func normalizeItinerary(items []ItineraryItem) []ItineraryItem {
	out := make([]ItineraryItem, len(items))
	for i, item := range items {
		if item.Stops == nil {
			item.Stops = []string{}
		}
		out[i] = item
	}
	return out
}
