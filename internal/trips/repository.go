package trips

import (
	"context"
	"fmt"

	"github.com/tripdesk/tripdesk/internal/platform/docstore"
)

// Repository defines persistence operations for trips and applications.
type Repository interface {
	Create(ctx context.Context, trip Trip) (string, error)
	List(ctx context.Context) ([]Trip, error)
	Get(ctx context.Context, id string) (Trip, error)
	Delete(ctx context.Context, id string) (int64, error)
	CreateApplication(ctx context.Context, app Application) (string, error)
}

// DocRepository implements Repository on a document store.
type DocRepository struct {
	store docstore.Store
}

// NewRepository constructs a document-store backed repository.
func NewRepository(store docstore.Store) *DocRepository {
	return &DocRepository{store: store}
}

// Create stores a trip and returns its ID.
func (r *DocRepository) Create(ctx context.Context, trip Trip) (string, error) {
	trip.ID = ""
	id, err := r.store.Insert(ctx, TripsCollection, "", trip)
	if err != nil {
		return "", fmt.Errorf("trips: create: %w", err)
	}
	return id, nil
}

// List returns all trips in creation order.
func (r *DocRepository) List(ctx context.Context) ([]Trip, error) {
	docs, err := r.store.List(ctx, TripsCollection)
	if err != nil {
		return nil, fmt.Errorf("trips: list: %w", err)
	}
	out := make([]Trip, 0, len(docs))
	for _, doc := range docs {
		trip, err := decodeTrip(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, trip)
	}
	return out, nil
}

// Get returns one trip or shared.ErrNotFound.
func (r *DocRepository) Get(ctx context.Context, id string) (Trip, error) {
	doc, err := r.store.FindByID(ctx, TripsCollection, id)
	if err != nil {
		return Trip{}, err
	}
	return decodeTrip(doc)
}

// Delete removes a trip and reports how many records were deleted.
func (r *DocRepository) Delete(ctx context.Context, id string) (int64, error) {
	return r.store.DeleteByID(ctx, TripsCollection, id)
}

// CreateApplication stores an application. A second application by the same
// applicant for the same trip fails with docstore.ErrDuplicateKey.
func (r *DocRepository) CreateApplication(ctx context.Context, app Application) (string, error) {
	app.ID = ""
	return r.store.Insert(ctx, ApplicationsCollection, applicationKey(app.TripID, app.Applicant), app)
}

func decodeTrip(doc docstore.Document) (Trip, error) {
	var trip Trip
	if err := doc.Decode(&trip); err != nil {
		return Trip{}, err
	}
	trip.ID = doc.ID
	return trip, nil
}
