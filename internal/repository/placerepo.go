package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/placeshare/placeshare/internal/model"
)

// PlaceRepository provides access to places and maintains the owner
// back-reference: every committed Attach/Detach leaves each user's place_ids
// equal to exactly the set of places whose owner_id is that user.
type PlaceRepository interface {
	// Attach inserts the place and appends its ID to the owner's place_ids in
	// one transaction. Returns errs.ErrNotFound if the owner no longer exists.
	Attach(ctx context.Context, p *model.Place) error

	// Detach deletes the place and removes its ID from the owner's place_ids
	// in one transaction. Returns errs.ErrNotFound if the place is gone.
	Detach(ctx context.Context, placeID, ownerID uuid.UUID) error

	// Get loads a place by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Place, error)

	// ListByOwner returns all places owned by the given user.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Place, error)

	// UpdateFields changes title and description of a single place. It never
	// touches the owner back-reference.
	UpdateFields(ctx context.Context, id uuid.UUID, title, description string) error
}
