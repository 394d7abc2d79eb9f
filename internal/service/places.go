package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/placeshare/placeshare/internal/errs"
	"github.com/placeshare/placeshare/internal/model"
	"github.com/placeshare/placeshare/internal/repository"
)

// minDescriptionLen is the minimum accepted place description length.
const minDescriptionLen = 5

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (model.Coordinates, error)
}

// BlobStore persists uploaded images outside the record store.
type BlobStore interface {
	Store(ctx context.Context, data []byte, contentType string) (key string, err error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// CreatePlaceInput is the payload for place creation.
type CreatePlaceInput struct {
	Title       string
	Description string
	Address     string
	Image       []byte
	ImageCT     string
}

// UpdatePlaceInput is the payload for a place field update.
type UpdatePlaceInput struct {
	Title       string
	Description string
}

// PlaceService coordinates place mutations. Creation and deletion are paired
// writes across the place row and the owner's reference list; both land in
// one store transaction.
type PlaceService interface {
	// Create geocodes the address, stores the image and attaches the place to
	// its owner atomically.
	Create(ctx context.Context, ownerID uuid.UUID, in CreatePlaceInput) (*model.Place, error)
	// Update changes title/description of a caller-owned place.
	Update(ctx context.Context, callerID, placeID uuid.UUID, in UpdatePlaceInput) (*model.Place, error)
	// Delete removes a caller-owned place and detaches it from the owner,
	// then releases the image.
	Delete(ctx context.Context, callerID, placeID uuid.UUID) error
	// Get loads a place by ID.
	Get(ctx context.Context, placeID uuid.UUID) (*model.Place, error)
	// ListByOwner returns the places owned by a user.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Place, error)
}

type PlaceServiceImpl struct {
	places repository.PlaceRepository
	users  repository.UserRepository
	geo    Geocoder
	blobs  BlobStore
	log    *zap.Logger
}

// NewPlaceService constructs PlaceService with required dependencies.
func NewPlaceService(
	places repository.PlaceRepository,
	users repository.UserRepository,
	geo Geocoder,
	blobs BlobStore,
	log *zap.Logger,
) *PlaceServiceImpl {
	return &PlaceServiceImpl{places: places, users: users, geo: geo, blobs: blobs, log: log}
}

func validatePlaceFields(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: empty title", errs.ErrValidation)
	}
	if len(description) < minDescriptionLen {
		return fmt.Errorf("%w: description shorter than %d", errs.ErrValidation, minDescriptionLen)
	}
	return nil
}

// Create runs the creation pipeline: validate, resolve the address, store
// the image, then attach place and owner reference in one transaction.
// Geocoding and image storage happen before the transaction; they are not
// transactional resources. If the attach fails after the image was stored,
// the image is deleted so no orphaned blob survives an aborted creation.
func (s *PlaceServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, in CreatePlaceInput) (*model.Place, error) {
	if err := validatePlaceFields(in.Title, in.Description); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Address) == "" {
		return nil, fmt.Errorf("%w: empty address", errs.ErrValidation)
	}
	if len(in.Image) == 0 {
		return nil, fmt.Errorf("%w: missing image", errs.ErrValidation)
	}

	coords, err := s.geo.Resolve(ctx, in.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve address", errs.ErrOperationFailed)
	}

	imageKey, err := s.blobs.Store(ctx, in.Image, in.ImageCT)
	if err != nil {
		return nil, fmt.Errorf("%w: store image", errs.ErrOperationFailed)
	}

	id, err := uuid.NewV4()
	if err != nil {
		s.releaseImage(ctx, imageKey)
		return nil, err
	}
	p := &model.Place{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Address:     in.Address,
		Location:    coords,
		ImageKey:    imageKey,
		OwnerID:     ownerID,
	}
	if err := s.places.Attach(ctx, p); err != nil {
		// Aborted creation must not leave the just-stored image behind.
		s.releaseImage(ctx, imageKey)
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%w: owner", errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: create place", errs.ErrOperationFailed)
	}
	return p, nil
}

// Update changes title and description only. The ownership check runs after
// the place is loaded and before anything is written; the owner reference is
// never touched, so no multi-record transaction is needed.
func (s *PlaceServiceImpl) Update(ctx context.Context, callerID, placeID uuid.UUID, in UpdatePlaceInput) (*model.Place, error) {
	if err := validatePlaceFields(in.Title, in.Description); err != nil {
		return nil, err
	}

	p, err := s.places.Get(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if !p.OwnedBy(callerID) {
		return nil, fmt.Errorf("%w: not the owner", errs.ErrForbidden)
	}

	title := strings.TrimSpace(in.Title)
	if err := s.places.UpdateFields(ctx, placeID, title, in.Description); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: update place", errs.ErrOperationFailed)
	}
	p.Title = title
	p.Description = in.Description
	return p, nil
}

// Delete detaches a caller-owned place inside one transaction, then releases
// the image. The image is released only after the transaction commits; if
// the transaction aborts the blob stays untouched. A repeated delete of the
// same place reports not found.
func (s *PlaceServiceImpl) Delete(ctx context.Context, callerID, placeID uuid.UUID) error {
	p, err := s.places.Get(ctx, placeID)
	if err != nil {
		return err
	}
	if !p.OwnedBy(callerID) {
		return fmt.Errorf("%w: not the owner", errs.ErrForbidden)
	}

	if err := s.places.Detach(ctx, placeID, p.OwnerID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: delete place", errs.ErrOperationFailed)
	}

	s.releaseImage(ctx, p.ImageKey)
	return nil
}

// Get loads a place by ID.
func (s *PlaceServiceImpl) Get(ctx context.Context, placeID uuid.UUID) (*model.Place, error) {
	return s.places.Get(ctx, placeID)
}

// ListByOwner returns the places owned by a user. An unknown user is
// reported as not found.
func (s *PlaceServiceImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Place, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.places.ListByOwner(ctx, ownerID)
}

// releaseImage deletes a stored image best-effort; the mutation outcome
// never depends on it. A failure may orphan a blob, which is accepted.
func (s *PlaceServiceImpl) releaseImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.log.Warn("release image", zap.String("key", key), zap.Error(err))
	}
}
