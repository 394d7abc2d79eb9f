package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/placeshare/placeshare/internal/errs"
	"github.com/placeshare/placeshare/internal/model"
	"github.com/placeshare/placeshare/internal/repository"
)

type fakePlaces struct {
	byID map[uuid.UUID]*model.Place
	refs map[uuid.UUID][]uuid.UUID // ownerID -> place IDs, paired with byID

	attachErr error
	detachErr error
	updateErr error
}

var _ repository.PlaceRepository = (*fakePlaces)(nil)

func newFakePlaces() *fakePlaces {
	return &fakePlaces{byID: map[uuid.UUID]*model.Place{}, refs: map[uuid.UUID][]uuid.UUID{}}
}

func (f *fakePlaces) Attach(_ context.Context, p *model.Place) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	cpy := *p
	f.byID[p.ID] = &cpy
	f.refs[p.OwnerID] = append(f.refs[p.OwnerID], p.ID)
	return nil
}

func (f *fakePlaces) Detach(_ context.Context, placeID, ownerID uuid.UUID) error {
	if f.detachErr != nil {
		return f.detachErr
	}
	if _, ok := f.byID[placeID]; !ok {
		return errs.ErrNotFound
	}
	delete(f.byID, placeID)
	ids := f.refs[ownerID][:0]
	for _, id := range f.refs[ownerID] {
		if id != placeID {
			ids = append(ids, id)
		}
	}
	f.refs[ownerID] = ids
	return nil
}

func (f *fakePlaces) Get(_ context.Context, id uuid.UUID) (*model.Place, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakePlaces) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Place, error) {
	var out []model.Place
	for _, id := range f.refs[ownerID] {
		out = append(out, *f.byID[id])
	}
	return out, nil
}

func (f *fakePlaces) UpdateFields(_ context.Context, id uuid.UUID, title, description string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	p.Title = title
	p.Description = description
	return nil
}

type fakeGeo struct {
	coords model.Coordinates
	err    error
	calls  int
}

func (f *fakeGeo) Resolve(context.Context, string) (model.Coordinates, error) {
	f.calls++
	return f.coords, f.err
}

func newPlaceSvc(t *testing.T, users *fakeUsers, places *fakePlaces, geo *fakeGeo, blobs *fakeBlobs) *PlaceServiceImpl {
	t.Helper()
	return NewPlaceService(places, users, geo, blobs, zap.NewNop())
}

func seedUser(users *fakeUsers) uuid.UUID {
	id := uuid.Must(uuid.NewV4())
	if users.byEmail == nil {
		users.byEmail = map[string]*model.User{}
	}
	users.byEmail["a@x.com"] = &model.User{ID: id, Email: "a@x.com", Name: "A"}
	return id
}

func validCreate() CreatePlaceInput {
	return CreatePlaceInput{
		Title:       "Cafe",
		Description: "quiet corner",
		Address:     "1 Main St",
		Image:       []byte("jpg"),
		ImageCT:     "image/jpeg",
	}
}

func TestPlaces_Create_OK(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{}
	ownerID := seedUser(users)
	places := newFakePlaces()
	geo := &fakeGeo{coords: model.Coordinates{Lat: 40.7, Lng: -74.0}}
	blobs := &fakeBlobs{}
	s := newPlaceSvc(t, users, places, geo, blobs)

	p, err := s.Create(context.Background(), ownerID, validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !p.OwnedBy(ownerID) {
		t.Fatalf("owner not set")
	}
	if p.Location != geo.coords {
		t.Fatalf("coordinates not resolved: %+v", p.Location)
	}
	// Both sides of the ownership relation exist after commit.
	if _, err := places.Get(context.Background(), p.ID); err != nil {
		t.Fatalf("place not stored: %v", err)
	}
	if got := places.refs[ownerID]; len(got) != 1 || got[0] != p.ID {
		t.Fatalf("owner reference list = %v", got)
	}
	if len(blobs.stored) != 1 {
		t.Fatalf("image not stored")
	}
}

func TestPlaces_Create_Validation_NoSideEffects(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{}
	ownerID := seedUser(users)
	geo := &fakeGeo{}
	blobs := &fakeBlobs{}
	s := newPlaceSvc(t, users, newFakePlaces(), geo, blobs)

	for name, mutate := range map[string]func(*CreatePlaceInput){
		"empty title":       func(in *CreatePlaceInput) { in.Title = "  " },
		"short description": func(in *CreatePlaceInput) { in.Description = "abcd" },
		"empty address":     func(in *CreatePlaceInput) { in.Address = "" },
		"missing image":     func(in *CreatePlaceInput) { in.Image = nil },
	} {
		in := validCreate()
		mutate(&in)
		if _, err := s.Create(context.Background(), ownerID, in); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("%s: want ErrValidation, got %v", name, err)
		}
	}
	if geo.calls != 0 || len(blobs.stored) != 0 {
		t.Fatalf("validation failure must precede any side effect")
	}
}

func TestPlaces_Create_GeocodeFailure_NothingStored(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{}
	ownerID := seedUser(users)
	blobs := &fakeBlobs{}
	s := newPlaceSvc(t, users, newFakePlaces(), &fakeGeo{err: errors.New("upstream down")}, blobs)

	if _, err := s.Create(context.Background(), ownerID, validCreate()); !errors.Is(err, errs.ErrOperationFailed) {
		t.Fatalf("want ErrOperationFailed, got %v", err)
	}
	if len(blobs.stored) != 0 {
		t.Fatalf("image must not be stored when geocoding fails")
	}
}

func TestPlaces_Create_AttachFailure_CleansUpImage(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{}
	ownerID := seedUser(users)
	places := newFakePlaces()
	places.attachErr = errors.New("tx aborted")
	blobs := &fakeBlobs{}
	s := newPlaceSvc(t, users, places, &fakeGeo{}, blobs)

	if _, err := s.Create(context.Background(), ownerID, validCreate()); !errors.Is(err, errs.ErrOperationFailed) {
		t.Fatalf("want ErrOperationFailed, got %v", err)
	}
	if len(blobs.stored) != 0 || len(blobs.deleted) != 1 {
		t.Fatalf("orphaned blob after aborted creation: stored=%d deleted=%d",
			len(blobs.stored), len(blobs.deleted))
	}
}

func TestPlaces_Create_OwnerGone(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{}
	ownerID := seedUser(users)
	places := newFakePlaces()
	places.attachErr = errs.ErrNotFound
	blobs := &fakeBlobs{}
	s := newPlaceSvc(t, users, places, &fakeGeo{}, blobs)

	if _, err := s.Create(context.Background(), ownerID, validCreate()); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if len(blobs.stored) != 0 {
		t.Fatalf("image must be cleaned up when the owner vanished")
	}
}

func TestPlaces_Update_OwnerOnly(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{}
	ownerID := seedUser(users)
	places := newFakePlaces()
	s := newPlaceSvc(t, users, places, &fakeGeo{}, &fakeBlobs{})

	p, err := s.Create(context.Background(), ownerID, validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stranger := uuid.Must(uuid.NewV4())
	if _, err := s.Update(context.Background(), stranger, p.ID, UpdatePlaceInput{Title: "X", Description: "abcde"}); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("non-owner update: want ErrForbidden, got %v", err)
	}
	unchanged, _ := places.Get(context.Background(), p.ID)
	if unchanged.Title != "Cafe" {
		t.Fatalf("forbidden update mutated the record")
	}

	got, err := s.Update(context.Background(), ownerID, p.ID, UpdatePlaceInput{Title: "New Cafe", Description: "still quiet"})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if got.Title != "New Cafe" || got.Description != "still quiet" {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.OwnerID != ownerID || got.Address != "1 Main St" {
		t.Fatalf("update touched immutable fields: %+v", got)
	}
}

func TestPlaces_Update_Validation(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{}
	ownerID := seedUser(users)
	s := newPlaceSvc(t, users, newFakePlaces(), &fakeGeo{}, &fakeBlobs{})

	if _, err := s.Update(context.Background(), ownerID, uuid.Must(uuid.NewV4()), UpdatePlaceInput{Title: "", Description: "abcde"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestPlaces_Delete_OwnerOnly_ReleasesImageAfterCommit(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{}
	ownerID := seedUser(users)
	places := newFakePlaces()
	blobs := &fakeBlobs{}
	s := newPlaceSvc(t, users, places, &fakeGeo{}, blobs)

	p, err := s.Create(context.Background(), ownerID, validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stranger := uuid.Must(uuid.NewV4())
	if err := s.Delete(context.Background(), stranger, p.ID); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("non-owner delete: want ErrForbidden, got %v", err)
	}
	if _, err := places.Get(context.Background(), p.ID); err != nil {
		t.Fatalf("forbidden delete removed the place")
	}

	if err := s.Delete(context.Background(), ownerID, p.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := places.Get(context.Background(), p.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("place still present after delete")
	}
	if len(places.refs[ownerID]) != 0 {
		t.Fatalf("owner reference list not emptied: %v", places.refs[ownerID])
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != p.ImageKey {
		t.Fatalf("image not released after commit: %v", blobs.deleted)
	}

	// Repeating the same delete reports not found, never a second success.
	if err := s.Delete(context.Background(), ownerID, p.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("repeat delete: want ErrNotFound, got %v", err)
	}
}

func TestPlaces_Delete_DetachFailure_KeepsImage(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{}
	ownerID := seedUser(users)
	places := newFakePlaces()
	blobs := &fakeBlobs{}
	s := newPlaceSvc(t, users, places, &fakeGeo{}, blobs)

	p, err := s.Create(context.Background(), ownerID, validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	places.detachErr = errors.New("tx aborted")
	if err := s.Delete(context.Background(), ownerID, p.ID); !errors.Is(err, errs.ErrOperationFailed) {
		t.Fatalf("want ErrOperationFailed, got %v", err)
	}
	// The image is released only after a committed detach.
	if len(blobs.deleted) != 0 {
		t.Fatalf("image released before the transaction committed")
	}
}

func TestPlaces_ListByOwner_UnknownUser(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{byEmail: map[string]*model.User{}}
	s := newPlaceSvc(t, users, newFakePlaces(), &fakeGeo{}, &fakeBlobs{})

	if _, err := s.ListByOwner(context.Background(), uuid.Must(uuid.NewV4())); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
