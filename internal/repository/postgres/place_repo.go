package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/placeshare/placeshare/internal/errs"
	"github.com/placeshare/placeshare/internal/model"
)

// PlaceRepo implements PlaceRepository using PostgreSQL. Attach and Detach
// mutate the place row and the owner's place_ids inside one transaction; the
// FOR UPDATE lock on the owner row serializes concurrent mutations against
// the same owner.
type PlaceRepo struct{ db *DB }

// NewPlaceRepo constructs a place repository.
func NewPlaceRepo(db *DB) *PlaceRepo { return &PlaceRepo{db: db} }

// Attach inserts the place and appends its ID to the owner's place_ids.
// Both writes commit or neither does.
func (r *PlaceRepo) Attach(ctx context.Context, p *model.Place) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const lockOwner = `SELECT id FROM users WHERE id=$1 FOR UPDATE`
	var ownerID uuid.UUID
	if err = tx.QueryRow(ctx, lockOwner, p.OwnerID).Scan(&ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}

	const ins = `
INSERT INTO places (id, title, description, address, lat, lng, image_key, owner_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err = tx.Exec(ctx, ins,
		p.ID, p.Title, p.Description, p.Address,
		p.Location.Lat, p.Location.Lng, p.ImageKey, p.OwnerID,
	); err != nil {
		return err
	}

	const appendRef = `UPDATE users SET place_ids = array_append(place_ids, $2) WHERE id=$1`
	_, err = tx.Exec(ctx, appendRef, p.OwnerID, p.ID)
	return err
}

// Detach deletes the place and removes its ID from the owner's place_ids.
// Both writes commit or neither does.
func (r *PlaceRepo) Detach(ctx context.Context, placeID, ownerID uuid.UUID) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const lockOwner = `SELECT id FROM users WHERE id=$1 FOR UPDATE`
	var lockedID uuid.UUID
	if err = tx.QueryRow(ctx, lockOwner, ownerID).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}

	const del = `DELETE FROM places WHERE id=$1 AND owner_id=$2`
	tag, err := tx.Exec(ctx, del, placeID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}

	const removeRef = `UPDATE users SET place_ids = array_remove(place_ids, $2) WHERE id=$1`
	_, err = tx.Exec(ctx, removeRef, ownerID, placeID)
	return err
}

// Get selects a place by ID.
func (r *PlaceRepo) Get(ctx context.Context, id uuid.UUID) (*model.Place, error) {
	const q = `
SELECT id, title, description, address, lat, lng, image_key, owner_id, created_at
FROM places WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var p model.Place
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Address,
		&p.Location.Lat, &p.Location.Lng, &p.ImageKey, &p.OwnerID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByOwner returns all places owned by the given user.
func (r *PlaceRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Place, error) {
	const q = `
SELECT id, title, description, address, lat, lng, image_key, owner_id, created_at
FROM places WHERE owner_id=$1 ORDER BY created_at`
	rows, err := r.db.Pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Place
	for rows.Next() {
		var p model.Place
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Address,
			&p.Location.Lat, &p.Location.Lng, &p.ImageKey, &p.OwnerID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateFields changes title and description of a single place.
func (r *PlaceRepo) UpdateFields(ctx context.Context, id uuid.UUID, title, description string) error {
	const q = `UPDATE places SET title=$2, description=$3 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, title, description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
