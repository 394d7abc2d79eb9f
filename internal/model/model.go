// Package model defines domain entities used by services and repositories.
package model

import (
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Coordinates is a resolved geographic location for a place address.
type Coordinates struct {
	Lat float64
	Lng float64
}

// User represents an account. The password is stored only as a bcrypt hash.
type User struct {
	ID        uuid.UUID // PK
	Email     string    // unique, lower-cased before storage
	Name      string
	PwdHash   []byte      // bcrypt(password)
	ImageKey  string      // blob store key of the profile image
	PlaceIDs  []uuid.UUID // owned places; kept in lockstep with places.owner_id
	CreatedAt time.Time
}

// Place is a user-owned record. OwnerID is immutable after creation.
type Place struct {
	ID          uuid.UUID // PK
	Title       string
	Description string
	Address     string
	Location    Coordinates
	ImageKey    string    // blob store key of the place image
	OwnerID     uuid.UUID // FK -> users.id
	CreatedAt   time.Time
}

// OwnedBy reports whether the place belongs to the given user. Comparison is
// on the durable identifier, so it holds whether the caller started from a
// bare ID or a loaded user record.
func (p *Place) OwnedBy(userID uuid.UUID) bool {
	return p.OwnerID == userID
}

// Identity is a verified caller extracted from a credential token.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// NormalizeEmail lower-cases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
