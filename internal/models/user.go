package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a verified account. Users are created by promoting a pending
// registration; they are never hard-deleted.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email,omitempty"`
	PasswordHash string               `bson:"passwordHash,omitempty" json:"-"`
	Games        []primitive.ObjectID `bson:"games" json:"games,omitempty"`
	CreatedAt    time.Time            `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt    time.Time            `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// HasGame reports whether the user's game list references gameID.
func (u User) HasGame(gameID primitive.ObjectID) bool {
	for _, g := range u.Games {
		if g == gameID {
			return true
		}
	}
	return false
}

// RemoveGame drops gameID from the user's game list, if present.
func (u *User) RemoveGame(gameID primitive.ObjectID) {
	out := u.Games[:0]
	for _, g := range u.Games {
		if g != gameID {
			out = append(out, g)
		}
	}
	u.Games = out
}

// PendingRegistration holds a prospective user awaiting email verification.
// Its document id doubles as the verification token payload. Keyed by email:
// re-registering before verifying replaces the previous pending row.
type PendingRegistration struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Email     string             `bson:"email" json:"email"`
	User      User               `bson:"userObj" json:"-"`
	CreatedAt time.Time          `bson:"created_at,omitempty" json:"-"`
}

// RefreshSession is the single live long-lived credential per user. The raw
// refresh token is never stored, only its bcrypt hash.
type RefreshSession struct {
	UserID    primitive.ObjectID `bson:"userId" json:"-"`
	TokenHash string             `bson:"tokenHash" json:"-"`
	ExpiresAt time.Time          `bson:"expirationDate" json:"-"`
}
