package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Game is a shared budget period. Admin is unset only while creation is
// still promoting the creator; once creation completes a game always has
// exactly one admin, and the admin is always also a player.
type Game struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Admin         primitive.ObjectID `bson:"admin,omitempty" json:"admin,omitempty"`
	JoinCode      string             `bson:"joinCode" json:"joinCode"`
	PasswordHash  string             `bson:"passwordHash,omitempty" json:"-"`
	PeriodMinutes int                `bson:"periodMinutes" json:"periodMinutes"`
	BudgetMax     float64            `bson:"budgetMax" json:"budgetMax"`
	Players       []Player           `bson:"players" json:"players"`
	CreatedAt     time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt     time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Player is a game membership record with its entry ledger, embedded in the
// game document in join order.
type Player struct {
	UserID  primitive.ObjectID `bson:"userId" json:"userId"`
	Entries []Entry            `bson:"entries" json:"entries"`
}

// Entry is a single monetary contribution logged against the game budget.
type Entry struct {
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Amount    float64   `bson:"amount" json:"amount"`
}

// HasPlayer reports whether userID is on the game's roster.
func (g Game) HasPlayer(userID primitive.ObjectID) bool {
	for _, p := range g.Players {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Player returns the roster record for userID, or nil.
func (g *Game) Player(userID primitive.ObjectID) *Player {
	for i := range g.Players {
		if g.Players[i].UserID == userID {
			return &g.Players[i]
		}
	}
	return nil
}

// RemovePlayer drops userID from the roster, if present.
func (g *Game) RemovePlayer(userID primitive.ObjectID) {
	out := g.Players[:0]
	for _, p := range g.Players {
		if p.UserID != userID {
			out = append(out, p)
		}
	}
	g.Players = out
}
