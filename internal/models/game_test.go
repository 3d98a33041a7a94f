package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func rosterGame(players ...primitive.ObjectID) Game {
	g := Game{Name: "trip"}
	for _, id := range players {
		g.Players = append(g.Players, Player{UserID: id})
	}
	return g
}

func memberUser(games ...primitive.ObjectID) User {
	return User{Username: "alice", Games: games}
}

func TestRosterLookups(t *testing.T) {
	t.Parallel()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	// Lookups must work on values returned straight from a call, not only
	// on addressable variables.
	assert.True(t, rosterGame(a, b).HasPlayer(a))
	assert.False(t, rosterGame(a).HasPlayer(b))

	g1 := primitive.NewObjectID()
	assert.True(t, memberUser(g1).HasGame(g1))
	assert.False(t, memberUser().HasGame(g1))
}

func TestRemovePlayer(t *testing.T) {
	t.Parallel()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	g := rosterGame(a, b)

	g.RemovePlayer(a)
	assert.False(t, g.HasPlayer(a))
	assert.True(t, g.HasPlayer(b))
	assert.Len(t, g.Players, 1)

	g.RemovePlayer(a)
	assert.Len(t, g.Players, 1)
}

func TestRemoveGame(t *testing.T) {
	t.Parallel()
	g1, g2 := primitive.NewObjectID(), primitive.NewObjectID()
	u := memberUser(g1, g2)

	u.RemoveGame(g2)
	assert.Equal(t, []primitive.ObjectID{g1}, u.Games)
}
