package services

import (
	"context"
	"errors"

	"github.com/compsocial/compsocial-server/internal/models"
)

var (
	ErrValidation      = errors.New("invalid input")
	ErrConflict        = errors.New("conflict with existing state")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("invalid credentials")
	ErrUnverified      = errors.New("account not verified")
	ErrInternal        = errors.New("internal server error")
)

// Session is what a successful login hands back to the client. The refresh
// token appears here raw exactly once; only its hash is persisted.
type Session struct {
	UserID       string `json:"userId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService drives the account lifecycle: pending registration, email
// verification, login, session refresh and logout.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) error
	// Verify consumes an emailed verification token. The returned message is
	// shown to the user whether promotion succeeded or not; only a bad token
	// is an error.
	Verify(ctx context.Context, signedToken string) (string, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Refresh(ctx context.Context, userID, rawRefreshToken string) (string, error)
	Logout(ctx context.Context, userID string) error
	// GetUser returns the full record (sans password hash) when requester and
	// target match, and only id plus username otherwise.
	GetUser(ctx context.Context, requesterID, targetID string) (*models.User, error)
}

// GameService maintains the game roster and its mirror image in each user's
// game list, and appends budget entries.
type GameService interface {
	CreateGame(ctx context.Context, userID, name string, budgetMax float64, password string, periodMinutes int) (string, error)
	GetGame(ctx context.Context, userID, gameID string) (*models.Game, error)
	JoinGame(ctx context.Context, userID, joinCode, password string) (string, error)
	LeaveGame(ctx context.Context, userID, gameID string) error
	DeleteGame(ctx context.Context, userID, gameID string) error
	KickPlayer(ctx context.Context, userID, gameID, targetID string) error
	AddEntry(ctx context.Context, userID, gameID string, amount float64) error
}
