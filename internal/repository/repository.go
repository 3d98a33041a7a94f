package repository

import (
	"context"
	"errors"

	"github.com/compsocial/compsocial-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound   = errors.New("document not found")
	ErrEmailTaken = errors.New("email already in use")
)

// UserRepository persists verified users and pending registrations.
type UserRepository interface {
	// CreatePendingRegistration stages an unverified account. It fails with
	// ErrEmailTaken when a verified user already owns the email, and replaces
	// any existing pending registration for it otherwise. The returned token
	// is the pending document's id in hex.
	CreatePendingRegistration(ctx context.Context, username, email, passwordHash string) (string, error)
	FindPendingByEmail(ctx context.Context, email string) (*models.PendingRegistration, error)
	// PromoteToVerifiedUser consumes the pending registration identified by
	// token and upserts the embedded user payload into the verified users
	// collection. The two steps are not transactional: if the upsert fails
	// after the pending row is gone, the registration is lost and the caller
	// must re-register.
	PromoteToVerifiedUser(ctx context.Context, token string) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindPublicByID projects away everything but id and username.
	FindPublicByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
}

// SessionRepository persists at most one refresh session per user.
type SessionRepository interface {
	Put(ctx context.Context, s *models.RefreshSession) error
	Get(ctx context.Context, userID primitive.ObjectID) (*models.RefreshSession, error)
	Delete(ctx context.Context, userID primitive.ObjectID) error
}

// GameRepository persists game documents, players and entries included.
type GameRepository interface {
	Create(ctx context.Context, g *models.Game) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Game, error)
	FindByJoinCode(ctx context.Context, code string) (*models.Game, error)
	JoinCodeExists(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, g *models.Game) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
