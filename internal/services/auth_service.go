package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/compsocial/compsocial-server/internal/mailer"
	"github.com/compsocial/compsocial-server/internal/models"
	"github.com/compsocial/compsocial-server/internal/repository"
	"github.com/compsocial/compsocial-server/internal/token"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	verifiedMessage    = "Your account has been verified"
	notVerifiedMessage = "Your account could not be verified. Please try again later."
)

// authService implements the AuthService interface.
type authService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	tokens     *token.Manager
	mail       mailer.Notifier
	bcryptCost int
	logger     *zap.SugaredLogger
}

// NewAuthService creates the account lifecycle service.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens *token.Manager,
	mail mailer.Notifier,
	bcryptCost int,
	logger *zap.SugaredLogger,
) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		mail:       mail,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register stages a pending registration and emails its verification link.
// The verification token never reaches the caller.
func (s *authService) Register(ctx context.Context, username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return ErrValidation
	}
	email = strings.ToLower(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		s.logger.Errorw("password hashing failed", "error", err)
		return ErrInternal
	}

	pendingID, err := s.users.CreatePendingRegistration(ctx, username, email, string(hash))
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return ErrConflict
		}
		s.logger.Errorw("failed to create pending registration", "error", err)
		return ErrInternal
	}

	signed, err := s.tokens.IssueVerificationToken(pendingID)
	if err != nil {
		s.logger.Errorw("failed to sign verification token", "error", err)
		return ErrInternal
	}

	// Fire and forget; a lost email is recoverable by re-registering.
	go func() {
		mailCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if sendErr := s.mail.SendVerificationLink(mailCtx, username, email, signed); sendErr != nil {
			s.logger.Warnw("failed to send verification email", "email", email, "error", sendErr)
		}
	}()

	return nil
}

// Verify consumes the emailed token and promotes the pending registration.
func (s *authService) Verify(ctx context.Context, signedToken string) (string, error) {
	if signedToken == "" {
		return "", ErrValidation
	}

	pendingID, err := s.tokens.VerifyVerificationToken(signedToken)
	if err != nil {
		return "", ErrForbidden
	}

	if err := s.users.PromoteToVerifiedUser(ctx, pendingID); err != nil {
		// Consumed, expired-by-replacement, or a store failure mid-promotion:
		// the outcome message is deliberately tolerant either way.
		s.logger.Warnw("account promotion failed", "error", err)
		return notVerifiedMessage, nil
	}
	return verifiedMessage, nil
}

// Login checks credentials and establishes a fresh session, replacing any
// prior refresh session for the user. An unverified account is reported
// distinctly from a nonexistent one or a bad password.
func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrValidation
	}
	email = strings.ToLower(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Errorw("user lookup failed during login", "error", err)
			return nil, ErrInternal
		}
		if _, pErr := s.users.FindPendingByEmail(ctx, email); pErr == nil {
			return nil, ErrUnverified
		}
		return nil, ErrUnauthenticated
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrUnauthenticated
	}

	rawRefresh, err := s.tokens.IssueRefreshToken()
	if err != nil {
		s.logger.Errorw("failed to generate refresh token", "error", err)
		return nil, ErrInternal
	}
	refreshHash, err := s.tokens.HashRefreshToken(rawRefresh)
	if err != nil {
		s.logger.Errorw("failed to hash refresh token", "error", err)
		return nil, ErrInternal
	}

	session := &models.RefreshSession{
		UserID:    user.ID,
		TokenHash: refreshHash,
		ExpiresAt: time.Now().Add(s.tokens.RefreshTTL()),
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		s.logger.Errorw("failed to store refresh session", "error", err)
		return nil, ErrInternal
	}

	access, err := s.tokens.IssueAccessToken(user.ID.Hex())
	if err != nil {
		s.logger.Errorw("failed to issue access token", "error", err)
		return nil, ErrInternal
	}

	return &Session{
		UserID:       user.ID.Hex(),
		AccessToken:  access,
		RefreshToken: rawRefresh,
	}, nil
}

// Refresh mints a new access token against the stored refresh session. The
// refresh token itself is not rotated.
func (s *authService) Refresh(ctx context.Context, userID, rawRefreshToken string) (string, error) {
	if userID == "" || rawRefreshToken == "" {
		return "", ErrValidation
	}

	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", ErrValidation
	}

	session, err := s.sessions.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		s.logger.Errorw("failed to load refresh session", "error", err)
		return "", ErrInternal
	}

	// Cross-account replay guard.
	if session.UserID != uid {
		return "", ErrForbidden
	}

	if !s.tokens.CheckRefreshToken(rawRefreshToken, session.TokenHash, session.ExpiresAt) {
		return "", ErrForbidden
	}

	access, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		s.logger.Errorw("failed to issue access token", "error", err)
		return "", ErrInternal
	}
	return access, nil
}

// Logout removes the user's refresh session. Logging out without one still
// succeeds; only a failing delete is an error.
func (s *authService) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrValidation
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrValidation
	}
	if err := s.sessions.Delete(ctx, uid); err != nil {
		s.logger.Errorw("failed to delete refresh session", "error", err)
		return ErrInternal
	}
	return nil
}

// GetUser resolves a user record. Looking up someone else yields only the
// public projection.
func (s *authService) GetUser(ctx context.Context, requesterID, targetID string) (*models.User, error) {
	if targetID == "" {
		return nil, ErrValidation
	}
	tid, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return nil, ErrValidation
	}

	var user *models.User
	if requesterID == targetID {
		user, err = s.users.FindByID(ctx, tid)
		if user != nil {
			user.PasswordHash = ""
		}
	} else {
		user, err = s.users.FindPublicByID(ctx, tid)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Errorw("user lookup failed", "error", err)
		return nil, ErrInternal
	}
	return user, nil
}
