package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/compsocial/compsocial-server/internal/models"
	"github.com/compsocial/compsocial-server/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	joinCodeLength  = 6
	joinCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// joinCodeMaxAttempts bounds the collision retry loop; with 36^6 codes a
	// retry is already rare.
	joinCodeMaxAttempts = 10
)

// GameConfig carries the ledger's validation ceilings.
type GameConfig struct {
	// BudgetMax caps both a game's budget ceiling and a single entry amount.
	BudgetMax float64
	// PeriodMaxMinutes caps a game's validity window.
	PeriodMaxMinutes int
	// DefaultPeriodMinutes is used when a game is created without a period.
	DefaultPeriodMinutes int
	BcryptCost           int
}

// gameService implements the GameService interface.
type gameService struct {
	games  repository.GameRepository
	users  repository.UserRepository
	cfg    GameConfig
	logger *zap.SugaredLogger
}

// NewGameService creates the game ledger service.
func NewGameService(games repository.GameRepository, users repository.UserRepository, cfg GameConfig, logger *zap.SugaredLogger) GameService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.DefaultPeriodMinutes == 0 {
		cfg.DefaultPeriodMinutes = 30 * 24 * 60
	}
	return &gameService{games: games, users: users, cfg: cfg, logger: logger}
}

// CreateGame creates a game and installs the creator as sole player and
// admin. If either post-insert step fails, the freshly created game is
// deleted again so no admin-less game survives.
func (s *gameService) CreateGame(ctx context.Context, userID, name string, budgetMax float64, password string, periodMinutes int) (string, error) {
	if name == "" || budgetMax <= 0 || budgetMax > s.cfg.BudgetMax {
		return "", ErrValidation
	}
	if periodMinutes == 0 {
		periodMinutes = s.cfg.DefaultPeriodMinutes
	}
	if periodMinutes < 0 || periodMinutes > s.cfg.PeriodMaxMinutes {
		return "", ErrValidation
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", ErrValidation
	}

	var passwordHash string
	if password != "" {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
		if hashErr != nil {
			s.logger.Errorw("game password hashing failed", "error", hashErr)
			return "", ErrInternal
		}
		passwordHash = string(hash)
	}

	code, err := s.generateJoinCode(ctx)
	if err != nil {
		s.logger.Errorw("join code generation failed", "error", err)
		return "", ErrInternal
	}

	game := &models.Game{
		Name:          name,
		JoinCode:      code,
		PasswordHash:  passwordHash,
		PeriodMinutes: periodMinutes,
		BudgetMax:     budgetMax,
		Players:       []models.Player{},
	}
	gameID, err := s.games.Create(ctx, game)
	if err != nil {
		s.logger.Errorw("failed to create game", "error", err)
		return "", ErrInternal
	}

	if err := s.addMembership(ctx, game, uid); err != nil {
		s.rollbackCreate(ctx, gameID)
		return "", ErrInternal
	}

	game.Admin = uid
	if err := s.games.Update(ctx, game); err != nil {
		s.logger.Errorw("failed to set game admin", "game", gameID.Hex(), "error", err)
		s.rollbackCreate(ctx, gameID)
		return "", ErrInternal
	}

	return gameID.Hex(), nil
}

// GetGame returns a game to one of its members, without the password hash.
func (s *gameService) GetGame(ctx context.Context, userID, gameID string) (*models.Game, error) {
	game, uid, err := s.loadGame(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}
	if !game.HasPlayer(uid) {
		return nil, ErrForbidden
	}
	game.PasswordHash = ""
	return game, nil
}

// JoinGame adds the caller to the game behind joinCode, honoring its
// password gate.
func (s *gameService) JoinGame(ctx context.Context, userID, joinCode, password string) (string, error) {
	if joinCode == "" {
		return "", ErrValidation
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", ErrValidation
	}

	game, err := s.games.FindByJoinCode(ctx, joinCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		s.logger.Errorw("game lookup by join code failed", "error", err)
		return "", ErrInternal
	}

	if game.PasswordHash != "" {
		if password == "" {
			return "", ErrForbidden
		}
		if bcrypt.CompareHashAndPassword([]byte(game.PasswordHash), []byte(password)) != nil {
			return "", ErrForbidden
		}
	}

	if game.HasPlayer(uid) {
		return "", ErrConflict
	}

	if err := s.addMembership(ctx, game, uid); err != nil {
		return "", ErrInternal
	}
	return game.ID.Hex(), nil
}

// LeaveGame removes the caller's membership. The admin cannot leave; the
// game has to be deleted instead.
func (s *gameService) LeaveGame(ctx context.Context, userID, gameID string) error {
	game, uid, err := s.loadGame(ctx, userID, gameID)
	if err != nil {
		return err
	}
	if !game.HasPlayer(uid) {
		return ErrForbidden
	}
	if game.Admin == uid {
		return ErrForbidden
	}
	if err := s.removeMembership(ctx, game, uid); err != nil {
		return ErrInternal
	}
	return nil
}

// DeleteGame removes every member's reference to the game and then the game
// itself. Admin only.
func (s *gameService) DeleteGame(ctx context.Context, userID, gameID string) error {
	game, uid, err := s.loadGame(ctx, userID, gameID)
	if err != nil {
		return err
	}
	if game.Admin != uid {
		return ErrForbidden
	}

	for _, p := range game.Players {
		if err := s.removeUserSide(ctx, game.ID, p.UserID); err != nil {
			s.logger.Errorw("failed to remove game reference during delete",
				"game", game.ID.Hex(), "user", p.UserID.Hex(), "error", err)
			return ErrInternal
		}
	}

	if err := s.games.Delete(ctx, game.ID); err != nil {
		s.logger.Errorw("failed to delete game", "game", game.ID.Hex(), "error", err)
		return ErrInternal
	}
	return nil
}

// KickPlayer removes another member from the game. Admin only, and the admin
// cannot kick themselves.
func (s *gameService) KickPlayer(ctx context.Context, userID, gameID, targetID string) error {
	game, uid, err := s.loadGame(ctx, userID, gameID)
	if err != nil {
		return err
	}
	tid, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return ErrValidation
	}
	if game.Admin != uid || tid == uid {
		return ErrForbidden
	}
	if !game.HasPlayer(tid) {
		return ErrNotFound
	}
	if err := s.removeMembership(ctx, game, tid); err != nil {
		return ErrInternal
	}
	return nil
}

// AddEntry appends a timestamped amount to the caller's entry list.
func (s *gameService) AddEntry(ctx context.Context, userID, gameID string, amount float64) error {
	if amount <= 0 || amount > s.cfg.BudgetMax {
		return ErrValidation
	}
	game, uid, err := s.loadGame(ctx, userID, gameID)
	if err != nil {
		return err
	}

	player := game.Player(uid)
	if player == nil {
		return ErrForbidden
	}
	player.Entries = append(player.Entries, models.Entry{
		Timestamp: time.Now().UTC(),
		Amount:    amount,
	})

	if err := s.games.Update(ctx, game); err != nil {
		s.logger.Errorw("failed to append entry", "game", game.ID.Hex(), "error", err)
		return ErrInternal
	}
	return nil
}

// loadGame parses both ids and fetches the game document.
func (s *gameService) loadGame(ctx context.Context, userID, gameID string) (*models.Game, primitive.ObjectID, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, primitive.NilObjectID, ErrValidation
	}
	gid, err := primitive.ObjectIDFromHex(gameID)
	if err != nil {
		return nil, primitive.NilObjectID, ErrValidation
	}
	game, err := s.games.FindByID(ctx, gid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, primitive.NilObjectID, ErrNotFound
		}
		s.logger.Errorw("game lookup failed", "error", err)
		return nil, primitive.NilObjectID, ErrInternal
	}
	return game, uid, nil
}

// addMembership writes both sides of the relation: roster first, then the
// user's game list. A failing second write leaves the sides out of sync and
// is reported as a failure without undoing the first write.
func (s *gameService) addMembership(ctx context.Context, game *models.Game, uid primitive.ObjectID) error {
	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		s.logger.Errorw("user lookup failed during membership add", "error", err)
		return err
	}

	game.Players = append(game.Players, models.Player{UserID: uid, Entries: []models.Entry{}})
	if err := s.games.Update(ctx, game); err != nil {
		s.logger.Errorw("failed to write game roster", "game", game.ID.Hex(), "error", err)
		return err
	}

	user.Games = append(user.Games, game.ID)
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Errorw("failed to write user game list", "user", uid.Hex(), "error", err)
		return err
	}
	return nil
}

// removeMembership mirrors addMembership for removal, same write order and
// same partial-failure stance.
func (s *gameService) removeMembership(ctx context.Context, game *models.Game, uid primitive.ObjectID) error {
	game.RemovePlayer(uid)
	if err := s.games.Update(ctx, game); err != nil {
		s.logger.Errorw("failed to write game roster", "game", game.ID.Hex(), "error", err)
		return err
	}
	return s.removeUserSide(ctx, game.ID, uid)
}

func (s *gameService) removeUserSide(ctx context.Context, gameID, uid primitive.ObjectID) error {
	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		s.logger.Errorw("user lookup failed during membership remove", "error", err)
		return err
	}
	user.RemoveGame(gameID)
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Errorw("failed to write user game list", "user", uid.Hex(), "error", err)
		return err
	}
	return nil
}

// rollbackCreate compensates for a half-finished CreateGame.
func (s *gameService) rollbackCreate(ctx context.Context, gameID primitive.ObjectID) {
	if err := s.games.Delete(ctx, gameID); err != nil {
		s.logger.Errorw("failed to roll back half-created game", "game", gameID.Hex(), "error", err)
	}
}

// generateJoinCode draws uniform codes over [A-Z0-9] until one is free.
func (s *gameService) generateJoinCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < joinCodeMaxAttempts; attempt++ {
		code, err := randomJoinCode()
		if err != nil {
			return "", err
		}
		exists, err := s.games.JoinCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not find a free join code")
}

func randomJoinCode() (string, error) {
	buf := make([]byte, joinCodeLength)
	max := big.NewInt(int64(len(joinCodeCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = joinCodeCharset[n.Int64()]
	}
	return string(buf), nil
}
