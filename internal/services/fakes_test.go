package services

import (
	"context"
	"sync"

	"github.com/compsocial/compsocial-server/internal/models"
	"github.com/compsocial/compsocial-server/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- in-memory repository fakes ---

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[primitive.ObjectID]models.User
	pending map[string]models.PendingRegistration // keyed by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[primitive.ObjectID]models.User),
		pending: make(map[string]models.PendingRegistration),
	}
}

func (f *fakeUserRepo) CreatePendingRegistration(_ context.Context, username, email, passwordHash string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return "", repository.ErrEmailTaken
		}
	}
	reg := models.PendingRegistration{
		ID:    primitive.NewObjectID(),
		Email: email,
		User:  models.User{Username: username, Email: email, PasswordHash: passwordHash},
	}
	f.pending[email] = reg
	return reg.ID.Hex(), nil
}

func (f *fakeUserRepo) FindPendingByEmail(_ context.Context, email string) (*models.PendingRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.pending[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := reg
	out.User = models.User{}
	return &out, nil
}

func (f *fakeUserRepo) PromoteToVerifiedUser(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, err := primitive.ObjectIDFromHex(token)
	if err != nil {
		return repository.ErrNotFound
	}
	for email, reg := range f.pending {
		if reg.ID == id {
			delete(f.pending, email)
			user := reg.User
			user.ID = primitive.NewObjectID()
			user.Games = []primitive.ObjectID{}
			f.users[user.ID] = user
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			out := copyUser(u)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyUser(u)
	return &out, nil
}

func (f *fakeUserRepo) FindPublicByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &models.User{ID: u.ID, Username: u.Username}, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	f.users[u.ID] = copyUser(*u)
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]models.RefreshSession
	putErr   error
	delErr   error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]models.RefreshSession)}
}

func (f *fakeSessionRepo) Put(_ context.Context, s *models.RefreshSession) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.UserID] = *s
	return nil
}

func (f *fakeSessionRepo) Get(_ context.Context, userID primitive.ObjectID) (*models.RefreshSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s
	return &out, nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, userID primitive.ObjectID) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, userID)
	return nil
}

type fakeGameRepo struct {
	mu        sync.Mutex
	games     map[primitive.ObjectID]models.Game
	updateErr error
	// failUpdateAfter fails the Nth Update call (1-based) when positive.
	failUpdateAfter int
	updateCalls     int
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[primitive.ObjectID]models.Game)}
}

func (f *fakeGameRepo) Create(_ context.Context, g *models.Game) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g.ID = primitive.NewObjectID()
	f.games[g.ID] = copyGame(*g)
	return g.ID, nil
}

func (f *fakeGameRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyGame(g)
	return &out, nil
}

func (f *fakeGameRepo) FindByJoinCode(_ context.Context, code string) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.JoinCode == code {
			out := copyGame(g)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeGameRepo) JoinCodeExists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.JoinCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGameRepo) Update(_ context.Context, g *models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.failUpdateAfter > 0 && f.updateCalls >= f.failUpdateAfter {
		return repository.ErrNotFound
	}
	if _, ok := f.games[g.ID]; !ok {
		return repository.ErrNotFound
	}
	f.games[g.ID] = copyGame(*g)
	return nil
}

func (f *fakeGameRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.games, id)
	return nil
}

// --- notifier fake ---

type sentMail struct {
	username, email, token string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeNotifier) SendVerificationLink(_ context.Context, username, email, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{username: username, email: email, token: token})
	return nil
}

func (f *fakeNotifier) lastSent() (sentMail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMail{}, false
	}
	return f.sent[len(f.sent)-1], true
}

// --- copy helpers, simulating store decode ---

func copyUser(u models.User) models.User {
	out := u
	out.Games = append([]primitive.ObjectID(nil), u.Games...)
	return out
}

func copyGame(g models.Game) models.Game {
	out := g
	out.Players = make([]models.Player, len(g.Players))
	for i, p := range g.Players {
		out.Players[i] = models.Player{
			UserID:  p.UserID,
			Entries: append([]models.Entry(nil), p.Entries...),
		}
	}
	return out
}
