package services

import (
	"context"
	"testing"
	"time"

	"github.com/compsocial/compsocial-server/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type authHarness struct {
	svc      AuthService
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	notifier *fakeNotifier
	tokens   *token.Manager
}

func newAuthHarness(t *testing.T, accessTTL time.Duration) *authHarness {
	t.Helper()
	h := &authHarness{
		users:    newFakeUserRepo(),
		sessions: newFakeSessionRepo(),
		notifier: &fakeNotifier{},
		tokens:   token.NewManager("test-secret", accessTTL, time.Hour, 30*24*time.Hour, bcrypt.MinCost),
	}
	h.svc = NewAuthService(h.users, h.sessions, h.tokens, h.notifier, bcrypt.MinCost, zap.NewNop().Sugar())
	return h
}

// waitForMail blocks until the async verification email for email lands.
func (h *authHarness) waitForMail(t *testing.T, email string) sentMail {
	t.Helper()
	var mail sentMail
	require.Eventually(t, func() bool {
		m, ok := h.notifier.lastSent()
		mail = m
		return ok && m.email == email
	}, 2*time.Second, 10*time.Millisecond, "verification email was never sent")
	return mail
}

func (h *authHarness) registerAndVerify(t *testing.T, username, email, password string) {
	t.Helper()
	require.NoError(t, h.svc.Register(context.Background(), username, email, password))
	mail := h.waitForMail(t, email)
	msg, err := h.svc.Verify(context.Background(), mail.token)
	require.NoError(t, err)
	require.Equal(t, verifiedMessage, msg)
}

func TestRegister_MissingFields(t *testing.T) {
	h := newAuthHarness(t, time.Minute)
	ctx := context.Background()

	assert.ErrorIs(t, h.svc.Register(ctx, "", "a@x.com", "password1"), ErrValidation)
	assert.ErrorIs(t, h.svc.Register(ctx, "alice", "", "password1"), ErrValidation)
	assert.ErrorIs(t, h.svc.Register(ctx, "alice", "a@x.com", ""), ErrValidation)
}

func TestRegister_SendsVerificationEmail(t *testing.T) {
	h := newAuthHarness(t, time.Minute)

	require.NoError(t, h.svc.Register(context.Background(), "alice", "A@X.com", "password1"))
	mail := h.waitForMail(t, "a@x.com")

	assert.Equal(t, "alice", mail.username)
	assert.Equal(t, "a@x.com", mail.email, "email must be lowercased")
	assert.NotEmpty(t, mail.token)
}

func TestRegister_TwiceOverwritesPending(t *testing.T) {
	h := newAuthHarness(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, h.svc.Register(ctx, "alice", "a@x.com", "password1"))
	first := h.waitForMail(t, "a@x.com")

	require.NoError(t, h.svc.Register(ctx, "alice", "a@x.com", "password2"))
	var second sentMail
	require.Eventually(t, func() bool {
		m, ok := h.notifier.lastSent()
		second = m
		return ok && m.token != first.token
	}, 2*time.Second, 10*time.Millisecond)

	// The first token is consumed by the overwrite and must not verify.
	msg, err := h.svc.Verify(ctx, first.token)
	require.NoError(t, err)
	assert.Equal(t, notVerifiedMessage, msg)

	msg, err = h.svc.Verify(ctx, second.token)
	require.NoError(t, err)
	assert.Equal(t, verifiedMessage, msg)

	// The second password is the one staged.
	_, err = h.svc.Login(ctx, "a@x.com", "password1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = h.svc.Login(ctx, "a@x.com", "password2")
	assert.NoError(t, err)
}

func TestRegister_VerifiedEmailConflict(t *testing.T) {
	h := newAuthHarness(t, time.Minute)
	h.registerAndVerify(t, "alice", "a@x.com", "password1")

	err := h.svc.Register(context.Background(), "mallory", "a@x.com", "otherpassword")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestVerify_InvalidToken(t *testing.T) {
	h := newAuthHarness(t, time.Minute)

	_, err := h.svc.Verify(context.Background(), "not-a-signed-token")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestVerify_ConsumedToken_NoDuplicateUser(t *testing.T) {
	h := newAuthHarness(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, h.svc.Register(ctx, "alice", "a@x.com", "password1"))
	mail := h.waitForMail(t, "a@x.com")

	msg, err := h.svc.Verify(ctx, mail.token)
	require.NoError(t, err)
	require.Equal(t, verifiedMessage, msg)

	msg, err = h.svc.Verify(ctx, mail.token)
	require.NoError(t, err)
	assert.Equal(t, notVerifiedMessage, msg)

	h.users.mu.Lock()
	defer h.users.mu.Unlock()
	assert.Len(t, h.users.users, 1)
}

func TestLogin_ThreeWayDistinction(t *testing.T) {
	h := newAuthHarness(t, time.Minute)
	ctx := context.Background()

	// Nonexistent account.
	_, err := h.svc.Login(ctx, "nobody@x.com", "password1")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Registered but unverified.
	require.NoError(t, h.svc.Register(ctx, "bob", "b@x.com", "password1"))
	h.waitForMail(t, "b@x.com")
	_, err = h.svc.Login(ctx, "b@x.com", "password1")
	assert.ErrorIs(t, err, ErrUnverified)

	// Verified but wrong password.
	h.registerAndVerify(t, "alice", "a@x.com", "password1")
	_, err = h.svc.Login(ctx, "a@x.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Verified, correct password.
	session, err := h.svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.UserID)
	assert.NotEmpty(t, session.AccessToken)
	assert.Len(t, session.RefreshToken, 128)
}

func TestLogin_AccessTokenBindsUser(t *testing.T) {
	h := newAuthHarness(t, time.Minute)
	h.registerAndVerify(t, "alice", "a@x.com", "password1")

	session, err := h.svc.Login(context.Background(), "a@x.com", "password1")
	require.NoError(t, err)

	userID, err := h.tokens.VerifyAccessToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, userID)
}

func TestLogin_AccessTokenExpires(t *testing.T) {
	// Negative TTL stands in for a clock skip past the expiry.
	h := newAuthHarness(t, -time.Second)
	h.registerAndVerify(t, "alice", "a@x.com", "password1")

	session, err := h.svc.Login(context.Background(), "a@x.com", "password1")
	require.NoError(t, err)

	_, err = h.tokens.VerifyAccessToken(session.AccessToken)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestLogin_ReplacesPriorSession(t *testing.T) {
	h := newAuthHarness(t, time.Minute)
	h.registerAndVerify(t, "alice", "a@x.com", "password1")
	ctx := context.Background()

	first, err := h.svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	second, err := h.svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	_, err = h.svc.Refresh(ctx, first.UserID, first.RefreshToken)
	assert.ErrorIs(t, err, ErrForbidden, "superseded refresh token must be rejected")

	_, err = h.svc.Refresh(ctx, second.UserID, second.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh(t *testing.T) {
	h := newAuthHarness(t, time.Minute)
	h.registerAndVerify(t, "alice", "a@x.com", "password1")
	ctx := context.Background()

	session, err := h.svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	access, err := h.svc.Refresh(ctx, session.UserID, session.RefreshToken)
	require.NoError(t, err)
	userID, err := h.tokens.VerifyAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, userID)

	// Valid user and expiry, wrong token.
	other, err := h.tokens.IssueRefreshToken()
	require.NoError(t, err)
	_, err = h.svc.Refresh(ctx, session.UserID, other)
	assert.ErrorIs(t, err, ErrForbidden)

	// No session at all.
	require.NoError(t, h.svc.Logout(ctx, session.UserID))
	_, err = h.svc.Refresh(ctx, session.UserID, session.RefreshToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogout_Idempotent(t *testing.T) {
	h := newAuthHarness(t, time.Minute)
	h.registerAndVerify(t, "alice", "a@x.com", "password1")
	ctx := context.Background()

	session, err := h.svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	assert.NoError(t, h.svc.Logout(ctx, session.UserID))
	assert.NoError(t, h.svc.Logout(ctx, session.UserID))
}

func TestLogout_DeleteFailure(t *testing.T) {
	h := newAuthHarness(t, time.Minute)
	h.registerAndVerify(t, "alice", "a@x.com", "password1")
	ctx := context.Background()

	session, err := h.svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	h.sessions.delErr = assert.AnError
	assert.ErrorIs(t, h.svc.Logout(ctx, session.UserID), ErrInternal)
}

func TestGetUser_Projections(t *testing.T) {
	h := newAuthHarness(t, time.Minute)
	h.registerAndVerify(t, "alice", "a@x.com", "password1")
	h.registerAndVerify(t, "bob", "b@x.com", "password1")
	ctx := context.Background()

	alice, err := h.svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	bob, err := h.svc.Login(ctx, "b@x.com", "password1")
	require.NoError(t, err)

	self, err := h.svc.GetUser(ctx, alice.UserID, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", self.Email)
	assert.Empty(t, self.PasswordHash)

	other, err := h.svc.GetUser(ctx, alice.UserID, bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, "bob", other.Username)
	assert.Empty(t, other.Email, "foreign lookups expose only id and username")
	assert.Empty(t, other.PasswordHash)
}
