package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const refreshTokenBytes = 64

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrHash         = errors.New("hashing failed")
)

// Claims is the JWT claims structure for access and verification tokens.
type Claims struct {
	UserID string `json:"userId,omitempty"`
	// Token carries a pending-registration id inside verification tokens.
	Token string `json:"token,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies the three credential kinds: short-lived access
// tokens, signed verification tokens, and long-lived random refresh tokens
// stored only as bcrypt hashes.
type Manager struct {
	secret          []byte
	accessTTL       time.Duration
	verificationTTL time.Duration
	refreshTTL      time.Duration
	bcryptCost      int
}

func NewManager(secret string, accessTTL, verificationTTL, refreshTTL time.Duration, bcryptCost int) *Manager {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Manager{
		secret:          []byte(secret),
		accessTTL:       accessTTL,
		verificationTTL: verificationTTL,
		refreshTTL:      refreshTTL,
		bcryptCost:      bcryptCost,
	}
}

// RefreshTTL is the lifetime of a refresh session from issuance.
func (m *Manager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// IssueAccessToken signs a short-lived credential binding only the user id.
func (m *Manager) IssueAccessToken(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken checks signature and expiry and yields the user id. All
// failure modes collapse to ErrInvalidToken; callers must not learn why a
// credential was rejected.
func (m *Manager) VerifyAccessToken(token string) (string, error) {
	claims, err := m.parse(token)
	if err != nil || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// IssueVerificationToken wraps a pending-registration id in a signed token
// for the emailed verification link.
func (m *Manager) IssueVerificationToken(pendingID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Token: pendingID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.verificationTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign verification token: %w", err)
	}
	return signed, nil
}

// VerifyVerificationToken yields the pending-registration id carried by a
// verification token.
func (m *Manager) VerifyVerificationToken(token string) (string, error) {
	claims, err := m.parse(token)
	if err != nil || claims.Token == "" {
		return "", ErrInvalidToken
	}
	return claims.Token, nil
}

// IssueRefreshToken returns a fresh random refresh token, hex-encoded. It is
// generated independent of any user data.
func (m *Manager) IssueRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashRefreshToken produces the bcrypt hash stored in place of the raw token.
// The token is digested to SHA-256 first: the hex-encoded token is 128 bytes,
// which exceeds bcrypt's 72-byte input limit.
func (m *Manager) HashRefreshToken(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(digestRefreshToken(raw), m.bcryptCost)
	if err != nil {
		return "", ErrHash
	}
	return string(hash), nil
}

// CheckRefreshToken reports whether raw matches the stored hash and the
// session is still live. expiresAt is the server-stored session expiry; an
// expired session fails without touching the hash.
func (m *Manager) CheckRefreshToken(raw, storedHash string, expiresAt time.Time) bool {
	if time.Now().After(expiresAt) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), digestRefreshToken(raw)) == nil
}

func digestRefreshToken(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return sum[:]
}

func (m *Manager) parse(token string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
