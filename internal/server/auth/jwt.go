package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is stamped into every token and required on parse.
const Issuer = "taskkeeper"

// Claims is the access token payload: the standard registered claims plus the
// owning user id.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

type TokenOption func(*TokenManager)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		m.now = now
	}
}

func NewTokenManager(secret []byte, validity time.Duration, opts ...TokenOption) *TokenManager {
	m := &TokenManager{
		secret:   secret,
		validity: validity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Generate signs a fresh token for userID and returns it with its claims.
func (m *TokenManager) Generate(userID string) (string, *Claims, error) {
	issuedAt := m.now()

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.validity)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}

	return tokenString, claims, nil
}

// Parse verifies signature, algorithm, issuer and expiry. Failures are
// reported as common.ErrTokenExpired or common.ErrInvalidToken.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
