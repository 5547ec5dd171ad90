package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/revocation"
	"github.com/google/uuid"
)

// LoginResult is what a successful Login hands back to the transport.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// UserService provides authentication-related operations:
// - Register: create users with a bcrypt password hash
// - Login: check credentials and mint an access token
// - Verify: turn a bearer token back into a user id
// - Logout: optionally revoke the presented token
type UserService struct {
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenManager
	hasher      *auth.PasswordHasher
	denylist    revocation.Denylist
	now         func() time.Time
	logger      logging.Logger

	// compared against when the email is unknown so both login failures do
	// the same bcrypt work
	dummyHash []byte
}

type UserServiceOption func(*UserService)

// WithDenylist enables server-side revocation on Logout.
func WithDenylist(d revocation.Denylist) UserServiceOption {
	return func(s *UserService) {
		s.denylist = d
	}
}

// WithUserClock replaces time.Now for account timestamps and token lifetimes.
func WithUserClock(now func() time.Time) UserServiceOption {
	return func(s *UserService) {
		s.now = now
	}
}

func WithUserLogger(l logging.Logger) UserServiceOption {
	return func(s *UserService) {
		s.logger = l
	}
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(m repomanager.RepositoryManager, cfg *config.Config, opts ...UserServiceOption) (*UserService, error) {
	s := &UserService{
		repomanager: m,
		hasher:      auth.NewPasswordHasher(cfg.BcryptCost),
		now:         time.Now,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.tokens = auth.NewTokenManager([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, auth.WithClock(s.now))

	dummy, err := s.hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	s.dummyHash = dummy

	return s, nil
}

// Register creates a new user. The email is checked up front and again by
// the storage uniqueness constraint.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" || email == "" || blank(password) {
		return nil, validationError("name, email and password are required")
	}

	repo := s.repomanager.Users()

	_, err := repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateUser
	case !errors.Is(err, common.ErrorNotFound):
		return nil, internalError("lookup user", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		return nil, internalError("hash password", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    storedTime(s.now()),
	}

	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return nil, common.ErrDuplicateUser
		}
		return nil, internalError("create user", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login verifies the password and, on success, issues an access token.
// Unknown email and wrong password both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repomanager.Users().GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.hasher.Compare(s.dummyHash, password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, internalError("lookup user", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, internalError("sign token", err)
	}

	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Verify returns the user id carried by a valid token. Every failure is
// common.ErrorUnauthorized; the wrapped cause is for logs only.
func (s *UserService) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrorUnauthorized
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return "", errors.Join(common.ErrorUnauthorized, err)
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return "", internalError("check revocation", err)
		}
		if revoked {
			return "", errors.Join(common.ErrorUnauthorized, common.ErrTokenRevoked)
		}
	}

	return claims.UserID, nil
}

// Logout revokes the token when a denylist is configured. Invalid tokens are
// ignored: logging out never fails because of the token.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if s.denylist == nil || token == "" {
		return nil
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}

	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return internalError("revoke token", err)
	}

	s.logger.Info(ctx, "token revoked", "user_id", claims.UserID)
	return nil
}

// Profile returns the stored user for an authenticated id.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internalError("lookup user", err)
	}
	return user, nil
}
