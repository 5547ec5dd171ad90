package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/revocation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, opts ...UserServiceOption) (*UserService, *repomanager.MemoryRepositoryManager) {
	t.Helper()
	rm := repomanager.NewMemoryRepositoryManager()
	s, err := NewUserService(rm, testConfig(), opts...)
	require.NoError(t, err)
	return s, rm
}

func TestRegister_Success(t *testing.T) {
	s, rm := newUserService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "  Alice ", " a@x.com ", "p1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "a@x.com", u.Email)
	assert.NotEqual(t, []byte("p1"), u.PasswordHash)

	stored, err := rm.Users().GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
}

func TestRegister_Duplicate(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "a@x.com", "p1")
	require.NoError(t, err)

	_, err = s.Register(ctx, "Alice again", "a@x.com", "other")
	assert.ErrorIs(t, err, common.ErrDuplicateUser)
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newUserService(t)

	tests := []struct {
		name, userName, email, password string
	}{
		{"empty name", "", "a@x.com", "p"},
		{"blank name", "   ", "a@x.com", "p"},
		{"empty email", "A", "", "p"},
		{"empty password", "A", "a@x.com", ""},
		{"blank password", "A", "a@x.com", "  "},
		{"password too long", "A", "a@x.com", strings.Repeat("x", 73)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tt.userName, tt.email, tt.password)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestLoginVerify_RoundTrip(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "Alice", "a@x.com", "p1")
	require.NoError(t, err)

	res, err := s.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "Alice", res.User.Name)

	uid, err := s.Verify(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "a@x.com", "p1")
	require.NoError(t, err)

	_, errWrong := s.Login(ctx, "a@x.com", "nope")
	_, errUnknown := s.Login(ctx, "b@x.com", "p1")

	assert.ErrorIs(t, errWrong, common.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestRegister_CreatedAtMicrosecondPrecision(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 5, 1, 9, 0, 0, 999999999, time.UTC)}
	s, _ := newUserService(t, WithUserClock(clock.Now))

	u, err := s.Register(context.Background(), "Alice", "a@x.com", "p1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 1, 9, 0, 0, 999999000, time.UTC), u.CreatedAt)
}

func TestVerify_ExpiresAfterOneHour(t *testing.T) {
	clock := newClock()
	s, _ := newUserService(t, WithUserClock(clock.Now))
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "a@x.com", "p1")
	require.NoError(t, err)
	res, err := s.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(time.Hour), res.ExpiresAt)

	clock.Advance(30 * time.Minute)
	_, err = s.Verify(ctx, res.Token)
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)
	_, err = s.Verify(ctx, res.Token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerify_Rejects(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	other := auth.NewTokenManager([]byte("other-secret"), time.Hour)
	foreign, _, err := other.Generate("u1")
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", foreign} {
		_, err := s.Verify(ctx, tok)
		assert.ErrorIs(t, err, common.ErrorUnauthorized, "token %q", tok)
	}
}

func TestLogout_WithoutDenylistKeepsTokenValid(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "a@x.com", "p1")
	require.NoError(t, err)
	res, err := s.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, res.Token))
	_, err = s.Verify(ctx, res.Token)
	assert.NoError(t, err)
}

func TestLogout_WithDenylistRevokes(t *testing.T) {
	clock := newClock()
	s, _ := newUserService(t,
		WithUserClock(clock.Now),
		WithDenylist(revocation.NewMemoryDenylist(clock.Now)),
	)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "a@x.com", "p1")
	require.NoError(t, err)
	first, err := s.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	second, err := s.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, first.Token))
	require.NoError(t, s.Logout(ctx, "not-a-token"))
	require.NoError(t, s.Logout(ctx, ""))

	_, err = s.Verify(ctx, first.Token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.ErrorIs(t, err, common.ErrTokenRevoked)

	_, err = s.Verify(ctx, second.Token)
	assert.NoError(t, err)
}

func TestProfile(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "Alice", "a@x.com", "p1")
	require.NoError(t, err)

	got, err := s.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	_, err = s.Profile(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUserService_StorageFailures(t *testing.T) {
	s, err := NewUserService(brokenRepos{}, testConfig())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Register(ctx, "A", "a@x.com", "p")
	assert.ErrorIs(t, err, common.ErrorInternal)

	_, err = s.Login(ctx, "a@x.com", "p")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = s.Profile(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrorInternal)
}
