package users

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndLookup(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	u := sampleUser()
	_, err := repo.Create(ctx, u)
	require.NoError(t, err)

	byEmail, err := repo.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := repo.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Name)

	// returned copies must not alias stored state
	byID.Name = "Mallory"
	again, err := repo.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Name)
}

func TestMemoryRepository_DuplicateEmail(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, sampleUser())
	require.NoError(t, err)

	other := sampleUser()
	other.ID = "another-id"
	_, err = repo.Create(ctx, other)
	require.ErrorIs(t, err, common.ErrDuplicateUser)
}

func TestMemoryRepository_EmailIsCaseSensitive(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, sampleUser())
	require.NoError(t, err)

	_, err = repo.GetUserByEmail(ctx, "A@X.COM")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_NotFound(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.GetUserByID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
