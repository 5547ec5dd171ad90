package auth

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotContains(t, string(hash), "s3cret")

	assert.NoError(t, h.Compare(hash, "s3cret"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), common.ErrInvalidCredentials)
	assert.ErrorIs(t, h.Compare([]byte("garbage"), "s3cret"), common.ErrInvalidCredentials)
}

func TestPasswordHasher_DefaultCost(t *testing.T) {
	h := NewPasswordHasher(0)
	assert.Equal(t, DefaultBcryptCost, h.cost)
}

func TestPasswordHasher_TooLong(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, common.ErrValidation)
}
