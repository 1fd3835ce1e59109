package auth

import (
	"testing"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/MikeRez0/tutorpay/internal/adapter/config"
	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasetoToken(t *testing.T) {
	key := paseto.NewV4SymmetricKey()
	ts, err := New(&config.Auth{SymmetricKey: key.ExportHex(), TokenDuration: time.Hour})
	require.NoError(t, err)

	token, err := ts.CreateToken(&domain.Actor{ID: 42, Role: domain.RoleTutor})
	require.NoError(t, err)

	payload, err := ts.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), payload.UserID)
	assert.Equal(t, domain.RoleTutor, payload.Role)

	t.Run("same key, other instance", func(t *testing.T) {
		other, err := New(&config.Auth{SymmetricKey: key.ExportHex()})
		require.NoError(t, err)
		_, err = other.VerifyToken(token)
		assert.NoError(t, err)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := New(&config.Auth{})
		require.NoError(t, err)
		_, err = other.VerifyToken(token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ts.VerifyToken("v4.local.garbage")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		short, err := New(&config.Auth{SymmetricKey: key.ExportHex(), TokenDuration: time.Nanosecond})
		require.NoError(t, err)
		token, err := short.CreateToken(&domain.Actor{ID: 1, Role: domain.RoleAdmin})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
		_, err = short.VerifyToken(token)
		assert.ErrorIs(t, err, domain.ErrExpiredToken)
	})

	t.Run("bad key", func(t *testing.T) {
		_, err := New(&config.Auth{SymmetricKey: "zz"})
		assert.Error(t, err)
	})
}
