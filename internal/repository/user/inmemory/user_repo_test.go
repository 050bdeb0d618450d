package inmemory_test

import (
	"context"
	"testing"
	"time"

	"github.com/awakra/to-do-list/internal/models/user"
	"github.com/awakra/to-do-list/internal/repository"
	"github.com/awakra/to-do-list/internal/repository/user/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUserStorage_Create тестирует создание и уникальность
func TestUserStorage_Create(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()

	alice := &user.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, storage.Create(ctx, alice))
	assert.Equal(t, int64(1), alice.ID)
	assert.False(t, alice.IsAdmin)

	tests := []struct {
		name  string
		user  *user.User
		field string
	}{
		{name: "duplicate username", user: &user.User{Username: "alice", Email: "other@example.com"}, field: "username"},
		{name: "duplicate email", user: &user.User{Username: "bob", Email: "ALICE@example.com"}, field: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storage.Create(ctx, tt.user)
			require.ErrorIs(t, err, repository.ErrDuplicate)

			var dup *repository.DuplicateError
			require.ErrorAs(t, err, &dup)
			assert.Equal(t, tt.field, dup.Field)
		})
	}
}

// TestUserStorage_Lookup тестирует поиск пользователя
func TestUserStorage_Lookup(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()
	require.NoError(t, storage.Create(ctx, &user.User{Username: "alice", Email: "alice@example.com"}))

	byName, err := storage.GetByUsernameOrEmail(ctx, "alice")
	require.NoError(t, err)
	byEmail, err := storage.GetByUsernameOrEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, byName.ID, byEmail.ID)

	_, err = storage.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = storage.GetByID(ctx, 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestUserStorage_LookupPrefersLowestID тестирует, что при совпадении имени одного и email другого выбирается ранний пользователь
func TestUserStorage_LookupPrefersLowestID(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()
	first := &user.User{Username: "first", Email: "shared@example.com"}
	require.NoError(t, storage.Create(ctx, first))
	require.NoError(t, storage.Create(ctx, &user.User{Username: "shared@example.com", Email: "second@example.com"}))

	for i := 0; i < 20; i++ {
		found, err := storage.GetByUsernameOrEmail(ctx, "shared@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
	}
}

// TestUserStorage_ResetToken тестирует запись и очистку токена
func TestUserStorage_ResetToken(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()
	u := &user.User{Username: "alice", Email: "alice@example.com", PasswordHash: "old"}
	require.NoError(t, storage.Create(ctx, u))

	exp := time.Now().Add(30 * time.Minute)
	require.NoError(t, storage.SetResetToken(ctx, u.ID, "token", exp))

	withToken, err := storage.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, withToken.HasResetToken())
	assert.Equal(t, "token", *withToken.ResetToken)
	assert.True(t, exp.Equal(*withToken.ResetTokenExpiration))

	assert.ErrorIs(t, storage.ResetPassword(ctx, u.ID, "other-token", "new"), repository.ErrStaleToken)
	require.NoError(t, storage.ResetPassword(ctx, u.ID, "token", "new"))
	// второй раз тем же токеном
	assert.ErrorIs(t, storage.ResetPassword(ctx, u.ID, "token", "newer"), repository.ErrStaleToken)

	consumed, err := storage.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", consumed.PasswordHash)
	assert.Nil(t, consumed.ResetToken)
	assert.Nil(t, consumed.ResetTokenExpiration)

	assert.ErrorIs(t, storage.SetResetToken(ctx, 99, "token", exp), repository.ErrNotFound)
	assert.ErrorIs(t, storage.ResetPassword(ctx, 99, "token", "new"), repository.ErrStaleToken)
}
