package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

// TestStore_Lifecycle тестирует создание, чтение и удаление сессии
func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.HealthCheck(ctx))

	id, err := store.Create(ctx, 42, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+id))

	userID, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

// TestStore_Expiry тестирует истечение срока сессии
func TestStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	id, err := store.Create(ctx, 1, 24*time.Hour)
	require.NoError(t, err)

	mr.FastForward(24*time.Hour + time.Second)

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_Get(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	tests := []struct {
		name      string
		id        string
		setup     func()
		expectErr error
	}{
		{name: "error - empty id", id: "", expectErr: ErrNoSession},
		{name: "error - unknown id", id: "missing", expectErr: ErrNoSession},
		{
			name: "error - corrupted value",
			id:   "broken",
			setup: func() {
				require.NoError(t, mr.Set(keyPrefix+"broken", "not-a-number"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			_, err := store.Get(ctx, tt.id)
			require.Error(t, err)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
			} else {
				assert.NotErrorIs(t, err, ErrNoSession)
			}
		})
	}
}

func TestStore_HealthCheck_Down(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	assert.Error(t, store.HealthCheck(context.Background()))
}
