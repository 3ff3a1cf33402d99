package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStores(t *testing.T) (*RedisStore, *MemoryStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), NewMemoryStore()
}

func flowStores(t *testing.T) map[string]FlowStore {
	r, m := newTestStores(t)
	return map[string]FlowStore{"redis": r, "memory": m}
}

func sessionStores(t *testing.T) map[string]Store {
	r, m := newTestStores(t)
	return map[string]Store{"redis": r, "memory": m}
}

func TestSessionRoundTrip(t *testing.T) {
	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := Session{
				SessionID: "sid-1",
				UserID:    "u-1",
				CreatedAt: time.Now(),
				ExpiresAt: time.Now().Add(time.Hour),
			}
			require.NoError(t, store.Create(ctx, sess))

			got, err := store.Get(ctx, "sid-1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "u-1", got.UserID)

			require.NoError(t, store.Delete(ctx, "sid-1"))
			got, err = store.Get(ctx, "sid-1")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestSessionCreateRejectsExpired(t *testing.T) {
	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Create(context.Background(), Session{
				SessionID: "sid-1",
				UserID:    "u-1",
				ExpiresAt: time.Now().Add(-time.Minute),
			})
			assert.Error(t, err)
		})
	}
}

func TestConsumeCSRFIsSingleUse(t *testing.T) {
	for name, store := range flowStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.PutFlow(ctx, "sid-1", FlowSession{
				CSRFToken: "token-1",
				BackURL:   "/issues",
			}))

			token, err := store.ConsumeCSRF(ctx, "sid-1")
			require.NoError(t, err)
			assert.Equal(t, "token-1", token)

			// Replay: the token is gone, the rest of the flow state stays.
			token, err = store.ConsumeCSRF(ctx, "sid-1")
			require.NoError(t, err)
			assert.Empty(t, token)

			params, err := store.ConsumeFlowParams(ctx, "sid-1")
			require.NoError(t, err)
			assert.Equal(t, "/issues", params.BackURL)
		})
	}
}

func TestConsumeCSRFMissingSessionFailsClosed(t *testing.T) {
	for name, store := range flowStores(t) {
		t.Run(name, func(t *testing.T) {
			token, err := store.ConsumeCSRF(context.Background(), "nope")
			require.NoError(t, err)
			assert.Empty(t, token)
		})
	}
}

func TestConsumeFlowParamsClearsState(t *testing.T) {
	for name, store := range flowStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.PutFlow(ctx, "sid-1", FlowSession{
				BackURL:        "/wiki",
				Autologin:      "1",
				OAuthAutologin: "1",
			}))

			params, err := store.ConsumeFlowParams(ctx, "sid-1")
			require.NoError(t, err)
			assert.Equal(t, "/wiki", params.BackURL)
			assert.Equal(t, "1", params.Autologin)
			assert.Equal(t, "1", params.OAuthAutologin)

			params, err = store.ConsumeFlowParams(ctx, "sid-1")
			require.NoError(t, err)
			assert.Empty(t, params.BackURL)
		})
	}
}

func TestFlashIsOneShot(t *testing.T) {
	for name, store := range flowStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.PutFlash(ctx, "sid-1", "Access denied"))

			msg, err := store.TakeFlash(ctx, "sid-1")
			require.NoError(t, err)
			assert.Equal(t, "Access denied", msg)

			msg, err = store.TakeFlash(ctx, "sid-1")
			require.NoError(t, err)
			assert.Empty(t, msg)
		})
	}
}

func TestPendingFlags(t *testing.T) {
	for name, store := range flowStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.SetPendingFlag(ctx, "sid-1", FlagMustActivateTwoFA))
			require.NoError(t, store.SetPendingFlag(ctx, "sid-1", FlagPasswordChange))

			has, err := store.HasPendingFlag(ctx, "sid-1", FlagMustActivateTwoFA)
			require.NoError(t, err)
			assert.True(t, has)

			require.NoError(t, store.ClearPendingFlags(ctx, "sid-1"))

			for _, flag := range []string{FlagMustActivateTwoFA, FlagPasswordChange} {
				has, err := store.HasPendingFlag(ctx, "sid-1", flag)
				require.NoError(t, err)
				assert.False(t, has, flag)
			}
		})
	}
}
