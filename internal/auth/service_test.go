package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/lumenpos/lumenpos/internal/upstream"
)

func newStore(t *testing.T) *RedisTokenStore {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisTokenStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestTokenStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	token, err := store.Token(ctx)
	require.NoError(t, err)
	require.Empty(t, token)

	require.NoError(t, store.Save(ctx, "tok-1"))
	token, err = store.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-1", token)

	require.NoError(t, store.Clear(ctx))
	token, err = store.Token(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestLoginPersistsTokenAndLoadsProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-5"})
		case "/profile":
			require.Equal(t, "Bearer tok-5", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]any{"results": upstream.User{ID: "U1", Name: "Ravi"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	store := newStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(upstream.NewClient(server.URL, store), store, logger)

	user, err := service.Login(ctx, "cashier@shop.test", "secret")
	require.NoError(t, err)
	require.Equal(t, "Ravi", user.Name)

	token, err := store.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-5", token)
}

func TestLogoutClearsTokenEvenWhenServerFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Save(ctx, "tok-5"))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(upstream.NewClient(server.URL, store), store, logger)

	require.NoError(t, service.Logout(ctx))

	token, err := store.Token(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
}
