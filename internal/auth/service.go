// Package auth manages the terminal's sign-in lifecycle: exchanging
// credentials for a token, persisting it, and validating it against the
// profile endpoint on startup. Credentials pass straight through to the
// remote API; nothing is hashed or stored locally.
package auth

import (
	"context"
	"log/slog"

	"github.com/lumenpos/lumenpos/internal/upstream"
)

// Service wires the upstream auth endpoints to the token store.
type Service struct {
	client *upstream.Client
	tokens TokenStore
	logger *slog.Logger
}

// NewService constructs the Service.
func NewService(client *upstream.Client, tokens TokenStore, logger *slog.Logger) *Service {
	return &Service{client: client, tokens: tokens, logger: logger}
}

// Login signs the cashier in and persists the token on success.
func (s *Service) Login(ctx context.Context, email, password string) (upstream.User, error) {
	token, err := s.client.Login(ctx, email, password)
	if err != nil {
		return upstream.User{}, err
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return upstream.User{}, err
	}
	return s.client.Profile(ctx)
}

// Logout clears the local token. The server-side invalidation is best
// effort; a dead upstream must not keep the terminal signed in.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx); err != nil {
		s.logger.Warn("server-side logout failed", slog.Any("error", err))
	}
	return s.tokens.Clear(ctx)
}

// Profile returns the signed-in user, validating the stored token.
func (s *Service) Profile(ctx context.Context) (upstream.User, error) {
	return s.client.Profile(ctx)
}
