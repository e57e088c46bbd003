// Package service — authentication business logic.
//
// AuthService orchestrates the login flow that turns a GitHub authorization
// code into a signed session token:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ GitHubExchanger (OAuth)  ↘ TokenService (JWT)
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/memories-api/internal/apperror"
	"github.com/sakif/memories-api/internal/auth"
	"github.com/sakif/memories-api/internal/model"
	"github.com/sakif/memories-api/internal/repository"
)

// GitHubExchanger trades an authorization code for a validated GitHub
// profile. *auth.GitHubProvider is the production implementation; tests
// substitute a stub so no HTTP happens at all.
type GitHubExchanger interface {
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// TokenSigner issues session tokens. Satisfied by *auth.TokenService.
type TokenSigner interface {
	Generate(userID, name, avatarURL string) (string, error)
}

// AuthService handles the authentication business logic.
type AuthService struct {
	users  repository.UserRepository
	github GitHubExchanger
	tokens TokenSigner
	logger *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	github GitHubExchanger,
	tokens TokenSigner,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		github: github,
		tokens: tokens,
		logger: logger,
	}
}

// Register completes a GitHub login: exchange the code, find or create the
// local account, sign a 30-day session token.
//
// FIND-OR-CREATE, NOT UPSERT:
// A returning user's profile fields are NOT refreshed from GitHub — the local
// record is immutable after first login. Re-registering is therefore
// idempotent per GitHub account: at most one user row ever exists for a
// GitHub id, and a registration inserts at most one row. (Whether the same
// CODE can be exchanged twice is GitHub's business, not ours.)
//
// Name defaults to the login when GitHub has no display name, so the JWT's
// display claims are never empty.
func (s *AuthService) Register(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", apperror.ValidationFailed("code", "code is required")
	}

	ghUser, err := s.github.Exchange(ctx, code)
	if err != nil {
		// Already typed (ErrUpstream or ErrValidation) by the provider.
		return "", err
	}

	user, err := s.users.GetByGitHubID(ctx, ghUser.ID)
	switch {
	case err == nil:
		// Returning user — nothing to write.
	case errors.Is(err, apperror.ErrNotFound):
		// First login — create the account.
		user = &model.User{
			GitHubID:  ghUser.ID,
			Login:     ghUser.Login,
			Name:      ghUser.Name,
			AvatarURL: ghUser.AvatarURL,
		}
		if user.Name == "" {
			user.Name = ghUser.Login
		}
		if err := s.users.Create(ctx, user); err != nil {
			return "", fmt.Errorf("service/auth: creating user (githubID=%d): %w", ghUser.ID, err)
		}
		s.logger.Info("user registered",
			slog.String("userID", user.ID),
			slog.String("login", user.Login),
		)
	default:
		return "", fmt.Errorf("service/auth: looking up user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
	)

	token, err := s.tokens.Generate(user.ID, user.Name, user.AvatarURL)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return token, nil
}
