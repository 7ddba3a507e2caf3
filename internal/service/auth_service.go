package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"splittab/internal/auth"
	"splittab/internal/models"
	"splittab/internal/storage"
)

// AuthService handles account registration and login on top of the user
// store and the token manager.
type AuthService struct {
	store  storage.Store
	tokens *auth.Tokens
	logger *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store storage.Store, tokens *auth.Tokens, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new account and returns the user with a session token.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*models.User, string, error) {
	email = normalizeEmail(email)

	if err := auth.CheckPasswordStrength(password); err != nil {
		return nil, "", err
	}

	// Check if email already exists
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, "", auth.ErrEmailExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		s.logger.Error("registration failed", "email", email, "error", err)
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("failed to issue token", "user_id", user.ID, "error", err)
		return nil, "", err
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// Login authenticates a user by email and password and returns the user
// with a fresh session token. Unknown emails and wrong passwords are both
// reported as auth.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("login failed", "email", email)
		return nil, "", auth.ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		s.logger.Warn("login failed", "email", email)
		return nil, "", auth.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("failed to issue token", "user_id", user.ID, "error", err)
		return nil, "", err
	}

	s.logger.Info("user logged in", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// Me returns the full account record for an authenticated user ID.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
