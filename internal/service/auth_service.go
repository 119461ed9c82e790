package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dashboard-api/internal/auth"
	"dashboard-api/internal/model"
)

// UserRepository is the narrow persistence surface AuthService depends on.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user model.User) error
}

// RefreshTokenStore tracks issued refresh tokens so they can be rotated
// on use and revoked on logout. Access tokens stay stateless.
type RefreshTokenStore interface {
	Store(ctx context.Context, token string, userID string, expiresAt time.Time) error
	Validate(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

type AuthService struct {
	users  UserRepository
	tokens RefreshTokenStore
	hasher *auth.PasswordHasher
	codec  *auth.TokenCodec
}

func NewAuthService(users UserRepository, tokens RefreshTokenStore, hasher *auth.PasswordHasher, codec *auth.TokenCodec) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		codec:  codec,
	}
}

// Authenticate checks a username/password pair against the stored hash.
// Unknown user, inactive user, and wrong password all come back as
// (nil, nil) so a caller cannot enumerate accounts from the result.
func (s *AuthService) Authenticate(ctx context.Context, username string, password string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !user.IsActive {
		return nil, nil
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil
	}

	return &user, nil
}

// CreateUser registers a new account. The duplicate check runs before
// hashing so a collision does not pay the bcrypt cost.
func (s *AuthService) CreateUser(ctx context.Context, username string, password string, email string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.User{}, fmt.Errorf("username is required: %w", model.ErrInvalidInput)
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	if exists {
		return model.User{}, model.ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// IssueTokens mints an access/refresh pair for an authenticated user and
// records the refresh token so it can be rotated.
func (s *AuthService) IssueTokens(ctx context.Context, user model.User) (model.TokenPair, error) {
	extra := map[string]any{"username": user.Username}

	accessToken, err := s.codec.CreateAccessToken(user.ID, extra)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.codec.CreateRefreshToken(user.ID, extra)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.codec.RefreshTTL())
	if err := s.tokens.Store(ctx, refreshToken, user.ID, expiresAt); err != nil {
		return model.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
		User:         user.Public(),
	}, nil
}

// ResolveCurrentUser is the single enforcement point for bearer tokens:
// decode, require the access type and a subject, then recheck that the
// subject still exists and is active.
func (s *AuthService) ResolveCurrentUser(ctx context.Context, tokenString string) (model.User, error) {
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		return model.User{}, model.ErrUnauthorized
	}

	if claims.Type != model.TokenTypeAccess || claims.Subject == "" {
		return model.User{}, model.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, model.ErrUnauthorized
	}
	if err != nil {
		return model.User{}, fmt.Errorf("resolve current user: %w", err)
	}

	if !user.IsActive {
		return model.User{}, model.ErrUnauthorized
	}
	return user, nil
}

// Refresh exchanges a stored refresh token for a fresh pair. Tokens are
// single use: the presented token is revoked before the new pair is
// issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return model.TokenPair{}, model.ErrUnauthorized
	}
	if claims.Type != model.TokenTypeRefresh || claims.Subject == "" {
		return model.TokenPair{}, model.ErrUnauthorized
	}

	ownerID, err := s.tokens.Validate(ctx, refreshToken)
	if errors.Is(err, model.ErrTokenNotFound) {
		return model.TokenPair{}, model.ErrUnauthorized
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}
	if ownerID != claims.Subject {
		return model.TokenPair{}, model.ErrUnauthorized
	}

	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return model.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, model.ErrUnauthorized
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}
	if !user.IsActive {
		return model.TokenPair{}, model.ErrUnauthorized
	}

	return s.IssueTokens(ctx, user)
}

// Logout revokes a refresh token. Revoking an unknown token is a no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
