package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dashboard-api/internal/auth"
	"dashboard-api/internal/model"
)

type fakeUserRepo struct {
	byUsername map[string]model.User
	byID       map[string]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byUsername: map[string]model.User{},
		byID:       map[string]model.User{},
	}
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (model.User, error) {
	user, ok := r.byUsername[username]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (model.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := r.byUsername[username]
	return ok, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user model.User) error {
	r.byUsername[user.Username] = user
	r.byID[user.ID] = user
	return nil
}

func (r *fakeUserRepo) put(user model.User) {
	r.byUsername[user.Username] = user
	r.byID[user.ID] = user
}

type fakeTokenStore struct {
	owners map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{owners: map[string]string{}}
}

func (s *fakeTokenStore) Store(_ context.Context, token string, userID string, _ time.Time) error {
	s.owners[token] = userID
	return nil
}

func (s *fakeTokenStore) Validate(_ context.Context, token string) (string, error) {
	owner, ok := s.owners[token]
	if !ok {
		return "", model.ErrTokenNotFound
	}
	return owner, nil
}

func (s *fakeTokenStore) Revoke(_ context.Context, token string) error {
	delete(s.owners, token)
	return nil
}

func newTestService(t *testing.T) (*AuthService, *fakeUserRepo, *fakeTokenStore) {
	t.Helper()

	codec, err := auth.NewTokenCodec("0123456789abcdef0123456789abcdef", 15*time.Minute, 168*time.Hour)
	require.NoError(t, err)

	users := newFakeUserRepo()
	tokens := newFakeTokenStore()
	svc := NewAuthService(users, tokens, auth.NewPasswordHasher(4), codec)
	return svc, users, tokens
}

func TestAuthServiceAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	created, err := svc.CreateUser(ctx, "alice", "Secret123!", "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "alice", created.Username)
	require.True(t, created.IsActive)
	require.NotEqual(t, "Secret123!", created.PasswordHash)

	t.Run("correct credentials return the user", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "alice", "Secret123!")
		require.NoError(t, err)
		require.NotNil(t, user)
		require.Equal(t, created.ID, user.ID)
	})

	t.Run("wrong password returns nil without error", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "alice", "wrong")
		require.NoError(t, err)
		require.Nil(t, user)
	})

	t.Run("unknown user is indistinguishable from wrong password", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "bob", "anything")
		require.NoError(t, err)
		require.Nil(t, user)
	})
}

func TestAuthServiceAuthenticateInactiveUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, users, _ := newTestService(t)

	created, err := svc.CreateUser(ctx, "carol", "Secret123!", "")
	require.NoError(t, err)

	created.IsActive = false
	users.put(created)

	user, err := svc.Authenticate(ctx, "carol", "Secret123!")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestAuthServiceCreateUserDuplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.CreateUser(ctx, "alice", "Secret123!", "")
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "alice", "Other456!", "")
	require.ErrorIs(t, err, model.ErrUserAlreadyExists)
}

func TestAuthServiceIssueTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, users, _ := newTestService(t)

	user := model.User{ID: "42", Username: "alice", IsActive: true}
	users.put(user)

	pair, err := svc.IssueTokens(ctx, user)
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)
	require.Equal(t, int64(900), pair.ExpiresIn)
	require.Equal(t, "42", pair.User.ID)

	codec, err := auth.NewTokenCodec("0123456789abcdef0123456789abcdef", 15*time.Minute, 168*time.Hour)
	require.NoError(t, err)

	claims, err := codec.Decode(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, model.TokenTypeAccess, claims.Type)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, 900*time.Second, claims.ExpiresAt.Sub(claims.IssuedAt))

	refreshClaims, err := codec.Decode(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, model.TokenTypeRefresh, refreshClaims.Type)
}

func TestAuthServiceResolveCurrentUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, users, _ := newTestService(t)

	user := model.User{ID: "42", Username: "alice", IsActive: true}
	users.put(user)

	pair, err := svc.IssueTokens(ctx, user)
	require.NoError(t, err)

	t.Run("valid access token resolves the user", func(t *testing.T) {
		resolved, err := svc.ResolveCurrentUser(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "42", resolved.ID)
	})

	t.Run("refresh token never authorizes resource access", func(t *testing.T) {
		_, err := svc.ResolveCurrentUser(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		_, err := svc.ResolveCurrentUser(ctx, "not.a.token")
		require.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("deactivated user fails even with an unexpired token", func(t *testing.T) {
		user.IsActive = false
		users.put(user)
		defer func() {
			user.IsActive = true
			users.put(user)
		}()

		_, err := svc.ResolveCurrentUser(ctx, pair.AccessToken)
		require.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("token for a deleted user is unauthorized", func(t *testing.T) {
		delete(users.byID, "42")
		defer users.put(user)

		_, err := svc.ResolveCurrentUser(ctx, pair.AccessToken)
		require.ErrorIs(t, err, model.ErrUnauthorized)
	})
}

func TestAuthServiceRefreshRotation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, users, tokens := newTestService(t)

	user := model.User{ID: "42", Username: "alice", IsActive: true}
	users.put(user)

	pair, err := svc.IssueTokens(ctx, user)
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	t.Run("used refresh token cannot be replayed", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("access token is rejected by refresh", func(t *testing.T) {
		_, err := svc.Refresh(ctx, rotated.AccessToken)
		require.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("logout revokes the stored token", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
		_, ok := tokens.owners[rotated.RefreshToken]
		require.False(t, ok)

		_, err := svc.Refresh(ctx, rotated.RefreshToken)
		require.ErrorIs(t, err, model.ErrUnauthorized)
	})
}
