package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"dashboard-api/internal/model"
)

type stubResolver struct {
	user  model.User
	err   error
	token string
}

func (s *stubResolver) ResolveCurrentUser(_ context.Context, token string) (model.User, error) {
	s.token = token
	if s.err != nil {
		return model.User{}, s.err
	}
	return s.user, nil
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	okHandler := func(t *testing.T) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			require.True(t, ok)
			require.Equal(t, "42", user.ID)
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("valid bearer token passes and sets the user", func(t *testing.T) {
		resolver := &stubResolver{user: model.User{ID: "42", Username: "alice", IsActive: true}}
		mw := NewAuthMiddleware(resolver)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rec := httptest.NewRecorder()

		mw.RequireAuth(okHandler(t)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "some-token", resolver.token)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		mw := NewAuthMiddleware(&stubResolver{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		rec := httptest.NewRecorder()

		mw.RequireAuth(okHandler(t)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non bearer scheme is unauthorized", func(t *testing.T) {
		mw := NewAuthMiddleware(&stubResolver{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		mw.RequireAuth(okHandler(t)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("resolver rejection is unauthorized", func(t *testing.T) {
		mw := NewAuthMiddleware(&stubResolver{err: model.ErrUnauthorized})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer expired-token")
		rec := httptest.NewRecorder()

		mw.RequireAuth(okHandler(t)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
