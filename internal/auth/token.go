package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dashboard-api/internal/model"
)

// MinSecretLength is the smallest signing secret the codec accepts.
const MinSecretLength = 32

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 168 * time.Hour
)

// TokenCodec signs and verifies claims with a symmetric secret. The
// signing method is pinned to HS256 on both the encode and decode path;
// tokens signed with any other method are rejected outright.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenCodec validates the secret eagerly so a misconfigured process
// fails at startup instead of on the first issued token.
func NewTokenCodec(secret string, accessTTL time.Duration, refreshTTL time.Duration) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token codec: %w", model.ErrWeakSecret)
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}

	return &TokenCodec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (c *TokenCodec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *TokenCodec) RefreshTTL() time.Duration { return c.refreshTTL }

// Encode stamps iat/exp onto a copy of claims and signs the result.
func (c *TokenCodec) Encode(claims map[string]any, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	mapClaims := jwt.MapClaims{}
	for key, value := range claims {
		mapClaims[key] = value
	}
	mapClaims["iat"] = now.Unix()
	mapClaims["exp"] = now.Add(ttl).Unix()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry and returns the claims.
// Any failure — bad signature, malformed structure, elapsed exp — is
// reported as model.ErrInvalidToken with no partial claims recovery.
func (c *TokenCodec) Decode(tokenString string) (model.TokenClaims, error) {
	parsed, err := jwt.Parse(tokenString,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return model.TokenClaims{}, model.ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return model.TokenClaims{}, model.ErrInvalidToken
	}

	claims := model.TokenClaims{Extra: map[string]any{}}
	for key, value := range mapClaims {
		switch key {
		case "sub":
			claims.Subject, _ = value.(string)
		case "username":
			claims.Username, _ = value.(string)
		case "typ":
			claims.Type, _ = value.(string)
		case "jti":
			claims.TokenID, _ = value.(string)
		case "iat":
			claims.IssuedAt = numericTime(value)
		case "exp":
			claims.ExpiresAt = numericTime(value)
		default:
			claims.Extra[key] = value
		}
	}

	return claims, nil
}

// CreateAccessToken mints a short-lived token authorizing resource access.
func (c *TokenCodec) CreateAccessToken(subject string, extra map[string]any) (string, error) {
	return c.createTyped(subject, model.TokenTypeAccess, c.accessTTL, extra)
}

// CreateRefreshToken mints a long-lived token used only to obtain new
// access tokens.
func (c *TokenCodec) CreateRefreshToken(subject string, extra map[string]any) (string, error) {
	return c.createTyped(subject, model.TokenTypeRefresh, c.refreshTTL, extra)
}

func (c *TokenCodec) createTyped(subject string, tokenType string, ttl time.Duration, extra map[string]any) (string, error) {
	claims := map[string]any{}
	for key, value := range extra {
		claims[key] = value
	}
	claims["sub"] = subject
	claims["typ"] = tokenType
	claims["jti"] = uuid.NewString()

	return c.Encode(claims, ttl)
}

func numericTime(value any) time.Time {
	switch v := value.(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC()
	case int64:
		return time.Unix(v, 0).UTC()
	}
	return time.Time{}
}
