// Package auth issues and verifies bearer access tokens signed with the
// configured secret key.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aicreat/aicreat"
	"github.com/aicreat/aicreat/config"
)

// Claims are the claims carried by an access token.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Tokens issues and verifies access tokens.
type Tokens struct {
	key    []byte
	method jwt.SigningMethod
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type Option func(*Tokens)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tokens) {
		t.now = now
	}
}

// NewTokens creates a token service from the auth settings. Only HMAC
// algorithms are supported since tokens are signed with a shared secret.
func NewTokens(cfg config.AuthConfig, opts ...Option) (*Tokens, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("new tokens: empty secret key")
	}

	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("new tokens: unsupported algorithm %q", cfg.Algorithm)
	}

	t := &Tokens{
		key:    []byte(cfg.SecretKey),
		method: method,
		ttl:    cfg.AccessTokenTTL(),
		issuer: config.ProjectName,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Issue signs a new access token for subject.
func (t *Tokens) Issue(subject string) (Token, error) {
	if subject == "" {
		return Token{}, fmt.Errorf("issue token: empty subject: %w", aicreat.ErrInvalidInput)
	}

	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(t.method, claims).SignedString(t.key)
	if err != nil {
		return Token{}, fmt.Errorf("issue token: %w", err)
	}

	return Token{AccessToken: signed, TokenType: "bearer", ExpiresAt: expiresAt}, nil
}

// Verify checks the signature, algorithm and expiry of raw and returns its claims.
// Any failure wraps aicreat.ErrUnauthorized.
func (t *Tokens) Verify(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return t.key, nil },
		jwt.WithValidMethods([]string{t.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("verify token: %w: %w", aicreat.ErrUnauthorized, err)
	}

	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("verify token: missing subject: %w", aicreat.ErrUnauthorized)
	}
	return claims, nil
}
