// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package authtoken

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/retr0h/gatekeeper/internal/validation"
)

func init() {
	allowed := GenerateAllowedRoles(RoleHierarchy)
	validation.RegisterEnum("valid_role", func(v string) bool {
		return slices.Contains(allowed, v)
	})
}

// Option configures a Token.
type Option func(*Token)

// WithTTL sets the lifetime of generated tokens.
func WithTTL(
	ttl time.Duration,
) Option {
	return func(t *Token) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithClock replaces time.Now for issued-at and expiry.
func WithClock(
	now func() time.Time,
) Option {
	return func(t *Token) {
		t.now = now
	}
}

// New creates a Token.
func New(
	logger *slog.Logger,
	opts ...Option,
) *Token {
	t := &Token{
		logger: logger,
		ttl:    DefaultTTL,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Generate signs a token for subject carrying roles.
func (t *Token) Generate(
	signingKey string,
	roles []string,
	subject string,
) (string, error) {
	now := t.now()
	claims := CustomClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	if errMsg, ok := validation.Struct(claims); !ok {
		return "", fmt.Errorf("invalid claims: %s", errMsg)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(signingKey))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	t.logger.Debug(
		"generated token",
		slog.String("subject", subject),
		slog.Any("roles", roles),
		slog.Time("expires_at", claims.ExpiresAt.Time),
	)

	return signed, nil
}

// Validate parses tokenString, checks its signature, issuer and claims.
func (t *Token) Validate(
	tokenString string,
	signingKey string,
) (*CustomClaims, error) {
	claims := &CustomClaims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(signingKey), nil
		},
	)
	if err != nil {
		return nil, err
	}

	if !claims.VerifyIssuer(Issuer, true) {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}

	if errMsg, ok := validation.Struct(claims); !ok {
		return nil, fmt.Errorf("invalid claims: %s", errMsg)
	}

	return claims, nil
}
