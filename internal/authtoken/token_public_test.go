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

package authtoken_test

import (
	"encoding/base64"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/suite"

	"github.com/retr0h/gatekeeper/internal/authtoken"
)

type AuthTokenPublicTestSuite struct {
	suite.Suite

	token      *authtoken.Token
	signingKey string
}

func (s *AuthTokenPublicTestSuite) SetupTest() {
	s.token = authtoken.New(slog.Default())
	s.signingKey = "test-signing-key-for-jwt-operations"
}

func (s *AuthTokenPublicTestSuite) TestGenerateAllowedRoles() {
	roles := authtoken.GenerateAllowedRoles(authtoken.RoleHierarchy)

	s.ElementsMatch([]string{"admin", "editor", "viewer"}, roles)
}

func (s *AuthTokenPublicTestSuite) TestGenerate() {
	tests := []struct {
		name        string
		roles       []string
		errContains string
	}{
		{name: "when role is known", roles: []string{"admin"}},
		{name: "when role is unknown", roles: []string{"root"}, errContains: "unknown value \"root\""},
		{name: "when roles are empty", roles: nil, errContains: "invalid claims"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			tokenString, err := s.token.Generate(s.signingKey, tt.roles, "subject")

			if tt.errContains != "" {
				s.ErrorContains(err, tt.errContains)
				s.Empty(tokenString)
				return
			}
			s.NoError(err)
			s.NotEmpty(tokenString)
		})
	}
}

func (s *AuthTokenPublicTestSuite) TestValidate() {
	sign := func(claims authtoken.CustomClaims) string {
		t, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte(s.signingKey))
		return t
	}

	tests := []struct {
		name        string
		tokenFunc   func() string
		signingKey  string
		errContains string
		validate    func(*authtoken.CustomClaims)
	}{
		{
			name: "valid token",
			tokenFunc: func() string {
				t, _ := s.token.Generate(s.signingKey, []string{"editor"}, "chef")
				return t
			},
			signingKey: s.signingKey,
			validate: func(claims *authtoken.CustomClaims) {
				s.Equal([]string{"editor"}, claims.Roles)
				s.Equal("chef", claims.Subject)
				s.Equal(authtoken.Issuer, claims.Issuer)
				s.NotEmpty(claims.ID)
			},
		},
		{
			name: "wrong signing key",
			tokenFunc: func() string {
				t, _ := s.token.Generate(s.signingKey, []string{"viewer"}, "chef")
				return t
			},
			signingKey:  "wrong-key",
			errContains: "signature is invalid",
		},
		{
			name:        "malformed token",
			tokenFunc:   func() string { return "not-a-valid-jwt-token" },
			signingKey:  s.signingKey,
			errContains: "token contains an invalid number of segments",
		},
		{
			name: "unexpected signing method",
			tokenFunc: func() string {
				header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
				payload := base64.RawURLEncoding.EncodeToString([]byte(`{"roles":["admin"]}`))
				return header + "." + payload + "."
			},
			signingKey:  s.signingKey,
			errContains: "unexpected signing method",
		},
		{
			name: "expired token",
			tokenFunc: func() string {
				past := time.Now().Add(-2 * time.Hour)
				t, _ := authtoken.New(
					slog.Default(),
					authtoken.WithClock(func() time.Time { return past }),
					authtoken.WithTTL(time.Hour),
				).Generate(s.signingKey, []string{"admin"}, "chef")
				return t
			},
			signingKey:  s.signingKey,
			errContains: "token is expired",
		},
		{
			name: "foreign issuer",
			tokenFunc: func() string {
				return sign(authtoken.CustomClaims{
					Roles: []string{"admin"},
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    "someone-else",
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				})
			},
			signingKey:  s.signingKey,
			errContains: "unexpected issuer",
		},
		{
			name: "claims fail struct validation",
			tokenFunc: func() string {
				return sign(authtoken.CustomClaims{
					Roles: []string{"superuser"},
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    authtoken.Issuer,
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				})
			},
			signingKey:  s.signingKey,
			errContains: "Roles",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			claims, err := s.token.Validate(tt.tokenFunc(), tt.signingKey)

			if tt.errContains != "" {
				s.Error(err)
				s.Nil(claims)
				s.Contains(err.Error(), tt.errContains)
				return
			}

			s.NoError(err)
			s.Require().NotNil(claims)
			if tt.validate != nil {
				tt.validate(claims)
			}
		})
	}
}

func TestAuthTokenPublicTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTokenPublicTestSuite))
}
