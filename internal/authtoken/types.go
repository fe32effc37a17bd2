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

// Package authtoken mints and validates the HS256 bearer tokens accepted by
// the gate, and resolves their roles into permissions.
package authtoken

import (
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Issuer is written to and required in every token.
const Issuer = "gatekeeper"

// DefaultTTL is the lifetime of generated tokens.
const DefaultTTL = 24 * time.Hour

// Token generates and validates JWTs.
type Token struct {
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time
}

// CustomClaims are the JWT claims carried by gatekeeper tokens.
type CustomClaims struct {
	Roles       []string `json:"roles"                 validate:"required,min=1,dive,valid_role"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// RoleHierarchy lists each built-in role with the roles it implies.
var RoleHierarchy = map[string][]string{
	RoleAdmin:  {RoleAdmin, RoleEditor, RoleViewer},
	RoleEditor: {RoleEditor, RoleViewer},
	RoleViewer: {RoleViewer},
}

// Built-in roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// GenerateAllowedRoles returns the role names defined in hierarchy.
func GenerateAllowedRoles(
	hierarchy map[string][]string,
) []string {
	roles := make([]string, 0, len(hierarchy))
	for role := range hierarchy {
		roles = append(roles, role)
	}

	return roles
}
