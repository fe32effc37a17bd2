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
	"context"
	"log/slog"
)

// Validator adapts Token to the gate's delegated credential check. Rejected
// tokens are reported as (false, nil); only infrastructure failures error.
type Validator struct {
	token       *Token
	signingKey  string
	customRoles map[string][]string
	logger      *slog.Logger
}

// NewValidator creates a Validator for tokens signed with signingKey.
func NewValidator(
	logger *slog.Logger,
	token *Token,
	signingKey string,
	customRoles map[string][]string,
) *Validator {
	return &Validator{
		token:       token,
		signingKey:  signingKey,
		customRoles: customRoles,
		logger:      logger,
	}
}

// Validate reports whether tokenString is a valid, unexpired token.
func (v *Validator) Validate(
	ctx context.Context,
	tokenString string,
) (bool, error) {
	_, ok := v.claims(ctx, tokenString)
	return ok, nil
}

// IsAdmin reports whether tokenString resolves to the admin permission.
func (v *Validator) IsAdmin(
	ctx context.Context,
	tokenString string,
) (bool, error) {
	claims, ok := v.claims(ctx, tokenString)
	if !ok {
		return false, nil
	}

	resolved := ResolvePermissions(claims.Roles, claims.Permissions, v.customRoles)

	return HasPermission(resolved, PermAdminAccess), nil
}

// Subject returns the subject of a valid token, or "".
func (v *Validator) Subject(
	ctx context.Context,
	tokenString string,
) string {
	claims, ok := v.claims(ctx, tokenString)
	if !ok {
		return ""
	}

	return claims.Subject
}

func (v *Validator) claims(
	ctx context.Context,
	tokenString string,
) (*CustomClaims, bool) {
	claims, err := v.token.Validate(tokenString, v.signingKey)
	if err != nil {
		v.logger.DebugContext(
			ctx,
			"token rejected",
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	return claims, true
}
