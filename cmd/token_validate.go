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

package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/retr0h/gatekeeper/internal/authtoken"
	"github.com/retr0h/gatekeeper/internal/cli"
)

// TokenValidator parses and validates JWT tokens.
type TokenValidator interface {
	Validate(
		tokenString string,
		signingKey string,
	) (*authtoken.CustomClaims, error)
}

// tokenValidateCmd represents the tokenValidate command.
var tokenValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a token and show its claims",
	Long: `Validate a bearer token's signature, issuer, expiry and roles, then print
the claims and the permissions they resolve to.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		signingKey := appConfig.API.Server.Security.SigningKey
		tokenString, _ := cmd.Flags().GetString("token")

		var tm TokenValidator = authtoken.New(logger)
		claims, err := tm.Validate(tokenString, signingKey)
		if err != nil {
			cli.LogFatal(logger, "failed to validate token", err)
		}

		resolved := authtoken.ResolvePermissions(
			claims.Roles,
			claims.Permissions,
			appConfig.API.Server.Security.CustomRoles(),
		)
		perms := make([]string, 0, len(resolved))
		for p := range resolved {
			perms = append(perms, p)
		}
		slices.Sort(perms)

		fmt.Println()
		cli.PrintKV("Subject", claims.Subject, "Roles", strings.Join(claims.Roles, ", "))
		cli.PrintKV("Permissions", strings.Join(perms, ", "))
		cli.PrintKV(
			"Issued", formatTime(&claims.IssuedAt.Time),
			"Expires", formatTime(&claims.ExpiresAt.Time),
		)
		cli.PrintKV(
			"Admin", fmt.Sprintf("%t", authtoken.HasPermission(resolved, authtoken.PermAdminAccess)),
		)
	},
}

func init() {
	tokenCmd.AddCommand(tokenValidateCmd)

	tokenValidateCmd.PersistentFlags().StringP("token", "t", "", "The token string")

	_ = tokenValidateCmd.MarkPersistentFlagRequired("token")
}
