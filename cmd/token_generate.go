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
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/retr0h/gatekeeper/internal/authtoken"
	"github.com/retr0h/gatekeeper/internal/cli"
)

// TokenGenerator generates signed JWT tokens.
type TokenGenerator interface {
	Generate(
		signingKey string,
		roles []string,
		subject string,
	) (string, error)
}

// tokenGenerateCmd represents the tokenGenerate command.
var tokenGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new token",
	Long: `Generate an HS256 bearer token signed with api.server.security.signing_key.
Tokens carrying a role with admin:access pass the gate's admin check.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		signingKey := appConfig.API.Server.Security.SigningKey
		roles, _ := cmd.Flags().GetStringSlice("roles")
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		var tm TokenGenerator = authtoken.New(logger, authtoken.WithTTL(ttl))
		token, err := tm.Generate(signingKey, roles, subject)
		if err != nil {
			cli.LogFatal(logger, "failed to generate token", err)
		}

		logger.Info(
			"generated token",
			slog.String("token", token),
			slog.String("roles", strings.Join(roles, ",")),
			slog.String("subject", subject),
			slog.Duration("ttl", ttl),
		)
	},
}

func init() {
	tokenCmd.AddCommand(tokenGenerateCmd)
	allowedRoles := allowedTokenRoles()
	usage := fmt.Sprintf("Roles for the token (allowed: %s)", strings.Join(allowedRoles, ", "))

	tokenGenerateCmd.PersistentFlags().
		StringSliceP("roles", "r", []string{}, usage)
	tokenGenerateCmd.PersistentFlags().
		StringP("subject", "u", "", "Subject for the token (e.g., user ID or unique identifier)")
	tokenGenerateCmd.PersistentFlags().
		Duration("ttl", authtoken.DefaultTTL, "Token lifetime")

	_ = tokenGenerateCmd.MarkPersistentFlagRequired("roles")
	_ = tokenGenerateCmd.MarkPersistentFlagRequired("subject")

	tokenGenerateCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		roles, _ := cmd.Flags().GetStringSlice("roles")

		if err := validateRoles(roles, allowedTokenRoles()); err != nil {
			cli.LogFatal(logger, "invalid roles", err, "allowed", allowedTokenRoles())
		}
	}
}

// allowedTokenRoles lists the built-in role names. Configured custom roles
// may only redefine these.
func allowedTokenRoles() []string {
	roles := authtoken.GenerateAllowedRoles(authtoken.RoleHierarchy)
	slices.Sort(roles)

	return roles
}

func validateRoles(
	roles []string,
	allowed []string,
) error {
	for _, role := range roles {
		if !slices.Contains(allowed, role) {
			return fmt.Errorf("unsupported role: %s", role)
		}
	}

	return nil
}

func formatTime(
	t *time.Time,
) string {
	if t == nil {
		return ""
	}

	return t.Format(time.RFC3339)
}
