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
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/retr0h/gatekeeper/internal/cli"
)

var (
	auditListFlags auditQueryFlags
	auditListPage  int
	auditListLimit int
)

// clientAuditListCmd represents the clientAuditList command.
var clientAuditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	Long: `List audit events newest first, filtered by type, severity, user, resource,
IP address, outcome and time range. Requires a token with admin:access.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		q := pageValues(auditListFlags.values(), auditListPage, auditListLimit)

		result, err := adminClient.SearchAudit(cmd.Context(), q)
		if err != nil {
			handleClientError(err)
			return
		}

		if jsonOutput {
			printJSON(result)
			return
		}

		fmt.Println()
		cli.PrintKV(
			"Total", strconv.Itoa(result.Total),
			"Page", strconv.Itoa(result.Page),
			"Limit", strconv.Itoa(result.Limit),
		)

		if len(result.Events) == 0 {
			fmt.Println()
			fmt.Println(cli.DimStyle.Render("  no matching events"))
			return
		}

		cli.PrintCompactTable([]cli.Section{cli.AuditSection(result.Events, time.Now())})
	},
}

func init() {
	clientAuditCmd.AddCommand(clientAuditListCmd)

	auditListFlags.register(clientAuditListCmd)
	clientAuditListCmd.Flags().IntVar(&auditListPage, "page", 1, "Page number (1-based)")
	clientAuditListCmd.Flags().IntVar(&auditListLimit, "limit", 20, "Events per page")
}
