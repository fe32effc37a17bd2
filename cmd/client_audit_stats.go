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

	"github.com/spf13/cobra"

	"github.com/retr0h/gatekeeper/internal/cli"
)

// clientAuditStatsCmd represents the clientAuditStats command.
var clientAuditStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show audit event counts",
	Run: func(cmd *cobra.Command, _ []string) {
		stats, err := adminClient.AuditStats(cmd.Context())
		if err != nil {
			handleClientError(err)
			return
		}

		if jsonOutput {
			printJSON(stats)
			return
		}

		fmt.Println()
		cli.PrintKV(
			"Total", strconv.Itoa(stats.Total),
			"Recent Failures", strconv.Itoa(stats.RecentFailures),
		)
		cli.PrintCompactTable([]cli.Section{
			cli.CountSection("By Type", stats.ByType),
			cli.CountSection("By Severity", stats.BySeverity),
		})
	},
}

func init() {
	clientAuditCmd.AddCommand(clientAuditStatsCmd)
}
