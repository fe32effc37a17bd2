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

	"github.com/retr0h/gatekeeper/internal/audit"
	"github.com/retr0h/gatekeeper/internal/audit/export"
	"github.com/retr0h/gatekeeper/internal/cli"
)

var (
	auditExportFlags     auditQueryFlags
	auditExportOutput    string
	auditExportBatchSize int
)

// clientAuditExportCmd represents the clientAuditExport command.
var clientAuditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit events to a file",
	Long: `Page through matching audit events and write each as one JSON line.
The output file is created with mode 0600 and truncated if it exists.
Rate-limited requests are retried after the server's Retry-After delay.
Requires a token with admin:access.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		exporter := export.NewFileExporter(appFs, auditExportOutput)

		result, err := export.Run(
			ctx,
			logger,
			adminClient.AuditFetcher(auditExportFlags.values()),
			exporter,
			auditExportBatchSize,
			func(exported int, total int) {
				logger.Debug("export progress", "exported", exported, "total", total)
			},
		)
		if err != nil {
			handleClientError(err)
			return
		}

		fmt.Println()
		cli.PrintKV(
			"Exported", strconv.Itoa(result.ExportedEntries),
			"Total", strconv.Itoa(result.TotalEntries),
		)
		if result.Duplicates > 0 {
			cli.PrintKV("Skipped duplicates", strconv.Itoa(result.Duplicates))
		}
		cli.PrintKV("Output", auditExportOutput)
	},
}

func init() {
	clientAuditCmd.AddCommand(clientAuditExportCmd)

	auditExportFlags.register(clientAuditExportCmd)
	clientAuditExportCmd.Flags().
		StringVarP(&auditExportOutput, "output", "o", "", "Output file path (required)")
	clientAuditExportCmd.Flags().
		IntVar(&auditExportBatchSize, "batch-size", audit.MaxPageSize, "Events fetched per request")
	_ = clientAuditExportCmd.MarkFlagRequired("output")
}
