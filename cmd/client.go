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
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/retr0h/gatekeeper/internal/cli"
	"github.com/retr0h/gatekeeper/internal/client"
	"github.com/retr0h/gatekeeper/internal/telemetry"
)

var (
	adminClient    *client.Client
	tracerShutdown telemetry.ShutdownFunc
)

// clientCmd represents the client command.
var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Call the gatekeeper admin API",
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if appConfig.API.Client.Security.BearerToken == "" {
			cli.LogFatal(logger, "api.client.security.bearer_token is required", nil)
		}

		var err error
		tracerShutdown, err = telemetry.InitTracer(
			cmd.Context(),
			"gatekeeper-cli",
			buildVersion().GitVersion,
			appConfig.Telemetry.Tracing,
		)
		if err != nil {
			cli.LogFatal(logger, "failed to initialize tracer", err)
		}

		logger.Debug(
			"client configuration",
			slog.String("config_file", viper.ConfigFileUsed()),
			slog.Bool("debug", appConfig.Debug),
			slog.String("api.client.url", appConfig.API.Client.URL),
		)

		adminClient = client.New(logger, appConfig)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if tracerShutdown != nil {
			_ = tracerShutdown(context.Background())
		}
	},
}

// handleClientError logs err, distinguishing API responses from transport
// failures, and exits.
func handleClientError(
	err error,
) {
	var respErr *client.ResponseError
	if errors.As(err, &respErr) {
		cli.HandleErrorResponse(logger, respErr.StatusCode, respErr.Message)
		osExit(1)
		return
	}

	cli.LogFatal(logger, "API request failed", err)
}

func init() {
	rootCmd.AddCommand(clientCmd)

	clientCmd.PersistentFlags().
		StringP("url", "", "http://localhost:8080", "URL the client will connect to")
	clientCmd.PersistentFlags().
		StringP("bearer-token", "", "", "Bearer token used for authentication")

	_ = viper.BindPFlag("api.client.url", clientCmd.PersistentFlags().Lookup("url"))
	_ = viper.BindPFlag(
		"api.client.security.bearer_token",
		clientCmd.PersistentFlags().Lookup("bearer-token"),
	)
}
