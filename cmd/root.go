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
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/retr0h/gatekeeper/internal/cli"
	"github.com/retr0h/gatekeeper/internal/config"
	"github.com/retr0h/gatekeeper/internal/gate"
	"github.com/retr0h/gatekeeper/internal/telemetry"
)

var (
	appConfig  config.Config
	appFs      = afero.NewOsFs()
	logger     = slog.New(slog.NewTextHandler(os.Stdout, nil))
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gatekeeper",
	Short: "An HTTP request gatekeeper.",
	Long: `An HTTP request gatekeeper that screens, rate limits, authenticates and
audits every request before it reaches application handlers.

https://github.com/retr0h/gatekeeper
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable or disable debug mode")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Enable JSON output")

	rootCmd.PersistentFlags().
		StringP("gatekeeper-file", "f", "/etc/gatekeeper/gatekeeper.yaml", "Path to config file")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("gatekeeperFile", rootCmd.PersistentFlags().Lookup("gatekeeper-file"))
}

func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("gatekeeper")
	viper.SetFs(appFs)
	viper.SetConfigFile(viper.GetString("gatekeeperFile"))

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		cli.LogFatal(logger, "failed to read config", err, "gatekeeperFile", viper.ConfigFileUsed())
	}

	if err := viper.Unmarshal(&appConfig); err != nil {
		cli.LogFatal(logger, "failed to unmarshal config", err, "gatekeeperFile", viper.ConfigFileUsed())
	}

	// Debug enables tracing without an exporter so trace_id appears in logs.
	if appConfig.Debug && !appConfig.Telemetry.Tracing.Enabled {
		appConfig.Telemetry.Tracing.Enabled = true
	}

	config.ApplyDefaults(&appConfig)

	if err := config.Validate(&appConfig); err != nil {
		cli.LogFatal(logger, "validation failed", err, "gatekeeperFile", viper.ConfigFileUsed())
	}
}

func initLogger() {
	logLevel := slog.LevelInfo
	if viper.GetBool("debug") {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.Kitchen,
			NoColor:    !term.IsTerminal(int(os.Stdout.Fd())),
		})
	}

	logger = slog.New(telemetry.NewTraceHandler(handler, gate.RequestIDAttr))
}
