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

	masker "github.com/ggwhite/go-masker/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/retr0h/gatekeeper/internal/cli"
	"github.com/retr0h/gatekeeper/internal/config"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

// configShowCmd represents the configShow command.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	Long: `Print the configuration after defaults are applied and environment
overrides are merged. Signing keys and bearer tokens are masked.
`,
	Run: func(_ *cobra.Command, _ []string) {
		masked, err := maskConfig(appConfig)
		if err != nil {
			cli.LogFatal(logger, "failed to mask config", err)
		}

		out, err := yaml.Marshal(masked)
		if err != nil {
			cli.LogFatal(logger, "failed to encode config", err)
		}

		fmt.Println()
		cli.PrintKV("File", viper.ConfigFileUsed())
		cli.PrintKV(
			"Max Upload", cli.FormatBytes(appConfig.Gate.MaxUploadBytes),
			"Audit Capacity", fmt.Sprintf("%d", appConfig.Audit.Capacity),
		)
		fmt.Println()
		fmt.Print(string(out))
	},
}

func maskConfig(
	cfg config.Config,
) (*config.Config, error) {
	m := masker.NewMaskerMarshaler()

	t, err := m.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("masking config: %w", err)
	}

	masked, ok := t.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("masking config: unexpected type %T", t)
	}

	return masked, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}
