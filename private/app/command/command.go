// Copyright 2026 The go-sdc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package command provides the subcommands shared by every go-sdc binary:
// completion, sample-config generation, and version.
package command

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gosdc/sdc/private/config"
)

// Pather returns the path under which a command is mounted, needed to
// render examples in help text without hardcoding the binary name.
type Pather interface {
	CommandPath() string
}

// NewCompletion creates a command that emits shell completion scripts.
func NewCompletion(pather Pather) *cobra.Command {
	var shell string
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates shell completion scripts",
		Long: fmt.Sprintf(`Outputs the autocomplete configuration for some shells.

For example, you can add autocompletion for your current bash session using:

    . <( %[1]s completion )
`, pather.CommandPath()),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			switch shell {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return fmt.Errorf("unknown shell: %s", shell)
			}
		},
	}
	cmd.Flags().StringVar(&shell, "shell", "bash", "Shell type (bash|zsh|fish)")
	return cmd
}

// NewVersion creates a command that prints the build version.
func NewVersion(pather Pather) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Shows the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s version %s (%s)\n", pather.CommandPath(), Version, runtime.Version())
			return nil
		},
	}
}

// Version is set at build time via -ldflags. It defaults to "dev" so
// binaries built without the release process still report something
// meaningful.
var Version = "dev"

// NewSample creates the "sample" command grouping every config-sample
// subcommand registered against it.
func NewSample(pather Pather, children ...func(Pather) *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Display sample configuration files",
	}
	for _, c := range children {
		cmd.AddCommand(c(pather))
	}
	return cmd
}

// NewSampleConfig creates a "sample config" command that writes cfg's
// TOML defaults to stdout.
func NewSampleConfig(cfg config.Config) func(Pather) *cobra.Command {
	return func(pather Pather) *cobra.Command {
		return &cobra.Command{
			Use:   "config",
			Short: "Display sample configuration file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg.InitDefaults()
				return config.WriteTo(os.Stdout, cfg)
			},
		}
	}
}
