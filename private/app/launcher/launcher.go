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

// Package launcher provides the common setup/teardown harness every go-sdc
// binary runs: flag parsing, config loading, logging setup, and signal
// handling, leaving only the domain-specific Main to the caller.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gosdc/sdc/pkg/log"
	"github.com/gosdc/sdc/pkg/private/serrors"
	"github.com/gosdc/sdc/private/app/command"
	libconfig "github.com/gosdc/sdc/private/config"
)

const cfgConfigFile = "config"

// Application models one go-sdc binary (cmd/sdc-provider, cmd/sdc-consumer).
type Application struct {
	// TOMLConfig holds the application's TOML configuration. Run loads the
	// file named by --config into it before calling Main.
	TOMLConfig libconfig.Config

	// ShortName names the application in logs and the sample/version
	// commands. Defaults to the executable name.
	ShortName string

	// Samplers adds extra "sample" subcommands alongside "sample config".
	Samplers []func(command.Pather) *cobra.Command

	// ExtraCommands adds top-level subcommands beyond the stock
	// completion/sample/version/gendocs set, e.g. sdc-consumer's "probe".
	ExtraCommands []func(command.Pather) *cobra.Command

	// Main is the application's own logic. ctx is cancelled on SIGINT/SIGTERM.
	Main func(ctx context.Context, cfg libconfig.Config) error

	// ErrorWriter is where fatal startup errors are printed. Defaults to
	// os.Stderr.
	ErrorWriter io.Writer

	cmd        *cobra.Command
	configFile string
}

// Run parses os.Args, loads configuration, sets up logging, and calls Main.
// On error it prints to ErrorWriter and exits with status 1; on success (or
// normal shutdown) it returns to the caller.
func (a *Application) Run() {
	if err := a.run(); err != nil {
		fmt.Fprintf(a.errorWriter(), "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func (a *Application) run() error {
	executable := filepath.Base(os.Args[0])
	shortName := a.ShortName
	if shortName == "" {
		shortName = executable
	}

	a.cmd = &cobra.Command{
		Use:           executable,
		Short:         shortName,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd.Context(), shortName)
		},
	}
	a.cmd.Flags().StringVar(&a.configFile, cfgConfigFile, "", "Configuration file (required)")
	if err := a.cmd.MarkFlagRequired(cfgConfigFile); err != nil {
		return err
	}
	a.cmd.AddCommand(
		command.NewCompletion(a.cmd),
		command.NewSample(a.cmd, append([]func(command.Pather) *cobra.Command{
			command.NewSampleConfig(a.TOMLConfig),
		}, a.Samplers...)...),
		command.NewVersion(a.cmd),
		command.NewGendocs(a.cmd),
	)
	for _, extra := range a.ExtraCommands {
		a.cmd.AddCommand(extra(a.cmd))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return a.cmd.ExecuteContext(ctx)
}

func (a *Application) execute(ctx context.Context, shortName string) error {
	os.Setenv("TZ", "UTC")

	if err := libconfig.LoadFile(a.configFile, a.TOMLConfig); err != nil {
		return serrors.WrapStr("loading config from file", err, "file", a.configFile)
	}

	logCfg := a.loggingConfig()
	if err := log.Setup(logCfg); err != nil {
		return serrors.WrapStr("initialize logging", err)
	}

	logger := log.Root().With(zap.String("app", shortName))
	ctx = log.CtxWith(ctx, logger)
	logger.Info("application starting")
	defer logger.Info("application stopped")
	defer log.HandlePanic()

	if a.Main == nil {
		return nil
	}

	// Main and the SIGHUP watcher run as siblings under one errgroup. An
	// errgroup's derived context only cancels on a non-nil return or after
	// Wait returns, never on a goroutine's clean exit, so Main cancels
	// runCtx itself on the way out to stop the watcher promptly.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		return a.Main(gctx, a.TOMLConfig)
	})
	g.Go(func() error {
		a.watchReload(runCtx, logger)
		return nil
	})
	return g.Wait()
}

// watchReload reloads TOMLConfig from disk on SIGHUP until ctx is done. A
// failed reload is logged, not fatal: the previously loaded configuration
// keeps running rather than taking the process down over a bad edit.
func (a *Application) watchReload(ctx context.Context, logger log.Logger) {
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sighup:
			if err := libconfig.LoadFile(a.configFile, a.TOMLConfig); err != nil {
				logger.Warn("config reload failed", zap.Error(err))
				continue
			}
			logger.Info("configuration reloaded")
		}
	}
}

// loggingConfig extracts the logging sub-block from TOMLConfig if it
// exposes one via the Logging field convention used across go-sdc configs;
// otherwise logging defaults apply.
func (a *Application) loggingConfig() log.Config {
	type loggingHolder interface {
		LoggingConfig() log.Config
	}
	if h, ok := a.TOMLConfig.(loggingHolder); ok {
		return h.LoggingConfig()
	}
	return log.Config{}
}

func (a *Application) errorWriter() io.Writer {
	if a.ErrorWriter != nil {
		return a.ErrorWriter
	}
	return os.Stderr
}
