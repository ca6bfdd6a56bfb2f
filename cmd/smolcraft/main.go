// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smolcraft/smolcraft/internal/config"
)

// VERSION is the launcher version, set at build time.
var VERSION = "1.0.0-dev"

var rootCmd = &cobra.Command{
	Use:           "smolcraft",
	Version:       VERSION,
	SilenceUsage:  true,
	SilenceErrors: true,
	Short:         "A small game launcher",
	Long: `Command line utility for installing and launching the game.
It authenticates with a Microsoft account, downloads and verifies the
game files, and starts the client.`,
}

type rootFlags struct {
	config  string
	dataDir string
	timeout time.Duration
	verbose bool
}

var rootArgs = rootFlags{}

var logger logr.Logger

func init() {
	rootCmd.PersistentFlags().StringVar(&rootArgs.config, "config", "",
		"path to the launcher configuration file")
	rootCmd.PersistentFlags().StringVar(&rootArgs.dataDir, "data-dir", "",
		"override the launcher data directory")
	rootCmd.PersistentFlags().DurationVar(&rootArgs.timeout, "timeout", 15*time.Minute,
		"the length of time to wait before giving up on the current operation")
	rootCmd.PersistentFlags().BoolVar(&rootArgs.verbose, "verbose", false,
		"enable debug logging")
}

func main() {
	cobra.OnInitialize(func() {
		logger = newLogger(rootArgs.verbose)
	})
	rootCmd.SetOut(os.Stdout)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗", err)
		os.Exit(1)
	}
}

// newLogger returns a console logger writing to stderr, keeping stdout
// for command output and the game process.
func newLogger(verbose bool) logr.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	conf := zap.NewDevelopmentConfig()
	conf.Level = zap.NewAtomicLevelAt(level)
	conf.OutputPaths = []string{"stderr"}
	conf.DisableStacktrace = true
	conf.DisableCaller = !verbose

	zapLog, err := conf.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗", err)
		os.Exit(1)
	}
	return zapr.NewLogger(zapLog)
}

// loadConfig loads the launcher configuration and applies the root
// command overrides.
func loadConfig() (*config.Config, error) {
	conf, err := config.Load(rootArgs.config)
	if err != nil {
		return nil, fmt.Errorf("unable to load configuration: %w", err)
	}
	if rootArgs.dataDir != "" {
		conf.DataDir = rootArgs.dataDir
	}
	return conf, nil
}
