// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smolcraft/smolcraft/internal/auth"
	"github.com/smolcraft/smolcraft/internal/config"
	"github.com/smolcraft/smolcraft/internal/launch"
	"github.com/smolcraft/smolcraft/internal/state"
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Install the configured version if needed, sign in, and start the game",
	Example: `  # Launch the latest release
  smolcraft launch

  # Launch the latest snapshot
  smolcraft launch --snapshot

  # Launch a pinned version
  smolcraft launch --game-version=1.21.1`,
	Args: cobra.NoArgs,
	RunE: launchCmdRun,
}

type launchFlags struct {
	gameVersion string
	snapshot    bool
}

var launchArgs launchFlags

func init() {
	launchCmd.Flags().StringVar(&launchArgs.gameVersion, "game-version", "",
		"pin a specific game version instead of following the channel")
	launchCmd.Flags().BoolVar(&launchArgs.snapshot, "snapshot", false,
		"follow the snapshot channel instead of release")
	rootCmd.AddCommand(launchCmd)
}

func launchCmdRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, rootArgs.timeout)
	defer cancel()

	conf, err := loadConfig()
	if err != nil {
		return err
	}
	if launchArgs.gameVersion != "" {
		conf.Version = launchArgs.gameVersion
	}
	if launchArgs.snapshot {
		conf.Channel = config.ChannelSnapshot
	}

	record, err := state.Load(conf.DataDir)
	if err != nil {
		return err
	}

	metaClient := newMetaClient(conf)
	version, err := resolveVersion(ctx, metaClient, conf)
	if err != nil {
		return err
	}
	logger.Info("launching", "version", version.ID, "channel", conf.Channel)

	// Installation and sign-in are independent; run them side by side
	// and let both finish before acting on either result.
	var session *auth.Session
	classpath := ""
	if install, found := record.Installed(version.ID); found {
		logger.Info("version is already installed", "version", version.ID)
		classpath = install.Classpath
	}

	var g errgroup.Group
	if classpath == "" {
		g.Go(func() error {
			cp, err := newInstaller(conf, metaClient).Install(ctx, version, conf.DataDir)
			if err != nil {
				return fmt.Errorf("installation failed: %w", err)
			}
			classpath = cp
			return nil
		})
	}
	g.Go(func() error {
		s, err := newAuthClient(conf).Login(ctx, record.RefreshToken)
		if err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		session = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	record.MarkInstalled(version.ID, classpath)
	record.RefreshToken = session.RefreshToken
	if err := state.Save(conf.DataDir, record); err != nil {
		return err
	}

	game := &launch.Game{
		JavaBin:         conf.JavaBin,
		DataDir:         conf.DataDir,
		Version:         version.ID,
		VersionType:     conf.Channel,
		LauncherVersion: VERSION,
		Classpath:       classpath,
		Session:         session,
	}

	proc, err := game.Command()
	if err != nil {
		return err
	}

	logger.Info("starting game", "version", version.ID, "username", session.Username)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("unable to start game: %w", err)
	}
	return nil
}
