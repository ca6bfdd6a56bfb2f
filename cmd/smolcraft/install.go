// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smolcraft/smolcraft/internal/state"
)

var installCmd = &cobra.Command{
	Use:   "install [version]",
	Short: "Download and verify the game files for a version",
	Example: `  # Install the latest release
  smolcraft install

  # Install a specific version
  smolcraft install 1.21.1`,
	Args: cobra.MaximumNArgs(1),
	RunE: installCmdRun,
}

type installFlags struct {
	force bool
}

var installArgs installFlags

func init() {
	installCmd.Flags().BoolVar(&installArgs.force, "force", false,
		"reinstall even when the version is already recorded as installed")
	rootCmd.AddCommand(installCmd)
}

func installCmdRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	conf, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		conf.Version = args[0]
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

	if _, found := record.Installed(version.ID); found && !installArgs.force {
		rootCmd.Println(fmt.Sprintf("✔ version %s is already installed", version.ID))
		return nil
	}

	classpath, err := newInstaller(conf, metaClient).Install(ctx, version, conf.DataDir)
	if err != nil {
		return fmt.Errorf("installation failed: %w", err)
	}

	record.MarkInstalled(version.ID, classpath)
	if err := state.Save(conf.DataDir, record); err != nil {
		return err
	}

	rootCmd.Println(fmt.Sprintf("✔ version %s installed in %s", version.ID, conf.DataDir))
	return nil
}
