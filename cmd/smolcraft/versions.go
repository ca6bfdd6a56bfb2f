// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smolcraft/smolcraft/internal/state"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the published game versions",
	Example: `  # List the newest published versions
  smolcraft versions

  # List more of them
  smolcraft versions --limit=50`,
	Args: cobra.NoArgs,
	RunE: versionsCmdRun,
}

type versionsFlags struct {
	limit     int
	snapshots bool
}

var versionsArgs versionsFlags

func init() {
	versionsCmd.Flags().IntVar(&versionsArgs.limit, "limit", 20,
		"maximum number of versions to list, 0 for all")
	versionsCmd.Flags().BoolVar(&versionsArgs.snapshots, "snapshots", false,
		"include snapshot and historical versions")
	rootCmd.AddCommand(versionsCmd)
}

func versionsCmdRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	conf, err := loadConfig()
	if err != nil {
		return err
	}

	record, err := state.Load(conf.DataDir)
	if err != nil {
		return err
	}

	catalog, err := newMetaClient(conf).Catalog(ctx)
	if err != nil {
		return fmt.Errorf("unable to fetch version catalog: %w", err)
	}

	rootCmd.Println(fmt.Sprintf("latest release:  %s", catalog.Latest.Release))
	rootCmd.Println(fmt.Sprintf("latest snapshot: %s", catalog.Latest.Snapshot))
	rootCmd.Println("")

	listed := 0
	for _, version := range catalog.Versions {
		if !versionsArgs.snapshots && version.Type != "" && version.Type != "release" {
			continue
		}
		if versionsArgs.limit > 0 && listed >= versionsArgs.limit {
			rootCmd.Println("... use --limit=0 to list all")
			break
		}
		marker := " "
		if _, found := record.Installed(version.ID); found {
			marker = "✔"
		}
		rootCmd.Println(fmt.Sprintf("%s %s", marker, version.ID))
		listed++
	}
	return nil
}
