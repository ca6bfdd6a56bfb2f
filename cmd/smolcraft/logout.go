// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/smolcraft/smolcraft/internal/state"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored sign-in credential",
	Args:  cobra.NoArgs,
	RunE:  logoutCmdRun,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func logoutCmdRun(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	record, err := state.Load(conf.DataDir)
	if err != nil {
		return err
	}

	if record.RefreshToken == "" {
		rootCmd.Println("✔ no stored credential")
		return nil
	}

	record.RefreshToken = ""
	if err := state.Save(conf.DataDir, record); err != nil {
		return err
	}

	rootCmd.Println("✔ signed out")
	return nil
}
