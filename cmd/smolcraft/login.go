// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smolcraft/smolcraft/internal/state"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with a Microsoft account",
	Long: `The login command runs the account sign-in chain and stores the
resulting refresh credential in the launcher state. A stored credential
is reused silently on the next run; when it is missing or rejected the
command prints a verification code to enter on the Microsoft device
login page.`,
	Args: cobra.NoArgs,
	RunE: loginCmdRun,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func loginCmdRun(cmd *cobra.Command, args []string) error {
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

	session, err := newAuthClient(conf).Login(ctx, record.RefreshToken)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	record.RefreshToken = session.RefreshToken
	if err := state.Save(conf.DataDir, record); err != nil {
		return err
	}

	rootCmd.Println(fmt.Sprintf("✔ signed in as %s", session.Username))
	return nil
}
