// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"context"
	"fmt"

	"github.com/smolcraft/smolcraft/internal/artifact"
	"github.com/smolcraft/smolcraft/internal/auth"
	"github.com/smolcraft/smolcraft/internal/config"
	"github.com/smolcraft/smolcraft/internal/installer"
	"github.com/smolcraft/smolcraft/internal/meta"
)

// userAgent identifies the launcher to the upstream services.
func userAgent() string {
	return "smolcraft/" + VERSION
}

// newMetaClient returns a metadata client for the configured catalog.
func newMetaClient(conf *config.Config) *meta.Client {
	opts := []meta.ClientOption{
		meta.ClientOpt.WithUserAgent(userAgent()),
		meta.ClientOpt.WithLogger(logger),
	}
	if conf.CatalogURL != "" {
		opts = append(opts, meta.ClientOpt.WithCatalogURL(conf.CatalogURL))
	}
	return meta.NewClient(opts...)
}

// newInstaller returns an installer honoring the configured download cap.
func newInstaller(conf *config.Config, metaClient *meta.Client) *installer.Installer {
	fetcher := artifact.NewFetcher(
		artifact.NewLimiter(int64(conf.MaxDownloads)),
		artifact.FetcherOpt.WithUserAgent(userAgent()),
		artifact.FetcherOpt.WithLogger(logger),
	)

	opts := []installer.Option{
		installer.Opt.WithLogger(logger),
	}
	if conf.AssetURL != "" {
		opts = append(opts, installer.Opt.WithAssetURL(conf.AssetURL))
	}
	return installer.New(metaClient, fetcher, opts...)
}

// newAuthClient returns an authentication client that presents the
// device-flow verification prompt on the terminal.
func newAuthClient(conf *config.Config) *auth.Client {
	opts := []auth.Option{
		auth.Opt.WithLogger(logger),
		auth.Opt.WithNotify(consoleNotify),
	}
	if conf.ClientID != "" {
		opts = append(opts, auth.Opt.WithClientID(conf.ClientID))
	}
	return auth.NewClient(opts...)
}

// consoleNotify prints the device-flow verification prompt on stdout.
func consoleNotify(userCode, verificationURI string) {
	rootCmd.Println(fmt.Sprintf("► to sign in, visit %s and enter the code %s",
		verificationURI, userCode))
}

// resolveVersion resolves the version to operate on: the pinned version
// when one is configured, otherwise the latest on the configured channel.
func resolveVersion(ctx context.Context, metaClient *meta.Client, conf *config.Config) (meta.Version, error) {
	catalog, err := metaClient.Catalog(ctx)
	if err != nil {
		return meta.Version{}, fmt.Errorf("unable to fetch version catalog: %w", err)
	}

	id := conf.Version
	if id == "" {
		id = catalog.Channel(conf.Channel == config.ChannelSnapshot)
	}
	return catalog.Resolve(id)
}
