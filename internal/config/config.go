// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

// Package config holds the launcher configuration schema and loader.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/smolcraft/smolcraft/internal/artifact"
)

// Release channels selectable through the configuration.
const (
	ChannelRelease  = "release"
	ChannelSnapshot = "snapshot"
)

// Config is the launcher configuration.
type Config struct {
	// DataDir is the root directory for game files and launcher state.
	// Defaults to the smolcraft directory under the OS config dir.
	DataDir string `json:"dataDir,omitempty"`

	// Channel selects which catalog channel to follow when no version
	// is pinned, either release or snapshot. Defaults to release.
	Channel string `json:"channel,omitempty"`

	// Version pins a specific version id, overriding the channel.
	Version string `json:"version,omitempty"`

	// ClientID overrides the identity-provider application id.
	ClientID string `json:"clientId,omitempty"`

	// MaxDownloads caps the number of concurrent artifact downloads.
	MaxDownloads int `json:"maxDownloads,omitempty"`

	// JavaBin is the java executable used to start the game.
	// Defaults to java from PATH.
	JavaBin string `json:"javaBin,omitempty"`

	// CatalogURL overrides the version catalog endpoint.
	CatalogURL string `json:"catalogUrl,omitempty"`

	// AssetURL overrides the asset download endpoint.
	AssetURL string `json:"assetUrl,omitempty"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Channel != "" && c.Channel != ChannelRelease && c.Channel != ChannelSnapshot {
		return fmt.Errorf("invalid channel '%s', must be '%s' or '%s'",
			c.Channel, ChannelRelease, ChannelSnapshot)
	}
	if c.MaxDownloads < 0 {
		return fmt.Errorf("invalid maxDownloads %d, must not be negative", c.MaxDownloads)
	}
	for _, endpoint := range []string{c.CatalogURL, c.AssetURL} {
		if endpoint == "" {
			continue
		}
		if u, err := url.Parse(endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid endpoint URL '%s'", endpoint)
		}
	}
	return nil
}

// ApplyDefaults applies default values to missing fields.
func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.Channel == "" {
		c.Channel = ChannelRelease
	}
	if c.MaxDownloads == 0 {
		c.MaxDownloads = artifact.DefaultConcurrentDownloads
	}
	if c.JavaBin == "" {
		c.JavaBin = "java"
	}
}

// defaultDataDir resolves the launcher data directory under the OS
// config dir, falling back to a dotted dir in the home directory.
func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "smolcraft")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".smolcraft"
	}
	return filepath.Join(home, ".smolcraft")
}
