// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package meta

import (
	"fmt"
)

// Catalog is the upstream version catalog listing every published
// game version and the ids of the latest release and snapshot.
type Catalog struct {
	Latest   Latest    `json:"latest"`
	Versions []Version `json:"versions"`
}

// Latest holds the ids of the newest release and snapshot versions.
type Latest struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

// Version identifies one game version and the URL of its metadata manifest.
type Version struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
	URL  string `json:"url"`
}

// Resolve returns the catalog entry with the given id.
func (c *Catalog) Resolve(id string) (Version, error) {
	for _, v := range c.Versions {
		if v.ID == id {
			return v, nil
		}
	}
	return Version{}, fmt.Errorf("version %q not found in catalog", id)
}

// Channel returns the id of the latest version on the given channel.
func (c *Catalog) Channel(snapshot bool) string {
	if snapshot {
		return c.Latest.Snapshot
	}
	return c.Latest.Release
}

// Manifest is the parsed per-version metadata document. It is read-only
// once fetched.
type Manifest struct {
	Libraries  []Library       `json:"libraries"`
	Downloads  Downloads       `json:"downloads"`
	AssetIndex AssetIndexEntry `json:"assetIndex"`
}

// Downloads holds the version's binary downloads.
type Downloads struct {
	Client Artifact `json:"client"`
}

// Library is one code dependency of the game client. An entry with rules
// applies only on the named operating system family.
type Library struct {
	Downloads LibraryDownloads `json:"downloads"`
	Rules     []Rule           `json:"rules,omitempty"`
}

// LibraryDownloads wraps the library's artifact descriptor.
type LibraryDownloads struct {
	Artifact Artifact `json:"artifact"`
}

// Artifact describes a downloadable file: its repository-relative path,
// SHA-1 digest, and source URL. The client binary omits the path.
type Artifact struct {
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1"`
	URL  string `json:"url"`
}

// Rule restricts a library to one operating system family.
type Rule struct {
	OS OSRule `json:"os"`
}

// OSRule names the operating system family a rule applies to,
// one of "linux", "windows" or "osx".
type OSRule struct {
	Name string `json:"name"`
}

// AssetIndexEntry points at the version's asset index document.
type AssetIndexEntry struct {
	URL string `json:"url"`
}

// AssetIndex is the parsed asset index: a map of logical asset names to
// content-addressed objects.
type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
}

// AssetObject is one asset, identified solely by its SHA-1 hash. The
// physical storage path is derived from the hash, not the logical name.
type AssetObject struct {
	Hash string `json:"hash"`
}

// ShardPath returns the content-addressed relative path of the object:
// the first two hex characters as a shard directory, then the full hash.
func (o AssetObject) ShardPath() (string, string, error) {
	if len(o.Hash) < 2 {
		return "", "", fmt.Errorf("invalid asset hash %q", o.Hash)
	}
	return o.Hash[:2], o.Hash, nil
}
