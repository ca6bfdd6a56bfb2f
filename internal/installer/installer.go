// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

// Package installer implements the content delivery pipeline: it resolves
// a version descriptor into the set of required libraries, the client
// binary, and the asset objects, fetches the missing ones concurrently
// under a shared download cap, verifies each by SHA-1 digest, and
// assembles the classpath string used to launch the game.
package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/smolcraft/smolcraft/internal/artifact"
	"github.com/smolcraft/smolcraft/internal/meta"
)

// DefaultAssetURL is the upstream base URL for content-addressed asset objects.
const DefaultAssetURL = "https://resources.download.minecraft.net"

// installerOptions holds the internal configuration of an Installer.
type installerOptions struct {
	assetURL  string
	platform  string
	separator string
	logger    logr.Logger
}

// Option configures an Installer.
type Option func(*installerOptions)

// Opt contains options for New.
var Opt optionBuilder

// optionBuilder is the internal builder for Option functions.
type optionBuilder struct{}

// WithAssetURL overrides the base URL for asset object downloads.
func (optionBuilder) WithAssetURL(url string) Option {
	return func(opts *installerOptions) {
		opts.assetURL = strings.TrimSuffix(url, "/")
	}
}

// WithPlatform overrides the platform used for library rule evaluation.
func (optionBuilder) WithPlatform(platform string) Option {
	return func(opts *installerOptions) {
		opts.platform = platform
	}
}

// WithSeparator overrides the classpath separator.
func (optionBuilder) WithSeparator(sep string) Option {
	return func(opts *installerOptions) {
		opts.separator = sep
	}
}

// WithLogger sets the logger for pipeline progress records.
func (optionBuilder) WithLogger(logger logr.Logger) Option {
	return func(opts *installerOptions) {
		opts.logger = logger
	}
}

// Installer drives the content delivery pipeline for one install root.
type Installer struct {
	meta      *meta.Client
	fetcher   *artifact.Fetcher
	assetURL  string
	platform  string
	separator string
	log       logr.Logger
}

// New returns an Installer. The fetcher carries the shared concurrency
// limiter; all downloads of one run must go through the same fetcher.
func New(metaClient *meta.Client, fetcher *artifact.Fetcher, opts ...Option) *Installer {
	options := &installerOptions{
		assetURL:  DefaultAssetURL,
		platform:  meta.CurrentPlatform(),
		separator: classpathSeparator(),
		logger:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Installer{
		meta:      metaClient,
		fetcher:   fetcher,
		assetURL:  options.assetURL,
		platform:  options.platform,
		separator: options.separator,
		log:       options.logger,
	}
}

// Install resolves the version manifest, fetches every missing artifact,
// and returns the assembled classpath. Artifacts whose destination path
// already exists are trusted and not re-verified. Library and client
// fetches run concurrently with the asset pipeline; all of them share the
// fetcher's download cap. On failure no classpath is returned and the
// version must not be marked installed.
func (inst *Installer) Install(ctx context.Context, version meta.Version, root string) (string, error) {
	manifest, err := inst.meta.Manifest(ctx, version)
	if err != nil {
		return "", err
	}

	// Partition libraries and the client binary into already-present
	// classpath entries and fetch tasks. The partition is computed once,
	// up front, so no two tasks ever share a destination path.
	var present []string
	var tasks []artifact.Task
	for _, lib := range manifest.Libraries {
		if !lib.Applicable(inst.platform) {
			continue
		}
		dest := filepath.Join(root, "libraries", filepath.FromSlash(lib.Downloads.Artifact.Path))
		if pathExists(dest) {
			present = append(present, dest)
			continue
		}
		tasks = append(tasks, artifact.Task{
			URL:  lib.Downloads.Artifact.URL,
			SHA1: lib.Downloads.Artifact.SHA1,
			Dest: dest,
		})
	}

	clientDest := filepath.Join(root, "versions", version.ID+".jar")
	if pathExists(clientDest) {
		present = append(present, clientDest)
	} else {
		tasks = append(tasks, artifact.Task{
			URL:  manifest.Downloads.Client.URL,
			SHA1: manifest.Downloads.Client.SHA1,
			Dest: clientDest,
		})
	}

	inst.log.Info("installing version",
		"version", version.ID, "cached", len(present), "missing", len(tasks))

	// Every task runs to completion; the first recorded failure is
	// reported after the join. A failing sibling does not cancel
	// in-flight downloads.
	var g errgroup.Group
	fetched := make([]string, len(tasks))
	for i, task := range tasks {
		g.Go(func() error {
			path, err := inst.fetcher.Fetch(ctx, task)
			if err != nil {
				return err
			}
			fetched[i] = path
			return nil
		})
	}

	g.Go(func() error {
		return inst.installAssets(ctx, version, manifest, root)
	})

	if err := g.Wait(); err != nil {
		return "", err
	}

	// Present entries keep manifest order; fetched entries are appended
	// in enqueue order so the classpath is stable across runs.
	return strings.Join(append(present, fetched...), inst.separator), nil
}

// installAssets fetches the asset index, caches it on disk if absent, and
// downloads every missing content-addressed object. Asset objects never
// contribute to the classpath.
func (inst *Installer) installAssets(ctx context.Context, version meta.Version, manifest *meta.Manifest, root string) error {
	raw, index, err := inst.meta.AssetIndex(ctx, manifest)
	if err != nil {
		return err
	}

	indexPath := filepath.Join(root, "assets", "indexes", version.ID+".json")
	if !pathExists(indexPath) {
		if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
			return fmt.Errorf("write %s: %w", indexPath, err)
		}
		if err := os.WriteFile(indexPath, raw, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", indexPath, err)
		}
	}

	var g errgroup.Group
	for name, object := range index.Objects {
		shard, hash, err := object.ShardPath()
		if err != nil {
			return fmt.Errorf("asset %s: %w", name, err)
		}
		dest := filepath.Join(root, "assets", "objects", shard, hash)
		if pathExists(dest) {
			continue
		}
		task := artifact.Task{
			URL:  inst.assetURL + "/" + shard + "/" + hash,
			SHA1: hash,
			Dest: dest,
		}
		g.Go(func() error {
			_, err := inst.fetcher.Fetch(ctx, task)
			return err
		})
	}
	return g.Wait()
}

// classpathSeparator returns the platform classpath separator.
func classpathSeparator() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}

// pathExists reports whether the path exists on disk.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
