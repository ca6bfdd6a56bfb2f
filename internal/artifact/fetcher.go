// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/semaphore"
)

// Task describes a single artifact retrieval: the source URL, the
// manifest-declared SHA-1 digest, and the destination path on disk.
type Task struct {
	URL  string
	SHA1 string
	Dest string
}

// fetcherOptions holds the internal configuration of a Fetcher.
type fetcherOptions struct {
	retries   int
	userAgent string
	logger    logr.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*fetcherOptions)

// FetcherOpt contains options for NewFetcher.
var FetcherOpt fetcherOptionBuilder

// fetcherOptionBuilder is the internal builder for FetcherOption functions.
type fetcherOptionBuilder struct{}

// WithRetries sets the number of retries for download requests.
// The default is zero: transient transport failures are surfaced
// to the caller, never silently retried.
func (fetcherOptionBuilder) WithRetries(retries int) FetcherOption {
	return func(opts *fetcherOptions) {
		opts.retries = retries
	}
}

// WithUserAgent sets the User-Agent header for download requests.
func (fetcherOptionBuilder) WithUserAgent(userAgent string) FetcherOption {
	return func(opts *fetcherOptions) {
		opts.userAgent = userAgent
	}
}

// WithLogger sets the logger used for per-download progress records.
func (fetcherOptionBuilder) WithLogger(logger logr.Logger) FetcherOption {
	return func(opts *fetcherOptions) {
		opts.logger = logger
	}
}

// Fetcher downloads artifacts, verifies their content digest, and writes
// them to disk. All downloads acquire a slot on the shared limiter before
// performing network I/O, so a single Fetcher (or several sharing one
// limiter) never exceeds the configured concurrency cap.
type Fetcher struct {
	http      *retryablehttp.Client
	limiter   *semaphore.Weighted
	userAgent string
	log       logr.Logger
}

// NewFetcher returns a Fetcher gated by the given limiter.
func NewFetcher(limiter *semaphore.Weighted, opts ...FetcherOption) *Fetcher {
	options := &fetcherOptions{
		userAgent: "smolcraft/1.0",
		logger:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(options)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = options.retries
	retryClient.Logger = nil

	return &Fetcher{
		http:      retryClient,
		limiter:   limiter,
		userAgent: options.userAgent,
		log:       options.logger,
	}
}

// Fetch downloads the task's URL, verifies the SHA-1 digest of the full
// byte buffer, writes it to the destination path, and returns that path.
// Nothing is written to disk unless verification passes. The limiter slot
// is released unconditionally, success or failure.
func (f *Fetcher) Fetch(ctx context.Context, task Task) (string, error) {
	if err := f.limiter.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("fetch %s: %w", task.URL, err)
	}
	defer f.limiter.Release(1)

	f.log.V(1).Info("downloading artifact", "url", task.URL, "dest", task.Dest)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", task.URL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", task.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", task.URL, resp.StatusCode)
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", task.URL, err)
	}

	if err := VerifySHA1(buf, task.SHA1); err != nil {
		return "", fmt.Errorf("fetch %s -> %s: %w", task.URL, task.Dest, err)
	}

	if err := os.MkdirAll(filepath.Dir(task.Dest), 0o755); err != nil {
		return "", fmt.Errorf("write %s: %w", task.Dest, err)
	}
	if err := os.WriteFile(task.Dest, buf, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", task.Dest, err)
	}

	return task.Dest, nil
}
