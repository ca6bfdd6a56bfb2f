// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultCatalogURL is the upstream version catalog endpoint.
const DefaultCatalogURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"

// clientOptions holds the internal configuration of a Client.
type clientOptions struct {
	catalogURL string
	retries    int
	userAgent  string
	logger     logr.Logger
}

// ClientOption configures a metadata Client.
type ClientOption func(*clientOptions)

// ClientOpt contains options for NewClient.
var ClientOpt clientOptionBuilder

// clientOptionBuilder is the internal builder for ClientOption functions.
type clientOptionBuilder struct{}

// WithCatalogURL overrides the version catalog endpoint.
func (clientOptionBuilder) WithCatalogURL(url string) ClientOption {
	return func(opts *clientOptions) {
		opts.catalogURL = url
	}
}

// WithRetries sets the number of retries for metadata requests.
func (clientOptionBuilder) WithRetries(retries int) ClientOption {
	return func(opts *clientOptions) {
		opts.retries = retries
	}
}

// WithUserAgent sets the User-Agent header for metadata requests.
func (clientOptionBuilder) WithUserAgent(userAgent string) ClientOption {
	return func(opts *clientOptions) {
		opts.userAgent = userAgent
	}
}

// WithLogger sets the logger for metadata requests.
func (clientOptionBuilder) WithLogger(logger logr.Logger) ClientOption {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// Client fetches version metadata documents: the version catalog, the
// per-version manifest, and the asset index.
type Client struct {
	http       *retryablehttp.Client
	catalogURL string
	userAgent  string
	log        logr.Logger
}

// NewClient returns a metadata Client.
func NewClient(opts ...ClientOption) *Client {
	options := &clientOptions{
		catalogURL: DefaultCatalogURL,
		userAgent:  "smolcraft/1.0",
		logger:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(options)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = options.retries
	retryClient.Logger = nil

	return &Client{
		http:       retryClient,
		catalogURL: options.catalogURL,
		userAgent:  options.userAgent,
		log:        options.logger,
	}
}

// Catalog fetches and parses the version catalog.
func (c *Client) Catalog(ctx context.Context) (*Catalog, error) {
	var catalog Catalog
	if _, err := c.getJSON(ctx, c.catalogURL, &catalog); err != nil {
		return nil, fmt.Errorf("version catalog: %w", err)
	}
	return &catalog, nil
}

// Manifest fetches and parses the metadata manifest of the given version.
func (c *Client) Manifest(ctx context.Context, version Version) (*Manifest, error) {
	var manifest Manifest
	if _, err := c.getJSON(ctx, version.URL, &manifest); err != nil {
		return nil, fmt.Errorf("version manifest %s: %w", version.ID, err)
	}
	return &manifest, nil
}

// AssetIndex fetches the asset index referenced by the manifest and
// returns both the raw document (for caching on disk) and its parsed form.
func (c *Client) AssetIndex(ctx context.Context, manifest *Manifest) ([]byte, *AssetIndex, error) {
	var index AssetIndex
	raw, err := c.getJSON(ctx, manifest.AssetIndex.URL, &index)
	if err != nil {
		return nil, nil, fmt.Errorf("asset index: %w", err)
	}
	return raw, &index, nil
}

// getJSON performs a GET request and decodes the JSON response body into v.
// Decode errors are fatal, never defaulted.
func (c *Client) getJSON(ctx context.Context, url string, v any) ([]byte, error) {
	c.log.V(1).Info("fetching metadata", "url", url)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	return body, nil
}
