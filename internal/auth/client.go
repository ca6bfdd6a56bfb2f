// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// DefaultClientID is the public application id registered for the launcher.
const DefaultClientID = "e8eab6e8-494c-4c9c-a800-2836b8468fda"

// Default service endpoints for the relying-party hops.
const (
	DefaultXboxUserAuthURL = "https://user.auth.xboxlive.com/user/authenticate"
	DefaultXSTSAuthURL     = "https://xsts.auth.xboxlive.com/xsts/authorize"
	DefaultSessionLoginURL = "https://api.minecraftservices.com/authentication/login_with_xbox"
	DefaultProfileURL      = "https://api.minecraftservices.com/minecraft/profile"
)

// oauthScopes are requested on both the refresh and device-code grants.
var oauthScopes = []string{"XboxLive.signin", "offline_access"}

// NotifyFunc presents the device-flow user code and verification URI to
// the user. It is invoked exactly once per interactive login.
type NotifyFunc func(userCode, verificationURI string)

// Session is the outcome of a successful login chain: the account display
// name and stable identifier, the game-services access token valid for
// this run, and the identity-provider refresh credential to persist for
// the next one.
type Session struct {
	Username     string
	UserID       string
	AccessToken  string
	RefreshToken string
}

// clientOptions holds the internal configuration of a Client.
type clientOptions struct {
	clientID        string
	endpoint        oauth2.Endpoint
	xboxUserAuthURL string
	xstsAuthURL     string
	sessionLoginURL string
	profileURL      string
	httpClient      *http.Client
	notify          NotifyFunc
	logger          logr.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

// Opt contains options for NewClient.
var Opt optionBuilder

// optionBuilder is the internal builder for Option functions.
type optionBuilder struct{}

// WithClientID overrides the identity-provider application id.
func (optionBuilder) WithClientID(id string) Option {
	return func(opts *clientOptions) {
		opts.clientID = id
	}
}

// WithEndpoint overrides the identity-provider OAuth endpoint.
func (optionBuilder) WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(opts *clientOptions) {
		opts.endpoint = endpoint
	}
}

// WithXboxEndpoints overrides the Xbox user-token and XSTS endpoints.
func (optionBuilder) WithXboxEndpoints(userAuthURL, xstsURL string) Option {
	return func(opts *clientOptions) {
		opts.xboxUserAuthURL = userAuthURL
		opts.xstsAuthURL = xstsURL
	}
}

// WithSessionEndpoints overrides the game-services login and profile endpoints.
func (optionBuilder) WithSessionEndpoints(loginURL, profileURL string) Option {
	return func(opts *clientOptions) {
		opts.sessionLoginURL = loginURL
		opts.profileURL = profileURL
	}
}

// WithHTTPClient overrides the HTTP client used for every hop.
func (optionBuilder) WithHTTPClient(httpClient *http.Client) Option {
	return func(opts *clientOptions) {
		opts.httpClient = httpClient
	}
}

// WithNotify sets the notification surface for the device flow.
func (optionBuilder) WithNotify(notify NotifyFunc) Option {
	return func(opts *clientOptions) {
		opts.notify = notify
	}
}

// WithLogger sets the logger for chain progress records.
func (optionBuilder) WithLogger(logger logr.Logger) Option {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// Client runs the authentication chain. It owns no persistent state;
// storing the refresh credential between runs is the caller's concern.
type Client struct {
	clientID        string
	endpoint        oauth2.Endpoint
	xboxUserAuthURL string
	xstsAuthURL     string
	sessionLoginURL string
	profileURL      string
	httpClient      *http.Client
	notify          NotifyFunc
	log             logr.Logger
}

// NewClient returns an authentication Client.
func NewClient(opts ...Option) *Client {
	options := &clientOptions{
		clientID:        DefaultClientID,
		endpoint:        microsoft.AzureADEndpoint("consumers"),
		xboxUserAuthURL: DefaultXboxUserAuthURL,
		xstsAuthURL:     DefaultXSTSAuthURL,
		sessionLoginURL: DefaultSessionLoginURL,
		profileURL:      DefaultProfileURL,
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		notify:          func(string, string) {},
		logger:          logr.Discard(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Client{
		clientID:        options.clientID,
		endpoint:        options.endpoint,
		xboxUserAuthURL: options.xboxUserAuthURL,
		xstsAuthURL:     options.xstsAuthURL,
		sessionLoginURL: options.sessionLoginURL,
		profileURL:      options.profileURL,
		httpClient:      options.httpClient,
		notify:          options.notify,
		log:             options.logger,
	}
}

// tokenPair is the identity-provider token set. The access token is
// single-use within this run; the refresh token is long-lived.
type tokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Login runs the full chain and returns the playable session. When a
// refresh credential is supplied it is tried first; any refresh failure,
// whatever the cause, falls back to the interactive device flow.
func (c *Client) Login(ctx context.Context, refreshToken string) (*Session, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	conf := c.oauthConfig()

	var identity *tokenPair
	if refreshToken != "" {
		pair, err := c.refresh(ctx, conf, refreshToken)
		if err != nil {
			c.log.V(1).Info("refresh token rejected, falling back to device flow", "error", err.Error())
		} else {
			identity = pair
		}
	}
	if identity == nil {
		pair, err := c.deviceFlow(ctx, conf)
		if err != nil {
			return nil, err
		}
		identity = pair
	}

	xblToken, err := c.xboxUserToken(ctx, identity.AccessToken)
	if err != nil {
		return nil, hopError("xbox user token", err)
	}

	xstsToken, userHash, err := c.xstsToken(ctx, xblToken)
	if err != nil {
		return nil, hopError("xsts token", err)
	}

	accessToken, err := c.sessionLogin(ctx, userHash, xstsToken)
	if err != nil {
		return nil, hopError("session login", err)
	}

	profile, err := c.profile(ctx, accessToken)
	if err != nil {
		return nil, hopError("profile", err)
	}

	c.log.Info("authenticated", "username", profile.Name)

	return &Session{
		Username:     profile.Name,
		UserID:       canonicalID(profile.ID),
		AccessToken:  accessToken,
		RefreshToken: identity.RefreshToken,
	}, nil
}

// oauthConfig builds the identity-provider OAuth configuration.
func (c *Client) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID: c.clientID,
		Endpoint: c.endpoint,
		Scopes:   oauthScopes,
	}
}

// refresh exchanges a stored refresh credential for a fresh token pair.
func (c *Client) refresh(ctx context.Context, conf *oauth2.Config, refreshToken string) (*tokenPair, error) {
	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, err
	}
	pair := &tokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	// Providers may omit the rotated refresh token; keep the old one.
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	return pair, nil
}

// canonicalID normalizes the profile identifier to canonical UUID form
// when it parses as one; otherwise it is returned verbatim.
func canonicalID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}
