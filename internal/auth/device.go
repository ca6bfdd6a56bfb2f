// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// grantTypeDeviceCode is the RFC 8628 device-code grant type.
const grantTypeDeviceCode = "urn:ietf:params:oauth:grant-type:device_code"

// deviceFlow obtains an identity-provider token pair interactively: it
// requests a device authorization, presents the user code and
// verification URI through the notification surface, then polls the
// token endpoint until the provider reports success or a terminal error.
func (c *Client) deviceFlow(ctx context.Context, conf *oauth2.Config) (*tokenPair, error) {
	da, err := conf.DeviceAuth(ctx)
	if err != nil {
		return nil, hopError("device authorization", err)
	}

	c.log.Info("waiting for device verification", "uri", da.VerificationURI)
	c.notify(da.UserCode, da.VerificationURI)

	return c.poll(ctx, conf, da)
}

// poll drives the device-flow polling sub-protocol on the server-provided
// interval. The loop exits only on a token pair or a terminal error; the
// provider bounds its lifetime by eventually returning expired_token.
func (c *Client) poll(ctx context.Context, conf *oauth2.Config, da *oauth2.DeviceAuthResponse) (*tokenPair, error) {
	interval := time.Duration(da.Interval) * time.Second
	for {
		if err := sleepContext(ctx, interval); err != nil {
			return nil, hopError("device polling", err)
		}

		pair, err := c.pollOnce(ctx, conf.Endpoint.TokenURL, da.DeviceCode)
		if err == ErrAuthorizationPending {
			continue
		}
		if err != nil {
			return nil, hopError("device polling", err)
		}
		return pair, nil
	}
}

// tokenResponse is the token endpoint success document.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// tokenErrorResponse is the token endpoint structured error document.
type tokenErrorResponse struct {
	Error string `json:"error"`
}

// pollOnce issues a single device-code grant request. It returns
// ErrAuthorizationPending when the user has not finished verifying;
// every other failure, including unknown structured error values and
// transport errors, is terminal.
func (c *Client) pollOnce(ctx context.Context, tokenURL, deviceCode string) (*tokenPair, error) {
	form := url.Values{
		"grant_type":  {grantTypeDeviceCode},
		"client_id":   {c.clientID},
		"device_code": {deviceCode},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusOK {
		var token tokenResponse
		if err := json.Unmarshal(body, &token); err != nil {
			return nil, fmt.Errorf("decoding token response: %w", err)
		}
		if token.AccessToken == "" {
			return nil, ErrEmptyAccessToken
		}
		return &tokenPair{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
		}, nil
	}

	var structured tokenErrorResponse
	if err := json.Unmarshal(body, &structured); err != nil || structured.Error == "" {
		return nil, fmt.Errorf("unexpected status %d from token endpoint", resp.StatusCode)
	}

	switch code := DeviceFlowError(structured.Error); code {
	case ErrAuthorizationPending:
		return nil, ErrAuthorizationPending
	case ErrAuthorizationDeclined, ErrBadVerificationCode, ErrExpiredToken:
		return nil, code
	default:
		// Fail closed on values outside the known set.
		return nil, fmt.Errorf("unexpected token error %q", structured.Error)
	}
}

// sleepContext waits for the given duration or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
