// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// xboxAuthRequest is the request body shared by the Xbox user-token and
// XSTS exchanges. The optional fields belong to one hop each.
type xboxAuthRequest struct {
	Properties   xboxAuthProperties `json:"Properties"`
	RelyingParty string             `json:"RelyingParty"`
	TokenType    string             `json:"TokenType"`
}

type xboxAuthProperties struct {
	AuthMethod string   `json:"AuthMethod,omitempty"`
	SiteName   string   `json:"SiteName,omitempty"`
	RpsTicket  string   `json:"RpsTicket,omitempty"`
	SandboxID  string   `json:"SandboxId,omitempty"`
	UserTokens []string `json:"UserTokens,omitempty"`
}

// xboxAuthResponse is the response body shared by both Xbox hops.
type xboxAuthResponse struct {
	Token         string `json:"Token"`
	DisplayClaims struct {
		XUI []struct {
			UHS string `json:"uhs"`
		} `json:"xui"`
	} `json:"DisplayClaims"`
}

// xboxUserToken exchanges the identity-provider access token for an Xbox
// Live user token.
func (c *Client) xboxUserToken(ctx context.Context, accessToken string) (string, error) {
	req := xboxAuthRequest{
		Properties: xboxAuthProperties{
			AuthMethod: "RPS",
			SiteName:   "user.auth.xboxlive.com",
			RpsTicket:  "d=" + accessToken,
		},
		RelyingParty: "http://auth.xboxlive.com",
		TokenType:    "JWT",
	}

	var resp xboxAuthResponse
	if err := c.postJSON(ctx, c.xboxUserAuthURL, req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// xstsToken exchanges the Xbox user token for an XSTS token scoped to the
// game-services relying party, returning the token and the user-hash
// claim required by the session login.
func (c *Client) xstsToken(ctx context.Context, userToken string) (token, userHash string, err error) {
	req := xboxAuthRequest{
		Properties: xboxAuthProperties{
			SandboxID:  "RETAIL",
			UserTokens: []string{userToken},
		},
		RelyingParty: "rp://api.minecraftservices.com/",
		TokenType:    "JWT",
	}

	var resp xboxAuthResponse
	if err := c.postJSON(ctx, c.xstsAuthURL, req, &resp); err != nil {
		return "", "", err
	}
	if len(resp.DisplayClaims.XUI) == 0 || resp.DisplayClaims.XUI[0].UHS == "" {
		return "", "", ErrNoUserHash
	}
	return resp.Token, resp.DisplayClaims.XUI[0].UHS, nil
}

// sessionLoginRequest is the game-services login body. The identity token
// combines the XSTS user hash and token into a single XBL 3.0 credential.
type sessionLoginRequest struct {
	IdentityToken string `json:"identityToken"`
}

type sessionLoginResponse struct {
	AccessToken string `json:"access_token"`
}

// sessionLogin exchanges the XSTS token and user hash for the
// game-services bearer token.
func (c *Client) sessionLogin(ctx context.Context, userHash, xstsToken string) (string, error) {
	req := sessionLoginRequest{
		IdentityToken: fmt.Sprintf("XBL3.0 x=%s;%s", userHash, xstsToken),
	}

	var resp sessionLoginResponse
	if err := c.postJSON(ctx, c.sessionLoginURL, req, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", ErrEmptyAccessToken
	}
	return resp.AccessToken, nil
}

// profileResponse is the game-services profile document.
type profileResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// profile fetches the account profile using the game-services bearer token.
func (c *Client) profile(ctx context.Context, accessToken string) (*profileResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, c.profileURL)
	}

	var profile profileResponse
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", c.profileURL, err)
	}
	return &profile, nil
}

// postJSON posts a JSON document and decodes the JSON response into out.
func (c *Client) postJSON(ctx context.Context, rawURL string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s: %w", rawURL, err)
	}
	return nil
}
