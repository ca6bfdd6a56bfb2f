// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"golang.org/x/oauth2"
)

// provider simulates the identity provider, the Xbox relying parties,
// and the game services behind one httptest server.
type provider struct {
	server *httptest.Server

	// pendingPolls is the number of authorization_pending responses to
	// serve before the device-code grant succeeds.
	pendingPolls int64
	// terminalError, when set, is served as the structured token error on
	// every device-code poll.
	terminalError string
	// rejectRefresh makes the refresh-token grant fail.
	rejectRefresh bool

	tokenPolls   atomic.Int64
	profileGETs  atomic.Int64
	xboxBody     atomic.Pointer[string]
	sessionBody  atomic.Pointer[string]
	refreshSeen  atomic.Bool
	deviceGrants atomic.Int64
}

func newProvider(t *testing.T) *provider {
	t.Helper()
	p := &provider{}

	mux := http.NewServeMux()
	mux.HandleFunc("/devicecode", func(w http.ResponseWriter, r *http.Request) {
		p.deviceGrants.Add(1)
		fmt.Fprint(w, `{
			"device_code": "dc-123",
			"user_code": "ABCD-EFGH",
			"verification_uri": "https://example.com/link",
			"expires_in": 900,
			"interval": 0
		}`)
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch r.Form.Get("grant_type") {
		case "refresh_token":
			p.refreshSeen.Store(true)
			if p.rejectRefresh {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error": "invalid_grant"}`)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{
				"access_token": "msa-refreshed",
				"refresh_token": "refresh-rotated",
				"token_type": "Bearer",
				"expires_in": 3600
			}`)
		case grantTypeDeviceCode:
			n := p.tokenPolls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			if p.terminalError != "" {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprintf(w, `{"error": %q}`, p.terminalError)
				return
			}
			if n <= p.pendingPolls {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error": "authorization_pending"}`)
				return
			}
			fmt.Fprint(w, `{
				"access_token": "msa-interactive",
				"refresh_token": "refresh-new",
				"token_type": "Bearer",
				"expires_in": 3600
			}`)
		default:
			http.Error(w, "unsupported grant", http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/xbox/user", func(w http.ResponseWriter, r *http.Request) {
		body := readBody(r)
		p.xboxBody.Store(&body)
		fmt.Fprint(w, `{"Token": "xbl-token", "DisplayClaims": {"xui": [{"uhs": "hash-1"}]}}`)
	})
	mux.HandleFunc("/xbox/xsts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Token": "xsts-token", "DisplayClaims": {"xui": [{"uhs": "hash-1"}]}}`)
	})
	mux.HandleFunc("/session/login", func(w http.ResponseWriter, r *http.Request) {
		body := readBody(r)
		p.sessionBody.Store(&body)
		fmt.Fprint(w, `{"access_token": "game-token"}`)
	})
	mux.HandleFunc("/session/profile", func(w http.ResponseWriter, r *http.Request) {
		p.profileGETs.Add(1)
		if r.Header.Get("Authorization") != "Bearer game-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"id": "069a79f444e94726a5befca90e38aaf5", "name": "Notch"}`)
	})

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func readBody(r *http.Request) string {
	body, _ := io.ReadAll(r.Body)
	return string(body)
}

func (p *provider) client(notify NotifyFunc) *Client {
	if notify == nil {
		notify = func(string, string) {}
	}
	return NewClient(
		Opt.WithEndpoint(oauth2.Endpoint{
			AuthURL:       p.server.URL + "/authorize",
			TokenURL:      p.server.URL + "/token",
			DeviceAuthURL: p.server.URL + "/devicecode",
		}),
		Opt.WithXboxEndpoints(p.server.URL+"/xbox/user", p.server.URL+"/xbox/xsts"),
		Opt.WithSessionEndpoints(p.server.URL+"/session/login", p.server.URL+"/session/profile"),
		Opt.WithHTTPClient(p.server.Client()),
		Opt.WithNotify(notify),
	)
}

func TestClient_Login(t *testing.T) {
	t.Run("device flow polls through pending and completes the chain", func(t *testing.T) {
		g := NewWithT(t)

		p := newProvider(t)
		p.pendingPolls = 3

		var notified atomic.Int64
		var userCode, verificationURI string
		client := p.client(func(code, uri string) {
			notified.Add(1)
			userCode, verificationURI = code, uri
		})

		session, err := client.Login(context.Background(), "")
		g.Expect(err).ToNot(HaveOccurred())

		// Three pending responses plus the successful grant.
		g.Expect(p.tokenPolls.Load()).To(Equal(int64(4)))
		g.Expect(notified.Load()).To(Equal(int64(1)))
		g.Expect(userCode).To(Equal("ABCD-EFGH"))
		g.Expect(verificationURI).To(Equal("https://example.com/link"))

		g.Expect(session.Username).To(Equal("Notch"))
		g.Expect(session.UserID).To(Equal("069a79f4-44e9-4726-a5be-fca90e38aaf5"))
		g.Expect(session.AccessToken).To(Equal("game-token"))
		g.Expect(session.RefreshToken).To(Equal("refresh-new"))
	})

	t.Run("refresh fast path skips the device flow", func(t *testing.T) {
		g := NewWithT(t)

		p := newProvider(t)
		client := p.client(nil)

		session, err := client.Login(context.Background(), "refresh-old")
		g.Expect(err).ToNot(HaveOccurred())

		g.Expect(p.refreshSeen.Load()).To(BeTrue())
		g.Expect(p.deviceGrants.Load()).To(BeZero())
		g.Expect(session.RefreshToken).To(Equal("refresh-rotated"))
		g.Expect(session.AccessToken).To(Equal("game-token"))
	})

	t.Run("refresh rejection falls back to the device flow", func(t *testing.T) {
		g := NewWithT(t)

		p := newProvider(t)
		p.rejectRefresh = true
		client := p.client(nil)

		session, err := client.Login(context.Background(), "refresh-stale")
		g.Expect(err).ToNot(HaveOccurred())

		g.Expect(p.refreshSeen.Load()).To(BeTrue())
		g.Expect(p.deviceGrants.Load()).To(Equal(int64(1)))
		g.Expect(p.profileGETs.Load()).To(Equal(int64(1)))
		g.Expect(session.Username).To(Equal("Notch"))
		g.Expect(session.RefreshToken).To(Equal("refresh-new"))
	})

	t.Run("sends the relying-party bodies in wire format", func(t *testing.T) {
		g := NewWithT(t)

		p := newProvider(t)
		client := p.client(nil)

		_, err := client.Login(context.Background(), "")
		g.Expect(err).ToNot(HaveOccurred())

		var xbox map[string]any
		g.Expect(json.Unmarshal([]byte(*p.xboxBody.Load()), &xbox)).To(Succeed())
		g.Expect(xbox["RelyingParty"]).To(Equal("http://auth.xboxlive.com"))
		g.Expect(xbox["TokenType"]).To(Equal("JWT"))
		props := xbox["Properties"].(map[string]any)
		g.Expect(props["AuthMethod"]).To(Equal("RPS"))
		g.Expect(props["SiteName"]).To(Equal("user.auth.xboxlive.com"))
		g.Expect(props["RpsTicket"]).To(Equal("d=msa-interactive"))

		var session map[string]any
		g.Expect(json.Unmarshal([]byte(*p.sessionBody.Load()), &session)).To(Succeed())
		g.Expect(session["identityToken"]).To(Equal("XBL3.0 x=hash-1;xsts-token"))
	})

	t.Run("declined authorization is terminal", func(t *testing.T) {
		g := NewWithT(t)

		p := newProvider(t)
		p.terminalError = "authorization_declined"
		client := p.client(nil)

		_, err := client.Login(context.Background(), "")
		g.Expect(err).To(MatchError(ErrAuthorizationDeclined))
		g.Expect(p.tokenPolls.Load()).To(Equal(int64(1)))
	})

	t.Run("expired device code is terminal", func(t *testing.T) {
		g := NewWithT(t)

		p := newProvider(t)
		p.terminalError = "expired_token"
		client := p.client(nil)

		_, err := client.Login(context.Background(), "")
		g.Expect(err).To(MatchError(ErrExpiredToken))
	})

	t.Run("unknown structured error fails closed", func(t *testing.T) {
		g := NewWithT(t)

		p := newProvider(t)
		p.terminalError = "slow_down_harder"
		client := p.client(nil)

		_, err := client.Login(context.Background(), "")
		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("slow_down_harder"))
		g.Expect(p.tokenPolls.Load()).To(Equal(int64(1)))
	})

	t.Run("expiring context aborts the polling loop", func(t *testing.T) {
		g := NewWithT(t)

		p := newProvider(t)
		p.pendingPolls = 1 << 30
		client := p.client(nil)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Login(ctx, "")
		g.Expect(err).To(MatchError(context.DeadlineExceeded))
		g.Expect(p.tokenPolls.Load()).To(BeNumerically(">", 0))
	})
}

func TestClient_XSTSClaims(t *testing.T) {
	t.Run("missing user hash claim", func(t *testing.T) {
		g := NewWithT(t)

		p := newProvider(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Token": "xsts-token", "DisplayClaims": {"xui": []}}`)
		}))
		t.Cleanup(server.Close)

		client := NewClient(
			Opt.WithXboxEndpoints(p.server.URL+"/xbox/user", server.URL),
			Opt.WithHTTPClient(p.server.Client()),
		)

		_, _, err := client.xstsToken(context.Background(), "xbl-token")
		g.Expect(err).To(MatchError(ErrNoUserHash))
	})
}

func TestCanonicalID(t *testing.T) {
	g := NewWithT(t)

	g.Expect(canonicalID("069a79f444e94726a5befca90e38aaf5")).
		To(Equal("069a79f4-44e9-4726-a5be-fca90e38aaf5"))
	g.Expect(canonicalID("not-a-uuid")).To(Equal("not-a-uuid"))
}
