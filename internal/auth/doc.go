// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

// Package auth implements the credential exchange chain that turns a
// Microsoft account into a playable game session:
//
//   - a device-code OAuth flow (RFC 8628) against the Microsoft identity
//     platform, with a refresh-token fast path that transparently falls
//     back to the interactive flow on any failure
//   - an Xbox Live user-token exchange via a relying-party request
//   - an XSTS token exchange against the game-services relying party
//   - a game-services login combining the XSTS token and user-hash claim
//     into a single bearer credential
//   - a profile fetch yielding the account display name and identifier
//
// The two entry paths converge after the identity-provider token is
// obtained; every downstream hop is shared and every downstream failure
// is terminal. The only retried condition in the whole chain is the
// device flow's authorization_pending response, which is re-polled on
// the server-provided interval until the provider reports success or a
// terminal error such as expired_token.
package auth
