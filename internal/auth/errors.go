// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package auth

import (
	"errors"
	"fmt"
)

// DeviceFlowError is the closed set of structured errors returned by the
// identity-provider token endpoint during device-code polling. Values
// outside this set fail closed: they are treated as terminal.
type DeviceFlowError string

const (
	// ErrAuthorizationPending means the user has not completed the
	// verification step yet; the only retryable condition.
	ErrAuthorizationPending DeviceFlowError = "authorization_pending"

	// ErrAuthorizationDeclined means the user refused the authorization
	// request. Terminal.
	ErrAuthorizationDeclined DeviceFlowError = "authorization_declined"

	// ErrBadVerificationCode means the device code was not recognized.
	// Terminal.
	ErrBadVerificationCode DeviceFlowError = "bad_verification_code"

	// ErrExpiredToken means the device code expired before the user
	// completed verification. Terminal.
	ErrExpiredToken DeviceFlowError = "expired_token"
)

// Error implements the error interface.
func (e DeviceFlowError) Error() string {
	return "device flow: " + string(e)
}

// ErrNoUserHash is returned when the XSTS response carries no user-hash claim.
var ErrNoUserHash = errors.New("no user hash claim in token response")

// ErrEmptyAccessToken is returned when a token endpoint responds with a
// success status but no access token.
var ErrEmptyAccessToken = errors.New("token response carries no access token")

// hopError wraps a failure with the name of the chain hop it occurred in.
func hopError(hop string, err error) error {
	return fmt.Errorf("%s: %w", hop, err)
}
