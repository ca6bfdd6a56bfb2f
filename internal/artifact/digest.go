// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package artifact

import (
	"crypto"
	_ "crypto/sha1"
	"errors"
	"fmt"

	"github.com/opencontainers/go-digest"
)

// SHA1 is the digest algorithm used by the game version manifests.
// go-digest only registers the SHA-2 family out of the box.
const SHA1 = digest.Algorithm("sha1")

func init() {
	digest.RegisterAlgorithm(SHA1, crypto.SHA1)
}

// ErrDigestMismatch is returned when the computed digest of a downloaded
// artifact does not match the manifest-declared value.
var ErrDigestMismatch = errors.New("digest mismatch")

// SHA1Hex returns the lowercase hex-encoded SHA-1 digest of buf.
func SHA1Hex(buf []byte) string {
	return SHA1.FromBytes(buf).Encoded()
}

// VerifySHA1 compares the SHA-1 digest of buf against the expected
// hex-encoded value. The comparison is exact and case-sensitive.
func VerifySHA1(buf []byte, expected string) error {
	if actual := SHA1Hex(buf); actual != expected {
		return fmt.Errorf("%w: expected %s, computed %s", ErrDigestMismatch, expected, actual)
	}
	return nil
}
