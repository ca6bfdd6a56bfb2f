// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package artifact

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestSHA1Hex(t *testing.T) {
	g := NewWithT(t)

	// Known vector for the empty buffer.
	g.Expect(SHA1Hex(nil)).To(Equal("da39a3ee5e6b4b0d3255bfef95601890afd80709"))
	g.Expect(SHA1Hex([]byte("abc"))).To(Equal("a9993e364706816aba3e25717850c26c9cd0d89d"))
}

func TestVerifySHA1(t *testing.T) {
	t.Run("accepts matching digest", func(t *testing.T) {
		g := NewWithT(t)

		err := VerifySHA1([]byte("abc"), "a9993e364706816aba3e25717850c26c9cd0d89d")
		g.Expect(err).ToNot(HaveOccurred())
	})

	t.Run("rejects mismatching digest", func(t *testing.T) {
		g := NewWithT(t)

		err := VerifySHA1([]byte("abc"), "da39a3ee5e6b4b0d3255bfef95601890afd80709")
		g.Expect(err).To(MatchError(ErrDigestMismatch))
		g.Expect(err.Error()).To(ContainSubstring("expected da39a3ee"))
	})

	t.Run("rejects uppercase hex", func(t *testing.T) {
		g := NewWithT(t)

		err := VerifySHA1([]byte("abc"), "A9993E364706816ABA3E25717850C26C9CD0D89D")
		g.Expect(err).To(MatchError(ErrDigestMismatch))
	})
}
