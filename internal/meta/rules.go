// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package meta

import (
	"runtime"
)

// CurrentPlatform maps runtime.GOOS to the platform names used by the
// version manifests.
func CurrentPlatform() string {
	switch runtime.GOOS {
	case "darwin":
		return "osx"
	default:
		return runtime.GOOS
	}
}

// Applicable reports whether the library applies on the given platform.
// A library without rules is universally applicable; with rules it is
// restricted to the single named operating system family. Unknown names
// never match.
func (l Library) Applicable(platform string) bool {
	if len(l.Rules) == 0 {
		return true
	}
	return l.Rules[0].OS.Name == platform
}
