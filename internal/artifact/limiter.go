// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package artifact

import (
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrentDownloads caps the number of simultaneous in-flight
// downloads across all fetch groups (libraries, client, assets).
const DefaultConcurrentDownloads = 100

// NewLimiter returns a counting admission gate shared by every download.
// A single limiter must be passed to all Fetchers that are part of the
// same installation run.
func NewLimiter(capacity int64) *semaphore.Weighted {
	if capacity < 1 {
		capacity = DefaultConcurrentDownloads
	}
	return semaphore.NewWeighted(capacity)
}
