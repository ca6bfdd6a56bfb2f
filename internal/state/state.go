// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

// Package state persists the launcher record between runs: the set of
// installed versions with their assembled classpaths, and the identity
// refresh credential. The record is stored as a single JSON document and
// replaced atomically on save.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the record file name inside the launcher data directory.
const FileName = "state.json"

// Install describes one installed version.
type Install struct {
	// Version is the version id the install belongs to.
	Version string `json:"version"`

	// Classpath is the assembled java classpath for the version.
	Classpath string `json:"classpath,omitempty"`
}

// Record is the persisted launcher state.
type Record struct {
	// Installs lists the completed installations.
	Installs []Install `json:"installs,omitempty"`

	// RefreshToken is the identity-provider refresh credential from the
	// most recent successful login.
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Load reads the record from the given data directory. A missing record
// file yields an empty record.
func Load(dataDir string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &Record{}, nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}

	record := &Record{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	return record, nil
}

// Save writes the record to the given data directory. The file is
// written to a temporary sibling and renamed into place so a crash never
// leaves a half-written record.
func Save(dataDir string, record *Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dataDir, FileName+".*")
	if err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dataDir, FileName)); err != nil {
		return fmt.Errorf("replacing state: %w", err)
	}
	return nil
}

// Installed returns the install entry for the given version.
func (r *Record) Installed(version string) (Install, bool) {
	for _, install := range r.Installs {
		if install.Version == version {
			return install, true
		}
	}
	return Install{}, false
}

// MarkInstalled records a completed installation, replacing any existing
// entry for the same version.
func (r *Record) MarkInstalled(version, classpath string) {
	for i, install := range r.Installs {
		if install.Version == version {
			r.Installs[i].Classpath = classpath
			return
		}
	}
	r.Installs = append(r.Installs, Install{Version: version, Classpath: classpath})
}

// Forget removes the install entry for the given version and reports
// whether one was present.
func (r *Record) Forget(version string) bool {
	for i, install := range r.Installs {
		if install.Version == version {
			r.Installs = append(r.Installs[:i], r.Installs[i+1:]...)
			return true
		}
	}
	return false
}

// Versions returns the installed version ids in record order.
func (r *Record) Versions() []string {
	versions := make([]string, 0, len(r.Installs))
	for _, install := range r.Installs {
		versions = append(versions, install.Version)
	}
	return versions
}
