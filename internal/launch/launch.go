// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

// Package launch builds the java invocation that starts the game from an
// installed version and an authenticated session.
package launch

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/smolcraft/smolcraft/internal/auth"
)

// MainClass is the game client entry point.
const MainClass = "net.minecraft.client.main.Main"

// launcherBrand identifies the launcher to the game client.
const launcherBrand = "smolcraft"

// Game describes one game start.
type Game struct {
	// JavaBin is the java executable, resolved through PATH when relative.
	JavaBin string

	// DataDir is the launcher data directory holding libraries, versions
	// and assets. The game itself runs in the .minecraft dir below it.
	DataDir string

	// Version is the installed version id to start.
	Version string

	// VersionType is the catalog channel the version came from.
	VersionType string

	// LauncherVersion is reported to the game client.
	LauncherVersion string

	// Classpath is the assembled java classpath for the version.
	Classpath string

	// Session is the authenticated game session.
	Session *auth.Session
}

// GameDir returns the working directory the game runs in.
func (g *Game) GameDir() string {
	return filepath.Join(g.DataDir, ".minecraft")
}

// Command builds the java command for the current platform. The game dir
// is created if missing so the process has a working directory to start in.
func (g *Game) Command() (*exec.Cmd, error) {
	gameDir := g.GameDir()
	if err := os.MkdirAll(gameDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating game dir: %w", err)
	}

	cmd := exec.Command(g.JavaBin, g.args(runtime.GOOS)...)
	cmd.Dir = gameDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, nil
}

// args assembles the jvm arguments, main class, and game arguments for
// the given platform.
func (g *Game) args(goos string) []string {
	args := []string{
		"-Djava.library.path=" + filepath.Join(g.DataDir, "libraries"),
		"-Dminecraft.launcher.brand=" + launcherBrand,
		"-Dminecraft.launcher.version=" + g.LauncherVersion,
		"-cp", g.Classpath,
		"-XX:HeapDumpPath=MojangTricksIntelDriversForPerformance_javaw.exe_minecraft.exe.heapdump",
	}

	switch goos {
	case "darwin":
		args = append(args, "-XstartOnFirstThread")
	case "windows":
		args = append(args, "-Dos.name=Windows 10", "-Dos.version=10.0")
	}

	args = append(args, MainClass)

	return append(args,
		"--username", g.Session.Username,
		"--version", g.Version,
		"--gameDir", g.GameDir(),
		"--assetsDir", filepath.Join(g.DataDir, "assets"),
		"--assetIndex", g.Version,
		"--uuid", g.Session.UserID,
		"--accessToken", g.Session.AccessToken,
		"--userType", "msa",
		"--versionType", g.VersionType,
	)
}
