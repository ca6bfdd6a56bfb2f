// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package launch

import (
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/smolcraft/smolcraft/internal/auth"
)

func testGame(dataDir string) *Game {
	return &Game{
		JavaBin:         "java",
		DataDir:         dataDir,
		Version:         "1.21.1",
		VersionType:     "release",
		LauncherVersion: "1.0",
		Classpath:       "a.jar:b.jar",
		Session: &auth.Session{
			Username:    "Notch",
			UserID:      "069a79f4-44e9-4726-a5be-fca90e38aaf5",
			AccessToken: "game-token",
		},
	}
}

func TestGame_Args(t *testing.T) {
	dataDir := filepath.Join("/data", "smolcraft")

	t.Run("common arguments", func(t *testing.T) {
		g := NewWithT(t)

		args := testGame(dataDir).args("linux")
		g.Expect(args).To(ContainElements(
			"-Djava.library.path="+filepath.Join(dataDir, "libraries"),
			"-Dminecraft.launcher.brand=smolcraft",
			"-Dminecraft.launcher.version=1.0",
			"-cp", "a.jar:b.jar",
		))

		// jvm args precede the main class, game args follow it.
		mainAt := indexOf(args, MainClass)
		g.Expect(mainAt).To(BeNumerically(">", 0))
		g.Expect(indexOf(args, "-cp")).To(BeNumerically("<", mainAt))
		g.Expect(indexOf(args, "--username")).To(BeNumerically(">", mainAt))

		g.Expect(args).To(ContainElements(
			"--username", "Notch",
			"--version", "1.21.1",
			"--gameDir", filepath.Join(dataDir, ".minecraft"),
			"--assetsDir", filepath.Join(dataDir, "assets"),
			"--assetIndex", "1.21.1",
			"--uuid", "069a79f4-44e9-4726-a5be-fca90e38aaf5",
			"--accessToken", "game-token",
			"--userType", "msa",
			"--versionType", "release",
		))
	})

	t.Run("darwin gets the first-thread flag", func(t *testing.T) {
		g := NewWithT(t)

		args := testGame(dataDir).args("darwin")
		g.Expect(args).To(ContainElement("-XstartOnFirstThread"))
		g.Expect(args).ToNot(ContainElement("-Dos.name=Windows 10"))
	})

	t.Run("windows gets the os spoof properties", func(t *testing.T) {
		g := NewWithT(t)

		args := testGame(dataDir).args("windows")
		g.Expect(args).To(ContainElements("-Dos.name=Windows 10", "-Dos.version=10.0"))
		g.Expect(args).ToNot(ContainElement("-XstartOnFirstThread"))
	})

	t.Run("linux gets neither platform flag", func(t *testing.T) {
		g := NewWithT(t)

		args := testGame(dataDir).args("linux")
		g.Expect(args).ToNot(ContainElement("-XstartOnFirstThread"))
		g.Expect(args).ToNot(ContainElement("-Dos.version=10.0"))
	})
}

func TestGame_Command(t *testing.T) {
	g := NewWithT(t)

	game := testGame(t.TempDir())
	cmd, err := game.Command()
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(cmd.Dir).To(Equal(game.GameDir()))
	g.Expect(game.GameDir()).To(BeADirectory())
}

func indexOf(args []string, want string) int {
	for i, arg := range args {
		if arg == want {
			return i
		}
	}
	return -1
}
