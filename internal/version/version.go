// Package version reports which jsps build is running.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
)

// Version is the released semantic version
const Version = "0.3.0"

// Overridden by release builds:
// -ldflags "-X github.com/standardbeagle/jsps/internal/version.GitCommit=$(git rev-parse HEAD)"
var (
	GitCommit = "unknown"
	BuildDate = "development"
)

// FullInfo is the line printed by `jsps version`
func FullInfo() string {
	return fmt.Sprintf("jsps %s (commit %s, built %s, build %s)", Version, shortCommit(), BuildDate, BuildID())
}

func shortCommit() string {
	if len(GitCommit) > 12 {
		return GitCommit[:12]
	}
	return GitCommit
}

var buildID = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version + "-" + shortCommit()
	}

	var b strings.Builder
	b.WriteString(info.GoVersion)
	b.WriteString(info.Main.Path)
	b.WriteString(info.Main.Version)
	for _, s := range info.Settings {
		if strings.HasPrefix(s.Key, "vcs.") {
			b.WriteString(s.Key + "=" + s.Value)
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
})

// BuildID fingerprints the running binary from the toolchain, module
// version and VCS stamp embedded by the Go linker
func BuildID() string {
	return buildID()
}
