package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set at build time with -ldflags "-X github.com/kbukum/modelgate/version.Version=1.2.0".
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info is the build information reported by `modelgate version` and /health.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Dirty     bool   `json:"dirty,omitempty"`
}

// Get merges ldflags values with the VCS stamps the Go toolchain embeds.
// Values set through ldflags win.
func Get() Info {
	info := Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// Short returns "1.2.0", "1.2.0-abc1234" or "1.2.0-abc1234-dirty".
func (i Info) Short() string {
	if i.GitCommit == "" {
		return i.Version
	}
	s := i.Version + "-" + i.GitCommit
	if i.Dirty {
		s += "-dirty"
	}
	return s
}

// String is the multi-line form printed by the version command.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "modelgate %s\n", i.Short())
	if i.BuildTime != "" {
		fmt.Fprintf(&b, "  built:  %s\n", i.BuildTime)
	}
	if i.GoVersion != "" {
		fmt.Fprintf(&b, "  go:     %s\n", i.GoVersion)
	}
	return b.String()
}

// UserAgent is sent to backends on every request.
func UserAgent() string {
	return "modelgate/" + Get().Short()
}
