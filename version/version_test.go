package version

import (
	"strings"
	"testing"
)

func restore(t *testing.T) {
	t.Helper()
	v, c, b := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = v, c, b })
}

func TestGet_LdflagsWin(t *testing.T) {
	restore(t)
	Version = "1.4.0"
	GitCommit = "0123456789abcdef"
	BuildTime = "2026-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.4.0" {
		t.Errorf("Version = %q", info.Version)
	}
	if info.GitCommit != "0123456" {
		t.Errorf("commit not shortened: %q", info.GitCommit)
	}
	if info.BuildTime != "2026-01-15T10:30:00Z" {
		t.Errorf("BuildTime = %q", info.BuildTime)
	}
}

func TestInfo_Short(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
		{Info{Version: "1.0.0", Dirty: true}, "1.0.0"},
	}
	for _, tc := range tests {
		if got := tc.info.Short(); got != tc.want {
			t.Errorf("Short() = %q, want %q", got, tc.want)
		}
	}
}

func TestInfo_String(t *testing.T) {
	s := Info{Version: "1.0.0", BuildTime: "2026-01-15T10:30:00Z", GoVersion: "go1.26.0"}.String()
	for _, want := range []string{"modelgate 1.0.0", "built:  2026-01-15T10:30:00Z", "go:     go1.26.0"} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in:\n%s", want, s)
		}
	}
}

func TestUserAgent(t *testing.T) {
	restore(t)
	Version = "2.0.0"
	GitCommit = "feedbee"
	if got := UserAgent(); !strings.HasPrefix(got, "modelgate/2.0.0-feedbee") {
		t.Errorf("UserAgent() = %q", got)
	}
}
