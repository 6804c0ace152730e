package version

import (
	"runtime"
	"strings"
	"testing"
)

func withBuild(t *testing.T, version, commit, date string) {
	t.Helper()
	v, c, d := Version, Commit, BuildDate
	t.Cleanup(func() { Version, Commit, BuildDate = v, c, d })
	Version, Commit, BuildDate = version, commit, date
}

func TestInfo(t *testing.T) {
	tests := []struct {
		commit string
		want   string
	}{
		{commit: "abc", want: "1.0.0"},
		{commit: "1234567", want: "1.0.0"},
		{commit: "abc1234567890", want: "1.0.0 (abc1234"},
	}
	for _, tt := range tests {
		t.Run(tt.commit, func(t *testing.T) {
			withBuild(t, "1.0.0", tt.commit, "")
			if got := Info(); !strings.HasPrefix(got, tt.want) {
				t.Errorf("Info() = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestFull(t *testing.T) {
	withBuild(t, "1.2.3", "abcdef123456", "2026-01-15")

	got := Full()
	for _, part := range []string{
		"lspwiki 1.2.3",
		"commit: abcdef123456",
		"built:  2026-01-15",
		runtime.Version(),
	} {
		if !strings.Contains(got, part) {
			t.Errorf("Full() = %q, want to contain %q", got, part)
		}
	}
}

func TestOrUnknown(t *testing.T) {
	if got := orUnknown(""); got != "unknown" {
		t.Errorf("orUnknown(\"\") = %q", got)
	}
	if got := orUnknown("x"); got != "x" {
		t.Errorf("orUnknown(\"x\") = %q", got)
	}
}
