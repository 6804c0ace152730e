// Package version reports which lspwiki build is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Release builds set these with
// -ldflags "-X lspwiki/internal/version.Version=1.0.0 -X lspwiki/internal/version.Commit=abc123".
// Empty Commit and BuildDate fall back to the VCS stamp of the module build.
var (
	Version   = "0.4.0"
	Commit    = ""
	BuildDate = ""
)

type stamp struct {
	commit string
	date   string
	dirty  bool
}

func buildStamp() stamp {
	s := stamp{commit: Commit, date: BuildDate}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return s
	}
	for _, kv := range info.Settings {
		switch kv.Key {
		case "vcs.revision":
			if s.commit == "" {
				s.commit = kv.Value
			}
		case "vcs.time":
			if s.date == "" {
				s.date = kv.Value
			}
		case "vcs.modified":
			s.dirty = kv.Value == "true"
		}
	}
	return s
}

// Info is the one-line form used by --version, e.g. "0.4.0 (abc1234)".
func Info() string {
	s := buildStamp()
	if len(s.commit) <= 7 {
		return Version
	}
	short := s.commit[:7]
	if s.dirty {
		short += "-dirty"
	}
	return Version + " (" + short + ")"
}

// Full is printed by the version command.
func Full() string {
	s := buildStamp()
	var b strings.Builder
	fmt.Fprintf(&b, "lspwiki %s\n", Version)
	fmt.Fprintf(&b, "commit: %s\n", orUnknown(s.commit))
	fmt.Fprintf(&b, "built:  %s\n", orUnknown(s.date))
	fmt.Fprintf(&b, "go:     %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
