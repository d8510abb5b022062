// Package build reports the version of the running binary. Version is set
// with -ldflags at release time; commit details come from the VCS stamp the
// Go toolchain embeds.
package build

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
)

// Version is overridden with
// -ldflags "-X github.com/amp-labs/duesort/build.Version=v1.2.3".
var Version = "dev" //nolint:gochecknoglobals

// Info contains build metadata for the running binary.
type Info struct {
	Version   string
	GitCommit string
	GitDate   string
	GoVersion string
	Modified  bool
}

// Read collects build metadata. Missing fields are left empty.
func Read() Info {
	info := Info{Version: Version}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	return fromBuildInfo(info, bi)
}

func fromBuildInfo(info Info, bi *debug.BuildInfo) Info {
	info.GoVersion = bi.GoVersion

	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.GitCommit = s.Value
		case "vcs.time":
			info.GitDate = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}

	return info
}

// String renders a one-line version, e.g. "v1.2.0 (abc1234, 2024-01-05T10:00:00Z)".
func (i Info) String() string {
	var details []string

	if i.GitCommit != "" {
		commit := i.GitCommit
		if len(commit) > 7 { //nolint:mnd
			commit = commit[:7]
		}

		if i.Modified {
			commit += "-dirty"
		}

		details = append(details, commit)
	}

	if i.GitDate != "" {
		details = append(details, i.GitDate)
	}

	if len(details) == 0 {
		return i.Version
	}

	return fmt.Sprintf("%s (%s)", i.Version, strings.Join(details, ", "))
}

func (i Info) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("version", i.Version),
		slog.String("git_commit", i.GitCommit),
		slog.String("git_date", i.GitDate),
		slog.String("go_version", i.GoVersion),
		slog.Bool("modified", i.Modified),
	)
}
