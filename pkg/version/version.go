// Package version reports build information for metareg binaries.
package version

import (
	"log/slog"
	"runtime"
	"runtime/debug"
)

var (
	Version   string // Set via ldflags.
	BuildDate string // Set via ldflags.

	Revision  = getRevision()
	GoVersion = runtime.Version()
)

// GetVersion returns [Version], or [Revision] for builds without ldflags.
func GetVersion() string {
	if Version != "" {
		return Version
	}

	return Revision
}

// LogValue returns the build information as a [slog.Value] group.
func LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("version", GetVersion()),
		slog.String("revision", Revision),
		slog.String("go", GoVersion),
		slog.String("platform", runtime.GOOS+"/"+runtime.GOARCH),
	}
	if BuildDate != "" {
		attrs = append(attrs, slog.String("date", BuildDate))
	}

	return slog.GroupValue(attrs...)
}

func getRevision() string {
	rev := "unknown"

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return rev
	}

	modified := false

	for _, v := range buildInfo.Settings {
		switch v.Key {
		case "vcs.revision":
			rev = v.Value[:min(len(v.Value), 7)]

		case "vcs.modified":
			modified = v.Value == "true"
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}
