package version

import (
	"runtime/debug"
	"strings"
)

type Info struct {
	Module   string
	Revision string
	Time     string
	Modified bool
}

func Read() (info Info, ok bool) {
	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info, false
	}

	info.Module = build.Main.Version

	for _, s := range build.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.time":
			info.Time = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		default:
			continue
		}
	}

	return info, true
}

func (i Info) String() string {
	parts := make([]string, 0, 4)

	if i.Module != "" && i.Module != "(devel)" {
		parts = append(parts, i.Module)
	}

	if i.Revision != "" {
		rev := i.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}

		if i.Modified {
			rev += "-dirty"
		}

		parts = append(parts, "revision "+rev)
	}

	if i.Time != "" {
		parts = append(parts, "at "+i.Time)
	}

	if len(parts) == 0 {
		return "unavailable"
	}

	return strings.Join(parts, " ")
}

// String describes the running binary, e.g.
// "v0.3.0 revision 1f0c2a9d3b4e at 2026-10-01T12:00:00Z".
func String() string {
	info, ok := Read()
	if !ok {
		return "unavailable"
	}

	return info.String()
}
