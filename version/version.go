package version

import (
	"runtime/debug"
	"strings"
)

// ModulePath is the import path iterkit is published under.
const ModulePath = "github.com/kbukum/iterkit"

// Version overrides the detected module version when set at build time.
var Version = ""

// Info describes the iterkit build linked into the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
	Dirty     bool   `json:"dirty"`
}

var readBuildInfo = debug.ReadBuildInfo

// Get reports the iterkit version. When iterkit is a dependency the version
// comes from the dependency list; when it is the main module the VCS
// settings supply the commit.
func Get() Info {
	info := Info{Version: "dev"}
	bi, ok := readBuildInfo()
	if !ok {
		return applyOverride(info)
	}
	info.GoVersion = bi.GoVersion

	if bi.Main.Path == ModulePath {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			info.Version = v
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Commit = s.Value
				if len(info.Commit) > 7 {
					info.Commit = info.Commit[:7]
				}
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			}
		}
		return applyOverride(info)
	}

	for _, dep := range bi.Deps {
		if dep.Path != ModulePath {
			continue
		}
		if dep.Replace != nil && dep.Replace.Version != "" {
			dep = dep.Replace
		}
		if dep.Version != "" {
			info.Version = dep.Version
		}
		break
	}
	return applyOverride(info)
}

func applyOverride(info Info) Info {
	if Version != "" {
		info.Version = Version
	}
	return info
}

// Short returns the version with the commit and a dirty marker appended
// when known.
func Short() string {
	info := Get()
	parts := []string{info.Version}
	if info.Commit != "" {
		parts = append(parts, info.Commit)
	}
	if info.Dirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "-")
}
