// Package buildinfo contains build information.
//
// Most of the build information is set during compilation by passing
// -ldflags "-X src.devlab.sh/pkg/buildinfo.VersionSuffix=..." to "go build".
package buildinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"src.devlab.sh/pkg/prog"
)

// VersionBase is the version of boxcalc. On development commits, it
// identifies the next release.
const VersionBase = "0.2.0"

// VersionSuffix is appended to VersionBase to build the full version string.
// If empty, it is derived from the VCS data Go embeds in the binary.
var VersionSuffix = ""

// Type of Value.
type Type struct {
	Version   string `json:"version"`
	GoVersion string `json:"goversion"`
}

// Value contains all the build information.
var Value = Type{
	Version:   VersionBase + VersionSuffix,
	GoVersion: runtime.Version(),
}

func init() {
	if VersionSuffix == "" {
		bi, _ := debug.ReadBuildInfo()
		Value.Version = devVersion(VersionBase, bi)
	}
}

func devVersion(next string, bi *debug.BuildInfo) string {
	if bi == nil {
		return next + "-dev.unknown"
	}
	if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return strings.TrimPrefix(bi.Main.Version, "v")
	}

	var revision, vcsTime, modified string
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			vcsTime = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}
	t, err := time.Parse(time.RFC3339, vcsTime)
	if revision == "" || err != nil {
		return next + "-dev.unknown"
	}
	// Mimic the pseudo-versions of Go modules.
	v := fmt.Sprintf("%s-dev.0.%s-%.12s", next, t.UTC().Format("20060102150405"), revision)
	if modified == "true" {
		v += "-dirty"
	}
	return v
}

// Program is the buildinfo subprogram.
type Program struct {
	version, buildinfo bool
	json               *bool
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.version, "version", false, "show version and quit")
	fs.BoolVar(&p.buildinfo, "buildinfo", false, "show build info and quit")
	p.json = fs.JSON()
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	switch {
	case p.buildinfo:
		if *p.json {
			fmt.Fprintln(fds[1], mustToJSON(Value))
		} else {
			fmt.Fprintln(fds[1], "Version:", Value.Version)
			fmt.Fprintln(fds[1], "Go version:", Value.GoVersion)
		}
	case p.version:
		if *p.json {
			fmt.Fprintln(fds[1], mustToJSON(Value.Version))
		} else {
			fmt.Fprintln(fds[1], Value.Version)
		}
	default:
		return prog.NextProgram()
	}
	return nil
}

func mustToJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
