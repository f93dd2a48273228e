package buildinfo

import (
	"fmt"
	"runtime/debug"
	"testing"

	. "src.devlab.sh/pkg/prog/progtest"
	"src.devlab.sh/pkg/tt"
)

func TestProgram(t *testing.T) {
	Test(t, &Program{},
		ThatBoxcalc("-version").WritesStdout(Value.Version+"\n"),
		ThatBoxcalc("-version", "-json").WritesStdout(mustToJSON(Value.Version)+"\n"),

		ThatBoxcalc("-buildinfo").WritesStdout(
			fmt.Sprintf(
				"Version: %v\nGo version: %v\n", Value.Version, Value.GoVersion)),
		ThatBoxcalc("-buildinfo", "-json").WritesStdout(mustToJSON(Value)+"\n"),

		ThatBoxcalc().ExitsWith(2).WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func vcs(revision, time, modified string) *debug.BuildInfo {
	return &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: revision},
		{Key: "vcs.time", Value: time},
		{Key: "vcs.modified", Value: modified},
	}}
}

func TestDevVersion(t *testing.T) {
	const next = "0.42.0"
	tt.Test(t, tt.Fn(devVersion).Named("devVersion"),
		tt.It("falls back to unknown without build info").
			Args(next, nil).Rets("0.42.0-dev.unknown"),
		tt.It("falls back to unknown for a (devel) main module").
			Args(next, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}).
			Rets("0.42.0-dev.unknown"),
		tt.It("uses the suffix of the main module version").
			Args(next, &debug.BuildInfo{Main: debug.Module{Version: "v0.42.0-dev.foobar"}}).
			Rets("0.42.0-dev.foobar"),
		tt.It("builds a pseudo-version from a clean checkout").
			Args(next, vcs("1234567890123456", "2022-04-01T23:59:58Z", "false")).
			Rets("0.42.0-dev.0.20220401235958-123456789012"),
		tt.It("marks a dirty checkout").
			Args(next, vcs("1234567890123456", "2022-04-01T23:59:58Z", "true")).
			Rets("0.42.0-dev.0.20220401235958-123456789012-dirty"),
		tt.It("falls back to unknown for a bad timestamp").
			Args(next, vcs("1234567890123456", "April First", "false")).
			Rets("0.42.0-dev.unknown"),
	)
}
