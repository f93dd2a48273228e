package shell

import (
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"src.devlab.sh/pkg/env"
	"src.devlab.sh/pkg/httpapi"
	"src.devlab.sh/pkg/identity"
	"src.devlab.sh/pkg/must"
	"src.devlab.sh/pkg/prog"
	"src.devlab.sh/pkg/prog/progtest"
	"src.devlab.sh/pkg/store"
	"src.devlab.sh/pkg/testutil"
)

var ThatBoxcalc = progtest.ThatBoxcalc

func TestEval(t *testing.T) {
	progtest.Test(t, &Program{},
		ThatBoxcalc("-eval", "1+2*3", "10/4").WritesStdout("7\n2.5\n"),
		ThatBoxcalc("-eval").WithStdin("2*(3+4)\n\n").WritesStdout("14\n0\n"),
		ThatBoxcalc("-eval", "1+").
			ExitsWith(2).WritesStderrContaining("Parse error"),
		ThatBoxcalc("-eval", "-json", "1.5").WritesStdout(`{"value":"1.5"}` + "\n"),
		ThatBoxcalc("-eval", "-json", "1+").
			ExitsWith(2).
			WritesStdoutContaining(`[{"fileName":"[expression]","start":2,"end":2,`),
	)
}

func TestInteract(t *testing.T) {
	dir := testutil.TempDir(t)
	testutil.Setenv(t, env.BOXCALC_API_URL, "")
	testutil.Setenv(t, env.BOXCALC_RELAY_ADDR, "")
	base := []string{"-offline", "-data-dir", dir,
		"-config", filepath.Join(dir, "boxcalc.yaml")}
	that := func(extra ...string) progtest.Case {
		return ThatBoxcalc(append(append([]string(nil), base...), extra...)...)
	}

	progtest.Test(t, &Program{},
		that().WithStdin("reps.left = 10\nreps.right = 2\n").
			WritesStdoutContaining("Times: 5"),
		that().WithStdin("reps.left = 10\nreps.right = 2\nbind reps\nquit\nreps.left = 1\n").
			WritesStdoutContaining("  5 @reps * <duration>"),
		that().WithStdin("frobnicate\n").
			WritesStdoutContaining("Repetitions [reps]").
			WritesStderrContaining(`unknown command "frobnicate"`),
		that().WithStdin("help\n").
			WritesStdoutContaining("Commands:"),
		that().WithStdin("sessions\n").
			WritesStderrContaining("no snapshot endpoint configured"),
		that("extra").
			ExitsWith(2).WritesStderrContaining("arguments are only allowed with -eval"),
	)
}

func TestInteract_CreatesClientID(t *testing.T) {
	dir := testutil.TempDir(t)
	exit, _, stderr := progtest.Run(&Program{}, "-offline", "-data-dir", dir,
		"-config", filepath.Join(dir, "boxcalc.yaml"))
	if exit != 0 {
		t.Fatalf("exit %d, stderr %q", exit, stderr)
	}
	if strings.Contains(stderr, "client id") {
		t.Errorf("got warning %q", stderr)
	}
}

func TestInteract_Sessions(t *testing.T) {
	dir := testutil.TempDir(t)
	testutil.Setenv(t, env.BOXCALC_RELAY_ADDR, "")
	st := store.MustTempStore(t)
	must.OK(st.SetSnapshot("other", []byte(`{"boxes":{}}`)))
	srv := httptest.NewServer(httpapi.NewMux(st))
	defer srv.Close()
	that := func() progtest.Case {
		return ThatBoxcalc("-api", srv.URL, "-data-dir", dir,
			"-config", filepath.Join(dir, "boxcalc.yaml"))
	}

	progtest.Test(t, &Program{Identity: identity.Static("test")},
		that().WithStdin("sessions\n").WritesStdoutContaining("other\n"),
		that().WithStdin("forget other\n").
			WritesStdoutContaining("Forgot session other"),
		that().WithStdin("sessions\n").WritesStdoutContaining("No saved sessions"),
	)
}

type failingIdentity struct{}

func (failingIdentity) ClientID() (string, error) {
	return "", errors.New("no id today")
}

func TestInteract_IdentityFailure(t *testing.T) {
	dir := testutil.TempDir(t)
	exit, _, stderr := progtest.Run(&Program{Identity: failingIdentity{}},
		"-offline", "-data-dir", dir, "-config", filepath.Join(dir, "boxcalc.yaml"))
	if exit != 0 {
		t.Fatalf("exit %d, stderr %q", exit, stderr)
	}
	if !strings.Contains(stderr, "cannot get client id: no id today") {
		t.Errorf("got stderr %q, want client id warning", stderr)
	}
}

func TestInteract_StaticIdentity(t *testing.T) {
	dir := testutil.TempDir(t)
	dataDir := filepath.Join(dir, "data")
	exit, _, stderr := progtest.Run(&Program{Identity: identity.Static("fixed")},
		"-offline", "-data-dir", dataDir, "-config", filepath.Join(dir, "boxcalc.yaml"))
	if exit != 0 {
		t.Fatalf("exit %d, stderr %q", exit, stderr)
	}
	if _, err := os.Stat(dataDir); !os.IsNotExist(err) {
		t.Errorf("data dir was created, Stat returned %v", err)
	}
}

var _ prog.Program = (*Program)(nil)
