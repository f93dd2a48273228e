package prog_test

import (
	"os"
	"path/filepath"
	"testing"

	"src.devlab.sh/pkg/must"
	. "src.devlab.sh/pkg/prog"
	"src.devlab.sh/pkg/prog/progtest"
	"src.devlab.sh/pkg/testutil"
)

var (
	Test        = progtest.Test
	ThatBoxcalc = progtest.ThatBoxcalc
)

func TestCommonFlagHandling(t *testing.T) {
	logPath := filepath.Join(testutil.TempDir(t), "log")

	Test(t, testProgram{},
		ThatBoxcalc("-bad-flag").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -bad-flag\nUsage:"),
		// -h is treated as a bad flag
		ThatBoxcalc("-h").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -h\nUsage:"),

		ThatBoxcalc("-help").
			WritesStdoutContaining("Usage: boxcalc [flags]"),

		ThatBoxcalc("-log", logPath).DoesNothing(),
		ThatBoxcalc("-log-level", "bogus").
			WritesStderrContaining("Warning:"),
	)

	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file does not exist: %v", err)
	}
}

func TestConfigFlags(t *testing.T) {
	dir := testutil.TempDir(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	must.WriteFile(cfgPath, "session: from-file\ntopic: t\n")

	var p configProgram
	Test(t, &p,
		ThatBoxcalc("-config", cfgPath, "-session", "from-flag"),
	)
	if p.session != "from-flag" || p.topic != "t" {
		t.Errorf("got session %q topic %q", p.session, p.topic)
	}

	must.WriteFile(cfgPath, "session: [")
	Test(t, &configProgram{},
		ThatBoxcalc("-config", cfgPath).
			ExitsWith(2).
			WritesStderrContaining("failed to parse config"),
	)
}

type configProgram struct {
	cf             *ConfigFlags
	session, topic string
}

func (p *configProgram) RegisterFlags(fs *FlagSet) { p.cf = fs.Config() }

func (p *configProgram) Run(fds [3]*os.File, args []string) error {
	cfg, err := p.cf.Load()
	if err != nil {
		return err
	}
	p.session, p.topic = cfg.Session, cfg.Topic
	return nil
}

func TestNoSuitableSubprogram(t *testing.T) {
	Test(t, testProgram{nextProgram: true},
		ThatBoxcalc().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite(t *testing.T) {
	Test(t,
		Composite(testProgram{nextProgram: true}, testProgram{writeOut: "program 2"}),
		ThatBoxcalc().WritesStdout("program 2"),
	)
}

func TestComposite_NoSuitableSubprogram(t *testing.T) {
	Test(t,
		Composite(testProgram{nextProgram: true}, testProgram{nextProgram: true}),
		ThatBoxcalc().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite_CallsCleanupsInReverse(t *testing.T) {
	Test(t,
		Composite(
			cleanupProgram{"cleanup 1\n"}, cleanupProgram{"cleanup 2\n"},
			testProgram{writeOut: "program 3\n"}),
		ThatBoxcalc().WritesStdout("program 3\ncleanup 2\ncleanup 1\n"),
	)
}

type cleanupProgram struct{ out string }

func (cleanupProgram) RegisterFlags(*FlagSet) {}

func (p cleanupProgram) Run([3]*os.File, []string) error {
	return NextProgram(func(fds [3]*os.File) { fds[1].WriteString(p.out) })
}

func TestComposite_PreferEarlierSubprogram(t *testing.T) {
	Test(t,
		Composite(
			testProgram{writeOut: "program 1"}, testProgram{writeOut: "program 2"}),
		ThatBoxcalc().WritesStdout("program 1"),
	)
}

func TestBadUsageError(t *testing.T) {
	Test(t,
		testProgram{returnErr: BadUsage("lorem ipsum")},
		ThatBoxcalc().ExitsWith(2).WritesStderrContaining("lorem ipsum\n"),
	)
}

func TestExitError(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(3)},
		ThatBoxcalc().ExitsWith(3),
	)
}

func TestExitError_0(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(0)},
		ThatBoxcalc().ExitsWith(0),
	)
}

type testProgram struct {
	nextProgram bool
	writeOut    string
	returnErr   error
}

func (p testProgram) RegisterFlags(f *FlagSet) {}

func (p testProgram) Run(fds [3]*os.File, args []string) error {
	if p.nextProgram {
		return NextProgram()
	}
	fds[1].WriteString(p.writeOut)
	return p.returnErr
}
