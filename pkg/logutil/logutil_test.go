package logutil

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"src.devlab.sh/pkg/must"
	"src.devlab.sh/pkg/testutil"
)

func TestLogger(t *testing.T) {
	logger := GetLogger("test")

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(io.Discard) })
	logger.Infow("message", "box", "reps")

	got := buf.String()
	for _, want := range []string{"test", "message", `"box": "reps"`} {
		if !strings.Contains(got, want) {
			t.Errorf("log %q doesn't contain %q", got, want)
		}
	}
}

func TestSetLevel(t *testing.T) {
	logger := GetLogger("test")
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(zapcore.WarnLevel)
	t.Cleanup(func() {
		SetOutput(io.Discard)
		SetLevel(zapcore.DebugLevel)
	})

	logger.Info("quiet")
	logger.Warn("loud")

	got := buf.String()
	if strings.Contains(got, "quiet") || !strings.Contains(got, "loud") {
		t.Errorf("got log %q", got)
	}
}

func TestSetOutputFile(t *testing.T) {
	fname := filepath.Join(testutil.TempDir(t), "log")
	logger := GetLogger("test")
	if err := SetOutputFile(fname); err != nil {
		t.Fatal(err)
	}
	logger.Info("in file")
	SetOutputFile("")

	content := must.ReadFileString(fname)
	if !strings.Contains(content, "in file") {
		t.Errorf("log file has %q", content)
	}
}
