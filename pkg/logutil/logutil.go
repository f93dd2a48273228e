// Package logutil provides logging utilities.
//
// All loggers share one output, which discards everything until SetOutput or
// SetOutputFile is called.
package logutil

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	out   = &swapWriter{w: io.Discard}
	level = zap.NewAtomicLevelAt(zap.DebugLevel)
	root  = zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), out, level))
)

// GetLogger gets a logger with the given name.
func GetLogger(name string) *zap.SugaredLogger {
	return root.Named(name).Sugar()
}

// SetOutput redirects the output of all loggers obtained with GetLogger to the
// new io.Writer. If the old output was a file opened by SetOutputFile, it is
// closed.
func SetOutput(newout io.Writer) {
	out.swap(newout, false)
}

// SetOutputFile redirects the output of all loggers obtained with GetLogger to
// the named file. If the old output was a file opened by SetOutputFile, it is
// closed. The new file is truncated. SetOutputFile("") is equivalent to
// SetOutput(io.Discard).
func SetOutputFile(fname string) error {
	if fname == "" {
		SetOutput(io.Discard)
		return nil
	}
	file, err := os.OpenFile(fname, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	out.swap(file, true)
	return nil
}

// SetLevel sets the minimum level of messages that get written.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// A zapcore.WriteSyncer whose underlying writer can be replaced while loggers
// are in use.
type swapWriter struct {
	mu    sync.Mutex
	w     io.Writer
	owned bool
}

func (s *swapWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *swapWriter) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.w.(*os.File); ok {
		return f.Sync()
	}
	return nil
}

func (s *swapWriter) swap(w io.Writer, owned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owned {
		s.w.(io.Closer).Close()
	}
	s.w, s.owned = w, owned
}
