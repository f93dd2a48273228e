package prog

import (
	"flag"
	"fmt"
	"io"

	"go.uber.org/zap/zapcore"
	"src.devlab.sh/pkg/config"
	"src.devlab.sh/pkg/logutil"
)

// FlagSet wraps a [flag.FlagSet] to provide flags shared by multiple
// subprograms, registered on first use.
type FlagSet struct {
	*flag.FlagSet
	json     *bool
	config   *ConfigFlags
	logSet   bool
	levelSet bool
}

func newFlagSet() *FlagSet {
	fs := flag.NewFlagSet("boxcalc", flag.ContinueOnError)
	// Error and usage will be printed explicitly.
	fs.SetOutput(io.Discard)
	return &FlagSet{FlagSet: fs}
}

// JSON returns a pointer to the value of the -json flag.
func (fs *FlagSet) JSON() *bool {
	if fs.json == nil {
		var json bool
		fs.BoolVar(&json, "json", false,
			"show the output from -buildinfo, -version or -eval in JSON")
		fs.json = &json
	}
	return fs.json
}

// ConfigFlags keeps the -config flag and the flags that override fields of
// the configuration file.
type ConfigFlags struct {
	fs *FlagSet

	Path    string
	Session string
	DataDir string
}

// Config registers and returns the configuration flags.
func (fs *FlagSet) Config() *ConfigFlags {
	if fs.config == nil {
		cf := &ConfigFlags{fs: fs}
		fs.StringVar(&cf.Path, "config", config.DefaultPath(),
			"path to the configuration file")
		fs.StringVar(&cf.Session, "session", "",
			"id of the shared calculator state; overrides the configuration file")
		fs.StringVar(&cf.DataDir, "data-dir", "",
			"directory for the client id and the database; overrides the configuration file")
		fs.config = cf
	}
	return fs.config
}

// Load loads the configuration file and applies flag overrides. Logging
// settings from the configuration apply unless -log or -log-level was given.
func (cf *ConfigFlags) Load() (*config.Config, error) {
	cfg, err := config.Load(cf.Path)
	if err != nil {
		return nil, err
	}
	if cf.Session != "" {
		cfg.Session = cf.Session
	}
	if cf.DataDir != "" {
		cfg.DataDir = cf.DataDir
	}
	if !cf.fs.logSet && cfg.Log.File != "" {
		if err := logutil.SetOutputFile(cfg.Log.File); err != nil {
			return nil, err
		}
	}
	if !cf.fs.levelSet && cfg.Log.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		logutil.SetLevel(level)
	}
	return cfg, nil
}
