// Package shell is the entry point for the terminal interface of boxcalc.
package shell

import (
	"os"

	"src.devlab.sh/pkg/config"
	"src.devlab.sh/pkg/identity"
	"src.devlab.sh/pkg/logutil"
	"src.devlab.sh/pkg/prog"
)

var logger = logutil.GetLogger("shell")

// Program is the shell subprogram. It is suitable for any invocation, so it
// should come last in a composite.
type Program struct {
	// Identity provides the client id of interactive sessions. If nil, the
	// id is kept in a file in the data directory.
	Identity identity.Provider

	eval bool
	json *bool
	cf   *prog.ConfigFlags

	apiURL, relayAddr string
	offline           bool
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.eval, "eval", false,
		"evaluate the arguments, or lines of stdin, as arithmetic expressions and quit")
	p.json = fs.JSON()
	p.cf = fs.Config()
	fs.StringVar(&p.apiURL, "api", "",
		"base URL of the snapshot endpoint; overrides the configuration file")
	fs.StringVar(&p.relayAddr, "relay", "",
		"address of the relay; overrides the configuration file")
	fs.BoolVar(&p.offline, "offline", false,
		"neither load, save nor broadcast states")
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	if p.eval {
		return prog.Exit(Eval(fds, args, *p.json))
	}
	if len(args) > 0 {
		return prog.BadUsage("arguments are only allowed with -eval")
	}
	cfg, err := p.cf.Load()
	if err != nil {
		return err
	}
	p.applyOverrides(cfg)
	return Interact(fds, cfg, p.Identity)
}

func (p *Program) applyOverrides(cfg *config.Config) {
	if p.apiURL != "" {
		cfg.Remote.APIURL = p.apiURL
	}
	if p.relayAddr != "" {
		cfg.Remote.RelayAddr = p.relayAddr
	}
	if p.offline {
		cfg.Remote = config.RemoteConfig{}
	}
}
