// Package server implements the -serve subprogram, which runs the snapshot
// endpoint and the relay in one process.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"src.devlab.sh/pkg/config"
	"src.devlab.sh/pkg/httpapi"
	"src.devlab.sh/pkg/logutil"
	"src.devlab.sh/pkg/prog"
	"src.devlab.sh/pkg/relay"
	"src.devlab.sh/pkg/store"
)

var logger = logutil.GetLogger("server")

// How long to wait for in-flight HTTP requests when shutting down.
const shutdownTimeout = 5 * time.Second

// Program is the server subprogram.
type Program struct {
	serve     bool
	httpAddr  string
	relayAddr string
	cf        *prog.ConfigFlags
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.serve, "serve", false,
		"run the snapshot endpoint and the relay until interrupted")
	fs.StringVar(&p.httpAddr, "http-addr", "",
		"listen address of the snapshot endpoint; overrides the configuration file")
	fs.StringVar(&p.relayAddr, "relay-addr", "",
		"listen address of the relay; overrides the configuration file")
	p.cf = fs.Config()
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	if !p.serve {
		return prog.NextProgram()
	}
	if len(args) > 0 {
		return prog.BadUsage("arguments are not allowed with -serve")
	}
	cfg, err := p.cf.Load()
	if err != nil {
		return err
	}
	if p.httpAddr != "" {
		cfg.Server.HTTPAddr = p.httpAddr
	}
	if p.relayAddr != "" {
		cfg.Server.RelayAddr = p.relayAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Serve(ctx, cfg, func(httpAddr, relayAddr net.Addr) {
		fmt.Fprintf(fds[1], "serving %s on http://%s, relay on %s\n",
			httpapi.Path, httpAddr, relayAddr)
	})
}

// Serve opens the database and serves the snapshot endpoint and the relay
// until ctx is canceled or one of them fails. If ready is not nil, it is called
// with the listening addresses once both listeners are open.
func Serve(ctx context.Context, cfg *config.Config, ready func(httpAddr, relayAddr net.Addr)) (err error) {
	dbPath := cfg.DBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return err
	}
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	httpLn, err := net.Listen("tcp", cfg.Server.HTTPAddr)
	if err != nil {
		return err
	}
	relayLn, err := net.Listen("tcp", cfg.Server.RelayAddr)
	if err != nil {
		httpLn.Close()
		return err
	}
	logger.Infow("serving", "db", dbPath,
		"http", httpLn.Addr().String(), "relay", relayLn.Addr().String())

	srv := &http.Server{
		Handler:           httpapi.NewMux(st),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(httpLn); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return relay.NewServer().Serve(ctx, relayLn)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if ready != nil {
		ready(httpLn.Addr(), relayLn.Addr())
	}
	err = g.Wait()
	logger.Infow("stopped serving", "err", err)
	return err
}
