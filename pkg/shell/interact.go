package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/google/uuid"
	"src.devlab.sh/pkg/boxes"
	"src.devlab.sh/pkg/calc"
	"src.devlab.sh/pkg/config"
	"src.devlab.sh/pkg/diag"
	"src.devlab.sh/pkg/httpapi"
	"src.devlab.sh/pkg/identity"
	"src.devlab.sh/pkg/relay"
	"src.devlab.sh/pkg/render"
	"src.devlab.sh/pkg/session"
	"src.devlab.sh/pkg/sys"
)

const prompt = "boxcalc> "

// Interact runs an interactive session, reading commands from fds[0] until
// EOF or the quit command. The client id comes from id, or from a file in
// cfg.DataDir if id is nil.
func Interact(fds [3]*os.File, cfg *config.Config, id identity.Provider) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := boxes.Default()
	rd := calc.NewReducer(reg)

	if id == nil {
		id = identity.FileProvider{Dir: cfg.DataDir}
	}
	clientID, err := id.ClientID()
	if err != nil {
		fmt.Fprintln(fds[2], "Warning: cannot get client id:", err)
		clientID = uuid.NewString()
	}
	logger.Infow("starting session", "session", cfg.Session, "client", clientID)

	initial := calc.New(reg)
	var saver session.Saver
	var cat catalog
	if cfg.Remote.APIURL != "" {
		client := httpapi.NewClient(cfg.Remote.APIURL, reg, nil)
		saver, cat = client, client
		st, err := client.Load(ctx, cfg.Session)
		switch {
		case errors.Is(err, httpapi.ErrNotFound):
			logger.Infow("no saved state", "session", cfg.Session)
		case err != nil:
			fmt.Fprintln(fds[2], "Warning: cannot load saved state:", err)
		default:
			initial = st
		}
	}

	var sess *session.Session
	var broadcaster session.Broadcaster
	var rc *relay.Client
	if cfg.Remote.RelayAddr != "" {
		rc, err = relay.Dial(ctx, cfg.Remote.RelayAddr, clientID,
			func(msg relay.Message) { sess.Remote(msg) })
		if err != nil {
			fmt.Fprintln(fds[2], "Warning: cannot connect to relay:", err)
			rc = nil
		} else {
			defer rc.Close()
			broadcaster = rc
		}
	}

	interactive := sys.IsATTY(fds[0].Fd())
	renderer := &render.Renderer{Reducer: rd}
	if sys.IsATTY(fds[1].Fd()) {
		_, renderer.Width = sys.WinSize(fds[1])
	}
	var forceRender atomic.Bool
	var last calc.State
	sess = session.New(session.Config{
		ID: cfg.Session, Topic: cfg.Topic, Reducer: rd, Initial: initial,
		Broadcaster: broadcaster, Saver: saver,
		Render: func(st calc.State, final bool) {
			if forceRender.Swap(false) || !st.Equal(last) {
				fmt.Fprint(fds[1], renderer.Render(st))
				last = st
			}
			if interactive && !final {
				fmt.Fprint(fds[1], prompt)
			}
		},
		OnError: func(err error) { diag.ShowError(fds[2], err) },
	})
	renderer.Remaining = sess.Remaining

	// Subscribe only now, so that no message arrives before sess is set.
	if rc != nil {
		if err := rc.Subscribe(ctx, cfg.Topic); err != nil {
			fmt.Fprintln(fds[2], "Warning: cannot subscribe to relay:", err)
		}
	}

	go readCommands(ctx, fds, reg, sess, cat, &forceRender)
	_, err = sess.Run(ctx)
	return err
}

// catalog lists and deletes saved sessions. It is satisfied by
// *httpapi.Client.
type catalog interface {
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, sid string) error
}

var errNoCatalog = errors.New("no snapshot endpoint configured")

func readCommands(ctx context.Context, fds [3]*os.File, reg *boxes.Registry, sess *session.Session, cat catalog, forceRender *atomic.Bool) {
	scanner := bufio.NewScanner(fds[0])
	for scanner.Scan() {
		ev, err := parseCommand(reg, scanner.Text())
		switch {
		case err == errEmptyCommand:
			sess.Redraw()
		case err != nil:
			diag.ShowError(fds[2], err)
			sess.Redraw()
		case ev == showCmd{}:
			forceRender.Store(true)
			sess.Redraw()
		case ev == helpCmd{}:
			fmt.Fprintln(fds[1], helpText)
			sess.Redraw()
		case isCatalogCmd(ev):
			if err := runCatalogCmd(ctx, fds[1], cat, ev); err != nil {
				diag.ShowError(fds[2], err)
			}
			sess.Redraw()
		default:
			if !sess.Dispatch(ev) {
				return
			}
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warnw("failed to read commands", "err", err)
	}
	sess.Dispatch(session.Quit{})
}

func isCatalogCmd(ev any) bool {
	switch ev.(type) {
	case sessionsCmd, forgetCmd:
		return true
	}
	return false
}

func runCatalogCmd(ctx context.Context, w io.Writer, cat catalog, ev any) error {
	if cat == nil {
		return errNoCatalog
	}
	switch ev := ev.(type) {
	case sessionsCmd:
		ids, err := cat.List(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(w, "No saved sessions")
		}
		for _, id := range ids {
			fmt.Fprintln(w, id)
		}
	case forgetCmd:
		if err := cat.Delete(ctx, ev.ID); err != nil {
			return err
		}
		fmt.Fprintf(w, "Forgot session %s\n", ev.ID)
	}
	return nil
}
