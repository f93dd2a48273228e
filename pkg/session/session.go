// Package session owns a calculator state and everything that changes it.
//
// A Session applies actions from the front end, from timers and from peers in
// a single goroutine, one at a time. After each local action that changes the
// state, the new state is saved (unless the action was a timer tick) and
// broadcast to peers. States received from peers replace the local one and
// are neither saved nor broadcast again.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"src.devlab.sh/pkg/boxes"
	"src.devlab.sh/pkg/calc"
	"src.devlab.sh/pkg/logutil"
	"src.devlab.sh/pkg/player"
	"src.devlab.sh/pkg/relay"
)

var logger = logutil.GetLogger("session")

// Broadcaster publishes states to peers. It is satisfied by *relay.Client.
type Broadcaster interface {
	Publish(ctx context.Context, topic, action string, state json.RawMessage) error
}

// Saver persists states. It is satisfied by *httpapi.Client.
type Saver interface {
	Save(ctx context.Context, sid string, st calc.State) error
}

// Buffer size of the channel between the loop and the goroutine that saves
// and broadcasts states.
const syncChSize = 128

// Config keeps the collaborators of a Session. Only Reducer is required.
type Config struct {
	// Id of the state, used as the key when saving.
	ID      string
	Topic   string
	Reducer *calc.Reducer
	// The initial state. If it has no boxes, calc.New is used.
	Initial calc.State

	Broadcaster Broadcaster
	Saver       Saver

	// Called from the loop goroutine with the current state whenever it may
	// have changed. The final flag is set on the last call.
	Render func(st calc.State, final bool)
	// Called from the loop goroutine when an event cannot be applied.
	OnError func(error)
}

// Session is a running calculator.
type Session struct {
	cfg    Config
	lp     *loop
	player *player.Player
	state  calc.State
}

// Play starts the timer of Box. The interval is the value of the right input
// of the box, in seconds.
type Play struct{ Box string }

// Stop stops the timer of Box.
type Stop struct{ Box string }

// Quit stops the session.
type Quit struct{}

type remoteEvent struct{ msg relay.Message }

type syncRequest struct {
	kind  calc.Kind
	state calc.State
}

// New creates a Session. It does not start it; call Run for that.
func New(cfg Config) *Session {
	if cfg.Reducer == nil {
		cfg.Reducer = calc.NewReducer(boxes.Default())
	}
	if cfg.Initial.Len() == 0 {
		cfg.Initial = calc.New(cfg.Reducer.Registry())
	}
	if cfg.Topic == "" {
		cfg.Topic = relay.DefaultTopic
	}
	s := &Session{cfg: cfg, lp: newLoop(), state: cfg.Initial}
	s.player = player.New(func(ctx context.Context, a calc.Action) {
		s.lp.Input(ctx, a)
	})
	return s
}

// Dispatch sends a calc.Action, or one of Play, Stop and Quit, to the
// session. Events are handled in the order they are dispatched. It blocks
// while the session is busy, and reports false if the session has stopped.
func (s *Session) Dispatch(ev any) bool {
	return s.DispatchContext(context.Background(), ev)
}

// DispatchContext is like Dispatch, but gives up when ctx is canceled.
func (s *Session) DispatchContext(ctx context.Context, ev any) bool {
	return s.lp.Input(ctx, ev)
}

// Remote delivers a message received from a peer. It can be used as the
// callback of relay.Dial.
func (s *Session) Remote(msg relay.Message) {
	s.lp.Input(context.Background(), remoteEvent{msg})
}

// Redraw requests a call to the Render callback, even if the state has not
// changed.
func (s *Session) Redraw() { s.lp.Redraw() }

// Remaining returns how long until the next timer tick of box, if it is
// playing. It is safe to call from any goroutine.
func (s *Session) Remaining(box string) (float64, bool) {
	d, ok := s.player.Remaining(box)
	return d.Seconds(), ok
}

// Run runs the session until Quit is dispatched or ctx is canceled, and
// returns the final state. All timers are stopped and all pending saves and
// broadcasts are done when it returns.
func (s *Session) Run(ctx context.Context) (calc.State, error) {
	syncCh := make(chan syncRequest, syncChSize)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for req := range syncCh {
			s.sync(ctx, req)
		}
	}()

	s.lp.HandleCb(func(ev event) { s.handle(ev, syncCh) })
	s.lp.RedrawCb(func(final bool) {
		if s.cfg.Render != nil {
			s.cfg.Render(s.state, final)
		}
	})
	err := s.lp.Run(ctx)

	s.player.StopAll()
	close(syncCh)
	wg.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return s.state, err
}

func (s *Session) handle(ev event, syncCh chan<- syncRequest) {
	switch ev := ev.(type) {
	case Quit:
		s.lp.Return(nil)
	case Play:
		s.play(ev.Box, syncCh)
	case Stop:
		s.player.Stop(ev.Box)
		s.apply(calc.Stopped{Box: ev.Box}, syncCh)
	case remoteEvent:
		st, err := calc.DecodeSnapshot(s.cfg.Reducer.Registry(), ev.msg.State)
		if err != nil {
			s.fail(fmt.Errorf("state from %s: %w", ev.msg.OriginID, err))
			return
		}
		logger.Debugw("remote state", "origin", ev.msg.OriginID, "action", ev.msg.Action)
		s.apply(calc.RemoteSync{State: st.WithTimersFrom(s.state)}, syncCh)
	case calc.Action:
		s.apply(ev, syncCh)
	default:
		s.fail(fmt.Errorf("unknown event %T", ev))
	}
}

func (s *Session) play(box string, syncCh chan<- syncRequest) {
	if def, ok := s.cfg.Reducer.Registry().Lookup(box); !ok || !def.CanPlay {
		s.fail(fmt.Errorf("%s: %w", box, calc.ErrCannotPlay))
		return
	}
	seconds, err := s.cfg.Reducer.SlotValue(s.state, boxes.Ref{BoxID: box, Side: boxes.Right})
	if err != nil {
		s.fail(err)
		return
	}
	h, err := s.player.Play(box, seconds)
	if err != nil {
		s.fail(err)
		return
	}
	s.apply(calc.Playing{Box: box, Timer: h}, syncCh)
}

func (s *Session) apply(a calc.Action, syncCh chan<- syncRequest) {
	next, err := s.cfg.Reducer.Apply(s.state, a)
	if err != nil {
		s.fail(err)
		return
	}
	changed := !next.Equal(s.state)
	s.state = next
	if changed && a.Kind() != calc.KindRemoteSync {
		syncCh <- syncRequest{a.Kind(), next}
	}
}

func (s *Session) sync(ctx context.Context, req syncRequest) {
	// Timer ticks are too frequent to be worth saving; peers still see them.
	if s.cfg.Saver != nil && req.kind != calc.KindDecrement {
		if err := s.cfg.Saver.Save(ctx, s.cfg.ID, req.state); err != nil {
			logger.Warnw("failed to save state", "id", s.cfg.ID, "err", err)
		}
	}
	if s.cfg.Broadcaster != nil {
		data, err := json.Marshal(req.state)
		if err != nil {
			logger.Errorw("failed to encode state", "err", err)
			return
		}
		err = s.cfg.Broadcaster.Publish(ctx, s.cfg.Topic, string(req.kind), data)
		if err != nil {
			logger.Warnw("failed to publish state", "topic", s.cfg.Topic, "err", err)
		}
	}
}

func (s *Session) fail(err error) {
	logger.Infow("event not applied", "err", err)
	if s.cfg.OnError != nil {
		s.cfg.OnError(err)
	}
}
