// Package player runs the repeating timers behind playing boxes.
//
// Each playing box gets its own goroutine, which dispatches a
// calc.Decrement of 1 carrying the box's timer handle every interval. The
// reducer drops ticks whose handle no longer matches the box, so a tick
// racing with Stop is never applied.
package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"src.devlab.sh/pkg/calc"
	"src.devlab.sh/pkg/logutil"
)

var logger = logutil.GetLogger("player")

// ErrBadInterval is returned by Play when the interval is not a positive
// finite number of seconds.
var ErrBadInterval = errors.New("interval must be a positive number of seconds")

// DispatchFunc delivers an action. It should give up when ctx is canceled.
type DispatchFunc func(ctx context.Context, a calc.Action)

// Player keeps track of running timers.
type Player struct {
	dispatch DispatchFunc

	mu      sync.Mutex
	last    calc.TimerHandle
	running map[string]*timer
}

type timer struct {
	handle   calc.TimerHandle
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}

	mu   sync.Mutex
	next time.Time
}

// New returns a Player that delivers ticks with dispatch.
func New(dispatch DispatchFunc) *Player {
	return &Player{dispatch: dispatch, running: make(map[string]*timer)}
}

// Play starts a timer decrementing box by 1 every given number of seconds,
// replacing any timer already running for the box. It returns the handle of
// the new timer.
func (p *Player) Play(box string, seconds float64) (calc.TimerHandle, error) {
	if !(seconds > 0) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%s: %v: %w", box, seconds, ErrBadInterval)
	}
	interval := time.Duration(seconds * float64(time.Second))
	if interval <= 0 {
		return 0, fmt.Errorf("%s: %v: %w", box, seconds, ErrBadInterval)
	}
	p.Stop(box)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.last++
	ctx, cancel := context.WithCancel(context.Background())
	t := &timer{handle: p.last, interval: interval, cancel: cancel,
		done: make(chan struct{}), next: time.Now().Add(interval)}
	p.running[box] = t
	go p.run(ctx, box, t)
	logger.Debugw("playing", "box", box, "handle", t.handle, "interval", interval)
	return t.handle, nil
}

func (p *Player) run(ctx context.Context, box string, t *timer) {
	defer close(t.done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.mu.Lock()
			t.next = now.Add(t.interval)
			t.mu.Unlock()
			p.dispatch(ctx, calc.Decrement{Box: box, Amount: 1, Timer: t.handle})
		}
	}
}

// Stop stops the timer of box, if any. When it returns, the timer will
// dispatch no more ticks. It reports whether a timer was running.
func (p *Player) Stop(box string) bool {
	p.mu.Lock()
	t, ok := p.running[box]
	delete(p.running, box)
	p.mu.Unlock()
	if !ok {
		return false
	}
	t.cancel()
	<-t.done
	logger.Debugw("stopped", "box", box, "handle", t.handle)
	return true
}

// StopAll stops all timers.
func (p *Player) StopAll() {
	p.mu.Lock()
	boxes := make([]string, 0, len(p.running))
	for box := range p.running {
		boxes = append(boxes, box)
	}
	p.mu.Unlock()
	for _, box := range boxes {
		p.Stop(box)
	}
}

// Handle returns the handle of the timer running for box, or 0.
func (p *Player) Handle(box string) calc.TimerHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.running[box]; ok {
		return t.handle
	}
	return 0
}

// Remaining returns how long until the next tick of box, and whether a timer
// is running for it at all.
func (p *Player) Remaining(box string) (time.Duration, bool) {
	p.mu.Lock()
	t, ok := p.running[box]
	p.mu.Unlock()
	if !ok {
		return 0, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return max(time.Until(t.next), 0), true
}
