package player

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"src.devlab.sh/pkg/calc"
	"src.devlab.sh/pkg/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu      sync.Mutex
	actions []calc.Action
	ch      chan struct{}
}

func newRecorder() *recorder { return &recorder{ch: make(chan struct{}, 100)} }

func (r *recorder) dispatch(ctx context.Context, a calc.Action) {
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
	select {
	case r.ch <- struct{}{}:
	case <-ctx.Done():
	}
}

func (r *recorder) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.ch:
		case <-time.After(testutil.Scaled(2 * time.Second)):
			t.Fatalf("timed out after %d ticks", i)
		}
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions)
}

func TestPlay_DispatchesDecrements(t *testing.T) {
	r := newRecorder()
	p := New(r.dispatch)
	h, err := p.Play("time-calc", 0.001)
	if err != nil {
		t.Fatal(err)
	}
	if h == 0 {
		t.Errorf("got zero handle")
	}
	if got := p.Handle("time-calc"); got != h {
		t.Errorf("Handle -> %v, want %v", got, h)
	}
	r.wait(t, 3)
	p.Stop("time-calc")

	want := calc.Decrement{Box: "time-calc", Amount: 1, Timer: h}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.actions {
		if a != want {
			t.Errorf("got action %#v, want %#v", a, want)
		}
	}
}

func TestStop_NoTicksAfterReturn(t *testing.T) {
	r := newRecorder()
	p := New(r.dispatch)
	p.Play("time-calc", 0.001)
	r.wait(t, 1)
	if !p.Stop("time-calc") {
		t.Errorf("Stop -> false, want true")
	}
	n := r.count()
	time.Sleep(testutil.Scaled(20 * time.Millisecond))
	if got := r.count(); got != n {
		t.Errorf("%d ticks after Stop returned", got-n)
	}
	if p.Stop("time-calc") {
		t.Errorf("second Stop -> true, want false")
	}
	if _, ok := p.Remaining("time-calc"); ok {
		t.Errorf("Remaining reports a stopped timer")
	}
}

func TestStop_CancelsBlockedDispatch(t *testing.T) {
	block := make(chan struct{})
	dispatching := make(chan struct{}, 1)
	p := New(func(ctx context.Context, a calc.Action) {
		select {
		case dispatching <- struct{}{}:
		default:
		}
		select {
		case <-block:
		case <-ctx.Done():
		}
	})
	p.Play("time-calc", 0.001)
	<-dispatching
	p.Stop("time-calc")
}

func TestPlay_ReplacesRunningTimer(t *testing.T) {
	r := newRecorder()
	p := New(r.dispatch)
	h1, _ := p.Play("time-calc", 60)
	h2, _ := p.Play("time-calc", 60)
	if h1 == h2 {
		t.Errorf("handles not distinct: %v", h1)
	}
	if got := p.Handle("time-calc"); got != h2 {
		t.Errorf("Handle -> %v, want %v", got, h2)
	}
	remaining, ok := p.Remaining("time-calc")
	if !ok || remaining <= 0 || remaining > time.Minute {
		t.Errorf("Remaining -> (%v, %v)", remaining, ok)
	}
	p.StopAll()
	if got := p.Handle("time-calc"); got != 0 {
		t.Errorf("Handle after StopAll -> %v", got)
	}
}

func TestPlay_BadInterval(t *testing.T) {
	p := New(func(context.Context, calc.Action) {})
	for _, seconds := range []float64{0, -1, math.NaN(), math.Inf(1), 1e-12} {
		_, err := p.Play("time-calc", seconds)
		if !errors.Is(err, ErrBadInterval) {
			t.Errorf("Play(%v) -> error %v, want ErrBadInterval", seconds, err)
		}
	}
}
