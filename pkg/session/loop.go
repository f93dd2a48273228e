package session

import "context"

// Buffer size of the input channel. The value is chosen for no particular
// reason.
const inputChSize = 128

// A generic main loop manager.
type loop struct {
	inputCh  chan event
	handleCb handleCb

	redrawCb redrawCb
	redrawCh chan struct{}

	returnCh chan error
	// Closed when Run returns.
	doneCh chan struct{}
}

// A placeholder type for events.
type event any

// Callback for redrawing. The final flag is set on the last call, made just
// before Run returns.
type redrawCb func(final bool)

func dummyRedrawCb(bool) {}

// Callback for handling an event.
type handleCb func(event)

func dummyHandleCb(event) {}

func newLoop() *loop {
	return &loop{
		inputCh:  make(chan event, inputChSize),
		handleCb: dummyHandleCb,
		redrawCb: dummyRedrawCb,
		redrawCh: make(chan struct{}, 1),
		returnCh: make(chan error, 1),
		doneCh:   make(chan struct{}),
	}
}

// HandleCb sets the handle callback. It must be called before Run.
func (lp *loop) HandleCb(cb handleCb) {
	lp.handleCb = cb
}

// RedrawCb sets the redraw callback. It must be called before Run.
func (lp *loop) RedrawCb(cb redrawCb) {
	lp.redrawCb = cb
}

// Redraw requests a redraw. It never blocks.
func (lp *loop) Redraw() {
	select {
	case lp.redrawCh <- struct{}{}:
	default:
	}
}

// Input provides an input event. It blocks while the internal event buffer is
// full, and gives up when ctx is canceled or the loop has stopped. It reports
// whether the event was accepted.
func (lp *loop) Input(ctx context.Context, ev event) bool {
	select {
	case <-lp.doneCh:
		return false
	default:
	}
	select {
	case lp.inputCh <- ev:
		return true
	case <-ctx.Done():
	case <-lp.doneCh:
	}
	return false
}

// Return requests the main loop to return. It never blocks. If Return has been
// called before during the current loop iteration, it has no effect.
func (lp *loop) Return(err error) {
	select {
	case lp.returnCh <- err:
	default:
	}
}

// Run runs the event loop, until the Return method is called or ctx is
// canceled. It is generic and delegates all concrete work to callbacks. It is
// fully serial: it does not spawn any goroutines and never calls two
// callbacks in parallel, so the callbacks may manipulate shared states without
// synchronization.
func (lp *loop) Run(ctx context.Context) error {
	defer close(lp.doneCh)
	for {
		lp.redrawCb(false)
		select {
		case event := <-lp.inputCh:
			// Consume all events in the channel to minimize redraws.
		consumeAllEvents:
			for {
				lp.handleCb(event)
				select {
				case err := <-lp.returnCh:
					lp.redrawCb(true)
					return err
				default:
				}
				select {
				case event = <-lp.inputCh:
					// Continue the loop of consuming all events.
				default:
					break consumeAllEvents
				}
			}
		case err := <-lp.returnCh:
			lp.redrawCb(true)
			return err
		case <-ctx.Done():
			lp.redrawCb(true)
			return ctx.Err()
		case <-lp.redrawCh:
		}
	}
}
