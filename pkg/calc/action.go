package calc

import "src.devlab.sh/pkg/boxes"

// Kind tags every action with what it does. Collaborators use it to decide,
// for example, that decrement ticks are not worth saving, or that a remote
// state must not be broadcast again.
type Kind string

// Possible values of Kind.
const (
	KindSet        Kind = "set"
	KindPush       Kind = "push"
	KindBind       Kind = "bind"
	KindDecrement  Kind = "dec"
	KindPlaying    Kind = "playing"
	KindStopped    Kind = "stopped"
	KindRemoteSync Kind = "remoteDataSync"
)

// Action is an input to Reducer.Apply.
type Action interface {
	Kind() Kind
}

// Set replaces an input with literal text.
type Set struct {
	Box  string
	Side boxes.Side
	Text string
}

// Push copies the output of Source into Target.
type Push struct {
	Source string
	Target boxes.Ref
}

// Bind toggles the binding of Target to the output of Source.
type Bind struct {
	Source string
	Target boxes.Ref
}

// Decrement decrements the chain of left inputs starting at Box. Timer is the
// handle of the timer that issued the action, or 0 for a manual decrement.
type Decrement struct {
	Box    string
	Amount float64
	Timer  TimerHandle
}

// Playing records that Timer is now running for Box.
type Playing struct {
	Box   string
	Timer TimerHandle
}

// Stopped records that the timer of Box has been canceled.
type Stopped struct {
	Box string
}

// RemoteSync replaces the whole state with one received from a peer.
type RemoteSync struct {
	State State
}

func (Set) Kind() Kind        { return KindSet }
func (Push) Kind() Kind       { return KindPush }
func (Bind) Kind() Kind       { return KindBind }
func (Decrement) Kind() Kind  { return KindDecrement }
func (Playing) Kind() Kind    { return KindPlaying }
func (Stopped) Kind() Kind    { return KindStopped }
func (RemoteSync) Kind() Kind { return KindRemoteSync }
