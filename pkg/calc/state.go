// Package calc implements the state of a calculator: which boxes take their
// inputs from literal text and which are bound to the output of other boxes,
// and the transitions between such states.
//
// A State is an immutable value. Every transition returns a new State and
// leaves its receiver alone, so a State can be handed to another goroutine
// (for example to be published) without copying.
package calc

import (
	"encoding/json"
	"fmt"
	"sort"

	"src.devlab.sh/pkg/boxes"
)

// Slot is one input of a box: either literal text, or a binding to the output
// of another box.
type Slot struct {
	// Text is the literal text; only meaningful when Ref is empty.
	Text string
	// Ref is the ID of the box this slot is bound to, or "" for a literal.
	Ref string
}

// Literal returns a Slot holding the given text.
func Literal(text string) Slot { return Slot{Text: text} }

// BoundTo returns a Slot bound to the output of the given box.
func BoundTo(id string) Slot { return Slot{Ref: id} }

// IsBound reports whether the slot is bound to another box.
func (s Slot) IsBound() bool { return s.Ref != "" }

func (s Slot) String() string {
	if s.IsBound() {
		return "<" + s.Ref + ">"
	}
	return fmt.Sprintf("%q", s.Text)
}

// MarshalJSON encodes a literal as a JSON string and a binding as {"id": ref}.
func (s Slot) MarshalJSON() ([]byte, error) {
	if s.IsBound() {
		return json.Marshal(struct {
			ID string `json:"id"`
		}{s.Ref})
	}
	return json.Marshal(s.Text)
}

// UnmarshalJSON is the inverse of MarshalJSON. A JSON null decodes to an empty
// literal.
func (s *Slot) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw := raw.(type) {
	case nil:
		*s = Slot{}
	case string:
		*s = Literal(raw)
	case map[string]any:
		id, ok := raw["id"].(string)
		if !ok || id == "" {
			return fmt.Errorf("bad bound slot %s, want {\"id\": string}", b)
		}
		*s = BoundTo(id)
	default:
		return fmt.Errorf("bad slot %s, want string or {\"id\": string}", b)
	}
	return nil
}

// TimerHandle identifies a running auto-decrement timer. The zero value means
// no timer. Handles are only meaningful inside the process that issued them.
type TimerHandle uint64

// BoxState is the live state of one box.
type BoxState struct {
	Left  Slot        `json:"left"`
	Right Slot        `json:"right"`
	Timer TimerHandle `json:"intervalHandle,omitempty"`
}

// Slot returns the slot on the given side.
func (b BoxState) Slot(side boxes.Side) Slot {
	if side == boxes.Right {
		return b.Right
	}
	return b.Left
}

// WithSlot returns a copy of b with the slot on the given side replaced.
func (b BoxState) WithSlot(side boxes.Side, slot Slot) BoxState {
	if side == boxes.Right {
		b.Right = slot
	} else {
		b.Left = slot
	}
	return b
}

// Playing reports whether the box has an active timer.
func (b BoxState) Playing() bool { return b.Timer != 0 }

// State is the state of all boxes of a calculator.
type State struct {
	boxes map[string]BoxState
}

// New returns the initial State for all boxes in the registry: every slot is
// an empty literal and no box is playing.
func New(reg *boxes.Registry) State {
	m := make(map[string]BoxState)
	for _, def := range reg.All() {
		m[def.ID] = BoxState{}
	}
	return State{m}
}

// Box returns the state of a box.
func (s State) Box(id string) (BoxState, bool) {
	b, ok := s.boxes[id]
	return b, ok
}

// IDs returns the IDs of all boxes in the state, sorted.
func (s State) IDs() []string {
	ids := make([]string, 0, len(s.boxes))
	for id := range s.boxes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of boxes in the state.
func (s State) Len() int { return len(s.boxes) }

// Equal reports whether two states hold the same boxes with the same slots and
// timers.
func (s State) Equal(other State) bool {
	if len(s.boxes) != len(other.boxes) {
		return false
	}
	for id, b := range s.boxes {
		if ob, ok := other.boxes[id]; !ok || ob != b {
			return false
		}
	}
	return true
}

// Returns a new State with one box replaced. The receiver is not modified.
func (s State) with(id string, b BoxState) State {
	m := make(map[string]BoxState, len(s.boxes)+1)
	for k, v := range s.boxes {
		m[k] = v
	}
	m[id] = b
	return State{m}
}

// IsBound reports whether the given slot is bound to another box. It returns
// false for boxes that don't exist.
func (s State) IsBound(ref boxes.Ref) bool {
	b, ok := s.boxes[ref.BoxID]
	return ok && b.Slot(ref.Side).IsBound()
}

// Set replaces a slot with literal text. The text is not validated; text that
// doesn't parse evaluates to NaN. Setting a slot of a box that doesn't exist
// has no effect.
func (s State) Set(id string, side boxes.Side, text string) State {
	b, ok := s.boxes[id]
	if !ok {
		return s
	}
	return s.with(id, b.WithSlot(side, Literal(text)))
}

// StartPlaying records the handle of the timer that is now decrementing the
// box. Scheduling the timer is up to the caller.
func (s State) StartPlaying(id string, h TimerHandle) State {
	b, ok := s.boxes[id]
	if !ok {
		return s
	}
	b.Timer = h
	return s.with(id, b)
}

// StopPlaying clears the timer handle of the box. Canceling the timer is up to
// the caller.
func (s State) StopPlaying(id string) State {
	b, ok := s.boxes[id]
	if !ok || b.Timer == 0 {
		return s
	}
	b.Timer = 0
	return s.with(id, b)
}

// WithTimersFrom returns a copy of s whose timer handles are taken from local.
// It is used when a state arrives from another process, whose handles mean
// nothing here, while local timers keep running.
func (s State) WithTimersFrom(local State) State {
	m := make(map[string]BoxState, len(s.boxes))
	for id, b := range s.boxes {
		b.Timer = local.boxes[id].Timer
		m[id] = b
	}
	return State{m}
}
