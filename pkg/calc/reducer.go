package calc

import (
	"errors"
	"fmt"

	"src.devlab.sh/pkg/boxes"
	"src.devlab.sh/pkg/mathexp"
)

// Reducer applies transitions that need to know the box definitions.
type Reducer struct {
	reg *boxes.Registry
}

// NewReducer returns a Reducer for the boxes in the given registry.
func NewReducer(reg *boxes.Registry) *Reducer {
	return &Reducer{reg}
}

// Registry returns the registry the Reducer was created with.
func (rd *Reducer) Registry() *boxes.Registry { return rd.reg }

// Push copies the current output of source into the target slot as literal
// text. It never creates a binding.
func (rd *Reducer) Push(s State, source string, target boxes.Ref) (State, error) {
	b, ok := s.boxes[target.BoxID]
	if !ok {
		return s, nil
	}
	v, err := rd.Resolve(s, source)
	if errors.Is(err, ErrCycle) {
		return s, err
	}
	return s.with(target.BoxID, b.WithSlot(target.Side, Literal(boxes.FormatNumber(v)))), nil
}

// Bind toggles a binding. If the target slot holds literal text, it becomes
// bound to source. If it is already bound (to any box), it is replaced by the
// current output of source as literal text.
//
// A binding that would make a box depend on itself, directly or through other
// boxes, is rejected with a *CycleError and the state is left unchanged.
func (rd *Reducer) Bind(s State, source string, target boxes.Ref) (State, error) {
	b, ok := s.boxes[target.BoxID]
	if !ok {
		return s, nil
	}
	if b.Slot(target.Side).IsBound() {
		v, err := rd.Resolve(s, source)
		if errors.Is(err, ErrCycle) {
			return s, err
		}
		return s.with(target.BoxID, b.WithSlot(target.Side, Literal(boxes.FormatNumber(v)))), nil
	}
	if path := s.bindingPath(source, target.BoxID); path != nil {
		return s, &CycleError{Path: append([]string{target.BoxID}, path...)}
	}
	return s.with(target.BoxID, b.WithSlot(target.Side, BoundTo(source))), nil
}

// Returns the IDs on a chain of bindings leading from one box to another, both
// ends included, or nil if there is no such chain.
func (s State) bindingPath(from, to string) []string {
	visited := make(map[string]bool)
	var walk func(id string) []string
	walk = func(id string) []string {
		if id == to {
			return []string{id}
		}
		if visited[id] {
			return nil
		}
		visited[id] = true
		b := s.boxes[id]
		for _, slot := range [...]Slot{b.Left, b.Right} {
			if slot.IsBound() {
				if rest := walk(slot.Ref); rest != nil {
					return append([]string{id}, rest...)
				}
			}
		}
		return nil
	}
	return walk(from)
}

// ApplyDecrement decrements the chain of left inputs starting at a box.
//
// The box's Mod rule combines amount with the box's right input. If the left
// input is bound, the result is forwarded to the bound box, which applies its
// own rule with its own right input, and so on; the literal left input at the
// end of the chain is decreased by the final amount. Intermediate boxes keep
// their bindings.
//
// A chain that loops fails with a *CycleError and leaves the state unchanged.
// Decrementing a box that doesn't exist has no effect.
func (rd *Reducer) ApplyDecrement(s State, id string, amount float64) (State, error) {
	var path []string
	for {
		b, ok := s.boxes[id]
		if !ok {
			return s, nil
		}
		for i, seen := range path {
			if seen == id {
				return s, &CycleError{Path: append(path[i:], id)}
			}
		}
		path = append(path, id)

		if def, ok := rd.reg.Lookup(id); ok {
			right, err := rd.SlotValue(s, boxes.Ref{BoxID: id, Side: boxes.Right})
			if errors.Is(err, ErrCycle) {
				return s, err
			}
			amount = def.Decrement(amount, right)
		}
		if !b.Left.IsBound() {
			current := mathexp.EvaluateOrNaN(b.Left.Text)
			left := Literal(boxes.FormatNumber(current - amount))
			return s.with(id, b.WithSlot(boxes.Left, left)), nil
		}
		id = b.Left.Ref
	}
}

// ReplaceWithRemoteSnapshot returns snapshot. The current state is discarded
// entirely; there is no merging.
func (rd *Reducer) ReplaceWithRemoteSnapshot(_ State, snapshot State) State {
	return snapshot
}

// Apply applies an action.
func (rd *Reducer) Apply(s State, a Action) (State, error) {
	switch a := a.(type) {
	case Set:
		return s.Set(a.Box, a.Side, a.Text), nil
	case Push:
		return rd.Push(s, a.Source, a.Target)
	case Bind:
		return rd.Bind(s, a.Source, a.Target)
	case Decrement:
		if a.Timer != 0 {
			// Ticks of a timer that has since been stopped or replaced are
			// dropped.
			if b, ok := s.boxes[a.Box]; !ok || b.Timer != a.Timer {
				return s, nil
			}
		}
		return rd.ApplyDecrement(s, a.Box, a.Amount)
	case Playing:
		if def, ok := rd.reg.Lookup(a.Box); !ok || !def.CanPlay {
			return s, fmt.Errorf("%s: %w", a.Box, ErrCannotPlay)
		}
		return s.StartPlaying(a.Box, a.Timer), nil
	case Stopped:
		return s.StopPlaying(a.Box), nil
	case RemoteSync:
		return rd.ReplaceWithRemoteSnapshot(s, a.State), nil
	}
	return s, fmt.Errorf("unknown action %T", a)
}
