package calc

import (
	"errors"
	"math"

	"src.devlab.sh/pkg/boxes"
	"src.devlab.sh/pkg/mathexp"
)

// Resolves the values of boxes in one state. Values are memoized, so a box
// that several bindings point to is computed once.
type resolver struct {
	reg   *boxes.Registry
	state State
	memo  map[string]float64
	// Boxes currently being computed, outermost first.
	stack []string
	err   error
}

func newResolver(reg *boxes.Registry, s State) *resolver {
	return &resolver{reg: reg, state: s, memo: make(map[string]float64)}
}

// Keeps the first error. A cycle error replaces an earlier parse error, since
// callers treat cycles as failures and parse errors as NaN.
func (r *resolver) fail(err error) {
	if r.err == nil || (errors.Is(err, ErrCycle) && !errors.Is(r.err, ErrCycle)) {
		r.err = err
	}
}

func (r *resolver) box(id string) float64 {
	if v, ok := r.memo[id]; ok {
		return v
	}
	def, ok := r.reg.Lookup(id)
	if !ok {
		return math.NaN()
	}
	for i, visiting := range r.stack {
		if visiting == id {
			path := append(append([]string(nil), r.stack[i:]...), id)
			r.fail(&CycleError{Path: path})
			return math.NaN()
		}
	}
	// A box missing from the state reads as two empty literals.
	b := r.state.boxes[id]
	r.stack = append(r.stack, id)
	left := r.slot(b.Left)
	right := r.slot(b.Right)
	r.stack = r.stack[:len(r.stack)-1]
	v := def.Calculate(left, right)
	r.memo[id] = v
	return v
}

func (r *resolver) slot(s Slot) float64 {
	if s.IsBound() {
		return r.box(s.Ref)
	}
	v, err := mathexp.Evaluate(s.Text)
	if err != nil {
		r.fail(err)
	}
	return v
}

// Resolve computes the output of a box, following bindings recursively.
//
// An unknown box resolves to NaN without error. Literal text that fails to
// parse makes its slot NaN; the *mathexp.Error is returned alongside the
// (usually NaN) value. If the bindings form a cycle, Resolve returns NaN and a
// *CycleError.
func (rd *Reducer) Resolve(s State, id string) (float64, error) {
	r := newResolver(rd.reg, s)
	v := r.box(id)
	if errors.Is(r.err, ErrCycle) {
		return math.NaN(), r.err
	}
	return v, r.err
}

// Value is like Resolve, but discards the error.
func (rd *Reducer) Value(s State, id string) float64 {
	v, _ := rd.Resolve(s, id)
	return v
}

// Format renders the output of a box with its formatter. It returns "" for an
// unknown box.
func (rd *Reducer) Format(s State, id string) string {
	def, ok := rd.reg.Lookup(id)
	if !ok {
		return ""
	}
	return def.Format(rd.Value(s, id))
}

// SlotValue computes the number a slot currently stands for: the evaluated
// literal, or the output of the bound box.
func (rd *Reducer) SlotValue(s State, ref boxes.Ref) (float64, error) {
	b, ok := s.boxes[ref.BoxID]
	if !ok {
		return math.NaN(), nil
	}
	r := newResolver(rd.reg, s)
	// Count the slot's own box as being visited, so that a binding back to it
	// is caught as a cycle.
	r.stack = append(r.stack, ref.BoxID)
	v := r.slot(b.Slot(ref.Side))
	if errors.Is(r.err, ErrCycle) {
		return math.NaN(), r.err
	}
	return v, r.err
}
