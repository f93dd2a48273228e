// Package boxes keeps the catalogue of calculator boxes.
//
// A box is a two-input formula with a display formatter. Boxes know nothing
// about the live state of the calculator; package calc combines the
// definitions here with the user's inputs.
package boxes

import (
	"fmt"
	"sort"
	"strings"
)

// Side names one of the two inputs of a box.
type Side int

// Possible values of Side.
const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// ParseSide parses the textual form of a Side. Besides "left" and "right", it
// also accepts "leftStr" and "rightStr", which older snapshots use.
func ParseSide(s string) (Side, error) {
	switch s {
	case "left", "leftStr":
		return Left, nil
	case "right", "rightStr":
		return Right, nil
	}
	return 0, fmt.Errorf("bad side %q, should be left or right", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(b []byte) error {
	side, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// Ref names an input slot of a box.
type Ref struct {
	BoxID string `json:"id"`
	Side  Side   `json:"side"`
}

func (r Ref) String() string { return r.BoxID + "." + r.Side.String() }

// ParseRef parses the "box.side" form produced by Ref.String.
func ParseRef(s string) (Ref, error) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 {
		return Ref{}, fmt.Errorf("bad slot %q, should be box.side", s)
	}
	side, err := ParseSide(s[i+1:])
	if err != nil {
		return Ref{}, err
	}
	return Ref{s[:i], side}, nil
}

// Def defines a kind of calculator box. A Def must not be modified once it is
// added to a Registry.
type Def struct {
	ID    string
	Title string
	// Display labels: the box reads as "LeftName MidWord RightName".
	LeftName  string
	RightName string
	MidWord   string

	// Calculate computes the output from the two inputs. It must return NaN
	// rather than panic on inputs outside its domain.
	Calculate func(left, right float64) float64
	// Format renders an output for display. It must handle NaN and ±Inf.
	Format func(value float64) string

	// Target is the slot that the Push and Bind actions of this box write to.
	// Nil if the box has no destination.
	Target *Ref
	// Mod combines an amount being decremented through this box with the
	// box's current right input, giving the amount forwarded to whatever the
	// left input is bound to. Nil means the amount passes through unchanged.
	Mod func(pushed, right float64) float64
	// CanPlay reports whether the box can run an auto-decrement timer.
	CanPlay bool
}

// Decrement applies the box's Mod rule.
func (d *Def) Decrement(pushed, right float64) float64 {
	if d.Mod == nil {
		return pushed
	}
	return d.Mod(pushed, right)
}

// Registry is a read-only catalogue of box definitions.
type Registry struct {
	defs []*Def
	byID map[string]*Def
}

// NewRegistry builds a Registry from the given definitions, keeping their
// order for display. It panics if an ID is empty or used twice.
func NewRegistry(defs ...*Def) *Registry {
	r := &Registry{byID: make(map[string]*Def, len(defs))}
	for _, def := range defs {
		if def.ID == "" {
			panic("box definition with empty ID")
		}
		if _, dup := r.byID[def.ID]; dup {
			panic("duplicate box definition " + def.ID)
		}
		r.defs = append(r.defs, def)
		r.byID[def.ID] = def
	}
	return r
}

// Lookup finds a definition by ID.
func (r *Registry) Lookup(id string) (*Def, bool) {
	def, ok := r.byID[id]
	return def, ok
}

// All returns all definitions in display order.
func (r *Registry) All() []*Def {
	return append([]*Def(nil), r.defs...)
}

// IDs returns all IDs, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.defs))
	for _, def := range r.defs {
		ids = append(ids, def.ID)
	}
	sort.Strings(ids)
	return ids
}

var defaultRegistry = NewRegistry(XPCalc, Reps, TimeCalc, Preservation)

// Default returns the registry of all built-in boxes.
func Default() *Registry { return defaultRegistry }
