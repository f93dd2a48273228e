package calc

import (
	"encoding/json"

	"src.devlab.sh/pkg/boxes"
)

// The JSON shape of a State, shared with the snapshot store and the relay:
//
//	{"boxes": {"reps": {"left": "10", "right": {"id": "xp-calc"}}}}
type snapshot struct {
	Boxes map[string]BoxState `json:"boxes"`
}

// MarshalJSON implements json.Marshaler.
func (s State) MarshalJSON() ([]byte, error) {
	m := s.boxes
	if m == nil {
		m = map[string]BoxState{}
	}
	return json.Marshal(snapshot{m})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *State) UnmarshalJSON(b []byte) error {
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return err
	}
	if snap.Boxes == nil {
		snap.Boxes = map[string]BoxState{}
	}
	s.boxes = snap.Boxes
	return nil
}

// DecodeSnapshot decodes a State received from elsewhere. Boxes in the
// registry that the snapshot lacks are added with empty inputs, and timer
// handles are dropped, since they only mean something to the process that
// wrote them.
func DecodeSnapshot(reg *boxes.Registry, data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, err
	}
	for id, b := range s.boxes {
		b.Timer = 0
		s.boxes[id] = b
	}
	for _, def := range reg.All() {
		if _, ok := s.boxes[def.ID]; !ok {
			s.boxes[def.ID] = BoxState{}
		}
	}
	return s, nil
}
