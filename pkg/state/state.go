package state

import (
	"sort"
	"time"
)

// Deactivation records one deactivated extension.
type Deactivation struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
}

// State is the persisted set of deactivated extensions, kept sorted by ID.
type State struct {
	Deactivated []Deactivation `json:"deactivated"`
}

// IsDeactivated reports whether id has been deactivated.
func (s State) IsDeactivated(id string) bool {
	_, ok := s.find(id)
	return ok
}

// Deactivate records id. It returns false if id was already recorded.
func (s *State) Deactivate(id string, at time.Time) bool {
	i, ok := s.find(id)
	if ok {
		return false
	}
	s.Deactivated = append(s.Deactivated, Deactivation{})
	copy(s.Deactivated[i+1:], s.Deactivated[i:])
	s.Deactivated[i] = Deactivation{ID: id, At: at.UTC()}
	return true
}

// Reactivate removes id. It returns false if id was not recorded.
func (s *State) Reactivate(id string) bool {
	i, ok := s.find(id)
	if !ok {
		return false
	}
	s.Deactivated = append(s.Deactivated[:i], s.Deactivated[i+1:]...)
	return true
}

// IDs returns the deactivated identifiers in sorted order.
func (s State) IDs() []string {
	ids := make([]string, len(s.Deactivated))
	for i, d := range s.Deactivated {
		ids[i] = d.ID
	}
	return ids
}

func (s State) find(id string) (int, bool) {
	i := sort.Search(len(s.Deactivated), func(i int) bool {
		return s.Deactivated[i].ID >= id
	})
	return i, i < len(s.Deactivated) && s.Deactivated[i].ID == id
}

// normalize sorts the deactivations by ID and drops repeated IDs, keeping
// the first occurrence.
func (s *State) normalize() {
	sort.SliceStable(s.Deactivated, func(i, j int) bool {
		return s.Deactivated[i].ID < s.Deactivated[j].ID
	})
	out := s.Deactivated[:0]
	for i, d := range s.Deactivated {
		if i > 0 && d.ID == s.Deactivated[i-1].ID {
			continue
		}
		out = append(out, d)
	}
	s.Deactivated = out
}

func (s State) clone() State {
	if s.Deactivated == nil {
		return State{}
	}
	out := make([]Deactivation, len(s.Deactivated))
	copy(out, s.Deactivated)
	return State{Deactivated: out}
}
