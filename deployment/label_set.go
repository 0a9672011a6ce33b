package deployment

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// LabelSet is a set of labels on an address book entry, such as the market a Comet proxy
// belongs to.
type LabelSet struct {
	elements map[string]struct{}
}

// NewLabelSet returns a set holding labels.
func NewLabelSet(labels ...string) LabelSet {
	s := LabelSet{elements: make(map[string]struct{}, len(labels))}
	s.Add(labels...)

	return s
}

// Add inserts labels into the set.
func (s *LabelSet) Add(labels ...string) {
	if s.elements == nil {
		s.elements = make(map[string]struct{})
	}
	for _, l := range labels {
		s.elements[l] = struct{}{}
	}
}

// Contains reports whether label is in the set.
func (s LabelSet) Contains(label string) bool {
	_, ok := s.elements[label]
	return ok
}

// List returns the labels sorted.
func (s LabelSet) List() []string {
	labels := slices.Collect(maps.Keys(s.elements))
	slices.Sort(labels)

	return labels
}

// String returns the sorted labels joined by spaces.
func (s LabelSet) String() string {
	return strings.Join(s.List(), " ")
}

// Equal reports whether both sets hold the same labels.
func (s LabelSet) Equal(other LabelSet) bool {
	return maps.Equal(s.elements, other.elements)
}

// Len returns the number of labels.
func (s LabelSet) Len() int {
	return len(s.elements)
}

// Clone returns a copy of the set.
func (s LabelSet) Clone() LabelSet {
	return LabelSet{elements: maps.Clone(s.elements)}
}

// MarshalJSON encodes the set as a sorted JSON array.
func (s LabelSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

// UnmarshalJSON decodes a JSON array of labels.
func (s *LabelSet) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	*s = NewLabelSet(labels...)

	return nil
}
