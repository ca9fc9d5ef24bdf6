package project

import (
	"encoding/json"
	"sort"

	"gopkg.in/yaml.v3"
)

// Set is an unordered set of strings, stored as a sorted YAML sequence.
// A nil Set is "unset", which only matters for optional fields; a non-nil
// empty Set is present but empty.
type Set map[string]struct{}

// NewSet returns a non-nil set holding values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts v. The set must be non-nil.
func (s Set) Add(v string) {
	s[v] = struct{}{}
}

// Has reports whether v is in the set
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of elements
func (s Set) Len() int {
	return len(s)
}

// Union inserts every element of other into s and returns s, allocating it
// when s is nil.
func (s Set) Union(other Set) Set {
	if s == nil {
		s = make(Set, len(other))
	}
	for v := range other {
		s[v] = struct{}{}
	}
	return s
}

// Sorted returns the elements in ascending order, never nil.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Clone returns a copy; nil stays nil.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	return NewSet().Union(s)
}

// Equal reports whether both sets hold the same elements. Nil and empty
// sets compare equal; use IsZero to tell them apart.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// IsZero reports whether the set is unset. yaml.v3 consults it for omitempty,
// so an empty but present set is still written.
func (s Set) IsZero() bool {
	return s == nil
}

// MarshalYAML encodes the set as a sorted sequence
func (s Set) MarshalYAML() (interface{}, error) {
	return s.Sorted(), nil
}

// UnmarshalYAML decodes a sequence; an explicit null leaves the set unset
func (s *Set) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*s = nil
		return nil
	}
	var items []string
	if err := value.Decode(&items); err != nil {
		return err
	}
	*s = NewSet(items...)
	return nil
}

// MarshalJSON encodes the set as a sorted array, or null when unset
func (s Set) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array; null leaves the set unset
func (s *Set) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if items == nil {
		*s = nil
		return nil
	}
	*s = NewSet(items...)
	return nil
}
