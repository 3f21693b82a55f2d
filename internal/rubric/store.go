package rubric

import (
	"fmt"
	"sort"
)

// Store is an immutable rubric table keyed by question index.
type Store struct {
	entries    map[int]*Entry
	indices    []int
	vocabulary *Vocabulary
}

// New validates and compiles entries and vocabulary into a Store. The store takes
// ownership of the provided values; they must not be modified afterwards.
func New(entries []*Entry, vocabulary *Vocabulary) (*Store, error) {
	if err := Validate(entries, vocabulary); err != nil {
		return nil, err
	}

	if vocabulary == nil {
		vocabulary = &Vocabulary{}
	}
	vocabulary.compile()

	s := &Store{
		entries:    make(map[int]*Entry, len(entries)),
		indices:    make([]int, 0, len(entries)),
		vocabulary: vocabulary,
	}

	for _, e := range entries {
		if err := e.compile(); err != nil {
			return nil, newConfigurationError(fmt.Errorf("question %d: %w", e.Index, err))
		}
		s.entries[e.Index] = e
		s.indices = append(s.indices, e.Index)
	}
	sort.Ints(s.indices)

	return s, nil
}

// Entry returns the rubric of the question index.
func (s *Store) Entry(index int) (*Entry, bool) {
	if s == nil {
		return nil, false
	}
	e, ok := s.entries[index]
	return e, ok
}

// Indices returns the known question indices in ascending order.
func (s *Store) Indices() []int {
	if s == nil {
		return nil
	}
	out := make([]int, len(s.indices))
	copy(out, s.indices)
	return out
}

// Len returns the number of rubric entries.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Vocabulary returns the shared semantic and synonym tables.
func (s *Store) Vocabulary() *Vocabulary {
	if s == nil {
		return nil
	}
	return s.vocabulary
}
