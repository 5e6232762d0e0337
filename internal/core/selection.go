package core

// Selection is the set of country names chosen for comparison.
// Members keep the order in which they were first selected.
type Selection struct {
	names []string
	index map[string]int
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{index: make(map[string]int)}
}

// Toggle adds name when selected is true and removes it otherwise.
// Re-adding a member or removing a non-member does nothing, and the
// SelectAllValue sentinel is ignored.
func (s *Selection) Toggle(name string, selected bool) {
	if name == SelectAllValue || name == "" {
		return
	}
	if selected {
		s.add(name)
	} else {
		s.remove(name)
	}
}

// SelectAll toggles every name in names. Members outside names are untouched.
func (s *Selection) SelectAll(names []string, selected bool) {
	for _, n := range names {
		s.Toggle(n, selected)
	}
}

// Clear removes every member.
func (s *Selection) Clear() {
	s.names = nil
	s.index = make(map[string]int)
}

// Members returns the members in selection order.
func (s *Selection) Members() []string {
	return append([]string(nil), s.names...)
}

// Has reports whether name is selected.
func (s *Selection) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of members.
func (s *Selection) Len() int {
	return len(s.names)
}

func (s *Selection) add(name string) {
	if _, ok := s.index[name]; ok {
		return
	}
	s.index[name] = len(s.names)
	s.names = append(s.names, name)
}

func (s *Selection) remove(name string) {
	i, ok := s.index[name]
	if !ok {
		return
	}
	delete(s.index, name)
	s.names = append(s.names[:i], s.names[i+1:]...)
	for j := i; j < len(s.names); j++ {
		s.index[s.names[j]] = j
	}
}
