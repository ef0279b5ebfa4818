package source

// SliceSource serves lines from memory. Used by tests and as the identity
// adapter for callers that already hold their lines.
type SliceSource struct {
	lines []string
	next  int
	cur   string
}

// FromLines wraps an in-memory line slice in a LineSource.
func FromLines(lines ...string) *SliceSource {
	return &SliceSource{lines: lines}
}

func (s *SliceSource) Scan() bool {
	if s.next >= len(s.lines) {
		return false
	}
	s.cur = s.lines[s.next]
	s.next++
	return true
}

func (s *SliceSource) Text() string { return s.cur }

func (s *SliceSource) Err() error { return nil }
