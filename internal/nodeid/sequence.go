package nodeid

import (
	"strconv"
)

// Sequence hands out node ids. The zero value starts at 1.
type Sequence struct {
	next int
}

// Next returns a fresh id and advances the sequence.
func (s *Sequence) Next() string {
	if s.next < 1 {
		s.next = 1
	}
	id := strconv.Itoa(s.next)
	s.next++
	return id
}

// Peek returns the id the next call to Next would return.
func (s *Sequence) Peek() string {
	if s.next < 1 {
		return "1"
	}
	return strconv.Itoa(s.next)
}

// Observe moves the sequence past id if id is numeric. Non-numeric ids are
// ignored, which lets restored graphs carry ids from other producers.
func (s *Sequence) Observe(id string) {
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 {
		return
	}
	if n >= s.next {
		s.next = n + 1
	}
}

// Reset restarts the sequence at 1.
func (s *Sequence) Reset() {
	s.next = 1
}
