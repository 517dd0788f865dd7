package timegrid

import "sync"

// PreviewSequencer orders speculative assignment previews issued from a
// continuous input stream. Each request takes a monotonically increasing
// sequence number; a response is applied only if no newer request has been
// issued since. Arrival order is irrelevant, a fast server may answer an
// older request last.
type PreviewSequencer struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

// Next issues the sequence number for a new preview request.
func (s *PreviewSequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Accept reports whether the response for the given sequence should be
// applied. Responses to superseded requests are discarded.
func (s *PreviewSequencer) Accept(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.issued || seq <= s.applied {
		return false
	}
	s.applied = seq
	return true
}

// Latest returns the most recently issued sequence number.
func (s *PreviewSequencer) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}
