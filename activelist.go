package mixer

// activeList is the mixer's intrusive doubly-linked list of Streams
// currently being rendered. It is only ever touched by the mixer
// thread, so it needs no synchronization of its own — the hot-path
// requirement is iterate-and-possibly-remove in one pass, which a
// hash-based set can't give without extra bookkeeping.
type activeList struct {
	head, tail *Stream
}

// add is a no-op if s is already in the list.
func (l *activeList) add(s *Stream) {
	if s.inActive {
		return
	}
	s.inActive = true
	s.prev = l.tail
	s.next = nil
	if l.tail != nil {
		l.tail.next = s
	} else {
		l.head = s
	}
	l.tail = s
}

// remove is a no-op if s is not in the list.
func (l *activeList) remove(s *Stream) {
	if !s.inActive {
		return
	}
	s.inActive = false
	if s.prev != nil {
		s.prev.next = s.next
	} else {
		l.head = s.next
	}
	if s.next != nil {
		s.next.prev = s.prev
	} else {
		l.tail = s.prev
	}
	s.prev = nil
	s.next = nil
}
