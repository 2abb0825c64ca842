package tlv

// stateEntry represents the decoding state of a TLV.
type stateEntry struct {
	Header

	// End is the input offset of the first byte after the TLV, or -1 for the
	// virtual root element.
	End int64
}

// state maintains the state of a [Decoder]. The state consists of a stack of
// TLVs that are currently being processed. At the bottom of the stack there is
// a virtual constructed TLV of unknown length representing the root level of
// the input stream.
type state struct {
	stack []stateEntry
	curr  stateEntry // top entry of the stack

	// offset is the number of bytes consumed from the input.
	offset int64
}

// reset clears the state to a single root element. The allocated stack space is
// reused.
func (s *state) reset() {
	if s.stack == nil {
		s.stack = make([]stateEntry, 0, 10)
	}
	s.stack = s.stack[:0]
	s.curr = stateEntry{Header: Header{Constructed: true}, End: -1}
	s.offset = 0
}

// root indicates whether s is currently at the root level.
func (s *state) root() bool {
	return len(s.stack) == 0
}

// remaining returns the number of unconsumed bytes of the current TLV, or -1 at
// the root level.
func (s *state) remaining() int64 {
	if s.curr.End < 0 {
		return -1
	}
	return s.curr.End - s.offset
}

// push consumes a header of n bytes and puts h onto the stack, indicating that
// the value of h is now being processed.
func (s *state) push(h Header, n int) {
	s.stack = append(s.stack, s.curr)
	s.offset += int64(n)
	s.curr = stateEntry{Header: h, End: s.offset + int64(h.Length)}
}

// pop removes the topmost element from the stack. The content of the element
// must have been consumed completely.
func (s *state) pop() {
	if s.offset != s.curr.End {
		panic("BUG: tlv: popped data value that was not consumed")
	}
	s.curr = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}
