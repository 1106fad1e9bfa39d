package instr

// Stream is the doubly-linked instruction sequence for one kernel. It owns
// the Instructions; basic blocks elsewhere hold non-owning references into
// it. Splice lets the inliner insert a callee body mid-stream in O(1)
// without invalidating any existing Prev/Next pointers outside the spliced
// range, which is the reason this is a linked abstraction and not a flat
// slice (see design notes on intrusive linked instructions).
type Stream struct {
	head, tail *Instruction
	count      int
}

// NewStream returns an empty instruction stream.
func NewStream() *Stream {
	return &Stream{}
}

// Append adds inst at the end of the stream.
func (s *Stream) Append(inst *Instruction) {
	if s.tail != nil {
		s.tail.Next = inst
		inst.Prev = s.tail
	} else {
		s.head = inst
		inst.Prev = nil
	}
	inst.Next = nil
	s.tail = inst
	s.count++
}

// First returns the first instruction in the stream, or nil if empty.
func (s *Stream) First() *Instruction { return s.head }

// Last returns the last instruction in the stream, or nil if empty.
func (s *Stream) Last() *Instruction { return s.tail }

// Len returns the number of instructions currently linked into the stream.
// Splicing does not change it; it only reorders.
func (s *Stream) Len() int { return s.count }

// SpliceAfter unlinks the inclusive range [first, last] from wherever it
// currently sits in the stream and relinks it immediately after anchor.
// first..last must already be part of this stream and must not contain
// anchor. This is the operation the inliner uses to move a callee body to
// sit right after its call site.
func (s *Stream) SpliceAfter(anchor, first, last *Instruction) {
	// Unlink [first, last] from its current position.
	beforeFirst := first.Prev
	afterLast := last.Next

	if beforeFirst != nil {
		beforeFirst.Next = afterLast
	} else {
		s.head = afterLast
	}
	if afterLast != nil {
		afterLast.Prev = beforeFirst
	} else {
		s.tail = beforeFirst
	}

	// Relink [first, last] after anchor.
	anchorNext := anchor.Next
	anchor.Next = first
	first.Prev = anchor
	last.Next = anchorNext
	if anchorNext != nil {
		anchorNext.Prev = last
	} else {
		s.tail = last
	}
}

// Each calls fn for every instruction in order, including deleted ones;
// callers that must skip deleted instructions check IsDeleted themselves.
func (s *Stream) Each(fn func(*Instruction)) {
	for cur := s.head; cur != nil; cur = cur.Next {
		fn(cur)
	}
}
