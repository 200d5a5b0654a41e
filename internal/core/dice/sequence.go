package dice

import "fmt"

// Sequence is a Source that replays fixed die faces in order. It lets
// callers reproduce a known table roll exactly.
//
// Each call to Intn returns the next face minus one. Sequence panics with
// ErrSequenceExhausted when it runs out of faces or a face does not fit the
// requested die.
type Sequence struct {
	faces []int
	next  int
}

// NewSequence returns a Sequence replaying faces.
func NewSequence(faces ...int) *Sequence {
	return &Sequence{faces: append([]int(nil), faces...)}
}

// Intn implements Source.
func (s *Sequence) Intn(n int) int {
	if s.next >= len(s.faces) {
		panic(ErrSequenceExhausted)
	}
	face := s.faces[s.next]
	s.next++
	if face < 1 || face > n {
		panic(fmt.Errorf("%w: %d on d%d", ErrFaceOutOfRange, face, n))
	}
	return face - 1
}

// Remaining reports how many faces have not been replayed yet.
func (s *Sequence) Remaining() int {
	return len(s.faces) - s.next
}
