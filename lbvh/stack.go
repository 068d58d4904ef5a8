package lbvh

// StackCapacity is the number of node indices a traversal Stack can hold.
// Karras trees over 32-bit keys with position tiebreaks have at most 64
// internal levels, and a depth-first traversal that pushes both children
// needs at most one slot per level plus one, so overflow only happens when
// a Stack has been given a smaller limit.
const StackCapacity = 128

// Stack is a fixed-capacity traversal stack. Each worker owns one, usually
// as a local variable, so traversals never allocate.
//
// When a push does not fit, the node is dropped and Truncated is set: the
// subtree under that node is treated as already resolved and contributes
// nothing. The traversal still terminates.
type Stack struct {
	items     [StackCapacity]uint32
	top       int
	limit     int
	Truncated int
}

// WithLimit returns an empty stack that holds at most limit entries. Limits
// outside [1, StackCapacity] select StackCapacity.
func WithLimit(limit int) Stack {
	s := Stack{limit: limit}
	s.Reset()
	return s
}

// Reset empties the stack and clears the truncation count.
func (s *Stack) Reset() {
	s.top = 0
	s.Truncated = 0
	if s.limit <= 0 || s.limit > StackCapacity { s.limit = StackCapacity }
}

// Push adds node to the stack, or drops it if the stack is full.
func (s *Stack) Push(node uint32) {
	if s.limit <= 0 || s.limit > StackCapacity { s.limit = StackCapacity }
	if s.top >= s.limit {
		s.Truncated++
		return
	}
	s.items[s.top] = node
	s.top++
}

// Pop removes and returns the most recently pushed node. ok is false if the
// stack is empty.
func (s *Stack) Pop() (node uint32, ok bool) {
	if s.top == 0 { return 0, false }
	s.top--
	return s.items[s.top], true
}
