package compose

// ImportStack is the ordered set of source paths currently being expanded for
// one top-level composition request. It is always passed explicitly through
// the recursion, never held as ambient state, so concurrent page compositions
// cannot interfere.
type ImportStack struct {
	paths []string
	seen  map[string]bool
}

func NewImportStack() *ImportStack {
	return &ImportStack{seen: make(map[string]bool)}
}

func (s *ImportStack) Push(path string) {
	s.paths = append(s.paths, path)
	s.seen[path] = true
}

// Pop removes the most recently pushed path. Popping on every return path,
// including errors, is what allows diamond-shaped re-imports of the same
// fragment from sibling branches.
func (s *ImportStack) Pop() {
	if len(s.paths) == 0 {
		return
	}
	last := s.paths[len(s.paths)-1]
	s.paths = s.paths[:len(s.paths)-1]
	delete(s.seen, last)
}

func (s *ImportStack) Contains(path string) bool {
	return s.seen[path]
}

// Chain returns the paths currently on the stack, outermost first.
func (s *ImportStack) Chain() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}
