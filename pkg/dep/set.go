package dep

// Set is a DependencySet<T>: a sorted set of top-level Dependency<T> roots,
// per spec.md §3. Grounded on
// _examples/original_source/crates/pkgcraft/src/dep/dependency_set.rs.
type Set[T Value] struct {
	cmp   CompareFunc[T]
	roots []*Node[T]
}

// NewSet constructs an empty Set ordered by cmp.
func NewSet[T Value](cmp CompareFunc[T]) *Set[T] {
	return &Set[T]{cmp: cmp}
}

// Len returns the number of top-level roots.
func (s *Set[T]) Len() int { return len(s.roots) }

// Roots returns a defensive copy of the top-level nodes, in sorted order.
func (s *Set[T]) Roots() []*Node[T] { return append([]*Node[T](nil), s.roots...) }

// Add inserts n in sorted order, returning false if an equal root already
// exists (the set is unchanged).
func (s *Set[T]) Add(n *Node[T]) bool {
	i, found := s.search(n)
	if found {
		return false
	}
	s.roots = append(s.roots, nil)
	copy(s.roots[i+1:], s.roots[i:])
	s.roots[i] = n
	return true
}

// Remove deletes the root equal to n, returning false if it was absent.
func (s *Set[T]) Remove(n *Node[T]) bool {
	i, found := s.search(n)
	if !found {
		return false
	}
	s.roots = append(s.roots[:i], s.roots[i+1:]...)
	return true
}

func (s *Set[T]) search(n *Node[T]) (index int, found bool) {
	lo, hi := 0, len(s.roots)
	for lo < hi {
		mid := (lo + hi) / 2
		c := CompareNodes(s.cmp, s.roots[mid], n)
		switch {
		case c == 0:
			return mid, true
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false
}

func (s *Set[T]) indexOf(n *Node[T]) (int, bool) { return s.search(n) }

// Sort re-sorts only the top level (a no-op unless roots were mutated in
// place after insertion).
func (s *Set[T]) Sort() {
	insertionSort(s.roots, func(a, b *Node[T]) int { return CompareNodes(s.cmp, a, b) })
}

// SortRecursive sorts AllOf and Conditional children throughout every root,
// in place; AnyOf/ExactlyOneOf/AtMostOneOf order is left untouched since
// their order carries choice semantics.
func (s *Set[T]) SortRecursive() {
	for _, r := range s.roots {
		r.sortRecursive(s.cmp)
	}
	s.Sort()
}

func (n *Node[T]) sortRecursive(cmp CompareFunc[T]) {
	for _, c := range n.children {
		c.sortRecursive(cmp)
	}
	if n.kind == KindAllOf || n.kind == KindConditional {
		insertionSort(n.children, func(a, b *Node[T]) int { return CompareNodes(cmp, a, b) })
	}
}

// ShiftReplace replaces the root equal to key with value, preserving the
// relative order of trailing elements. If value already exists elsewhere in
// the set, key's slot is removed via a shift instead of a swap. Returns the
// replaced node, or nil if key was absent.
func (s *Set[T]) ShiftReplace(key, value *Node[T]) *Node[T] {
	i, found := s.indexOf(key)
	if !found {
		return nil
	}
	return s.shiftReplaceIndex(i, value)
}

func (s *Set[T]) shiftReplaceIndex(index int, value *Node[T]) *Node[T] {
	old := s.roots[index]
	s.roots = append(s.roots[:index], s.roots[index+1:]...)
	s.Add(value)
	return old
}

// SwapReplace replaces the root equal to key with value by removing key's
// slot via swap-with-last (O(1), perturbs the former last element's
// position) rather than a shift. Returns the replaced node, or nil if key
// was absent.
func (s *Set[T]) SwapReplace(key, value *Node[T]) *Node[T] {
	i, found := s.indexOf(key)
	if !found {
		return nil
	}
	old := s.roots[i]
	last := len(s.roots) - 1
	s.roots[i] = s.roots[last]
	s.roots = s.roots[:last]
	s.Add(value)
	return old
}

func (s *Set[T]) String() string {
	var out string
	for i, r := range s.roots {
		if i > 0 {
			out += " "
		}
		out += r.String()
	}
	return out
}

func (s *Set[T]) contains(n *Node[T]) bool {
	_, found := s.search(n)
	return found
}

// And returns a new Set containing roots present in both s and other,
// preserving s's ordering.
func (s *Set[T]) And(other *Set[T]) *Set[T] {
	out := NewSet(s.cmp)
	for _, r := range s.roots {
		if other.contains(r) {
			out.Add(r)
		}
	}
	return out
}

// Or returns the union of s and other. Like every Set, the result keeps its
// roots in sorted order, so other's new roots take their sorted positions
// instead of following s's roots.
func (s *Set[T]) Or(other *Set[T]) *Set[T] {
	out := NewSet(s.cmp)
	for _, r := range s.roots {
		out.Add(r)
	}
	for _, r := range other.roots {
		out.Add(r)
	}
	return out
}

// Xor returns the symmetric difference: s's roots not in other and other's
// roots not in s, kept in sorted order like every Set.
func (s *Set[T]) Xor(other *Set[T]) *Set[T] {
	out := NewSet(s.cmp)
	for _, r := range s.roots {
		if !other.contains(r) {
			out.Add(r)
		}
	}
	for _, r := range other.roots {
		if !s.contains(r) {
			out.Add(r)
		}
	}
	return out
}

// Sub returns s's roots that are not present in other, preserving order.
func (s *Set[T]) Sub(other *Set[T]) *Set[T] {
	out := NewSet(s.cmp)
	for _, r := range s.roots {
		if !other.contains(r) {
			out.Add(r)
		}
	}
	return out
}

func (s *Set[T]) AndAssign(other *Set[T])  { *s = *s.And(other) }
func (s *Set[T]) OrAssign(other *Set[T])   { *s = *s.Or(other) }
func (s *Set[T]) XorAssign(other *Set[T])  { *s = *s.Xor(other) }
func (s *Set[T]) SubAssign(other *Set[T])  { *s = *s.Sub(other) }
