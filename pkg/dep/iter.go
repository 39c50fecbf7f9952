package dep

import "pkgcraft/pkg/atom"

// Iter returns n's direct children (a single-element slice of n itself for
// a leaf), per spec.md §4.D "iter: direct children of a Dependency".
func (n *Node[T]) Iter() []*Node[T] {
	switch n.kind {
	case KindEnabled, KindDisabled:
		return []*Node[T]{n}
	default:
		return n.Children()
	}
}

// IterFlatten returns every leaf value in n in pre-order.
func (n *Node[T]) IterFlatten() []T {
	var out []T
	n.flattenInto(&out)
	return out
}

func (n *Node[T]) flattenInto(out *[]T) {
	switch n.kind {
	case KindEnabled, KindDisabled:
		*out = append(*out, n.value)
	default:
		for _, c := range n.children {
			c.flattenInto(out)
		}
	}
}

// IterRecursive returns n and every descendant node, pre-order.
func (n *Node[T]) IterRecursive() []*Node[T] {
	out := []*Node[T]{n}
	for _, c := range n.children {
		out = append(out, c.IterRecursive()...)
	}
	return out
}

// IterConditionals returns the UseDep of every Conditional node reachable
// from n, pre-order.
func (n *Node[T]) IterConditionals() []atom.UseDep {
	var out []atom.UseDep
	for _, node := range n.IterRecursive() {
		if node.kind == KindConditional {
			out = append(out, node.cond)
		}
	}
	return out
}

// ConditionalLeaf pairs a leaf value with the stack of UseDeps of every
// Conditional node enclosing it, innermost last.
type ConditionalLeaf[T Value] struct {
	Conditions []atom.UseDep
	Value      T
}

// IterConditionalFlatten returns every leaf in n, pre-order, paired with
// its enclosing Conditional stack.
func (n *Node[T]) IterConditionalFlatten() []ConditionalLeaf[T] {
	var out []ConditionalLeaf[T]
	n.condFlattenInto(nil, &out)
	return out
}

func (n *Node[T]) condFlattenInto(stack []atom.UseDep, out *[]ConditionalLeaf[T]) {
	switch n.kind {
	case KindEnabled, KindDisabled:
		*out = append(*out, ConditionalLeaf[T]{
			Conditions: append([]atom.UseDep(nil), stack...),
			Value:      n.value,
		})
	case KindConditional:
		next := append(append([]atom.UseDep(nil), stack...), n.cond)
		for _, c := range n.children {
			c.condFlattenInto(next, out)
		}
	default:
		for _, c := range n.children {
			c.condFlattenInto(stack, out)
		}
	}
}

// Set iterator mirrors, over every root in order.

func (s *Set[T]) Iter() []*Node[T] {
	out := make([]*Node[T], 0, len(s.roots))
	for _, r := range s.roots {
		out = append(out, r.Iter()...)
	}
	return out
}

func (s *Set[T]) IterFlatten() []T {
	var out []T
	for _, r := range s.roots {
		out = append(out, r.IterFlatten()...)
	}
	return out
}

func (s *Set[T]) IterRecursive() []*Node[T] {
	var out []*Node[T]
	for _, r := range s.roots {
		out = append(out, r.IterRecursive()...)
	}
	return out
}

func (s *Set[T]) IterConditionals() []atom.UseDep {
	var out []atom.UseDep
	for _, r := range s.roots {
		out = append(out, r.IterConditionals()...)
	}
	return out
}

func (s *Set[T]) IterConditionalFlatten() []ConditionalLeaf[T] {
	var out []ConditionalLeaf[T]
	for _, r := range s.roots {
		out = append(out, r.IterConditionalFlatten()...)
	}
	return out
}

// FlattenAny returns IterFlatten's leaves boxed as any, letting
// type-erased consumers (pkg/restrict's Dep wrapper) test each leaf
// without importing this instantiation's concrete T.
func (s *Set[T]) FlattenAny() []any {
	leaves := s.IterFlatten()
	out := make([]any, len(leaves))
	for i, v := range leaves {
		out[i] = v
	}
	return out
}

// FlattenAny is Node's equivalent of Set.FlattenAny.
func (n *Node[T]) FlattenAny() []any {
	leaves := n.IterFlatten()
	out := make([]any, len(leaves))
	for i, v := range leaves {
		out[i] = v
	}
	return out
}
