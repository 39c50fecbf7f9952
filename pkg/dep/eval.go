package dep

import "pkgcraft/pkg/atom"

// Evaluate prunes n against a set of enabled USE flags: a Conditional node
// is expanded inline if its condition holds under options, otherwise
// dropped; empty groupings after pruning are dropped. Returns nil if n
// itself is pruned away.
func (n *Node[T]) Evaluate(options map[string]bool) *Node[T] {
	switch n.kind {
	case KindEnabled, KindDisabled:
		return n
	case KindConditional:
		if !conditionHolds(n.cond, options) {
			return nil
		}
		return evalGroup(n.kind, n.children, func(c *Node[T]) *Node[T] { return c.Evaluate(options) })
	default:
		return evalGroup(n.kind, n.children, func(c *Node[T]) *Node[T] { return c.Evaluate(options) })
	}
}

// EvaluateForce is like Evaluate but keeps (force=true) or drops
// (force=false) every Conditional body regardless of its flag name.
func (n *Node[T]) EvaluateForce(force bool) *Node[T] {
	switch n.kind {
	case KindEnabled, KindDisabled:
		return n
	case KindConditional:
		if !force {
			return nil
		}
		return evalGroup(n.kind, n.children, func(c *Node[T]) *Node[T] { return c.EvaluateForce(force) })
	default:
		return evalGroup(n.kind, n.children, func(c *Node[T]) *Node[T] { return c.EvaluateForce(force) })
	}
}

func conditionHolds(u atom.UseDep, options map[string]bool) bool {
	switch u.Kind {
	case atom.UseEnabledConditional:
		return options[u.Flag]
	case atom.UseDisabledConditional:
		return !options[u.Flag]
	default:
		return false
	}
}

// evalGroup re-forms a group node (discarding the Conditional wrapper
// itself, since only its children survive into the pruned tree) from
// whichever of its children survive pruning.
func evalGroup[T Value](kind Kind, children []*Node[T], prune func(*Node[T]) *Node[T]) *Node[T] {
	var kept []*Node[T]
	for _, c := range children {
		if p := prune(c); p != nil {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if kind == KindConditional {
		// A surviving Conditional is replaced by its single surviving
		// child, or by an AllOf holding its surviving children.
		if len(kept) == 1 {
			return kept[0]
		}
		return &Node[T]{kind: KindAllOf, children: kept}
	}
	return &Node[T]{kind: kind, children: kept}
}

// IterEvaluate returns the flattened leaves of n after Evaluate.
func (n *Node[T]) IterEvaluate(options map[string]bool) []T {
	if p := n.Evaluate(options); p != nil {
		return p.IterFlatten()
	}
	return nil
}

// IterEvaluateForce returns the flattened leaves of n after EvaluateForce.
func (n *Node[T]) IterEvaluateForce(force bool) []T {
	if p := n.EvaluateForce(force); p != nil {
		return p.IterFlatten()
	}
	return nil
}

func (s *Set[T]) IterEvaluate(options map[string]bool) []T {
	var out []T
	for _, r := range s.roots {
		out = append(out, r.IterEvaluate(options)...)
	}
	return out
}

func (s *Set[T]) IterEvaluateForce(force bool) []T {
	var out []T
	for _, r := range s.roots {
		out = append(out, r.IterEvaluateForce(force)...)
	}
	return out
}
