package dep

import "pkgcraft/pkg/atom"

// CompareNodes totally orders two Node[T] trees: by Kind first, then by
// value (leaves), condition+children (Conditional), or children
// (remaining group kinds) -- matching the derived Ord on the original's
// Dependency enum (variant discriminant first, payload second).
func CompareNodes[T Value](cmp CompareFunc[T], a, b *Node[T]) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindEnabled, KindDisabled:
		return cmp(a.value, b.value)
	case KindConditional:
		if c := compareUseDep(a.cond, b.cond); c != 0 {
			return c
		}
		return compareChildren(cmp, a.children, b.children)
	default:
		return compareChildren(cmp, a.children, b.children)
	}
}

func compareChildren[T Value](cmp CompareFunc[T], a, b []*Node[T]) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := CompareNodes(cmp, a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func compareUseDep(a, b atom.UseDep) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	if a.Flag != b.Flag {
		if a.Flag < b.Flag {
			return -1
		}
		return 1
	}
	if a.Default != b.Default {
		if a.Default < b.Default {
			return -1
		}
		return 1
	}
	return 0
}

// Equal reports whether a and b render identically under cmp -- structural
// equality, not pointer identity.
func Equal[T Value](cmp CompareFunc[T], a, b *Node[T]) bool {
	return CompareNodes(cmp, a, b) == 0
}
