// Package dep implements the polymorphic dependency expression tree from
// spec.md §3/§4.D: a recursive sum type (Enabled/Disabled/AllOf/AnyOf/
// ExactlyOneOf/AtMostOneOf/Conditional) over a leaf type T, plus a sorted
// DependencySet of tree roots, iterators, evaluation, and set algebra.
// Grounded on _examples/original_source/crates/pkgcraft/src/dep.rs and
// src/dep/dependency_set.rs, generalized from the original's two
// UseEnabled/UseDisabled variants to the single Conditional(UseDep,
// children) variant spec.md names.
package dep

import (
	"strings"

	"pkgcraft/pkg/atom"
)

// Kind discriminates the Dependency sum type.
type Kind int

const (
	KindEnabled Kind = iota
	KindDisabled
	KindAllOf
	KindAnyOf
	KindExactlyOneOf
	KindAtMostOneOf
	KindConditional
)

func (k Kind) String() string {
	switch k {
	case KindEnabled:
		return "Enabled"
	case KindDisabled:
		return "Disabled"
	case KindAllOf:
		return "AllOf"
	case KindAnyOf:
		return "AnyOf"
	case KindExactlyOneOf:
		return "ExactlyOneOf"
	case KindAtMostOneOf:
		return "AtMostOneOf"
	case KindConditional:
		return "Conditional"
	default:
		return "Unknown"
	}
}

// Value is the constraint every leaf type T must satisfy: Dep, uri.Uri, and
// the plain string wrapper PlainString all implement it.
type Value interface {
	String() string
}

// PlainString is the T used for LICENSE / PROPERTIES / RESTRICT /
// REQUIRED_USE dependency sets, which carry bare string leaves.
type PlainString string

func (s PlainString) String() string { return string(s) }

// CompareFunc totally orders a leaf type T; callers supply the appropriate
// one (atom.CompareDep, uri.Compare, or strings.Compare wrapped around
// PlainString) when constructing a Set.
type CompareFunc[T Value] func(a, b T) int

// Node is one node of a Dependency<T> tree. The zero value is not valid;
// construct via Enabled, Disabled, AllOf, AnyOf, ExactlyOneOf, AtMostOneOf,
// or Conditional.
type Node[T Value] struct {
	kind     Kind
	value    T           // valid iff kind is Enabled or Disabled
	children []*Node[T]  // valid for every group kind
	cond     atom.UseDep // valid iff kind is Conditional
}

func Enabled[T Value](v T) *Node[T] { return &Node[T]{kind: KindEnabled, value: v} }

// Disabled is legal only within REQUIRED_USE trees, per spec.md §3.
func Disabled[T Value](v T) *Node[T] { return &Node[T]{kind: KindDisabled, value: v} }

// AllOf groups children that must all hold; children are kept in cmp order.
func AllOf[T Value](cmp CompareFunc[T], children ...*Node[T]) *Node[T] {
	return &Node[T]{kind: KindAllOf, children: sortedCopy(cmp, children)}
}

// AnyOf groups children where at least one must hold; input order is
// preserved (choice semantics depend on order).
func AnyOf[T Value](children ...*Node[T]) *Node[T] {
	return &Node[T]{kind: KindAnyOf, children: append([]*Node[T](nil), children...)}
}

// ExactlyOneOf is REQUIRED_USE-only: exactly one child must hold.
func ExactlyOneOf[T Value](children ...*Node[T]) *Node[T] {
	return &Node[T]{kind: KindExactlyOneOf, children: append([]*Node[T](nil), children...)}
}

// AtMostOneOf is REQUIRED_USE-only: at most one child may hold.
func AtMostOneOf[T Value](children ...*Node[T]) *Node[T] {
	return &Node[T]{kind: KindAtMostOneOf, children: append([]*Node[T](nil), children...)}
}

// Conditional wraps children that apply only when u's USE condition holds;
// u.Kind must be UseEnabledConditional or UseDisabledConditional. Children
// are kept in cmp order.
func Conditional[T Value](cmp CompareFunc[T], u atom.UseDep, children ...*Node[T]) *Node[T] {
	return &Node[T]{kind: KindConditional, cond: u, children: sortedCopy(cmp, children)}
}

func (n *Node[T]) Kind() Kind           { return n.kind }
func (n *Node[T]) Value() T             { return n.value }
func (n *Node[T]) Condition() atom.UseDep { return n.cond }

// Children returns a defensive copy of n's direct children; empty (not nil)
// for Enabled/Disabled nodes.
func (n *Node[T]) Children() []*Node[T] {
	return append(make([]*Node[T], 0, len(n.children)), n.children...)
}

// IsEmpty reports whether n is a group kind with no children.
func (n *Node[T]) IsEmpty() bool {
	switch n.kind {
	case KindEnabled, KindDisabled:
		return false
	default:
		return len(n.children) == 0
	}
}

// Len returns the number of direct elements n contains (1 for a leaf).
func (n *Node[T]) Len() int {
	switch n.kind {
	case KindEnabled, KindDisabled:
		return 1
	default:
		return len(n.children)
	}
}

func (n *Node[T]) String() string {
	var b strings.Builder
	n.render(&b)
	return b.String()
}

func (n *Node[T]) render(b *strings.Builder) {
	switch n.kind {
	case KindEnabled:
		b.WriteString(n.value.String())
	case KindDisabled:
		b.WriteByte('!')
		b.WriteString(n.value.String())
	case KindAllOf:
		b.WriteString("( ")
		renderChildren(b, n.children)
		b.WriteString(" )")
	case KindAnyOf:
		b.WriteString("|| ( ")
		renderChildren(b, n.children)
		b.WriteString(" )")
	case KindExactlyOneOf:
		b.WriteString("^^ ( ")
		renderChildren(b, n.children)
		b.WriteString(" )")
	case KindAtMostOneOf:
		b.WriteString("?? ( ")
		renderChildren(b, n.children)
		b.WriteString(" )")
	case KindConditional:
		if n.cond.Kind == atom.UseDisabledConditional {
			b.WriteByte('!')
		}
		b.WriteString(n.cond.Flag)
		b.WriteString("? ( ")
		renderChildren(b, n.children)
		b.WriteString(" )")
	}
}

func renderChildren[T Value](b *strings.Builder, children []*Node[T]) {
	for i, c := range children {
		if i > 0 {
			b.WriteByte(' ')
		}
		c.render(b)
	}
}

func sortedCopy[T Value](cmp CompareFunc[T], children []*Node[T]) []*Node[T] {
	out := append([]*Node[T](nil), children...)
	insertionSort(out, func(a, b *Node[T]) int { return CompareNodes(cmp, a, b) })
	return out
}

func insertionSort[T any](s []T, less func(a, b T) int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(s[j-1], s[j]) > 0; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
