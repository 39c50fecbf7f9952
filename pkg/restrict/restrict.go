// Package restrict implements the composable boolean match language from
// spec.md §4.C: typed leaf predicates plus And/Or/Xor/Not combinators, used
// as the query substrate across the toolkit (repository iteration, target
// resolution, cache pruning).
//
// Grounded on _examples/original_source/src/restrict/parse/dep.rs (glob →
// leaf-predicate compilation) and _examples/original_source/src/restrict/
// (the Restrict enum + Restriction trait this package generalizes into a
// single interface dispatched by dynamic type, since Go has no trait-impl-
// per-target-type mechanism).
package restrict

// Restriction is the single entry point: Matches(v) reports whether v
// satisfies this restriction. Targets are dispatched dynamically (Cpv, Cpn,
// *atom.Dep, string, a dependency tree/set, ...); a leaf kind that doesn't
// apply to v's type matches false, never errors, per spec.md §4.C.
type Restriction interface {
	Matches(v any) bool
}

// Func adapts a plain function to Restriction.
type Func func(v any) bool

func (f Func) Matches(v any) bool { return f(v) }

type trueR struct{}

func (trueR) Matches(any) bool { return true }

type falseR struct{}

func (falseR) Matches(any) bool { return false }

// True always matches. False never matches.
var (
	True  Restriction = trueR{}
	False Restriction = falseR{}
)

type andR struct{ children []Restriction }

func (r andR) Matches(v any) bool {
	for _, c := range r.children {
		if !c.Matches(v) {
			return false
		}
	}
	return true
}

// And matches iff every child matches. And() with no children is
// vacuously true.
func And(children ...Restriction) Restriction { return andR{children: children} }

type orR struct{ children []Restriction }

func (r orR) Matches(v any) bool {
	for _, c := range r.children {
		if c.Matches(v) {
			return true
		}
	}
	return false
}

// Or matches iff at least one child matches. Or() with no children is
// vacuously false.
func Or(children ...Restriction) Restriction { return orR{children: children} }

type xorR struct{ children []Restriction }

func (r xorR) Matches(v any) bool {
	count := 0
	for _, c := range r.children {
		if c.Matches(v) {
			count++
		}
	}
	return count%2 == 1
}

// Xor matches iff an odd number of children match.
func Xor(children ...Restriction) Restriction { return xorR{children: children} }

type notR struct{ inner Restriction }

func (r notR) Matches(v any) bool { return !r.inner.Matches(v) }

// Not inverts inner.
func Not(inner Restriction) Restriction { return notR{inner: inner} }
