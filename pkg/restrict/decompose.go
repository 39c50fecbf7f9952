package restrict

// AndChildren returns r's children if r is an And combinator, per
// spec.md §4.J's "And restrict carries a single Repo(Equal(path)) leaf"
// pattern match — pkg/target needs to look inside a parsed glob restrict
// without a way to construct one of its own.
func AndChildren(r Restriction) ([]Restriction, bool) {
	a, ok := r.(andR)
	if !ok {
		return nil, false
	}
	return a.children, true
}

// RepoPathLeaf returns the literal string if r is a Repo(StrEqual(s))
// leaf -- i.e. an exact (non-glob) repo-scoping leaf, the one shape
// spec.md §4.J treats as a candidate external-repo path.
func RepoPathLeaf(r Restriction) (string, bool) {
	fw, ok := r.(fieldWrap)
	if !ok || fw.field != "repo" {
		return "", false
	}
	s, ok := fw.inner.(*Str)
	if !ok || s.kind != StrEqualKind {
		return "", false
	}
	return s.val, true
}
