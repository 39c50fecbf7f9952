package atom

import "strings"

// UseDepKind enumerates the USE-dependency atom forms.
type UseDepKind int

const (
	UseEnabled UseDepKind = iota
	UseDisabled
	UseEqual
	UseNotEqual
	UseEnabledConditional
	UseDisabledConditional
)

// UseDep is one element of a Dep's USE-dependency block, e.g. "flag",
// "-flag", "flag=", "!flag=", "flag?", "!flag?", each with an optional
// "(+)"/"(-)" default. Two UseDeps are equal iff Kind, Flag, and Default all
// match (plain struct equality suffices since every field is comparable).
type UseDep struct {
	Kind    UseDepKind
	Flag    string
	Default byte // 0, '+', or '-'
}

func (u UseDep) String() string {
	var b strings.Builder
	switch u.Kind {
	case UseNotEqual, UseDisabledConditional:
		b.WriteByte('!')
	}
	b.WriteString(u.Kind.disabledPrefix())
	b.WriteString(u.Flag)
	if u.Default != 0 {
		b.WriteByte('(')
		b.WriteByte(u.Default)
		b.WriteByte(')')
	}
	b.WriteString(u.Kind.suffix())
	return b.String()
}

func (k UseDepKind) disabledPrefix() string {
	if k == UseDisabled {
		return "-"
	}
	return ""
}

func (k UseDepKind) suffix() string {
	switch k {
	case UseEqual, UseNotEqual:
		return "="
	case UseEnabledConditional, UseDisabledConditional:
		return "?"
	default:
		return ""
	}
}

// CompareUseDeps orders two USE-dep sets lexicographically by
// (Kind, Flag, Default) element-wise, with the shorter sequence sorting
// first when it's a strict prefix of the longer one.
func CompareUseDeps(a, b []UseDep) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareOneUseDep(a[i], b[i]); c != 0 {
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

func compareOneUseDep(a, b UseDep) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	if c := strings.Compare(a.Flag, b.Flag); c != 0 {
		return c
	}
	if a.Default != b.Default {
		if a.Default < b.Default {
			return -1
		}
		return 1
	}
	return 0
}
