package atom

import (
	"strings"

	"pkgcraft/pkg/version"
)

// Dep is a full dependency specification: an unversioned identity plus
// everything that can qualify it -- version+operator, blocker, slot spec,
// USE-deps, and repo -- per spec.md §3.
type Dep struct {
	Cpn
	Version *version.Version // nil if unversioned; carries its own operator
	Blocker Blocker
	Slot    *SlotDep // nil if absent
	UseDeps []UseDep // nil if absent; order preserved as parsed
	Repo    string   // "" if absent
}

// String renders the inverse of Parse; round-trips for any successfully
// parsed Dep.
func (d *Dep) String() string {
	var b strings.Builder
	b.WriteString(d.Blocker.String())
	if d.Version != nil && d.Version.Op != version.OpNone {
		b.WriteString(d.Version.Op.String())
	}
	b.WriteString(d.Cpn.String())
	if d.Version != nil {
		b.WriteByte('-')
		b.WriteString(stripOp(d.Version))
		if d.Version.Op == version.OpEqualGlob {
			b.WriteByte('*')
		}
	}
	if d.Slot != nil {
		b.WriteByte(':')
		b.WriteString(d.Slot.String())
	}
	if d.Repo != "" {
		b.WriteString("::")
		b.WriteString(d.Repo)
	}
	if len(d.UseDeps) > 0 {
		b.WriteByte('[')
		for i, u := range d.UseDeps {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(u.String())
		}
		b.WriteByte(']')
	}
	return b.String()
}

func stripOp(v *version.Version) string {
	return v.WithoutOp().String()
}

// Unblocked returns a copy of d with no blocker set.
func (d *Dep) Unblocked() *Dep {
	cp := *d
	cp.Blocker = BlockerNone
	return &cp
}

// Cpv returns the category/package/version identity of d, valid only when
// d carries a version.
func (d *Dep) Cpv() (Cpv, bool) {
	if d.Version == nil {
		return Cpv{}, false
	}
	return Cpv{Cpn: d.Cpn, Version: d.Version.WithoutOp()}, true
}
