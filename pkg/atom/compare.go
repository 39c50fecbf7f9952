package atom

import (
	"strings"

	"pkgcraft/pkg/version"
)

// CompareDep implements the Dep ordering from spec.md §4.B: category, then
// package, then version (None < Some), then blocker, then slot, then
// subslot, then USE-dep set, then repo.
func CompareDep(a, b *Dep) int {
	if c := CompareCpn(a.Cpn, b.Cpn); c != 0 {
		return c
	}
	if c := version.Compare(a.Version, b.Version); c != 0 {
		return c
	}
	if a.Blocker != b.Blocker {
		if a.Blocker < b.Blocker {
			return -1
		}
		return 1
	}
	if c := compareOptSlot(a.Slot, b.Slot); c != 0 {
		return c
	}
	if c := compareOptSubslot(a.Slot, b.Slot); c != 0 {
		return c
	}
	if c := CompareUseDeps(a.UseDeps, b.UseDeps); c != 0 {
		return c
	}
	return compareOptString(a.Repo, b.Repo)
}

func compareOptSlot(a, b *SlotDep) int {
	as, bs := "", ""
	if a != nil {
		as = a.Slot
	}
	if b != nil {
		bs = b.Slot
	}
	return compareOptPresence(a != nil, b != nil, as, bs)
}

func compareOptSubslot(a, b *SlotDep) int {
	as, bs := "", ""
	if a != nil {
		as = a.Subslot
	}
	if b != nil {
		bs = b.Subslot
	}
	return compareOptPresence(a != nil && a.Subslot != "", b != nil && b.Subslot != "", as, bs)
}

func compareOptString(a, b string) int {
	return compareOptPresence(a != "", b != "", a, b)
}

func compareOptPresence(aPresent, bPresent bool, a, b string) int {
	switch {
	case !aPresent && !bPresent:
		return 0
	case !aPresent:
		return -1
	case !bPresent:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
