package version

import "strings"

// Compare implements the total order from spec.md §4.A. It ignores any
// operator attached to either side -- operators are a matching concept, not
// an ordering one.
func Compare(a, b *Version) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if c := compareNumbers(a.Numbers, b.Numbers); c != 0 {
		return c
	}

	if c := compareLetter(a, b); c != 0 {
		return c
	}

	if c := compareSuffixes(a.Suffixes, b.Suffixes); c != 0 {
		return c
	}

	return compareUint(a.Revision, b.Revision)
}

// Less reports whether a sorts strictly before b.
func Less(a, b *Version) bool { return Compare(a, b) < 0 }

// Equal reports whether a and b compare equal under Compare (ignores
// operators).
func Equal(a, b *Version) bool { return Compare(a, b) == 0 }

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func stripTrailingZeros(s string) string {
	return strings.TrimRight(s, "0")
}

func hasLeadingZero(s string) bool {
	return len(s) > 0 && s[0] == '0'
}

func compareNumbers(a, b []Component) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ac, bc := a[i], b[i]
		if hasLeadingZero(ac.Orig) || hasLeadingZero(bc.Orig) {
			as := stripTrailingZeros(ac.Orig)
			bs := stripTrailingZeros(bc.Orig)
			if as != bs {
				if as < bs {
					return -1
				}
				return 1
			}
			continue
		}
		if c := compareUint(ac.Value, bc.Value); c != 0 {
			return c
		}
	}
	if len(a) == len(b) {
		return 0
	}
	// Excess components: longer is greater unless its first extra
	// component has a leading zero, in which case the longer is less.
	if len(a) > len(b) {
		if hasLeadingZero(a[n].Orig) {
			return -1
		}
		return 1
	}
	if hasLeadingZero(b[n].Orig) {
		return 1
	}
	return -1
}

func compareLetter(a, b *Version) int {
	switch {
	case !a.HasLetter && !b.HasLetter:
		return 0
	case !a.HasLetter:
		return -1
	case !b.HasLetter:
		return 1
	case a.Letter < b.Letter:
		return -1
	case a.Letter > b.Letter:
		return 1
	default:
		return 0
	}
}

// compareSuffixes compares two release-suffix sequences element-wise. A
// sequence that runs out of elements is treated, for the remaining
// positions, as if it had one more suffix equal to noSuffix/0 -- which sorts
// between rc and p -- per spec.md §4.A rule 4.
func compareSuffixes(a, b []Suffix) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ak, an := noSuffix, uint64(0)
		if i < len(a) {
			ak, an = a[i].Kind, a[i].Num
		}
		bk, bn := noSuffix, uint64(0)
		if i < len(b) {
			bk, bn = b[i].Kind, b[i].Num
		}
		if ak != bk {
			if ak < bk {
				return -1
			}
			return 1
		}
		if c := compareUint(an, bn); c != 0 {
			return c
		}
	}
	return 0
}
