package restrict

import "strings"

// ParseGlob compiles a glob target string (e.g. "cat-*/pkg*:slot*/sub*::repo*")
// into an And of leaf predicates, per spec.md §4.C's canonical target-string
// parser: "*" in any segment becomes an anchored regex; an exact (no "*")
// segment becomes a plain equality leaf. Grounded on
// _examples/original_source/src/restrict/parse/dep.rs's cp_restricts/
// slot_restrict rules.
func ParseGlob(s string) Restriction {
	rest := s

	var parts []Restriction

	if idx := strings.LastIndex(rest, "::"); idx >= 0 {
		repo := rest[idx+2:]
		rest = rest[:idx]
		if repo != "" {
			parts = append(parts, Repo(globOrEqual(repo)))
		}
	}

	if idx := strings.IndexByte(rest, ':'); idx >= 0 {
		slotPart := rest[idx+1:]
		rest = rest[:idx]
		slot, subslot, hasSubslot := strings.Cut(slotPart, "/")
		if slot != "" {
			parts = append(parts, Slot(globOrEqual(slot)))
		}
		if hasSubslot && subslot != "" {
			parts = append(parts, Subslot(globOrEqual(subslot)))
		}
	}

	if cat, pkg, found := strings.Cut(rest, "/"); found {
		if cat != "" && cat != "*" {
			parts = append(parts, Category(globOrEqual(cat)))
		}
		if pkg != "" && pkg != "*" {
			parts = append(parts, Package(globOrEqual(pkg)))
		}
	} else if rest != "" && rest != "*" {
		parts = append(parts, Package(globOrEqual(rest)))
	}

	if len(parts) == 0 {
		return True
	}
	return And(parts...)
}

func globOrEqual(s string) Restriction {
	if strings.Contains(s, "*") {
		return StrGlob(s)
	}
	return StrEqual(s)
}
