package atom

import (
	"strings"

	"pkgcraft/pkg/eapi"
	"pkgcraft/pkg/perr"
	"pkgcraft/pkg/version"
)

// ParseDep parses a full dependency specification against e's grammar,
// per spec.md §4.B: "[blocker][op]cat/pkg[-ver][:slot[/subslot][=]][::repo][[use-deps]]".
// Each optional feature is validated against e; using a feature e does not
// enable fails with perr.InvalidValue.
func ParseDep(s string, e *eapi.EAPI) (*Dep, error) {
	orig := s
	d := &Dep{}

	rest := s

	switch {
	case strings.HasPrefix(rest, "!!"):
		if !e.Has(eapi.Blockers) {
			return nil, perr.NewInvalidValue("dep %q: blockers not enabled in EAPI %q", orig, e.Name())
		}
		d.Blocker = BlockerStrong
		rest = rest[2:]
	case strings.HasPrefix(rest, "!"):
		if !e.Has(eapi.Blockers) {
			return nil, perr.NewInvalidValue("dep %q: blockers not enabled in EAPI %q", orig, e.Name())
		}
		d.Blocker = BlockerWeak
		rest = rest[1:]
	}

	// USE-deps: trailing "[...]".
	if strings.HasSuffix(rest, "]") {
		idx := strings.LastIndex(rest, "[")
		if idx < 0 {
			return nil, perr.NewInvalidValue("dep %q: unbalanced USE-dep brackets", orig)
		}
		if !e.Has(eapi.UseDeps) {
			return nil, perr.NewInvalidValue("dep %q: USE-deps not enabled in EAPI %q", orig, e.Name())
		}
		body := rest[idx+1 : len(rest)-1]
		rest = rest[:idx]
		useDeps, err := parseUseDeps(body, e)
		if err != nil {
			return nil, perr.WrapInvalidValue(err, "dep %q", orig)
		}
		d.UseDeps = useDeps
	}

	// Repo: trailing "::repo".
	if idx := strings.LastIndex(rest, "::"); idx >= 0 {
		if !e.Has(eapi.RepoIds) {
			return nil, perr.NewInvalidValue("dep %q: repo ids not enabled in EAPI %q", orig, e.Name())
		}
		repo := rest[idx+2:]
		if !validRepoName(repo) {
			return nil, perr.NewInvalidValue("dep %q: invalid repo %q", orig, repo)
		}
		d.Repo = repo
		rest = rest[:idx]
	}

	// Slot: first remaining ':'.
	if idx := strings.IndexByte(rest, ':'); idx >= 0 {
		if !e.Has(eapi.SlotDeps) {
			return nil, perr.NewInvalidValue("dep %q: slot deps not enabled in EAPI %q", orig, e.Name())
		}
		slotPart := rest[idx+1:]
		rest = rest[:idx]
		slot, err := parseSlotDep(slotPart, e)
		if err != nil {
			return nil, perr.WrapInvalidValue(err, "dep %q", orig)
		}
		d.Slot = slot
	}

	// Operator prefix.
	op, rest2 := scanVersionOp(rest)
	rest = rest2

	glob := false
	if op == version.OpEqual && strings.HasSuffix(rest, "*") {
		glob = true
		rest = rest[:len(rest)-1]
	}

	cat, pkgver, found := strings.Cut(rest, "/")
	if !found {
		return nil, perr.NewInvalidValue("dep %q: missing '/'", orig)
	}
	if !validCategory(cat) {
		return nil, perr.NewInvalidValue("dep %q: invalid category %q", orig, cat)
	}

	var pkg string
	if op != version.OpNone {
		var verStr string
		var ok bool
		pkg, verStr, ok = splitPackageVersion(pkgver)
		if !ok {
			return nil, perr.NewInvalidValue("dep %q: operator requires a version", orig)
		}
		v, err := version.Parse(verStr)
		if err != nil {
			return nil, perr.WrapInvalidValue(err, "dep %q", orig)
		}
		v.Op = op
		if glob {
			v.Op = version.OpEqualGlob
		}
		d.Version = v
	} else if pkg2, verStr, ok := splitPackageVersion(pkgver); ok {
		pkg = pkg2
		v, err := version.Parse(verStr)
		if err != nil {
			return nil, perr.WrapInvalidValue(err, "dep %q", orig)
		}
		d.Version = v
	} else {
		pkg = pkgver
	}

	if !validPackage(pkg) {
		return nil, perr.NewInvalidValue("dep %q: invalid package %q", orig, pkg)
	}
	d.Cpn = Cpn{Category: cat, Package: pkg}

	return d, nil
}

func scanVersionOp(s string) (version.Operator, string) {
	switch {
	case strings.HasPrefix(s, "<="):
		return version.OpLessOrEqual, s[2:]
	case strings.HasPrefix(s, ">="):
		return version.OpGreaterOrEqual, s[2:]
	case strings.HasPrefix(s, "<"):
		return version.OpLess, s[1:]
	case strings.HasPrefix(s, ">"):
		return version.OpGreater, s[1:]
	case strings.HasPrefix(s, "="):
		return version.OpEqual, s[1:]
	case strings.HasPrefix(s, "~"):
		return version.OpApprox, s[1:]
	default:
		return version.OpNone, s
	}
}

// ParseSlot parses a bare "slot[/subslot][=|*]" string against e's grammar,
// without the surrounding dep syntax ParseDep handles. Used to decode a
// package's standalone SLOT= value.
func ParseSlot(s string, e *eapi.EAPI) (*SlotDep, error) {
	return parseSlotDep(s, e)
}

func parseSlotDep(s string, e *eapi.EAPI) (*SlotDep, error) {
	sd := &SlotDep{}
	if strings.HasSuffix(s, "=") {
		if !e.Has(eapi.SlotOps) {
			return nil, perr.NewInvalidValue("slot ops not enabled in EAPI %q", e.Name())
		}
		sd.Op = SlotOpEqual
		s = s[:len(s)-1]
	} else if strings.HasSuffix(s, "*") {
		if !e.Has(eapi.SlotOps) {
			return nil, perr.NewInvalidValue("slot ops not enabled in EAPI %q", e.Name())
		}
		sd.Op = SlotOpStar
		s = s[:len(s)-1]
	}
	if s == "" {
		// bare "=" or "*" with no slot name is legal (e.g. ":=").
		return sd, nil
	}
	slot, subslot, found := strings.Cut(s, "/")
	if !validSlotName(slot) {
		return nil, perr.NewInvalidValue("invalid slot %q", slot)
	}
	sd.Slot = slot
	if found {
		if !e.Has(eapi.Subslots) {
			return nil, perr.NewInvalidValue("subslots not enabled in EAPI %q", e.Name())
		}
		if !validSlotName(subslot) {
			return nil, perr.NewInvalidValue("invalid subslot %q", subslot)
		}
		sd.Subslot = subslot
	}
	return sd, nil
}

func parseUseDeps(body string, e *eapi.EAPI) ([]UseDep, error) {
	if body == "" {
		return nil, perr.NewInvalidValue("empty USE-dep block")
	}
	parts := strings.Split(body, ",")
	out := make([]UseDep, 0, len(parts))
	for _, p := range parts {
		u, err := parseOneUseDep(p, e)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func parseOneUseDep(s string, e *eapi.EAPI) (UseDep, error) {
	orig := s
	u := UseDep{}

	negated := false
	if strings.HasPrefix(s, "!") {
		negated = true
		s = s[1:]
	}

	disabled := false
	if strings.HasPrefix(s, "-") {
		disabled = true
		s = s[1:]
	}

	suffix := byte(0)
	if strings.HasSuffix(s, "=") {
		suffix = '='
		s = s[:len(s)-1]
	} else if strings.HasSuffix(s, "?") {
		suffix = '?'
		s = s[:len(s)-1]
	}

	var def byte
	if strings.HasSuffix(s, "(+)") {
		def = '+'
		s = s[:len(s)-3]
	} else if strings.HasSuffix(s, "(-)") {
		def = '-'
		s = s[:len(s)-3]
	}
	if def != 0 && !e.Has(eapi.UseDepDefaults) {
		return UseDep{}, perr.NewInvalidValue("use-dep %q: defaults not enabled in EAPI %q", orig, e.Name())
	}

	if !validUseFlag(s) {
		return UseDep{}, perr.NewInvalidValue("use-dep %q: invalid flag %q", orig, s)
	}
	u.Flag = s
	u.Default = def

	switch {
	case suffix == '=' && negated:
		u.Kind = UseNotEqual
	case suffix == '=':
		u.Kind = UseEqual
	case suffix == '?' && negated:
		u.Kind = UseDisabledConditional
	case suffix == '?':
		u.Kind = UseEnabledConditional
	case negated:
		return UseDep{}, perr.NewInvalidValue("use-dep %q: '!' only valid with '=' or '?'", orig)
	case disabled:
		u.Kind = UseDisabled
	default:
		u.Kind = UseEnabled
	}
	return u, nil
}
