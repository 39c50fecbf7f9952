package dep

import (
	"strings"

	"pkgcraft/pkg/atom"
	"pkgcraft/pkg/eapi"
	"pkgcraft/pkg/perr"
	"pkgcraft/pkg/uri"
)

// LeafParser consumes one or more tokens starting at pos and returns the
// decoded leaf value plus how many tokens it consumed. Most leaf kinds
// consume exactly one token; Uri's "uri -> rename" form consumes three.
type LeafParser[T Value] func(tokens []string, pos int) (value T, consumed int, err error)

// DepLeafParser decodes a single whitespace-separated token as an
// EAPI-gated Dep atom.
func DepLeafParser(e *eapi.EAPI) LeafParser[*atom.Dep] {
	return func(tokens []string, pos int) (*atom.Dep, int, error) {
		d, err := atom.ParseDep(tokens[pos], e)
		return d, 1, err
	}
}

// PlainStringLeafParser decodes a single token verbatim -- used for
// LICENSE, PROPERTIES, RESTRICT, and REQUIRED_USE dependency sets.
func PlainStringLeafParser() LeafParser[PlainString] {
	return func(tokens []string, pos int) (PlainString, int, error) {
		return PlainString(tokens[pos]), 1, nil
	}
}

// UriLeafParser decodes a SRC_URI token, recognizing the "uri -> rename"
// pairing.
func UriLeafParser() LeafParser[uri.Uri] {
	return func(tokens []string, pos int) (uri.Uri, int, error) {
		if pos+2 < len(tokens) && tokens[pos+1] == "->" {
			return uri.NewRenamed(tokens[pos], tokens[pos+2]), 3, nil
		}
		return uri.New(tokens[pos]), 1, nil
	}
}

// Parse parses a whitespace-tokenized dependency expression string into a
// Set[T], per spec.md §4.D: parenthesized groupings, "||"/"^^"/"??"
// prefixes for any-of/exactly-one-of/at-most-one-of, and "flag?"/"!flag?"
// conditional blocks.
func Parse[T Value](s string, cmp CompareFunc[T], leaf LeafParser[T]) (*Set[T], error) {
	tokens := strings.Fields(s)
	pos := 0
	roots, err := parseSequence(tokens, &pos, cmp, leaf)
	if err != nil {
		return nil, perr.WrapInvalidValue(err, "dependency expression %q", s)
	}
	if pos != len(tokens) {
		return nil, perr.NewInvalidValue("dependency expression %q: unexpected %q", s, tokens[pos])
	}
	set := NewSet(cmp)
	for _, r := range roots {
		set.Add(r)
	}
	return set, nil
}

func parseSequence[T Value](tokens []string, pos *int, cmp CompareFunc[T], leaf LeafParser[T]) ([]*Node[T], error) {
	var out []*Node[T]
	for *pos < len(tokens) && tokens[*pos] != ")" {
		n, err := parseOne(tokens, pos, cmp, leaf)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func parseOne[T Value](tokens []string, pos *int, cmp CompareFunc[T], leaf LeafParser[T]) (*Node[T], error) {
	tok := tokens[*pos]

	switch tok {
	case "||":
		*pos++
		children, err := parseParenGroup(tokens, pos, cmp, leaf)
		if err != nil {
			return nil, err
		}
		return AnyOf(children...), nil
	case "^^":
		*pos++
		children, err := parseParenGroup(tokens, pos, cmp, leaf)
		if err != nil {
			return nil, err
		}
		return ExactlyOneOf(children...), nil
	case "??":
		*pos++
		children, err := parseParenGroup(tokens, pos, cmp, leaf)
		if err != nil {
			return nil, err
		}
		return AtMostOneOf(children...), nil
	case "(":
		children, err := parseParenGroup(tokens, pos, cmp, leaf)
		if err != nil {
			return nil, err
		}
		return AllOf(cmp, children...), nil
	}

	if strings.HasSuffix(tok, "?") {
		flag := tok[:len(tok)-1]
		kind := atom.UseEnabledConditional
		if strings.HasPrefix(flag, "!") {
			kind = atom.UseDisabledConditional
			flag = flag[1:]
		}
		if flag == "" {
			return nil, perr.NewInvalidValue("empty USE conditional flag in %q", tok)
		}
		*pos++
		children, err := parseParenGroup(tokens, pos, cmp, leaf)
		if err != nil {
			return nil, err
		}
		return Conditional(cmp, atom.UseDep{Kind: kind, Flag: flag}, children...), nil
	}

	v, consumed, err := leaf(tokens, *pos)
	if err != nil {
		return nil, err
	}
	*pos += consumed
	return Enabled(v), nil
}

func parseParenGroup[T Value](tokens []string, pos *int, cmp CompareFunc[T], leaf LeafParser[T]) ([]*Node[T], error) {
	if *pos >= len(tokens) || tokens[*pos] != "(" {
		return nil, perr.NewInvalidValue("expected '(' at token %d", *pos)
	}
	*pos++
	children, err := parseSequence(tokens, pos, cmp, leaf)
	if err != nil {
		return nil, err
	}
	if *pos >= len(tokens) || tokens[*pos] != ")" {
		return nil, perr.NewInvalidValue("unterminated group starting at token %d", *pos)
	}
	*pos++
	return children, nil
}
