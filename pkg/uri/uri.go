// Package uri implements the Uri leaf type used by SRC_URI dependency
// trees: a fetch location with an optional local rename, per spec.md §3
// ("T is one of {Dep, Uri, plain string}") and §4.D's "uri -> rename"
// grammar extension.
package uri

import "strings"

// Uri is one SRC_URI token: a fetch location and an optional rename
// ("uri -> rename"). Two Uris are equal iff both fields match.
type Uri struct {
	Location string
	Rename   string // "" if absent
}

func New(location string) Uri { return Uri{Location: location} }

func NewRenamed(location, rename string) Uri { return Uri{Location: location, Rename: rename} }

func (u Uri) String() string {
	if u.Rename == "" {
		return u.Location
	}
	var b strings.Builder
	b.WriteString(u.Location)
	b.WriteString(" -> ")
	b.WriteString(u.Rename)
	return b.String()
}

// Compare orders Uris lexicographically by (Location, Rename).
func Compare(a, b Uri) int {
	if c := strings.Compare(a.Location, b.Location); c != 0 {
		return c
	}
	return strings.Compare(a.Rename, b.Rename)
}
