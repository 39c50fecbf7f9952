package repo

import "sort"

// RepoSet is a sorted collection of repos, ordered (priority asc, id asc),
// supporting set algebra per spec.md §3.
type RepoSet struct {
	repos []*Repository
}

// NewRepoSet builds a RepoSet from repos, sorted and de-duplicated by id.
func NewRepoSet(repos ...*Repository) *RepoSet {
	s := &RepoSet{}
	for _, r := range repos {
		s.insert(r)
	}
	return s
}

func compareRepos(a, b *Repository) int {
	if a.priority != b.priority {
		if a.priority < b.priority {
			return -1
		}
		return 1
	}
	if a.id < b.id {
		return -1
	}
	if a.id > b.id {
		return 1
	}
	return 0
}

// indexOf does a linear scan: repos is sorted by (priority, id), not id
// alone, so a binary search on id isn't valid here.
func (s *RepoSet) indexOf(id string) (int, bool) {
	for i, r := range s.repos {
		if r.id == id {
			return i, true
		}
	}
	return -1, false
}

func (s *RepoSet) contains(id string) bool {
	for _, r := range s.repos {
		if r.id == id {
			return true
		}
	}
	return false
}

func (s *RepoSet) insert(r *Repository) {
	if s.contains(r.id) {
		return
	}
	s.repos = append(s.repos, r)
	sort.SliceStable(s.repos, func(i, j int) bool { return compareRepos(s.repos[i], s.repos[j]) < 0 })
}

// Repos returns the set's members in sorted order.
func (s *RepoSet) Repos() []*Repository { return append([]*Repository(nil), s.repos...) }

// Len reports the set's size.
func (s *RepoSet) Len() int { return len(s.repos) }

// And returns the intersection of s and other, by repo id.
func (s *RepoSet) And(other *RepoSet) *RepoSet {
	out := &RepoSet{}
	for _, r := range s.repos {
		if other.contains(r.id) {
			out.insert(r)
		}
	}
	return out
}

// Or returns the union of s and other.
func (s *RepoSet) Or(other *RepoSet) *RepoSet {
	out := NewRepoSet(s.repos...)
	for _, r := range other.repos {
		out.insert(r)
	}
	return out
}

// Xor returns the symmetric difference of s and other.
func (s *RepoSet) Xor(other *RepoSet) *RepoSet {
	out := &RepoSet{}
	for _, r := range s.repos {
		if !other.contains(r.id) {
			out.insert(r)
		}
	}
	for _, r := range other.repos {
		if !s.contains(r.id) {
			out.insert(r)
		}
	}
	return out
}

// Sub returns s with every member of other removed.
func (s *RepoSet) Sub(other *RepoSet) *RepoSet {
	out := &RepoSet{}
	for _, r := range s.repos {
		if !other.contains(r.id) {
			out.insert(r)
		}
	}
	return out
}

// AndAssign, OrAssign, XorAssign, SubAssign mutate s in place against
// another set or a single repo, mirroring pkg/dep's *Assign set-algebra
// convention (§3's "both as immutable combinators ... and as in-place
// assignment").
func (s *RepoSet) AndAssign(other *RepoSet) { s.repos = s.And(other).repos }
func (s *RepoSet) OrAssign(other *RepoSet)  { s.repos = s.Or(other).repos }
func (s *RepoSet) XorAssign(other *RepoSet) { s.repos = s.Xor(other).repos }
func (s *RepoSet) SubAssign(other *RepoSet) { s.repos = s.Sub(other).repos }

// AddRepo inserts a single repo in place.
func (s *RepoSet) AddRepo(r *Repository) { s.insert(r) }

// RemoveRepo removes a single repo (by id) in place.
func (s *RepoSet) RemoveRepo(r *Repository) {
	i, ok := s.indexOf(r.id)
	if !ok {
		return
	}
	s.repos = append(s.repos[:i], s.repos[i+1:]...)
}
