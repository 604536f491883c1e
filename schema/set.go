package schema

import (
	"sort"

	siteconf "github.com/hpcops/siteconf"
)

// Set is a validated record set. Records share one namespace; adding a
// record under an existing name replaces it.
type Set struct {
	members map[string]Record
}

// NewSet returns an empty record set.
func NewSet() *Set {
	return &Set{members: map[string]Record{}}
}

// Add stores a record under its name.
func (s *Set) Add(r Record) {
	s.members[r.RecordName()] = r
}

// Get looks up a record by name.
func (s *Set) Get(name string) (Record, bool) {
	r, ok := s.members[name]
	return r, ok
}

// Len reports the number of records.
func (s *Set) Len() int { return len(s.members) }

// Names returns all record names in sorted order.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.members))
	for n := range s.members {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Records returns all records ordered by name.
func (s *Set) Records() []Record {
	names := s.Names()
	out := make([]Record, len(names))
	for i, n := range names {
		out[i] = s.members[n]
	}
	return out
}

// ByKind returns the records of one kind, ordered by name.
func (s *Set) ByKind(k Kind) []Record {
	var out []Record
	for _, r := range s.Records() {
		if r.RecordKind() == k {
			out = append(out, r)
		}
	}
	return out
}

// Group returns the named group record, if present.
func (s *Set) Group(name string) (*Group, bool) {
	r, ok := s.members[name]
	if !ok {
		return nil, false
	}
	g, ok := r.(*Group)
	return g, ok
}

// Host returns the named host record, if present.
func (s *Set) Host(name string) (*Host, bool) {
	r, ok := s.members[name]
	if !ok {
		return nil, false
	}
	h, ok := r.(*Host)
	return h, ok
}

// Dump serializes the set back to a document tree in the named-members
// shape: member name to record body, names sorted, empty attributes
// omitted. Validating the dump yields the same record set.
func (s *Set) Dump() *siteconf.Node {
	out := siteconf.Mapping()
	for _, name := range s.Names() {
		out.Set(name, s.members[name].encode())
	}
	return out
}
