package model

import "sort"

// UserSet is a set of user ids.
type UserSet map[string]struct{}

func NewUserSet(ids ...string) UserSet {
	s := make(UserSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s UserSet) Add(id string) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

func (s UserSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s UserSet) Len() int {
	return len(s)
}

// Slice returns the ids in sorted order.
func (s UserSet) Slice() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
