package engine

import (
	"sort"

	"github.com/famnudger/fam/backend/internal/types"
)

// DefaultProfileTag stands in for a household that has not declared anyone.
const DefaultProfileTag = "adult"

// TagSet is the flat set of profile tags describing a household.
type TagSet map[string]struct{}

// Has reports whether tag is in the set.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Sorted returns the tags in lexical order.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// BuildProfileTags flattens a roster into profile tags: every member's type,
// every condition and every allergy exactly as the user typed it.
func BuildProfileTags(members []types.FamilyMember) TagSet {
	tags := TagSet{}
	if len(members) == 0 {
		tags[DefaultProfileTag] = struct{}{}
		return tags
	}
	for _, m := range members {
		tags[string(effectiveType(m.Type))] = struct{}{}
		for _, c := range m.Conditions {
			if c != "" {
				tags[string(c)] = struct{}{}
			}
		}
		for _, a := range m.Allergies {
			if a != "" {
				tags[a] = struct{}{}
			}
		}
	}
	return tags
}

// effectiveType treats an unknown member type as adult.
func effectiveType(t types.MemberType) types.MemberType {
	if t.Valid() {
		return t
	}
	return types.MemberAdult
}
