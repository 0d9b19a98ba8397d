package annotation

import (
	"sort"

	"goclue/domain/core"
)

// Set maps annotation group identifiers (kinases, gene sets, pathways) to the
// entities they contain. Membership is an unordered set; group identifiers
// are unique by construction of the map.
type Set map[core.GroupID]map[core.EntityID]struct{}

// NewSet builds a Set from plain string slices, deduplicating members
func NewSet(groups map[string][]string) Set {
	set := make(Set, len(groups))
	for name, members := range groups {
		ms := make(map[core.EntityID]struct{}, len(members))
		for _, m := range members {
			if m == "" {
				continue
			}
			ms[core.EntityID(m)] = struct{}{}
		}
		set[core.GroupID(name)] = ms
	}
	return set
}

// Filter intersects every group with the dataset's entity identifiers and
// drops groups whose intersection is empty. The receiver is not modified.
// Filtering is idempotent: filtering an already-filtered set against the same
// identifiers returns an equal set. Size-based exclusion is deliberately not
// done here - that is the enrichment scorer's effective-size bound.
func (s Set) Filter(entities map[core.EntityID]struct{}) Set {
	filtered := make(Set, len(s))
	for group, members := range s {
		kept := make(map[core.EntityID]struct{})
		for id := range members {
			if _, ok := entities[id]; ok {
				kept[id] = struct{}{}
			}
		}
		if len(kept) > 0 {
			filtered[group] = kept
		}
	}
	return filtered
}

// Groups returns the group identifiers in deterministic (sorted) order
func (s Set) Groups() []core.GroupID {
	groups := make([]core.GroupID, 0, len(s))
	for g := range s {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	return groups
}

// Size returns the membership count of a group
func (s Set) Size(group core.GroupID) int {
	return len(s[group])
}

// Contains reports whether entity belongs to group
func (s Set) Contains(group core.GroupID, entity core.EntityID) bool {
	_, ok := s[group][entity]
	return ok
}
