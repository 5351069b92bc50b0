package game

import (
	"encoding/json"
	"sort"
)

// AchievementID names an entry of the achievement registry.
type AchievementID string

// AchievementSet is the unlocked set. It serializes as a list.
type AchievementSet map[AchievementID]struct{}

// Has reports membership.
func (a AchievementSet) Has(id AchievementID) bool {
	_, ok := a[id]
	return ok
}

// Add inserts id and reports whether it was new.
func (a AchievementSet) Add(id AchievementID) bool {
	if a.Has(id) {
		return false
	}
	a[id] = struct{}{}
	return true
}

// Sorted returns the members in lexical order.
func (a AchievementSet) Sorted() []AchievementID {
	ids := make([]AchievementID, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone copies the set.
func (a AchievementSet) Clone() AchievementSet {
	c := make(AchievementSet, len(a))
	for id := range a {
		c[id] = struct{}{}
	}
	return c
}

// MarshalJSON writes the set as a sorted list.
func (a AchievementSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Sorted())
}

// UnmarshalJSON reads a list, ignoring duplicates. null yields an empty set.
func (a *AchievementSet) UnmarshalJSON(data []byte) error {
	var ids []AchievementID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	set := make(AchievementSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	*a = set
	return nil
}
