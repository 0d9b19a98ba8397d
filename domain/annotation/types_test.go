package annotation

import (
	"reflect"
	"testing"

	"goclue/domain/core"
)

func entitySet(ids ...string) map[core.EntityID]struct{} {
	set := make(map[core.EntityID]struct{}, len(ids))
	for _, id := range ids {
		set[core.EntityID(id)] = struct{}{}
	}
	return set
}

func TestFilter_IntersectsAndDropsEmpty(t *testing.T) {
	set := NewSet(map[string][]string{
		"kept":    {"a", "b", "x"},
		"shrunk":  {"a", "y", "z"},
		"dropped": {"y", "z"},
	})

	filtered := set.Filter(entitySet("a", "b", "c"))

	if len(filtered) != 2 {
		t.Fatalf("filtered set has %d groups, want 2", len(filtered))
	}
	if filtered.Size("kept") != 2 {
		t.Errorf("kept has %d members, want 2", filtered.Size("kept"))
	}
	if filtered.Size("shrunk") != 1 {
		t.Errorf("shrunk has %d members, want 1 (small groups survive filtering)", filtered.Size("shrunk"))
	}
	if _, ok := filtered["dropped"]; ok {
		t.Error("group with empty intersection was not dropped")
	}
}

func TestFilter_Idempotent(t *testing.T) {
	set := NewSet(map[string][]string{
		"g1": {"a", "b", "x"},
		"g2": {"c", "y"},
		"g3": {"z"},
	})
	ids := entitySet("a", "b", "c")

	once := set.Filter(ids)
	twice := once.Filter(ids)

	if !reflect.DeepEqual(once, twice) {
		t.Error("filtering an already-filtered set changed it")
	}
}

func TestFilter_DoesNotMutateReceiver(t *testing.T) {
	set := NewSet(map[string][]string{"g": {"a", "b", "x"}})
	set.Filter(entitySet("a"))

	if set.Size("g") != 3 {
		t.Error("filtering modified the original set")
	}
}

func TestFilter_EmptyResultIsValid(t *testing.T) {
	set := NewSet(map[string][]string{"g": {"x", "y"}})
	filtered := set.Filter(entitySet("a", "b"))
	if len(filtered) != 0 {
		t.Errorf("expected empty filtered set, got %d groups", len(filtered))
	}
}

func TestNewSet_DeduplicatesMembers(t *testing.T) {
	set := NewSet(map[string][]string{"g": {"a", "a", "b", ""}})
	if set.Size("g") != 2 {
		t.Errorf("group size = %d, want 2 after deduplication", set.Size("g"))
	}
}

func TestGroups_SortedOrder(t *testing.T) {
	set := NewSet(map[string][]string{"c": {"x"}, "a": {"x"}, "b": {"x"}})
	groups := set.Groups()
	want := []core.GroupID{"a", "b", "c"}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("Groups() = %v, want %v", groups, want)
	}
}
