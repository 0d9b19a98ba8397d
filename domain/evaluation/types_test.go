package evaluation

import (
	"encoding/json"
	"testing"
)

// TestParams_JSONFieldNames pins the wire names of Params to snake_case, the
// convention every other type in the HTTP surface follows.
func TestParams_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Params{
		Repeats:       3,
		KRange:        []int{2, 3},
		Method:        "kmeans",
		EffectiveSize: SizeRange{Min: 3, Max: 100},
		PValueCutoff:  0.05,
		Alpha:         0.5,
		Seed:          7,
		MaxIterations: 50,
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{
		"repeats", "k_range", "method", "effective_size",
		"p_value_cutoff", "alpha", "seed", "max_iterations",
	} {
		if _, ok := fields[key]; !ok {
			t.Errorf("marshaled Params is missing key %q (got %s)", key, data)
		}
	}

	var back Params
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal into Params: %v", err)
	}
	if back.Repeats != 3 || back.PValueCutoff != 0.05 || len(back.KRange) != 2 {
		t.Errorf("round trip lost values: %+v", back)
	}
}
