package postgres

import (
	"strings"
	"testing"
)

// TestUpsertRefreshesEveryRunColumn guards the conflict clause: every column
// derived from the run record must be replaced on re-save, otherwise a
// re-optimized run would keep stale JSON alongside its new partition.
func TestUpsertRefreshesEveryRunColumn(t *testing.T) {
	idx := strings.Index(upsertRunQuery, "ON CONFLICT")
	if idx < 0 {
		t.Fatal("upsert statement has no conflict clause")
	}
	update := upsertRunQuery[idx:]

	for _, column := range []string{
		"selected_k", "method", "repeats", "evaluation", "best_partition", "enrichment",
	} {
		if !strings.Contains(update, column+" = EXCLUDED."+column) {
			t.Errorf("conflict clause does not refresh column %q", column)
		}
	}
}
