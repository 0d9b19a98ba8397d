package enrichment

import (
	"goclue/domain/core"
)

// GroupScore is one annotation group that passed the p-value cutoff within a
// cluster, together with its one-sided Fisher exact test p-value and the
// contingency counts behind it.
type GroupScore struct {
	Group     core.GroupID `json:"group"`
	PValue    float64      `json:"p_value"`
	Overlap   int          `json:"overlap"`    // entities in both cluster and group
	GroupSize int          `json:"group_size"` // group size after annotation filtering
}

// ClusterEnrichment lists the enriched groups of one cluster, strongest first
type ClusterEnrichment struct {
	Cluster int          `json:"cluster"`
	Size    int          `json:"size"`
	Groups  []GroupScore `json:"groups,omitempty"`
}

// Result summarizes the enrichment of a whole partition. CombinedP is the
// Fisher combined probability over every group-level p-value that passed the
// cutoff, across all clusters; it is 1 when nothing passed, which is a valid
// "no evidence" outcome rather than an error. Smaller is stronger.
type Result struct {
	Clusters  []ClusterEnrichment `json:"clusters"`
	CombinedP float64             `json:"combined_p"`
	Tests     int                 `json:"tests"` // count of p-values entering the combination
}

// Enriched reports whether any group passed the cutoff anywhere
func (r *Result) Enriched() bool {
	return r.Tests > 0
}
