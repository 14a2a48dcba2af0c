package navigator

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/dbnav/internal/graph"
	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/result"
	"github.com/roach88/dbnav/internal/scale"
	"github.com/roach88/dbnav/internal/schema"
)

// SortStat is one row of a node's sort picker.
type SortStat struct {
	Sort     schema.Sort `json:"sort"`
	Count    int         `json:"count"`
	Selected bool        `json:"selected"`

	// Disabled sorts cannot be chosen: they match nothing, or the node is
	// locked to another sort.
	Disabled bool `json:"disabled"`
}

// NodeStats summarizes what a node can be and what it matches.
type NodeStats struct {
	Sorts       []SortStat `json:"sorts"`
	ObjectCount int        `json:"object_count"`
}

// RelationStats summarizes the values a relation instance matches under
// its current label.
type RelationStats struct {
	Scale scale.Kind  `json:"scale"`
	Label string      `json:"label"`
	Stats scale.Stats `json:"stats"`
}

// Stats reports per-sort counts for a node.
//
// An unbound node may become any sort, so every sort is listed with its
// total object count and disabled only when empty. A bound node lists its
// own sort with the number of objects it matches, selectable unless locked;
// every other sort is disabled.
func (s *Session) Stats(ctx context.Context, nodeID string) (NodeStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.graph.Node(nodeID)
	if !ok {
		return NodeStats{}, &graph.Error{Code: graph.ErrCodeUnknownNode, Message: "no such node", NodeID: nodeID}
	}

	var stats NodeStats
	if !node.Sort.Bound() {
		counts, err := s.backend.SortCounts(ctx)
		if err != nil {
			return NodeStats{}, err
		}
		for _, sort := range s.model.Sorts() {
			n := counts[sort]
			stats.Sorts = append(stats.Sorts, SortStat{Sort: sort, Count: n, Disabled: n == 0})
			stats.ObjectCount += n
		}
		return stats, nil
	}

	tbl, err := s.resultTable(ctx, []string{nodeID}, nil)
	if err != nil {
		return NodeStats{}, err
	}
	locks, err := s.graph.LockSet(nodeID)
	if err != nil {
		return NodeStats{}, err
	}
	for _, sort := range s.model.Sorts() {
		if sort == node.Sort {
			stats.Sorts = append(stats.Sorts, SortStat{
				Sort:     sort,
				Count:    tbl.Len(),
				Selected: true,
				Disabled: slices.Contains(locks, sort),
			})
			continue
		}
		stats.Sorts = append(stats.Sorts, SortStat{Sort: sort, Disabled: true})
	}
	stats.ObjectCount = tbl.Len()
	return stats, nil
}

// RStats hands the values a relation instance matches to its scale.
func (s *Session) RStats(ctx context.Context, rnodeID string) (RelationStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rnode, ok := s.graph.RNode(rnodeID)
	if !ok {
		return RelationStats{}, &graph.Error{Code: graph.ErrCodeUnknownRNode, Message: "no such relation instance", RNodeID: rnodeID}
	}
	mva, err := s.model.MVA(rnode.MVAID)
	if err != nil {
		return RelationStats{}, &graph.Error{Code: graph.ErrCodeUnknownMVA, Message: "attribute not in schema", RNodeID: rnodeID, MVAID: rnode.MVAID, Err: err}
	}
	if mva.Scale == nil {
		return RelationStats{}, &graph.Error{Code: graph.ErrCodeUnscaledRelation, Message: fmt.Sprintf("attribute %s has no scale", mva.Name), RNodeID: rnodeID, MVAID: mva.ID}
	}

	tbl, err := s.rextent(ctx, rnodeID)
	if err != nil {
		return RelationStats{}, err
	}
	col := tbl.Index(result.KindRNode, rnodeID)
	if col < 0 {
		return RelationStats{}, fmt.Errorf("relation extent of %s has no value column", rnodeID)
	}
	return RelationStats{
		Scale: mva.Scale.Kind(),
		Label: ir.Format(rnode.Label),
		Stats: mva.Scale.Stats(tbl.Values(col)),
	}, nil
}
