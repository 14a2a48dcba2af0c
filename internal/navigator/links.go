package navigator

import (
	"cmp"
	"slices"

	"github.com/roach88/dbnav/internal/graph"
	"github.com/roach88/dbnav/internal/schema"
)

// Property is a unary attribute of a node's sort.
type Property struct {
	MVAID     string `json:"mva"`
	Name      string `json:"name"`
	Displayed bool   `json:"displayed"`

	// RNodeIDs lists the relation instances already constraining the
	// property on this node.
	RNodeIDs []string `json:"rnodes,omitempty"`
}

// Relation is one role a node's sort can play in an attribute of higher
// arity.
type Relation struct {
	MVAID    string        `json:"mva"`
	Name     string        `json:"name"`
	Role     int           `json:"role"`
	RoleName string        `json:"role_name"`
	Sorts    []schema.Sort `json:"sorts"`
	RNodeIDs []string      `json:"rnodes,omitempty"`
}

// NodeLinks lists the ways a node can be extended.
type NodeLinks struct {
	Properties []Property `json:"properties"`
	Relations  []Relation `json:"relations"`
}

// Links lists the scaled attributes a node's sort participates in, split
// into properties and relations and annotated with the instances already in
// the graph. An unbound node has no links.
func (s *Session) Links(nodeID string) (NodeLinks, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.graph.Node(nodeID)
	if !ok {
		return NodeLinks{}, &graph.Error{Code: graph.ErrCodeUnknownNode, Message: "no such node", NodeID: nodeID}
	}
	links := NodeLinks{Properties: []Property{}, Relations: []Relation{}}
	if !node.Sort.Bound() {
		return links, nil
	}

	// Existing instances keyed by attribute and role.
	type slot struct {
		mvaID string
		role  int
	}
	existing := make(map[slot][]string)
	for _, l := range s.graph.Neighbors(nodeID) {
		rnode, _ := s.graph.RNode(l.RNodeID)
		k := slot{rnode.MVAID, l.Role}
		existing[k] = append(existing[k], l.RNodeID)
	}

	for _, l := range s.model.Neighbors(node.Sort) {
		mva, err := s.model.MVA(l.MVAID)
		if err != nil {
			return NodeLinks{}, err
		}
		rnodes := existing[slot{l.MVAID, l.Role}]
		if mva.Unary() {
			links.Properties = append(links.Properties, Property{
				MVAID:     mva.ID,
				Name:      mva.Name,
				Displayed: slices.Contains(node.Display, mva.ID),
				RNodeIDs:  rnodes,
			})
			continue
		}
		links.Relations = append(links.Relations, Relation{
			MVAID:    mva.ID,
			Name:     mva.Name,
			Role:     l.Role,
			RoleName: mva.Roles[l.Role-1],
			Sorts:    slices.Clone(mva.Sorts),
			RNodeIDs: rnodes,
		})
	}

	slices.SortStableFunc(links.Properties, func(a, b Property) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortStableFunc(links.Relations, func(a, b Relation) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.RoleName, b.RoleName))
	})
	return links, nil
}
