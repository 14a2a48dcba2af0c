package graph

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/schema"
)

// Catalog resolves attribute definitions. *schema.Model implements it.
type Catalog interface {
	MVA(id string) (schema.MVA, error)
}

// Point is a cosmetic canvas position.
type Point struct {
	X, Y int
}

// Default positions of new nodes and relation instances.
var (
	DefaultNodePoint  = Point{X: 100, Y: 100}
	DefaultRNodePoint = Point{X: 200, Y: 200}
)

// Node is an object placeholder.
type Node struct {
	Sort schema.Sort

	// Display lists unary attribute ids surfaced alongside the node, sorted.
	Display []string

	Point Point
}

// RNode is a relation instance: one attribute applied to an ordered list of
// endpoint nodes, constrained by a scale label.
type RNode struct {
	MVAID     string
	Endpoints []string
	Label     ir.IRValue
	Point     Point
}

// Link is a relation instance incident to a node, with the 1-based role
// position at which the node participates.
type Link struct {
	RNodeID string
	Role    int
}

// Graph is a navigation graph: the query pattern a user builds up edit by
// edit. Node ids (x1, x2, ...) and relation instance ids (e1, e2, ...) come
// from separate counters and are never reused.
//
// A Graph is not safe for concurrent use; navigator.Session serializes
// access.
type Graph struct {
	catalog   Catalog
	nodes     map[string]*Node
	rnodes    map[string]*RNode
	nextNode  int
	nextRNode int
}

// New creates a graph holding the initial unbound subject node x1.
func New(catalog Catalog) *Graph {
	g := NewEmpty(catalog)
	g.AddNode(schema.Unbound, nil)
	return g
}

// NewEmpty creates a graph with no nodes.
func NewEmpty(catalog Catalog) *Graph {
	return &Graph{
		catalog:   catalog,
		nodes:     make(map[string]*Node),
		rnodes:    make(map[string]*RNode),
		nextNode:  1,
		nextRNode: 1,
	}
}

// Catalog returns the schema the graph resolves attributes against.
func (g *Graph) Catalog() Catalog { return g.catalog }

// AddNode allocates a fresh node. A nil pos selects DefaultNodePoint.
func (g *Graph) AddNode(sort schema.Sort, pos *Point) string {
	id := "x" + strconv.Itoa(g.nextNode)
	g.nextNode++
	node := &Node{Sort: sort, Point: DefaultNodePoint}
	if pos != nil {
		node.Point = *pos
	}
	g.nodes[id] = node
	return id
}

// AddRNode adds a relation instance of the attribute mvaID. endpoints has one
// entry per role; an empty entry creates a new node of the role's sort. A
// supplied endpoint must be unbound or of the role's sort; unbound endpoints
// are refined to the role's sort. The label starts at the scale's top.
func (g *Graph) AddRNode(mvaID string, endpoints []string, pos *Point) (string, error) {
	mva, err := g.catalog.MVA(mvaID)
	if err != nil {
		return "", unknownMVA("", mvaID, err)
	}
	if mva.Scale == nil {
		return "", &Error{Code: ErrCodeUnscaledRelation, Message: fmt.Sprintf("attribute %s has no scale", mva.Name), MVAID: mvaID}
	}
	if len(endpoints) != mva.Arity() {
		return "", &Error{
			Code:    ErrCodeArityMismatch,
			Message: fmt.Sprintf("attribute %s takes %d endpoints, got %d", mva.Name, mva.Arity(), len(endpoints)),
			MVAID:   mvaID,
		}
	}

	// Check every supplied endpoint before touching the graph. A node used
	// at two roles must satisfy both.
	refined := make(map[string]schema.Sort)
	for i, id := range endpoints {
		if id == "" {
			continue
		}
		node, ok := g.nodes[id]
		if !ok {
			return "", unknownNode(id)
		}
		current := node.Sort
		if s, seen := refined[id]; seen {
			current = s
		}
		if !schema.SortLeq(current, mva.Sorts[i]) {
			return "", &Error{
				Code:    ErrCodeSortIncompatible,
				Message: fmt.Sprintf("role %d of %s requires %s, node has %s", i+1, mva.Name, mva.Sorts[i], current),
				NodeID:  id,
				MVAID:   mvaID,
			}
		}
		refined[id] = mva.Sorts[i]
	}

	for id, sort := range refined {
		g.nodes[id].Sort = sort
	}
	resolved := slices.Clone(endpoints)
	for i, id := range resolved {
		if id == "" {
			resolved[i] = g.AddNode(mva.Sorts[i], nil)
		}
	}

	id := "e" + strconv.Itoa(g.nextRNode)
	g.nextRNode++
	rnode := &RNode{MVAID: mvaID, Endpoints: resolved, Label: mva.Scale.Top(), Point: DefaultRNodePoint}
	if pos != nil {
		rnode.Point = *pos
	}
	g.rnodes[id] = rnode
	return id, nil
}

// RemoveRNode deletes a relation instance. A non-zero anchorRole keeps only
// the connected component of the endpoint at that role, discarding every
// node and relation instance no longer reachable from it.
func (g *Graph) RemoveRNode(rnodeID string, anchorRole int) error {
	rnode, ok := g.rnodes[rnodeID]
	if !ok {
		return unknownRNode(rnodeID)
	}
	if anchorRole < 0 || anchorRole > len(rnode.Endpoints) {
		return &Error{
			Code:    ErrCodeInvalidRole,
			Message: fmt.Sprintf("role %d outside 1..%d", anchorRole, len(rnode.Endpoints)),
			RNodeID: rnodeID,
		}
	}

	delete(g.rnodes, rnodeID)
	if anchorRole == 0 {
		return nil
	}

	nodes, rnodes := g.reach(rnode.Endpoints[anchorRole-1])
	maps.DeleteFunc(g.nodes, func(id string, _ *Node) bool { return !nodes[id] })
	maps.DeleteFunc(g.rnodes, func(id string, _ *RNode) bool { return !rnodes[id] })
	return nil
}

// Neighbors returns the relation instances incident to a node. A node
// appearing at several roles of one instance yields one link per role.
func (g *Graph) Neighbors(nodeID string) []Link {
	var links []Link
	for _, id := range g.RNodeIDs() {
		for i, endpoint := range g.rnodes[id].Endpoints {
			if endpoint == nodeID {
				links = append(links, Link{RNodeID: id, Role: i + 1})
			}
		}
	}
	return links
}

// LockSet returns the sorts that incident relation instances require of a
// node, sorted. A node's sort may only change while its lock set is empty.
func (g *Graph) LockSet(nodeID string) ([]schema.Sort, error) {
	if _, ok := g.nodes[nodeID]; !ok {
		return nil, unknownNode(nodeID)
	}
	var sorts []schema.Sort
	for _, link := range g.Neighbors(nodeID) {
		mvaID := g.rnodes[link.RNodeID].MVAID
		mva, err := g.catalog.MVA(mvaID)
		if err != nil {
			return nil, unknownMVA(link.RNodeID, mvaID, err)
		}
		sorts = append(sorts, mva.Sorts[link.Role-1])
	}
	slices.Sort(sorts)
	return slices.Compact(sorts), nil
}

// Component returns the connected subgraph containing nodeID, found by a
// breadth-first walk alternating between nodes and relation instances. The
// result shares the catalog and id counters but no mutable state.
func (g *Graph) Component(nodeID string) (*Graph, error) {
	if _, ok := g.nodes[nodeID]; !ok {
		return nil, unknownNode(nodeID)
	}
	nodes, rnodes := g.reach(nodeID)
	sub := g.Clone()
	maps.DeleteFunc(sub.nodes, func(id string, _ *Node) bool { return !nodes[id] })
	maps.DeleteFunc(sub.rnodes, func(id string, _ *RNode) bool { return !rnodes[id] })
	return sub, nil
}

// reach walks the component of start and returns its node and relation
// instance ids.
func (g *Graph) reach(start string) (nodes, rnodes map[string]bool) {
	nodes = make(map[string]bool)
	rnodes = make(map[string]bool)
	queue := []string{start}
	var rqueue []string

	for len(queue) > 0 || len(rqueue) > 0 {
		if len(queue) > 0 {
			x := queue[0]
			queue = queue[1:]
			if nodes[x] {
				continue
			}
			nodes[x] = true
			for _, link := range g.Neighbors(x) {
				rqueue = append(rqueue, link.RNodeID)
			}
			continue
		}
		e := rqueue[0]
		rqueue = rqueue[1:]
		if rnodes[e] {
			continue
		}
		rnodes[e] = true
		queue = append(queue, g.rnodes[e].Endpoints...)
	}
	return nodes, rnodes
}

// Merge quotients nodeID into targetID. The target's sort becomes the
// supremum of both sorts and the display sets are unioned. Relation
// instances are rewritten to point at the target; instances that become
// identical in (attribute, endpoints) collapse into the first one with the
// scale-merged label. The quotient is computed in full before the graph is
// touched, so any error leaves the graph unchanged.
func (g *Graph) Merge(nodeID, targetID string) error {
	node, ok := g.nodes[nodeID]
	if !ok {
		return unknownNode(nodeID)
	}
	target, ok := g.nodes[targetID]
	if !ok {
		return unknownNode(targetID)
	}
	if nodeID == targetID {
		return nil
	}

	sort, err := schema.SortSup(node.Sort, target.Sort)
	if err != nil {
		return &Error{
			Code:    ErrCodeSupremumUndefined,
			Message: fmt.Sprintf("cannot merge %s into %s", nodeID, targetID),
			NodeID:  nodeID,
			Err:     err,
		}
	}

	type signature struct {
		mva       string
		endpoints string
	}
	kept := make(map[signature]string)
	quotient := make(map[string]*RNode, len(g.rnodes))

	for _, id := range g.RNodeIDs() {
		rnode := g.rnodes[id]
		endpoints := make([]string, len(rnode.Endpoints))
		for i, x := range rnode.Endpoints {
			if x == nodeID {
				x = targetID
			}
			endpoints[i] = x
		}
		key := signature{mva: rnode.MVAID, endpoints: fmt.Sprintf("%q", endpoints)}

		first, dup := kept[key]
		if !dup {
			kept[key] = id
			quotient[id] = &RNode{MVAID: rnode.MVAID, Endpoints: endpoints, Label: rnode.Label, Point: rnode.Point}
			continue
		}

		mva, err := g.catalog.MVA(rnode.MVAID)
		if err != nil {
			return unknownMVA(id, rnode.MVAID, err)
		}
		if mva.Scale == nil {
			return &Error{Code: ErrCodeUnscaledRelation, Message: "cannot merge labels without a scale", RNodeID: id, MVAID: rnode.MVAID}
		}
		label, err := mva.Scale.Merge(quotient[first].Label, rnode.Label)
		if err != nil {
			return &Error{Code: ErrCodeMalformedLabel, Message: "cannot merge labels", RNodeID: id, MVAID: rnode.MVAID, Err: err}
		}
		quotient[first].Label = label
	}

	merged := &Node{
		Sort:    sort,
		Display: union(target.Display, node.Display),
		Point:   target.Point,
	}
	delete(g.nodes, nodeID)
	g.nodes[targetID] = merged
	g.rnodes = quotient
	return nil
}

// SetLabel replaces a relation instance's label after the scale validates it.
func (g *Graph) SetLabel(rnodeID string, label ir.IRValue) error {
	rnode, ok := g.rnodes[rnodeID]
	if !ok {
		return unknownRNode(rnodeID)
	}
	mva, err := g.catalog.MVA(rnode.MVAID)
	if err != nil {
		return unknownMVA(rnodeID, rnode.MVAID, err)
	}
	if mva.Scale == nil {
		return &Error{Code: ErrCodeUnscaledRelation, Message: "attribute has no scale", RNodeID: rnodeID, MVAID: rnode.MVAID}
	}
	if err := mva.Scale.Validate(label); err != nil {
		return &Error{Code: ErrCodeMalformedLabel, Message: "label rejected", RNodeID: rnodeID, MVAID: rnode.MVAID, Err: err}
	}
	rnode.Label = label
	return nil
}

// ToggleDisplay flips whether a unary attribute of the node's sort is
// surfaced alongside the node.
func (g *Graph) ToggleDisplay(nodeID, mvaID string) error {
	node, ok := g.nodes[nodeID]
	if !ok {
		return unknownNode(nodeID)
	}
	if i, found := slices.BinarySearch(node.Display, mvaID); found {
		node.Display = slices.Delete(node.Display, i, i+1)
		return nil
	}
	mva, err := g.catalog.MVA(mvaID)
	if err != nil {
		return unknownMVA("", mvaID, err)
	}
	if !mva.Unary() || !node.Sort.Bound() || mva.Sorts[0] != node.Sort {
		return &Error{
			Code:    ErrCodeNotDisplayable,
			Message: fmt.Sprintf("attribute %s is not a property of sort %s", mva.Name, node.Sort),
			NodeID:  nodeID,
			MVAID:   mvaID,
		}
	}
	node.Display = union(node.Display, []string{mvaID})
	return nil
}

// SetSort retypes a node whose lock set is empty. The display set is
// cleared because its attributes belonged to the old sort. Setting the
// current sort is a no-op.
func (g *Graph) SetSort(nodeID string, sort schema.Sort) error {
	node, ok := g.nodes[nodeID]
	if !ok {
		return unknownNode(nodeID)
	}
	if node.Sort == sort {
		return nil
	}
	locks, err := g.LockSet(nodeID)
	if err != nil {
		return err
	}
	if len(locks) > 0 {
		return &Error{
			Code:    ErrCodeSortLocked,
			Message: fmt.Sprintf("node is constrained to %v by its relation instances", locks),
			NodeID:  nodeID,
		}
	}
	node.Sort = sort
	node.Display = nil
	return nil
}

// SetPosition moves a node or relation instance.
func (g *Graph) SetPosition(id string, p Point) error {
	if node, ok := g.nodes[id]; ok {
		node.Point = p
		return nil
	}
	if rnode, ok := g.rnodes[id]; ok {
		rnode.Point = p
		return nil
	}
	return unknownNode(id)
}

// Node returns a copy of a node.
func (g *Graph) Node(id string) (Node, bool) {
	node, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	cp := *node
	cp.Display = slices.Clone(node.Display)
	return cp, true
}

// RNode returns a copy of a relation instance.
func (g *Graph) RNode(id string) (RNode, bool) {
	rnode, ok := g.rnodes[id]
	if !ok {
		return RNode{}, false
	}
	cp := *rnode
	cp.Endpoints = slices.Clone(rnode.Endpoints)
	return cp, true
}

// NodeIDs returns node ids in creation order.
func (g *Graph) NodeIDs() []string {
	return sortedIDs(g.nodes)
}

// RNodeIDs returns relation instance ids in creation order.
func (g *Graph) RNodeIDs() []string {
	return sortedIDs(g.rnodes)
}

// Trivial reports the degenerate pattern: one unbound node and no relation
// instances, meaning "no query yet".
func (g *Graph) Trivial() bool {
	if len(g.nodes) != 1 || len(g.rnodes) != 0 {
		return false
	}
	return !g.nodes[g.NodeIDs()[0]].Sort.Bound()
}

// Clone returns a deep copy sharing the catalog.
func (g *Graph) Clone() *Graph {
	cp := &Graph{
		catalog:   g.catalog,
		nodes:     make(map[string]*Node, len(g.nodes)),
		rnodes:    make(map[string]*RNode, len(g.rnodes)),
		nextNode:  g.nextNode,
		nextRNode: g.nextRNode,
	}
	for id := range g.nodes {
		node, _ := g.Node(id)
		cp.nodes[id] = &node
	}
	for id := range g.rnodes {
		rnode, _ := g.RNode(id)
		cp.rnodes[id] = &rnode
	}
	return cp
}

// sortedIDs orders ids like x2 < x10 by prefix then numeric suffix.
func sortedIDs[V any](m map[string]V) []string {
	ids := slices.Collect(maps.Keys(m))
	slices.SortFunc(ids, compareIDs)
	return ids
}

func compareIDs(a, b string) int {
	pa, na := splitID(a)
	pb, nb := splitID(b)
	if c := cmp.Compare(pa, pb); c != 0 {
		return c
	}
	if na >= 0 && nb >= 0 {
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
	}
	return cmp.Compare(a, b)
}

func splitID(id string) (string, int) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	n, err := strconv.Atoi(id[i:])
	if err != nil {
		return id, -1
	}
	return id[:i], n
}

func union(a, b []string) []string {
	out := append(slices.Clone(a), b...)
	slices.Sort(out)
	return slices.Compact(out)
}
