package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/schema"
)

// Record classes.
const (
	classGraph = "Graph"
	classNode  = "Node"
	classRNode = "RNode"
	classPoint = "Point"
)

// Record encodes the graph as a tagged record. The catalog is not part of
// the record; FromRecord takes it as an argument.
func (g *Graph) Record() ir.IRObject {
	nodes := make(ir.IRObject, len(g.nodes))
	for id, node := range g.nodes {
		nodes[id] = ir.Tag(classNode, ir.IRObject{
			"sort":    ir.IRString(node.Sort),
			"display": ir.SetValue(node.Display),
			"point":   pointRecord(node.Point),
		})
	}
	rnodes := make(ir.IRObject, len(g.rnodes))
	for id, rnode := range g.rnodes {
		rnodes[id] = ir.Tag(classRNode, ir.IRObject{
			"mva":       ir.IRString(rnode.MVAID),
			"endpoints": ir.Strings(rnode.Endpoints),
			"label":     rnode.Label,
			"point":     pointRecord(rnode.Point),
		})
	}
	return ir.Tag(classGraph, ir.IRObject{
		"version":    ir.IRString(ir.RecordVersion),
		"nodes":      nodes,
		"rnodes":     rnodes,
		"next_node":  ir.IRInt(g.nextNode),
		"next_rnode": ir.IRInt(g.nextRNode),
	})
}

// Signature encodes only what determines query results: sorts, display
// sets, attributes, endpoints and labels. Positions and counters are left
// out so cosmetic edits do not change it.
func (g *Graph) Signature() ir.IRObject {
	nodes := make(ir.IRObject, len(g.nodes))
	for id, node := range g.nodes {
		nodes[id] = ir.IRObject{
			"sort":    ir.IRString(node.Sort),
			"display": ir.Strings(node.Display),
		}
	}
	rnodes := make(ir.IRObject, len(g.rnodes))
	for id, rnode := range g.rnodes {
		rnodes[id] = ir.IRObject{
			"mva":       ir.IRString(rnode.MVAID),
			"endpoints": ir.Strings(rnode.Endpoints),
			"label":     rnode.Label,
		}
	}
	return ir.IRObject{"nodes": nodes, "rnodes": rnodes}
}

// Fingerprint hashes the graph signature.
func (g *Graph) Fingerprint() (string, error) {
	return ir.Fingerprint(ir.DomainGraph, g.Signature())
}

// FromRecord decodes a record produced by Graph.Record.
func FromRecord(v ir.IRValue, catalog Catalog) (*Graph, error) {
	rec, err := ir.ExpectClass(v, classGraph)
	if err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	g := NewEmpty(catalog)

	nodes, err := rec.Obj("nodes")
	if err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	for id, elem := range nodes {
		node, err := nodeFromRecord(elem)
		if err != nil {
			return nil, fmt.Errorf("decode graph: node %s: %w", id, err)
		}
		g.nodes[id] = node
	}

	rnodes, err := rec.Obj("rnodes")
	if err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	for id, elem := range rnodes {
		rnode, err := rnodeFromRecord(elem)
		if err != nil {
			return nil, fmt.Errorf("decode graph: rnode %s: %w", id, err)
		}
		for _, x := range rnode.Endpoints {
			if _, ok := g.nodes[x]; !ok {
				return nil, fmt.Errorf("decode graph: rnode %s: dangling endpoint %s", id, x)
			}
		}
		g.rnodes[id] = rnode
	}

	next, err := rec.Int("next_node")
	if err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	g.nextNode = int(next)
	if next, err = rec.Int("next_rnode"); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	g.nextRNode = int(next)

	// Ids are never reused, whatever the counters say.
	for id := range g.nodes {
		g.nextNode = max(g.nextNode, idSuffix(id, "x")+1)
	}
	for id := range g.rnodes {
		g.nextRNode = max(g.nextRNode, idSuffix(id, "e")+1)
	}
	return g, nil
}

// idSuffix returns n for an id of the form prefix+n, or 0.
func idSuffix(id, prefix string) int {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0
	}
	return n
}

func nodeFromRecord(v ir.IRValue) (*Node, error) {
	rec, err := ir.ExpectClass(v, classNode)
	if err != nil {
		return nil, err
	}
	sort, err := rec.Str("sort")
	if err != nil {
		return nil, err
	}
	display, err := ir.ParseSet(rec["display"])
	if err != nil {
		return nil, fmt.Errorf("field \"display\": %w", err)
	}
	point, err := pointFromRecord(rec["point"])
	if err != nil {
		return nil, err
	}
	if len(display) == 0 {
		display = nil
	}
	return &Node{Sort: schema.Sort(sort), Display: display, Point: point}, nil
}

func rnodeFromRecord(v ir.IRValue) (*RNode, error) {
	rec, err := ir.ExpectClass(v, classRNode)
	if err != nil {
		return nil, err
	}
	mvaID, err := rec.Str("mva")
	if err != nil {
		return nil, err
	}
	endpoints, err := rec.Strs("endpoints")
	if err != nil {
		return nil, err
	}
	label, ok := rec["label"]
	if !ok {
		return nil, fmt.Errorf("missing label")
	}
	point, err := pointFromRecord(rec["point"])
	if err != nil {
		return nil, err
	}
	return &RNode{MVAID: mvaID, Endpoints: endpoints, Label: label, Point: point}, nil
}

func pointRecord(p Point) ir.IRObject {
	return ir.Tag(classPoint, ir.IRObject{"x": ir.IRInt(p.X), "y": ir.IRInt(p.Y)})
}

func pointFromRecord(v ir.IRValue) (Point, error) {
	rec, err := ir.ExpectClass(v, classPoint)
	if err != nil {
		return Point{}, fmt.Errorf("field \"point\": %w", err)
	}
	x, err := rec.Int("x")
	if err != nil {
		return Point{}, err
	}
	y, err := rec.Int("y")
	if err != nil {
		return Point{}, err
	}
	return Point{X: int(x), Y: int(y)}, nil
}
