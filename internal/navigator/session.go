package navigator

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/dbnav/internal/graph"
	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/result"
	"github.com/roach88/dbnav/internal/schema"
)

// Backend answers queries over a graph.
type Backend interface {
	// ResultTable projects every match of g onto window and rwindow.
	ResultTable(ctx context.Context, g *graph.Graph, window, rwindow []string) (result.Table, error)

	// SortCounts returns the number of objects of every sort.
	SortCounts(ctx context.Context) (map[schema.Sort]int, error)
}

// Session is one navigation: a graph, the schema it is typed by and the
// backend that answers it.
//
// Thread-safety: all methods are safe for concurrent use.
type Session struct {
	mu      sync.RWMutex
	id      string
	model   *schema.Model
	graph   *graph.Graph
	backend Backend
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	id    string
	ids   IDGenerator
	graph *graph.Graph
}

// WithID resumes a session under a known id.
func WithID(id string) Option {
	return func(c *sessionConfig) { c.id = id }
}

// WithIDGenerator sets the source of new session ids.
func WithIDGenerator(gen IDGenerator) Option {
	return func(c *sessionConfig) { c.ids = gen }
}

// WithGraph starts the session from an existing graph instead of a single
// unbound node.
func WithGraph(g *graph.Graph) Option {
	return func(c *sessionConfig) { c.graph = g }
}

// New creates a session over model answered by backend.
func New(model *schema.Model, backend Backend, opts ...Option) *Session {
	cfg := sessionConfig{ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = cfg.ids.Generate()
	}
	if cfg.graph == nil {
		cfg.graph = graph.New(model)
	}
	return &Session{id: cfg.id, model: model, graph: cfg.graph, backend: backend}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Model returns the schema the session is typed by.
func (s *Session) Model() *schema.Model { return s.model }

// Graph returns a snapshot of the current graph.
func (s *Session) Graph() *graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Clone()
}

// SetBackend swaps the backend, e.g. after reconnecting.
func (s *Session) SetBackend(b Backend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backend = b
}

// Reset discards the graph and starts over from a single unbound node.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = graph.New(s.model)
	slog.Debug("session reset", "session", s.id)
}

// AddNode adds a node of the given sort; pass schema.Unbound for an
// untyped node.
func (s *Session) AddNode(sort schema.Sort, pos *graph.Point) (string, error) {
	if err := s.checkSort(sort); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.graph.AddNode(sort, pos)
	slog.Debug("add node", "session", s.id, "node", id, "sort", sort)
	return id, nil
}

func (s *Session) checkSort(sort schema.Sort) error {
	if sort.Bound() && !s.model.HasSort(sort) {
		return &schema.Error{Code: schema.ErrCodeUnknownSort, Message: fmt.Sprintf("unknown sort %s", sort), Sort: sort}
	}
	return nil
}

// AddRelation adds a relation instance. An empty endpoint creates a fresh
// node of the role's sort.
func (s *Session) AddRelation(mvaID string, endpoints []string, pos *graph.Point) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.graph.AddRNode(mvaID, endpoints, pos)
	if err != nil {
		return "", err
	}
	slog.Debug("add relation", "session", s.id, "rnode", id, "mva", mvaID, "endpoints", endpoints)
	return id, nil
}

// RemoveRelation deletes a relation instance. A non-zero anchorRole prunes
// everything no longer connected to the endpoint at that role.
func (s *Session) RemoveRelation(rnodeID string, anchorRole int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.RemoveRNode(rnodeID, anchorRole); err != nil {
		return err
	}
	slog.Debug("remove relation", "session", s.id, "rnode", rnodeID, "anchor", anchorRole)
	return nil
}

// MergeNodes quotients nodeID into targetID.
func (s *Session) MergeNodes(nodeID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.Merge(nodeID, targetID); err != nil {
		return err
	}
	slog.Debug("merge nodes", "session", s.id, "node", nodeID, "target", targetID)
	return nil
}

// SetLabel changes the constraint of a relation instance.
func (s *Session) SetLabel(rnodeID string, label ir.IRValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.SetLabel(rnodeID, label); err != nil {
		return err
	}
	slog.Debug("set label", "session", s.id, "rnode", rnodeID, "label", ir.Format(label))
	return nil
}

// ToggleDisplay flips a displayed property of a node.
func (s *Session) ToggleDisplay(nodeID, mvaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.ToggleDisplay(nodeID, mvaID); err != nil {
		return err
	}
	slog.Debug("toggle display", "session", s.id, "node", nodeID, "mva", mvaID)
	return nil
}

// SetSort retypes an unconstrained node. The sort must be declared.
func (s *Session) SetSort(nodeID string, sort schema.Sort) error {
	if err := s.checkSort(sort); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.SetSort(nodeID, sort); err != nil {
		return err
	}
	slog.Debug("set sort", "session", s.id, "node", nodeID, "sort", sort)
	return nil
}

// SetPosition moves a node or relation instance.
func (s *Session) SetPosition(id string, p graph.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.SetPosition(id, p)
}

// ResultTable runs the graph against the backend.
func (s *Session) ResultTable(ctx context.Context, window, rwindow []string) (result.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resultTable(ctx, window, rwindow)
}

func (s *Session) resultTable(ctx context.Context, window, rwindow []string) (result.Table, error) {
	tbl, err := s.backend.ResultTable(ctx, s.graph, window, rwindow)
	if err != nil {
		slog.Error("query failed", "session", s.id, "window", window, "rwindow", rwindow, "error", err)
		return result.Table{}, err
	}
	return tbl, nil
}

// Extent lists the objects a node currently matches.
func (s *Session) Extent(ctx context.Context, nodeID string) (result.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resultTable(ctx, []string{nodeID}, nil)
}

// RExtent lists the tuples a relation instance currently matches: its
// endpoints and its value.
func (s *Session) RExtent(ctx context.Context, rnodeID string) (result.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rextent(ctx, rnodeID)
}

func (s *Session) rextent(ctx context.Context, rnodeID string) (result.Table, error) {
	rnode, ok := s.graph.RNode(rnodeID)
	if !ok {
		return result.Table{}, &graph.Error{Code: graph.ErrCodeUnknownRNode, Message: "no such relation instance", RNodeID: rnodeID}
	}
	return s.resultTable(ctx, distinct(rnode.Endpoints), []string{rnodeID})
}

// distinct drops repeated ids, keeping first occurrences.
func distinct(ids []string) []string {
	var out []string
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
