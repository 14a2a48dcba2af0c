package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/dbnav/internal/graph"
)

// SessionRecord is a saved navigation graph.
type SessionRecord struct {
	ID      string
	Binding string
	Graph   *graph.Graph

	GraphHash string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionInfo is a session listing entry.
type SessionInfo struct {
	ID        string    `json:"id"`
	Binding   string    `json:"binding"`
	GraphHash string    `json:"graph_hash"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveSession creates or replaces a session. The binding must exist.
func (s *Store) SaveSession(ctx context.Context, id, binding string, g *graph.Graph) error {
	text, err := marshalRecord(g.Record())
	if err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	hash, err := g.Fingerprint()
	if err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}

	now := s.now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, binding, graph, graph_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			binding = excluded.binding,
			graph = excluded.graph,
			graph_hash = excluded.graph_hash,
			updated_at = excluded.updated_at
	`, id, binding, text, hash, now, now)
	if err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	slog.Debug("session saved", "id", id, "binding", binding, "graph_hash", hash)
	return nil
}

// LoadSession loads a session, decoding its graph against catalog.
// Returns ErrNotFound if no session has the id.
func (s *Store) LoadSession(ctx context.Context, id string, catalog graph.Catalog) (SessionRecord, error) {
	var (
		rec                  = SessionRecord{ID: id}
		text                 string
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT binding, graph, graph_hash, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&rec.Binding, &text, &rec.GraphHash, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("load session %s: %w", id, err)
	}

	v, err := unmarshalRecord(text)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("load session %s: %w", id, err)
	}
	if rec.Graph, err = graph.FromRecord(v, catalog); err != nil {
		return SessionRecord{}, fmt.Errorf("load session %s: %w", id, err)
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return SessionRecord{}, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return SessionRecord{}, err
	}
	return rec, nil
}

// ListSessions returns the sessions of a binding ordered by id, or of every
// binding when binding is empty.
func (s *Store) ListSessions(ctx context.Context, binding string) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, binding, graph_hash, updated_at
		FROM sessions
		WHERE ? = '' OR binding = ?
		ORDER BY id COLLATE BINARY ASC
	`, binding, binding)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	infos := []SessionInfo{}
	for rows.Next() {
		var (
			info      SessionInfo
			updatedAt string
		)
		if err := rows.Scan(&info.ID, &info.Binding, &info.GraphHash, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if info.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return infos, nil
}

// DeleteSession removes a session.
// Returns ErrNotFound if no session has the id.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}
