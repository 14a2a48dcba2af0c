package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/dbnav/internal/fca"
	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/schema"
)

// Binding is a named backend plus the model navigated over it. Family is
// set for in-memory bindings and nil for database bindings.
type Binding struct {
	Name    string
	Dialect string
	DSN     string
	Model   *schema.Model
	Family  *fca.Family

	ModelHash string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BindingInfo is a binding listing entry.
type BindingInfo struct {
	Name      string    `json:"name"`
	Dialect   string    `json:"dialect"`
	ModelHash string    `json:"model_hash"`
	InMemory  bool      `json:"in_memory"`
	Sessions  int       `json:"sessions"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PutBinding creates or replaces a binding. Replacing keeps created_at and
// the binding's sessions.
func (s *Store) PutBinding(ctx context.Context, b Binding) error {
	if b.Name == "" {
		return fmt.Errorf("put binding: name is empty")
	}
	if b.Model == nil {
		return fmt.Errorf("put binding %s: model is nil", b.Name)
	}

	rec := b.Model.Record()
	model, err := marshalRecord(rec)
	if err != nil {
		return fmt.Errorf("put binding %s: %w", b.Name, err)
	}
	hash, err := ir.Fingerprint(ir.DomainModel, rec)
	if err != nil {
		return fmt.Errorf("put binding %s: %w", b.Name, err)
	}
	var family sql.NullString
	if b.Family != nil {
		text, err := marshalRecord(b.Family.Record())
		if err != nil {
			return fmt.Errorf("put binding %s: %w", b.Name, err)
		}
		family = sql.NullString{String: text, Valid: true}
	}

	now := s.now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bindings (name, dialect, dsn, model, model_hash, family, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			dialect = excluded.dialect,
			dsn = excluded.dsn,
			model = excluded.model,
			model_hash = excluded.model_hash,
			family = excluded.family,
			updated_at = excluded.updated_at
	`, b.Name, b.Dialect, b.DSN, model, hash, family, now, now)
	if err != nil {
		return fmt.Errorf("put binding %s: %w", b.Name, err)
	}
	slog.Debug("binding stored", "name", b.Name, "model_hash", hash)
	return nil
}

// GetBinding loads a binding, decoding its model and family.
// Returns ErrNotFound if no binding has the name.
func (s *Store) GetBinding(ctx context.Context, name string) (Binding, error) {
	var (
		b                    = Binding{Name: name}
		model                string
		family               sql.NullString
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT dialect, dsn, model, model_hash, family, created_at, updated_at
		FROM bindings WHERE name = ?
	`, name).Scan(&b.Dialect, &b.DSN, &model, &b.ModelHash, &family, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Binding{}, fmt.Errorf("binding %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return Binding{}, fmt.Errorf("get binding %s: %w", name, err)
	}

	v, err := unmarshalRecord(model)
	if err != nil {
		return Binding{}, fmt.Errorf("get binding %s: %w", name, err)
	}
	if b.Model, err = schema.ModelFromRecord(v); err != nil {
		return Binding{}, fmt.Errorf("get binding %s: %w", name, err)
	}
	if family.Valid {
		fv, err := unmarshalRecord(family.String)
		if err != nil {
			return Binding{}, fmt.Errorf("get binding %s: %w", name, err)
		}
		if b.Family, err = fca.FamilyFromRecord(fv, b.Model); err != nil {
			return Binding{}, fmt.Errorf("get binding %s: %w", name, err)
		}
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return Binding{}, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Binding{}, err
	}
	return b, nil
}

// ListBindings returns every binding ordered by name.
// Returns an empty slice (not nil) when there are none.
func (s *Store) ListBindings(ctx context.Context) ([]BindingInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.name, b.dialect, b.model_hash, b.family IS NOT NULL, b.updated_at,
		       (SELECT COUNT(*) FROM sessions s WHERE s.binding = b.name)
		FROM bindings b
		ORDER BY b.name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query bindings: %w", err)
	}
	defer rows.Close()

	infos := []BindingInfo{}
	for rows.Next() {
		var (
			info      BindingInfo
			updatedAt string
		)
		if err := rows.Scan(&info.Name, &info.Dialect, &info.ModelHash, &info.InMemory, &updatedAt, &info.Sessions); err != nil {
			return nil, fmt.Errorf("scan binding: %w", err)
		}
		if info.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bindings: %w", err)
	}
	return infos, nil
}

// DeleteBinding removes a binding and its sessions.
// Returns ErrNotFound if no binding has the name.
func (s *Store) DeleteBinding(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bindings WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete binding %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete binding %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("binding %s: %w", name, ErrNotFound)
	}
	return nil
}
