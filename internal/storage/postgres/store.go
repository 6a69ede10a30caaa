// Package postgres implements the layout store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/makersimpulse/layoutengine/internal/layout"
	"github.com/makersimpulse/layoutengine/internal/storage"
)

// Store implements storage.LayoutStore backed by PostgreSQL. Activation runs
// inside a transaction, and the partial unique index on (type, scope) for
// active rows makes slot exclusivity a database invariant rather than an
// application promise.
type Store struct {
	db *sql.DB
}

var _ storage.LayoutStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const skeletonColumns = `id, name, type, scope, description, layout_json, is_active, is_locked, version, created_at, updated_at`

func (s *Store) CreateLayout(ctx context.Context, skel layout.Skeleton) (layout.Skeleton, error) {
	if skel.ID == "" {
		skel.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	skel.CreatedAt = now
	skel.UpdatedAt = now

	payload, err := layout.EncodeTreePayload(skel.LayoutJSON)
	if err != nil {
		return layout.Skeleton{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO layout_skeletons (`+skeletonColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, skel.ID, skel.Name, skel.Type, skel.Scope, skel.Description, payload,
		skel.IsActive, skel.IsLocked, skel.Version, skel.CreatedAt, skel.UpdatedAt)
	if err != nil {
		return layout.Skeleton{}, err
	}
	return skel, nil
}

func (s *Store) UpdateLayout(ctx context.Context, skel layout.Skeleton) (layout.Skeleton, error) {
	existing, err := s.GetLayout(ctx, skel.ID)
	if err != nil {
		return layout.Skeleton{}, err
	}

	skel.CreatedAt = existing.CreatedAt
	skel.UpdatedAt = time.Now().UTC()

	payload, err := layout.EncodeTreePayload(skel.LayoutJSON)
	if err != nil {
		return layout.Skeleton{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE layout_skeletons
		SET name = $2, type = $3, scope = $4, description = $5, layout_json = $6,
		    is_active = $7, is_locked = $8, version = $9, updated_at = $10
		WHERE id = $1
	`, skel.ID, skel.Name, skel.Type, skel.Scope, skel.Description, payload,
		skel.IsActive, skel.IsLocked, skel.Version, skel.UpdatedAt)
	if err != nil {
		return layout.Skeleton{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return layout.Skeleton{}, fmt.Errorf("%w: %s", storage.ErrNotFound, skel.ID)
	}
	return skel, nil
}

func (s *Store) GetLayout(ctx context.Context, id string) (layout.Skeleton, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+skeletonColumns+`
		FROM layout_skeletons
		WHERE id = $1
	`, id)
	skel, err := scanSkeleton(row)
	if errors.Is(err, sql.ErrNoRows) {
		return layout.Skeleton{}, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return skel, err
}

func (s *Store) ListLayouts(ctx context.Context) ([]layout.Skeleton, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+skeletonColumns+`
		FROM layout_skeletons
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []layout.Skeleton
	for rows.Next() {
		skel, err := scanSkeleton(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, skel)
	}
	return result, rows.Err()
}

func (s *Store) DeleteLayout(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM layout_skeletons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

func (s *Store) GetActiveLayout(ctx context.Context, kind layout.Kind, scope layout.Scope) (layout.Skeleton, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+skeletonColumns+`
		FROM layout_skeletons
		WHERE type = $1 AND scope = $2 AND is_active
		ORDER BY created_at DESC
		LIMIT 1
	`, kind, scope)
	skel, err := scanSkeleton(row)
	if errors.Is(err, sql.ErrNoRows) {
		return layout.Skeleton{}, fmt.Errorf("%w: %s/%s", storage.ErrNoActiveLayout, kind, scope)
	}
	return skel, err
}

func (s *Store) ActivateLayout(ctx context.Context, id string) (layout.Skeleton, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return layout.Skeleton{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var kind, scope string
	if err := tx.QueryRowContext(ctx, `
		SELECT type, scope FROM layout_skeletons WHERE id = $1
	`, id).Scan(&kind, &scope); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return layout.Skeleton{}, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
		}
		return layout.Skeleton{}, err
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE layout_skeletons
		SET is_active = FALSE, updated_at = $3
		WHERE type = $1 AND scope = $2 AND is_active AND id <> $4
	`, kind, scope, now, id); err != nil {
		return layout.Skeleton{}, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE layout_skeletons
		SET is_active = TRUE, updated_at = $2
		WHERE id = $1
	`, id, now); err != nil {
		return layout.Skeleton{}, err
	}

	if err := tx.Commit(); err != nil {
		return layout.Skeleton{}, err
	}
	return s.GetLayout(ctx, id)
}

func (s *Store) EnsureLayout(ctx context.Context, skel layout.Skeleton) (layout.Skeleton, bool, error) {
	if skel.ID == "" {
		skel.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	skel.CreatedAt = now
	skel.UpdatedAt = now
	skel.IsActive = true

	payload, err := layout.EncodeTreePayload(skel.LayoutJSON)
	if err != nil {
		return layout.Skeleton{}, false, err
	}

	// The conflict target is the partial unique index on active slots, so a
	// concurrent seeder cannot double-insert.
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO layout_skeletons (`+skeletonColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (type, scope) WHERE is_active DO NOTHING
	`, skel.ID, skel.Name, skel.Type, skel.Scope, skel.Description, payload,
		skel.IsActive, skel.IsLocked, skel.Version, skel.CreatedAt, skel.UpdatedAt)
	if err != nil {
		return layout.Skeleton{}, false, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		existing, err := s.GetActiveLayout(ctx, skel.Type, skel.Scope)
		if err != nil {
			return layout.Skeleton{}, false, err
		}
		return existing, false, nil
	}
	return skel, true, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSkeleton(row rowScanner) (layout.Skeleton, error) {
	var (
		skel layout.Skeleton
		raw  []byte
	)
	if err := row.Scan(&skel.ID, &skel.Name, &skel.Type, &skel.Scope, &skel.Description,
		&raw, &skel.IsActive, &skel.IsLocked, &skel.Version, &skel.CreatedAt, &skel.UpdatedAt); err != nil {
		return layout.Skeleton{}, err
	}
	payload, err := layout.DecodeTreePayload(raw)
	if err != nil {
		return layout.Skeleton{}, err
	}
	skel.LayoutJSON = payload
	return skel, nil
}
