package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenvault/photovault/internal/apperr"
	"github.com/lumenvault/photovault/internal/template"
)

// StorageLocationStore manages configured storage roots, enforcing
// that at most one carries Default = true.
type StorageLocationStore struct {
	pool *pgxpool.Pool
}

// NewStorageLocationStore wraps an existing pool.
func NewStorageLocationStore(pool *pgxpool.Pool) *StorageLocationStore {
	return &StorageLocationStore{pool: pool}
}

// List returns every configured storage location.
func (s *StorageLocationStore) List(ctx context.Context) ([]StorageLocation, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, label, path, category_policy, is_default, created_at FROM storage_locations ORDER BY created_at`)
	if err != nil {
		return nil, apperr.New(apperr.KindCatalog, "catalog.StorageLocationStore.List", err)
	}
	defer rows.Close()

	var out []StorageLocation
	for rows.Next() {
		var loc StorageLocation
		if err := rows.Scan(&loc.ID, &loc.Label, &loc.Path, &loc.CategoryPolicy, &loc.Default, &loc.CreatedAt); err != nil {
			return nil, apperr.New(apperr.KindCatalog, "catalog.StorageLocationStore.List", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

// FindByPath returns the location configured at path, if any.
func (s *StorageLocationStore) FindByPath(ctx context.Context, path string) (*StorageLocation, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, label, path, category_policy, is_default, created_at FROM storage_locations WHERE path = $1`, path)

	var loc StorageLocation
	err := row.Scan(&loc.ID, &loc.Label, &loc.Path, &loc.CategoryPolicy, &loc.Default, &loc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.New(apperr.KindCatalog, "catalog.StorageLocationStore.FindByPath", err)
	}
	return &loc, nil
}

// Create inserts a new storage location. When loc.Default is true,
// every existing default is cleared first so the invariant "at most
// one default location" (spec §5) always holds.
func (s *StorageLocationStore) Create(ctx context.Context, loc StorageLocation) (StorageLocation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return StorageLocation{}, apperr.New(apperr.KindCatalog, "catalog.StorageLocationStore.Create", err)
	}
	defer tx.Rollback(ctx)

	if loc.Default {
		if _, err := tx.Exec(ctx, `UPDATE storage_locations SET is_default = false WHERE is_default = true`); err != nil {
			return StorageLocation{}, apperr.New(apperr.KindCatalog, "catalog.StorageLocationStore.Create", err)
		}
	}

	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}
	if loc.CategoryPolicy == "" {
		loc.CategoryPolicy = template.DefaultTemplate
	}
	loc.CreatedAt = time.Now().UTC()

	_, err = tx.Exec(ctx, `
INSERT INTO storage_locations (id, label, path, category_policy, is_default, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		loc.ID, loc.Label, loc.Path, loc.CategoryPolicy, loc.Default, loc.CreatedAt,
	)
	if err != nil {
		return StorageLocation{}, apperr.New(apperr.KindCatalog, "catalog.StorageLocationStore.Create", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return StorageLocation{}, apperr.New(apperr.KindCatalog, "catalog.StorageLocationStore.Create", err)
	}
	return loc, nil
}

// SetDefault marks id as the sole default location, clearing the flag
// on every other row first.
func (s *StorageLocationStore) SetDefault(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.New(apperr.KindCatalog, "catalog.StorageLocationStore.SetDefault", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE storage_locations SET is_default = false WHERE is_default = true`); err != nil {
		return apperr.New(apperr.KindCatalog, "catalog.StorageLocationStore.SetDefault", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE storage_locations SET is_default = true WHERE id = $1`, id)
	if err != nil {
		return apperr.New(apperr.KindCatalog, "catalog.StorageLocationStore.SetDefault", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.KindNotFound, "catalog.StorageLocationStore.SetDefault", "storage location %s not found", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.New(apperr.KindCatalog, "catalog.StorageLocationStore.SetDefault", err)
	}
	return nil
}
