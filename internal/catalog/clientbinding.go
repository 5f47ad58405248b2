package catalog

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenvault/photovault/internal/apperr"
)

// ClientBindingStore persists which storage location each client is
// currently browsing and under which BrowseOptions, keyed by
// (client_id, storage_id) the way the original's ClientStorage row_id
// does.
type ClientBindingStore struct {
	pool *pgxpool.Pool
}

// NewClientBindingStore wraps an existing pool.
func NewClientBindingStore(pool *pgxpool.Pool) *ClientBindingStore {
	return &ClientBindingStore{pool: pool}
}

// Upsert records or updates a client's binding to a storage location.
func (s *ClientBindingStore) Upsert(ctx context.Context, binding ClientBinding) error {
	optsJSON, err := json.Marshal(binding.BrowseOptions)
	if err != nil {
		return apperr.New(apperr.KindInvalidInput, "catalog.ClientBindingStore.Upsert", err)
	}

	_, err = s.pool.Exec(ctx, `
INSERT INTO client_bindings (client_id, storage_id, browse_options, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (client_id, storage_id) DO UPDATE
SET browse_options = EXCLUDED.browse_options, updated_at = now()`,
		binding.ClientID, binding.StorageID, optsJSON,
	)
	if err != nil {
		return apperr.New(apperr.KindCatalog, "catalog.ClientBindingStore.Upsert", err)
	}
	return nil
}

// ForClient returns every binding recorded for a client, mirroring the
// original's for_client lookup.
func (s *ClientBindingStore) ForClient(ctx context.Context, clientID uuid.UUID) ([]ClientBinding, error) {
	rows, err := s.pool.Query(ctx, `
SELECT client_id, storage_id, browse_options
FROM client_bindings
WHERE client_id = $1`, clientID)
	if err != nil {
		return nil, apperr.New(apperr.KindCatalog, "catalog.ClientBindingStore.ForClient", err)
	}
	defer rows.Close()

	var out []ClientBinding
	for rows.Next() {
		binding, err := scanClientBinding(rows)
		if err != nil {
			return nil, apperr.New(apperr.KindCatalog, "catalog.ClientBindingStore.ForClient", err)
		}
		out = append(out, binding)
	}
	return out, rows.Err()
}

// Get returns the binding for a specific (client, storage) pair.
func (s *ClientBindingStore) Get(ctx context.Context, clientID, storageID uuid.UUID) (ClientBinding, error) {
	row := s.pool.QueryRow(ctx, `
SELECT client_id, storage_id, browse_options
FROM client_bindings
WHERE client_id = $1 AND storage_id = $2`, clientID, storageID)

	binding, err := scanClientBinding(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ClientBinding{}, apperr.Newf(apperr.KindNotFound, "catalog.ClientBindingStore.Get", "binding for client %s / storage %s not found", clientID, storageID)
	}
	if err != nil {
		return ClientBinding{}, apperr.New(apperr.KindCatalog, "catalog.ClientBindingStore.Get", err)
	}
	return binding, nil
}

// Delete removes a client's binding to a storage location.
func (s *ClientBindingStore) Delete(ctx context.Context, clientID, storageID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM client_bindings WHERE client_id = $1 AND storage_id = $2`, clientID, storageID)
	if err != nil {
		return apperr.New(apperr.KindCatalog, "catalog.ClientBindingStore.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.KindNotFound, "catalog.ClientBindingStore.Delete", "binding for client %s / storage %s not found", clientID, storageID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClientBinding(row rowScanner) (ClientBinding, error) {
	var binding ClientBinding
	var optsJSON []byte
	if err := row.Scan(&binding.ClientID, &binding.StorageID, &optsJSON); err != nil {
		return ClientBinding{}, err
	}
	if len(optsJSON) > 0 {
		if err := json.Unmarshal(optsJSON, &binding.BrowseOptions); err != nil {
			return ClientBinding{}, err
		}
	}
	return binding, nil
}
