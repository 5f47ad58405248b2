package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenvault/photovault/internal/apperr"
	"github.com/lumenvault/photovault/internal/pipeline"
)

// PhotoStore persists photos to Postgres. It satisfies
// pipeline.PhotoStore so the ingest pipeline's PersistMetadataStep can
// write through it directly.
type PhotoStore struct {
	pool *pgxpool.Pool
}

// NewPhotoStore wraps an existing pool. The pool's lifecycle belongs
// to the caller.
func NewPhotoStore(pool *pgxpool.Pool) *PhotoStore {
	return &PhotoStore{pool: pool}
}

var _ pipeline.PhotoStore = (*PhotoStore)(nil)

// Insert adds a row derived from a completed ingest. A conflict on
// (storage_id, hash) is reported as apperr.KindConflict so the
// pipeline can treat a re-ingested duplicate as a no-op success
// (spec §4.4).
func (s *PhotoStore) Insert(ctx context.Context, photo pipeline.PersistedPhoto) error {
	storageID, err := uuid.Parse(photo.StorageID)
	if err != nil {
		return apperr.New(apperr.KindInvalidInput, "catalog.PhotoStore.Insert", err)
	}

	var dateTaken *time.Time
	if !photo.EffectiveDate.IsZero() {
		dateTaken = &photo.EffectiveDate
	}

	_, err = s.pool.Exec(ctx, `
INSERT INTO photos (
	id, storage_id, path, name, format, hash, perceptual_hash, size,
	created_at, updated_at, date_imported, date_taken,
	thumbnail_path, preview_path, metadata_extracted,
	is_raw, camera_model, width, height, thumbnail_width, thumbnail_height
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8,
	now(), now(), now(), $9,
	$10, $11, true,
	$12, $13, $14, $15, $16, $17
)`,
		uuid.New(), storageID, photo.RelativePath, baseName(photo.RelativePath), nullIfEmpty(photo.Format), photo.Hash, nullIfEmpty(photo.PerceptualHash), photo.SizeBytes,
		dateTaken,
		photo.ThumbnailPath, photo.PreviewPath,
		photo.IsRAW, cameraLabel(photo), photo.Width, photo.Height, photo.ThumbnailWidth, photo.ThumbnailHeight,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.KindConflict, "catalog.PhotoStore.Insert", err)
		}
		return apperr.New(apperr.KindCatalog, "catalog.PhotoStore.Insert", err)
	}
	return nil
}

// Get fetches a single photo by id.
func (s *PhotoStore) Get(ctx context.Context, id uuid.UUID) (Photo, error) {
	row := s.pool.QueryRow(ctx, `
SELECT id, storage_id, path, name, COALESCE(format, ''), COALESCE(hash, ''), COALESCE(perceptual_hash, ''), COALESCE(size, 0),
       created_at, updated_at, date_imported, date_taken,
       COALESCE(thumbnail_path, ''), COALESCE(preview_path, ''),
       COALESCE(thumbnail_optimized, false), COALESCE(metadata_extracted, false),
       COALESCE(is_raw, false), COALESCE(width, 0), COALESCE(height, 0),
       COALESCE(thumbnail_width, 0), COALESCE(thumbnail_height, 0),
       COALESCE(camera_model, ''), COALESCE(rating, 0)
FROM photos WHERE id = $1`, id)

	var p Photo
	err := row.Scan(
		&p.ID, &p.StorageID, &p.Path, &p.Name, &p.Format, &p.Hash, &p.PerceptualHash, &p.Size,
		&p.CreatedAt, &p.UpdatedAt, &p.DateImported, &p.DateTaken,
		&p.ThumbnailPath, &p.PreviewPath,
		&p.ThumbnailOptimized, &p.MetadataExtracted,
		&p.IsRAW, &p.Width, &p.Height,
		&p.ThumbnailWidth, &p.ThumbnailHeight,
		&p.CameraModel, &p.Rating,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Photo{}, apperr.Newf(apperr.KindNotFound, "catalog.PhotoStore.Get", "photo %s not found", id)
	}
	if err != nil {
		return Photo{}, apperr.New(apperr.KindCatalog, "catalog.PhotoStore.Get", err)
	}
	return p, nil
}

// Delete removes a photo row. It does not touch the file on disk;
// callers that also want the master file removed must do that
// themselves.
func (s *PhotoStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return apperr.New(apperr.KindCatalog, "catalog.PhotoStore.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.KindNotFound, "catalog.PhotoStore.Delete", "photo %s not found", id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func cameraLabel(photo pipeline.PersistedPhoto) string {
	camera := photo.Exif.CameraMake
	if photo.Exif.CameraModel != "" {
		if camera != "" {
			camera += " "
		}
		camera += photo.Exif.CameraModel
	}
	return camera
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func baseName(relativePath string) string {
	for i := len(relativePath) - 1; i >= 0; i-- {
		if relativePath[i] == '/' {
			return relativePath[i+1:]
		}
	}
	return relativePath
}
