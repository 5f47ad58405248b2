// Package catalog persists photos, storage locations, and per-client
// browse bindings in Postgres (spec §5/§6).
package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumenvault/photovault/internal/browse"
	"github.com/lumenvault/photovault/internal/exif"
)

// Photo is one ingested asset's catalog row.
type Photo struct {
	ID                 uuid.UUID
	StorageID          uuid.UUID
	Path               string
	Name               string
	Format             string
	Hash               string
	PerceptualHash     string
	Size               int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DateImported       time.Time
	DateTaken          *time.Time
	ThumbnailPath      string
	PreviewPath        string
	ThumbnailOptimized bool
	MetadataExtracted  bool
	IsRAW              bool
	Width              int32
	Height             int32
	ThumbnailWidth     int32
	ThumbnailHeight    int32
	CameraModel        string
	Rating             int32
	Exif               exif.Record
}

// StorageLocation is a configured root directory photos are ingested
// into and browsed from. Exactly one location may have Default set;
// the store enforces that invariant (spec §5 "default storage
// location").
type StorageLocation struct {
	ID             uuid.UUID
	Label          string
	Path           string
	CategoryPolicy string
	Default        bool
	CreatedAt      time.Time
}

// ClientBinding records which storage location a client is currently
// browsing and the BrowseOptions it should use, keyed by
// (ClientID, StorageID).
type ClientBinding struct {
	ClientID      uuid.UUID
	StorageID     uuid.UUID
	BrowseOptions browse.Options
}
