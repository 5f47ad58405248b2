package browse

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lumenvault/photovault/internal/apperr"
)

// Querier is the slice of pgxpool.Pool the engine needs. Satisfied by
// *pgxpool.Pool; narrowed to an interface so tests can substitute a
// fake without a live Postgres connection.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// NodeType distinguishes a folder listing from a leaf photo page.
type NodeType string

const (
	NodeFolders NodeType = "folders"
	NodePhotos  NodeType = "photos"
)

// Folder is one grouped bucket at a given depth.
type Folder struct {
	Name        string
	FullPath    string
	Depth       int
	FileCount   int64
	HasChildren bool
}

// Photo is one leaf result row.
type Photo struct {
	ID       uuid.UUID
	FileName string
	Hash     string
	SortDate any // time.Time, or nil when COALESCE still yielded NULL
	Width    *int32
	Height   *int32
}

// Response is the result of a single Browse call: exactly one of
// Folders or Photos is populated, matching NodeType.
type Response struct {
	NodeType   NodeType
	Folders    []Folder
	Photos     []Photo
	NextCursor string
}

// Engine runs dimensional browse queries against a Postgres catalog.
type Engine struct {
	db Querier
}

// NewEngine builds an Engine backed by db.
func NewEngine(db Querier) *Engine {
	return &Engine{db: db}
}

// Browse lists the folders or photos found by walking segments
// through opts.Dimensions under storageID. A segments length equal to
// len(opts.Dimensions) returns a photo page; anything shorter returns
// one level of folders.
func (e *Engine) Browse(ctx context.Context, storageID string, segments []string, opts Options, pageSize int, cursor *Cursor) (Response, error) {
	if len(opts.Dimensions) == 0 {
		return Response{}, apperr.Newf(apperr.KindInvalidInput, "browse.Engine.Browse", "no dimensions configured")
	}
	if len(segments) > len(opts.Dimensions) {
		return Response{}, apperr.Newf(apperr.KindInvalidInput, "browse.Engine.Browse", "path depth %d exceeds %d configured dimensions", len(segments), len(opts.Dimensions))
	}

	if len(segments) < len(opts.Dimensions) {
		return e.browseFolders(ctx, storageID, segments, opts)
	}
	return e.browsePhotos(ctx, storageID, segments, opts, pageSize, cursor)
}

func (e *Engine) browseFolders(ctx context.Context, storageID string, segments []string, opts Options) (Response, error) {
	query, err := buildFoldersQuery(storageID, opts.Dimensions, segments, opts)
	if err != nil {
		return Response{}, err
	}

	rows, err := e.db.Query(ctx, query.SQL, query.Args...)
	if err != nil {
		return Response{}, apperr.New(apperr.KindCatalog, "browse.Engine.browseFolders", err)
	}
	defer rows.Close()

	depth := len(segments)
	hasChildren := depth+1 < len(opts.Dimensions)

	var folders []Folder
	for rows.Next() {
		var folderName string
		var fileCount int64
		if err := rows.Scan(&folderName, &fileCount); err != nil {
			return Response{}, apperr.New(apperr.KindCatalog, "browse.Engine.browseFolders", err)
		}

		fullPath := folderName
		if len(segments) > 0 {
			fullPath = joinSegments(segments) + "/" + folderName
		}

		folders = append(folders, Folder{
			Name:        folderName,
			FullPath:    fullPath,
			Depth:       depth + 1,
			FileCount:   fileCount,
			HasChildren: hasChildren,
		})
	}
	if err := rows.Err(); err != nil {
		return Response{}, apperr.New(apperr.KindCatalog, "browse.Engine.browseFolders", err)
	}

	return Response{NodeType: NodeFolders, Folders: folders}, nil
}

func (e *Engine) browsePhotos(ctx context.Context, storageID string, segments []string, opts Options, pageSize int, cursor *Cursor) (Response, error) {
	query, normalizedSize, err := buildPhotosQuery(storageID, opts.Dimensions, segments, opts, pageSize, cursor)
	if err != nil {
		return Response{}, err
	}

	rows, err := e.db.Query(ctx, query.SQL, query.Args...)
	if err != nil {
		return Response{}, apperr.New(apperr.KindCatalog, "browse.Engine.browsePhotos", err)
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		var p Photo
		var sortDate any
		if err := rows.Scan(&p.ID, &p.FileName, &p.Hash, &sortDate, &p.Width, &p.Height); err != nil {
			return Response{}, apperr.New(apperr.KindCatalog, "browse.Engine.browsePhotos", err)
		}
		p.SortDate = sortDate
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return Response{}, apperr.New(apperr.KindCatalog, "browse.Engine.browsePhotos", err)
	}

	hasNext := len(photos) > normalizedSize
	if hasNext {
		photos = photos[:normalizedSize]
	}

	var nextCursor string
	if hasNext && len(photos) > 0 {
		last := photos[len(photos)-1]
		if t, ok := asTime(last.SortDate); ok {
			nextCursor = Cursor{SortDate: t, ID: last.ID}.Encode()
		}
	}

	return Response{NodeType: NodePhotos, Photos: photos, NextCursor: nextCursor}, nil
}

// asTime recovers a time.Time out of a COALESCE result scanned into
// any. A NULL sort expression (no date_taken and no created_at, which
// should not happen in practice) yields no cursor rather than a
// corrupt one.
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	default:
		return time.Time{}, false
	}
}

func joinSegments(segments []string) string {
	out := ""
	for i, s := range segments {
		if i > 0 {
			out += "/"
		}
		out += s
	}
	return out
}
