package httpapi

import (
	"context"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumenvault/photovault/internal/apperr"
	"github.com/lumenvault/photovault/internal/browse"
	"github.com/lumenvault/photovault/internal/catalog"
	"github.com/lumenvault/photovault/internal/multipart"
	"github.com/lumenvault/photovault/internal/pipeline"
	"github.com/lumenvault/photovault/internal/storagedir"
	"github.com/lumenvault/photovault/internal/template"
)

// defaultPageSize is used when a browse request omits ?pageSize.
const defaultPageSize = 100

// stagingSubdir is where uploaded files wait inside a storage
// location's root before the ingest pipeline picks them up.
const stagingSubdir = ".staging"

// Deps wires every collaborator a handler needs. Handlers hold no
// state of their own beyond this struct.
type Deps struct {
	Logger     *zap.Logger
	Locations  *catalog.StorageLocationStore
	Bindings   *catalog.ClientBindingStore
	Photos     *catalog.PhotoStore
	Browse     *browse.Engine
	Runner     *pipeline.Runner
	Pipeline   *pipeline.IngestPipeline
	AuthSecret []byte
}

// Health reports process liveness.
func (d *Deps) Health(w http.ResponseWriter, r *http.Request) {
	Success(w, map[string]string{"status": "ok"})
}

// ListStorageLocations returns every configured storage location.
func (d *Deps) ListStorageLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := d.Locations.List(r.Context())
	if err != nil {
		Error(w, "failed to list storage locations", err)
		return
	}
	Success(w, locations)
}

type createStorageLocationRequest struct {
	Label          string `json:"label"`
	Path           string `json:"path"`
	CategoryPolicy string `json:"categoryPolicy"`
	Default        bool   `json:"default"`
}

// CreateStorageLocation registers a new storage root.
func (d *Deps) CreateStorageLocation(w http.ResponseWriter, r *http.Request) {
	var req createStorageLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, "invalid request body", err)
		return
	}

	policy := req.CategoryPolicy
	if policy == "" {
		policy = template.DefaultTemplate
	}

	loc, err := d.Locations.Create(r.Context(), catalog.StorageLocation{
		Label:          req.Label,
		Path:           req.Path,
		CategoryPolicy: policy,
		Default:        req.Default,
	})
	if err != nil {
		Error(w, "failed to create storage location", err)
		return
	}
	Created(w, loc)
}

// SetDefaultStorageLocation marks a storage location the sole default.
func (d *Deps) SetDefaultStorageLocation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "storageID"))
	if err != nil {
		Error(w, "invalid storage id", apperr.New(apperr.KindInvalidInput, "httpapi.SetDefaultStorageLocation", err))
		return
	}
	if err := d.Locations.SetDefault(r.Context(), id); err != nil {
		Error(w, "failed to set default storage location", err)
		return
	}
	Success(w, map[string]string{"id": id.String()})
}

// ListDisks reports mounted volume capacity, used by the storage
// location picker to flag a nearly-full disk before ingest starts.
func (d *Deps) ListDisks(w http.ResponseWriter, r *http.Request) {
	disks, err := storagedir.ListDisks()
	if err != nil {
		Error(w, "failed to list disks", err)
		return
	}
	Success(w, disks)
}

// Browse walks the path segments after the storage id through the
// dimensions of the requesting client's binding for that storage
// (?clientId), or through browse.DefaultOptions when there is no such
// binding, returning a folder or photo page (spec §5).
func (d *Deps) Browse(w http.ResponseWriter, r *http.Request) {
	storageID := chi.URLParam(r, "storageID")

	rest := chi.URLParam(r, "*")
	var segments []string
	if rest != "" {
		segments = strings.Split(strings.Trim(rest, "/"), "/")
	}
	for _, segment := range segments {
		if strings.Contains(segment, "..") {
			Error(w, "invalid browse path", apperr.Newf(apperr.KindInvalidInput, "httpapi.Browse", "path segment %q not allowed", segment))
			return
		}
	}

	opts := browse.DefaultOptions()
	if clientID := r.URL.Query().Get("clientId"); clientID != "" {
		if parsed, err := uuid.Parse(clientID); err == nil {
			if storageUUID, err := uuid.Parse(storageID); err == nil {
				if binding, err := d.Bindings.Get(r.Context(), parsed, storageUUID); err == nil {
					opts = binding.BrowseOptions
				}
			}
		}
	}

	pageSize := defaultPageSize
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			pageSize = n
		}
	}

	var cursor *browse.Cursor
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		decoded, err := browse.DecodeCursor(raw)
		if err != nil {
			Error(w, "invalid cursor", err)
			return
		}
		cursor = &decoded
	}

	resp, err := d.Browse.Browse(r.Context(), storageID, segments, opts, pageSize, cursor)
	if err != nil {
		Error(w, "browse failed", err)
		return
	}
	Success(w, resp)
}

// UpsertClientBinding records which storage location a client is
// currently browsing and under which BrowseOptions.
func (d *Deps) UpsertClientBinding(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(chi.URLParam(r, "clientID"))
	if err != nil {
		Error(w, "invalid client id", apperr.New(apperr.KindInvalidInput, "httpapi.UpsertClientBinding", err))
		return
	}
	storageID, err := uuid.Parse(chi.URLParam(r, "storageID"))
	if err != nil {
		Error(w, "invalid storage id", apperr.New(apperr.KindInvalidInput, "httpapi.UpsertClientBinding", err))
		return
	}

	var opts browse.Options
	if err := decodeJSON(r, &opts); err != nil {
		Error(w, "invalid request body", err)
		return
	}

	binding := catalog.ClientBinding{ClientID: clientID, StorageID: storageID, BrowseOptions: opts}
	if err := d.Bindings.Upsert(r.Context(), binding); err != nil {
		Error(w, "failed to save client binding", err)
		return
	}
	Success(w, binding)
}

// DeleteClientBinding removes a client's binding to a storage
// location.
func (d *Deps) DeleteClientBinding(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(chi.URLParam(r, "clientID"))
	if err != nil {
		Error(w, "invalid client id", apperr.New(apperr.KindInvalidInput, "httpapi.DeleteClientBinding", err))
		return
	}
	storageID, err := uuid.Parse(chi.URLParam(r, "storageID"))
	if err != nil {
		Error(w, "invalid storage id", apperr.New(apperr.KindInvalidInput, "httpapi.DeleteClientBinding", err))
		return
	}
	if err := d.Bindings.Delete(r.Context(), clientID, storageID); err != nil {
		Error(w, "failed to delete client binding", err)
		return
	}
	Success(w, map[string]string{"status": "deleted"})
}

// maxUploadBytes bounds the in-memory part of a parsed multipart
// form; the file itself still streams to disk via multipart.Stage.
const maxUploadBytes = 32 << 20

// Ingest stages an uploaded file into the storage location's staging
// directory and enqueues it for the ingest pipeline to categorize,
// render renditions for, and persist (spec §4.4).
func (d *Deps) Ingest(w http.ResponseWriter, r *http.Request) {
	storageID := chi.URLParam(r, "storageID")
	storageUUID, err := uuid.Parse(storageID)
	if err != nil {
		Error(w, "invalid storage id", apperr.New(apperr.KindInvalidInput, "httpapi.Ingest", err))
		return
	}

	locations, err := d.Locations.List(r.Context())
	if err != nil {
		Error(w, "failed to resolve storage location", err)
		return
	}
	var root, categoryTemplate string
	found := false
	for _, loc := range locations {
		if loc.ID == storageUUID {
			root = loc.Path
			categoryTemplate = loc.CategoryPolicy
			found = true
			break
		}
	}
	if !found {
		Error(w, "storage location not found", apperr.Newf(apperr.KindNotFound, "httpapi.Ingest", "storage location %s not found", storageID))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		Error(w, "invalid multipart upload", apperr.New(apperr.KindInvalidInput, "httpapi.Ingest", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		Error(w, "missing file part", apperr.New(apperr.KindInvalidInput, "httpapi.Ingest", err))
		return
	}
	defer file.Close()

	staged, err := multipart.Stage(file, header, filepath.Join(root, stagingSubdir))
	if err != nil {
		Error(w, "failed to stage upload", err)
		return
	}

	compiled, err := template.Compile(categoryTemplate)
	if err != nil {
		Error(w, "invalid storage location category template", err)
		return
	}

	req := pipeline.IngestRequest{
		SourcePath:  staged.Path,
		StorageID:   storageID,
		StorageRoot: root,
		Template:    compiled,
	}

	task := pipeline.Task{
		Name: "ingest:" + staged.Path,
		Run: func(ctx context.Context) error {
			_, err := d.Pipeline.Run(ctx, req)
			return err
		},
	}
	if err := d.Runner.Enqueue(task); err != nil {
		Error(w, "failed to enqueue ingest job", err)
		return
	}

	Created(w, map[string]any{
		"path":        staged.Path,
		"size":        staged.Size,
		"contentType": staged.ContentType,
		"status":      "queued",
	})
}
