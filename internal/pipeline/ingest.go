package pipeline

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lumenvault/photovault/internal/apperr"
	"github.com/lumenvault/photovault/internal/categorizer"
	"github.com/lumenvault/photovault/internal/exif"
	"github.com/lumenvault/photovault/internal/fileservice"
	"github.com/lumenvault/photovault/internal/hash"
	"github.com/lumenvault/photovault/internal/imaging"
	"github.com/lumenvault/photovault/internal/propmap"
	"github.com/lumenvault/photovault/internal/raw"
	"github.com/lumenvault/photovault/internal/template"
)

// IngestRequest describes one file dropped into a storage location's
// staging area, ready for the pipeline to process (spec §4.4).
type IngestRequest struct {
	SourcePath  string
	StorageID   string
	StorageRoot string
	Template    *template.Compiled
}

// PersistedPhoto is what PersistMetadataStep hands to the catalog.
// The storage layer owns primary-key assignment and the
// (hash, storage_id) uniqueness constraint (spec §5).
type PersistedPhoto struct {
	StorageID       string
	Hash            string
	PerceptualHash  string
	SizeBytes       int64
	RelativePath    string
	ThumbnailPath   string
	PreviewPath     string
	EffectiveDate   time.Time
	Exif            exif.Record
	Format          string
	IsRAW           bool
	Width           int
	Height          int
	ThumbnailWidth  int
	ThumbnailHeight int
}

// PhotoStore is the persistence contract the catalog package
// satisfies. A conflict on (hash, storage_id) must be reported with
// apperr.KindConflict; the pipeline treats that as a successful,
// idempotent ingest rather than a failure (spec §4.4 edge cases).
type PhotoStore interface {
	Insert(ctx context.Context, photo PersistedPhoto) error
}

// ImageProcessContext threads state between ingest steps: the file
// under process, its derived property map, and the artifacts each
// step produces.
type ImageProcessContext struct {
	Request IngestRequest
	Props   *propmap.Map

	data []byte

	Hash          string
	SizeBytes     int64
	Exif          exif.Record
	EffectiveDate time.Time

	Format          string
	IsRAW           bool
	Width           int
	Height          int
	ThumbnailWidth  int
	ThumbnailHeight int

	ThumbnailBytes []byte
	PreviewBytes   []byte
	PerceptualHash string

	Categorized   categorizer.Result
	ThumbnailPath string
	PreviewPath   string
}

func newImageProcessContext(req IngestRequest) *ImageProcessContext {
	m := propmap.New()
	propmap.Insert(m, filepath.Base(req.SourcePath)).Alias(template.AliasFileName)
	return &ImageProcessContext{Request: req, Props: m}
}

func (pc *ImageProcessContext) bytes() ([]byte, error) {
	if pc.data != nil {
		return pc.data, nil
	}
	data, err := os.ReadFile(pc.Request.SourcePath)
	if err != nil {
		return nil, apperr.New(apperr.KindIO, "pipeline.ImageProcessContext.bytes", err)
	}
	pc.data = data
	return data, nil
}

// Step is one stage of the ingest pipeline.
type Step interface {
	Name() string
	Run(ctx context.Context, pc *ImageProcessContext) error
}

type stepFunc struct {
	name string
	run  func(ctx context.Context, pc *ImageProcessContext) error
}

func (s stepFunc) Name() string { return s.name }
func (s stepFunc) Run(ctx context.Context, pc *ImageProcessContext) error {
	return s.run(ctx, pc)
}

// ExtractExifStep reads EXIF metadata and derives the effective
// capture date, falling back to the source file's modification time
// when no EXIF timestamp is present.
var ExtractExifStep Step = stepFunc{"extract_exif", func(ctx context.Context, pc *ImageProcessContext) error {
	info, err := os.Stat(pc.Request.SourcePath)
	if err != nil {
		return apperr.New(apperr.KindIO, "pipeline.ExtractExifStep", err)
	}

	data, err := pc.bytes()
	if err != nil {
		return err
	}
	rec, err := exif.Extract(data)
	if err != nil {
		return err
	}

	pc.Exif = rec
	pc.EffectiveDate = rec.EffectiveDate(info.ModTime())

	propmap.Insert(pc.Props, pc.EffectiveDate).Alias(template.AliasEffectiveDate)
	if camera := strings.TrimSpace(rec.CameraMake + " " + rec.CameraModel); camera != "" {
		propmap.Insert(pc.Props, camera).Alias(template.AliasCamera)
	}
	return nil
}}

// orientationSwapsDimensions reports whether EXIF orientation implies
// a 90-degree rotation for display, in which case the persisted
// width/height must be the sensor's height/width swapped (spec §4.9).
func orientationSwapsDimensions(orientation int) bool {
	switch orientation {
	case 5, 6, 7, 8:
		return true
	default:
		return false
	}
}

// decodedDimensions returns the source's actual decoded pixel
// dimensions, before any orientation correction: the embedded JPEG
// preview's dimensions for a RAW file with one, a full LibRaw decode's
// bounds otherwise, or a header-only size read for a standard file.
func decodedDimensions(pc *ImageProcessContext) (int, int, error) {
	if raw.IsRAW(pc.Request.SourcePath) {
		if preview, err := raw.EmbeddedPreviewBytes(pc.Request.SourcePath); err == nil {
			return imaging.Dimensions(preview)
		}
		img, err := raw.Decode(pc.Request.SourcePath, raw.StrategyFullRender)
		if err != nil {
			return 0, 0, err
		}
		bounds := img.Bounds()
		return bounds.Dx(), bounds.Dy(), nil
	}

	data, err := pc.bytes()
	if err != nil {
		return 0, 0, err
	}
	return imaging.Dimensions(data)
}

// DetectAttributesStep records the source's format, RAW-ness, and
// display-orientation-corrected dimensions (spec §3, §4.9). It must
// run after ExtractExifStep, which supplies the orientation tag.
var DetectAttributesStep Step = stepFunc{"detect_attributes", func(ctx context.Context, pc *ImageProcessContext) error {
	pc.Format = strings.ToLower(strings.TrimPrefix(filepath.Ext(pc.Request.SourcePath), "."))
	pc.IsRAW = raw.IsRAW(pc.Request.SourcePath)

	width, height, err := decodedDimensions(pc)
	if err != nil {
		return err
	}
	if orientationSwapsDimensions(pc.Exif.Orientation) {
		width, height = height, width
	}
	pc.Width = width
	pc.Height = height
	return nil
}}

// ComputeHashStep fingerprints the source file and records the hash
// on both the context and the property map, so templates can use
// {hash} segments.
var ComputeHashStep Step = stepFunc{"compute_hash", func(ctx context.Context, pc *ImageProcessContext) error {
	digest, size, err := hash.FingerprintFile(pc.Request.SourcePath)
	if err != nil {
		return err
	}
	pc.Hash = digest
	pc.SizeBytes = size
	propmap.Insert(pc.Props, digest).Alias(template.AliasHash)
	return nil
}}

// GenerateThumbnailStep renders the ThumbnailMaxBorder rendition.
var GenerateThumbnailStep Step = stepFunc{"generate_thumbnail", func(ctx context.Context, pc *ImageProcessContext) error {
	out, err := renderRendition(pc, imaging.ThumbnailFromBytes, imaging.ThumbnailFromRAWPreviewBytes, imaging.ThumbnailFromImage)
	if err != nil {
		return err
	}
	pc.ThumbnailBytes = out

	if width, height, err := imaging.Dimensions(out); err == nil {
		pc.ThumbnailWidth = width
		pc.ThumbnailHeight = height
	}
	return nil
}}

// GeneratePreviewStep renders the PreviewMaxBorder rendition. Every
// code path in renderRendition encodes the preview as JPEG, so it
// doubles as the opportunistic perceptual-hash source: a dedup signal
// computed alongside the content hash, stored if it succeeds, dropped
// silently if it doesn't (spec doesn't require it for any invariant).
var GeneratePreviewStep Step = stepFunc{"generate_preview", func(ctx context.Context, pc *ImageProcessContext) error {
	out, err := renderRendition(pc, imaging.PreviewFromBytes, imaging.PreviewFromRAWPreviewBytes, imaging.PreviewFromImage)
	if err != nil {
		return err
	}
	pc.PreviewBytes = out

	if phash, err := hash.PerceptualHashFromBytes(out); err == nil {
		pc.PerceptualHash = phash
	}
	return nil
}}

// renderRendition picks one of three decode paths depending on the
// source: a standard (non-RAW) file is handed to the libvips-backed
// byte path directly; a RAW file with a usable embedded JPEG preview
// is resized straight from those encoded bytes via the vips thumbnail
// operator, avoiding a stdlib JPEG decode; a RAW file with no usable
// embedded preview falls back to a full LibRaw decode producing an
// image.Image.
func renderRendition(pc *ImageProcessContext, fromBytes func([]byte) ([]byte, error), fromRAWPreviewBytes func([]byte) ([]byte, error), fromImage func(image.Image) ([]byte, error)) ([]byte, error) {
	if raw.IsRAW(pc.Request.SourcePath) {
		if preview, err := raw.EmbeddedPreviewBytes(pc.Request.SourcePath); err == nil {
			return fromRAWPreviewBytes(preview)
		}

		img, err := raw.Decode(pc.Request.SourcePath, raw.StrategyFullRender)
		if err != nil {
			return nil, err
		}
		return fromImage(img)
	}

	data, err := pc.bytes()
	if err != nil {
		return nil, err
	}
	return fromBytes(data)
}

// CategorizeAndMoveStep renders the storage location's template
// against the property map, moves the source file into place, and
// writes the thumbnail and preview bytes to their hash-sharded paths
// under the storage root.
var CategorizeAndMoveStep Step = stepFunc{"categorize_and_move", func(ctx context.Context, pc *ImageProcessContext) error {
	result, err := categorizer.Categorize(pc.Request.StorageRoot, pc.Request.Template, pc.Props)
	if err != nil {
		return err
	}
	if err := fileservice.New().Move(pc.Request.SourcePath, result.AbsolutePath); err != nil {
		return err
	}
	pc.Categorized = result

	h0, h1 := fileservice.HashSegments(pc.Hash)
	pc.ThumbnailPath = filepath.ToSlash(filepath.Join(".thumbnails", h0, h1, pc.Hash+".webp"))
	pc.PreviewPath = filepath.ToSlash(filepath.Join(".previews", h0, h1, pc.Hash+".jpg"))

	for rel, data := range map[string][]byte{pc.ThumbnailPath: pc.ThumbnailBytes, pc.PreviewPath: pc.PreviewBytes} {
		dest := filepath.Join(pc.Request.StorageRoot, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return apperr.New(apperr.KindIO, "pipeline.CategorizeAndMoveStep", err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return apperr.New(apperr.KindIO, "pipeline.CategorizeAndMoveStep", err)
		}
	}
	return nil
}}

// PersistMetadataStep writes the final Photo row. A conflict on
// (hash, storage_id) is swallowed: the file was already ingested once
// before, and re-running the pipeline over it must be idempotent.
func PersistMetadataStep(store PhotoStore) Step {
	return stepFunc{"persist_metadata", func(ctx context.Context, pc *ImageProcessContext) error {
		photo := PersistedPhoto{
			StorageID:       pc.Request.StorageID,
			Hash:            pc.Hash,
			PerceptualHash:  pc.PerceptualHash,
			SizeBytes:       pc.SizeBytes,
			RelativePath:    pc.Categorized.RelativePath,
			ThumbnailPath:   pc.ThumbnailPath,
			PreviewPath:     pc.PreviewPath,
			EffectiveDate:   pc.EffectiveDate,
			Exif:            pc.Exif,
			Format:          pc.Format,
			IsRAW:           pc.IsRAW,
			Width:           pc.Width,
			Height:          pc.Height,
			ThumbnailWidth:  pc.ThumbnailWidth,
			ThumbnailHeight: pc.ThumbnailHeight,
		}
		err := store.Insert(ctx, photo)
		if err != nil && apperr.Is(err, apperr.KindConflict) {
			return nil
		}
		return err
	}}
}

// IngestPipeline runs every step over a request in order, stopping at
// the first failure. Partial artifacts (a moved file, written
// thumbnail) from a failed run are left in place for an operator to
// inspect rather than rolled back (spec §4.4 error policy).
type IngestPipeline struct {
	steps []Step
}

// NewIngestPipeline builds the standard ingest pipeline backed by
// store for the final persistence step.
func NewIngestPipeline(store PhotoStore) *IngestPipeline {
	return &IngestPipeline{steps: []Step{
		ExtractExifStep,
		DetectAttributesStep,
		ComputeHashStep,
		GenerateThumbnailStep,
		GeneratePreviewStep,
		CategorizeAndMoveStep,
		PersistMetadataStep(store),
	}}
}

// Run executes the pipeline for req.
func (p *IngestPipeline) Run(ctx context.Context, req IngestRequest) (*ImageProcessContext, error) {
	pc := newImageProcessContext(req)
	for _, step := range p.steps {
		if err := step.Run(ctx, pc); err != nil {
			return pc, apperr.New(apperr.KindOf(err), "pipeline.IngestPipeline.Run:"+step.Name(), err)
		}
	}
	return pc, nil
}
