package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/lumenvault/photovault/internal/apperr"
	"github.com/lumenvault/photovault/internal/template"
)

// TypeIngestPhoto is the asynq task type name for an ingest job.
const TypeIngestPhoto = "ingest:photo"

// IngestJobPayload is the durable, JSON-serializable form of an
// IngestRequest. A compiled template can't cross a queue boundary, so
// it's carried as its original source string and recompiled by the
// handler.
type IngestJobPayload struct {
	SourcePath     string `json:"sourcePath"`
	StorageID      string `json:"storageId"`
	StorageRoot    string `json:"storageRoot"`
	TemplateSource string `json:"templateSource"`
}

// AsynqRunner enqueues ingest jobs onto a Redis-backed asynq queue, as
// a durable alternative to Runner's in-process FIFO (spec §4.1
// describes the in-process runner as the default; this exists for a
// deployment that needs ingestion to survive a process restart).
type AsynqRunner struct {
	client *asynq.Client
}

// NewAsynqRunner dials Redis at redisAddr. The caller owns the
// returned client's lifecycle via Close.
func NewAsynqRunner(redisAddr string) *AsynqRunner {
	return &AsynqRunner{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

// Close releases the underlying Redis client.
func (r *AsynqRunner) Close() error {
	return r.client.Close()
}

// Enqueue submits req as a durable asynq task.
func (r *AsynqRunner) Enqueue(req IngestRequest) error {
	if req.Template == nil {
		return apperr.Newf(apperr.KindInvalidInput, "pipeline.AsynqRunner.Enqueue", "request has no compiled template")
	}

	payload, err := json.Marshal(IngestJobPayload{
		SourcePath:     req.SourcePath,
		StorageID:      req.StorageID,
		StorageRoot:    req.StorageRoot,
		TemplateSource: req.Template.Source(),
	})
	if err != nil {
		return apperr.New(apperr.KindInternal, "pipeline.AsynqRunner.Enqueue", err)
	}

	if _, err := r.client.Enqueue(asynq.NewTask(TypeIngestPhoto, payload)); err != nil {
		return apperr.New(apperr.KindInternal, "pipeline.AsynqRunner.Enqueue", err)
	}
	return nil
}

// IngestTaskHandler adapts an IngestPipeline into an asynq handler, so
// the same pipeline that the in-process Runner drives can also serve
// as an asynq worker's task handler.
func IngestTaskHandler(pipeline *IngestPipeline) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload IngestJobPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal ingest payload: %w", err)
		}

		compiled, err := template.Compile(payload.TemplateSource)
		if err != nil {
			return fmt.Errorf("compile template: %w", err)
		}

		_, err = pipeline.Run(ctx, IngestRequest{
			SourcePath:  payload.SourcePath,
			StorageID:   payload.StorageID,
			StorageRoot: payload.StorageRoot,
			Template:    compiled,
		})
		return err
	}
}
