package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenvault/photovault/internal/apperr"
	"github.com/lumenvault/photovault/internal/pipeline"
)

func TestAsynqRunnerEnqueueRejectsMissingTemplate(t *testing.T) {
	r := pipeline.NewAsynqRunner("127.0.0.1:0")
	defer r.Close()

	err := r.Enqueue(pipeline.IngestRequest{SourcePath: "/tmp/a.jpg", StorageID: "s", StorageRoot: "/tmp"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}
