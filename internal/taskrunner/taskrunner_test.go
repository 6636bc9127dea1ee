package taskrunner

import (
	"testing"

	"reelsmith/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeConfigDefaults(t *testing.T) {
	cfg := normalizeConfig(Config{})
	assert.Equal(t, defaultQueueSize, cfg.QueueSize)
	assert.Equal(t, defaultConcurrency, cfg.Concurrency)

	cfg = normalizeConfig(Config{QueueSize: 7, Concurrency: 4})
	assert.Equal(t, 7, cfg.QueueSize)
	assert.Equal(t, 4, cfg.Concurrency)
}

func TestSubmitValidation(t *testing.T) {
	r := New(&service.Service{}, DefaultConfig())
	defer r.Close()

	err := r.SubmitRenderTask(RenderTaskPayload{TaskID: "t1"})
	assert.Error(t, err)

	err = r.SubmitBatchTask(BatchTaskPayload{UserID: "u1"})
	assert.Error(t, err)

	assert.Equal(t, 0, r.Pending())
}

func TestSubmitAfterClose(t *testing.T) {
	r := New(&service.Service{}, DefaultConfig())
	r.Close()
	// Close is idempotent.
	r.Close()

	err := r.SubmitRenderTask(RenderTaskPayload{TaskID: "t1", SourceKey: "bank/a.mp4"})
	assert.ErrorIs(t, err, ErrRunnerStopped)

	err = r.SubmitBatchTask(BatchTaskPayload{UserID: "u1", Count: 3})
	assert.ErrorIs(t, err, ErrRunnerStopped)
}
