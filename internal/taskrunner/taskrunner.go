// Package taskrunner executes render jobs with an in-memory worker pool.
// It is the fallback path when no Redis-backed queue is configured.
package taskrunner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"reelsmith/internal/dto"
	"reelsmith/internal/service"
	"reelsmith/log"
)

const (
	defaultQueueSize   = 128
	defaultConcurrency = 2
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Config controls in-process task runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

// DefaultConfig returns a single-host friendly default config.
func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
	}
}

// RenderTaskPayload contains render task enqueue data.
type RenderTaskPayload struct {
	TaskID      string `json:"task_id"`
	UserID      string `json:"user_id"`
	AccountID   string `json:"account_id"`
	SourceKey   string `json:"source_key"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Caption     string `json:"caption,omitempty"`
	Topic       string `json:"topic,omitempty"`
	Hint        string `json:"hint,omitempty"`
	Niche       string `json:"niche,omitempty"`
	Plan        string `json:"plan,omitempty"`
}

// BatchTaskPayload contains batch generation enqueue data.
type BatchTaskPayload struct {
	UserID       string `json:"user_id"`
	AccountID    string `json:"account_id"`
	Niche        string `json:"niche,omitempty"`
	Keyword      string `json:"keyword,omitempty"`
	Topic        string `json:"topic,omitempty"`
	Count        int    `json:"count"`
	Plan         string `json:"plan,omitempty"`
	AllowRepeats bool   `json:"allow_repeats,omitempty"`
	Seed         *int64 `json:"seed,omitempty"`
	Index        int    `json:"index,omitempty"`
}

type queuedTaskType uint8

const (
	queuedTaskRender queuedTaskType = iota + 1
	queuedTaskBatch
)

type queuedTask struct {
	taskType queuedTaskType
	render   RenderTaskPayload
	batch    BatchTaskPayload
}

// Runner executes queued tasks with in-memory workers.
type Runner struct {
	service *service.Service
	config  Config

	queue  chan queuedTask
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	closed   atomic.Bool
}

// New creates and starts a task runner.
func New(svc *service.Service, cfg Config) *Runner {
	if svc == nil {
		svc = service.NewService()
	}

	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		service: svc,
		config:  cfg,
		queue:   make(chan queuedTask, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < cfg.Concurrency; i++ {
		runner.workerWg.Add(1)
		go runner.worker(i + 1)
	}

	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg
}

// SubmitRenderTask queues a single render job.
func (r *Runner) SubmitRenderTask(payload RenderTaskPayload) error {
	if payload.SourceKey == "" {
		return errors.New("render task source key is required")
	}

	return r.submit(queuedTask{
		taskType: queuedTaskRender,
		render:   payload,
	}, payload.TaskID, "render")
}

// SubmitBatchTask queues a batch generation job.
func (r *Runner) SubmitBatchTask(payload BatchTaskPayload) error {
	if payload.Count <= 0 {
		return errors.New("batch task count is required")
	}

	return r.submit(queuedTask{
		taskType: queuedTaskBatch,
		batch:    payload,
	}, payload.UserID, "batch")
}

func (r *Runner) submit(task queuedTask, taskID, taskType string) error {
	if r.closed.Load() {
		return ErrRunnerStopped
	}

	select {
	case <-r.ctx.Done():
		return ErrRunnerStopped
	case r.queue <- task:
		log.GetLogger().Info("[TaskRunner] task submitted",
			zap.String("task_id", taskID),
			zap.String("task_type", taskType))
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) worker(workerID int) {
	defer r.workerWg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		select {
		case <-r.ctx.Done():
			return
		case task := <-r.queue:
			r.processTask(workerID, task)
		}
	}
}

func (r *Runner) processTask(workerID int, task queuedTask) {
	var err error
	var taskID string
	var taskType string

	switch task.taskType {
	case queuedTaskRender:
		taskID = task.render.TaskID
		taskType = "render"
		err = r.processRenderTask(task.render)
	case queuedTaskBatch:
		taskID = task.batch.UserID
		taskType = "batch"
		err = r.processBatchTask(task.batch)
	default:
		err = fmt.Errorf("unsupported task type: %d", task.taskType)
	}

	if err != nil {
		log.GetLogger().Error("[TaskRunner] task failed",
			zap.Int("worker_id", workerID),
			zap.String("task_id", taskID),
			zap.String("task_type", taskType),
			zap.Error(err))
		return
	}

	log.GetLogger().Info("[TaskRunner] task completed",
		zap.Int("worker_id", workerID),
		zap.String("task_id", taskID),
		zap.String("task_type", taskType))
}

func (r *Runner) processRenderTask(payload RenderTaskPayload) error {
	if r.service == nil {
		return errors.New("service not initialized")
	}

	return r.service.RunRenderJob(service.RenderJob{
		TaskId:      payload.TaskID,
		UserId:      payload.UserID,
		AccountId:   payload.AccountID,
		SourceKey:   payload.SourceKey,
		Fingerprint: payload.Fingerprint,
		Caption:     payload.Caption,
		Topic:       payload.Topic,
		Hint:        payload.Hint,
		Niche:       payload.Niche,
		Plan:        payload.Plan,
	})
}

func (r *Runner) processBatchTask(payload BatchTaskPayload) error {
	if r.service == nil {
		return errors.New("service not initialized")
	}

	_, err := r.service.GenerateBatch(dto.GenerateBatchReq{
		UserId:       payload.UserID,
		AccountId:    payload.AccountID,
		Niche:        payload.Niche,
		Keyword:      payload.Keyword,
		Topic:        payload.Topic,
		Count:        payload.Count,
		Plan:         payload.Plan,
		AllowRepeats: payload.AllowRepeats,
		Seed:         payload.Seed,
		Index:        payload.Index,
	})
	return err
}

// Close stops workers and rejects new tasks.
func (r *Runner) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.cancel()
	r.workerWg.Wait()
}

// Pending returns the number of queued tasks waiting for workers.
func (r *Runner) Pending() int {
	return len(r.queue)
}
