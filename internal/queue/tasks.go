// Package queue provides task handlers for Asynq background processing.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"reelsmith/internal/dto"
	"reelsmith/internal/service"
	"reelsmith/log"
)

// TaskHandlers provides handlers for different task types
type TaskHandlers struct {
	service *service.Service
}

// NewTaskHandlers creates a new TaskHandlers instance
func NewTaskHandlers(svc *service.Service) *TaskHandlers {
	return &TaskHandlers{service: svc}
}

// HandleRenderTask processes a single render task.
func (h *TaskHandlers) HandleRenderTask(ctx context.Context, t *asynq.Task) error {
	var payload RenderTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing render task",
		zap.String("task_id", payload.TaskID),
		zap.String("source_key", payload.SourceKey))

	err := h.service.RunRenderJob(service.RenderJob{
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
	if err != nil {
		// RunRenderJob already marks the task failed; returning the error
		// lets asynq apply its retry policy.
		return err
	}

	log.GetLogger().Info("[Queue] Render task completed",
		zap.String("task_id", payload.TaskID))

	return nil
}

// HandleBatchTask processes a batch generation task.
func (h *TaskHandlers) HandleBatchTask(ctx context.Context, t *asynq.Task) error {
	var payload BatchTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing batch task",
		zap.String("user_id", payload.UserID),
		zap.Int("count", payload.Count))

	data, err := h.service.GenerateBatch(dto.GenerateBatchReq{
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
	if err != nil {
		return err
	}

	log.GetLogger().Info("[Queue] Batch task completed",
		zap.String("batch_id", data.BatchId),
		zap.Int("items", len(data.Items)))

	return nil
}

// RegisterHandlers registers all task handlers with the Asynq server mux
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeRenderTask, h.HandleRenderTask)
	mux.HandleFunc(TypeBatchTask, h.HandleBatchTask)
}

// StartWorker starts the Asynq worker with registered handlers
func StartWorker(q *Queue, svc *service.Service) error {
	handlers := NewTaskHandlers(svc)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Run(mux)
}
