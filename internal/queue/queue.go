// Package queue provides background render processing using Asynq.
// It supports reliable task queueing with retry logic and persistence.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"reelsmith/log"
)

// Task type names
const (
	TypeRenderTask = "render:process"
	TypeBatchTask  = "render:batch"
)

// RenderTaskPayload contains the data for a single render task.
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

// BatchTaskPayload contains the data for a batch generation task.
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

// QueueConfig holds Redis configuration for Asynq
type QueueConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
}

// Queue manages task enqueueing and processing
type Queue struct {
	client *asynq.Client
	server *asynq.Server
	config QueueConfig
}

// DefaultConfig returns default queue configuration
func DefaultConfig() QueueConfig {
	return QueueConfig{
		RedisAddr:   "localhost:6379",
		RedisDB:     0,
		Concurrency: 3,
	}
}

// NewQueue creates a new Queue instance
func NewQueue(cfg QueueConfig) *Queue {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
				// Exponential backoff: 10s, 20s, 40s, 80s, ...
				return time.Duration(10<<uint(n)) * time.Second
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.GetLogger().Error("Task failed",
					zap.String("type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err))
			}),
		},
	)

	return &Queue{
		client: client,
		server: server,
		config: cfg,
	}
}

// EnqueueRenderTask adds a single render task to the queue.
func (q *Queue) EnqueueRenderTask(payload RenderTaskPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeRenderTask, data,
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Minute),
		asynq.Queue("default"),
	)

	info, err := q.client.Enqueue(task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.GetLogger().Info("Render task enqueued",
		zap.String("task_id", payload.TaskID),
		zap.String("queue_id", info.ID),
		zap.String("queue", info.Queue))

	return nil
}

// EnqueueBatchTask adds a batch generation task to the queue. Batches hold
// a worker for longer, so they run on the low-priority queue.
func (q *Queue) EnqueueBatchTask(payload BatchTaskPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeBatchTask, data,
		asynq.MaxRetry(2),
		asynq.Timeout(2*time.Hour),
		asynq.Queue("low"),
	)

	info, err := q.client.Enqueue(task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.GetLogger().Info("Batch task enqueued",
		zap.String("user_id", payload.UserID),
		zap.String("queue_id", info.ID))

	return nil
}

// Close gracefully shuts down the queue
func (q *Queue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	q.server.Shutdown()
	return nil
}

// Client returns the underlying Asynq client for advanced usage
func (q *Queue) Client() *asynq.Client {
	return q.client
}

// Server returns the underlying Asynq server for advanced usage
func (q *Queue) Server() *asynq.Server {
	return q.server
}
