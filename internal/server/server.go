package server

import (
	"errors"
	"fmt"

	"reelsmith/config"
	"reelsmith/internal/handler"
	"reelsmith/internal/queue"
	"reelsmith/internal/router"
	"reelsmith/internal/service"
	"reelsmith/internal/taskrunner"
	"reelsmith/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StartBackend builds the service, picks the job backend and serves the
// HTTP API. It blocks until the server exits.
func StartBackend() error {
	svc := service.NewService()
	if svc == nil {
		return errors.New("service initialization failed, check the log for details")
	}

	cfg := config.Conf

	if cfg.Queue.RedisAddr != "" {
		q := queue.NewQueue(queue.QueueConfig{
			RedisAddr:     cfg.Queue.RedisAddr,
			RedisPassword: cfg.Queue.RedisPassword,
			Concurrency:   cfg.Queue.Concurrency,
		})
		defer q.Close()

		svc.SetDispatcher(func(job service.RenderJob) error {
			return q.EnqueueRenderTask(queue.RenderTaskPayload{
				TaskID:      job.TaskId,
				UserID:      job.UserId,
				AccountID:   job.AccountId,
				SourceKey:   job.SourceKey,
				Fingerprint: job.Fingerprint,
				Caption:     job.Caption,
				Topic:       job.Topic,
				Hint:        job.Hint,
				Niche:       job.Niche,
				Plan:        job.Plan,
			})
		})

		go func() {
			if err := queue.StartWorker(q, svc); err != nil {
				log.GetLogger().Error("Queue worker exited", zap.Error(err))
			}
		}()
		log.GetLogger().Info("Using Redis-backed job queue", zap.String("addr", cfg.Queue.RedisAddr))
	} else {
		runner := taskrunner.New(svc, taskrunner.Config{
			Concurrency: cfg.Queue.Concurrency,
		})
		defer runner.Close()

		svc.SetDispatcher(func(job service.RenderJob) error {
			return runner.SubmitRenderTask(taskrunner.RenderTaskPayload{
				TaskID:      job.TaskId,
				UserID:      job.UserId,
				AccountID:   job.AccountId,
				SourceKey:   job.SourceKey,
				Fingerprint: job.Fingerprint,
				Caption:     job.Caption,
				Topic:       job.Topic,
				Hint:        job.Hint,
				Niche:       job.Niche,
				Plan:        job.Plan,
			})
		})
		log.GetLogger().Info("Using in-process task runner", zap.Int("concurrency", cfg.Queue.Concurrency))
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.Default()
	router.SetupRouter(engine, handler.NewHandlerWithService(svc))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.GetLogger().Info("Server starting", zap.String("addr", addr))
	return engine.Run(addr)
}
