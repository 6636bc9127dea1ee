package main

import (
	"os"

	"go.uber.org/zap"

	"reelsmith/config"
	"reelsmith/internal/deps"
	"reelsmith/internal/server"
	"reelsmith/internal/storage"
	"reelsmith/log"
)

func main() {
	if handled, exitCode := handleCLIFlags(); handled {
		os.Exit(exitCode)
	}

	log.InitLogger()
	defer log.GetLogger().Sync()

	created, err := config.LoadOrCreateConfig()
	if err != nil {
		log.GetLogger().Error("Failed to load config", zap.Error(err))
		return
	}
	if created {
		path, _ := config.ResolveConfigPath()
		log.GetLogger().Info("Wrote default config", zap.String("path", path))
	}

	storage.InitDB()

	// Mark any stale "running" tasks as "failed" (zombie cleanup)
	if count, err := storage.MarkStaleTasks(); err != nil {
		log.GetLogger().Warn("Failed to mark stale tasks", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("Marked stale tasks as failed", zap.Int64("count", count))
	}

	if err = deps.CheckDependency(config.Conf.Ocr.Backend); err != nil {
		log.GetLogger().Error("Dependency check failed", zap.Error(err))
		return
	}

	if err = server.StartBackend(); err != nil {
		log.GetLogger().Error("Backend server failed", zap.Error(err))
		os.Exit(1)
	}
}
