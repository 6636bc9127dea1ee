package router

import (
	"os"

	"reelsmith/internal/handler"
	"reelsmith/log"

	"github.com/gin-gonic/gin"
)

func SetupRouter(r *gin.Engine, hdl *handler.Handler) {
	api := r.Group("/api")
	{
		api.POST("/render", hdl.StartRenderTask)
		api.GET("/render", hdl.GetRenderTask)
		api.GET("/render/history", hdl.GetTaskHistory)
		api.DELETE("/render/:taskId", hdl.DeleteTask)
		api.POST("/render/:taskId/retry", hdl.RetryTask)

		api.POST("/generate", hdl.GenerateBatch)
		api.POST("/generate/regenerate", hdl.RegenerateItem)
		api.GET("/generate/batch/:batchId", hdl.GetBatch)

		api.GET("/assets", hdl.ListAssets)
	}

	if _, err := os.Stat("static"); err == nil {
		log.GetLogger().Info("Using local static directory")
		r.Static("/static", "static")
	}
}
