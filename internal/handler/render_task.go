package handler

import (
	"reelsmith/internal/dto"
	"reelsmith/internal/response"
	"reelsmith/internal/storage"
	"reelsmith/log"
	apperrors "reelsmith/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h Handler) StartRenderTask(c *gin.Context) {
	var req dto.StartRenderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("StartRenderTask ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	log.GetLogger().Info("StartRenderTask received request", zap.Any("req", req))

	data, err := h.Service.StartRenderTask(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) GetRenderTask(c *gin.Context) {
	var req dto.GetRenderTaskReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	data, err := h.Service.GetTaskStatus(req.TaskId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) GetTaskHistory(c *gin.Context) {
	var req dto.RenderHistoryReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	tasks, err := storage.GetTaskHistory(req.UserId, limit)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "Failed to load history", err))
		return
	}
	response.Success(c, dto.RenderHistoryResData{Tasks: tasks})
}

func (h Handler) GetBatch(c *gin.Context) {
	batchId := c.Param("batchId")
	if batchId == "" {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "batchId is required"))
		return
	}

	tasks, err := storage.GetBatchTasks(batchId)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "Failed to load batch", err))
		return
	}
	response.Success(c, dto.RenderHistoryResData{Tasks: tasks})
}

// RetryTask re-submits a failed task. Finished tasks may also be retried to
// regenerate the caption.
func (h Handler) RetryTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "taskId is required"))
		return
	}

	data, err := h.Service.RetryRender(taskId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) DeleteTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "taskId is required"))
		return
	}

	if err := storage.DeleteTask(taskId); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "Failed to delete task", err))
		return
	}
	response.Success(c, nil)
}
