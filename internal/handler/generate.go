package handler

import (
	"reelsmith/internal/dto"
	"reelsmith/internal/response"
	"reelsmith/log"
	apperrors "reelsmith/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h Handler) GenerateBatch(c *gin.Context) {
	var req dto.GenerateBatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("GenerateBatch ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	log.GetLogger().Info("GenerateBatch received request",
		zap.String("user_id", req.UserId),
		zap.String("account_id", req.AccountId),
		zap.Int("count", req.Count))

	data, err := h.Service.GenerateBatch(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) RegenerateItem(c *gin.Context) {
	var req dto.RegenerateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("RegenerateItem ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	data, err := h.Service.RegenerateItem(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) ListAssets(c *gin.Context) {
	var req dto.ListAssetsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	data, err := h.Service.ListAssets(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}
