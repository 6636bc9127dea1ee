package dto

import "reelsmith/internal/types"

// StartRenderReq starts a caption-rewrite render for one bank asset.
type StartRenderReq struct {
	UserId    string `json:"user_id" binding:"required"`
	AccountId string `json:"account_id" binding:"required"`
	SourceKey string `json:"source_key" binding:"required"`
	// Caption overrides generated candidates when set.
	Caption string `json:"caption"`
	Topic   string `json:"topic"`
	Hint    string `json:"hint"`
	Niche   string `json:"niche"`
	Plan    string `json:"plan"`
}

type GetRenderTaskReq struct {
	TaskId string `form:"task_id" binding:"required"`
}

type RenderHistoryReq struct {
	UserId string `form:"user_id"`
	Limit  int    `form:"limit"`
}

type StartRenderResData struct {
	TaskId string `json:"task_id"`
}

type StartRenderRes struct {
	Error int32               `json:"error"`
	Msg   string              `json:"msg"`
	Data  *StartRenderResData `json:"data"`
}

type GetRenderTaskResData struct {
	Task *types.RenderTask `json:"task"`
}

type GetRenderTaskRes struct {
	Error int32                 `json:"error"`
	Msg   string                `json:"msg"`
	Data  *GetRenderTaskResData `json:"data"`
}

type RenderHistoryResData struct {
	Tasks []types.RenderTask `json:"tasks"`
}

type RenderHistoryRes struct {
	Error int32                 `json:"error"`
	Msg   string                `json:"msg"`
	Data  *RenderHistoryResData `json:"data"`
}
