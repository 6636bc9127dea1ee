package dto

import "reelsmith/internal/types"

// ListAssetsReq filters the clip bank listing. When UserId and AccountId
// are present each item reports whether that pair already used it.
type ListAssetsReq struct {
	Niche     string `form:"niche"`
	Keyword   string `form:"keyword"`
	UserId    string `form:"user_id"`
	AccountId string `form:"account_id"`
}

// AssetItem is a bank object plus its dedup fingerprint.
type AssetItem struct {
	types.Asset
	Fingerprint string `json:"fingerprint"`
	Used        bool   `json:"used"`
}

type ListAssetsResData struct {
	Assets []AssetItem `json:"assets"`
}

type ListAssetsRes struct {
	Error int32              `json:"error"`
	Msg   string             `json:"msg"`
	Data  *ListAssetsResData `json:"data"`
}
