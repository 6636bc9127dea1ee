package types

import "time"

// Render task status values.
const (
	StatusPending = 0
	StatusRunning = 1
	StatusDone    = 2
	StatusFailed  = 3
)

// Plan tiers. Free-tier renders carry the watermark.
const (
	PlanFree      = "free"
	PlanTrial     = "trial"
	PlanStarter   = "starter"
	PlanUnlimited = "unlimited"
)

// WatermarkForPlan reports whether output for the given plan gets the
// watermark overlay. Unknown plans are treated as free.
func WatermarkForPlan(plan string) bool {
	return plan != PlanUnlimited
}

// RenderTask is one caption-rewrite job persisted across restarts.
type RenderTask struct {
	Id         uint   `gorm:"primaryKey" json:"-"`
	TaskId     string `gorm:"uniqueIndex;size:64" json:"taskId"`
	UserId     string `gorm:"index;size:64" json:"userId"`
	AccountId  string `gorm:"index;size:64" json:"accountId"`
	BatchId    string `gorm:"index;size:64" json:"batchId,omitempty"`
	Status     int    `json:"status"`
	StatusMsg  string `json:"statusMsg"`
	FailReason string `json:"failReason,omitempty"`

	SourceKey    string `json:"sourceKey"`
	Fingerprint  string `gorm:"size:128" json:"fingerprint"`
	Niche        string `json:"niche,omitempty"`
	CaptionText  string `json:"captionText"`
	PromptSource string `json:"promptSource"` // "llm" or "fallback"
	Plan         string `json:"plan"`
	Watermarked  bool   `json:"watermarked"`

	OutputPath    string `json:"outputPath,omitempty"`
	OutputKey     string `json:"outputKey,omitempty"`
	ThumbnailPath string `json:"thumbnailPath,omitempty"`
	ThumbnailKey  string `json:"thumbnailKey,omitempty"`

	CreateTime time.Time `gorm:"autoCreateTime" json:"createTime"`
	UpdateTime time.Time `gorm:"autoUpdateTime" json:"updateTime"`
}

// UsageRecord is one row of the never-repeat ledger. The unique index on
// (user_id, account_id, fingerprint) is what makes concurrent marking safe.
type UsageRecord struct {
	Id          uint   `gorm:"primaryKey" json:"-"`
	UserId      string `gorm:"uniqueIndex:idx_usage_owner_fp;size:64" json:"userId"`
	AccountId   string `gorm:"uniqueIndex:idx_usage_owner_fp;size:64" json:"accountId"`
	Fingerprint string `gorm:"uniqueIndex:idx_usage_owner_fp;size:128" json:"fingerprint"`
	SourceKey   string `json:"sourceKey"`
	Niche       string `json:"niche,omitempty"`

	CreateTime time.Time `gorm:"autoCreateTime" json:"createTime"`
}
