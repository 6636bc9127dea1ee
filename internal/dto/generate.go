package dto

// GenerateBatchReq asks for count fresh videos from the clip bank.
type GenerateBatchReq struct {
	UserId    string `json:"user_id" binding:"required"`
	AccountId string `json:"account_id" binding:"required"`
	Niche     string `json:"niche"`
	Keyword   string `json:"keyword"`
	Topic     string `json:"topic"`
	Count     int    `json:"count" binding:"required,min=1"`
	Plan      string `json:"plan"`

	// AllowRepeats disables the never-repeat ledger filter.
	AllowRepeats bool `json:"allow_repeats"`
	// Seed plus Index give deterministic paging through the shuffled
	// pool. Nil Seed means fresh randomness.
	Seed  *int64 `json:"seed"`
	Index int    `json:"index"`
}

// GeneratedItem is one batch entry. Failed items carry Error and leave the
// rest of the batch unaffected.
type GeneratedItem struct {
	TaskId       string `json:"task_id,omitempty"`
	SourceKey    string `json:"source_key,omitempty"`
	Fingerprint  string `json:"fingerprint,omitempty"`
	Caption      string `json:"caption,omitempty"`
	PromptSource string `json:"prompt_source,omitempty"`
	Error        string `json:"error,omitempty"`
}

type GenerateBatchResData struct {
	BatchId string          `json:"batch_id"`
	Items   []GeneratedItem `json:"items"`
}

type GenerateBatchRes struct {
	Error int32                 `json:"error"`
	Msg   string                `json:"msg"`
	Data  *GenerateBatchResData `json:"data"`
}

// RegenerateReq replaces a single batch item, excluding fingerprints the
// caller already holds.
type RegenerateReq struct {
	UserId    string `json:"user_id" binding:"required"`
	AccountId string `json:"account_id" binding:"required"`
	Niche     string `json:"niche"`
	Keyword   string `json:"keyword"`
	Topic     string `json:"topic"`
	Plan      string `json:"plan"`

	Exclude      []string `json:"exclude"`
	AllowRepeats bool     `json:"allow_repeats"`
	Seed         *int64   `json:"seed"`
	Index        int      `json:"index"`
}

type RegenerateResData struct {
	Item GeneratedItem `json:"item"`
}

type RegenerateRes struct {
	Error int32              `json:"error"`
	Msg   string             `json:"msg"`
	Data  *RegenerateResData `json:"data"`
}
