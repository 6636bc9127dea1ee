package service

import (
	"context"
	"sync"

	"reelsmith/internal/dto"
	"reelsmith/internal/selection"
	"reelsmith/internal/storage"
	"reelsmith/internal/types"
	"reelsmith/log"
	apperrors "reelsmith/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const batchRenderConcurrency = 2

// GenerateBatch picks count unused bank assets for the (user, account)
// pair and renders each with a generated caption. Items fail individually;
// one bad asset never takes the batch down.
func (s *Service) GenerateBatch(req dto.GenerateBatchReq) (*dto.GenerateBatchResData, error) {
	count := req.Count
	if count > s.maxBatch {
		count = s.maxBatch
	}

	ctx := context.Background()
	picked, err := s.pickAssets(ctx, pickParams{
		UserId:       req.UserId,
		AccountId:    req.AccountId,
		Niche:        req.Niche,
		Keyword:      req.Keyword,
		AllowRepeats: req.AllowRepeats,
		Seed:         req.Seed,
		Index:        req.Index,
	}, count)
	if err != nil {
		return nil, err
	}

	batchId := uuid.New().String()
	items := make([]dto.GeneratedItem, len(picked))

	var g errgroup.Group
	g.SetLimit(batchRenderConcurrency)
	var mu sync.Mutex

	for i, p := range picked {
		i, p := i, p
		g.Go(func() error {
			item := s.renderPicked(req, batchId, p)
			mu.Lock()
			items[i] = item
			mu.Unlock()
			// Item errors are reported per item, not as a batch error.
			return nil
		})
	}
	_ = g.Wait()

	log.GetLogger().Info("Batch generation finished",
		zap.String("batchId", batchId),
		zap.String("userId", req.UserId),
		zap.Int("items", len(items)))

	return &dto.GenerateBatchResData{BatchId: batchId, Items: items}, nil
}

// RegenerateItem replaces a single batch entry. Fingerprints the caller
// already holds are excluded so the replacement is always fresh.
func (s *Service) RegenerateItem(req dto.RegenerateReq) (*dto.RegenerateResData, error) {
	ctx := context.Background()

	exclude := make(map[string]struct{}, len(req.Exclude))
	for _, fp := range req.Exclude {
		exclude[fp] = struct{}{}
	}

	picked, err := s.pickAssets(ctx, pickParams{
		UserId:       req.UserId,
		AccountId:    req.AccountId,
		Niche:        req.Niche,
		Keyword:      req.Keyword,
		AllowRepeats: req.AllowRepeats,
		Seed:         req.Seed,
		Index:        req.Index,
		Exclude:      exclude,
	}, 1)
	if err != nil {
		return nil, err
	}

	batchReq := dto.GenerateBatchReq{
		UserId:    req.UserId,
		AccountId: req.AccountId,
		Niche:     req.Niche,
		Keyword:   req.Keyword,
		Topic:     req.Topic,
		Plan:      req.Plan,
	}
	item := s.renderPicked(batchReq, "", picked[0])
	return &dto.RegenerateResData{Item: item}, nil
}

type pickParams struct {
	UserId       string
	AccountId    string
	Niche        string
	Keyword      string
	AllowRepeats bool
	Seed         *int64
	Index        int
	Exclude      map[string]struct{}
}

// pickAssets lists the bank, loads the usage ledger and asks the selection
// engine for count assets. Seeded requests page deterministically; unseeded
// ones shuffle fresh.
func (s *Service) pickAssets(ctx context.Context, p pickParams, count int) ([]selection.Picked, error) {
	catalog, err := s.Store.List(ctx, s.assetPrefix)
	if err != nil {
		return nil, err
	}

	used, err := s.usedSet(p.UserId, p.AccountId)
	if err != nil {
		return nil, err
	}

	req := selection.PickRequest{
		Niche:        p.Niche,
		Keyword:      p.Keyword,
		Used:         used,
		Exclude:      p.Exclude,
		AllowRepeats: p.AllowRepeats,
		Seed:         p.Seed,
		Index:        p.Index,
	}

	if p.Seed == nil {
		return s.Engine.PickMany(catalog, req, count)
	}

	// Deterministic paging: advance the cursor once per item and exclude
	// within the batch so a short pool cannot repeat.
	picked := make([]selection.Picked, 0, count)
	exclude := make(map[string]struct{}, len(p.Exclude)+count)
	for fp := range p.Exclude {
		exclude[fp] = struct{}{}
	}
	index := p.Index
	for len(picked) < count {
		req.Index = index
		req.Exclude = exclude
		one, cursor, err := s.Engine.PickOne(catalog, req)
		if err != nil {
			if len(picked) > 0 && apperrors.Is(err, apperrors.CodeNoAssetAvailable) {
				break
			}
			return nil, err
		}
		picked = append(picked, one)
		exclude[one.Fingerprint] = struct{}{}
		if cursor != nil {
			index = cursor.Index
		} else {
			index++
		}
	}
	return picked, nil
}

func (s *Service) usedSet(userId, accountId string) (map[string]struct{}, error) {
	fingerprints, err := storage.UsedFingerprints(userId, accountId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Usage ledger read failed", err)
	}
	used := make(map[string]struct{}, len(fingerprints))
	for _, fp := range fingerprints {
		used[fp] = struct{}{}
	}
	return used, nil
}

// renderPicked runs the full pipeline for one picked asset and reports the
// outcome as a batch item.
func (s *Service) renderPicked(req dto.GenerateBatchReq, batchId string, p selection.Picked) dto.GeneratedItem {
	plan := req.Plan
	if plan == "" {
		plan = types.PlanFree
	}
	topic := req.Topic
	if topic == "" {
		topic = req.Niche
	}

	job := RenderJob{
		TaskId:      newTaskId(p.Asset.Key),
		UserId:      req.UserId,
		AccountId:   req.AccountId,
		BatchId:     batchId,
		SourceKey:   p.Asset.Key,
		Fingerprint: p.Fingerprint,
		Topic:       topic,
		Hint:        req.Keyword,
		Niche:       req.Niche,
		Plan:        plan,
	}

	if err := s.runRender(job); err != nil {
		return dto.GeneratedItem{
			TaskId:      job.TaskId,
			SourceKey:   p.Asset.Key,
			Fingerprint: p.Fingerprint,
			Error:       err.Error(),
		}
	}

	task, err := storage.GetTask(job.TaskId)
	if err != nil || task == nil {
		return dto.GeneratedItem{
			TaskId:      job.TaskId,
			SourceKey:   p.Asset.Key,
			Fingerprint: p.Fingerprint,
		}
	}
	return dto.GeneratedItem{
		TaskId:       task.TaskId,
		SourceKey:    task.SourceKey,
		Fingerprint:  task.Fingerprint,
		Caption:      task.CaptionText,
		PromptSource: task.PromptSource,
	}
}
