package service

import (
	"context"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"

	"reelsmith/internal/compositor"
	"reelsmith/internal/dto"
	"reelsmith/internal/selection"
	"reelsmith/internal/storage"
	"reelsmith/internal/types"
	"reelsmith/internal/vision"
	"reelsmith/log"
	apperrors "reelsmith/pkg/errors"
	"reelsmith/pkg/media"
	"reelsmith/pkg/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RenderJob carries everything one render needs; batch and single-task
// entry points both funnel into it.
type RenderJob struct {
	TaskId    string
	UserId    string
	AccountId string
	BatchId   string

	SourceKey   string
	Fingerprint string
	Caption     string
	Topic       string
	Hint        string
	Niche       string
	Plan        string
}

func newTaskId(sourceKey string) string {
	base := util.SanitizeFileName(strings.TrimSuffix(path.Base(sourceKey), path.Ext(sourceKey)))
	if len(base) > 16 {
		base = base[:16]
	}
	if base == "" {
		base = "render"
	}
	return fmt.Sprintf("%s_%s", base, uuid.New().String()[:8])
}

// StartRenderTask persists a pending task and kicks off processing in the
// background. The returned task id is immediately pollable.
func (s *Service) StartRenderTask(req dto.StartRenderReq) (*dto.StartRenderResData, error) {
	plan := req.Plan
	if plan == "" {
		plan = types.PlanFree
	}

	job := RenderJob{
		TaskId:    newTaskId(req.SourceKey),
		UserId:    req.UserId,
		AccountId: req.AccountId,
		SourceKey: req.SourceKey,
		Caption:   req.Caption,
		Topic:     req.Topic,
		Hint:      req.Hint,
		Niche:     req.Niche,
		Plan:      plan,
	}

	task := &types.RenderTask{
		TaskId:      job.TaskId,
		UserId:      job.UserId,
		AccountId:   job.AccountId,
		Status:      types.StatusPending,
		StatusMsg:   "Queued",
		SourceKey:   job.SourceKey,
		Niche:       job.Niche,
		Plan:        plan,
		Watermarked: types.WatermarkForPlan(plan),
	}
	if err := storage.SaveTask(task); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to save task", err)
	}

	if s.dispatch != nil {
		if err := s.dispatch(job); err != nil {
			log.GetLogger().Warn("Dispatch failed, running render locally",
				zap.String("taskId", job.TaskId), zap.Error(err))
			go s.runRender(job)
		}
	} else {
		go s.runRender(job)
	}

	return &dto.StartRenderResData{TaskId: job.TaskId}, nil
}

// RunRenderJob executes a render synchronously. Queue workers and the
// batch path call this directly.
func (s *Service) RunRenderJob(job RenderJob) error {
	return s.runRender(job)
}

func (s *Service) runRender(job RenderJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.GetLogger().Error("Render task panicked",
				zap.String("taskId", job.TaskId), zap.Any("panic", r))
			err = fmt.Errorf("render panic: %v", r)
			s.markFailed(job.TaskId, "Internal error", err)
		}
	}()

	ctx := context.Background()

	task, dbErr := storage.GetTask(job.TaskId)
	if dbErr != nil || task == nil {
		task = &types.RenderTask{
			TaskId:      job.TaskId,
			UserId:      job.UserId,
			AccountId:   job.AccountId,
			BatchId:     job.BatchId,
			SourceKey:   job.SourceKey,
			Niche:       job.Niche,
			Plan:        job.Plan,
			Watermarked: types.WatermarkForPlan(job.Plan),
		}
	}
	task.BatchId = job.BatchId
	task.Status = types.StatusRunning
	task.StatusMsg = "Downloading source"
	task.FailReason = ""
	if err = storage.SaveTask(task); err != nil {
		log.GetLogger().Error("Render task save failed", zap.String("taskId", job.TaskId), zap.Error(err))
	}

	workDir, err := renderWorkDir(job.TaskId)
	if err != nil {
		s.markFailed(job.TaskId, "Workspace setup failed", err)
		return err
	}
	defer os.RemoveAll(workDir)

	srcPath := filepath.Join(workDir, "source"+path.Ext(job.SourceKey))
	if err = s.Store.Download(ctx, job.SourceKey, srcPath); err != nil {
		s.markFailed(job.TaskId, "Source download failed", err)
		return err
	}

	if job.Fingerprint == "" {
		job.Fingerprint = s.resolveFingerprint(ctx, job.SourceKey)
	}
	task.Fingerprint = job.Fingerprint

	info, err := media.Probe(ctx, srcPath)
	if err != nil {
		s.markFailed(job.TaskId, "Source video unreadable", err)
		return err
	}

	s.progress(task, "Detecting captions")
	region, fill := s.detectRegion(ctx, srcPath, info)

	caption := job.Caption
	promptSource := PromptSourceUser
	if caption == "" {
		topic := job.Topic
		if topic == "" {
			topic = job.Niche
		}
		caption, promptSource = s.GenerateCaption(ctx, topic, job.Hint, s.candidateCount)
	}
	task.CaptionText = caption
	task.PromptSource = promptSource

	s.progress(task, "Rendering")
	outPath := filepath.Join(workDir, "output", job.TaskId+".mp4")
	if err = s.renderVideo(ctx, srcPath, outPath, info, region, fill, caption, task.Watermarked); err != nil {
		s.markFailed(job.TaskId, "Render failed", err)
		return err
	}

	thumbPath := util.ChangeFileExtension(outPath, ".jpg")
	if thumbErr := media.Thumbnail(ctx, outPath, thumbPath, info.Duration*0.1); thumbErr != nil {
		log.GetLogger().Warn("Thumbnail extraction failed",
			zap.String("taskId", job.TaskId), zap.Error(thumbErr))
		thumbPath = ""
	}

	s.progress(task, "Uploading result")
	outputKey := s.outputPrefix + job.TaskId + ".mp4"
	location, err := s.Store.Upload(ctx, outPath, outputKey)
	if err != nil {
		s.markFailed(job.TaskId, "Result upload failed", err)
		return err
	}
	task.OutputKey = outputKey
	task.OutputPath = location

	if thumbPath != "" {
		thumbKey := util.ChangeFileExtension(outputKey, ".jpg")
		if thumbLoc, thumbErr := s.Store.Upload(ctx, thumbPath, thumbKey); thumbErr == nil {
			task.ThumbnailKey = thumbKey
			task.ThumbnailPath = thumbLoc
		} else {
			log.GetLogger().Warn("Thumbnail upload failed",
				zap.String("taskId", job.TaskId), zap.Error(thumbErr))
		}
	}

	if ledgerErr := storage.RecordUsage(&types.UsageRecord{
		UserId:      job.UserId,
		AccountId:   job.AccountId,
		Fingerprint: job.Fingerprint,
		SourceKey:   job.SourceKey,
		Niche:       job.Niche,
	}); ledgerErr != nil {
		log.GetLogger().Error("Usage ledger write failed",
			zap.String("taskId", job.TaskId), zap.Error(ledgerErr))
	}

	task.Status = types.StatusDone
	task.StatusMsg = "Done"
	if err = storage.SaveTask(task); err != nil {
		log.GetLogger().Error("Render task save failed", zap.String("taskId", job.TaskId), zap.Error(err))
		return err
	}

	log.GetLogger().Info("Render task completed",
		zap.String("taskId", job.TaskId),
		zap.String("source", job.SourceKey),
		zap.String("promptSource", promptSource))
	return nil
}

// detectRegion samples frames and locates the burned-in caption area. The
// returned region is nil when the clip carries no detectable text; fill is
// only meaningful alongside a non-nil region.
func (s *Service) detectRegion(ctx context.Context, srcPath string, info *media.Info) (*types.TextRegion, types.FillColor) {
	neutral := types.FillColor{R: 128, G: 128, B: 128}

	frames, err := media.SampleFrames(ctx, srcPath, info, s.sampleDepth)
	if err != nil {
		log.GetLogger().Warn("Frame sampling failed, skipping caption removal", zap.Error(err))
		return nil, neutral
	}

	detectCtx, cancel := context.WithTimeout(ctx, s.detectTimeout)
	defer cancel()
	region, err := s.Detector.Detect(detectCtx, frames)
	if err != nil {
		log.GetLogger().Warn("Caption detection failed, skipping caption removal", zap.Error(err))
		return nil, neutral
	}
	if region == nil || region.Empty() || len(frames) == 0 {
		return nil, neutral
	}
	return region, vision.FillColor(frames[0], *region)
}

// renderVideo streams the clip through the compositing chain: mask the old
// caption area, draw the new caption with the contrast-law color, then the
// watermark for gated plans.
func (s *Service) renderVideo(ctx context.Context, srcPath, outPath string, info *media.Info,
	region *types.TextRegion, fill types.FillColor, caption string, watermarked bool) error {

	overlayRegion := types.TextRegion{
		X:     0,
		Y:     0,
		Width: info.Width,
		// Cover the conservative top band when nothing was detected.
		Height: info.Height / 4,
	}
	mask := region != nil && !region.Empty()
	if mask {
		overlayRegion = *region
	}
	textColor := compositor.TextColorFor(fill)

	var transformErr error
	transform := func(frame *image.RGBA) *image.RGBA {
		if transformErr != nil {
			return frame
		}
		if mask {
			frame = s.Compositor.Mask(frame, overlayRegion, fill)
		}
		out, err := s.Compositor.Overlay(frame, caption, overlayRegion, textColor)
		if err != nil {
			transformErr = err
			return frame
		}
		frame = out
		if watermarked {
			out, err = s.Compositor.Watermark(frame, s.watermarkLabel, compositor.WatermarkBottomLeft)
			if err != nil {
				transformErr = err
				return frame
			}
			frame = out
		}
		return frame
	}

	if err := media.ProcessVideo(ctx, srcPath, outPath, info, transform); err != nil {
		return err
	}
	return transformErr
}

// resolveFingerprint looks the asset up in the bank listing so content
// hashes from storage metadata win over path hashing.
func (s *Service) resolveFingerprint(ctx context.Context, key string) string {
	assets, err := s.Store.List(ctx, s.assetPrefix)
	if err == nil {
		for _, a := range assets {
			if a.Key == key {
				return selection.Fingerprint(a)
			}
		}
	}
	return selection.Fingerprint(types.Asset{Key: key})
}

func (s *Service) progress(task *types.RenderTask, msg string) {
	task.StatusMsg = msg
	if err := storage.SaveTask(task); err != nil {
		log.GetLogger().Error("Render task save failed", zap.String("taskId", task.TaskId), zap.Error(err))
	}
}

func (s *Service) markFailed(taskId, msg string, cause error) {
	log.GetLogger().Error("Render task failed",
		zap.String("taskId", taskId), zap.String("reason", msg), zap.Error(cause))

	task, err := storage.GetTask(taskId)
	if err != nil || task == nil {
		return
	}
	task.Status = types.StatusFailed
	task.StatusMsg = msg
	task.FailReason = cause.Error()
	if err = storage.SaveTask(task); err != nil {
		log.GetLogger().Error("Render task save failed", zap.String("taskId", taskId), zap.Error(err))
	}
}

// RetryRender re-submits a finished or failed task under its original id,
// preserving the recorded source and plan.
func (s *Service) RetryRender(taskId string) (*dto.StartRenderResData, error) {
	task, err := storage.GetTask(taskId)
	if err != nil || task == nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "Task not found", err)
	}
	if task.Status != types.StatusFailed && task.Status != types.StatusDone {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "Only failed or finished tasks can be retried")
	}

	job := RenderJob{
		TaskId:      task.TaskId,
		UserId:      task.UserId,
		AccountId:   task.AccountId,
		BatchId:     task.BatchId,
		SourceKey:   task.SourceKey,
		Fingerprint: task.Fingerprint,
		Niche:       task.Niche,
		Plan:        task.Plan,
	}

	task.Status = types.StatusPending
	task.StatusMsg = "Queued"
	task.FailReason = ""
	if err = storage.SaveTask(task); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to save task", err)
	}

	if s.dispatch != nil {
		if err := s.dispatch(job); err != nil {
			log.GetLogger().Warn("Dispatch failed, running render locally",
				zap.String("taskId", job.TaskId), zap.Error(err))
			go s.runRender(job)
		}
	} else {
		go s.runRender(job)
	}
	return &dto.StartRenderResData{TaskId: task.TaskId}, nil
}

// GetTaskStatus returns a task by id.
func (s *Service) GetTaskStatus(taskId string) (*dto.GetRenderTaskResData, error) {
	task, err := storage.GetTask(taskId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "Task not found", err)
	}
	return &dto.GetRenderTaskResData{Task: task}, nil
}
