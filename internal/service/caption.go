package service

import (
	"context"

	"reelsmith/internal/selection"
	"reelsmith/internal/types"
	"reelsmith/log"

	"go.uber.org/zap"
)

// Prompt sources recorded on the task.
const (
	PromptSourceUser     = "user"
	PromptSourceLLM      = "llm"
	PromptSourceFallback = "fallback"
)

// GenerateCaption returns one caption for the topic plus where it came
// from. Provider failures degrade to the topic phrase bank instead of
// failing the render.
func (s *Service) GenerateCaption(ctx context.Context, topic, hint string, count int) (string, string) {
	if s.Captioner != nil {
		candidates, err := s.Captioner.Candidates(ctx, types.CaptionRequest{
			Topic: topic,
			Hint:  hint,
			Count: count,
		})
		if err == nil && len(candidates) > 0 {
			return selection.PickCaption(candidates, hint), PromptSourceLLM
		}
		if err != nil {
			log.GetLogger().Warn("Caption provider failed, using phrase bank",
				zap.String("topic", topic), zap.Error(err))
		}
	}
	return selection.PickCaption(selection.FallbackCaptions(topic), hint), PromptSourceFallback
}
