// Package vision locates burned-in caption text in video frames and
// computes a plausible background fill for painting over it.
package vision

import (
	"context"
	"image"
	"strings"

	"reelsmith/internal/types"

	"go.uber.org/zap"
)

// Detector finds the caption-safe zone of a clip. Detection is tiered: the
// primary high-recall recognizer wins, then the fallback recognizer combined
// with an edge-density heuristic, then a conservative top-of-frame default.
type Detector struct {
	primary  types.TextRecognizer
	fallback types.TextRecognizer

	maxSampleDepth int
	minConfidence  float64
	padding        int
	fallbackTopPct float64

	logger *zap.Logger
}

type DetectorOption func(*Detector)

func WithFallback(r types.TextRecognizer) DetectorOption {
	return func(d *Detector) { d.fallback = r }
}

func WithSampleDepth(n int) DetectorOption {
	return func(d *Detector) { d.maxSampleDepth = n }
}

func WithMinConfidence(conf float64) DetectorOption {
	return func(d *Detector) { d.minConfidence = conf }
}

func WithPadding(pad int) DetectorOption {
	return func(d *Detector) { d.padding = pad }
}

func WithFallbackTopPct(pct float64) DetectorOption {
	return func(d *Detector) { d.fallbackTopPct = pct }
}

func WithLogger(logger *zap.Logger) DetectorOption {
	return func(d *Detector) { d.logger = logger }
}

func NewDetector(primary types.TextRecognizer, opts ...DetectorOption) *Detector {
	d := &Detector{
		primary:        primary,
		maxSampleDepth: 12,
		minConfidence:  30,
		padding:        25,
		fallbackTopPct: 0.25,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the caption-safe zone for the clip, or nil when the frames
// carry no text. Captions in the source material are anchored to the top of
// the frame, so a positive detection spans the full frame width from row
// zero down past the lowest confident glyph. A nil result is a valid
// outcome, not an error.
func (d *Detector) Detect(ctx context.Context, frames []*image.RGBA) (*types.TextRegion, error) {
	if len(frames) == 0 {
		return nil, nil
	}
	sample := frames[:min(d.maxSampleDepth, len(frames))]
	bounds := sample[0].Bounds()
	frameW, frameH := bounds.Dx(), bounds.Dy()

	if d.primary != nil {
		boxes, scanned := d.scan(ctx, d.primary, sample, d.minConfidence)
		if len(boxes) > 0 {
			return d.topAnchoredRegion(boxes, frameW, frameH), nil
		}
		if scanned > 0 {
			// The high-recall backend saw the frames and found nothing.
			return nil, nil
		}
		d.logger.Warn("primary recognizer failed on every sampled frame, falling back")
	}

	if d.fallback == nil {
		return nil, nil
	}

	strong, scanned := d.scan(ctx, d.fallback, sample, d.minConfidence)
	if len(strong) >= 3 {
		return d.topAnchoredRegion(strong, frameW, frameH), nil
	}
	if scanned == 0 {
		return nil, nil
	}

	weak, _ := d.scan(ctx, d.fallback, sample, d.minConfidence/2)
	textRows := likelyTextRows(sample[0])

	// Weak combined signal: prefer over-masking to leaving source text
	// visible, so cover a fixed top fraction of the frame.
	if len(weak) > 0 || len(textRows) > 0 {
		region := types.TextRegion{
			X:      0,
			Y:      0,
			Width:  frameW,
			Height: int(float64(frameH) * d.fallbackTopPct),
		}
		region = region.Clamp(frameW, frameH)
		return &region, nil
	}

	return nil, nil
}

// scan runs the recognizer over the sample and keeps glyphs above the
// confidence floor. Frames that error are skipped; scanned reports how many
// frames the recognizer handled successfully.
func (d *Detector) scan(ctx context.Context, r types.TextRecognizer, sample []*image.RGBA, minConf float64) ([]types.GlyphBox, int) {
	var boxes []types.GlyphBox
	scanned := 0
	for i, frame := range sample {
		glyphs, err := r.Recognize(ctx, frame)
		if err != nil {
			d.logger.Debug("recognizer error, skipping frame", zap.Int("frame", i), zap.Error(err))
			continue
		}
		scanned++
		for _, g := range glyphs {
			if g.Confidence > minConf && strings.TrimSpace(g.Text) != "" {
				boxes = append(boxes, g)
			}
		}
	}
	return boxes, scanned
}

func (d *Detector) topAnchoredRegion(boxes []types.GlyphBox, frameW, frameH int) *types.TextRegion {
	maxBottom := 0
	for _, b := range boxes {
		maxBottom = max(maxBottom, b.Box.Y+b.Box.Height)
	}
	region := types.TextRegion{X: 0, Y: 0, Width: frameW, Height: maxBottom}
	region = region.Expand(d.padding).Clamp(frameW, frameH)
	return &region
}
