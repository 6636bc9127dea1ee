package compositor

import (
	"image"
	"image/color"
	"strings"

	"reelsmith/internal/types"
	apperrors "reelsmith/pkg/errors"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type layoutResult struct {
	face       font.Face
	lines      []string
	lineHeight int
	scale      float64
}

// Overlay draws text centered inside the region. Words wrap greedily
// against the region width, the block is capped at three lines, and the
// font shrinks stepwise until the block fits the region height or the
// scale floor is reached (an oversized block is then drawn anyway).
func (c *Compositor) Overlay(frame *image.RGBA, text string, region types.TextRegion, textColor color.RGBA) (*image.RGBA, error) {
	out := cloneFrame(frame)
	b := out.Bounds()
	region = region.Clamp(b.Dx(), b.Dy())
	if region.Empty() || strings.TrimSpace(text) == "" {
		return out, nil
	}

	res, err := c.layout(text, region)
	if err != nil {
		return nil, err
	}

	blockHeight := res.lineHeight*len(res.lines) + c.lineSpacing*(len(res.lines)-1)
	ascent := res.face.Metrics().Ascent.Ceil()
	yStart := region.Y + (region.Height-blockHeight)/2

	for i, line := range res.lines {
		lineWidth := measure(res.face, line)
		x := region.X + (region.Width-lineWidth)/2
		y := yStart + ascent + i*(res.lineHeight+c.lineSpacing)
		drawString(out, res.face, line, x, y, textColor)
	}
	return out, nil
}

// layout wraps the text and shrinks the font until the block fits the
// region height, bottoming out at the minimum scale.
func (c *Compositor) layout(text string, region types.TextRegion) (layoutResult, error) {
	scale := 1.0
	for {
		face, err := c.face(scale)
		if err != nil {
			return layoutResult{}, err
		}
		lines := wrapWords(face, text, region.Width, c.maxLines)
		metrics := face.Metrics()
		lineHeight := (metrics.Ascent + metrics.Descent).Ceil()
		blockHeight := lineHeight*len(lines) + c.lineSpacing*(len(lines)-1)
		if blockHeight <= region.Height || scale*shrinkFactor < minFontScale {
			return layoutResult{face: face, lines: lines, lineHeight: lineHeight, scale: scale}, nil
		}
		scale *= shrinkFactor
	}
}

func (c *Compositor) face(scale float64) (font.Face, error) {
	face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    c.baseFontSize * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOverlayFailed, "Cannot build font face", err)
	}
	return face, nil
}

// wrapWords greedily packs words into lines no wider than maxWidth. Words
// beyond maxLines are dropped.
func wrapWords(face font.Face, text string, maxWidth, maxLines int) []string {
	words := strings.Fields(text)
	var lines []string
	current := ""
	for _, word := range words {
		trial := word
		if current != "" {
			trial = current + " " + word
		}
		if measure(face, trial) < maxWidth || current == "" {
			current = trial
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}

func measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

func drawString(dst *image.RGBA, face font.Face, s string, x, y int, c color.RGBA) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(s)
}
