// Package compositor renders replacement captions onto cleaned frames.
// Every operation is a pure frame transform; callers own encoding and I/O.
package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"os"

	"reelsmith/internal/types"
	apperrors "reelsmith/pkg/errors"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

const (
	defaultBaseFontSize = 56.0
	defaultLineSpacing  = 10
	defaultMaxLines     = 3
	minFontScale        = 0.5
	shrinkFactor        = 0.9

	// Backgrounds brighter than this get black text.
	lumaThreshold = 160.0
)

type Compositor struct {
	font         *opentype.Font
	baseFontSize float64
	lineSpacing  int
	maxLines     int
	logos        *LogoCache
}

type Option func(*Compositor) error

// WithFontFile loads a TTF/OTF file instead of the bundled typeface.
func WithFontFile(path string) Option {
	return func(c *Compositor) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeOverlayFailed, "Cannot read font file", err)
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeOverlayFailed, "Cannot parse font file", err)
		}
		c.font = parsed
		return nil
	}
}

// WithLogoCache injects the watermark logo cache. Without one the watermark
// renders label text only.
func WithLogoCache(cache *LogoCache) Option {
	return func(c *Compositor) error {
		c.logos = cache
		return nil
	}
}

func WithBaseFontSize(size float64) Option {
	return func(c *Compositor) error {
		c.baseFontSize = size
		return nil
	}
}

func New(opts ...Option) (*Compositor, error) {
	parsed, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOverlayFailed, "Cannot parse bundled font", err)
	}
	c := &Compositor{
		font:         parsed,
		baseFontSize: defaultBaseFontSize,
		lineSpacing:  defaultLineSpacing,
		maxLines:     defaultMaxLines,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Mask paints the region with the fill color and returns a new frame.
func (c *Compositor) Mask(frame *image.RGBA, region types.TextRegion, fill types.FillColor) *image.RGBA {
	out := cloneFrame(frame)
	b := out.Bounds()
	region = region.Clamp(b.Dx(), b.Dy())
	rect := region.Rect().Add(b.Min)
	draw.Draw(out, rect, &image.Uniform{C: color.RGBA{R: fill.R, G: fill.G, B: fill.B, A: 255}}, image.Point{}, draw.Src)
	return out
}

// TextColorFor picks black or white against the fill using broadcast luma.
func TextColorFor(fill types.FillColor) color.RGBA {
	luma := 0.299*float64(fill.R) + 0.587*float64(fill.G) + 0.114*float64(fill.B)
	if luma > lumaThreshold {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}

func cloneFrame(frame *image.RGBA) *image.RGBA {
	out := image.NewRGBA(frame.Bounds())
	copy(out.Pix, frame.Pix)
	return out
}
