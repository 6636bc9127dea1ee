package compositor

import (
	"image"
	"image/color"
	_ "image/png"
	"os"
	"sync"

	"github.com/nfnt/resize"
)

type WatermarkPosition string

const (
	WatermarkBottomLeft   WatermarkPosition = "bottom-left"
	WatermarkBottomCenter WatermarkPosition = "bottom-center"
	WatermarkBottomRight  WatermarkPosition = "bottom-right"
)

const (
	watermarkPadding  = 30
	watermarkLogoGap  = 8
	minLogoHeight     = 25
	logoHeightPct     = 0.03
	shadowOffset      = 1
	logoBaselineTweak = 5
)

// LogoCache loads the watermark logo once per target height. The cache is
// owned by a Compositor instance so tests can reset it between cases.
type LogoCache struct {
	path string

	mu    sync.Mutex
	byKey map[int]*image.RGBA
}

func NewLogoCache(path string) *LogoCache {
	return &LogoCache{path: path, byKey: make(map[int]*image.RGBA)}
}

// Get returns the logo scaled to targetHeight, or nil when the logo file is
// missing or unreadable. Missing logos are not an error: the watermark then
// renders label text only.
func (lc *LogoCache) Get(targetHeight int) *image.RGBA {
	if lc == nil || lc.path == "" {
		return nil
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if cached, ok := lc.byKey[targetHeight]; ok {
		return cached
	}

	file, err := os.Open(lc.path)
	if err != nil {
		lc.byKey[targetHeight] = nil
		return nil
	}
	defer file.Close()

	decoded, _, err := image.Decode(file)
	if err != nil {
		lc.byKey[targetHeight] = nil
		return nil
	}

	scaled := resize.Resize(0, uint(targetHeight), decoded, resize.Lanczos3)
	rgba := image.NewRGBA(scaled.Bounds())
	for y := scaled.Bounds().Min.Y; y < scaled.Bounds().Max.Y; y++ {
		for x := scaled.Bounds().Min.X; x < scaled.Bounds().Max.X; x++ {
			rgba.Set(x, y, scaled.At(x, y))
		}
	}
	lc.byKey[targetHeight] = rgba
	return rgba
}

// Reset drops all cached renditions.
func (lc *LogoCache) Reset() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.byKey = make(map[int]*image.RGBA)
}

// Watermark stamps the label (and logo when available) near the bottom of
// the frame. The label gets an offset dark shadow so it stays legible on
// any background; alpha-channel logos blend per pixel.
func (c *Compositor) Watermark(frame *image.RGBA, label string, position WatermarkPosition) (*image.RGBA, error) {
	out := cloneFrame(frame)
	b := out.Bounds()
	frameW, frameH := b.Dx(), b.Dy()
	if label == "" {
		return out, nil
	}

	logoHeight := max(minLogoHeight, int(float64(frameH)*logoHeightPct))
	var logo *image.RGBA
	if c.logos != nil {
		logo = c.logos.Get(logoHeight)
	}

	// Label text sized relative to the logo so both scale with the frame.
	face, err := c.face(float64(logoHeight) * 0.75 / c.baseFontSize)
	if err != nil {
		return nil, err
	}
	textWidth := measure(face, label)

	logoWidth := 0
	if logo != nil {
		logoWidth = logo.Bounds().Dx()
	}
	totalWidth := textWidth
	if logo != nil {
		totalWidth = logoWidth + watermarkLogoGap + textWidth
	}

	var startX int
	switch position {
	case WatermarkBottomRight:
		startX = frameW - totalWidth - watermarkPadding
	case WatermarkBottomLeft:
		startX = watermarkPadding
	default:
		startX = (frameW - totalWidth) / 2
	}

	textY := frameH - watermarkPadding
	textX := startX
	if logo != nil {
		blendLogo(out, logo, startX, textY-logoHeight+logoBaselineTweak)
		textX = startX + logoWidth + watermarkLogoGap
	}

	shadow := color.RGBA{A: 255}
	drawString(out, face, label, textX+shadowOffset, textY+shadowOffset, shadow)
	drawString(out, face, label, textX, textY, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	return out, nil
}

func blendLogo(dst *image.RGBA, logo *image.RGBA, atX, atY int) {
	db := dst.Bounds()
	lb := logo.Bounds()
	for y := 0; y < lb.Dy(); y++ {
		for x := 0; x < lb.Dx(); x++ {
			dx, dy := db.Min.X+atX+x, db.Min.Y+atY+y
			if dx < db.Min.X || dy < db.Min.Y || dx >= db.Max.X || dy >= db.Max.Y {
				continue
			}
			src := logo.RGBAAt(lb.Min.X+x, lb.Min.Y+y)
			if src.A == 0 {
				continue
			}
			// image.RGBA stores alpha-premultiplied color.
			bg := dst.RGBAAt(dx, dy)
			inv := 255 - uint32(src.A)
			dst.SetRGBA(dx, dy, color.RGBA{
				R: uint8(min(uint32(255), uint32(src.R)+uint32(bg.R)*inv/255)),
				G: uint8(min(uint32(255), uint32(src.G)+uint32(bg.G)*inv/255)),
				B: uint8(min(uint32(255), uint32(src.B)+uint32(bg.B)*inv/255)),
				A: 255,
			})
		}
	}
}
