package vision

import (
	"image"

	"reelsmith/internal/types"
)

const fillSampleMargin = 15

// FillColor samples the mean color of a strip just below the region. When
// the region already reaches near the frame bottom the strips to its left
// and right are used instead. A region covering the whole frame yields
// neutral mid-gray. Pure function of its inputs.
func FillColor(frame *image.RGBA, region types.TextRegion) types.FillColor {
	b := frame.Bounds()
	frameW, frameH := b.Dx(), b.Dy()
	region = region.Clamp(frameW, frameH)

	var rSum, gSum, bSum, count uint64
	accumulate := func(x0, y0, x1, y1 int) {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				c := frame.RGBAAt(b.Min.X+x, b.Min.Y+y)
				rSum += uint64(c.R)
				gSum += uint64(c.G)
				bSum += uint64(c.B)
				count++
			}
		}
	}

	bottom := region.Y + region.Height
	if bottom < frameH {
		accumulate(region.X, bottom, region.X+region.Width, min(frameH, bottom+fillSampleMargin))
	} else {
		// Region abuts the bottom edge; fall back to side strips.
		accumulate(max(0, region.X-fillSampleMargin), region.Y, region.X, bottom)
		accumulate(region.X+region.Width, region.Y, min(frameW, region.X+region.Width+fillSampleMargin), bottom)
	}

	if count == 0 {
		return types.FillColor{R: 128, G: 128, B: 128}
	}
	return types.FillColor{
		R: uint8(rSum / count),
		G: uint8(gSum / count),
		B: uint8(bSum / count),
	}
}
