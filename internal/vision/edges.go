package vision

import (
	"image"
	"sort"
)

const edgeGradientThreshold = 40

// edgeRowHistogram counts, per frame row, the pixels whose luminance
// gradient magnitude exceeds a fixed threshold. Burned-in text produces
// dense horizontal bands of strong edges.
func edgeRowHistogram(frame *image.RGBA) []int {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	hist := make([]int, h)
	if w < 2 || h < 2 {
		return hist
	}

	lumaAt := func(x, y int) int {
		c := frame.RGBAAt(b.Min.X+x, b.Min.Y+y)
		return (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			dx := lumaAt(x+1, y) - lumaAt(x-1, y)
			dy := lumaAt(x, y+1) - lumaAt(x, y-1)
			if dx < 0 {
				dx = -dx
			}
			if dy < 0 {
				dy = -dy
			}
			if dx+dy > edgeGradientThreshold {
				hist[y]++
			}
		}
	}
	return hist
}

// likelyTextRows returns the rows whose edge count sits in the top decile
// of the per-row histogram. Frames with hardly any edges yield no rows.
func likelyTextRows(frame *image.RGBA) []int {
	hist := edgeRowHistogram(frame)
	if len(hist) == 0 {
		return nil
	}

	sorted := make([]int, len(hist))
	copy(sorted, hist)
	sort.Ints(sorted)
	decile := sorted[len(sorted)*9/10]

	// A flat frame has a meaningless decile; require a real edge band.
	b := frame.Bounds()
	floor := b.Dx() / 10
	if decile < floor {
		return nil
	}

	var rows []int
	for y, count := range hist {
		if count >= decile && count >= floor {
			rows = append(rows, y)
		}
	}
	return rows
}
