package types

import "image"

// TextRegion is a rectangular area of a frame holding burned-in text,
// in pixel coordinates with origin at the top-left corner.
type TextRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the region to an image.Rectangle.
func (r TextRegion) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether the region has no area.
func (r TextRegion) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Expand grows the region by pad pixels on every side.
func (r TextRegion) Expand(pad int) TextRegion {
	return TextRegion{
		X:      r.X - pad,
		Y:      r.Y - pad,
		Width:  r.Width + 2*pad,
		Height: r.Height + 2*pad,
	}
}

// Clamp restricts the region to a frame of the given size. A region fully
// outside the frame collapses to an empty one.
func (r TextRegion) Clamp(frameWidth, frameHeight int) TextRegion {
	x0 := max(r.X, 0)
	y0 := max(r.Y, 0)
	x1 := min(r.X+r.Width, frameWidth)
	y1 := min(r.Y+r.Height, frameHeight)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return TextRegion{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Union returns the smallest region covering both r and other. An empty
// region is the identity.
func (r TextRegion) Union(other TextRegion) TextRegion {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	x0 := min(r.X, other.X)
	y0 := min(r.Y, other.Y)
	x1 := max(r.X+r.Width, other.X+other.Width)
	y1 := max(r.Y+r.Height, other.Y+other.Height)
	return TextRegion{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// FillColor is an opaque RGB color used to paint over a text region.
type FillColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// GlyphBox is a single piece of recognized text with its bounding box and
// the recognizer's confidence, normalized to the 0..100 range.
type GlyphBox struct {
	Text       string
	Confidence float64
	Box        TextRegion
}
