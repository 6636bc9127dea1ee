// Package ocr provides the text recognizers behind caption detection: a
// local Tesseract engine and a remote HTTP service.
package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"

	"reelsmith/internal/types"
	apperrors "reelsmith/pkg/errors"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text with a local Tesseract engine. The underlying
// client is not safe for concurrent use, so calls are serialized.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract creates a recognizer for the given languages ("eng", ...).
// The caller must Close it to release the engine.
func NewTesseract(languages []string) (*Tesseract, error) {
	client := gosseract.NewClient()
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			client.Close()
			return nil, apperrors.Wrap(apperrors.CodeOcrBackend, "Tesseract language setup failed", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, apperrors.Wrap(apperrors.CodeOcrBackend, "Tesseract page mode setup failed", err)
	}
	return &Tesseract{client: client}, nil
}

func (t *Tesseract) Recognize(ctx context.Context, frame image.Image) ([]types.GlyphBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := encodeFramePNG(frame)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err = t.client.SetImageFromBytes(data); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOcrBackend, "Tesseract rejected frame", err)
	}
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOcrBackend, "Tesseract recognition failed", err)
	}

	out := make([]types.GlyphBox, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, types.GlyphBox{
			Text: b.Word,
			// gosseract reports word confidence on the 0..100 scale
			// already.
			Confidence: b.Confidence,
			Box: types.TextRegion{
				X:      b.Box.Min.X,
				Y:      b.Box.Min.Y,
				Width:  b.Box.Dx(),
				Height: b.Box.Dy(),
			},
		})
	}
	return out, nil
}

func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}

func encodeFramePNG(frame image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOcrBackend, "Frame encode failed", err)
	}
	return buf.Bytes(), nil
}
