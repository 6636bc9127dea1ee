package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"time"

	"reelsmith/internal/types"
	apperrors "reelsmith/pkg/errors"

	"github.com/go-resty/resty/v2"
)

// Remote recognizes text through an HTTP OCR service. It is the fallback
// tier when the local engine is unavailable or keeps failing.
type Remote struct {
	client  *resty.Client
	baseURL string
}

type remoteRequest struct {
	Image     string   `json:"image"`
	Languages []string `json:"languages,omitempty"`
}

type remoteRegion struct {
	Text string `json:"text"`
	// Confidence arrives on the 0..1 scale.
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

type remoteResponse struct {
	Regions []remoteRegion `json:"regions"`
}

// NewRemote creates a recognizer for the service at baseURL. apiKey may be
// empty for unauthenticated deployments.
func NewRemote(baseURL, apiKey string, timeout time.Duration) *Remote {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &Remote{client: client, baseURL: baseURL}
}

func (r *Remote) Recognize(ctx context.Context, frame image.Image) ([]types.GlyphBox, error) {
	data, err := encodeFramePNG(frame)
	if err != nil {
		return nil, err
	}

	var parsed remoteResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(remoteRequest{Image: base64.StdEncoding.EncodeToString(data)}).
		SetResult(&parsed).
		Post("/v1/recognize")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOcrBackend, "OCR service request failed", err)
	}
	if resp.IsError() {
		return nil, apperrors.WrapWithDetail(apperrors.CodeOcrBackend,
			"OCR service returned error status", resp.String(),
			fmt.Errorf("status %d", resp.StatusCode()))
	}

	out := make([]types.GlyphBox, 0, len(parsed.Regions))
	for _, reg := range parsed.Regions {
		conf := reg.Confidence
		if conf <= 1.0 {
			conf *= 100.0
		}
		out = append(out, types.GlyphBox{
			Text:       reg.Text,
			Confidence: conf,
			Box:        types.TextRegion{X: reg.X, Y: reg.Y, Width: reg.Width, Height: reg.Height},
		})
	}
	return out, nil
}
