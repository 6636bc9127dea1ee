package types

import (
	"context"
	"image"
	"time"
)

// TextRecognizer finds text boxes in a single frame. Implementations must
// normalize confidence to 0..100.
type TextRecognizer interface {
	Recognize(ctx context.Context, frame image.Image) ([]GlyphBox, error)
}

// CaptionRequest describes what the caption service should write about.
type CaptionRequest struct {
	Topic string
	Hint  string
	Count int
}

// CaptionProvider produces candidate caption lines for a clip.
type CaptionProvider interface {
	Candidates(ctx context.Context, req CaptionRequest) ([]string, error)
}

// Asset is one object in the clip bank.
type Asset struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	UpdatedAt   time.Time `json:"updatedAt"`
	// MD5 and CRC32C come from object-store metadata when the store
	// provides them. Either may be empty.
	MD5    string `json:"md5,omitempty"`
	CRC32C string `json:"crc32c,omitempty"`
}

// ObjectStore is the clip bank and output bucket boundary.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]Asset, error)
	Download(ctx context.Context, key string, destPath string) error
	Upload(ctx context.Context, localPath string, key string) (string, error)
}
