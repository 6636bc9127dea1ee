// Package media wraps ffmpeg and ffprobe for probing, frame streaming,
// re-encoding and thumbnail extraction.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	apperrors "reelsmith/pkg/errors"
)

// Binary paths are package-level so the dependency resolver can point them
// at managed installs.
var (
	FfmpegPath  = "ffmpeg"
	FfprobePath = "ffprobe"
)

// Info is the subset of probe output the pipeline needs.
type Info struct {
	Width     int
	Height    int
	Duration  float64
	FrameRate float64
	HasAudio  bool
}

type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe inspects a video file. Inputs without a decodable video stream or
// with zero duration fail fast as malformed.
func Probe(ctx context.Context, inputPath string) (*Info, error) {
	cmd := exec.CommandContext(ctx, FfprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, apperrors.WrapWithDetail(apperrors.CodeVideoDecode, "ffprobe failed", errBuf.String(), err)
	}
	return parseProbe(out.Bytes())
}

func parseProbe(data []byte) (*Info, error) {
	var parsed probeOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeVideoMalformed, "ffprobe output unreadable", err)
	}

	info := &Info{}
	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "video":
			if info.Width == 0 {
				info.Width = s.Width
				info.Height = s.Height
				info.FrameRate = parseFrameRate(s.RFrameRate)
			}
		case "audio":
			info.HasAudio = true
		}
	}
	info.Duration, _ = strconv.ParseFloat(parsed.Format.Duration, 64)

	if info.Width <= 0 || info.Height <= 0 {
		return nil, apperrors.New(apperrors.CodeVideoMalformed, "No video stream found")
	}
	if info.Duration <= 0 {
		return nil, apperrors.New(apperrors.CodeVideoMalformed, "Video has zero duration")
	}
	return info, nil
}

// parseFrameRate evaluates ffprobe's rational rate ("30000/1001").
func parseFrameRate(r string) float64 {
	parts := strings.SplitN(r, "/", 2)
	if len(parts) == 1 {
		v, _ := strconv.ParseFloat(parts[0], 64)
		return v
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
