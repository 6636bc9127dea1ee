package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"

	apperrors "reelsmith/pkg/errors"
)

// SampleFrames decodes up to maxFrames frames from the head of the clip,
// as RGBA images. Burned-in captions show up within the first seconds;
// sampling the head also avoids mistaking end-card text for a caption.
func SampleFrames(ctx context.Context, inputPath string, info *Info, maxFrames int) ([]*image.RGBA, error) {
	if maxFrames <= 0 {
		return nil, nil
	}

	cmd := exec.CommandContext(ctx, FfmpegPath,
		"-v", "error",
		"-i", inputPath,
		"-frames:v", fmt.Sprintf("%d", maxFrames),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeVideoDecode, "Decoder pipe setup failed", err)
	}
	if err = cmd.Start(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeVideoDecode, "Decoder start failed", err)
	}

	frameSize := info.Width * info.Height * 4
	var frames []*image.RGBA
	for len(frames) < maxFrames {
		buf := make([]byte, frameSize)
		if _, err = io.ReadFull(stdout, buf); err != nil {
			break
		}
		frames = append(frames, frameFromRGBA(buf, info.Width, info.Height))
	}
	if err = cmd.Wait(); err != nil && len(frames) == 0 {
		return nil, apperrors.WrapWithDetail(apperrors.CodeVideoDecode, "Frame decode failed", errBuf.String(), err)
	}
	return frames, nil
}

// ProcessVideo streams every frame of the input through transform and
// re-encodes the result, muxing the original audio track back in. The
// transform must return a frame of the same dimensions.
func ProcessVideo(ctx context.Context, inputPath, outputPath string, info *Info, transform func(*image.RGBA) *image.RGBA) error {
	decode := exec.CommandContext(ctx, FfmpegPath,
		"-v", "error",
		"-i", inputPath,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)
	var decodeErr bytes.Buffer
	decode.Stderr = &decodeErr
	decodeOut, err := decode.StdoutPipe()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeVideoDecode, "Decoder pipe setup failed", err)
	}

	rate := info.FrameRate
	if rate <= 0 {
		rate = 30
	}
	encodeArgs := []string{
		"-y",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"-r", fmt.Sprintf("%f", rate),
		"-i", "pipe:0",
	}
	if info.HasAudio {
		encodeArgs = append(encodeArgs,
			"-i", inputPath,
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-c:a", "aac",
			"-b:a", "192k",
			"-shortest",
		)
	}
	encodeArgs = append(encodeArgs,
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		outputPath,
	)
	encode := exec.CommandContext(ctx, FfmpegPath, encodeArgs...)
	var encodeErr bytes.Buffer
	encode.Stderr = &encodeErr
	encodeIn, err := encode.StdinPipe()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeVideoEncode, "Encoder pipe setup failed", err)
	}

	if err = decode.Start(); err != nil {
		return apperrors.Wrap(apperrors.CodeVideoDecode, "Decoder start failed", err)
	}
	if err = encode.Start(); err != nil {
		decode.Process.Kill()
		decode.Wait()
		return apperrors.Wrap(apperrors.CodeVideoEncode, "Encoder start failed", err)
	}

	frameSize := info.Width * info.Height * 4
	buf := make([]byte, frameSize)
	var copyErr error
	for {
		if _, copyErr = io.ReadFull(decodeOut, buf); copyErr != nil {
			if copyErr == io.EOF || copyErr == io.ErrUnexpectedEOF {
				copyErr = nil
			}
			break
		}
		frame := transform(frameFromRGBA(buf, info.Width, info.Height))
		if _, copyErr = encodeIn.Write(frame.Pix); copyErr != nil {
			break
		}
	}
	encodeIn.Close()

	if copyErr != nil {
		// The encoder died mid-stream. The decoder is still pumping
		// frames into a pipe nobody drains, so reap it before waiting.
		decode.Process.Kill()
		decode.Wait()
		if err = encode.Wait(); err != nil {
			return apperrors.WrapWithDetail(apperrors.CodeVideoEncode, "Video encode failed", encodeErr.String(), err)
		}
		return apperrors.Wrap(apperrors.CodeVideoEncode, "Frame stream interrupted", copyErr)
	}
	if err = decode.Wait(); err != nil {
		encode.Process.Kill()
		encode.Wait()
		return apperrors.WrapWithDetail(apperrors.CodeVideoDecode, "Frame decode failed", decodeErr.String(), err)
	}
	if err = encode.Wait(); err != nil {
		return apperrors.WrapWithDetail(apperrors.CodeVideoEncode, "Video encode failed", encodeErr.String(), err)
	}
	return nil
}

// Thumbnail extracts a single JPEG frame at the given timestamp.
func Thumbnail(ctx context.Context, inputPath, outputPath string, atSecond float64) error {
	cmd := exec.CommandContext(ctx, FfmpegPath,
		"-y",
		"-v", "error",
		"-ss", fmt.Sprintf("%f", atSecond),
		"-i", inputPath,
		"-frames:v", "1",
		"-q:v", "2",
		outputPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return apperrors.WrapWithDetail(apperrors.CodeVideoEncode, "Thumbnail extraction failed", string(output), err)
	}
	return nil
}

// frameFromRGBA wraps a raw RGBA byte buffer as an image without copying.
func frameFromRGBA(buf []byte, width, height int) *image.RGBA {
	return &image.RGBA{
		Pix:    buf,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
}
