package media

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "reelsmith/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeFfmpeg(t *testing.T, script string) func() {
	t.Helper()
	p := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(p, []byte(script), 0o755))

	original := FfmpegPath
	FfmpegPath = p
	return func() { FfmpegPath = original }
}

func TestSampleFramesReadsClipHead(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	// Records its arguments, then emits two 8x8 RGBA frames.
	restore := fakeFfmpeg(t, fmt.Sprintf(`#!/bin/sh
printf '%%s\n' "$@" > %q
dd if=/dev/zero bs=256 count=2 2>/dev/null
`, argsFile))
	defer restore()

	info := &Info{Width: 8, Height: 8, Duration: 30, FrameRate: 30}
	frames, err := SampleFrames(context.Background(), "in.mp4", info, 12)
	require.NoError(t, err)
	assert.Len(t, frames, 2)

	raw, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	args := string(raw)
	assert.Contains(t, args, "-frames:v")
	// The decode must take the first frames as-is, not thin the whole
	// clip down with a rate filter.
	assert.NotContains(t, args, "fps=")
}

func TestProcessVideoReturnsWhenEncoderDies(t *testing.T) {
	// The encoder invocation (reading pipe:0) dies immediately; the
	// decoder invocation streams frames without end.
	restore := fakeFfmpeg(t, `#!/bin/sh
case "$*" in
*pipe:0*) exit 7 ;;
*) exec cat /dev/zero ;;
esac
`)
	defer restore()

	info := &Info{Width: 8, Height: 8, Duration: 5, FrameRate: 30}
	outPath := filepath.Join(t.TempDir(), "out.mp4")

	done := make(chan error, 1)
	go func() {
		done <- ProcessVideo(context.Background(), "in.mp4", outPath, info,
			func(f *image.RGBA) *image.RGBA { return f })
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeVideoEncode))
	case <-time.After(10 * time.Second):
		t.Fatal("ProcessVideo did not return after the encoder exited")
	}
}

func TestProcessVideoReportsDecoderFailure(t *testing.T) {
	// The decoder fails before producing a frame; the encoder would block
	// on stdin forever if left unreaped.
	restore := fakeFfmpeg(t, `#!/bin/sh
case "$*" in
*pipe:0*) cat > /dev/null; exit 0 ;;
*) echo "corrupt input" >&2; exit 1 ;;
esac
`)
	defer restore()

	info := &Info{Width: 8, Height: 8, Duration: 5, FrameRate: 30}
	outPath := filepath.Join(t.TempDir(), "out.mp4")

	err := ProcessVideo(context.Background(), "in.mp4", outPath, info,
		func(f *image.RGBA) *image.RGBA { return f })
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeVideoDecode))
	assert.True(t, strings.Contains(err.Error(), "decode") || strings.Contains(err.Error(), "Decode"))
}
