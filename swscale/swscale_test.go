//go:build !ios && !android && (amd64 || arm64)

package swscale

import (
	"os"
	"testing"
	"unsafe"

	"github.com/obinnaokechukwu/ffscrub/avutil"
	"github.com/obinnaokechukwu/ffscrub/internal/bindings"
)

var ffmpegAvailable bool

func TestMain(m *testing.M) {
	if err := bindings.Load(); err == nil {
		ffmpegAvailable = true
	}
	os.Exit(m.Run())
}

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if !ffmpegAvailable {
		t.Skip("FFmpeg not available")
	}
}

func allocFrame(t *testing.T, w, h int32, format avutil.PixelFormat) avutil.Frame {
	t.Helper()
	frame := avutil.FrameAlloc()
	if frame == nil {
		t.Fatal("FrameAlloc returned nil")
	}
	t.Cleanup(func() { avutil.FrameFree(&frame) })

	avutil.SetFrameWidth(frame, w)
	avutil.SetFrameHeight(frame, h)
	avutil.SetFrameFormat(frame, int32(format))
	if err := avutil.FrameGetBufferErr(frame, 0); err != nil {
		t.Fatalf("FrameGetBufferErr: %v", err)
	}
	return frame
}

func fillPlane(frame avutil.Frame, plane int, rows int32, value byte) {
	ls := avutil.GetFrameLinesizePlane(frame, plane)
	buf := unsafe.Slice((*byte)(avutil.GetFrameDataPlane(frame, plane)), int(ls*rows))
	for i := range buf {
		buf[i] = value
	}
}

func TestGetContext(t *testing.T) {
	skipIfNoFFmpeg(t)
	ctx := GetContext(
		1920, 1080, avutil.PixelFormatYUV420P,
		1920, 1080, avutil.PixelFormatRGB24,
		FlagBicubic,
	)
	if ctx == nil {
		t.Fatal("GetContext returned nil")
	}
	FreeContext(ctx)

	// Free nil should not panic
	FreeContext(nil)
}

func TestIsSupportedInput(t *testing.T) {
	skipIfNoFFmpeg(t)
	for _, f := range []avutil.PixelFormat{avutil.PixelFormatYUV420P, avutil.PixelFormatNV12, avutil.PixelFormatRGB24} {
		if !IsSupportedInput(f) {
			t.Errorf("%d should be a supported input", f)
		}
	}
}

func TestScaleFrameMidGray(t *testing.T) {
	skipIfNoFFmpeg(t)
	const w, h = 16, 8

	src := allocFrame(t, w, h, avutil.PixelFormatYUV420P)
	fillPlane(src, 0, h, 128)
	fillPlane(src, 1, h/2, 128)
	fillPlane(src, 2, h/2, 128)

	dst := allocFrame(t, w, h, avutil.PixelFormatRGB24)

	ctx := GetContext(w, h, avutil.PixelFormatYUV420P, w, h, avutil.PixelFormatRGB24, FlagBicubic)
	if ctx == nil {
		t.Fatal("GetContext returned nil")
	}
	defer FreeContext(ctx)

	if ret := ScaleFrame(ctx, dst, src); ret < 0 {
		t.Fatalf("ScaleFrame: %v", avutil.NewError(ret, "sws_scale_frame"))
	}

	row := unsafe.Slice((*byte)(avutil.GetFrameDataPlane(dst, 0)), w*3)
	for x := 0; x < w; x++ {
		r, g, b := row[3*x], row[3*x+1], row[3*x+2]
		if r != g || g != b {
			t.Fatalf("pixel %d not gray: %d,%d,%d", x, r, g, b)
		}
		if r < 120 || r > 140 {
			t.Fatalf("pixel %d out of range: %d", x, r)
		}
	}
}

func TestScaleFrameNilContext(t *testing.T) {
	if ret := ScaleFrame(nil, nil, nil); ret >= 0 {
		t.Errorf("expected negative result, got %d", ret)
	}
}
