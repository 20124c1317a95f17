//go:build !ios && !android && (amd64 || arm64)

package avutil

import (
	"errors"
	"fmt"
	"os"
	"testing"

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

func TestFrameFreeClearsPointer(t *testing.T) {
	skipIfNoFFmpeg(t)
	frame := FrameAlloc()
	if frame == nil {
		t.Fatal("FrameAlloc returned nil")
	}

	FrameFree(&frame)
	if frame != nil {
		t.Error("Frame should be nil after free")
	}

	// Double free should be safe
	FrameFree(&frame)
}

func TestFrameGetBufferRGB(t *testing.T) {
	skipIfNoFFmpeg(t)
	frame := FrameAlloc()
	if frame == nil {
		t.Fatal("FrameAlloc returned nil")
	}
	defer FrameFree(&frame)

	SetFrameWidth(frame, 33)
	SetFrameHeight(frame, 17)
	SetFrameFormat(frame, int32(PixelFormatRGB24))

	if err := FrameGetBufferErr(frame, 0); err != nil {
		t.Fatalf("FrameGetBufferErr: %v", err)
	}
	if GetFrameDataPlane(frame, 0) == nil {
		t.Fatal("plane 0 not allocated")
	}
	if ls := GetFrameLinesizePlane(frame, 0); ls < 33*3 {
		t.Errorf("linesize %d shorter than a packed row", ls)
	}
	if GetFrameWidth(frame) != 33 || GetFrameHeight(frame) != 17 {
		t.Errorf("dimensions changed: %dx%d", GetFrameWidth(frame), GetFrameHeight(frame))
	}
}

func TestNilFrameAccessors(t *testing.T) {
	if GetFrameWidth(nil) != 0 || GetFrameHeight(nil) != 0 {
		t.Error("nil frame should report zero dimensions")
	}
	if GetFrameFormat(nil) != -1 {
		t.Error("nil frame should report format -1")
	}
	if GetFramePTS(nil) != NoPTSValue {
		t.Error("nil frame should report NoPTSValue")
	}
	if GetFrameDataPlane(nil, 0) != nil || GetFrameLinesizePlane(nil, 9) != 0 {
		t.Error("nil frame planes should be empty")
	}
}

func TestRational(t *testing.T) {
	r := NewRational(30000, 1001)
	fps := r.Float64()
	if fps < 29.9699 || fps > 29.9701 {
		t.Errorf("Expected ~29.97, got %f", fps)
	}

	if NewRational(1, 0).Float64() != 0 {
		t.Error("Zero denominator should return 0")
	}
	if !NewRational(1, 0).IsZero() || !NewRational(0, 25).IsZero() {
		t.Error("x/0 and 0/x should be zero")
	}

	red := NewRational(50, 2).Reduce()
	if red.Num != 25 || red.Den != 1 {
		t.Errorf("Expected 25/1, got %d/%d", red.Num, red.Den)
	}
}

func TestErrorHelpers(t *testing.T) {
	eof := &Error{Code: AVERROR_EOF, Op: "av_read_frame"}
	wrapped := fmt.Errorf("reading: %w", eof)

	if !IsEOF(wrapped) {
		t.Error("IsEOF should see through wrapping")
	}
	if IsAgain(wrapped) {
		t.Error("EOF is not EAGAIN")
	}
	if Code(errors.New("plain")) != 0 {
		t.Error("non-FFmpeg errors have code 0")
	}
	if NewError(0, "ok") != nil {
		t.Error("non-negative codes are not errors")
	}
}

func TestErrorString(t *testing.T) {
	skipIfNoFFmpeg(t)
	if msg := ErrorString(AVERROR_EOF); msg == "" {
		t.Error("ErrorString should return non-empty string for AVERROR_EOF")
	}
	if msg := ErrorString(-999999); msg == "" {
		t.Error("ErrorString should return non-empty string for unknown error")
	}
}

func TestPixelFormatName(t *testing.T) {
	skipIfNoFFmpeg(t)
	if got := PixelFormatName(PixelFormatYUV420P); got != "yuv420p" {
		t.Errorf("expected yuv420p, got %q", got)
	}
	if got := PixelFormatName(PixelFormatNone); got != "none" {
		t.Errorf("expected none, got %q", got)
	}
}
