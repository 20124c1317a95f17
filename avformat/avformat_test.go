//go:build !ios && !android && (amd64 || arm64)

package avformat

import (
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/obinnaokechukwu/ffscrub/avcodec"
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

// createTestVideo writes a 1 second, 30 fps 320x240 clip with the audio
// track first, so the video stream is index 1.
func createTestVideo(t *testing.T) string {
	t.Helper()
	if !ffmpegAvailable {
		t.Skip("FFmpeg not available")
	}

	testFile := filepath.Join(t.TempDir(), "test.mp4")

	cmd := exec.Command("ffmpeg", "-y", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=duration=1:size=320x240:rate=30",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=1",
		"-map", "1:a", "-map", "0:v",
		"-c:v", "mpeg4", "-q:v", "5",
		"-c:a", "aac",
		"-pix_fmt", "yuv420p",
		testFile)

	if err := cmd.Run(); err != nil {
		t.Skipf("ffmpeg not available or failed: %v", err)
	}
	if _, err := os.Stat(testFile); err != nil {
		t.Skipf("Test file not created: %v", err)
	}
	return testFile
}

func openTestVideo(t *testing.T) FormatContext {
	t.Helper()
	testFile := createTestVideo(t)

	var ctx FormatContext
	if err := OpenInput(&ctx, testFile, nil); err != nil {
		t.Fatalf("OpenInput failed: %v", err)
	}
	t.Cleanup(func() { CloseInput(&ctx) })

	if err := FindStreamInfo(ctx); err != nil {
		t.Fatalf("FindStreamInfo failed: %v", err)
	}
	return ctx
}

func TestOpenInputMissing(t *testing.T) {
	if !ffmpegAvailable {
		t.Skip("FFmpeg not available")
	}
	var ctx FormatContext
	err := OpenInput(&ctx, filepath.Join(t.TempDir(), "missing.mp4"), nil)
	if err == nil {
		CloseInput(&ctx)
		t.Fatal("expected error for missing file")
	}
	if !avutil.IsNotFound(err) {
		t.Errorf("expected ENOENT, got %v", err)
	}
}

func TestStreamLayout(t *testing.T) {
	ctx := openTestVideo(t)

	if n := GetNumStreams(ctx); n != 2 {
		t.Fatalf("expected 2 streams, got %d", n)
	}
	if GetStream(ctx, 2) != nil || GetStream(ctx, -1) != nil {
		t.Error("out-of-range streams should be nil")
	}

	audio := GetStreamCodecPar(GetStream(ctx, 0))
	if GetCodecParType(audio) != avutil.MediaTypeAudio {
		t.Errorf("stream 0: expected audio, got %v", GetCodecParType(audio))
	}

	video := GetStream(ctx, 1)
	if GetStreamIndex(video) != 1 {
		t.Errorf("expected index 1, got %d", GetStreamIndex(video))
	}
	par := GetStreamCodecPar(video)
	if GetCodecParType(par) != avutil.MediaTypeVideo {
		t.Fatalf("stream 1: expected video, got %v", GetCodecParType(par))
	}
	if GetCodecParCodecID(par) != avcodec.CodecIDMPEG4 {
		t.Errorf("expected mpeg4, got %v", GetCodecParCodecID(par))
	}
	if GetCodecParWidth(par) != 320 || GetCodecParHeight(par) != 240 {
		t.Errorf("expected 320x240, got %dx%d", GetCodecParWidth(par), GetCodecParHeight(par))
	}
	if avutil.PixelFormat(GetCodecParFormat(par)) != avutil.PixelFormatYUV420P {
		t.Errorf("expected yuv420p, got %d", GetCodecParFormat(par))
	}
}

func TestStreamTiming(t *testing.T) {
	ctx := openTestVideo(t)
	video := GetStream(ctx, 1)

	if nb := GetStreamNbFrames(video); nb != 30 {
		t.Errorf("expected 30 frames, got %d", nb)
	}
	if fps := GetStreamRFrameRate(video).Float64(); math.Abs(fps-30) > 0.01 {
		t.Errorf("expected r_frame_rate 30, got %f", fps)
	}
	if fps := GetStreamAvgFrameRate(video).Float64(); math.Abs(fps-30) > 0.01 {
		t.Errorf("expected avg_frame_rate 30, got %f", fps)
	}
	if tb := GetStreamTimeBase(video); tb.Den == 0 {
		t.Error("time base has zero denominator")
	}

	secs := float64(GetDuration(ctx)) / 1e6
	if secs < 0.9 || secs > 1.2 {
		t.Errorf("expected ~1s duration, got %f", secs)
	}
}

func TestReadFrameAndSeek(t *testing.T) {
	ctx := openTestVideo(t)

	pkt := avcodec.PacketAlloc()
	if pkt == nil {
		t.Fatal("PacketAlloc returned nil")
	}
	defer avcodec.PacketFree(&pkt)

	videoPackets := 0
	for {
		err := ReadFrame(ctx, pkt)
		if avutil.IsEOF(err) {
			break
		}
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if avcodec.GetPacketStreamIndex(pkt) == 1 {
			videoPackets++
		}
		avcodec.PacketUnref(pkt)
	}
	if videoPackets != 30 {
		t.Errorf("expected 30 video packets, got %d", videoPackets)
	}

	if err := SeekFrame(ctx, 1, 0, SeekFlagBackward); err != nil {
		t.Fatalf("SeekFrame: %v", err)
	}
	if err := ReadFrame(ctx, pkt); err != nil {
		t.Fatalf("ReadFrame after rewind: %v", err)
	}
	avcodec.PacketUnref(pkt)
}

func TestVersion(t *testing.T) {
	if !ffmpegAvailable {
		t.Skip("FFmpeg not available")
	}
	if bindings.AVFormatMajor() == 0 {
		t.Error("AVFormatMajor returned 0")
	}
}
