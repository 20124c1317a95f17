//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"bytes"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/obinnaokechukwu/ffscrub"
	"github.com/obinnaokechukwu/ffscrub/internal/config"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

func TestMain(m *testing.M) {
	if err := config.Setup(afero.NewMemMapFs()); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func createTestVideo(t *testing.T) string {
	t.Helper()
	if err := ffscrub.Init(); err != nil {
		t.Skipf("FFmpeg not available: %v", err)
	}

	out := filepath.Join(t.TempDir(), "clip.mp4")
	cmd := exec.Command("ffmpeg", "-y", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=64x48:rate=30",
		"-frames:v", "5",
		"-c:v", "mpeg4", "-pix_fmt", "yuv420p",
		out)
	if err := cmd.Run(); err != nil {
		t.Skipf("ffmpeg not available or failed: %v", err)
	}
	return out
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestProbeYAML(t *testing.T) {
	video := createTestVideo(t)

	out, err := run(t, "probe", video, "--format", "yaml")
	if err != nil {
		t.Fatalf("probe failed: %v\n%s", err, out)
	}

	var report probeReport
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not yaml: %v\n%s", err, out)
	}
	if report.FrameCount != 5 || report.VideoStream != 0 {
		t.Errorf("frame_count=%d video_stream=%d", report.FrameCount, report.VideoStream)
	}
	if len(report.Streams) != 1 || report.Streams[0].Codec != "mpeg4" {
		t.Errorf("streams = %+v", report.Streams)
	}
	if report.MP4 == nil || report.MP4.VideoTrack() == nil {
		t.Error("expected the mp4 sample table in the report")
	}
}

func TestProbeText(t *testing.T) {
	video := createTestVideo(t)

	out, err := run(t, "probe", video, "--format", "text")
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	for _, want := range []string{"nb_frames: 5", "durationInSeconds", "frameRate: 30.000"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFrameCommand(t *testing.T) {
	video := createTestVideo(t)
	dst := filepath.Join(t.TempDir(), "frame.png")

	if out, err := run(t, "frame", video, "2", "-o", dst); err != nil {
		t.Fatalf("frame failed: %v\n%s", err, out)
	}

	f, err := os.Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("bounds = %v", img.Bounds())
	}

	if _, err := run(t, "frame", video, "five", "-o", dst); err == nil {
		t.Error("expected an error for a non-numeric index")
	}
	if _, err := run(t, "frame", video, "5", "-o", dst); err == nil {
		t.Error("expected an error past the last frame")
	}
}

func TestPlayCommand(t *testing.T) {
	video := createTestVideo(t)
	dir := t.TempDir()

	out, err := run(t, "play", video, "--ticks", "8", "--every", "4", "--out", dir, "--fps", "60", "--width", "80", "--height", "60")
	if err != nil {
		t.Fatalf("play failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "8 ticks, 8 frames presented") {
		t.Errorf("unexpected summary %q", out)
	}

	for _, name := range []string{"tick_00000.png", "tick_00004.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing snapshot %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "tick_00001.png")); err == nil {
		t.Error("only every 4th tick should be saved")
	}
}

func TestPlayNeedsInput(t *testing.T) {
	if _, err := run(t, "play"); err == nil {
		t.Error("expected an error without a video")
	}
}

func TestConvertCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script converter")
	}
	dir := t.TempDir()
	tool := filepath.Join(dir, "tool")
	script := `#!/bin/sh
out="$(dirname "$0")/data/dcm/dicomresults/$2/mp4s"
mkdir -p "$out"
touch "$out/$(basename "$1" .dcm).mp4"
`
	if err := os.WriteFile(tool, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "convert", filepath.Join(dir, "scan.dcm"), "--executable", tool, "--mode", "A4C")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	want := filepath.Join(dir, "data", "dcm", "dicomresults", "A4C", "mp4s", "scan.mp4")
	if strings.TrimSpace(out) != want {
		t.Errorf("convert printed %q, want %q", strings.TrimSpace(out), want)
	}

	if _, err := run(t, "convert", filepath.Join(dir, "scan.png")); err == nil {
		t.Error("expected a rejected input error")
	}
}
