//go:build !ios && !android && (amd64 || arm64)

package ffscrub

import (
	"bytes"
	"errors"
	"os"
	"testing"
)

func TestFrameReaderMatchesDecodeFrame(t *testing.T) {
	testFile := createTestVideo(t, 10)

	want := make(map[int][]byte)
	for i := 0; i < 10; i++ {
		img, err := DecodeFrame(openTestMedia(t, testFile), i)
		if err != nil {
			t.Fatalf("DecodeFrame(%d) failed: %v", i, err)
		}
		want[i] = img.Pix
	}

	m := openTestMedia(t, testFile)
	r, err := NewFrameReader(m)
	if err != nil {
		t.Fatalf("NewFrameReader failed: %v", err)
	}
	defer r.Close()

	// forward, repeat, skip ahead, rewind, rewind to start
	for _, idx := range []int{0, 1, 1, 5, 9, 2, 2, 0, 7} {
		img, err := r.Frame(idx)
		if err != nil {
			t.Fatalf("Frame(%d) failed: %v", idx, err)
		}
		if img.Index != idx {
			t.Errorf("Frame(%d).Index = %d", idx, img.Index)
		}
		if !bytes.Equal(img.Pix, want[idx]) {
			t.Errorf("Frame(%d) differs from DecodeFrame", idx)
		}
	}
	if m.Closed() {
		t.Error("FrameReader should not close the media")
	}
}

func TestFrameReaderPastEnd(t *testing.T) {
	testFile := createTestVideo(t, 10)
	m := openTestMedia(t, testFile)

	r, err := NewFrameReader(m)
	if err != nil {
		t.Fatalf("NewFrameReader failed: %v", err)
	}
	defer r.Close()

	img, err := r.Frame(10)
	if !errors.Is(err, ErrFrameNotReached) || img != nil {
		t.Fatalf("Frame(10) = %v, %v; want nil, ErrFrameNotReached", img, err)
	}
	if _, err := r.Frame(12); !errors.Is(err, ErrFrameNotReached) {
		t.Errorf("Frame(12) after end = %v", err)
	}

	// The session survives and rewinds.
	img, err = r.Frame(4)
	if err != nil {
		t.Fatalf("Frame(4) after end failed: %v", err)
	}
	if img.Index != 4 {
		t.Errorf("Index = %d, want 4", img.Index)
	}
}

func TestFrameReaderClose(t *testing.T) {
	testFile := createTestVideo(t, 3)
	m := openTestMedia(t, testFile)

	r, err := NewFrameReader(m)
	if err != nil {
		t.Fatalf("NewFrameReader failed: %v", err)
	}
	if _, err := r.Frame(-1); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("Frame(-1) = %v, want ErrInvalidIndex", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if _, err := r.Frame(0); !errors.Is(err, ErrClosed) {
		t.Errorf("Frame after Close = %v, want ErrClosed", err)
	}
}

func TestFrameReaderMediaClosed(t *testing.T) {
	testFile := createTestVideo(t, 3)
	m := openTestMedia(t, testFile)

	r, err := NewFrameReader(m)
	if err != nil {
		t.Fatalf("NewFrameReader failed: %v", err)
	}
	defer r.Close()

	m.Close()
	if _, err := r.Frame(0); !errors.Is(err, ErrClosed) {
		t.Errorf("Frame on closed media = %v, want ErrClosed", err)
	}
	if _, err := NewFrameReader(m); !errors.Is(err, ErrClosed) {
		t.Errorf("NewFrameReader on closed media = %v, want ErrClosed", err)
	}
}

func TestFrameReaderRewindsUnseekableInput(t *testing.T) {
	testFile := createTestVideo(t, 10)

	want, err := DecodeFrame(openTestMedia(t, testFile), 2)
	if err != nil {
		t.Fatalf("DecodeFrame(2) failed: %v", err)
	}

	m := openTestMedia(t, testFile)
	r, err := NewFrameReader(m)
	if err != nil {
		t.Fatalf("NewFrameReader failed: %v", err)
	}
	defer r.Close()

	if _, err := r.Frame(5); err != nil {
		t.Fatalf("Frame(5) failed: %v", err)
	}

	seekErr := errors.New("stream is not seekable")
	r.d.seek = func(*Media) error { return seekErr }

	img, err := r.Frame(2)
	if err != nil {
		t.Fatalf("Frame(2) after failed seek: %v", err)
	}
	if !bytes.Equal(img.Pix, want.Pix) {
		t.Error("Frame(2) after reopen differs from DecodeFrame")
	}
	if _, err := r.Frame(9); err != nil {
		t.Fatalf("Frame(9) after reopen failed: %v", err)
	}

	// Neither seek nor reopen can succeed once the file is gone.
	if err := os.Remove(testFile); err != nil {
		t.Fatal(err)
	}
	_, err = r.Frame(0)
	if !errors.Is(err, ErrDecodeTransport) || !errors.Is(err, seekErr) {
		t.Errorf("Frame(0) = %v, want ErrDecodeTransport wrapping the seek error", err)
	}
}
