//go:build !ios && !android && (amd64 || arm64)

// Package ffscrub opens video files with FFmpeg and decodes individual
// frames by index into packed RGB24 images, for hosts that show one frame
// per UI tick and scrub through a clip on a looping clock.
//
// FFmpeg is loaded at runtime through purego; no cgo is involved. The
// low-level bindings live in the avutil, avcodec, avformat and swscale
// packages.
//
// The two decoding entry points are DecodeFrame, which consumes a Media
// and decodes from its current read position, and FrameReader, which keeps
// a decoder open and walks forward (or rewinds) across calls.
package ffscrub

import (
	"fmt"

	"github.com/obinnaokechukwu/ffscrub/avcodec"
	"github.com/obinnaokechukwu/ffscrub/avutil"
	"github.com/obinnaokechukwu/ffscrub/internal/bindings"
)

// Init loads the FFmpeg libraries. Open calls it; calling it explicitly
// surfaces load errors early. It is safe to call multiple times.
func Init() error {
	return bindings.Load()
}

// IsLoaded returns true if FFmpeg libraries have been successfully loaded.
func IsLoaded() bool {
	return bindings.IsLoaded()
}

// Versions holds the loaded FFmpeg library versions in FFmpeg's packed
// major<<16 | minor<<8 | micro form.
type Versions struct {
	AVUtil   uint32
	AVCodec  uint32
	AVFormat uint32
	SWScale  uint32
}

// Version returns FFmpeg library versions. All zero before Init.
func Version() Versions {
	return Versions{
		AVUtil:   bindings.AVUtilVersion(),
		AVCodec:  bindings.AVCodecVersion(),
		AVFormat: bindings.AVFormatVersion(),
		SWScale:  bindings.SWScaleVersion(),
	}
}

// FormatVersion renders a packed library version as "major.minor.micro".
func FormatVersion(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>16, (v>>8)&0xFF, v&0xFF)
}

type (
	// Rational represents a rational number (fraction).
	Rational = avutil.Rational

	// PixelFormat represents video pixel formats.
	PixelFormat = avutil.PixelFormat

	// MediaType represents stream types (video, audio, etc.).
	MediaType = avutil.MediaType

	// CodecID represents codec identifiers.
	CodecID = avcodec.CodecID
)

const (
	PixelFormatNone    = avutil.PixelFormatNone
	PixelFormatYUV420P = avutil.PixelFormatYUV420P
	PixelFormatRGB24   = avutil.PixelFormatRGB24

	MediaTypeUnknown = avutil.MediaTypeUnknown
	MediaTypeVideo   = avutil.MediaTypeVideo
	MediaTypeAudio   = avutil.MediaTypeAudio
)
