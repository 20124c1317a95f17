//go:build !ios && !android && (amd64 || arm64)

package avutil

// PixelFormat represents FFmpeg pixel formats.
type PixelFormat int32

// Pixel formats ffscrub reports or converts between (from pixfmt.h).
const (
	PixelFormatNone     PixelFormat = -1
	PixelFormatYUV420P  PixelFormat = 0
	PixelFormatYUYV422  PixelFormat = 1
	PixelFormatRGB24    PixelFormat = 2
	PixelFormatBGR24    PixelFormat = 3
	PixelFormatYUV422P  PixelFormat = 4
	PixelFormatYUV444P  PixelFormat = 5
	PixelFormatGray8    PixelFormat = 8
	PixelFormatPAL8     PixelFormat = 11
	PixelFormatYUVJ420P PixelFormat = 12
	PixelFormatYUVJ422P PixelFormat = 13
	PixelFormatYUVJ444P PixelFormat = 14
	PixelFormatNV12     PixelFormat = 23
	PixelFormatRGBA     PixelFormat = 26
	PixelFormatBGRA     PixelFormat = 28
)

// String returns FFmpeg's name for the format.
func (f PixelFormat) String() string {
	return PixelFormatName(f)
}

// MediaType represents FFmpeg media types.
type MediaType int32

const (
	MediaTypeUnknown    MediaType = -1
	MediaTypeVideo      MediaType = 0
	MediaTypeAudio      MediaType = 1
	MediaTypeData       MediaType = 2
	MediaTypeSubtitle   MediaType = 3
	MediaTypeAttachment MediaType = 4
)

// String returns the lower-case media type name used in probe output.
func (m MediaType) String() string {
	switch m {
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	case MediaTypeData:
		return "data"
	case MediaTypeSubtitle:
		return "subtitle"
	case MediaTypeAttachment:
		return "attachment"
	default:
		return "unknown"
	}
}
