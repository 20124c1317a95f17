//go:build !ios && !android && (amd64 || arm64)

// Package avformat provides the libavformat bindings for demuxing: opening
// containers, enumerating streams, reading packets and seeking.
package avformat

import (
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/ffscrub/avcodec"
	"github.com/obinnaokechukwu/ffscrub/avutil"
	"github.com/obinnaokechukwu/ffscrub/internal/bindings"
)

// FormatContext is an opaque FFmpeg AVFormatContext pointer.
type FormatContext = unsafe.Pointer

// Stream is an opaque FFmpeg AVStream pointer.
type Stream = unsafe.Pointer

var (
	avformatOpenInput      func(ctx *unsafe.Pointer, url string, fmt unsafe.Pointer, options *unsafe.Pointer) int32
	avformatCloseInput     func(ctx *unsafe.Pointer)
	avformatFindStreamInfo func(ctx unsafe.Pointer, options *unsafe.Pointer) int32

	avReadFrame func(ctx, pkt unsafe.Pointer) int32
	avSeekFrame func(ctx unsafe.Pointer, streamIndex int32, timestamp int64, flags int32) int32

	bindingsRegistered bool
)

func init() {
	registerBindings()
}

func registerBindings() {
	if bindingsRegistered {
		return
	}

	if err := bindings.Load(); err != nil {
		return
	}

	lib := bindings.LibAVFormat()
	if lib == 0 {
		return
	}

	purego.RegisterLibFunc(&avformatOpenInput, lib, "avformat_open_input")
	purego.RegisterLibFunc(&avformatCloseInput, lib, "avformat_close_input")
	purego.RegisterLibFunc(&avformatFindStreamInfo, lib, "avformat_find_stream_info")

	purego.RegisterLibFunc(&avReadFrame, lib, "av_read_frame")
	purego.RegisterLibFunc(&avSeekFrame, lib, "av_seek_frame")

	bindingsRegistered = true
}

// OpenInput opens a container and reads its header. Entries consumed from
// options are removed; the remainder is left for the caller to free.
func OpenInput(ctx *FormatContext, url string, options *avutil.Dictionary) error {
	if avformatOpenInput == nil {
		return bindings.ErrNotLoaded
	}
	ret := avformatOpenInput(ctx, url, nil, options)
	runtime.KeepAlive(url)
	return avutil.NewError(ret, "avformat_open_input")
}

// CloseInput closes an input and frees the context.
func CloseInput(ctx *FormatContext) {
	if ctx == nil || *ctx == nil || avformatCloseInput == nil {
		return
	}
	avformatCloseInput(ctx)
	*ctx = nil
}

// FindStreamInfo reads packets to fill in stream parameters.
func FindStreamInfo(ctx FormatContext) error {
	if avformatFindStreamInfo == nil {
		return bindings.ErrNotLoaded
	}
	return avutil.NewError(avformatFindStreamInfo(ctx, nil), "avformat_find_stream_info")
}

// ReadFrame reads the next packet of any stream. EOF comes back as an
// *avutil.Error; test it with avutil.IsEOF.
func ReadFrame(ctx FormatContext, pkt avcodec.Packet) error {
	if avReadFrame == nil {
		return bindings.ErrNotLoaded
	}
	return avutil.NewError(avReadFrame(ctx, pkt), "av_read_frame")
}

// SeekFlags for SeekFrame
const (
	SeekFlagBackward = 1 // Seek to keyframe before target
	SeekFlagByte     = 2 // Seek by byte position
	SeekFlagAny      = 4 // Seek to any frame (not just keyframe)
	SeekFlagFrame    = 8 // Seek by frame number
)

// SeekFrame seeks streamIndex to timestamp, in that stream's time base.
func SeekFrame(ctx FormatContext, streamIndex int32, timestamp int64, flags int32) error {
	if avSeekFrame == nil {
		return bindings.ErrNotLoaded
	}
	return avutil.NewError(avSeekFrame(ctx, streamIndex, timestamp, flags), "av_seek_frame")
}

// AVFormatContext field offsets (avformat 59 through 62).
const (
	offsetNumStreams = 44 // unsigned int nb_streams
	offsetStreams    = 48 // AVStream **streams
	offsetDuration   = 72 // int64_t duration
)

// GetNumStreams returns the number of streams in the context.
func GetNumStreams(ctx FormatContext) int {
	if ctx == nil {
		return 0
	}
	return int(*(*uint32)(unsafe.Add(ctx, offsetNumStreams)))
}

// GetStream returns the stream at the given index.
func GetStream(ctx FormatContext, index int) Stream {
	if ctx == nil || index < 0 || index >= GetNumStreams(ctx) {
		return nil
	}
	streams := *(*unsafe.Pointer)(unsafe.Add(ctx, offsetStreams))
	if streams == nil {
		return nil
	}
	return *(*unsafe.Pointer)(unsafe.Add(streams, uintptr(index)*unsafe.Sizeof(uintptr(0))))
}

// GetDuration returns the container duration in AV_TIME_BASE units.
func GetDuration(ctx FormatContext) int64 {
	if ctx == nil {
		return 0
	}
	return *(*int64)(unsafe.Add(ctx, offsetDuration))
}

// AVStream field offsets. FFmpeg 8 (avformat 62) removed side_data and
// nb_side_data, moving the fields after them 8 bytes down.
const (
	offsetStreamIndex        = 8   // int index
	offsetStreamCodecPar     = 16  // AVCodecParameters *codecpar
	offsetStreamTimeBase     = 32  // AVRational time_base
	offsetStreamStartTime    = 40  // int64_t start_time
	offsetStreamDuration     = 48  // int64_t duration
	offsetStreamNbFrames     = 56  // int64_t nb_frames
	offsetStreamAvgFrameRate = 88  // AVRational avg_frame_rate
	offsetStreamRFrameRate   = 216 // AVRational r_frame_rate, avformat <= 61
	offsetStreamRFrameRate62 = 204 // AVRational r_frame_rate, avformat >= 62
)

func rationalAt(p unsafe.Pointer, off uintptr) avutil.Rational {
	return avutil.Rational{
		Num: *(*int32)(unsafe.Add(p, off)),
		Den: *(*int32)(unsafe.Add(p, off+4)),
	}
}

// GetStreamIndex returns the stream index.
func GetStreamIndex(stream Stream) int32 {
	if stream == nil {
		return -1
	}
	return *(*int32)(unsafe.Add(stream, offsetStreamIndex))
}

// GetStreamCodecPar returns the codec parameters for the stream.
func GetStreamCodecPar(stream Stream) avcodec.Parameters {
	if stream == nil {
		return nil
	}
	return *(*unsafe.Pointer)(unsafe.Add(stream, offsetStreamCodecPar))
}

// GetStreamTimeBase returns the time base for a stream.
func GetStreamTimeBase(stream Stream) avutil.Rational {
	if stream == nil {
		return avutil.Rational{Num: 0, Den: 1}
	}
	return rationalAt(stream, offsetStreamTimeBase)
}

// GetStreamStartTime returns the stream's first pts in its time base,
// or avutil.NoPTSValue.
func GetStreamStartTime(stream Stream) int64 {
	if stream == nil {
		return avutil.NoPTSValue
	}
	return *(*int64)(unsafe.Add(stream, offsetStreamStartTime))
}

// GetStreamDuration returns the stream duration in its time base,
// or avutil.NoPTSValue.
func GetStreamDuration(stream Stream) int64 {
	if stream == nil {
		return avutil.NoPTSValue
	}
	return *(*int64)(unsafe.Add(stream, offsetStreamDuration))
}

// GetStreamNbFrames returns the frame count recorded in the container
// header, or 0 when the container does not store one.
func GetStreamNbFrames(stream Stream) int64 {
	if stream == nil {
		return 0
	}
	return *(*int64)(unsafe.Add(stream, offsetStreamNbFrames))
}

// GetStreamAvgFrameRate returns the stream's average frame rate.
func GetStreamAvgFrameRate(stream Stream) avutil.Rational {
	if stream == nil {
		return avutil.Rational{}
	}
	return rationalAt(stream, offsetStreamAvgFrameRate)
}

// GetStreamRFrameRate returns the stream's real base frame rate
// (r_frame_rate), the lowest rate at which all timestamps are exact.
func GetStreamRFrameRate(stream Stream) avutil.Rational {
	if stream == nil {
		return avutil.Rational{}
	}
	if bindings.AVFormatMajor() >= 62 {
		return rationalAt(stream, offsetStreamRFrameRate62)
	}
	return rationalAt(stream, offsetStreamRFrameRate)
}

// AVCodecParameters field offsets (avcodec 59 through 62).
const (
	offsetCodecParType    = 0  // enum AVMediaType codec_type
	offsetCodecParCodecID = 4  // enum AVCodecID codec_id
	offsetCodecParFormat  = 28 // int format
	offsetCodecParWidth   = 56 // int width
	offsetCodecParHeight  = 60 // int height
)

// GetCodecParType returns the media type from codec parameters.
func GetCodecParType(par avcodec.Parameters) avutil.MediaType {
	if par == nil {
		return avutil.MediaTypeUnknown
	}
	return avutil.MediaType(*(*int32)(unsafe.Add(par, offsetCodecParType)))
}

// GetCodecParCodecID returns the codec ID from codec parameters.
func GetCodecParCodecID(par avcodec.Parameters) avcodec.CodecID {
	if par == nil {
		return avcodec.CodecIDNone
	}
	return avcodec.CodecID(*(*int32)(unsafe.Add(par, offsetCodecParCodecID)))
}

// GetCodecParWidth returns the video width from codec parameters.
func GetCodecParWidth(par avcodec.Parameters) int32 {
	if par == nil {
		return 0
	}
	return *(*int32)(unsafe.Add(par, offsetCodecParWidth))
}

// GetCodecParHeight returns the video height from codec parameters.
func GetCodecParHeight(par avcodec.Parameters) int32 {
	if par == nil {
		return 0
	}
	return *(*int32)(unsafe.Add(par, offsetCodecParHeight))
}

// GetCodecParFormat returns the pixel format of a video stream.
func GetCodecParFormat(par avcodec.Parameters) int32 {
	if par == nil {
		return -1
	}
	return *(*int32)(unsafe.Add(par, offsetCodecParFormat))
}
