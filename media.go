//go:build !ios && !android && (amd64 || arm64)

package ffscrub

import (
	"errors"
	"fmt"
	"io/fs"
	"math"

	"github.com/obinnaokechukwu/ffscrub/avcodec"
	"github.com/obinnaokechukwu/ffscrub/avformat"
	"github.com/obinnaokechukwu/ffscrub/avutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// FrameCountSource says where Media.FrameCount came from.
type FrameCountSource string

const (
	FrameCountContainer FrameCountSource = "container" // stream nb_frames
	FrameCountMP4       FrameCountSource = "mp4"       // MP4 sample table
	FrameCountEstimate  FrameCountSource = "estimate"  // duration x frame rate
)

// StreamInfo describes one stream of an opened container.
type StreamInfo struct {
	Index         int
	Type          MediaType
	CodecID       CodecID
	CodecName     string
	Width         int
	Height        int
	PixelFormat   PixelFormat
	FrameCount    int64 // nb_frames; 0 when the container does not store it
	TimeBase      Rational
	AvgFrameRate  Rational
	RealFrameRate Rational
	Duration      float64 // seconds; 0 when unknown
}

// Media is an opened container with its first video stream selected.
// It is not safe for concurrent use.
type Media struct {
	path      string
	avOptions map[string]string
	fmtCtx    avformat.FormatContext
	stream    avformat.Stream
	videoIdx  int
	streams   []StreamInfo

	frameCount       int64
	frameCountSource FrameCountSource
	duration         float64
	frameRate        float64

	log    logrus.FieldLogger
	closed bool
}

type openOptions struct {
	avOptions map[string]string
	probeMP4  bool
	fs        afero.Fs
	logger    logrus.FieldLogger
}

// OpenOption configures Open.
type OpenOption func(*openOptions)

// WithAVOptions passes demuxer options to avformat_open_input.
func WithAVOptions(opts map[string]string) OpenOption {
	return func(o *openOptions) {
		o.avOptions = opts
	}
}

// WithoutMP4Probe disables the MP4 sample-table fallback for FrameCount.
func WithoutMP4Probe() OpenOption {
	return func(o *openOptions) {
		o.probeMP4 = false
	}
}

// WithFs sets the filesystem used for existence checks and MP4 probing.
// FFmpeg itself always reads from the OS filesystem.
func WithFs(fsys afero.Fs) OpenOption {
	return func(o *openOptions) {
		o.fs = fsys
	}
}

// WithLogger sets the logger for open and decode events.
func WithLogger(l logrus.FieldLogger) OpenOption {
	return func(o *openOptions) {
		o.logger = l
	}
}

// Open opens the container at path, reads its stream information and
// selects the first video stream in file order.
//
// Failures match ErrNotFound or ErrUnreadableFormat (both ErrOpenFailed),
// or ErrNoVideoStream. No resources are held when an error is returned.
func Open(path string, opts ...OpenOption) (*Media, error) {
	o := openOptions{
		probeMP4: true,
		fs:       afero.NewOsFs(),
		logger:   discard,
	}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.WithField("path", path)

	if err := Init(); err != nil {
		return nil, wrap(ErrOpenFailed, err)
	}

	if _, err := o.fs.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, wrap(ErrNotFound, err)
	}

	fmtCtx, err := openInput(path, o.avOptions)
	if err != nil {
		return nil, err
	}

	m := &Media{
		path:      path,
		avOptions: o.avOptions,
		fmtCtx:    fmtCtx,
		videoIdx:  -1,
		log:       log,
	}

	n := avformat.GetNumStreams(fmtCtx)
	for i := 0; i < n; i++ {
		s := avformat.GetStream(fmtCtx, i)
		info := describeStream(i, s)
		m.streams = append(m.streams, info)
		if m.videoIdx < 0 && info.Type == MediaTypeVideo {
			m.videoIdx = i
			m.stream = s
		}
	}

	if m.videoIdx < 0 {
		avformat.CloseInput(&m.fmtCtx)
		return nil, ErrNoVideoStream
	}

	m.resolveTiming(o)

	log.WithFields(logrus.Fields{
		"nb_frames":         m.frameCount,
		"frames_from":       m.frameCountSource,
		"durationInSeconds": m.duration,
		"frameRate":         m.frameRate,
		"stream":            m.videoIdx,
	}).Info("opened media")

	return m, nil
}

// openInput opens path and reads its stream information.
func openInput(path string, avOptions map[string]string) (avformat.FormatContext, error) {
	var dict avutil.Dictionary
	for k, v := range avOptions {
		if err := avutil.DictSet(&dict, k, v, 0); err != nil {
			avutil.DictFree(&dict)
			return nil, wrap(ErrOpenFailed, err)
		}
	}

	var fmtCtx avformat.FormatContext
	err := avformat.OpenInput(&fmtCtx, path, &dict)
	avutil.DictFree(&dict)
	if err != nil {
		if avutil.IsNotFound(err) {
			return nil, wrap(ErrNotFound, err)
		}
		return nil, wrap(ErrUnreadableFormat, err)
	}

	if err := avformat.FindStreamInfo(fmtCtx); err != nil {
		avformat.CloseInput(&fmtCtx)
		return nil, wrap(ErrUnreadableFormat, err)
	}
	return fmtCtx, nil
}

func describeStream(i int, s avformat.Stream) StreamInfo {
	par := avformat.GetStreamCodecPar(s)
	tb := avformat.GetStreamTimeBase(s)
	info := StreamInfo{
		Index:         i,
		Type:          avformat.GetCodecParType(par),
		CodecID:       avformat.GetCodecParCodecID(par),
		FrameCount:    avformat.GetStreamNbFrames(s),
		TimeBase:      tb,
		AvgFrameRate:  avformat.GetStreamAvgFrameRate(s),
		RealFrameRate: avformat.GetStreamRFrameRate(s),
		PixelFormat:   PixelFormatNone,
	}
	info.CodecName = avcodec.CodecName(info.CodecID)
	if info.Type == MediaTypeVideo {
		info.Width = int(avformat.GetCodecParWidth(par))
		info.Height = int(avformat.GetCodecParHeight(par))
		info.PixelFormat = PixelFormat(avformat.GetCodecParFormat(par))
	}
	if d := avformat.GetStreamDuration(s); d != avutil.NoPTSValue && d > 0 {
		info.Duration = float64(d) * tb.Float64()
	}
	return info
}

// resolveTiming fills duration, frame rate and frame count for the
// selected stream, falling back where the container is silent.
func (m *Media) resolveTiming(o openOptions) {
	v := m.streams[m.videoIdx]

	m.duration = v.Duration
	if m.duration == 0 {
		if d := avformat.GetDuration(m.fmtCtx); d != avutil.NoPTSValue && d > 0 {
			m.duration = float64(d) * avutil.TimeBaseMicro.Float64()
		}
	}

	m.frameRate = v.RealFrameRate.Float64()
	if m.frameRate <= 0 {
		m.frameRate = v.AvgFrameRate.Float64()
	}

	if v.FrameCount > 0 {
		m.frameCount = v.FrameCount
		m.frameCountSource = FrameCountContainer
		return
	}

	if o.probeMP4 && IsMP4Path(m.path) {
		info, err := ProbeMP4(o.fs, m.path)
		if err != nil {
			m.log.WithError(err).Debug("mp4 probe failed")
		} else if t := info.VideoTrack(); t != nil && t.SampleCount > 0 {
			m.frameCount = t.SampleCount
			m.frameCountSource = FrameCountMP4
			return
		}
	}

	m.frameCount = int64(math.Round(m.duration * m.frameRate))
	m.frameCountSource = FrameCountEstimate
}

// Path returns the path the media was opened from.
func (m *Media) Path() string {
	return m.path
}

// Streams returns every stream of the container in file order.
func (m *Media) Streams() []StreamInfo {
	return append([]StreamInfo(nil), m.streams...)
}

// VideoStreamIndex returns the index of the selected video stream.
func (m *Media) VideoStreamIndex() int {
	return m.videoIdx
}

// FrameCount returns the number of frames in the video stream.
func (m *Media) FrameCount() int64 {
	return m.frameCount
}

// FrameCountSource reports how FrameCount was determined.
func (m *Media) FrameCountSource() FrameCountSource {
	return m.frameCountSource
}

// DurationSeconds returns the video stream duration in seconds.
func (m *Media) DurationSeconds() float64 {
	return m.duration
}

// FrameRate returns the stream's real frame rate, or its average frame
// rate when the real rate is unknown.
func (m *Media) FrameRate() float64 {
	return m.frameRate
}

// Width returns the coded width of the video stream.
func (m *Media) Width() int {
	return m.streams[m.videoIdx].Width
}

// Height returns the coded height of the video stream.
func (m *Media) Height() int {
	return m.streams[m.videoIdx].Height
}

// PixelFormat returns the video stream's native pixel format.
func (m *Media) PixelFormat() PixelFormat {
	return m.streams[m.videoIdx].PixelFormat
}

// CodecID returns the video stream's codec.
func (m *Media) CodecID() CodecID {
	return m.streams[m.videoIdx].CodecID
}

// CodecName returns FFmpeg's name for the video stream's codec.
func (m *Media) CodecName() string {
	return m.streams[m.videoIdx].CodecName
}

// Closed reports whether Close has been called.
func (m *Media) Closed() bool {
	return m.closed
}

// Close releases the container. Calling it again is a no-op.
func (m *Media) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	avformat.CloseInput(&m.fmtCtx)
	m.stream = nil
	return nil
}

// reopen replaces the container with a freshly opened one positioned at
// its start. Stream layout must match the first open.
func (m *Media) reopen() error {
	if m.closed {
		return ErrClosed
	}
	fmtCtx, err := openInput(m.path, m.avOptions)
	if err != nil {
		return err
	}
	if avformat.GetNumStreams(fmtCtx) != len(m.streams) {
		avformat.CloseInput(&fmtCtx)
		return fmt.Errorf("%w: stream layout changed on reopen", ErrOpenFailed)
	}

	avformat.CloseInput(&m.fmtCtx)
	m.fmtCtx = fmtCtx
	m.stream = avformat.GetStream(fmtCtx, m.videoIdx)
	return nil
}

func (m *Media) codecPar() avcodec.Parameters {
	return avformat.GetStreamCodecPar(m.stream)
}
