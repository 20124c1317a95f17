//go:build !ios && !android && (amd64 || arm64)

package player

import (
	"github.com/obinnaokechukwu/ffscrub"
)

// FrameSource is an open video for one playback session.
type FrameSource interface {
	FrameCount() int64
	FrameRate() float64
	Frame(index int) (*ffscrub.Image, error)
	Close() error
}

// Opener opens a FrameSource for a path.
type Opener func(path string) (FrameSource, error)

// sessionSource keeps one Media and FrameReader open for the session.
type sessionSource struct {
	media  *ffscrub.Media
	reader *ffscrub.FrameReader
}

// SessionOpener opens path once and serves every frame from a single
// FrameReader.
func SessionOpener(opts ...ffscrub.OpenOption) Opener {
	return func(path string) (FrameSource, error) {
		m, err := ffscrub.Open(path, opts...)
		if err != nil {
			return nil, err
		}
		r, err := ffscrub.NewFrameReader(m)
		if err != nil {
			m.Close()
			return nil, err
		}
		return &sessionSource{media: m, reader: r}, nil
	}
}

func (s *sessionSource) FrameCount() int64 { return s.media.FrameCount() }

func (s *sessionSource) FrameRate() float64 { return s.media.FrameRate() }

func (s *sessionSource) Frame(index int) (*ffscrub.Image, error) {
	return s.reader.Frame(index)
}

func (s *sessionSource) Close() error {
	s.reader.Close()
	return s.media.Close()
}

// reopenSource opens the file again for every frame and decodes from the
// start with DecodeFrame.
type reopenSource struct {
	path       string
	opts       []ffscrub.OpenOption
	frameCount int64
	frameRate  float64
}

// ReopenOpener reads the stream metadata once, then reopens path and
// decodes from the first frame on every request.
func ReopenOpener(opts ...ffscrub.OpenOption) Opener {
	return func(path string) (FrameSource, error) {
		m, err := ffscrub.Open(path, opts...)
		if err != nil {
			return nil, err
		}
		defer m.Close()
		return &reopenSource{
			path:       path,
			opts:       opts,
			frameCount: m.FrameCount(),
			frameRate:  m.FrameRate(),
		}, nil
	}
}

func (s *reopenSource) FrameCount() int64 { return s.frameCount }

func (s *reopenSource) FrameRate() float64 { return s.frameRate }

func (s *reopenSource) Frame(index int) (*ffscrub.Image, error) {
	m, err := ffscrub.Open(s.path, s.opts...)
	if err != nil {
		return nil, err
	}
	return ffscrub.DecodeFrame(m, index)
}

func (s *reopenSource) Close() error { return nil }
