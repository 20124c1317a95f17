//go:build !ios && !android && (amd64 || arm64)

package ffscrub

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// FrameReader keeps a decoder open on a Media and serves frames by index.
// Requests at or after the last decoded index decode forward; earlier
// requests rewind to the start of the stream first. The result for every
// index is the same as DecodeFrame on a freshly opened Media.
//
// A FrameReader is not safe for concurrent use. Closing it does not close
// the Media.
type FrameReader struct {
	d      *decoder
	log    logrus.FieldLogger
	closed bool
}

// NewFrameReader opens a decoder for m's video stream.
func NewFrameReader(m *Media) (*FrameReader, error) {
	d, err := newDecoder(m)
	if err != nil {
		return nil, err
	}
	return &FrameReader{d: d, log: m.log}, nil
}

// Frame returns the frame with zero-based index target.
func (r *FrameReader) Frame(target int) (*Image, error) {
	if r.closed || r.d.m.closed {
		return nil, ErrClosed
	}
	if target < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, target)
	}

	if target == r.d.held {
		return r.d.image()
	}

	if target < r.d.next {
		r.log.WithFields(logrus.Fields{"frame": target, "next": r.d.next}).Debug("rewinding")
		if err := r.d.rewind(); err != nil {
			return nil, err
		}
	}

	if err := r.d.advance(target); err != nil {
		return nil, err
	}
	return r.d.image()
}

// Next returns the index the reader would decode without rewinding.
func (r *FrameReader) Next() int {
	return r.d.next
}

// Close frees the decoder. Calling it again is a no-op.
func (r *FrameReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.d.close()
	return nil
}
