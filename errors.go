//go:build !ios && !android && (amd64 || arm64)

package ffscrub

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/ffscrub/avutil"
)

// FFmpegError is an error from FFmpeg operations.
// It contains the raw FFmpeg error code and a human-readable message.
type FFmpegError = avutil.Error

var (
	// ErrOpenFailed is the parent of every failure to open a container.
	ErrOpenFailed = errors.New("ffscrub: open failed")

	// ErrNotFound indicates the path does not exist.
	ErrNotFound = fmt.Errorf("%w: file not found", ErrOpenFailed)

	// ErrUnreadableFormat indicates FFmpeg could not demux the file or
	// read its stream information.
	ErrUnreadableFormat = fmt.Errorf("%w: unreadable container", ErrOpenFailed)

	// ErrNoVideoStream indicates the container has no video stream.
	ErrNoVideoStream = errors.New("ffscrub: no video stream")

	// ErrCodecUnsupported indicates no decoder exists for the stream's
	// codec, or the decoder failed to open.
	ErrCodecUnsupported = errors.New("ffscrub: codec unsupported")

	// ErrDecodeTransport indicates a packet could not be submitted to the
	// decoder or a frame could not be received from it.
	ErrDecodeTransport = errors.New("ffscrub: decode failed")

	// ErrFrameNotReached indicates the stream ended before the target
	// frame index was decoded.
	ErrFrameNotReached = errors.New("ffscrub: frame not reached")

	// ErrInvalidIndex indicates a negative frame index.
	ErrInvalidIndex = errors.New("ffscrub: invalid frame index")

	// ErrConversion indicates the RGB conversion failed.
	ErrConversion = errors.New("ffscrub: colour conversion failed")

	// ErrClosed indicates the resource has been closed.
	ErrClosed = errors.New("ffscrub: resource is closed")
)

// IsTransient reports whether err only means "nothing to show for this
// index" and a later request may succeed. Every other decode error ends
// the session.
func IsTransient(err error) bool {
	return errors.Is(err, ErrFrameNotReached)
}

// wrap joins a sentinel and the FFmpeg error that caused it, keeping both
// matchable with errors.Is / errors.As.
func wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// ErrorCode returns the FFmpeg error code from an error, or 0 if not an FFmpeg error.
func ErrorCode(err error) int32 {
	return avutil.Code(err)
}
