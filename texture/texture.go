//go:build !ios && !android && (amd64 || arm64)

// Package texture turns decoded frames into textures the host UI can draw.
//
// GL uploads into OpenGL through purego and needs a GL context made current
// by the host. Memory keeps CPU-side copies for headless hosts and tests.
package texture

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/ffscrub"
)

// Handle names an uploaded texture. Zero is never a valid handle.
type Handle uint32

var (
	// ErrBadImage indicates an image with no pixels or a buffer shorter
	// than Width*Height*3.
	ErrBadImage = errors.New("texture: bad image")

	// ErrNoGL indicates the OpenGL library or one of its entry points
	// could not be loaded.
	ErrNoGL = errors.New("texture: OpenGL not available")

	// ErrUnknownHandle indicates a handle that was never uploaded or was
	// already released.
	ErrUnknownHandle = errors.New("texture: unknown handle")
)

// Uploader creates one texture per image and releases it on request.
type Uploader interface {
	Upload(img *ffscrub.Image) (Handle, error)
	Release(h Handle) error
}

func checkImage(img *ffscrub.Image) error {
	if img == nil {
		return fmt.Errorf("%w: nil", ErrBadImage)
	}
	if !img.Valid() {
		return fmt.Errorf("%w: %dx%d with %d bytes", ErrBadImage, img.Width, img.Height, len(img.Pix))
	}
	return nil
}
