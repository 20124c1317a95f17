//go:build !ios && !android && (amd64 || arm64)

package texture

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/ffscrub"
	"github.com/obinnaokechukwu/ffscrub/internal/bindings"
)

// OpenGL enums used for texture upload.
const (
	glTexture2D        = 0x0DE1
	glTextureMagFilter = 0x2800
	glTextureMinFilter = 0x2801
	glLinear           = 0x2601
	glUnpackAlignment  = 0x0CF5
	glRGB              = 0x1907
	glUnsignedByte     = 0x1401
)

// GL uploads images as GL_TEXTURE_2D objects. All calls must happen on the
// thread that owns the host's current GL context.
type GL struct {
	genTextures    func(n int32, textures *uint32)
	deleteTextures func(n int32, textures *uint32)
	bindTexture    func(target, texture uint32)
	texParameteri  func(target, pname uint32, param int32)
	pixelStorei    func(pname uint32, param int32)
	getIntegerv    func(pname uint32, data *int32)
	texImage2D     func(target uint32, level, internalFormat, width, height, border int32, format, xtype uint32, pixels unsafe.Pointer)

	live map[Handle]struct{}
}

// NewGL binds the texture entry points of the system OpenGL library.
func NewGL() (*GL, error) {
	lib, err := bindings.LoadGL()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoGL, err)
	}

	g := &GL{live: make(map[Handle]struct{})}
	for name, fptr := range map[string]any{
		"glGenTextures":    &g.genTextures,
		"glDeleteTextures": &g.deleteTextures,
		"glBindTexture":    &g.bindTexture,
		"glTexParameteri":  &g.texParameteri,
		"glPixelStorei":    &g.pixelStorei,
		"glGetIntegerv":    &g.getIntegerv,
		"glTexImage2D":     &g.texImage2D,
	} {
		if err := register(fptr, lib, name); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func register(fptr any, lib uintptr, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrNoGL, name, r)
		}
	}()
	purego.RegisterLibFunc(fptr, lib, name)
	return nil
}

// Upload creates a texture with linear filtering and no mipmaps and fills
// it with img's RGB24 pixels.
func (g *GL) Upload(img *ffscrub.Image) (Handle, error) {
	if err := checkImage(img); err != nil {
		return 0, err
	}

	var tex uint32
	g.genTextures(1, &tex)
	if tex == 0 {
		return 0, fmt.Errorf("%w: glGenTextures returned no name; is a context current?", ErrNoGL)
	}

	g.bindTexture(glTexture2D, tex)
	g.texParameteri(glTexture2D, glTextureMinFilter, glLinear)
	g.texParameteri(glTexture2D, glTextureMagFilter, glLinear)

	// Rows are tightly packed. The host's unpack alignment is put back
	// afterwards.
	var align int32
	g.getIntegerv(glUnpackAlignment, &align)
	g.pixelStorei(glUnpackAlignment, 1)
	g.texImage2D(glTexture2D, 0, glRGB, int32(img.Width), int32(img.Height), 0, glRGB, glUnsignedByte, unsafe.Pointer(&img.Pix[0]))
	runtime.KeepAlive(img.Pix)
	if align > 0 {
		g.pixelStorei(glUnpackAlignment, align)
	}

	h := Handle(tex)
	g.live[h] = struct{}{}
	return h, nil
}

// Release deletes a texture created by Upload.
func (g *GL) Release(h Handle) error {
	if _, ok := g.live[h]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	tex := uint32(h)
	g.deleteTextures(1, &tex)
	delete(g.live, h)
	return nil
}

// Live returns the number of textures not yet released.
func (g *GL) Live() int {
	return len(g.live)
}
