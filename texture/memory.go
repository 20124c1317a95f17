//go:build !ios && !android && (amd64 || arm64)

package texture

import (
	"fmt"
	"image"

	"github.com/obinnaokechukwu/ffscrub"
)

// Memory stores uploaded images as *image.NRGBA. It stands in for a GPU
// when there is no GL context.
type Memory struct {
	next     Handle
	textures map[Handle]*image.NRGBA
}

// NewMemory returns an empty Memory uploader.
func NewMemory() *Memory {
	return &Memory{textures: make(map[Handle]*image.NRGBA)}
}

// Upload copies img into a new texture.
func (m *Memory) Upload(img *ffscrub.Image) (Handle, error) {
	if err := checkImage(img); err != nil {
		return 0, err
	}
	m.next++
	m.textures[m.next] = img.NRGBA()
	return m.next, nil
}

// Release drops a texture.
func (m *Memory) Release(h Handle) error {
	if _, ok := m.textures[h]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	delete(m.textures, h)
	return nil
}

// Lookup returns the pixels of a live texture.
func (m *Memory) Lookup(h Handle) (*image.NRGBA, bool) {
	t, ok := m.textures[h]
	return t, ok
}

// Live returns the number of textures not yet released.
func (m *Memory) Live() int {
	return len(m.textures)
}
