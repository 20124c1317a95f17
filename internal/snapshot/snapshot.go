//go:build !ios && !android && (amd64 || arm64)

// Package snapshot is a headless player.Surface. It paints presented
// textures and messages onto an in-memory canvas that can be saved as PNG.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/obinnaokechukwu/ffscrub/texture"
	"github.com/spf13/afero"
	"golang.org/x/image/draw"
)

var (
	background = color.Black
	foreground = color.White
)

// Surface draws textures held by a texture.Memory.
type Surface struct {
	width, height int
	textures      *texture.Memory
	dc            *gg.Context

	images   int
	messages []string
}

// New returns a width x height surface reading textures from mem.
func New(width, height int, mem *texture.Memory) *Surface {
	s := &Surface{
		width:    width,
		height:   height,
		textures: mem,
		dc:       gg.NewContext(width, height),
	}
	s.Begin()
	return s
}

// Begin clears the canvas for a new frame.
func (s *Surface) Begin() {
	s.dc.SetColor(background)
	s.dc.Clear()
	s.images = 0
	s.messages = s.messages[:0]
}

// ViewSize returns the canvas size.
func (s *Surface) ViewSize() (float32, float32) {
	return float32(s.width), float32(s.height)
}

// Image draws a texture scaled to w x h, centred on the canvas.
func (s *Surface) Image(tex texture.Handle, w, h float32) {
	src, ok := s.textures.Lookup(tex)
	if !ok {
		s.Message(fmt.Sprintf("missing texture %d", tex))
		return
	}
	dw, dh := int(w+0.5), int(h+0.5)
	if dw <= 0 || dh <= 0 {
		return
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	s.dc.DrawImage(dst, (s.width-dw)/2, (s.height-dh)/2)
	s.images++
}

// Message writes a line of text below any earlier messages of this frame.
func (s *Surface) Message(text string) {
	line := len(s.messages)
	s.messages = append(s.messages, text)

	s.dc.SetColor(foreground)
	_, lh := s.dc.MeasureString("M")
	y := float64(s.height)/2 + float64(line)*lh*1.5
	s.dc.DrawStringWrapped(text, float64(s.width)/2, y, 0.5, 0.5, float64(s.width)-8, 1.5, gg.AlignCenter)
}

// Images returns the number of textures drawn since Begin.
func (s *Surface) Images() int {
	return s.images
}

// Messages returns the messages written since Begin.
func (s *Surface) Messages() []string {
	return append([]string(nil), s.messages...)
}

// Canvas returns the current frame.
func (s *Surface) Canvas() image.Image {
	return s.dc.Image()
}

// SavePNG writes the current frame to path on fsys.
func (s *Surface) SavePNG(fsys afero.Fs, path string) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := png.Encode(f, s.dc.Image()); err != nil {
		f.Close()
		return fmt.Errorf("encode PNG: %w", err)
	}
	return f.Close()
}
