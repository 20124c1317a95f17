//go:build !ios && !android && (amd64 || arm64)

package ffscrub

import (
	"image"
	"image/color"
)

// Image is one decoded frame as packed RGB24: three bytes per pixel, rows
// of exactly Width*3 bytes, no padding.
type Image struct {
	Width  int
	Height int
	Index  int   // zero-based decode order within the stream
	PTS    int64 // presentation timestamp in stream time base, or avutil.NoPTSValue
	Pix    []byte
}

// Stride returns the length of one row in bytes.
func (i *Image) Stride() int {
	return i.Width * 3
}

// Valid reports whether Pix holds a full frame.
func (i *Image) Valid() bool {
	return i != nil && i.Width > 0 && i.Height > 0 && len(i.Pix) >= i.Width*i.Height*3
}

// RGB returns the pixel at (x, y).
func (i *Image) RGB(x, y int) (r, g, b uint8) {
	off := y*i.Stride() + x*3
	return i.Pix[off], i.Pix[off+1], i.Pix[off+2]
}

// NRGBA copies the image into an opaque *image.NRGBA.
func (i *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, i.Width, i.Height))
	for y := 0; y < i.Height; y++ {
		src := i.Pix[y*i.Stride() : (y+1)*i.Stride()]
		dst := out.Pix[y*out.Stride : y*out.Stride+i.Width*4]
		for x := 0; x < i.Width; x++ {
			dst[x*4] = src[x*3]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
	return out
}

// ColorModel, Bounds and At let an Image be drawn or encoded directly.
func (i *Image) ColorModel() color.Model { return color.RGBAModel }

func (i *Image) Bounds() image.Rectangle { return image.Rect(0, 0, i.Width, i.Height) }

func (i *Image) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(i.Bounds())) {
		return color.RGBA{}
	}
	r, g, b := i.RGB(x, y)
	return color.RGBA{r, g, b, 0xff}
}

// Release drops the pixel buffer. The image is unusable afterwards.
func (i *Image) Release() {
	i.Pix = nil
}
