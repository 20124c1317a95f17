//go:build !ios && !android && (amd64 || arm64)

package snapshot

import (
	"image/png"
	"testing"

	"github.com/obinnaokechukwu/ffscrub"
	"github.com/obinnaokechukwu/ffscrub/texture"
	"github.com/spf13/afero"
)

func solid(w, h int, r, g, b byte) *ffscrub.Image {
	img := &ffscrub.Image{Width: w, Height: h, Pix: make([]byte, w*h*3)}
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
	}
	return img
}

func TestSurfaceDrawsCentredImage(t *testing.T) {
	mem := texture.NewMemory()
	s := New(100, 50, mem)

	if w, h := s.ViewSize(); w != 100 || h != 50 {
		t.Fatalf("ViewSize = %v x %v", w, h)
	}

	tex, err := mem.Upload(solid(8, 8, 255, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	s.Image(tex, 40, 40)

	if s.Images() != 1 {
		t.Errorf("Images = %d, want 1", s.Images())
	}

	canvas := s.Canvas()
	r, g, b, _ := canvas.At(50, 25).RGBA()
	if r>>8 < 200 || g>>8 > 40 || b>>8 > 40 {
		t.Errorf("centre pixel = %d,%d,%d, want red", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = canvas.At(5, 5).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("corner pixel = %d,%d,%d, want black", r>>8, g>>8, b>>8)
	}
}

func TestSurfaceMessage(t *testing.T) {
	s := New(200, 40, texture.NewMemory())
	s.Message("ffscrub: frame not reached")

	if got := s.Messages(); len(got) != 1 || got[0] != "ffscrub: frame not reached" {
		t.Errorf("Messages = %v", got)
	}

	lit := 0
	canvas := s.Canvas()
	for y := 0; y < 40; y++ {
		for x := 0; x < 200; x++ {
			if r, _, _, _ := canvas.At(x, y).RGBA(); r > 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("message did not draw any pixels")
	}

	s.Begin()
	if len(s.Messages()) != 0 || s.Images() != 0 {
		t.Error("Begin should reset the frame")
	}
}

func TestSurfaceMissingTexture(t *testing.T) {
	s := New(64, 64, texture.NewMemory())
	s.Image(99, 10, 10)
	if s.Images() != 0 || len(s.Messages()) != 1 {
		t.Errorf("missing texture: images=%d messages=%v", s.Images(), s.Messages())
	}
}

func TestSavePNG(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(32, 16, texture.NewMemory())

	if err := s.SavePNG(fs, "/out/frames/0001.png"); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	f, err := fs.Open("/out/frames/0001.png")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Errorf("bounds = %v", img.Bounds())
	}
}
