//go:build !ios && !android && (amd64 || arm64)

package ffscrub

import (
	"fmt"
	"unsafe"

	"github.com/obinnaokechukwu/ffscrub/avutil"
	"github.com/obinnaokechukwu/ffscrub/swscale"
)

// rgbConverter turns decoded frames into packed RGB24. The scaling context
// and destination frame are reused while the source geometry is stable.
type rgbConverter struct {
	ctx    swscale.Context
	dst    avutil.Frame
	width  int
	height int
	srcFmt avutil.PixelFormat
}

func (c *rgbConverter) prepare(w, h int, srcFmt avutil.PixelFormat) error {
	if c.ctx != nil && c.width == w && c.height == h && c.srcFmt == srcFmt {
		return avutil.FrameMakeWritable(c.dst)
	}
	c.close()

	if !swscale.IsSupportedInput(srcFmt) {
		return fmt.Errorf("unsupported input pixel format %s", avutil.PixelFormatName(srcFmt))
	}

	c.ctx = swscale.GetContext(w, h, srcFmt, w, h, avutil.PixelFormatRGB24, swscale.FlagBicubic)
	if c.ctx == nil {
		return fmt.Errorf("sws_getContext %dx%d %s -> rgb24", w, h, avutil.PixelFormatName(srcFmt))
	}

	c.dst = avutil.FrameAlloc()
	if c.dst == nil {
		c.close()
		return fmt.Errorf("av_frame_alloc")
	}
	avutil.SetFrameWidth(c.dst, int32(w))
	avutil.SetFrameHeight(c.dst, int32(h))
	avutil.SetFrameFormat(c.dst, int32(avutil.PixelFormatRGB24))
	if err := avutil.FrameGetBufferErr(c.dst, 0); err != nil {
		c.close()
		return err
	}

	c.width, c.height, c.srcFmt = w, h, srcFmt
	return nil
}

// convert scales src and copies the result into a fresh packed buffer.
func (c *rgbConverter) convert(src avutil.Frame, index int) (*Image, error) {
	w := int(avutil.GetFrameWidth(src))
	h := int(avutil.GetFrameHeight(src))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: frame has invalid dimensions %dx%d", ErrConversion, w, h)
	}

	if err := c.prepare(w, h, avutil.PixelFormat(avutil.GetFrameFormat(src))); err != nil {
		return nil, wrap(ErrConversion, err)
	}

	if ret := swscale.ScaleFrame(c.ctx, c.dst, src); ret < 0 {
		return nil, wrap(ErrConversion, avutil.NewError(ret, "sws_scale_frame"))
	}

	row := w * 3
	linesize := int(avutil.GetFrameLinesizePlane(c.dst, 0))
	data := avutil.GetFrameDataPlane(c.dst, 0)
	if data == nil || linesize < row {
		return nil, fmt.Errorf("%w: destination plane not allocated", ErrConversion)
	}

	img := &Image{
		Width:  w,
		Height: h,
		Index:  index,
		PTS:    avutil.GetFramePTS(src),
		Pix:    make([]byte, row*h),
	}
	for y := 0; y < h; y++ {
		line := unsafe.Slice((*byte)(unsafe.Add(data, y*linesize)), row)
		copy(img.Pix[y*row:], line)
	}
	return img, nil
}

func (c *rgbConverter) close() {
	if c.ctx != nil {
		swscale.FreeContext(c.ctx)
		c.ctx = nil
	}
	if c.dst != nil {
		avutil.FrameFree(&c.dst)
	}
	c.width, c.height, c.srcFmt = 0, 0, avutil.PixelFormatNone
}
