//go:build !ios && !android && (amd64 || arm64)

package ffscrub

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/ffscrub/avcodec"
	"github.com/obinnaokechukwu/ffscrub/avformat"
	"github.com/obinnaokechukwu/ffscrub/avutil"
)

// decoder is the codec state for the selected video stream of one Media.
type decoder struct {
	m        *Media
	codecCtx avcodec.Context
	pkt      avcodec.Packet
	frame    avutil.Frame
	rgb      rgbConverter
	seek     func(*Media) error

	next     int // index the next received frame gets
	held     int // index of the frame in d.frame, -1 if none
	draining bool
}

func newDecoder(m *Media) (*decoder, error) {
	if m == nil || m.closed {
		return nil, ErrClosed
	}

	codec := avcodec.FindDecoder(m.CodecID())
	if codec == nil {
		return nil, fmt.Errorf("%w: no decoder for %s", ErrCodecUnsupported, m.CodecName())
	}

	d := &decoder{m: m, held: -1, seek: seekStart}
	d.codecCtx = avcodec.AllocContext3(codec)
	if d.codecCtx == nil {
		return nil, fmt.Errorf("%w: failed to allocate codec context", ErrCodecUnsupported)
	}
	if err := avcodec.ParametersToContext(d.codecCtx, m.codecPar()); err != nil {
		d.close()
		return nil, wrap(ErrCodecUnsupported, err)
	}
	if err := avcodec.Open2(d.codecCtx, codec, nil); err != nil {
		d.close()
		return nil, wrap(ErrCodecUnsupported, err)
	}

	d.pkt = avcodec.PacketAlloc()
	d.frame = avutil.FrameAlloc()
	if d.pkt == nil || d.frame == nil {
		d.close()
		return nil, fmt.Errorf("%w: failed to allocate packet or frame", ErrDecodeTransport)
	}
	return d, nil
}

// advance decodes until the frame counted as target is held. Frames before
// it are dropped as they are received. No packet is read once the target
// frame is out of the decoder.
func (d *decoder) advance(target int) error {
	for {
		for {
			err := avcodec.ReceiveFrame(d.codecCtx, d.frame)
			if err == nil {
				idx := d.next
				d.next++
				if idx == target {
					d.held = idx
					return nil
				}
				avutil.FrameUnref(d.frame)
				continue
			}
			d.held = -1
			if avutil.IsAgain(err) {
				break
			}
			if avutil.IsEOF(err) {
				return fmt.Errorf("%w: index %d, stream ended after %d frames", ErrFrameNotReached, target, d.next)
			}
			return wrap(ErrDecodeTransport, err)
		}

		if d.draining {
			// A drained decoder never asks for more input.
			return fmt.Errorf("%w: index %d, stream ended after %d frames", ErrFrameNotReached, target, d.next)
		}

		if err := d.feed(); err != nil {
			return err
		}
	}
}

// feed submits the next packet of the video stream, or the flush packet at
// end of container.
func (d *decoder) feed() error {
	for {
		err := avformat.ReadFrame(d.m.fmtCtx, d.pkt)
		if avutil.IsEOF(err) {
			d.draining = true
			if err := avcodec.SendPacket(d.codecCtx, nil); err != nil {
				return wrap(ErrDecodeTransport, err)
			}
			return nil
		}
		if err != nil {
			return wrap(ErrDecodeTransport, err)
		}

		if int(avcodec.GetPacketStreamIndex(d.pkt)) != d.m.videoIdx {
			avcodec.PacketUnref(d.pkt)
			continue
		}

		err = avcodec.SendPacket(d.codecCtx, d.pkt)
		avcodec.PacketUnref(d.pkt)
		if err != nil {
			return wrap(ErrDecodeTransport, err)
		}
		return nil
	}
}

// rewind puts the container back at the start of the video stream and
// resets the decoder and counter. Inputs that cannot seek are reopened.
func (d *decoder) rewind() error {
	if err := d.seek(d.m); err != nil {
		d.m.log.WithError(err).Debug("seek to start failed, reopening")
		if rerr := d.m.reopen(); rerr != nil {
			return wrap(ErrDecodeTransport, errors.Join(err, rerr))
		}
	}
	avcodec.FlushBuffers(d.codecCtx)
	avutil.FrameUnref(d.frame)
	d.next = 0
	d.held = -1
	d.draining = false
	return nil
}

func seekStart(m *Media) error {
	start := avformat.GetStreamStartTime(m.stream)
	if start == avutil.NoPTSValue {
		start = 0
	}
	return avformat.SeekFrame(m.fmtCtx, int32(m.videoIdx), start, avformat.SeekFlagBackward)
}

func (d *decoder) image() (*Image, error) {
	if d.held < 0 {
		return nil, errors.New("ffscrub: no frame held")
	}
	return d.rgb.convert(d.frame, d.held)
}

func (d *decoder) close() {
	d.rgb.close()
	if d.frame != nil {
		avutil.FrameFree(&d.frame)
	}
	if d.pkt != nil {
		avcodec.PacketFree(&d.pkt)
	}
	if d.codecCtx != nil {
		avcodec.FreeContext(&d.codecCtx)
	}
	d.held = -1
}

// DecodeFrame decodes the frame with zero-based index target from m's
// current read position and returns it as packed RGB24.
//
// m is closed before DecodeFrame returns, whatever the outcome. To decode
// several frames from one open file use a FrameReader.
func DecodeFrame(m *Media, target int) (*Image, error) {
	if m == nil {
		return nil, ErrClosed
	}
	defer m.Close()

	if target < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, target)
	}

	d, err := newDecoder(m)
	if err != nil {
		return nil, err
	}
	defer d.close()

	if err := d.advance(target); err != nil {
		return nil, err
	}
	return d.image()
}
