//go:build !ios && !android && (amd64 || arm64)

// Package player drives frame-by-frame playback from an immediate-mode UI
// loop. The host calls Tick once per UI frame; the Player advances its
// clock, decodes the frame under it, uploads a texture and hands it to the
// host's Surface.
package player

import (
	"fmt"
	"io"

	"github.com/obinnaokechukwu/ffscrub"
	"github.com/obinnaokechukwu/ffscrub/texture"
	"github.com/sirupsen/logrus"
)

// State is the playback state.
type State int

const (
	Idle State = iota
	Loading
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Surface is the part of the host UI the Player draws into.
type Surface interface {
	// ViewSize returns the size of the region the video may occupy.
	ViewSize() (w, h float32)
	// Image draws a texture at the given size.
	Image(tex texture.Handle, w, h float32)
	// Message shows a line of text in place of the video.
	Message(text string)
}

// Config controls playback behaviour.
type Config struct {
	// ReopenEachTick reopens the file and decodes from its first frame on
	// every tick instead of keeping a decoder open.
	ReopenEachTick bool
	Fit            Fit
	// WrapWindow is the loop length in frames. Zero derives it from the
	// stream's frame count.
	WrapWindow float64
}

// Status is a snapshot of the Player for host widgets.
type Status struct {
	State      State
	Path       string
	Position   float64
	Frame      int
	FrameCount int64
	FrameRate  float64
	Window     float64
	DisplayFPS float64
	Err        error
}

// Player owns one playback session at a time. It is not safe for
// concurrent use; call it from the UI thread only.
type Player struct {
	cfg      Config
	open     Opener
	uploader texture.Uploader
	log      logrus.FieldLogger

	state      State
	path       string
	src        FrameSource
	clock      ffscrub.Clock
	err        error
	displayFPS float64

	// textures handed to the surface and not yet released
	pending []texture.Handle
}

// Option configures New.
type Option func(*Player)

// WithOpener replaces the default opener, which is chosen from
// Config.ReopenEachTick.
func WithOpener(o Opener) Option {
	return func(p *Player) {
		p.open = o
	}
}

// WithUploader sets the texture uploader. The default is texture.Memory.
func WithUploader(u texture.Uploader) Option {
	return func(p *Player) {
		p.uploader = u
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Player) {
		p.log = l
	}
}

// New returns an idle Player.
func New(cfg Config, opts ...Option) *Player {
	p := &Player{cfg: cfg, state: Idle}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		p.log = l
	}
	if p.uploader == nil {
		p.uploader = texture.NewMemory()
	}
	if p.open == nil {
		if cfg.ReopenEachTick {
			p.open = ReopenOpener(ffscrub.WithLogger(p.log))
		} else {
			p.open = SessionOpener(ffscrub.WithLogger(p.log))
		}
	}
	return p
}

// Load opens path and starts playing it from frame 0. A session already
// playing is stopped first. On failure the Player is Idle, the error is
// recorded for Err and Status, and returned.
func (p *Player) Load(path string) error {
	if p.src != nil {
		p.closeSession()
	}

	p.setState(Loading)
	p.path = path
	p.err = nil

	src, err := p.open(path)
	if err != nil {
		p.err = err
		p.setState(Idle)
		p.log.WithError(err).WithField("path", path).Error("failed to open video")
		return err
	}

	p.src = src
	p.clock = ffscrub.Clock{Window: p.cfg.WrapWindow}
	if p.clock.Window <= 0 {
		p.clock.Window = ffscrub.WrapWindowFor(src.FrameCount())
	}
	p.setState(Playing)
	p.log.WithFields(logrus.Fields{
		"path":       path,
		"frames":     src.FrameCount(),
		"frameRate":  src.FrameRate(),
		"wrapWindow": p.clock.Window,
	}).Info("playing")
	return nil
}

// Tick runs one UI frame. Textures presented by the previous tick are
// released first.
func (p *Player) Tick(s Surface, displayFPS float64) {
	p.releasePending()
	p.displayFPS = displayFPS

	if p.state != Playing {
		if p.err != nil {
			s.Message(p.err.Error())
		}
		return
	}

	p.clock.Advance(p.src.FrameRate(), displayFPS)
	idx := p.clock.Frame()
	log := p.log.WithField("frame", idx)

	if n := p.src.FrameCount(); n > 0 && int64(idx) >= n {
		log.Trace("frame past end of stream")
		return
	}

	img, err := p.src.Frame(idx)
	if err != nil {
		if ffscrub.IsTransient(err) {
			log.WithError(err).Debug("frame not available")
			return
		}
		p.fail(err)
		s.Message(err.Error())
		return
	}
	defer img.Release()

	tex, err := p.uploader.Upload(img)
	if err != nil {
		p.fail(err)
		s.Message(err.Error())
		return
	}
	p.pending = append(p.pending, tex)

	vw, vh := s.ViewSize()
	w, h := p.cfg.Fit.Size(img.Width, img.Height, vw, vh)
	s.Image(tex, w, h)
}

// EndFrame releases the textures of the current tick. Call it after the
// host has rendered; otherwise they are released by the next Tick.
func (p *Player) EndFrame() {
	p.releasePending()
}

// Stop ends the session and clears any recorded error.
func (p *Player) Stop() {
	p.closeSession()
	p.err = nil
	p.path = ""
	p.setState(Idle)
}

// Close stops playback and releases every texture still held.
func (p *Player) Close() error {
	p.Stop()
	p.releasePending()
	return nil
}

// State returns the current state.
func (p *Player) State() State {
	return p.state
}

// Err returns the error that ended the last session, or nil.
func (p *Player) Err() error {
	return p.err
}

// Status returns a snapshot of the Player.
func (p *Player) Status() Status {
	st := Status{
		State:      p.state,
		Path:       p.path,
		Position:   p.clock.Position,
		Frame:      p.clock.Frame(),
		Window:     p.clock.Window,
		DisplayFPS: p.displayFPS,
		Err:        p.err,
	}
	if p.src != nil {
		st.FrameCount = p.src.FrameCount()
		st.FrameRate = p.src.FrameRate()
	}
	return st
}

// fail ends the session after a non-transient error.
func (p *Player) fail(err error) {
	p.log.WithError(err).WithFields(logrus.Fields{
		"path":  p.path,
		"frame": p.clock.Frame(),
	}).Error("playback stopped")
	p.closeSession()
	p.err = err
	p.setState(Idle)
}

func (p *Player) closeSession() {
	if p.src == nil {
		return
	}
	if err := p.src.Close(); err != nil {
		p.log.WithError(err).Warn("failed to close video")
	}
	p.src = nil
	p.clock = ffscrub.Clock{}
}

func (p *Player) releasePending() {
	for _, h := range p.pending {
		if err := p.uploader.Release(h); err != nil {
			p.log.WithError(err).Warn("failed to release texture")
		}
	}
	p.pending = p.pending[:0]
}

func (p *Player) setState(s State) {
	if p.state != s {
		p.log.WithField("state", s).Debug("state change")
	}
	p.state = s
}
