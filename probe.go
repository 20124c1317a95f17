//go:build !ios && !android && (amd64 || arm64)

package ffscrub

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/spf13/afero"
)

// MP4Track summarises one track of an ISO-BMFF file from its sample tables.
type MP4Track struct {
	TrackID     uint32  `yaml:"track_id"`
	Handler     string  `yaml:"handler"` // "vide", "soun", ...
	Timescale   uint32  `yaml:"timescale"`
	SampleCount int64   `yaml:"sample_count"`
	Duration    float64 `yaml:"duration_seconds"`
}

// MP4Info is the result of ProbeMP4.
type MP4Info struct {
	Fragmented bool       `yaml:"fragmented"`
	Tracks     []MP4Track `yaml:"tracks"`
}

// VideoTrack returns the first video track, or nil.
func (i *MP4Info) VideoTrack() *MP4Track {
	for k := range i.Tracks {
		if i.Tracks[k].Handler == "vide" {
			return &i.Tracks[k]
		}
	}
	return nil
}

// IsMP4Path reports whether path has an ISO-BMFF extension.
func IsMP4Path(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".mov":
		return true
	}
	return false
}

// ProbeMP4 reads the box structure of an MP4/MOV file without FFmpeg and
// counts the samples of each track. Fragmented files are counted across
// all fragments.
func ProbeMP4(fs afero.Fs, path string) (*MP4Info, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return probeMP4Reader(f)
}

func probeMP4Reader(r io.ReadSeeker) (*MP4Info, error) {
	file, err := mp4.DecodeFile(r)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	if file.IsFragmented() {
		return probeFragmented(file)
	}

	if file.Moov == nil {
		return nil, fmt.Errorf("no moov box found")
	}

	info := &MP4Info{}
	for _, trak := range file.Moov.Traks {
		t := trackHeader(trak)
		if trak.Mdia != nil && trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil && trak.Mdia.Minf.Stbl.Stsz != nil {
			t.SampleCount = int64(trak.Mdia.Minf.Stbl.Stsz.SampleNumber)
		}
		info.Tracks = append(info.Tracks, t)
	}
	return info, nil
}

func probeFragmented(file *mp4.File) (*MP4Info, error) {
	if file.Init == nil || file.Init.Moov == nil {
		return nil, fmt.Errorf("no init segment found")
	}

	info := &MP4Info{Fragmented: true}
	index := map[uint32]int{}
	trexs := map[uint32]*mp4.TrexBox{}

	for _, trak := range file.Init.Moov.Traks {
		t := trackHeader(trak)
		index[t.TrackID] = len(info.Tracks)
		info.Tracks = append(info.Tracks, t)
	}
	if file.Init.Moov.Mvex != nil {
		for _, trex := range file.Init.Moov.Mvex.Trexs {
			trexs[trex.TrackID] = trex
		}
	}

	ticks := map[uint32]uint64{}
	for _, seg := range file.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				id := traf.Tfhd.TrackID
				k, ok := index[id]
				if !ok {
					continue
				}
				samples, err := frag.GetFullSamples(trexs[id])
				if err != nil {
					return nil, fmt.Errorf("get samples: %w", err)
				}
				info.Tracks[k].SampleCount += int64(len(samples))
				for _, s := range samples {
					ticks[id] += uint64(s.Dur)
				}
			}
		}
	}

	for id, k := range index {
		if ts := info.Tracks[k].Timescale; ts > 0 && ticks[id] > 0 {
			info.Tracks[k].Duration = float64(ticks[id]) / float64(ts)
		}
	}
	return info, nil
}

func trackHeader(trak *mp4.TrakBox) MP4Track {
	var t MP4Track
	if trak.Tkhd != nil {
		t.TrackID = trak.Tkhd.TrackID
	}
	if trak.Mdia == nil {
		return t
	}
	if trak.Mdia.Hdlr != nil {
		t.Handler = trak.Mdia.Hdlr.HandlerType
	}
	if trak.Mdia.Mdhd != nil {
		t.Timescale = trak.Mdia.Mdhd.Timescale
		if t.Timescale > 0 {
			t.Duration = float64(trak.Mdia.Mdhd.Duration) / float64(t.Timescale)
		}
	}
	return t
}
