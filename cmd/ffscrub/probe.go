//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"fmt"
	"io"

	"github.com/obinnaokechukwu/ffscrub"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type streamReport struct {
	Index       int     `yaml:"index"`
	Type        string  `yaml:"type"`
	Codec       string  `yaml:"codec"`
	Width       int     `yaml:"width,omitempty"`
	Height      int     `yaml:"height,omitempty"`
	PixelFormat string  `yaml:"pixel_format,omitempty"`
	Frames      int64   `yaml:"nb_frames"`
	TimeBase    string  `yaml:"time_base"`
	FrameRate   float64 `yaml:"frame_rate,omitempty"`
	Duration    float64 `yaml:"duration_seconds"`
}

type probeReport struct {
	Path        string            `yaml:"path"`
	FFmpeg      map[string]string `yaml:"ffmpeg"`
	VideoStream int               `yaml:"video_stream"`
	FrameCount  int64             `yaml:"frame_count"`
	FramesFrom  string            `yaml:"frame_count_source"`
	Duration    float64           `yaml:"duration_seconds"`
	FrameRate   float64           `yaml:"frame_rate"`
	Streams     []streamReport    `yaml:"streams"`
	MP4         *ffscrub.MP4Info  `yaml:"mp4,omitempty"`
}

func init() {
	probeCmd.Flags().StringP("format", "f", "text", "Output format: text or yaml")
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe <video>",
	Short: "Show the streams and timing of a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != "text" && format != "yaml" {
			return fmt.Errorf("unknown format %q", format)
		}

		report, err := probe(args[0])
		if err != nil {
			return err
		}

		if format == "yaml" {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(report)
		}
		writeProbeText(cmd.OutOrStdout(), report)
		return nil
	},
}

func probe(path string) (*probeReport, error) {
	m, err := ffscrub.Open(path, ffscrub.WithFs(fs), ffscrub.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	defer m.Close()

	v := ffscrub.Version()
	report := &probeReport{
		Path: path,
		FFmpeg: map[string]string{
			"avutil":   ffscrub.FormatVersion(v.AVUtil),
			"avcodec":  ffscrub.FormatVersion(v.AVCodec),
			"avformat": ffscrub.FormatVersion(v.AVFormat),
			"swscale":  ffscrub.FormatVersion(v.SWScale),
		},
		VideoStream: m.VideoStreamIndex(),
		FrameCount:  m.FrameCount(),
		FramesFrom:  string(m.FrameCountSource()),
		Duration:    m.DurationSeconds(),
		FrameRate:   m.FrameRate(),
	}

	for _, s := range m.Streams() {
		sr := streamReport{
			Index:    s.Index,
			Type:     s.Type.String(),
			Codec:    s.CodecName,
			Width:    s.Width,
			Height:   s.Height,
			Frames:   s.FrameCount,
			TimeBase: fmt.Sprintf("%d/%d", s.TimeBase.Num, s.TimeBase.Den),
			Duration: s.Duration,
		}
		if s.Type == ffscrub.MediaTypeVideo {
			sr.PixelFormat = s.PixelFormat.String()
			sr.FrameRate = s.RealFrameRate.Float64()
		}
		report.Streams = append(report.Streams, sr)
	}

	if ffscrub.IsMP4Path(path) {
		if info, err := ffscrub.ProbeMP4(fs, path); err == nil {
			report.MP4 = info
		} else {
			logger.WithError(err).Debug("mp4 probe failed")
		}
	}
	return report, nil
}

func writeProbeText(w io.Writer, r *probeReport) {
	fmt.Fprintf(w, "%s\n", r.Path)
	fmt.Fprintf(w, "  ffmpeg: avutil %s, avcodec %s, avformat %s, swscale %s\n",
		r.FFmpeg["avutil"], r.FFmpeg["avcodec"], r.FFmpeg["avformat"], r.FFmpeg["swscale"])
	fmt.Fprintf(w, "  video stream: %d\n", r.VideoStream)
	fmt.Fprintf(w, "  nb_frames: %d (%s)\n", r.FrameCount, r.FramesFrom)
	fmt.Fprintf(w, "  durationInSeconds: %.3f\n", r.Duration)
	fmt.Fprintf(w, "  frameRate: %.3f\n", r.FrameRate)
	for _, s := range r.Streams {
		fmt.Fprintf(w, "  #%d %s %s", s.Index, s.Type, s.Codec)
		if s.Width > 0 {
			fmt.Fprintf(w, " %dx%d %s", s.Width, s.Height, s.PixelFormat)
		}
		fmt.Fprintf(w, " frames=%d time_base=%s duration=%.3fs\n", s.Frames, s.TimeBase, s.Duration)
	}
	if r.MP4 != nil {
		fmt.Fprintf(w, "  mp4: fragmented=%v\n", r.MP4.Fragmented)
		for _, t := range r.MP4.Tracks {
			fmt.Fprintf(w, "    track %d %s samples=%d timescale=%d duration=%.3fs\n",
				t.TrackID, t.Handler, t.SampleCount, t.Timescale, t.Duration)
		}
	}
}
