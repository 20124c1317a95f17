//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"fmt"
	"image/png"
	"path/filepath"
	"strconv"

	"github.com/obinnaokechukwu/ffscrub"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	frameCmd.Flags().StringP("output", "o", "", "PNG file to write (default <video>_<index>.png)")
	rootCmd.AddCommand(frameCmd)
}

var frameCmd = &cobra.Command{
	Use:   "frame <video> <index>",
	Short: "Decode one frame by index and save it as PNG",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid frame index %q: %w", args[1], err)
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			base := filepath.Base(path)
			out = fmt.Sprintf("%s_%d.png", base[:len(base)-len(filepath.Ext(base))], index)
		}

		m, err := ffscrub.Open(path, ffscrub.WithFs(fs), ffscrub.WithLogger(logger))
		if err != nil {
			return err
		}
		img, err := ffscrub.DecodeFrame(m, index)
		if err != nil {
			return err
		}
		defer img.Release()

		if err := writePNG(out, img); err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"frame":  img.Index,
			"pts":    img.PTS,
			"output": out,
		}).Info("frame saved")
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func writePNG(path string, img *ffscrub.Image) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode PNG: %w", err)
	}
	return f.Close()
}
