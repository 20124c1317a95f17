//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/obinnaokechukwu/ffscrub/internal/config"
	"github.com/obinnaokechukwu/ffscrub/internal/snapshot"
	"github.com/obinnaokechukwu/ffscrub/player"
	"github.com/obinnaokechukwu/ffscrub/texture"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	f := playCmd.Flags()
	f.String("convert", "", "Convert this file first and play the result")
	f.Int("ticks", 90, "Number of UI ticks to run")
	f.Int("every", 1, "Save every n-th tick")
	f.String("out", "", "Directory for tick snapshots (none if empty)")
	f.Int("width", 640, "View width")
	f.Int("height", 480, "View height")

	f.Float64("fps", 0, "Display rate driving the clock")
	lo.Must0(viper.BindPFlag(config.PlayerDisplayFPS, f.Lookup("fps")))
	f.Float64("wrap-window", 0, "Loop length in frames (0 = frame count)")
	lo.Must0(viper.BindPFlag(config.PlayerWrapWindow, f.Lookup("wrap-window")))
	f.Bool("reopen", false, "Reopen the video on every tick")
	lo.Must0(viper.BindPFlag(config.PlayerReopenEachTick, f.Lookup("reopen")))
	f.String("fit", "", "stretch or contain")
	lo.Must0(viper.BindPFlag(config.PlayerFit, f.Lookup("fit")))

	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play [video]",
	Short: "Play a video headlessly through the frame player",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		source, _ := flags.GetString("convert")
		ticks, _ := flags.GetInt("ticks")
		every, _ := flags.GetInt("every")
		outDir, _ := flags.GetString("out")
		width, _ := flags.GetInt("width")
		height, _ := flags.GetInt("height")

		var path string
		switch {
		case source != "":
			out, err := newConverter().Run(cmd.Context(), source)
			if err != nil {
				return err
			}
			path = out
		case len(args) == 1:
			path = args[0]
		default:
			return errors.New("a video or --convert is required")
		}

		fit, err := player.ParseFit(cfg.Player.Fit)
		if err != nil {
			return err
		}
		every = lo.Clamp(every, 1, max(ticks, 1))

		mem := texture.NewMemory()
		p := player.New(player.Config{
			ReopenEachTick: cfg.Player.ReopenEachTick,
			Fit:            fit,
			WrapWindow:     cfg.Player.WrapWindow,
		}, player.WithUploader(mem), player.WithLogger(logger))
		defer p.Close()

		if err := p.Load(path); err != nil {
			return err
		}

		surface := snapshot.New(width, height, mem)
		presented := 0
		for i := 0; i < ticks; i++ {
			surface.Begin()
			p.Tick(surface, cfg.Player.DisplayFPS)
			presented += surface.Images()

			if outDir != "" && i%every == 0 {
				name := filepath.Join(outDir, fmt.Sprintf("tick_%05d.png", i))
				if err := surface.SavePNG(fs, name); err != nil {
					return err
				}
			}
			p.EndFrame()

			if p.Err() != nil {
				break
			}
		}

		st := p.Status()
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d ticks, %d frames presented, position %.2f/%.0f, %d frames at %.2f fps, display %.0f fps\n",
			path, ticks, presented, st.Position, st.Window, st.FrameCount, st.FrameRate, st.DisplayFPS)
		return p.Err()
	},
}
