//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"io"
	"os"

	"github.com/obinnaokechukwu/ffscrub"
	"github.com/obinnaokechukwu/ffscrub/internal/config"
	"github.com/obinnaokechukwu/ffscrub/internal/logging"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	fs = afero.NewOsFs()

	cfg       *config.Config
	logger    = logrus.StandardLogger()
	logCloser io.Closer
)

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: panic, fatal, error, warn, info, debug, trace")
	lo.Must0(viper.BindPFlag(config.LogLevel, rootCmd.PersistentFlags().Lookup("log-level")))

	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	lo.Must0(viper.BindPFlag(config.LogJSON, rootCmd.PersistentFlags().Lookup("log-json")))

	rootCmd.PersistentFlags().String("log-file", "", "Append logs to this file instead of stderr")
	lo.Must0(viper.BindPFlag(config.LogFile, rootCmd.PersistentFlags().Lookup("log-file")))

	rootCmd.PersistentFlags().String("ffmpeg-log-level", "", "FFmpeg's own log level")
	lo.Must0(viper.BindPFlag(config.FFmpegLogLevel, rootCmd.PersistentFlags().Lookup("ffmpeg-log-level")))
}

var rootCmd = &cobra.Command{
	Use:           "ffscrub",
	Short:         "Frame-accurate video decoding and scrubbing with FFmpeg",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}

		logger, logCloser, err = logging.Setup(logging.Config{
			Level: cfg.Log.Level,
			JSON:  cfg.Log.JSON,
			File:  cfg.Log.File,
		}, fs, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		if lvl, ok := ffscrub.ParseLogLevel(cfg.FFmpegLogLevel); ok {
			if err := ffscrub.SetLogLevel(lvl); err != nil {
				logger.WithError(err).Debug("ffmpeg log level not applied")
			}
		}
		if err := ffscrub.RouteLogs(logger); err != nil {
			logger.WithError(err).Debug("ffmpeg logs stay on stderr")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("command failed")
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
