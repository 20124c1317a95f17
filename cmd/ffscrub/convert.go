//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"fmt"

	"github.com/obinnaokechukwu/ffscrub/convert"
	"github.com/obinnaokechukwu/ffscrub/internal/config"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	convertCmd.Flags().String("executable", "", "Conversion tool to run")
	lo.Must0(viper.BindPFlag(config.ConverterExecutable, convertCmd.Flags().Lookup("executable")))

	convertCmd.Flags().String("mode", "", "View mode passed to the tool")
	lo.Must0(viper.BindPFlag(config.ConverterMode, convertCmd.Flags().Lookup("mode")))

	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <file.dcm>",
	Short: "Run the external converter and print the path of the produced video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newConverter().Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func newConverter() *convert.Converter {
	return &convert.Converter{
		Executable: cfg.Converter.Executable,
		Mode:       cfg.Converter.Mode,
		Output:     cfg.Converter.Output,
		Filters:    cfg.Converter.Filters,
		Fs:         fs,
		Logger:     logger,
	}
}
