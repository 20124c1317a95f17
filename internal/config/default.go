package config

import (
	"strings"

	"github.com/obinnaokechukwu/ffscrub/convert"
)

// Field is one configuration key with its default value.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Env returns the environment variable that overrides the field.
func (f *Field) Env() string {
	return strings.ToUpper(EnvPrefix + "_" + EnvKeyReplacer.Replace(f.Key))
}

// Default holds every configuration field by key.
var Default = make(map[string]Field)

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
	}

	register(ConverterExecutable, "/echocardiography-ui/packages/DICOMTestExe/DICOMTestExe", "Path of the conversion tool")
	register(ConverterMode, "A2C", "View mode passed to the conversion tool")
	register(ConverterOutput, convert.DefaultOutput, "Template of the converted video path.\nFields: ExeDir, Stem, Mode, Input")
	register(ConverterFilters, []string{".dcm"}, "Extensions offered by the file dialog")
	register(PlayerWrapWindow, 0.0, "Loop length in frames. 0 uses the stream's frame count")
	register(PlayerReopenEachTick, false, "Reopen the video and decode from its start on every tick")
	register(PlayerFit, "stretch", "How frames fill the view: stretch or contain")
	register(PlayerDisplayFPS, 60.0, "Display rate assumed by headless playback")
	register(LogLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(LogJSON, false, "Use json format for logs")
	register(LogFile, "", "Write logs to this file instead of stderr")
	register(FFmpegLogLevel, "error", "FFmpeg's own log level: quiet, panic, fatal, error, warning, info, verbose, debug, trace")
}
