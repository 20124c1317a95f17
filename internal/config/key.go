package config

// Converter keys configure the external conversion tool.
const (
	ConverterExecutable = "converter.executable"
	ConverterMode       = "converter.mode"
	ConverterOutput     = "converter.output"
	ConverterFilters    = "converter.filters"
)

// Player keys configure playback.
const (
	PlayerWrapWindow     = "player.wrap_window"
	PlayerReopenEachTick = "player.reopen_each_tick"
	PlayerFit            = "player.fit"
	PlayerDisplayFPS     = "player.display_fps"
)

// Log keys configure logging.
const (
	LogLevel = "log.level"
	LogJSON  = "log.json"
	LogFile  = "log.file"
)

// FFmpegLogLevel is the level passed to av_log_set_level.
const FFmpegLogLevel = "ffmpeg.log_level"
