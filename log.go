//go:build !ios && !android && (amd64 || arm64)

package ffscrub

import (
	"io"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/ffscrub/avutil"
	"github.com/obinnaokechukwu/ffscrub/internal/shim"
	"github.com/sirupsen/logrus"
)

// LogLevel represents FFmpeg log levels.
type LogLevel int32

// Log level constants matching FFmpeg's AV_LOG_* values.
const (
	LogQuiet   LogLevel = -8
	LogPanic   LogLevel = 0
	LogFatal   LogLevel = 8
	LogError   LogLevel = 16
	LogWarning LogLevel = 24
	LogInfo    LogLevel = 32
	LogVerbose LogLevel = 40
	LogDebug   LogLevel = 48
	LogTrace   LogLevel = 56
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch {
	case l <= LogQuiet:
		return "quiet"
	case l <= LogPanic:
		return "panic"
	case l <= LogFatal:
		return "fatal"
	case l <= LogError:
		return "error"
	case l <= LogWarning:
		return "warning"
	case l <= LogInfo:
		return "info"
	case l <= LogVerbose:
		return "verbose"
	case l <= LogDebug:
		return "debug"
	default:
		return "trace"
	}
}

// ParseLogLevel accepts the names returned by LogLevel.String.
func ParseLogLevel(s string) (LogLevel, bool) {
	for _, l := range []LogLevel{LogQuiet, LogPanic, LogFatal, LogError, LogWarning, LogInfo, LogVerbose, LogDebug, LogTrace} {
		if strings.EqualFold(s, l.String()) {
			return l, true
		}
	}
	return 0, false
}

// logrusLevel maps an FFmpeg level onto the closest logrus level.
// Panic and fatal are reported as errors; FFmpeg does not exit the process.
func (l LogLevel) logrusLevel() logrus.Level {
	switch {
	case l <= LogError:
		return logrus.ErrorLevel
	case l <= LogWarning:
		return logrus.WarnLevel
	case l <= LogInfo:
		return logrus.InfoLevel
	case l <= LogDebug:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

var (
	logMu       sync.Mutex
	logTarget   logrus.FieldLogger
	logCBHandle uintptr

	discard = newDiscardLogger()
)

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// SetLogLevel sets the FFmpeg log level.
// This requires the ffshim library to be available.
func SetLogLevel(level LogLevel) error {
	if err := shim.Load(); err != nil {
		return err
	}
	return shim.SetLogLevel(int32(level))
}

// RouteLogs sends FFmpeg's own log output to logger, one entry per line,
// tagged component=ffmpeg. Pass nil to restore FFmpeg's stderr logging.
// Requires the ffshim library; without it FFmpeg keeps logging to stderr
// and shim.ErrShimNotLoaded is returned.
func RouteLogs(logger logrus.FieldLogger) error {
	if err := shim.Load(); err != nil {
		return err
	}

	logMu.Lock()
	defer logMu.Unlock()

	if logger == nil {
		logTarget = nil
		return shim.SetLogCallback(0)
	}

	logTarget = logger.WithField("component", "ffmpeg")
	if logCBHandle == 0 {
		logCBHandle = purego.NewCallback(logTrampoline)
	}
	return shim.SetLogCallback(logCBHandle)
}

// LogRoutingAvailable returns true if FFmpeg logs can be routed.
func LogRoutingAvailable() bool {
	if err := shim.Load(); err != nil {
		return false
	}
	return shim.IsLoaded()
}

// logTrampoline is called by the shim as
// void (*)(void *avcl, int level, const char *msg).
func logTrampoline(_ purego.CDecl, _ unsafe.Pointer, level int32, msg *byte) {
	logMu.Lock()
	target := logTarget
	logMu.Unlock()

	if target == nil || msg == nil {
		return
	}
	emit(target, LogLevel(level), avutil.GoString(unsafe.Pointer(msg)))
}

// emit writes one FFmpeg message. FFmpeg terminates lines itself and
// sometimes sends empty fragments.
func emit(target logrus.FieldLogger, level LogLevel, msg string) {
	msg = strings.TrimRight(msg, "\r\n")
	if msg == "" {
		return
	}
	target.WithField("av_level", level.String()).Log(level.logrusLevel(), msg)
}
