//go:build !ios && !android && (amd64 || arm64)

// Package bindings handles loading the FFmpeg and OpenGL shared libraries
// that ffscrub calls through purego.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/ffscrub/internal/platform"
)

// ErrNotLoaded is returned when FFmpeg functions are called before Load().
var ErrNotLoaded = errors.New("ffscrub: FFmpeg libraries not loaded; call ffscrub.Init() first")

// ErrLibraryNotFound is returned when a required shared library cannot be found.
var ErrLibraryNotFound = errors.New("ffscrub: shared library not found")

// Library versions tried, newest first.
var (
	avutilVersions   = []int{60, 59, 58, 57, 56}
	avcodecVersions  = []int{62, 61, 60, 59, 58}
	avformatVersions = []int{62, 61, 60, 59, 58}
	swscaleVersions  = []int{9, 8, 7, 6, 5}
)

// Library handles
var (
	libAVUtil   uintptr
	libAVCodec  uintptr
	libAVFormat uintptr
	libSWScale  uintptr
	libFFShim   uintptr

	loaded   bool
	loadOnce sync.Once
	loadErr  error

	libGL  uintptr
	glOnce sync.Once
	glErr  error
)

var (
	avutilVersion   func() uint32
	avcodecVersion  func() uint32
	avformatVersion func() uint32
	swscaleVersion  func() uint32
)

// IsLoaded returns true if FFmpeg libraries have been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// Load loads the FFmpeg libraries. It is safe to call multiple times;
// the first result is cached.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad() error {
	// avutil first; the others resolve symbols against it.
	var err error

	libAVUtil, err = loadLibrary("avutil", avutilVersions)
	if err != nil {
		return fmt.Errorf("loading libavutil: %w", err)
	}

	libAVCodec, err = loadLibrary("avcodec", avcodecVersions)
	if err != nil {
		return fmt.Errorf("loading libavcodec: %w", err)
	}

	libAVFormat, err = loadLibrary("avformat", avformatVersions)
	if err != nil {
		return fmt.Errorf("loading libavformat: %w", err)
	}

	libSWScale, err = loadLibrary("swscale", swscaleVersions)
	if err != nil {
		return fmt.Errorf("loading libswscale: %w", err)
	}

	// Optional; only needed to route FFmpeg's log output.
	libFFShim, _ = loadLibrary("ffshim", []int{0})

	purego.RegisterLibFunc(&avutilVersion, libAVUtil, "avutil_version")
	purego.RegisterLibFunc(&avcodecVersion, libAVCodec, "avcodec_version")
	purego.RegisterLibFunc(&avformatVersion, libAVFormat, "avformat_version")
	purego.RegisterLibFunc(&swscaleVersion, libSWScale, "swscale_version")

	return nil
}

// loadLibrary attempts to load a library by trying versioned names.
func loadLibrary(name string, versions []int) (uintptr, error) {
	for _, searchPath := range platform.SearchPaths() {
		for _, ver := range versions {
			fullPath := filepath.Join(searchPath, platform.FormatLibraryName(name, ver))
			if lib, err := tryOpen(fullPath); err == nil {
				return lib, nil
			}
		}
		fullPath := filepath.Join(searchPath, platform.FormatLibraryName(name, 0))
		if lib, err := tryOpen(fullPath); err == nil {
			return lib, nil
		}
	}

	// Let the dynamic loader search.
	for _, ver := range versions {
		if lib, err := tryOpen(platform.FormatLibraryName(name, ver)); err == nil {
			return lib, nil
		}
	}
	if lib, err := tryOpen(platform.FormatLibraryName(name, 0)); err == nil {
		return lib, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// tryOpen opens a library with RTLD_NOW | RTLD_GLOBAL.
// FFmpeg libraries reference each other's symbols, so RTLD_GLOBAL is required.
func tryOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// FindLibrary searches for a library and returns its full path.
// Used by diagnostics.
func FindLibrary(name string) (string, error) {
	versions := map[string][]int{
		"avutil":   avutilVersions,
		"avcodec":  avcodecVersions,
		"avformat": avformatVersions,
		"swscale":  swscaleVersions,
	}[name]

	for _, searchPath := range platform.SearchPaths() {
		for _, ver := range append(versions, 0) {
			fullPath := filepath.Join(searchPath, platform.FormatLibraryName(name, ver))
			if _, err := os.Stat(fullPath); err == nil {
				return fullPath, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// LoadGL loads the system OpenGL library. It does not require FFmpeg and
// its result is cached independently of Load.
func LoadGL() (uintptr, error) {
	glOnce.Do(func() {
		for _, name := range platform.OpenGLLibraryNames() {
			lib, err := tryOpen(name)
			if err == nil {
				libGL = lib
				return
			}
		}
		glErr = fmt.Errorf("%w: OpenGL", ErrLibraryNotFound)
	})
	return libGL, glErr
}

// AVUtilVersion returns the avutil library version, or 0 if not loaded.
func AVUtilVersion() uint32 {
	if !loaded || avutilVersion == nil {
		return 0
	}
	return avutilVersion()
}

// AVCodecVersion returns the avcodec library version, or 0 if not loaded.
func AVCodecVersion() uint32 {
	if !loaded || avcodecVersion == nil {
		return 0
	}
	return avcodecVersion()
}

// AVFormatVersion returns the avformat library version, or 0 if not loaded.
func AVFormatVersion() uint32 {
	if !loaded || avformatVersion == nil {
		return 0
	}
	return avformatVersion()
}

// SWScaleVersion returns the swscale library version, or 0 if not loaded.
func SWScaleVersion() uint32 {
	if !loaded || swscaleVersion == nil {
		return 0
	}
	return swscaleVersion()
}

// AVFormatMajor returns the major version of the loaded libavformat.
// Struct layouts that moved between releases are keyed on it.
func AVFormatMajor() int {
	return int(AVFormatVersion() >> 16)
}

// LibAVUtil returns the avutil library handle.
func LibAVUtil() uintptr {
	return libAVUtil
}

// LibAVCodec returns the avcodec library handle.
func LibAVCodec() uintptr {
	return libAVCodec
}

// LibAVFormat returns the avformat library handle.
func LibAVFormat() uintptr {
	return libAVFormat
}

// LibSWScale returns the swscale library handle.
func LibSWScale() uintptr {
	return libSWScale
}

// LibFFShim returns the ffshim library handle.
func LibFFShim() uintptr {
	return libFFShim
}

// HasFFShim returns true if the ffshim library is available.
func HasFFShim() bool {
	return libFFShim != 0
}
