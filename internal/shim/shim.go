//go:build !ios && !android && (amd64 || arm64)

// Package shim provides bindings to the optional ffshim helper library.
//
// FFmpeg's log callback receives a va_list, which purego cannot unpack.
// The shim formats each message in C and forwards it to a plain
// (level, text) callback. Without the shim, FFmpeg logs go to stderr as
// usual and ffscrub's log routing is a no-op.
//
// The shim is searched for in:
//  1. FFSCRUB_SHIM_DIR
//  2. the FFmpeg library search paths
//  3. the executable directory
//  4. the current working directory
package shim

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/ffscrub/internal/platform"
)

// ErrShimNotLoaded is returned when shim functions are called but the shim is not available.
var ErrShimNotLoaded = errors.New("ffscrub: shim library not loaded; FFmpeg log routing unavailable")

// ErrShimNotFound is returned when the shim library cannot be found.
var ErrShimNotFound = errors.New("ffscrub: shim library not found")

// DirEnv names the environment variable that pins the shim directory.
const DirEnv = "FFSCRUB_SHIM_DIR"

var (
	libShim  uintptr
	loaded   bool
	loadErr  error
	loadMu   sync.Mutex
	shimPath string

	shimLogSetCallback func(cb uintptr)
	shimLogSetLevel    func(level int32)
)

// Load attempts to load the ffshim library. A missing shim is not an
// error; LoadError reports why it was not loaded.
func Load() error {
	loadMu.Lock()
	defer loadMu.Unlock()

	if loaded || loadErr != nil {
		return nil
	}

	path, err := findShimLibrary()
	if err != nil {
		loadErr = err
		return nil
	}

	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		loadErr = fmt.Errorf("failed to load shim at %s: %w", path, err)
		return nil
	}

	libShim = lib
	shimPath = path
	registerOptionalLibFunc(&shimLogSetCallback, libShim, "ffshim_log_set_callback")
	registerOptionalLibFunc(&shimLogSetLevel, libShim, "ffshim_log_set_level")
	loaded = true
	return nil
}

// IsLoaded returns true if the shim library was successfully loaded.
func IsLoaded() bool {
	loadMu.Lock()
	defer loadMu.Unlock()
	return loaded
}

// LoadError returns why the shim failed to load, or nil.
func LoadError() error {
	loadMu.Lock()
	defer loadMu.Unlock()
	return loadErr
}

// Status returns a human-readable status of the shim library.
func Status() string {
	loadMu.Lock()
	defer loadMu.Unlock()

	if loaded {
		return fmt.Sprintf("loaded from %s", shimPath)
	}
	if loadErr != nil {
		return fmt.Sprintf("not loaded: %s", loadErr)
	}
	return "not loaded (Load() not called)"
}

// ExpectedLibraryName returns the expected shim library filename for the current platform.
func ExpectedLibraryName() string {
	switch runtime.GOOS {
	case "darwin":
		return "libffshim.dylib"
	case "windows":
		return "ffshim.dll"
	default:
		return "libffshim.so"
	}
}

func registerOptionalLibFunc(fptr any, handle uintptr, name string) {
	defer func() {
		_ = recover() // purego.RegisterLibFunc panics if symbol is missing
	}()
	purego.RegisterLibFunc(fptr, handle, name)
}

// SetLogCallback installs cb as FFmpeg's log callback.
// cb is a purego callback created with purego.NewCallback.
func SetLogCallback(cb uintptr) error {
	loadMu.Lock()
	defer loadMu.Unlock()
	if !loaded {
		return ErrShimNotLoaded
	}
	if shimLogSetCallback == nil {
		return errors.New("ffscrub: ffshim_log_set_callback not available in shim")
	}
	shimLogSetCallback(cb)
	return nil
}

// SetLogLevel sets the FFmpeg log level via the shim.
func SetLogLevel(level int32) error {
	loadMu.Lock()
	defer loadMu.Unlock()
	if !loaded {
		return ErrShimNotLoaded
	}
	if shimLogSetLevel == nil {
		return errors.New("ffscrub: ffshim_log_set_level not available in shim")
	}
	shimLogSetLevel(level)
	return nil
}

// findShimLibrary looks for the shim library in standard locations.
func findShimLibrary() (string, error) {
	name := ExpectedLibraryName()

	if dir := os.Getenv(DirEnv); dir != "" {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		return "", fmt.Errorf("%w: %s=%s does not contain %s", ErrShimNotFound, DirEnv, dir, name)
	}

	searchPaths := platform.SearchPaths()
	if exe, err := os.Executable(); err == nil {
		searchPaths = append(searchPaths, filepath.Dir(exe))
	}
	if cwd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, cwd)
	}

	for _, dir := range searchPaths {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: looked for %s in %d locations; set %s",
		ErrShimNotFound, name, len(searchPaths), DirEnv)
}
