//go:build !ios && !android && (amd64 || arm64)

package platform

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestIs64Bit(t *testing.T) {
	if !Is64Bit {
		t.Error("Platform should be 64-bit")
	}
}

func TestLibraryExtension(t *testing.T) {
	switch runtime.GOOS {
	case "darwin":
		if LibraryExtension != ".dylib" {
			t.Errorf("expected .dylib, got %s", LibraryExtension)
		}
	case "windows":
		if LibraryExtension != ".dll" {
			t.Errorf("expected .dll, got %s", LibraryExtension)
		}
	default:
		if LibraryExtension != ".so" {
			t.Errorf("expected .so, got %s", LibraryExtension)
		}
	}
}

func TestFormatLibraryName(t *testing.T) {
	tests := []struct {
		name    string
		version int
		want    map[string]string
	}{
		{"avcodec", 60, map[string]string{
			"linux":   "libavcodec.so.60",
			"darwin":  "libavcodec.60.dylib",
			"windows": "avcodec-60.dll",
		}},
		{"swscale", 0, map[string]string{
			"linux":   "libswscale.so",
			"darwin":  "libswscale.dylib",
			"windows": "swscale.dll",
		}},
	}

	for _, tt := range tests {
		want, ok := tt.want[runtime.GOOS]
		if !ok {
			continue
		}
		if got := FormatLibraryName(tt.name, tt.version); got != want {
			t.Errorf("FormatLibraryName(%q, %d) = %q, want %q", tt.name, tt.version, got, want)
		}
	}
}

func TestSearchPathsHonorsEnvironment(t *testing.T) {
	var env string
	switch runtime.GOOS {
	case "linux", "freebsd":
		env = "LD_LIBRARY_PATH"
	case "darwin":
		env = "DYLD_LIBRARY_PATH"
	default:
		t.Skipf("no library path variable on %s", runtime.GOOS)
	}

	dir := filepath.Join(t.TempDir(), "ffmpeg-libs")
	t.Setenv(env, dir)

	paths := SearchPaths()
	if len(paths) == 0 || paths[0] != dir {
		t.Fatalf("expected %s first in search paths, got %v", dir, paths)
	}
}

func TestOpenGLLibraryNames(t *testing.T) {
	names := OpenGLLibraryNames()
	if len(names) == 0 {
		t.Fatal("no OpenGL library candidates")
	}
	if runtime.GOOS == "linux" && !strings.HasPrefix(names[0], "libGL") {
		t.Errorf("expected libGL first on linux, got %s", names[0])
	}
}
