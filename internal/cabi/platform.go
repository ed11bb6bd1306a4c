package cabi

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// PlatformTag returns the FMI 2.0 binaries/<platform> directory name for the
// running target, e.g. "linux64", "win32", "darwin64".
func PlatformTag() (string, error) {
	var os string
	switch runtime.GOOS {
	case "linux":
		os = "linux"
	case "windows":
		os = "win"
	case "darwin":
		os = "darwin"
	default:
		return "", fmt.Errorf("cabi: unsupported GOOS %q", runtime.GOOS)
	}

	bits := "64"
	switch runtime.GOARCH {
	case "386", "arm":
		bits = "32"
	case "amd64", "arm64":
		bits = "64"
	default:
		return "", fmt.Errorf("cabi: unsupported GOARCH %q", runtime.GOARCH)
	}

	if os == "darwin" {
		// FMI 2.0 only defines darwin64; there is no darwin32 platform tag.
		return "darwin64", nil
	}
	return os + bits, nil
}

// SharedLibraryExt returns the platform's shared library extension,
// including the leading dot.
func SharedLibraryExt() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return ".so", nil
	case "windows":
		return ".dll", nil
	case "darwin":
		return ".dylib", nil
	default:
		return "", fmt.Errorf("cabi: unsupported GOOS %q", runtime.GOOS)
	}
}

// BinaryPath assembles the path to the platform shared object inside an
// unpacked FMU directory, per spec.md §4.2:
// binaries/<platform>/<modelIdentifier><ext>.
func BinaryPath(resourceDir, modelIdentifier string) (string, error) {
	platform, err := PlatformTag()
	if err != nil {
		return "", err
	}
	ext, err := SharedLibraryExt()
	if err != nil {
		return "", err
	}
	return filepath.Join(resourceDir, "binaries", platform, modelIdentifier+ext), nil
}
