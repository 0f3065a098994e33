// Package blp binds the native BLP texture library.
//
// The library exposes three C entry points:
//
//	int  blp_load_from_file(const char *path, BlpImage *out);
//	void blp_free_image(BlpImage *img);
//	int  blp_encode_file_to_blp(const char *src, const char *dst, int quality, uint32_t mip_count);
//
// where BlpImage is {uint32 width; uint32 height; uint8 *data; uint32 data_len}
// and data is tightly packed RGBA owned by the library until freed. Native
// copies the pixels into Go memory and frees the library buffer before Load
// returns, so callers never see library-owned memory.
package blp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Library is the set of native operations the codec layer relies on.
type Library interface {
	// Load decodes the BLP file at path into tightly packed RGBA.
	Load(path string) (Image, error)
	// Encode reads the standard-format image at src and writes a BLP to dst.
	Encode(src, dst string, quality int, mipCount uint32) error
	Close() error
}

// Image is a decoded BLP texture in caller-owned memory.
type Image struct {
	Width  uint32
	Height uint32
	Pix    []byte
}

var (
	ErrLibraryNotFound = errors.New("blp: native library not found")
	ErrBadPixelData    = errors.New("blp: pixel data length does not match dimensions")
	ErrClosed          = errors.New("blp: library closed")
)

// CodecError reports a failed native call. Path is kept for callers; the
// message leaves it out since wrapping errors already name the file.
type CodecError struct {
	Op   string
	Path string
	Code int
	Err  error
}

func (e *CodecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("native %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("native %s returned error %d", e.Op, e.Code)
}

func (e *CodecError) Unwrap() error { return e.Err }

// DefaultLibraryName is the platform file name of the native library.
func DefaultLibraryName() string {
	switch runtime.GOOS {
	case "windows":
		return "blp.dll"
	case "darwin":
		return "libblp.dylib"
	default:
		return "libblp.so"
	}
}

// DefaultLibraryPath returns DefaultLibraryName next to the running executable.
func DefaultLibraryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exe), DefaultLibraryName()), nil
}

func locate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrLibraryNotFound, path)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrLibraryNotFound, path)
	}
	return nil
}
