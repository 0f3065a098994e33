// Package blptest provides an in-process stand-in for the native BLP library.
//
// Files produced by Library are a BLP2 magic, a "FAKE" marker and a PNG
// payload, which is enough for round-trip tests of everything above the
// native boundary.
//
// The payload is always decoded with png.Decode. github.com/ftrvxmtrx/tga
// registers an empty magic with the image package, so image.Decode (and
// imaging.Decode/Open) claims every stream as TGA in any binary that links it.
package blptest

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"sync"

	"github.com/disintegration/imaging"

	"texnorm/internal/blp"
)

var magic = []byte("BLP2FAKE")

// Native error codes returned by Library.
const (
	CodeOpen     = 1
	CodeBadMagic = 2
	CodeDecode   = 3
	CodeEncode   = 4
)

// EncodeCall records the arguments of one Encode invocation.
type EncodeCall struct {
	Src       string
	Dst       string
	Quality   int
	MipCount  uint32
	SrcExists bool
}

// Library implements blp.Library in memory.
type Library struct {
	// EncodeCode, when non-zero, is returned by every Encode call.
	EncodeCode int
	// OnEncode, when set, runs after each successful Encode.
	OnEncode func(EncodeCall)

	mu      sync.Mutex
	loads   []string
	encodes []EncodeCall
	closed  bool
}

var _ blp.Library = (*Library)(nil)

func New() *Library { return &Library{} }

func (l *Library) Load(path string) (blp.Image, error) {
	l.mu.Lock()
	l.loads = append(l.loads, path)
	l.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return blp.Image{}, &blp.CodecError{Op: "load", Path: path, Code: CodeOpen}
	}
	if !bytes.HasPrefix(data, magic) {
		return blp.Image{}, &blp.CodecError{Op: "load", Path: path, Code: CodeBadMagic}
	}
	img, err := png.Decode(bytes.NewReader(data[len(magic):]))
	if err != nil {
		return blp.Image{}, &blp.CodecError{Op: "load", Path: path, Code: CodeDecode}
	}
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	return blp.Image{Width: uint32(b.Dx()), Height: uint32(b.Dy()), Pix: nrgba.Pix}, nil
}

func (l *Library) Encode(src, dst string, quality int, mipCount uint32) error {
	call := EncodeCall{Src: src, Dst: dst, Quality: quality, MipCount: mipCount}
	payload, err := os.ReadFile(src)
	call.SrcExists = err == nil

	l.mu.Lock()
	l.encodes = append(l.encodes, call)
	code := l.EncodeCode
	hook := l.OnEncode
	l.mu.Unlock()

	if code != 0 {
		return &blp.CodecError{Op: "encode", Path: dst, Code: code}
	}
	if err != nil {
		return &blp.CodecError{Op: "encode", Path: dst, Code: CodeOpen}
	}
	if _, err := png.Decode(bytes.NewReader(payload)); err != nil {
		return &blp.CodecError{Op: "encode", Path: dst, Code: CodeDecode}
	}
	out := append(append([]byte{}, magic...), payload...)
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return &blp.CodecError{Op: "encode", Path: dst, Code: CodeEncode}
	}
	if hook != nil {
		hook(call)
	}
	return nil
}

func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (l *Library) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Loads returns the paths passed to Load, in call order.
func (l *Library) Loads() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.loads...)
}

// Encodes returns the recorded Encode calls, in call order.
func (l *Library) Encodes() []EncodeCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]EncodeCall(nil), l.encodes...)
}

// WriteFile stores img at path in the fake BLP container.
func WriteFile(path string, img image.Image) error {
	var buf bytes.Buffer
	buf.Write(magic)
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Gradient returns a w x h NRGBA image with distinct pixel values.
func Gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i] = uint8(x * 255 / max(w-1, 1))
			img.Pix[i+1] = uint8(y * 255 / max(h-1, 1))
			img.Pix[i+2] = uint8((x + y) % 256)
			img.Pix[i+3] = 0xff
		}
	}
	return img
}
