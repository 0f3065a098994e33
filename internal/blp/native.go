package blp

import (
	"sync"
	"unsafe"
)

// cImage mirrors the library's BlpImage struct.
type cImage struct {
	Width   uint32
	Height  uint32
	Data    *byte
	DataLen uint32
}

// Native is a loaded native library. Calls are serialized since the library
// makes no thread-safety promises.
type Native struct {
	mu      sync.Mutex
	closed  bool
	release func() error

	loadFn   func(path string, img *cImage) int32
	freeFn   func(img *cImage)
	encodeFn func(src, dst string, quality int32, mipCount uint32) int32
}

// Open locates and loads the library at path and resolves its symbols.
func Open(path string) (*Native, error) {
	if err := locate(path); err != nil {
		return nil, err
	}
	n := &Native{}
	if err := n.bind(path); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Native) Load(path string) (Image, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return Image{}, &CodecError{Op: "load", Path: path, Err: ErrClosed}
	}

	var img cImage
	if rc := n.loadFn(path, &img); rc != 0 {
		return Image{}, &CodecError{Op: "load", Path: path, Code: int(rc)}
	}
	defer n.freeFn(&img)

	want := uint64(img.Width) * uint64(img.Height) * 4
	if img.Width == 0 || img.Height == 0 || img.Data == nil || uint64(img.DataLen) != want {
		return Image{}, &CodecError{Op: "load", Path: path, Err: ErrBadPixelData}
	}

	pix := make([]byte, img.DataLen)
	copy(pix, unsafe.Slice(img.Data, img.DataLen))
	return Image{Width: img.Width, Height: img.Height, Pix: pix}, nil
}

func (n *Native) Encode(src, dst string, quality int, mipCount uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return &CodecError{Op: "encode", Path: dst, Err: ErrClosed}
	}
	if rc := n.encodeFn(src, dst, int32(quality), mipCount); rc != 0 {
		return &CodecError{Op: "encode", Path: dst, Code: int(rc)}
	}
	return nil
}

// Close unloads the library. Further calls fail with ErrClosed.
func (n *Native) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	if n.release != nil {
		return n.release()
	}
	return nil
}
