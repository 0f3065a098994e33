package codec

import (
	"errors"
	"fmt"

	"texnorm/internal/blp"
	"texnorm/pkg/texutil"
)

var errNotBLP = errors.New("missing BLP magic")

// BLP decodes through the native library. The library only encodes from an
// image file on disk, so EncodeFile takes the path of an intermediate image
// rather than a PixelBuffer.
type BLP struct {
	lib blp.Library
}

func NewBLP(lib blp.Library) *BLP {
	return &BLP{lib: lib}
}

func (c *BLP) Load(path string) (PixelBuffer, error) {
	ok, err := texutil.SniffBLP(path)
	if err != nil {
		return PixelBuffer{}, &Error{Kind: texutil.KindBLP, Op: "load", Path: path, Err: err}
	}
	if !ok {
		return PixelBuffer{}, &Error{Kind: texutil.KindBLP, Op: "load", Path: path, Err: errNotBLP}
	}

	img, err := c.lib.Load(path)
	if err != nil {
		return PixelBuffer{}, &Error{Kind: texutil.KindBLP, Op: "load", Path: path, Err: err}
	}
	buf := PixelBuffer{Width: img.Width, Height: img.Height, Pix: img.Pix}
	if err := buf.Validate(); err != nil {
		return PixelBuffer{}, &Error{Kind: texutil.KindBLP, Op: "load", Path: path, Err: err}
	}
	return buf, nil
}

// EncodeFile converts the image at src into a BLP at dst.
func (c *BLP) EncodeFile(src, dst string, quality int, mipCount uint32) error {
	if err := c.lib.Encode(src, dst, quality, mipCount); err != nil {
		return &Error{Kind: texutil.KindBLP, Op: "encode", Path: dst, Err: fmt.Errorf("from %s: %w", src, err)}
	}
	return nil
}
