package codec

import (
	"bufio"
	"os"

	"github.com/ftrvxmtrx/tga"

	"texnorm/pkg/texutil"
)

// TGA decodes and encodes Truevision TGA files in process.
type TGA struct{}

func NewTGA() *TGA { return &TGA{} }

func (c *TGA) Load(path string) (PixelBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return PixelBuffer{}, &Error{Kind: texutil.KindTGA, Op: "load", Path: path, Err: err}
	}
	defer f.Close()

	img, err := tga.Decode(bufio.NewReader(f))
	if err != nil {
		return PixelBuffer{}, &Error{Kind: texutil.KindTGA, Op: "load", Path: path, Err: err}
	}
	buf := FromImage(img)
	if err := buf.Validate(); err != nil {
		return PixelBuffer{}, &Error{Kind: texutil.KindTGA, Op: "load", Path: path, Err: err}
	}
	return buf, nil
}

// Encode writes buf to dst. A partially written dst is removed on failure.
func (c *TGA) Encode(buf PixelBuffer, dst string) error {
	if err := buf.Validate(); err != nil {
		return &Error{Kind: texutil.KindTGA, Op: "encode", Path: dst, Err: err}
	}
	if err := writeFile(dst, func(w *bufio.Writer) error {
		return tga.Encode(w, buf.Image())
	}); err != nil {
		return &Error{Kind: texutil.KindTGA, Op: "encode", Path: dst, Err: err}
	}
	return nil
}

func writeFile(path string, encode func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := encode(bw); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
