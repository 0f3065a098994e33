package codec

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"texnorm/internal/sizing"
)

// PixelBuffer is tightly packed non-premultiplied RGBA, Width*Height*4 bytes.
type PixelBuffer struct {
	Width  uint32
	Height uint32
	Pix    []byte
}

// Dimensions returns the buffer size.
func (b PixelBuffer) Dimensions() sizing.Dimensions {
	return sizing.Dimensions{Width: b.Width, Height: b.Height}
}

// Validate checks the buffer length against its dimensions.
func (b PixelBuffer) Validate() error {
	if !b.Dimensions().Valid() {
		return fmt.Errorf("invalid dimensions %dx%d", b.Width, b.Height)
	}
	if want := uint64(b.Width) * uint64(b.Height) * 4; uint64(len(b.Pix)) != want {
		return fmt.Errorf("pixel buffer has %d bytes, want %d for %dx%d", len(b.Pix), want, b.Width, b.Height)
	}
	return nil
}

// Image wraps the buffer as an *image.NRGBA without copying.
func (b PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: int(b.Width) * 4,
		Rect:   image.Rect(0, 0, int(b.Width), int(b.Height)),
	}
}

// FromImage converts any image to a PixelBuffer.
func FromImage(img image.Image) PixelBuffer {
	var nrgba *image.NRGBA
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == n.Rect.Dx()*4 {
		nrgba = n
	} else {
		nrgba = imaging.Clone(img)
	}
	b := nrgba.Bounds()
	return PixelBuffer{Width: uint32(b.Dx()), Height: uint32(b.Dy()), Pix: nrgba.Pix}
}
