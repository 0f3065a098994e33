package codec

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"texnorm/internal/sizing"
)

// Filter selects the resampling kernel.
type Filter int

const (
	FilterLanczos Filter = iota
	FilterCatmullRom
)

func (f Filter) String() string {
	switch f {
	case FilterCatmullRom:
		return "catmullrom"
	default:
		return "lanczos"
	}
}

// ParseFilter maps a flag value to a Filter.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lanczos":
		return FilterLanczos, nil
	case "catmullrom", "bicubic":
		return FilterCatmullRom, nil
	default:
		return FilterLanczos, fmt.Errorf("unknown filter %q (want lanczos or catmullrom)", s)
	}
}

// Resize returns buf scaled to target. When the sizes already match, buf is
// returned unchanged.
func Resize(buf PixelBuffer, target sizing.Dimensions, filter Filter) PixelBuffer {
	if buf.Dimensions() == target {
		return buf
	}

	src := buf.Image()
	w, h := int(target.Width), int(target.Height)

	var dst *image.NRGBA
	switch filter {
	case FilterCatmullRom:
		dst = image.NewNRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	default:
		dst = imaging.Resize(src, w, h, imaging.Lanczos)
	}
	return FromImage(dst)
}
