// Package codec adapts the BLP and TGA formats to a common RGBA pixel buffer.
package codec

import (
	"fmt"

	"texnorm/internal/blp"
	"texnorm/pkg/texutil"
)

// Loader decodes a texture file into a PixelBuffer.
type Loader interface {
	Load(path string) (PixelBuffer, error)
}

// Error is returned for any decode or encode failure.
type Error struct {
	Kind texutil.Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Set holds one codec per supported kind.
type Set struct {
	BLP *BLP
	TGA *TGA
}

// NewSet builds the codecs for a loaded native BLP library.
func NewSet(lib blp.Library) Set {
	return Set{BLP: NewBLP(lib), TGA: NewTGA()}
}

// Loader returns the decoder for kind.
func (s Set) Loader(kind texutil.Kind) (Loader, error) {
	switch kind {
	case texutil.KindBLP:
		return s.BLP, nil
	case texutil.KindTGA:
		return s.TGA, nil
	default:
		return nil, fmt.Errorf("unsupported texture kind %q", kind)
	}
}
