// Package convert normalizes a single texture file: it loads the image,
// applies the sizing policy and either copies the file unchanged or writes a
// resized re-encode in the same format.
package convert

import (
	"errors"
	"fmt"
	"os"

	"texnorm/internal/codec"
	"texnorm/internal/sizing"
	"texnorm/pkg/texutil"
)

// BLP re-encodes always use these settings, whatever the source used.
const (
	Quality  = 100
	MipCount = 1
)

// Warner receives non-fatal problems such as a temp file that could not be
// removed.
type Warner interface {
	Warn(format string, args ...any)
}

// Outcome describes what happened to one file.
type Outcome struct {
	Resized  bool
	Original sizing.Dimensions
	Final    sizing.Dimensions
	Reasons  []string
}

// ConversionError wraps any failure converting Src.
type ConversionError struct {
	Src string
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Src, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

var errZeroMax = errors.New("maximum dimension must be positive")

// Converter holds no per-file state; one instance may serve many goroutines
// as long as its codecs and Warner do.
type Converter struct {
	codecs  codec.Set
	filter  codec.Filter
	warn    Warner
	tempDir string
}

type Option func(*Converter)

// WithFilter selects the resampling filter. The default is Lanczos.
func WithFilter(f codec.Filter) Option {
	return func(c *Converter) { c.filter = f }
}

// WithTempDir sets where BLP intermediate files are created. The default is
// the system temp directory.
func WithTempDir(dir string) Option {
	return func(c *Converter) { c.tempDir = dir }
}

func New(codecs codec.Set, warn Warner, opts ...Option) *Converter {
	c := &Converter{codecs: codecs, warn: warn}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert writes the normalized form of src to dst. The parent directory of
// dst must exist. src is never modified.
func (c *Converter) Convert(src, dst string, maxDim uint32) (Outcome, error) {
	out, err := c.convert(src, dst, maxDim)
	if err != nil {
		return out, &ConversionError{Src: src, Err: err}
	}
	return out, nil
}

func (c *Converter) convert(src, dst string, maxDim uint32) (Outcome, error) {
	if maxDim == 0 {
		return Outcome{}, errZeroMax
	}

	kind := texutil.KindFromPath(src)
	loader, err := c.codecs.Loader(kind)
	if err != nil {
		return Outcome{}, err
	}

	buf, err := loader.Load(src)
	if err != nil {
		return Outcome{}, err
	}

	orig := buf.Dimensions()
	decision := sizing.Decide(orig.Width, orig.Height, maxDim)
	if !decision.Needed {
		if err := copyFile(src, dst); err != nil {
			return Outcome{}, err
		}
		return Outcome{Original: orig, Final: orig}, nil
	}

	resized := codec.Resize(buf, decision.Target, c.filter)

	switch kind {
	case texutil.KindBLP:
		err = c.encodeBLP(resized, dst)
	case texutil.KindTGA:
		err = c.codecs.TGA.Encode(resized, dst)
	default:
		err = fmt.Errorf("unsupported texture kind %q", kind)
	}
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Resized:  true,
		Original: orig,
		Final:    decision.Target,
		Reasons:  decision.Reasons,
	}, nil
}

// encodeBLP routes buf through a lossless intermediate file because the
// native encoder only reads from disk. The intermediate is always removed.
func (c *Converter) encodeBLP(buf codec.PixelBuffer, dst string) error {
	scratch, err := codec.CreateScratch(c.tempDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(scratch); err != nil && !errors.Is(err, os.ErrNotExist) {
			if c.warn != nil {
				c.warn.Warn("failed to remove temp file: %s: %v", scratch, err)
			}
		}
	}()

	if err := codec.WriteIntermediate(buf, scratch); err != nil {
		return err
	}
	return c.codecs.BLP.EncodeFile(scratch, dst, Quality, MipCount)
}
