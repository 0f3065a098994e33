// Package sizing decides whether a texture must be resized so that both of
// its dimensions are powers of two no larger than a configured maximum.
package sizing

import (
	"fmt"
	"math"
	"math/bits"
)

// Reasons, in the order Decide reports them.
const (
	ReasonWidthExceeds  = "width exceeds target"
	ReasonHeightExceeds = "height exceeds target"
	ReasonWidthNotPow2  = "width not power of two"
	ReasonHeightNotPow2 = "height not power of two"
)

// Dimensions is a width and height in pixels. Both must be positive.
type Dimensions struct {
	Width  uint32
	Height uint32
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Valid reports whether both sides are non-zero.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// Decision is the outcome of Decide.
type Decision struct {
	Needed  bool
	Target  Dimensions
	Reasons []string
}

// IsPow2 reports whether v is 2^n for some n >= 0.
func IsPow2(v uint32) bool {
	return v > 0 && v&(v-1) == 0
}

// FloorPow2 returns the largest power of two not greater than v, and 1 for
// v <= 1.
func FloorPow2(v uint32) uint32 {
	if v <= 1 {
		return 1
	}
	return 1 << (bits.Len32(v) - 1)
}

// Decide computes the target dimensions for a width x height image under
// maxDim. Both dimensions and maxDim must be positive.
//
// Oversized images are first scaled down proportionally, then each side is
// floored to a power of two. The exceeds reasons are taken from the original
// dimensions. When the result equals the input, Needed is false and no
// reasons are returned.
func Decide(width, height, maxDim uint32) Decision {
	orig := Dimensions{Width: width, Height: height}
	var reasons []string

	limit := float64(maxDim)
	scale := math.Min(math.Min(limit/float64(width), limit/float64(height)), 1.0)
	if width > maxDim {
		reasons = append(reasons, ReasonWidthExceeds)
	}
	if height > maxDim {
		reasons = append(reasons, ReasonHeightExceeds)
	}

	target := Dimensions{
		Width:  scaleSide(width, scale),
		Height: scaleSide(height, scale),
	}

	if !IsPow2(target.Width) {
		target.Width = FloorPow2(target.Width)
		reasons = append(reasons, ReasonWidthNotPow2)
	}
	if !IsPow2(target.Height) {
		target.Height = FloorPow2(target.Height)
		reasons = append(reasons, ReasonHeightNotPow2)
	}

	if target == orig {
		return Decision{Target: orig}
	}
	return Decision{Needed: true, Target: target, Reasons: reasons}
}

// scaleSide rounds half to even and never returns less than 1.
func scaleSide(v uint32, scale float64) uint32 {
	s := math.RoundToEven(float64(v) * scale)
	if s < 1 {
		return 1
	}
	return uint32(s)
}
