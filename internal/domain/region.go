package domain

import (
	"fmt"
	"strconv"
)

// Region is a rectangular selection on a single PDF page.
// The zero value is not a valid region; use NewRegion.
type Region struct {
	x        int
	y        int
	width    int
	height   int
	sequence int
}

// NewRegion validates and returns a Region.
// Coordinates and the sequence number must be non-negative, width and height
// strictly positive.
func NewRegion(x, y, width, height, sequence int) (Region, error) {
	switch {
	case x < 0:
		return Region{}, fmt.Errorf("%w: negative x %d", ErrInvalidRegion, x)
	case y < 0:
		return Region{}, fmt.Errorf("%w: negative y %d", ErrInvalidRegion, y)
	case width <= 0:
		return Region{}, fmt.Errorf("%w: non-positive width %d", ErrInvalidRegion, width)
	case height <= 0:
		return Region{}, fmt.Errorf("%w: non-positive height %d", ErrInvalidRegion, height)
	case sequence < 0:
		return Region{}, fmt.Errorf("%w: negative sequence number %d", ErrInvalidRegion, sequence)
	}
	return Region{x: x, y: y, width: width, height: height, sequence: sequence}, nil
}

// MustRegion is like NewRegion but panics on invalid input.
// Intended for tests and constant tables.
func MustRegion(x, y, width, height, sequence int) Region {
	r, err := NewRegion(x, y, width, height, sequence)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Region) X() int              { return r.x }
func (r Region) Y() int              { return r.y }
func (r Region) Width() int          { return r.width }
func (r Region) Height() int         { return r.height }
func (r Region) SequenceNumber() int { return r.sequence }

// MaxX returns the right edge of the region.
func (r Region) MaxX() int { return r.x + r.width }

// MaxY returns the bottom edge of the region.
func (r Region) MaxY() int { return r.y + r.height }

// ClipArg formats the region as the "x0,y0,x1,y1" token expected by the
// extraction script.
func (r Region) ClipArg() string {
	return strconv.Itoa(r.x) + "," + strconv.Itoa(r.y) + "," +
		strconv.Itoa(r.MaxX()) + "," + strconv.Itoa(r.MaxY())
}

// String implements fmt.Stringer.
func (r Region) String() string {
	return fmt.Sprintf("Region[seq=%d %s]", r.sequence, r.ClipArg())
}
