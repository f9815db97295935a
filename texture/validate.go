package texture

import (
	"fmt"
	"math/bits"

	"github.com/gogpu/gputypes"
)

// MaxSize is the largest width or height the device can sample.
const MaxSize = 512

// check runs the structural rules on t and returns its square geometry.
//
// Rules: the texture is 2D, its format is supported, each dimension of level
// 0 is a power of two no larger than maxSize, every level carries enough
// pixel data and, when mipmapped, each level halves the previous one (a
// dimension already at 1 stays at 1) down to exactly 1x1.
func check(t *Texture, maxSize int) (Geometry, error) {
	if t.dimension != gputypes.TextureDimension2D {
		return Geometry{}, fmt.Errorf("%w: dimension %d is not 2D", ErrInvalidTexture, t.dimension)
	}
	if !t.format.IsValid() {
		return Geometry{}, fmt.Errorf("%w: unsupported format %s", ErrInvalidTexture, t.format)
	}
	if len(t.levels) == 0 {
		return Geometry{}, fmt.Errorf("%w: no levels", ErrInvalidTexture)
	}

	base := t.levels[0]
	if err := checkSize(base, 0, maxSize); err != nil {
		return Geometry{}, err
	}
	bpp := t.format.Info().BytesPerPixel
	if err := checkData(base, 0, bpp); err != nil {
		return Geometry{}, err
	}

	maxDim := max(base.Width, base.Height)
	g := Geometry{
		UFactor: maxDim / base.Width,
		VFactor: maxDim / base.Height,
		MaxDim:  maxDim,
		Levels:  1,
	}
	if !t.Mipmapped() {
		return g, nil
	}

	want := bits.Len(uint(maxDim))
	if len(t.levels) < want {
		return Geometry{}, fmt.Errorf("%w: mip chain has %d levels, want %d", ErrInvalidTexture, len(t.levels), want)
	}
	if len(t.levels) > want {
		return Geometry{}, fmt.Errorf("%w: mip chain continues past 1x1", ErrInvalidTexture)
	}
	prev := base
	for k := 1; k < want; k++ {
		l := t.levels[k]
		w, h := max(1, prev.Width/2), max(1, prev.Height/2)
		if l.Width != w || l.Height != h {
			return Geometry{}, fmt.Errorf("%w: level %d is %dx%d, want %dx%d", ErrInvalidTexture, k, l.Width, l.Height, w, h)
		}
		if err := checkData(l, k, bpp); err != nil {
			return Geometry{}, err
		}
		prev = l
	}
	g.Levels = want
	return g, nil
}

func checkSize(l Level, k, maxSize int) error {
	if l.Width <= 0 || l.Height <= 0 || l.Width > maxSize || l.Height > maxSize {
		return fmt.Errorf("%w: level %d is %dx%d, limit %d", ErrInvalidTexture, k, l.Width, l.Height, maxSize)
	}
	if !isPow2(l.Width) || !isPow2(l.Height) {
		return fmt.Errorf("%w: level %d is %dx%d, not a power of two", ErrInvalidTexture, k, l.Width, l.Height)
	}
	return nil
}

func checkData(l Level, k, bpp int) error {
	if need := l.Width * l.Height * bpp; len(l.Pixels) < need {
		return fmt.Errorf("%w: level %d has %d bytes, want %d", ErrInvalidTexture, k, len(l.Pixels), need)
	}
	return nil
}

func isPow2(v int) bool {
	return v > 0 && v&(v-1) == 0
}
