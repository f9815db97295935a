package texture

import (
	"errors"
	"fmt"
	"image"
	"math/bits"

	"golang.org/x/image/draw"
)

// GenerateMipChain builds a complete mip chain from src in the given source
// format. Level 0 has the size of src; each further level halves both
// dimensions (a dimension at 1 stays at 1) down to 1x1. Levels are filtered
// with a bilinear kernel.
//
// The result passes validation when src has power-of-two dimensions within
// MaxSize.
func GenerateMipChain(src image.Image, f Format) ([]Level, error) {
	if !f.IsValid() {
		return nil, fmt.Errorf("%w: unsupported format %s", ErrInvalidTexture, f)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, errors.New("texture: empty source image")
	}

	n := bits.Len(uint(max(b.Dx(), b.Dy())))
	levels := make([]Level, 0, n)

	cur := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(cur, cur.Bounds(), src, b.Min, draw.Src)
	levels = append(levels, pack(cur, f))

	for len(levels) < n {
		w, h := max(1, cur.Bounds().Dx()/2), max(1, cur.Bounds().Dy()/2)
		next := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(next, next.Bounds(), cur, cur.Bounds(), draw.Src, nil)
		levels = append(levels, pack(next, f))
		cur = next
	}
	return levels, nil
}

// pack converts an RGBA image into source pixels of format f. Luminance uses
// the Rec. 601 weights.
func pack(img *image.RGBA, f Format) Level {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	bpp := f.Info().BytesPerPixel
	out := make([]byte, w*h*bpp)
	for y := range h {
		for x := range w {
			p := img.Pix[y*img.Stride+x*4:]
			r, g, b, a := p[0], p[1], p[2], p[3]
			o := out[(y*w+x)*bpp:]
			switch f {
			case FormatBGRA8:
				o[0], o[1], o[2], o[3] = b, g, r, a
			case FormatBGR8:
				o[0], o[1], o[2] = b, g, r
			case FormatLuminance8:
				o[0] = uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000)
			}
		}
	}
	return Level{Width: w, Height: h, Pixels: out}
}
