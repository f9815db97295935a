package texture

import (
	"fmt"
	"image"
)

// LoadRegion copies rect of source level k into the texture's device copy.
//
// The texture must be resident and unchanged since EnsureResident placed
// it. Texels are converted to the device BGRA
// layout: BGRA8 is copied as is, BGR8 gains an opaque alpha and Luminance8
// expands according to the manager's luminance mode. Non-square textures
// are tiled across the square level, and levels smaller than the minimum
// block are replicated to fill their slot.
func (m *Manager) LoadRegion(t *Texture, k int, rect image.Rectangle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadRegion(t, k, rect)
}

func (m *Manager) loadRegion(t *Texture, k int, rect image.Rectangle) error {
	a := t.alloc
	if a == nil {
		return fmt.Errorf("%w: texture %d", ErrNotResident, t.id)
	}
	if t.validity != Valid {
		return fmt.Errorf("%w: texture %d changed since it was placed", ErrStale, t.id)
	}
	if k < 0 || k >= a.layout.Levels || k >= len(t.levels) {
		return fmt.Errorf("%w: level %d of %d", ErrLevelRange, k, a.layout.Levels)
	}
	lvl := t.levels[k]
	side := a.layout.LevelSide(k)
	if lvl.Width > side || lvl.Height > side {
		return fmt.Errorf("%w: level %d is %dx%d, slot side %d", ErrStale, k, lvl.Width, lvl.Height, side)
	}
	full := image.Rect(0, 0, lvl.Width, lvl.Height)
	r := rect.Intersect(full)
	if r.Empty() {
		return nil
	}

	tilesX := max(1, side/lvl.Width)
	tilesY := max(1, side/lvl.Height)
	square := side * side
	copies := a.layout.Slots[k] / square
	base := a.LevelBase(k)

	info := t.format.Info()
	n := r.Dx() * bytesPerTexel
	if cap(m.row) < n {
		m.row = make([]byte, n)
	}
	row := m.row[:n]

	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := lvl.Pixels[(y*lvl.Width+r.Min.X)*info.BytesPerPixel:]
		convertRow(row, src, t.format, m.lumAlpha)
		for ty := range tilesY {
			dy := y + ty*lvl.Height
			for tx := range tilesX {
				dx := r.Min.X + tx*lvl.Width
				texel := dy*side + dx
				for c := range copies {
					off := base + uint32((c*square+texel)*bytesPerTexel)
					m.mem.WriteMemory(off, row)
				}
			}
		}
	}

	m.stats.Loads++
	m.stats.BytesLoaded += r.Dx() * r.Dy() * bytesPerTexel * tilesX * tilesY * copies
	if r == full {
		a.loaded[k] = true
		a.lumAlpha = m.lumAlpha
	}
	return nil
}

// convertRow expands len(dst)/4 source pixels into BGRA texels.
func convertRow(dst, src []byte, f Format, lumAlpha bool) {
	n := len(dst) / bytesPerTexel
	switch f {
	case FormatBGRA8:
		copy(dst, src[:n*4])
	case FormatBGR8:
		for i := range n {
			dst[i*4+0] = src[i*3+0]
			dst[i*4+1] = src[i*3+1]
			dst[i*4+2] = src[i*3+2]
			dst[i*4+3] = 0xFF
		}
	case FormatLuminance8:
		for i := range n {
			l := src[i]
			if lumAlpha {
				dst[i*4+0], dst[i*4+1], dst[i*4+2], dst[i*4+3] = 0, 0, 0, l
			} else {
				dst[i*4+0], dst[i*4+1], dst[i*4+2], dst[i*4+3] = l, l, l, 0xFF
			}
		}
	}
}
