package texture

// MinBlockTexels is the smallest texel block the device addresses per mip
// level. Levels with fewer texels are replicated to fill a block.
const MinBlockTexels = 16

// Layout places the square mip levels of a texture inside its allocation.
type Layout struct {
	Side    int      // side of level 0
	Levels  int      // device mip levels
	Offsets []uint32 // byte offset of each level slot from the block base
	Slots   []int    // texels in each level slot
	Width   int      // allocation width in texels
	Height  int      // allocation height in texels
}

// NewLayout computes the level placement for a validated geometry.
//
// The allocation is MaxDim texels wide and MaxDim high, doubled in height
// when mipmapped. Each level occupies max(side*side, MinBlockTexels) texels
// and the height grows if the slots still do not fit.
func NewLayout(g Geometry, mipmapped bool) Layout {
	levels := 1
	if mipmapped {
		levels = max(1, g.Levels)
	}
	l := Layout{
		Side:    g.MaxDim,
		Levels:  levels,
		Offsets: make([]uint32, levels),
		Slots:   make([]int, levels),
		Width:   g.MaxDim,
		Height:  g.MaxDim,
	}
	if mipmapped {
		l.Height *= 2
	}

	var off int
	for k := range levels {
		s := l.LevelSide(k)
		slot := max(s*s, MinBlockTexels)
		l.Offsets[k] = uint32(off * bytesPerTexel)
		l.Slots[k] = slot
		off += slot
	}
	if need := (off + l.Width - 1) / l.Width; need > l.Height {
		l.Height = need
	}
	return l
}

// LevelSide returns the side of square level k.
func (l Layout) LevelSide(k int) int {
	return max(1, l.Side>>k)
}

// Texels returns the number of texels used by all slots.
func (l Layout) Texels() int {
	var n int
	for _, s := range l.Slots {
		n += s
	}
	return n
}
