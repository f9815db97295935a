package texture

import (
	"github.com/gogpu/gputypes"
)

// ID identifies a logical texture within a context.
type ID uint32

// Validity is the memoized result of structural validation.
type Validity uint8

// Validation states.
const (
	NotValidated Validity = iota
	Invalid
	Valid
)

// String returns the state name.
func (v Validity) String() string {
	switch v {
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	default:
		return "not-validated"
	}
}

// Level is one mip level of source pixel data, rows packed tightly.
type Level struct {
	Width  int
	Height int
	Pixels []byte
}

// Sampler holds wrap and filter state.
type Sampler struct {
	WrapS, WrapT gputypes.AddressMode
	Mag, Min     gputypes.FilterMode
	Mip          gputypes.MipmapFilterMode
}

// DefaultSampler repeats in both directions with nearest filtering and no
// mipmapping.
func DefaultSampler() Sampler {
	return Sampler{
		WrapS: gputypes.AddressModeRepeat,
		WrapT: gputypes.AddressModeRepeat,
		Mag:   gputypes.FilterModeNearest,
		Min:   gputypes.FilterModeNearest,
		Mip:   gputypes.MipmapFilterModeUndefined,
	}
}

// Mipmapped reports whether minification samples the mip chain.
func (s Sampler) Mipmapped() bool {
	return s.Mip != gputypes.MipmapFilterModeUndefined
}

// Geometry is the square-allocation factoring of a validated texture.
//
// MaxDim is the side of the square. UFactor and VFactor are how many times
// the texture tiles horizontally and vertically to fill it; at least one of
// them is 1 and both are powers of two.
type Geometry struct {
	UFactor, VFactor int
	MaxDim           int
	Levels           int // mip levels used by the device
}

// Texture is a logical texture: source pixels for each mip level, format,
// sampling state and the residency priority hint.
//
// Mutating methods reset the validation memo and mark the texture dirty so
// the next Bind re-validates and reloads it.
//
// A Texture must not be used concurrently with the Manager that holds it.
type Texture struct {
	id        ID
	dimension gputypes.TextureDimension
	format    Format
	levels    []Level
	sampler   Sampler
	priority  float32

	validity Validity
	err      error
	geom     Geometry

	dirty bool
	gen   uint32
	alloc *Allocation
}

// New returns a 2D texture with the given levels. Level 0 is the base level.
func New(id ID, format Format, levels ...Level) *Texture {
	return &Texture{
		id:        id,
		dimension: gputypes.TextureDimension2D,
		format:    format,
		levels:    levels,
		sampler:   DefaultSampler(),
		dirty:     true,
	}
}

// ID returns the texture identifier.
func (t *Texture) ID() ID { return t.id }

// Format returns the source format.
func (t *Texture) Format() Format { return t.format }

// Dimension returns the declared dimensionality.
func (t *Texture) Dimension() gputypes.TextureDimension { return t.dimension }

// Levels returns the number of source levels.
func (t *Texture) Levels() int { return len(t.levels) }

// Level returns source level i.
func (t *Texture) Level(i int) Level { return t.levels[i] }

// Extent returns the size of level 0, or a zero extent without levels.
func (t *Texture) Extent() gputypes.Extent3D {
	if len(t.levels) == 0 {
		return gputypes.Extent3D{}
	}
	return gputypes.NewExtent2D(uint32(t.levels[0].Width), uint32(t.levels[0].Height))
}

// Sampler returns the sampling state.
func (t *Texture) Sampler() Sampler { return t.sampler }

// Mipmapped reports whether the texture samples its mip chain.
func (t *Texture) Mipmapped() bool { return t.sampler.Mipmapped() }

// Priority returns the residency priority. Higher values stay resident longer.
func (t *Texture) Priority() float32 { return t.priority }

// SetPriority sets the residency priority hint. It never triggers eviction
// by itself.
func (t *Texture) SetPriority(p float32) { t.priority = p }

// Validity returns the memoized validation state.
func (t *Texture) Validity() Validity { return t.validity }

// Err returns the reason of the last failed validation, or nil.
func (t *Texture) Err() error { return t.err }

// Geometry returns the square factoring computed by the last successful
// validation.
func (t *Texture) Geometry() Geometry { return t.geom }

// Generation counts changes to levels, format, dimension and sampler.
// Users that derive state from a texture compare it to detect staleness.
func (t *Texture) Generation() uint32 { return t.gen }

// Dirty reports whether source data changed since the last full load.
func (t *Texture) Dirty() bool { return t.dirty }

// Resident reports whether the texture currently has a device allocation.
func (t *Texture) Resident() bool { return t.alloc != nil }

// SetLevels replaces every mip level.
func (t *Texture) SetLevels(levels ...Level) {
	t.levels = levels
	t.mutated()
}

// SetFormat changes the source format.
func (t *Texture) SetFormat(f Format) {
	t.format = f
	t.mutated()
}

// SetDimension changes the declared dimensionality.
func (t *Texture) SetDimension(d gputypes.TextureDimension) {
	t.dimension = d
	t.mutated()
}

// SetSampler changes wrap and filter state. Switching mipmapping on or off
// changes the device layout and counts as a mutation.
func (t *Texture) SetSampler(s Sampler) {
	remap := s.Mipmapped() != t.sampler.Mipmapped()
	if s != t.sampler {
		t.gen++
	}
	t.sampler = s
	if remap {
		t.mutated()
	}
}

// UpdatePixels replaces the pixels of one level in place. The level keeps
// its dimensions; the next Bind reloads the texture.
func (t *Texture) UpdatePixels(level int, pixels []byte) {
	if level < 0 || level >= len(t.levels) {
		return
	}
	t.levels[level].Pixels = pixels
	t.dirty = true
	if t.validity == Valid && len(pixels) < t.levels[level].Width*t.levels[level].Height*t.format.Info().BytesPerPixel {
		t.mutated()
	}
}

func (t *Texture) mutated() {
	t.gen++
	t.validity = NotValidated
	t.err = nil
	t.dirty = true
}
