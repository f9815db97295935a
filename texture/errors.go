package texture

import "errors"

// Sentinel errors for the texture package.
var (
	// ErrInvalidTexture is returned for textures that fail structural
	// validation. The wrapped error names the failed rule.
	ErrInvalidTexture = errors.New("texture: invalid texture")

	// ErrPoolExhausted is returned when a texture does not fit in device
	// memory even after every other resident texture has been evicted.
	ErrPoolExhausted = errors.New("texture: device memory pool exhausted")

	// ErrNotResident is returned when loading into a texture without a
	// device allocation.
	ErrNotResident = errors.New("texture: texture is not resident")

	// ErrStale is returned when loading into an allocation laid out for an
	// earlier version of the texture.
	ErrStale = errors.New("texture: allocation is stale")

	// ErrLevelRange is returned for a mip level outside the texture's chain.
	ErrLevelRange = errors.New("texture: mip level out of range")

	// ErrInvalidRegion is returned for a region update with a non-positive
	// width or height.
	ErrInvalidRegion = errors.New("texture: invalid region")

	// ErrShortData is returned when a region update carries fewer bytes than
	// the region needs.
	ErrShortData = errors.New("texture: region data too short")
)
