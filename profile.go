package accel3d

import (
	"slices"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/accel3d/device"
)

// Profile describes the limits of one chip variant.
type Profile struct {
	Name string

	// UVMaxTexels is the largest texel span a single primitive may cover
	// along any edge. Larger textured triangles are tessellated.
	UVMaxTexels int

	// MaxTextureSize is the largest texture side the texture unit accepts.
	MaxTextureSize int

	// FIFOSlots is the depth of the command FIFO, used by the recording
	// device of the command-line tool.
	FIFOSlots int

	// TextureMemory is the size in bytes of the texture pool.
	TextureMemory uint32

	// VideoMode is the default color buffer format.
	VideoMode device.VideoMode
}

// Built-in profile names.
const (
	ProfileCompact  = "compact"
	ProfileExtended = "extended"
)

var profiles = gpucontext.NewRegistry[Profile](
	gpucontext.WithPriority(ProfileExtended, ProfileCompact),
)

func init() {
	RegisterProfile(Profile{
		Name:           ProfileCompact,
		UVMaxTexels:    128,
		MaxTextureSize: 256,
		FIFOSlots:      32,
		TextureMemory:  2 << 20,
		VideoMode:      device.VideoRGB565,
	})
	RegisterProfile(Profile{
		Name:           ProfileExtended,
		UVMaxTexels:    2048,
		MaxTextureSize: 512,
		FIFOSlots:      256,
		TextureMemory:  8 << 20,
		VideoMode:      device.VideoARGB8888,
	})
}

// RegisterProfile adds or replaces a chip profile.
func RegisterProfile(p Profile) {
	profiles.Register(p.Name, func() Profile { return p })
}

// LookupProfile returns the profile registered under name. An empty name
// selects the highest-priority profile.
func LookupProfile(name string) (Profile, bool) {
	if name == "" {
		name = profiles.BestName()
	}
	if !profiles.Has(name) {
		return Profile{}, false
	}
	return profiles.Get(name), true
}

// Profiles returns the registered profile names in sorted order.
func Profiles() []string {
	names := profiles.Available()
	slices.Sort(names)
	return names
}
