package texture

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Format is the internal pixel format of a logical texture's source data.
type Format uint8

const (
	// FormatUnknown is the zero value and is never valid.
	FormatUnknown Format = iota

	// FormatBGR8 is 24-bit BGR (3 bytes per pixel, no alpha).
	// Alpha is set to opaque on load.
	FormatBGR8

	// FormatBGRA8 is 32-bit BGRA (4 bytes per pixel).
	// It matches the device texel layout and is copied unchanged.
	FormatBGRA8

	// FormatLuminance8 is 8-bit luminance (1 byte per pixel).
	// It is expanded to four components on load.
	FormatLuminance8

	formatCount
)

// FormatInfo contains metadata about a source format.
type FormatInfo struct {
	// BytesPerPixel is the number of bytes per source pixel.
	BytesPerPixel int

	// HasAlpha indicates if the source carries alpha.
	HasAlpha bool

	// IsLuminance indicates a single-channel luminance source whose device
	// expansion depends on the manager's luminance mode.
	IsLuminance bool

	// Source is the closest WebGPU format of the source data, or
	// TextureFormatUndefined when there is none.
	Source gputypes.TextureFormat

	// Device is the format the texels take in device memory.
	Device gputypes.TextureFormat
}

var formatInfoTable = [formatCount]FormatInfo{
	FormatBGR8: {
		BytesPerPixel: 3,
		Source:        gputypes.TextureFormatUndefined,
		Device:        gputypes.TextureFormatBGRA8Unorm,
	},
	FormatBGRA8: {
		BytesPerPixel: 4,
		HasAlpha:      true,
		Source:        gputypes.TextureFormatBGRA8Unorm,
		Device:        gputypes.TextureFormatBGRA8Unorm,
	},
	FormatLuminance8: {
		BytesPerPixel: 1,
		IsLuminance:   true,
		Source:        gputypes.TextureFormatR8Unorm,
		Device:        gputypes.TextureFormatBGRA8Unorm,
	},
}

// Info returns the FormatInfo for this format. Unknown formats return the
// zero FormatInfo.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// IsValid reports whether f is one of the supported formats.
func (f Format) IsValid() bool {
	return f > FormatUnknown && f < formatCount
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatUnknown:
		return "Unknown"
	case FormatBGR8:
		return "BGR8"
	case FormatBGRA8:
		return "BGRA8"
	case FormatLuminance8:
		return "Luminance8"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}
