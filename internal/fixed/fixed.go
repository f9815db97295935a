// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package fixed converts setup values into the fixed-point encodings accepted
// by the accelerator's registers.
//
// Every register value is an integer obtained as round(value * scale), where
// the scale is a per-register constant (for example 1<<16 for 16.16 edge
// positions, or 255<<12 for 8-bit color channels carried with 12 fraction
// bits). Conversions saturate instead of wrapping, and NaN converts to zero so
// that an unstable setup can never program garbage into the device.
//
// Type Reference:
//   - FDot16: 16.16 fixed-point used for edge positions and slopes
//   - FDot4:  4.4 fixed-point used for the mip level of detail
package fixed

import "math"

// FDot16 is a 16.16 fixed-point number (16 fractional bits).
//
// Range: approximately -32768 to +32768 with 1/65536 precision.
type FDot16 = int32

// FDot4 is a 4.4 fixed-point number carried in the low byte of a register.
type FDot4 = uint32

// Fixed-point constants for FDot16.
const (
	// FDot16One is 1.0 in FDot16 representation (2^16 = 65536).
	FDot16One FDot16 = 1 << 16

	// FDot16Half is 0.5 in FDot16 representation (2^15 = 32768).
	FDot16Half FDot16 = 1 << 15

	// FDot16Shift is the number of fractional bits in FDot16.
	FDot16Shift = 16

	// FDot16Scale is the conversion scale of FDot16.
	FDot16Scale float32 = 1 << FDot16Shift
)

// FDot4Scale is the conversion scale of FDot4.
const FDot4Scale float32 = 16

// Max15 is the largest value representable in a 15-bit unsigned field.
const Max15 = 1<<15 - 1

// Epsilon is the magnitude below which a divisor is treated as zero.
const Epsilon = 1e-10

// FromFloat converts v into a register value: round(v * scale).
//
// The result saturates to the int32 range. NaN converts to 0 and infinities
// saturate to the matching bound.
func FromFloat(v, scale float32) int32 {
	return FromFloat64(float64(v), float64(scale))
}

// FromFloat64 is FromFloat on float64 inputs.
func FromFloat64(v, scale float64) int32 {
	r := v * scale
	if math.IsNaN(r) {
		return 0
	}
	r = math.Round(r)
	if r >= math.MaxInt32 {
		return math.MaxInt32
	}
	if r <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(r)
}

// ToFloat converts a register value back into a float: v / scale.
// A zero scale returns 0.
func ToFloat(v int32, scale float32) float32 {
	if scale == 0 {
		return 0
	}
	return float32(float64(v) / float64(scale))
}

// FDot16FromFloat32 converts a float32 to FDot16 with rounding.
func FDot16FromFloat32(f float32) FDot16 {
	return FromFloat(f, FDot16Scale)
}

// FDot16FromFloat64 converts a float64 to FDot16 with rounding.
func FDot16FromFloat64(f float64) FDot16 {
	return FromFloat64(f, float64(FDot16Scale))
}

// FDot16ToFloat32 converts an FDot16 to float32.
func FDot16ToFloat32(v FDot16) float32 {
	return float32(v) / FDot16Scale
}

// FDot16FloorToInt returns the integer part (floor) of an FDot16.
func FDot16FloorToInt(v FDot16) int32 {
	return v >> FDot16Shift
}

// FDot16RoundToInt returns the nearest integer to an FDot16.
func FDot16RoundToInt(v FDot16) int32 {
	return int32((int64(v) + int64(FDot16Half)) >> FDot16Shift)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp15 limits v to the unsigned 15-bit range used by scanline and count
// fields.
func Clamp15(v int32) uint32 {
	return uint32(Clamp(v, 0, Max15))
}

// ClampUnsigned limits v to an unsigned field of the given width in bits.
func ClampUnsigned(v int64, bits uint) uint32 {
	if bits >= 32 {
		bits = 32
	}
	hi := int64(1)<<bits - 1
	if v < 0 {
		return 0
	}
	if v > hi {
		return uint32(hi)
	}
	return uint32(v)
}

// Clampf limits v to [lo, hi]. NaN maps to lo.
func Clampf(v, lo, hi float32) float32 {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Recip returns 1/v, or 0 when |v| is below Epsilon.
// Setup code relies on this to turn degenerate spans into zero derivatives.
func Recip(v float64) float64 {
	if math.Abs(v) < Epsilon || math.IsNaN(v) {
		return 0
	}
	return 1 / v
}

// Bits32 returns the two's complement bit pattern of a signed register value.
func Bits32(v int32) uint32 {
	return uint32(v)
}
