package fixed

import "math/bits"

// powersOfFour holds 4^k for every k whose power fits in 32 bits.
var powersOfFour = [16]uint32{
	1, 4, 16, 64, 256, 1024, 4096, 16384,
	65536, 262144, 1048576, 4194304, 16777216, 67108864, 268435456, 1073741824,
}

// negPowersOfTwo holds 2^-k, the texel scale of mip level k.
var negPowersOfTwo = [16]float32{
	1, 0.5, 0.25, 0.125, 0.0625, 0.03125, 0.015625, 0.0078125,
	0.00390625, 0.001953125, 0.0009765625, 0.00048828125,
	0.000244140625, 0.0001220703125, 0.00006103515625, 0.000030517578125,
}

// Log4 approximates log4(v).
//
// The integer part comes from a bit scan, the fraction from linear
// interpolation between neighbouring powers of four. Values at or below 1
// (and NaN) return 0; values beyond the table return the last entry.
// Since log4(v) = log2(sqrt(v)), feeding it a squared footprint yields the
// mip level directly.
func Log4(v float32) float32 {
	if !(v > 1) {
		return 0
	}
	if v >= float32(powersOfFour[15]) {
		top := float32(powersOfFour[15])
		f := (v - top) / (3 * top)
		if f > 1 {
			f = 1
		}
		return 15 + f
	}
	n := uint32(v)
	k := (bits.Len32(n) - 1) / 2
	lo := float32(powersOfFour[k])
	hi := lo * 4
	return float32(k) + (v-lo)/(hi-lo)
}

// Log2 approximates log2(v) using the same tables as Log4.
func Log2(v float32) float32 {
	return 2 * Log4(v)
}

// InvPow2 returns 2^-k for k in [0, 15]; k is clamped into that range.
func InvPow2(k int) float32 {
	if k < 0 {
		k = 0
	}
	if k >= len(negPowersOfTwo) {
		k = len(negPowersOfTwo) - 1
	}
	return negPowersOfTwo[k]
}

// LOD converts a level of detail into the 4.4 register encoding, clamped to
// [0, maxLevel].
func LOD(level float32, maxLevel int) FDot4 {
	l := Clampf(level, 0, float32(maxLevel))
	return FDot4(FromFloat(l, FDot4Scale))
}
