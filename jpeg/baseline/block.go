package baseline

import "github.com/pixelform/go-jpeg-raster/jpeg/common"

// coefLimit bounds dequantized coefficients so the fixed-point transform
// stays within int32 when a 16-bit quantizer meets a large coefficient.
// Blocks of 8-bit samples keep their coefficients well inside this range.
const coefLimit = 1 << 12

// dequantize multiplies coefficients by the quantization table entrywise,
// saturating at coefLimit. Both are in the order they appear in the
// entropy-coded stream.
func dequantize(zz *[64]int32, qt *[64]int32) {
	for i := range zz {
		v := int64(zz[i]) * int64(qt[i])
		if v > coefLimit {
			v = coefLimit
		} else if v < -coefLimit {
			v = -coefLimit
		}
		zz[i] = int32(v)
	}
}

// reconstruct turns one entropy-decoded block into spatial samples:
// dequantize in stream order, reorder to the natural row-major layout and
// run the inverse transform into the plane.
func reconstruct(zz *[64]int32, qt *[64]int32, out []byte, stride int) {
	dequantize(zz, qt)

	var coef [64]int32
	for i, v := range zz {
		coef[common.ZigZag[i]] = v
	}
	common.IDCT(coef[:], out, stride)
}
