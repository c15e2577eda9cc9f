package common

// Fixed-point AAN-style butterfly constants, scaled by 2048.
const (
	w1 = 2841 // 2048*sqrt(2)*cos(1*pi/16)
	w2 = 2676 // 2048*sqrt(2)*cos(2*pi/16)
	w3 = 2408 // 2048*sqrt(2)*cos(3*pi/16)
	w5 = 1609 // 2048*sqrt(2)*cos(5*pi/16)
	w6 = 1108 // 2048*sqrt(2)*cos(6*pi/16)
	w7 = 565  // 2048*sqrt(2)*cos(7*pi/16)

	r2 = 181 // 256/sqrt(2)
)

// IDCT transforms an 8x8 block of dequantized coefficients in natural
// order into spatial samples, applying the +128 level shift and clamping
// to [0, 255]. Rows of the output block are stride bytes apart.
func IDCT(coef []int32, out []byte, stride int) {
	var tmp [64]int32

	for y := 0; y < 8; y++ {
		row := coef[y*8 : y*8+8 : y*8+8]

		// A row with no AC energy is a constant line.
		if row[1]|row[2]|row[3]|row[4]|row[5]|row[6]|row[7] == 0 {
			dc := row[0] << 3
			for i := 0; i < 8; i++ {
				tmp[y*8+i] = dc
			}
			continue
		}

		x0 := (row[0] << 11) + 128
		x1 := row[4] << 11
		x2 := row[6]
		x3 := row[2]
		x4 := row[1]
		x5 := row[7]
		x6 := row[5]
		x7 := row[3]

		x8 := w7 * (x4 + x5)
		x4 = x8 + (w1-w7)*x4
		x5 = x8 - (w1+w7)*x5
		x8 = w3 * (x6 + x7)
		x6 = x8 - (w3-w5)*x6
		x7 = x8 - (w3+w5)*x7

		x8 = x0 + x1
		x0 -= x1
		x1 = w6 * (x3 + x2)
		x2 = x1 - (w2+w6)*x2
		x3 = x1 + (w2-w6)*x3
		x1 = x4 + x6
		x4 -= x6
		x6 = x5 + x7
		x5 -= x7

		x7 = x8 + x3
		x8 -= x3
		x3 = x0 + x2
		x0 -= x2
		x2 = (r2*(x4+x5) + 128) >> 8
		x4 = (r2*(x4-x5) + 128) >> 8

		tmp[y*8+0] = (x7 + x1) >> 8
		tmp[y*8+1] = (x3 + x2) >> 8
		tmp[y*8+2] = (x0 + x4) >> 8
		tmp[y*8+3] = (x8 + x6) >> 8
		tmp[y*8+4] = (x8 - x6) >> 8
		tmp[y*8+5] = (x0 - x4) >> 8
		tmp[y*8+6] = (x3 - x2) >> 8
		tmp[y*8+7] = (x7 - x1) >> 8
	}

	for x := 0; x < 8; x++ {
		if tmp[8+x]|tmp[16+x]|tmp[24+x]|tmp[32+x]|tmp[40+x]|tmp[48+x]|tmp[56+x] == 0 {
			dc := byte(Clamp(int(((tmp[x]+32)>>6)+128), 0, 255))
			for i := 0; i < 8; i++ {
				out[i*stride+x] = dc
			}
			continue
		}

		x0 := (tmp[0+x] << 8) + 8192
		x1 := tmp[32+x] << 8
		x2 := tmp[48+x]
		x3 := tmp[16+x]
		x4 := tmp[8+x]
		x5 := tmp[56+x]
		x6 := tmp[40+x]
		x7 := tmp[24+x]

		// The column pass descales each stage by 3 bits to keep the
		// intermediates inside int32.
		x8 := w7*(x4+x5) + 4
		x4 = (x8 + (w1-w7)*x4) >> 3
		x5 = (x8 - (w1+w7)*x5) >> 3
		x8 = w3*(x6+x7) + 4
		x6 = (x8 - (w3-w5)*x6) >> 3
		x7 = (x8 - (w3+w5)*x7) >> 3

		x8 = x0 + x1
		x0 -= x1
		x1 = w6*(x3+x2) + 4
		x2 = (x1 - (w2+w6)*x2) >> 3
		x3 = (x1 + (w2-w6)*x3) >> 3
		x1 = x4 + x6
		x4 -= x6
		x6 = x5 + x7
		x5 -= x7

		x7 = x8 + x3
		x8 -= x3
		x3 = x0 + x2
		x0 -= x2
		x2 = (r2*(x4+x5) + 128) >> 8
		x4 = (r2*(x4-x5) + 128) >> 8

		out[0*stride+x] = byte(Clamp(int(((x7+x1)>>14)+128), 0, 255))
		out[1*stride+x] = byte(Clamp(int(((x3+x2)>>14)+128), 0, 255))
		out[2*stride+x] = byte(Clamp(int(((x0+x4)>>14)+128), 0, 255))
		out[3*stride+x] = byte(Clamp(int(((x8+x6)>>14)+128), 0, 255))
		out[4*stride+x] = byte(Clamp(int(((x8-x6)>>14)+128), 0, 255))
		out[5*stride+x] = byte(Clamp(int(((x0-x4)>>14)+128), 0, 255))
		out[6*stride+x] = byte(Clamp(int(((x3-x2)>>14)+128), 0, 255))
		out[7*stride+x] = byte(Clamp(int(((x7-x1)>>14)+128), 0, 255))
	}
}
