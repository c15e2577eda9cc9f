package common

// 13-bit fixed-point trigonometric constants for the forward transform.
const (
	fdctBits  = 13
	pass1Bits = 2

	f0298 = 2446  // 8192 * 0.298631336
	f0390 = 3196  // 8192 * 0.390180644
	f0541 = 4433  // 8192 * 0.541196100
	f0765 = 6270  // 8192 * 0.765366865
	f0899 = 7373  // 8192 * 0.899976223
	f1175 = 9633  // 8192 * 1.175875602
	f1501 = 12299 // 8192 * 1.501321110
	f1847 = 15137 // 8192 * 1.847759065
	f1961 = 16069 // 8192 * 1.961570560
	f2053 = 16819 // 8192 * 2.053119869
	f2562 = 20995 // 8192 * 2.562915447
	f3072 = 25172 // 8192 * 3.072711026
)

// DCT transforms an 8x8 block of spatial samples (rows stride bytes apart)
// into coefficients in natural order, applying the -128 level shift.
func DCT(input []byte, stride int, coef []int32) {
	var b [64]int32
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			b[y*8+x] = int32(input[y*stride+x]) - 128
		}
	}

	// Pass 1: rows, scaled up by pass1Bits.
	for y := 0; y < 8; y++ {
		row := b[y*8 : y*8+8 : y*8+8]

		tmp0 := row[0] + row[7]
		tmp1 := row[1] + row[6]
		tmp2 := row[2] + row[5]
		tmp3 := row[3] + row[4]

		tmp10 := tmp0 + tmp3
		tmp12 := tmp0 - tmp3
		tmp11 := tmp1 + tmp2
		tmp13 := tmp1 - tmp2

		tmp0 = row[0] - row[7]
		tmp1 = row[1] - row[6]
		tmp2 = row[2] - row[5]
		tmp3 = row[3] - row[4]

		row[0] = (tmp10 + tmp11) << pass1Bits
		row[4] = (tmp10 - tmp11) << pass1Bits

		z1 := (tmp12+tmp13)*f0541 + 1<<(fdctBits-pass1Bits-1)
		row[2] = (z1 + tmp12*f0765) >> (fdctBits - pass1Bits)
		row[6] = (z1 - tmp13*f1847) >> (fdctBits - pass1Bits)

		tmp10 = tmp0 + tmp3
		tmp11 = tmp1 + tmp2
		tmp12 = tmp0 + tmp2
		tmp13 = tmp1 + tmp3
		z1 = (tmp12+tmp13)*f1175 + 1<<(fdctBits-pass1Bits-1)
		tmp0 *= f1501
		tmp1 *= f3072
		tmp2 *= f2053
		tmp3 *= f0298
		tmp10 *= -f0899
		tmp11 *= -f2562
		tmp12 *= -f0390
		tmp13 *= -f1961
		tmp12 += z1
		tmp13 += z1

		row[1] = (tmp0 + tmp10 + tmp12) >> (fdctBits - pass1Bits)
		row[3] = (tmp1 + tmp11 + tmp13) >> (fdctBits - pass1Bits)
		row[5] = (tmp2 + tmp11 + tmp12) >> (fdctBits - pass1Bits)
		row[7] = (tmp3 + tmp10 + tmp13) >> (fdctBits - pass1Bits)
	}

	// Pass 2: columns. The final shifts drop the pass-1 scaling and the
	// transform's overall factor of 8, leaving nominal-scale coefficients.
	for x := 0; x < 8; x++ {
		tmp0 := b[0*8+x] + b[7*8+x]
		tmp1 := b[1*8+x] + b[6*8+x]
		tmp2 := b[2*8+x] + b[5*8+x]
		tmp3 := b[3*8+x] + b[4*8+x]

		tmp10 := tmp0 + tmp3 + 1<<(pass1Bits+2)
		tmp12 := tmp0 - tmp3
		tmp11 := tmp1 + tmp2
		tmp13 := tmp1 - tmp2

		tmp0 = b[0*8+x] - b[7*8+x]
		tmp1 = b[1*8+x] - b[6*8+x]
		tmp2 = b[2*8+x] - b[5*8+x]
		tmp3 = b[3*8+x] - b[4*8+x]

		coef[0*8+x] = (tmp10 + tmp11) >> (pass1Bits + 3)
		coef[4*8+x] = (tmp10 - tmp11) >> (pass1Bits + 3)

		z1 := (tmp12+tmp13)*f0541 + 1<<(fdctBits+pass1Bits+2)
		coef[2*8+x] = (z1 + tmp12*f0765) >> (fdctBits + pass1Bits + 3)
		coef[6*8+x] = (z1 - tmp13*f1847) >> (fdctBits + pass1Bits + 3)

		tmp10 = tmp0 + tmp3
		tmp11 = tmp1 + tmp2
		tmp12 = tmp0 + tmp2
		tmp13 = tmp1 + tmp3
		z1 = (tmp12+tmp13)*f1175 + 1<<(fdctBits+pass1Bits+2)
		tmp0 *= f1501
		tmp1 *= f3072
		tmp2 *= f2053
		tmp3 *= f0298
		tmp10 *= -f0899
		tmp11 *= -f2562
		tmp12 *= -f0390
		tmp13 *= -f1961
		tmp12 += z1
		tmp13 += z1

		coef[1*8+x] = (tmp0 + tmp10 + tmp12) >> (fdctBits + pass1Bits + 3)
		coef[3*8+x] = (tmp1 + tmp11 + tmp13) >> (fdctBits + pass1Bits + 3)
		coef[5*8+x] = (tmp2 + tmp11 + tmp12) >> (fdctBits + pass1Bits + 3)
		coef[7*8+x] = (tmp3 + tmp10 + tmp13) >> (fdctBits + pass1Bits + 3)
	}
}
