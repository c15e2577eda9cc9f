package common

import "fmt"

// HuffmanTable holds a canonical Huffman table built from a DHT segment:
// sixteen code-length counts followed by the symbol values in code order.
type HuffmanTable struct {
	// Bits[i] is the number of codes with length i+1.
	Bits [16]int

	// Values holds the decoded symbols, ordered by increasing code length.
	Values []byte

	// Derived decoding state, populated by Build.
	minCode [16]int32
	maxCode [16]int32
	valPtr  [16]int32

	// lookup maps the next 8 bits of input to (length<<8 | symbol) for
	// codes no longer than 8 bits, or -1 when the slow path is needed.
	lookup [256]int16
}

// Build derives the canonical code ranges and the 8-bit fast lookup from
// Bits and Values. It rejects tables whose counts disagree with the value
// list or whose code assignment overflows the code space.
func (h *HuffmanTable) Build() error {
	total := 0
	for _, n := range h.Bits {
		total += n
	}
	if total == 0 || total > 256 {
		return fmt.Errorf("%w: huffman table has %d symbols", ErrInvalidTable, total)
	}
	if total != len(h.Values) {
		return fmt.Errorf("%w: huffman counts declare %d symbols, %d provided",
			ErrInvalidTable, total, len(h.Values))
	}

	code := int32(0)
	k := int32(0)
	for i := 0; i < 16; i++ {
		n := int32(h.Bits[i])
		h.valPtr[i] = k
		h.minCode[i] = code
		code += n
		h.maxCode[i] = code - 1
		if n == 0 {
			h.maxCode[i] = -1
		}
		// A canonical code of length i+1 must fit in i+1 bits.
		if code > int32(1)<<uint(i+1) {
			return fmt.Errorf("%w: huffman code space overflow at length %d",
				ErrInvalidTable, i+1)
		}
		k += n
		code <<= 1
	}

	for i := range h.lookup {
		h.lookup[i] = -1
	}
	k = 0
	code = 0
	for length := 1; length <= 8; length++ {
		for n := 0; n < h.Bits[length-1]; n++ {
			// All 8-bit inputs whose leading bits match this code decode
			// to the same symbol.
			shift := uint(8 - length)
			base := int(code) << shift
			entry := int16(length)<<8 | int16(h.Values[k])
			for fill := 0; fill < 1<<shift; fill++ {
				h.lookup[base|fill] = entry
			}
			code++
			k++
		}
		code <<= 1
	}

	return nil
}
