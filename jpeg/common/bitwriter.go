package common

import "io"

// HuffmanCode is a single assigned code.
type HuffmanCode struct {
	Code uint16
	Len  int
}

// BuildHuffmanCodes assigns canonical codes to every symbol of a table,
// indexed by symbol value.
func BuildHuffmanCodes(h *HuffmanTable) [256]HuffmanCode {
	var codes [256]HuffmanCode
	code := uint16(0)
	k := 0
	for length := 1; length <= 16; length++ {
		for n := 0; n < h.Bits[length-1]; n++ {
			codes[h.Values[k]] = HuffmanCode{Code: code, Len: length}
			code++
			k++
		}
		code <<= 1
	}
	return codes
}

// EncodeCategory returns the bit category of a coefficient value and the
// value's signed-magnitude bit pattern.
func EncodeCategory(v int32) (category byte, bits uint16) {
	if v < 0 {
		bits = uint16(v - 1)
		v = -v
	} else {
		bits = uint16(v)
	}
	for v > 0 {
		category++
		v >>= 1
	}
	return category, bits & (1<<category - 1)
}

// BitWriter emits entropy-coded data MSB first, stuffing a 0x00 after
// every literal 0xFF byte.
type BitWriter struct {
	w   io.Writer
	buf uint32
	n   int
	err error
}

// NewBitWriter creates a bit writer.
func NewBitWriter(w io.Writer) *BitWriter {
	return &BitWriter{w: w}
}

// WriteBits writes the low count bits of bits, MSB first.
func (b *BitWriter) WriteBits(bits uint16, count int) {
	if count == 0 || b.err != nil {
		return
	}
	b.buf = b.buf<<uint(count) | uint32(bits)&(1<<uint(count)-1)
	b.n += count
	for b.n >= 8 {
		b.n -= 8
		b.writeByte(byte(b.buf >> uint(b.n)))
	}
}

// WriteCode writes a Huffman code.
func (b *BitWriter) WriteCode(c HuffmanCode) {
	b.WriteBits(c.Code, c.Len)
}

func (b *BitWriter) writeByte(c byte) {
	if b.err != nil {
		return
	}
	if _, err := b.w.Write([]byte{c}); err != nil {
		b.err = err
		return
	}
	if c == 0xFF {
		if _, err := b.w.Write([]byte{0x00}); err != nil {
			b.err = err
		}
	}
}

// WriteRestartMarker pads to a byte boundary and emits RSTn without
// stuffing.
func (b *BitWriter) WriteRestartMarker(seq int) error {
	if err := b.Flush(); err != nil {
		return err
	}
	if _, err := b.w.Write([]byte{0xFF, byte(0xD0 | seq&7)}); err != nil {
		b.err = err
	}
	return b.err
}

// Flush pads the final partial byte with 1 bits and returns any deferred
// write error.
func (b *BitWriter) Flush() error {
	if b.n > 0 {
		pad := 8 - b.n
		b.WriteBits(1<<uint(pad)-1, pad)
	}
	return b.err
}
