package common

import "fmt"

// BitReader reads entropy-coded data MSB first. Stuffed 0xFF00 pairs are
// unstuffed transparently; any marker encountered mid-stream stops the
// reader at its 0xFF byte.
type BitReader struct {
	data []byte
	pos  int

	// AllowRestarts lets RST0-7 bytes flow through as ordinary data so the
	// scan decoder can consume and verify them with ReadRestartMarker. Set
	// when the stream declares a restart interval; otherwise a restart
	// marker inside entropy-coded data is corruption like any other marker.
	AllowRestarts bool

	// buf holds n valid bits; the next bit in stream order is bit n-1.
	buf uint32
	n   int
}

// NewBitReader creates a bit reader over raw entropy-coded bytes.
func NewBitReader(data []byte) *BitReader {
	return &BitReader{data: data}
}

// fill shifts one more data byte into the bit buffer.
func (b *BitReader) fill() error {
	if b.pos >= len(b.data) {
		return fmt.Errorf("%w: truncated entropy-coded data", ErrMalformedContainer)
	}
	c := b.data[b.pos]
	if c == 0xFF {
		if b.pos+1 >= len(b.data) {
			return fmt.Errorf("%w: truncated entropy-coded data", ErrMalformedContainer)
		}
		next := b.data[b.pos+1]
		switch {
		case next == 0x00:
			// Stuffed byte: deliver the 0xFF, drop the 0x00.
			b.pos++
		case next >= 0xD0 && next <= 0xD7 && b.AllowRestarts:
			// Restart markers pass through as data.
		default:
			return fmt.Errorf("%w: marker 0xFF%02x inside entropy-coded data",
				ErrCorruptEntropyStream, next)
		}
	}
	b.pos++
	b.buf = b.buf<<8 | uint32(c)
	b.n += 8
	return nil
}

// ReadBit reads a single bit.
func (b *BitReader) ReadBit() (int, error) {
	if b.n == 0 {
		if err := b.fill(); err != nil {
			return 0, err
		}
	}
	b.n--
	return int(b.buf>>uint(b.n)) & 1, nil
}

// ReadBits reads count bits (at most 16) as an unsigned value.
func (b *BitReader) ReadBits(count int) (int32, error) {
	for b.n < count {
		if err := b.fill(); err != nil {
			return 0, err
		}
	}
	b.n -= count
	return int32(b.buf>>uint(b.n)) & ((1 << uint(count)) - 1), nil
}

// Decode reads one Huffman-coded symbol using the given table.
func (b *BitReader) Decode(h *HuffmanTable) (byte, error) {
	// Fast path: resolve codes of up to 8 bits with a single lookup.
	if b.n < 8 {
		// Best effort; near the end of the scan the remaining bits are
		// decoded by the bitwise path below.
		for b.n < 8 {
			if b.fill() != nil {
				break
			}
		}
	}
	if b.n >= 8 {
		entry := h.lookup[(b.buf>>uint(b.n-8))&0xFF]
		if entry >= 0 {
			b.n -= int(entry >> 8)
			return byte(entry), nil
		}
	}

	code := int32(0)
	for length := 0; length < 16; length++ {
		bit, err := b.ReadBit()
		if err != nil {
			return 0, err
		}
		code = code<<1 | int32(bit)
		if code <= h.maxCode[length] {
			return h.Values[h.valPtr[length]+code-h.minCode[length]], nil
		}
	}
	return 0, fmt.Errorf("%w: huffman code exceeds 16 bits", ErrCorruptEntropyStream)
}

// ReceiveExtend reads s additional bits and sign-extends them per the
// signed-magnitude convention: a leading 0 bit selects the negative range.
func (b *BitReader) ReceiveExtend(s byte) (int32, error) {
	if s == 0 {
		return 0, nil
	}
	v, err := b.ReadBits(int(s))
	if err != nil {
		return 0, err
	}
	if v < 1<<(s-1) {
		v -= 1<<s - 1
	}
	return v, nil
}

// ByteAlign discards bits up to the next byte boundary.
func (b *BitReader) ByteAlign() {
	b.n -= b.n & 7
}

// ReadRestartMarker consumes a restart marker at the current (byte-aligned)
// position and checks its sequence number against want (0..7).
func (b *BitReader) ReadRestartMarker(want int) error {
	b.ByteAlign()
	v, err := b.ReadBits(16)
	if err != nil {
		return err
	}
	m := uint16(v)
	if m&0xFFF8 != MarkerRST0 {
		return fmt.Errorf("%w: expected restart marker, got 0x%04x",
			ErrCorruptEntropyStream, m)
	}
	if int(m&7) != want {
		return fmt.Errorf("%w: restart marker out of sequence: got %d, want %d",
			ErrCorruptEntropyStream, m&7, want)
	}
	return nil
}

// ResyncToRestart drops the bit buffer and scans forward for the restart
// marker with the wanted sequence number, leaving the reader positioned
// just after it.
func (b *BitReader) ResyncToRestart(want int) error {
	b.buf, b.n = 0, 0
	for i := b.pos; i+1 < len(b.data); i++ {
		if b.data[i] != 0xFF {
			continue
		}
		m := b.data[i+1]
		if m >= 0xD0 && m <= 0xD7 && int(m&7) == want {
			b.pos = i + 2
			return nil
		}
	}
	return fmt.Errorf("%w: no restart marker %d ahead of corruption",
		ErrCorruptEntropyStream, want)
}

// Trailing returns the bytes following the entropy-coded data. The reader
// never consumes a non-restart marker, so after the last block this starts
// at the terminating marker.
func (b *BitReader) Trailing() []byte {
	return b.data[b.pos:]
}
