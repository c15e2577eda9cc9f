package common

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Reader walks the marker/segment structure of a JPEG stream.
type Reader struct {
	r   io.Reader
	buf [2]byte
}

// NewReader creates a new segment reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(r.r, r.buf[:1]); err != nil {
		return 0, truncated(err)
	}
	return r.buf[0], nil
}

// ReadUint16 reads a 16-bit big-endian value.
func (r *Reader) ReadUint16() (uint16, error) {
	if _, err := io.ReadFull(r.r, r.buf[:2]); err != nil {
		return 0, truncated(err)
	}
	return binary.BigEndian.Uint16(r.buf[:2]), nil
}

// ReadMarker reads the next JPEG marker, skipping 0xFF fill bytes.
func (r *Reader) ReadMarker() (uint16, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b != 0xFF {
		return 0, fmt.Errorf("%w: expected marker prefix, got 0x%02x", ErrMalformedContainer, b)
	}

	// Markers may be preceded by any number of 0xFF fill bytes.
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != 0xFF {
			break
		}
	}

	// 0xFF00 is a stuffed data byte, never a marker.
	if b == 0x00 {
		return 0, fmt.Errorf("%w: stuffed byte outside entropy-coded data", ErrMalformedContainer)
	}

	return uint16(0xFF00) | uint16(b), nil
}

// ReadSegment reads a length-prefixed segment payload. The length field is
// big-endian and includes its own two bytes.
func (r *Reader) ReadSegment() ([]byte, error) {
	length, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	if length < 2 {
		return nil, fmt.Errorf("%w: segment length %d", ErrMalformedContainer, length)
	}

	data := make([]byte, length-2)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, truncated(err)
	}
	return data, nil
}

// Skip discards n bytes.
func (r *Reader) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r.r, int64(n)); err != nil {
		return truncated(err)
	}
	return nil
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

// truncated maps an underlying read error to the container taxonomy.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated input", ErrMalformedContainer)
	}
	return err
}
