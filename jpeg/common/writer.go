package common

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Writer emits the marker/segment structure of a JPEG stream.
type Writer struct {
	w   io.Writer
	buf [4]byte
}

// NewWriter creates a new segment writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteMarker writes a standalone marker (SOI, EOI, RSTn).
func (w *Writer) WriteMarker(marker uint16) error {
	binary.BigEndian.PutUint16(w.buf[:2], marker)
	_, err := w.w.Write(w.buf[:2])
	return err
}

// WriteSegment writes a marker followed by a length-prefixed payload.
func (w *Writer) WriteSegment(marker uint16, data []byte) error {
	if len(data)+2 > 0xFFFF {
		return fmt.Errorf("segment payload too large: %d bytes", len(data))
	}
	binary.BigEndian.PutUint16(w.buf[:2], marker)
	binary.BigEndian.PutUint16(w.buf[2:4], uint16(len(data)+2))
	if _, err := w.w.Write(w.buf[:4]); err != nil {
		return err
	}
	_, err := w.w.Write(data)
	return err
}

// WriteBytes writes raw bytes (already-stuffed entropy data).
func (w *Writer) WriteBytes(data []byte) error {
	_, err := w.w.Write(data)
	return err
}
