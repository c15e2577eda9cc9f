package common

import "errors"

// Decode error taxonomy. Every failure surfaced by the decoder wraps one of
// these sentinels, so callers can classify with errors.Is.
var (
	// ErrMalformedContainer covers missing or misordered SOI/EOI, truncated
	// segments, and length fields that run past the buffer.
	ErrMalformedContainer = errors.New("malformed JPEG container")

	// ErrUnsupportedFormat covers progressive/arithmetic/lossless frames,
	// sample precision other than 8 bits, and component counts other than 1 or 3.
	ErrUnsupportedFormat = errors.New("unsupported JPEG format")

	// ErrInvalidTable covers Huffman or quantization segments that fail
	// structural checks.
	ErrInvalidTable = errors.New("invalid table definition")

	// ErrCorruptEntropyStream covers out-of-range symbols, zero-run overflow
	// and unexpected markers inside entropy-coded data.
	ErrCorruptEntropyStream = errors.New("corrupt entropy-coded stream")

	// ErrDimensionMismatch covers frame sizes inconsistent with the computed
	// MCU grid, including zero dimensions.
	ErrDimensionMismatch = errors.New("frame dimensions inconsistent with MCU grid")
)
