// Package codec defines the image codec abstraction and a global registry
// with magic-byte format detection.
package codec

import "fmt"

// DecodeResult holds the output of a decode operation.
type DecodeResult struct {
	// PixelData is row-major and component-interleaved.
	PixelData []byte
	Width     int
	Height    int
	// Components is 1 for grayscale, 3 for RGB.
	Components int
	// BitDepth is the per-sample precision.
	BitDepth int
}

// EncodeParams describes the raw pixels handed to Encode.
type EncodeParams struct {
	Width      int
	Height     int
	Components int

	// Quality in 1..100; zero selects DefaultQuality.
	Quality int

	// RestartInterval, when positive, requests restart markers every that
	// many MCUs (for codecs that support them).
	RestartInterval int
}

// DefaultQuality is used when EncodeParams.Quality is zero.
const DefaultQuality = 90

// Validate checks the encode parameters.
func (p EncodeParams) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidParameters, p.Width, p.Height)
	}
	if p.Components != 1 && p.Components != 3 {
		return fmt.Errorf("%w: %d components", ErrInvalidParameters, p.Components)
	}
	if p.Quality < 0 || p.Quality > 100 {
		return fmt.Errorf("%w: quality %d", ErrInvalidParameters, p.Quality)
	}
	if p.RestartInterval < 0 || p.RestartInterval > 0xFFFF {
		return fmt.Errorf("%w: restart interval %d", ErrInvalidParameters, p.RestartInterval)
	}
	return nil
}

// Codec is an image compression codec.
type Codec interface {
	// Name returns the registry key, e.g. "jpeg-baseline".
	Name() string

	// Magic returns the byte prefix identifying the codec's format.
	Magic() []byte

	// Decode decompresses an encoded stream.
	Decode(data []byte) (*DecodeResult, error)

	// Encode compresses raw pixels.
	Encode(pixelData []byte, params EncodeParams) ([]byte, error)
}
