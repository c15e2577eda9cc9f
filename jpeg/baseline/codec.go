package baseline

import (
	"github.com/pixelform/go-jpeg-raster/codec"
)

// Name is the registry key of the baseline JPEG codec.
const Name = "jpeg-baseline"

// Codec adapts this package to the codec.Codec interface.
type Codec struct{}

func init() {
	codec.Register(Codec{})
}

// Name implements codec.Codec.
func (Codec) Name() string { return Name }

// Magic implements codec.Codec. Every JPEG stream starts with SOI.
func (Codec) Magic() []byte { return []byte{0xFF, 0xD8} }

// Decode implements codec.Codec.
func (Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	pixels, width, height, components, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{
		PixelData:  pixels,
		Width:      width,
		Height:     height,
		Components: components,
		BitDepth:   8,
	}, nil
}

// Encode implements codec.Codec.
func (Codec) Encode(pixelData []byte, params codec.EncodeParams) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	quality := params.Quality
	if quality == 0 {
		quality = codec.DefaultQuality
	}
	return EncodeWithOptions(pixelData, params.Width, params.Height, params.Components,
		EncodeOptions{Quality: quality, RestartInterval: params.RestartInterval})
}
