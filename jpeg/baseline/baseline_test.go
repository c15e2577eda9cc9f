package baseline

import (
	"bytes"
	"errors"
	"testing"

	"github.com/pixelform/go-jpeg-raster/codec"
)

func maxDiff(a, b []byte) int {
	max := 0
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}

func TestGrayRoundTrip(t *testing.T) {
	const width, height = 32, 24
	pixels := gradientGray(width, height)

	data, err := Encode(pixels, width, height, 1, 90)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, w, h, comps, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if w != width || h != height || comps != 1 {
		t.Fatalf("Decode returned %dx%dx%d, want %dx%dx1", w, h, comps, width, height)
	}
	if d := maxDiff(got, pixels); d > 10 {
		t.Errorf("max pixel error %d, want <= 10", d)
	}
}

func TestGrayRoundTripHighQuality(t *testing.T) {
	// At quality 100 every quantizer is 1, so the only loss left is the
	// fixed-point transform error of a couple of gray levels.
	const width, height = 8, 8
	pixels := gradientGray(width, height)

	data, err := Encode(pixels, width, height, 1, 100)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, _, _, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if d := maxDiff(got, pixels); d > 4 {
		t.Errorf("max pixel error %d, want <= 4", d)
	}
}

func TestRGBRoundTripSolid(t *testing.T) {
	// Odd dimensions exercise MCU padding and upsample cropping.
	const width, height = 21, 13
	pixels := make([]byte, width*height*3)
	for i := 0; i < len(pixels); i += 3 {
		pixels[i], pixels[i+1], pixels[i+2] = 200, 120, 80
	}

	data, err := Encode(pixels, width, height, 3, 90)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, w, h, comps, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if w != width || h != height || comps != 3 {
		t.Fatalf("Decode returned %dx%dx%d, want %dx%dx3", w, h, comps, width, height)
	}
	if d := maxDiff(got, pixels); d > 6 {
		t.Errorf("max pixel error %d, want <= 6", d)
	}
}

func TestRGBRoundTripGradient(t *testing.T) {
	const width, height = 32, 32
	pixels := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := (y*width + x) * 3
			pixels[o+0] = byte(x * 255 / (width - 1))
			pixels[o+1] = byte(y * 255 / (height - 1))
			pixels[o+2] = 96
		}
	}

	data, err := Encode(pixels, width, height, 3, 95)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, _, _, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	// Chroma is subsampled, so allow a wider tolerance than grayscale.
	if d := maxDiff(got, pixels); d > 24 {
		t.Errorf("max pixel error %d, want <= 24", d)
	}
}

func TestEncodeRejectsBadParameters(t *testing.T) {
	pixels := bytes.Repeat([]byte{1}, 64)

	tests := []struct {
		name          string
		width, height int
		components    int
		quality       int
	}{
		{"zero width", 0, 8, 1, 75},
		{"two components", 8, 8, 2, 75},
		{"quality too low", 8, 8, 1, 0},
		{"quality too high", 8, 8, 1, 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(pixels, tt.width, tt.height, tt.components, tt.quality); err == nil {
				t.Error("Encode succeeded, want error")
			}
		})
	}

	t.Run("short buffer", func(t *testing.T) {
		if _, err := Encode(pixels, 16, 16, 1, 75); err == nil {
			t.Error("Encode succeeded, want error")
		}
	})
}

func TestCodecRegistration(t *testing.T) {
	c, err := codec.Get(Name)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", Name, err)
	}

	pixels := gradientGray(16, 16)
	encoded, err := c.Encode(pixels, codec.EncodeParams{Width: 16, Height: 16, Components: 1})
	if err != nil {
		t.Fatalf("codec Encode failed: %v", err)
	}

	detected, err := codec.Detect(encoded)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if detected.Name() != Name {
		t.Fatalf("Detect returned %q, want %q", detected.Name(), Name)
	}

	res, err := detected.Decode(encoded)
	if err != nil {
		t.Fatalf("codec Decode failed: %v", err)
	}
	if res.Width != 16 || res.Height != 16 || res.Components != 1 || res.BitDepth != 8 {
		t.Errorf("DecodeResult = %dx%dx%d/%d, want 16x16x1/8",
			res.Width, res.Height, res.Components, res.BitDepth)
	}
	if d := maxDiff(res.PixelData, pixels); d > 10 {
		t.Errorf("max pixel error %d, want <= 10", d)
	}
}

func TestCodecEncodeValidatesParams(t *testing.T) {
	c, err := codec.Get(Name)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Encode(nil, codec.EncodeParams{Width: -1, Height: 8, Components: 1})
	if !errors.Is(err, codec.ErrInvalidParameters) {
		t.Errorf("Encode error = %v, want ErrInvalidParameters", err)
	}
}

func benchmarkImage(width, height int) []byte {
	pixels := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := (y*width + x) * 3
			pixels[o+0] = byte(x ^ y)
			pixels[o+1] = byte(x + y)
			pixels[o+2] = byte(x * y >> 4)
		}
	}
	return pixels
}

func BenchmarkDecodeRGB(b *testing.B) {
	pixels := benchmarkImage(256, 256)
	data, err := Encode(pixels, 256, 256, 3, 90)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(pixels)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, _, _, err := Decode(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeGray(b *testing.B) {
	pixels := gradientGray(256, 256)
	data, err := Encode(pixels, 256, 256, 1, 90)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(pixels)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, _, _, err := Decode(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncodeRGB(b *testing.B) {
	pixels := benchmarkImage(256, 256)
	b.SetBytes(int64(len(pixels)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(pixels, 256, 256, 3, 90); err != nil {
			b.Fatal(err)
		}
	}
}
