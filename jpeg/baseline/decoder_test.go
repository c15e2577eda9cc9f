package baseline

import (
	"bytes"
	"errors"
	"testing"

	"github.com/pixelform/go-jpeg-raster/jpeg/common"
)

// testBlockDecoder builds a decoder with standard luminance tables and a
// flat quantization table, for driving decodeBlock directly.
func testBlockDecoder() *decoder {
	d := &decoder{}
	d.dcTables[0] = common.BuildStandardHuffmanTable(
		common.StandardDCLuminanceBits, common.StandardDCLuminanceValues)
	d.acTables[0] = common.BuildStandardHuffmanTable(
		common.StandardACLuminanceBits, common.StandardACLuminanceValues)
	for i := range d.quant[0] {
		d.quant[0][i] = 1
	}
	d.quantSet[0] = true
	return d
}

// writeTestBlock emits one DC difference followed by an end-of-block.
func writeTestBlock(bw *common.BitWriter, dcCodes, acCodes *[256]common.HuffmanCode, diff int32) {
	cat, bits := common.EncodeCategory(diff)
	bw.WriteCode(dcCodes[cat])
	bw.WriteBits(bits, int(cat))
	bw.WriteCode(acCodes[0x00])
}

func TestDCPredictorAccumulates(t *testing.T) {
	d := testBlockDecoder()
	c := &component{}

	dcCodes := common.BuildHuffmanCodes(d.dcTables[0])
	acCodes := common.BuildHuffmanCodes(d.acTables[0])

	var buf bytes.Buffer
	bw := common.NewBitWriter(&buf)
	// Differences +5 then -3 must yield absolute DC values 5 and 2.
	writeTestBlock(bw, &dcCodes, &acCodes, 5)
	writeTestBlock(bw, &dcCodes, &acCodes, -3)
	if err := bw.Flush(); err != nil {
		t.Fatal(err)
	}

	br := common.NewBitReader(buf.Bytes())
	out := make([]byte, 64)

	if err := d.decodeBlock(br, c, out, 8); err != nil {
		t.Fatalf("decodeBlock 1 failed: %v", err)
	}
	if c.dcPred != 5 {
		t.Errorf("after first block dcPred = %d, want 5", c.dcPred)
	}

	if err := d.decodeBlock(br, c, out, 8); err != nil {
		t.Fatalf("decodeBlock 2 failed: %v", err)
	}
	if c.dcPred != 2 {
		t.Errorf("after second block dcPred = %d, want 2", c.dcPred)
	}
}

func TestDecodeBlockRejectsOverlongRun(t *testing.T) {
	d := testBlockDecoder()
	c := &component{}

	dcCodes := common.BuildHuffmanCodes(d.dcTables[0])
	acCodes := common.BuildHuffmanCodes(d.acTables[0])

	var buf bytes.Buffer
	bw := common.NewBitWriter(&buf)
	cat, bits := common.EncodeCategory(1)
	bw.WriteCode(dcCodes[cat])
	bw.WriteBits(bits, int(cat))
	// Five ZRLs run 80 zero coefficients past the block end.
	for i := 0; i < 5; i++ {
		bw.WriteCode(acCodes[0xF0])
	}
	if err := bw.Flush(); err != nil {
		t.Fatal(err)
	}

	br := common.NewBitReader(buf.Bytes())
	out := make([]byte, 64)
	err := d.decodeBlock(br, c, out, 8)
	if !errors.Is(err, common.ErrCorruptEntropyStream) {
		t.Errorf("decodeBlock error = %v, want ErrCorruptEntropyStream", err)
	}
}

func TestDecodeUniformGray(t *testing.T) {
	const width, height = 16, 16
	pixels := bytes.Repeat([]byte{128}, width*height)

	data, err := Encode(pixels, width, height, 1, 50)
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
	for i, v := range got {
		if v != 128 {
			t.Fatalf("pixel %d = %d, want 128", i, v)
		}
	}
}

func TestDecodeMissingSOI(t *testing.T) {
	_, _, _, _, err := Decode([]byte{0x00, 0x01, 0x02, 0x03})
	if !errors.Is(err, common.ErrMalformedContainer) {
		t.Errorf("Decode error = %v, want ErrMalformedContainer", err)
	}
}

func TestDecodeMissingEOI(t *testing.T) {
	pixels := bytes.Repeat([]byte{90}, 16*16)
	data, err := Encode(pixels, 16, 16, 1, 75)
	if err != nil {
		t.Fatal(err)
	}

	_, _, _, _, err = Decode(data[:len(data)-2])
	if !errors.Is(err, common.ErrMalformedContainer) {
		t.Errorf("Decode error = %v, want ErrMalformedContainer", err)
	}
}

func TestDecodeProgressiveUnsupported(t *testing.T) {
	pixels := bytes.Repeat([]byte{90}, 16*16)
	data, err := Encode(pixels, 16, 16, 1, 75)
	if err != nil {
		t.Fatal(err)
	}

	idx := bytes.Index(data, []byte{0xFF, 0xC0})
	if idx < 0 {
		t.Fatal("no SOF0 in encoded stream")
	}
	data[idx+1] = 0xC2 // progressive DCT

	_, _, _, _, err = Decode(data)
	if !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Errorf("Decode error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecodeTruncatedScan(t *testing.T) {
	pixels := bytes.Repeat([]byte{90}, 32*32)
	data, err := Encode(pixels, 32, 32, 1, 75)
	if err != nil {
		t.Fatal(err)
	}

	_, _, _, _, err = Decode(data[:len(data)-10])
	if !errors.Is(err, common.ErrMalformedContainer) &&
		!errors.Is(err, common.ErrCorruptEntropyStream) {
		t.Errorf("Decode error = %v, want a container or entropy error", err)
	}
}

func gradientGray(width, height int) []byte {
	pixels := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixels[y*width+x] = byte((x*255/(width-1) + y*255/(height-1)) / 2)
		}
	}
	return pixels
}

func TestDecodeRestartInterval(t *testing.T) {
	const width, height = 48, 16
	pixels := gradientGray(width, height)

	plain, err := Encode(pixels, width, height, 1, 90)
	if err != nil {
		t.Fatal(err)
	}
	wantPixels, _, _, _, err := Decode(plain)
	if err != nil {
		t.Fatal(err)
	}

	restarted, err := EncodeWithOptions(pixels, width, height, 1,
		EncodeOptions{Quality: 90, RestartInterval: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(restarted, []byte{0xFF, 0xD0}) {
		t.Fatal("restart stream carries no RST0 marker")
	}

	got, w, h, _, err := Decode(restarted)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if w != width || h != height {
		t.Fatalf("Decode returned %dx%d, want %dx%d", w, h, width, height)
	}
	if !bytes.Equal(got, wantPixels) {
		t.Error("restart-interval decode differs from plain decode")
	}
}

func TestDecodeStrayRestartMarker(t *testing.T) {
	pixels := bytes.Repeat([]byte{90}, 16*16)
	data, err := Encode(pixels, 16, 16, 1, 75)
	if err != nil {
		t.Fatal(err)
	}

	// No restart interval is declared, so an RST0 inside the entropy data
	// is an unexpected marker, not data.
	sos := bytes.Index(data, []byte{0xFF, 0xDA})
	if sos < 0 {
		t.Fatal("no SOS in encoded stream")
	}
	entropy := sos + 10 // marker, length field and 6 header bytes
	corrupted := append([]byte(nil), data[:entropy]...)
	corrupted = append(corrupted, 0xFF, 0xD0)
	corrupted = append(corrupted, data[entropy:]...)

	_, _, _, _, err = Decode(corrupted)
	if !errors.Is(err, common.ErrCorruptEntropyStream) {
		t.Errorf("Decode error = %v, want ErrCorruptEntropyStream", err)
	}
}

func TestDecodeRestartSequenceViolation(t *testing.T) {
	pixels := gradientGray(48, 16)
	data, err := EncodeWithOptions(pixels, 48, 16, 1,
		EncodeOptions{Quality: 90, RestartInterval: 2})
	if err != nil {
		t.Fatal(err)
	}

	sos := bytes.Index(data, []byte{0xFF, 0xDA})
	rst := bytes.Index(data[sos:], []byte{0xFF, 0xD0})
	if rst < 0 {
		t.Fatal("no RST0 marker after SOS")
	}
	data[sos+rst+1] = 0xD4 // out of sequence

	_, _, _, _, err = Decode(data)
	if !errors.Is(err, common.ErrCorruptEntropyStream) {
		t.Errorf("Decode error = %v, want ErrCorruptEntropyStream", err)
	}
}

func TestDecodeRestartResync(t *testing.T) {
	const width, height = 48, 16
	pixels := gradientGray(width, height)
	clean, err := EncodeWithOptions(pixels, width, height, 1,
		EncodeOptions{Quality: 90, RestartInterval: 2})
	if err != nil {
		t.Fatal(err)
	}
	wantPixels, _, _, _, err := Decode(clean)
	if err != nil {
		t.Fatal(err)
	}

	// Inject garbage bytes immediately before the first restart marker.
	sos := bytes.Index(clean, []byte{0xFF, 0xDA})
	off := bytes.Index(clean[sos:], []byte{0xFF, 0xD0})
	if sos < 0 || off < 0 {
		t.Fatal("no RST0 marker after SOS")
	}
	rst := sos + off
	corrupted := append([]byte(nil), clean[:rst]...)
	corrupted = append(corrupted, 0x00, 0x00)
	corrupted = append(corrupted, clean[rst:]...)

	if _, _, _, _, err := Decode(corrupted); !errors.Is(err, common.ErrCorruptEntropyStream) {
		t.Errorf("strict Decode error = %v, want ErrCorruptEntropyStream", err)
	}

	got, _, _, _, err := DecodeWithOptions(corrupted, DecodeOptions{RestartResync: true})
	if err != nil {
		t.Fatalf("resync Decode failed: %v", err)
	}
	if !bytes.Equal(got, wantPixels) {
		t.Error("resynced decode differs from clean decode")
	}
}

func TestDecodeScanBeforeFrame(t *testing.T) {
	// SOI directly followed by a minimal SOS header.
	data := []byte{
		0xFF, 0xD8,
		0xFF, 0xDA, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x3F, 0x00,
	}
	_, _, _, _, err := Decode(data)
	if !errors.Is(err, common.ErrMalformedContainer) {
		t.Errorf("Decode error = %v, want ErrMalformedContainer", err)
	}
}

func TestDecodeZeroDimensions(t *testing.T) {
	// SOI + SOF0 declaring a 0x0 grayscale frame.
	data := []byte{
		0xFF, 0xD8,
		0xFF, 0xC0, 0x00, 0x0B, 0x08, 0x00, 0x00, 0x00, 0x00, 0x01, 0x01, 0x11, 0x00,
	}
	_, _, _, _, err := Decode(data)
	if !errors.Is(err, common.ErrDimensionMismatch) {
		t.Errorf("Decode error = %v, want ErrDimensionMismatch", err)
	}
}

func TestDecodeBadHuffmanTable(t *testing.T) {
	// SOI + DHT whose counts overflow the code space.
	data := []byte{
		0xFF, 0xD8,
		0xFF, 0xC4, 0x00, 0x16, 0x00,
		3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		1, 2, 3,
	}
	_, _, _, _, err := Decode(data)
	if !errors.Is(err, common.ErrInvalidTable) {
		t.Errorf("Decode error = %v, want ErrInvalidTable", err)
	}
}
