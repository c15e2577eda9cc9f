package baseline

import (
	"bytes"
	"fmt"

	"github.com/pixelform/go-jpeg-raster/jpeg/common"
)

// encoderComponent is one component's plane, padded to whole MCUs.
type encoderComponent struct {
	id     byte
	h, v   int
	tq     int // quantization and entropy table index: 0 luma, 1 chroma
	plane  []byte
	stride int
	dcPred int32
}

type encoder struct {
	width, height int
	opts          EncodeOptions

	comps            []*encoderComponent
	maxH, maxV       int
	mcuWide, mcuHigh int

	// Natural-order quantization tables; DQT emission reorders to zigzag.
	qtables [2][64]int32
	dcCodes [2][256]common.HuffmanCode
	acCodes [2][256]common.HuffmanCode
}

// Encode compresses 8-bit row-major pixels (grayscale or interleaved RGB)
// into a baseline JPEG stream. Grayscale uses a single 1x1 component; RGB
// is converted to YCbCr with 4:2:0 subsampling.
func Encode(pixelData []byte, width, height, components, quality int) ([]byte, error) {
	return EncodeWithOptions(pixelData, width, height, components, EncodeOptions{Quality: quality})
}

// EncodeWithOptions is Encode with explicit options.
func EncodeWithOptions(pixelData []byte, width, height, components int, opts EncodeOptions) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if components != 1 && components != 3 {
		return nil, fmt.Errorf("unsupported component count %d", components)
	}
	if len(pixelData) < width*height*components {
		return nil, fmt.Errorf("pixel buffer holds %d bytes, need %d",
			len(pixelData), width*height*components)
	}

	e := &encoder{width: width, height: height, opts: opts}
	e.qtables[0] = common.ScaleQuantTable(common.DefaultLuminanceQuantTable, opts.Quality)
	e.qtables[1] = common.ScaleQuantTable(common.DefaultChrominanceQuantTable, opts.Quality)
	e.dcCodes[0] = common.BuildHuffmanCodes(common.BuildStandardHuffmanTable(
		common.StandardDCLuminanceBits, common.StandardDCLuminanceValues))
	e.acCodes[0] = common.BuildHuffmanCodes(common.BuildStandardHuffmanTable(
		common.StandardACLuminanceBits, common.StandardACLuminanceValues))
	e.dcCodes[1] = common.BuildHuffmanCodes(common.BuildStandardHuffmanTable(
		common.StandardDCChrominanceBits, common.StandardDCChrominanceValues))
	e.acCodes[1] = common.BuildHuffmanCodes(common.BuildStandardHuffmanTable(
		common.StandardACChrominanceBits, common.StandardACChrominanceValues))

	if components == 1 {
		e.buildGrayPlane(pixelData)
	} else {
		e.buildYCbCrPlanes(pixelData)
	}

	var buf bytes.Buffer
	w := common.NewWriter(&buf)
	if err := w.WriteMarker(common.MarkerSOI); err != nil {
		return nil, err
	}
	if err := e.writeDQT(w); err != nil {
		return nil, err
	}
	if err := e.writeSOF0(w); err != nil {
		return nil, err
	}
	if err := e.writeDHT(w); err != nil {
		return nil, err
	}
	if e.opts.RestartInterval > 0 {
		if err := w.WriteSegment(common.MarkerDRI, []byte{
			byte(e.opts.RestartInterval >> 8), byte(e.opts.RestartInterval),
		}); err != nil {
			return nil, err
		}
	}
	if err := e.writeSOS(w); err != nil {
		return nil, err
	}
	if err := e.encodeScan(w); err != nil {
		return nil, err
	}
	if err := w.WriteMarker(common.MarkerEOI); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildGrayPlane copies the grayscale image into a block-padded plane,
// replicating the last row and column into the padding.
func (e *encoder) buildGrayPlane(pixels []byte) {
	e.maxH, e.maxV = 1, 1
	e.mcuWide = common.DivCeil(e.width, 8)
	e.mcuHigh = common.DivCeil(e.height, 8)

	c := &encoderComponent{id: 1, h: 1, v: 1, tq: 0, stride: e.mcuWide * 8}
	c.plane = make([]byte, c.stride*e.mcuHigh*8)
	for y := 0; y < e.mcuHigh*8; y++ {
		sy := y
		if sy >= e.height {
			sy = e.height - 1
		}
		row := c.plane[y*c.stride:]
		copy(row, pixels[sy*e.width:(sy+1)*e.width])
		for x := e.width; x < c.stride; x++ {
			row[x] = pixels[sy*e.width+e.width-1]
		}
	}
	e.comps = []*encoderComponent{c}
}

// buildYCbCrPlanes converts interleaved RGB into a full-resolution Y plane
// and 2x2-averaged Cb/Cr planes, all padded to whole MCUs with edge
// replication.
func (e *encoder) buildYCbCrPlanes(pixels []byte) {
	e.maxH, e.maxV = 2, 2
	e.mcuWide = common.DivCeil(e.width, 16)
	e.mcuHigh = common.DivCeil(e.height, 16)

	yc := &encoderComponent{id: 1, h: 2, v: 2, tq: 0, stride: e.mcuWide * 16}
	cb := &encoderComponent{id: 2, h: 1, v: 1, tq: 1, stride: e.mcuWide * 8}
	cr := &encoderComponent{id: 3, h: 1, v: 1, tq: 1, stride: e.mcuWide * 8}
	yc.plane = make([]byte, yc.stride*e.mcuHigh*16)
	cb.plane = make([]byte, cb.stride*e.mcuHigh*8)
	cr.plane = make([]byte, cr.stride*e.mcuHigh*8)

	lumaW, lumaH := yc.stride, e.mcuHigh*16
	fullCb := make([]byte, lumaW*lumaH)
	fullCr := make([]byte, lumaW*lumaH)

	for y := 0; y < lumaH; y++ {
		sy := y
		if sy >= e.height {
			sy = e.height - 1
		}
		for x := 0; x < lumaW; x++ {
			sx := x
			if sx >= e.width {
				sx = e.width - 1
			}
			o := (sy*e.width + sx) * 3
			r := int32(pixels[o])
			g := int32(pixels[o+1])
			b := int32(pixels[o+2])

			yy := (19595*r + 38470*g + 7471*b + 32768) >> 16
			cbv := (-11056*r - 21712*g + 32768*b + 8421376) >> 16
			crv := (32768*r - 27440*g - 5328*b + 8421376) >> 16

			yc.plane[y*yc.stride+x] = byte(common.Clamp(int(yy), 0, 255))
			fullCb[y*lumaW+x] = byte(common.Clamp(int(cbv), 0, 255))
			fullCr[y*lumaW+x] = byte(common.Clamp(int(crv), 0, 255))
		}
	}

	// 4:2:0 chroma: average each 2x2 tile.
	for y := 0; y < e.mcuHigh*8; y++ {
		for x := 0; x < cb.stride; x++ {
			o := 2*y*lumaW + 2*x
			cb.plane[y*cb.stride+x] = byte((int(fullCb[o]) + int(fullCb[o+1]) +
				int(fullCb[o+lumaW]) + int(fullCb[o+lumaW+1]) + 2) / 4)
			cr.plane[y*cr.stride+x] = byte((int(fullCr[o]) + int(fullCr[o+1]) +
				int(fullCr[o+lumaW]) + int(fullCr[o+lumaW+1]) + 2) / 4)
		}
	}

	e.comps = []*encoderComponent{yc, cb, cr}
}

func (e *encoder) writeDQT(w *common.Writer) error {
	tables := 1
	if len(e.comps) == 3 {
		tables = 2
	}
	for i := 0; i < tables; i++ {
		data := make([]byte, 1+64)
		data[0] = byte(i) // 8-bit precision, table id i
		for j := 0; j < 64; j++ {
			data[1+j] = byte(e.qtables[i][common.ZigZag[j]])
		}
		if err := w.WriteSegment(common.MarkerDQT, data); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeSOF0(w *common.Writer) error {
	data := make([]byte, 6+3*len(e.comps))
	data[0] = 8
	data[1] = byte(e.height >> 8)
	data[2] = byte(e.height)
	data[3] = byte(e.width >> 8)
	data[4] = byte(e.width)
	data[5] = byte(len(e.comps))
	for i, c := range e.comps {
		data[6+3*i] = c.id
		data[7+3*i] = byte(c.h<<4 | c.v)
		data[8+3*i] = byte(c.tq)
	}
	return w.WriteSegment(common.MarkerSOF0, data)
}

func (e *encoder) writeDHT(w *common.Writer) error {
	tables := []struct {
		class byte
		id    byte
		bits  [16]int
		vals  []byte
	}{
		{0, 0, common.StandardDCLuminanceBits, common.StandardDCLuminanceValues},
		{1, 0, common.StandardACLuminanceBits, common.StandardACLuminanceValues},
	}
	if len(e.comps) == 3 {
		tables = append(tables,
			struct {
				class byte
				id    byte
				bits  [16]int
				vals  []byte
			}{0, 1, common.StandardDCChrominanceBits, common.StandardDCChrominanceValues},
			struct {
				class byte
				id    byte
				bits  [16]int
				vals  []byte
			}{1, 1, common.StandardACChrominanceBits, common.StandardACChrominanceValues},
		)
	}

	for _, t := range tables {
		data := make([]byte, 17+len(t.vals))
		data[0] = t.class<<4 | t.id
		for i, n := range t.bits {
			data[1+i] = byte(n)
		}
		copy(data[17:], t.vals)
		if err := w.WriteSegment(common.MarkerDHT, data); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeSOS(w *common.Writer) error {
	data := make([]byte, 1+2*len(e.comps)+3)
	data[0] = byte(len(e.comps))
	for i, c := range e.comps {
		data[1+2*i] = c.id
		data[2+2*i] = byte(c.tq<<4 | c.tq) // table index doubles as DC/AC selector
	}
	data[1+2*len(e.comps)] = 0
	data[2+2*len(e.comps)] = 63
	data[3+2*len(e.comps)] = 0
	return w.WriteSegment(common.MarkerSOS, data)
}

func (e *encoder) encodeScan(w *common.Writer) error {
	var buf bytes.Buffer
	bw := common.NewBitWriter(&buf)

	seq := 0
	for my := 0; my < e.mcuHigh; my++ {
		for mx := 0; mx < e.mcuWide; mx++ {
			mcu := my*e.mcuWide + mx
			if e.opts.RestartInterval > 0 && mcu > 0 && mcu%e.opts.RestartInterval == 0 {
				if err := bw.WriteRestartMarker(seq); err != nil {
					return err
				}
				seq = (seq + 1) & 7
				for _, c := range e.comps {
					c.dcPred = 0
				}
			}

			for _, c := range e.comps {
				for by := 0; by < c.v; by++ {
					for bx := 0; bx < c.h; bx++ {
						e.encodeBlock(bw, c, mx*c.h+bx, my*c.v+by)
					}
				}
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return err
	}
	return w.WriteBytes(buf.Bytes())
}

// encodeBlock transforms, quantizes and entropy-codes one 8x8 block.
func (e *encoder) encodeBlock(bw *common.BitWriter, c *encoderComponent, bx, by int) {
	var coef [64]int32
	common.DCT(c.plane[by*8*c.stride+bx*8:], c.stride, coef[:])

	qt := &e.qtables[c.tq]
	for i := range coef {
		q := qt[i]
		if coef[i] >= 0 {
			coef[i] = (coef[i] + q/2) / q
		} else {
			coef[i] = (coef[i] - q/2) / q
		}
	}

	diff := coef[0] - c.dcPred
	c.dcPred = coef[0]
	cat, bits := common.EncodeCategory(diff)
	bw.WriteCode(e.dcCodes[c.tq][cat])
	bw.WriteBits(bits, int(cat))

	run := 0
	for k := 1; k < 64; k++ {
		v := coef[common.ZigZag[k]]
		if v == 0 {
			run++
			continue
		}
		for run >= 16 {
			bw.WriteCode(e.acCodes[c.tq][0xF0]) // ZRL
			run -= 16
		}
		cat, bits := common.EncodeCategory(v)
		bw.WriteCode(e.acCodes[c.tq][byte(run<<4)|cat])
		bw.WriteBits(bits, int(cat))
		run = 0
	}
	if run > 0 {
		bw.WriteCode(e.acCodes[c.tq][0x00]) // EOB
	}
}
