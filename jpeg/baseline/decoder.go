// Package baseline implements a baseline sequential JPEG codec: 8-bit
// precision, Huffman entropy coding, a single interleaved scan.
package baseline

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pixelform/go-jpeg-raster/jpeg/common"
)

// component carries one component's frame parameters, its scan state and
// the plane the scan decodes into. Planes are padded to whole MCUs; stride
// is the padded row length.
type component struct {
	id     byte
	h, v   int
	tq     byte
	dcSel  byte
	acSel  byte
	dcPred int32
	plane  []byte
	stride int
}

type decoder struct {
	data []byte
	opts DecodeOptions

	width, height    int
	comps            []*component
	maxH, maxV       int
	mcuWide, mcuHigh int

	quant    [4][64]int32
	quantSet [4]bool
	dcTables [4]*common.HuffmanTable
	acTables [4]*common.HuffmanTable

	restartInterval int
}

// Decode decodes a baseline JPEG stream into 8-bit row-major pixels:
// grayscale for single-component frames, interleaved RGB for three
// components. On error no partial output is returned.
func Decode(data []byte) (pixelData []byte, width, height, components int, err error) {
	return DecodeWithOptions(data, DecodeOptions{})
}

// DecodeWithOptions is Decode with explicit options.
func DecodeWithOptions(data []byte, opts DecodeOptions) ([]byte, int, int, int, error) {
	d := &decoder{data: data, opts: opts}
	pixels, err := d.decode()
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return pixels, d.width, d.height, len(d.comps), nil
}

func (d *decoder) decode() ([]byte, error) {
	br := bytes.NewReader(d.data)
	r := common.NewReader(br)

	marker, err := r.ReadMarker()
	if err != nil {
		return nil, err
	}
	if marker != common.MarkerSOI {
		return nil, fmt.Errorf("%w: missing SOI", common.ErrMalformedContainer)
	}

	for {
		marker, err = r.ReadMarker()
		if err != nil {
			return nil, err
		}

		switch {
		case marker == common.MarkerSOF0:
			seg, err := r.ReadSegment()
			if err != nil {
				return nil, err
			}
			if err := d.parseSOF(seg); err != nil {
				return nil, err
			}

		case common.IsSOF(marker):
			return nil, fmt.Errorf("%w: frame type 0x%04x", common.ErrUnsupportedFormat, marker)

		case marker == common.MarkerDAC:
			return nil, fmt.Errorf("%w: arithmetic coding", common.ErrUnsupportedFormat)

		case marker == common.MarkerDQT:
			seg, err := r.ReadSegment()
			if err != nil {
				return nil, err
			}
			if err := d.parseDQT(seg); err != nil {
				return nil, err
			}

		case marker == common.MarkerDHT:
			seg, err := r.ReadSegment()
			if err != nil {
				return nil, err
			}
			if err := d.parseDHT(seg); err != nil {
				return nil, err
			}

		case marker == common.MarkerDRI:
			seg, err := r.ReadSegment()
			if err != nil {
				return nil, err
			}
			if err := d.parseDRI(seg); err != nil {
				return nil, err
			}

		case marker == common.MarkerSOS:
			seg, err := r.ReadSegment()
			if err != nil {
				return nil, err
			}
			if err := d.parseSOS(seg); err != nil {
				return nil, err
			}
			// Everything after the SOS header is entropy-coded data
			// followed by trailing markers.
			if err := d.decodeScan(d.data[len(d.data)-br.Len():]); err != nil {
				return nil, err
			}
			return d.convert()

		case marker == common.MarkerEOI:
			return nil, fmt.Errorf("%w: EOI before scan data", common.ErrMalformedContainer)

		case common.IsRST(marker):
			return nil, fmt.Errorf("%w: restart marker outside scan", common.ErrMalformedContainer)

		default:
			// APPn, COM and any other segment we do not interpret.
			if _, err := r.ReadSegment(); err != nil {
				return nil, err
			}
		}
	}
}

func (d *decoder) parseSOF(seg []byte) error {
	if d.comps != nil {
		return fmt.Errorf("%w: multiple frame headers", common.ErrMalformedContainer)
	}
	if len(seg) < 6 {
		return fmt.Errorf("%w: frame header too short", common.ErrMalformedContainer)
	}
	if seg[0] != 8 {
		return fmt.Errorf("%w: sample precision %d", common.ErrUnsupportedFormat, seg[0])
	}
	d.height = int(seg[1])<<8 | int(seg[2])
	d.width = int(seg[3])<<8 | int(seg[4])
	if d.width == 0 || d.height == 0 {
		return fmt.Errorf("%w: %dx%d frame", common.ErrDimensionMismatch, d.width, d.height)
	}
	n := int(seg[5])
	if n != 1 && n != 3 {
		return fmt.Errorf("%w: %d components", common.ErrUnsupportedFormat, n)
	}
	if len(seg) != 6+3*n {
		return fmt.Errorf("%w: frame header length %d for %d components",
			common.ErrMalformedContainer, len(seg)+2, n)
	}

	d.maxH, d.maxV = 1, 1
	for i := 0; i < n; i++ {
		p := seg[6+3*i:]
		c := &component{id: p[0], h: int(p[1] >> 4), v: int(p[1] & 0x0F), tq: p[2]}
		if c.h < 1 || c.h > 4 || c.v < 1 || c.v > 4 {
			return fmt.Errorf("%w: sampling factors %dx%d", common.ErrMalformedContainer, c.h, c.v)
		}
		if c.tq > 3 {
			return fmt.Errorf("%w: quantization table selector %d", common.ErrMalformedContainer, c.tq)
		}
		for _, prev := range d.comps {
			if prev.id == c.id {
				return fmt.Errorf("%w: duplicate component id %d", common.ErrMalformedContainer, c.id)
			}
		}
		if c.h > d.maxH {
			d.maxH = c.h
		}
		if c.v > d.maxV {
			d.maxV = c.v
		}
		d.comps = append(d.comps, c)
	}

	// A single-component scan is decoded one block per MCU regardless of
	// the declared sampling factors.
	if n == 1 {
		d.comps[0].h, d.comps[0].v = 1, 1
		d.maxH, d.maxV = 1, 1
	}

	d.mcuWide = common.DivCeil(d.width, 8*d.maxH)
	d.mcuHigh = common.DivCeil(d.height, 8*d.maxV)

	for _, c := range d.comps {
		c.stride = d.mcuWide * c.h * 8
		c.plane = make([]byte, c.stride*d.mcuHigh*c.v*8)
	}
	return nil
}

func (d *decoder) parseDQT(seg []byte) error {
	for len(seg) > 0 {
		pq := seg[0] >> 4
		tq := seg[0] & 0x0F
		if pq > 1 {
			return fmt.Errorf("%w: quantization precision %d", common.ErrInvalidTable, pq)
		}
		if tq > 3 {
			return fmt.Errorf("%w: quantization table id %d", common.ErrInvalidTable, tq)
		}
		seg = seg[1:]

		// Entries arrive and are stored in zigzag scan order.
		if pq == 0 {
			if len(seg) < 64 {
				return fmt.Errorf("%w: truncated quantization table", common.ErrInvalidTable)
			}
			for i := 0; i < 64; i++ {
				d.quant[tq][i] = int32(seg[i])
			}
			seg = seg[64:]
		} else {
			if len(seg) < 128 {
				return fmt.Errorf("%w: truncated quantization table", common.ErrInvalidTable)
			}
			for i := 0; i < 64; i++ {
				d.quant[tq][i] = int32(seg[2*i])<<8 | int32(seg[2*i+1])
			}
			seg = seg[128:]
		}
		d.quantSet[tq] = true
	}
	return nil
}

func (d *decoder) parseDHT(seg []byte) error {
	for len(seg) > 0 {
		if len(seg) < 17 {
			return fmt.Errorf("%w: truncated huffman table header", common.ErrInvalidTable)
		}
		tc := seg[0] >> 4
		th := seg[0] & 0x0F
		if tc > 1 {
			return fmt.Errorf("%w: huffman table class %d", common.ErrInvalidTable, tc)
		}
		if th > 3 {
			return fmt.Errorf("%w: huffman table id %d", common.ErrInvalidTable, th)
		}

		var bits [16]int
		total := 0
		for i := 0; i < 16; i++ {
			bits[i] = int(seg[1+i])
			total += bits[i]
		}
		if len(seg) < 17+total {
			return fmt.Errorf("%w: huffman table declares %d values, %d present",
				common.ErrInvalidTable, total, len(seg)-17)
		}

		h := &common.HuffmanTable{
			Bits:   bits,
			Values: append([]byte(nil), seg[17:17+total]...),
		}
		if err := h.Build(); err != nil {
			return err
		}
		if tc == 0 {
			d.dcTables[th] = h
		} else {
			d.acTables[th] = h
		}
		seg = seg[17+total:]
	}
	return nil
}

func (d *decoder) parseDRI(seg []byte) error {
	if len(seg) != 2 {
		return fmt.Errorf("%w: restart interval segment length %d", common.ErrMalformedContainer, len(seg)+2)
	}
	d.restartInterval = int(seg[0])<<8 | int(seg[1])
	return nil
}

func (d *decoder) parseSOS(seg []byte) error {
	if d.comps == nil {
		return fmt.Errorf("%w: scan header before frame header", common.ErrMalformedContainer)
	}
	if len(seg) < 1 {
		return fmt.Errorf("%w: empty scan header", common.ErrMalformedContainer)
	}
	n := int(seg[0])
	if n != len(d.comps) {
		return fmt.Errorf("%w: scan covers %d of %d components",
			common.ErrUnsupportedFormat, n, len(d.comps))
	}
	if len(seg) != 1+2*n+3 {
		return fmt.Errorf("%w: scan header length %d", common.ErrMalformedContainer, len(seg)+2)
	}

	seen := make(map[byte]bool, n)
	for i := 0; i < n; i++ {
		cs := seg[1+2*i]
		sel := seg[2+2*i]
		if seen[cs] {
			return fmt.Errorf("%w: component %d selected twice", common.ErrMalformedContainer, cs)
		}
		seen[cs] = true

		var c *component
		for _, cc := range d.comps {
			if cc.id == cs {
				c = cc
				break
			}
		}
		if c == nil {
			return fmt.Errorf("%w: scan component %d not in frame", common.ErrMalformedContainer, cs)
		}
		c.dcSel = sel >> 4
		c.acSel = sel & 0x0F
		if c.dcSel > 3 || c.acSel > 3 {
			return fmt.Errorf("%w: entropy table selector 0x%02x", common.ErrMalformedContainer, sel)
		}
		if d.dcTables[c.dcSel] == nil {
			return fmt.Errorf("%w: DC table %d never defined", common.ErrMalformedContainer, c.dcSel)
		}
		if d.acTables[c.acSel] == nil {
			return fmt.Errorf("%w: AC table %d never defined", common.ErrMalformedContainer, c.acSel)
		}
		if !d.quantSet[c.tq] {
			return fmt.Errorf("%w: quantization table %d never defined", common.ErrMalformedContainer, c.tq)
		}
	}

	ss, se, a := seg[1+2*n], seg[2+2*n], seg[3+2*n]
	if ss != 0 || se != 63 || a != 0 {
		return fmt.Errorf("%w: spectral selection %d..%d/%d", common.ErrUnsupportedFormat, ss, se, a)
	}
	return nil
}

// decodeScan runs the interleaved MCU loop over the entropy-coded data and
// verifies the stream ends at EOI.
func (d *decoder) decodeScan(entropy []byte) error {
	br := common.NewBitReader(entropy)
	br.AllowRestarts = d.restartInterval > 0

	seq := 0
	for my := 0; my < d.mcuHigh; my++ {
		for mx := 0; mx < d.mcuWide; mx++ {
			mcu := my*d.mcuWide + mx
			if d.restartInterval > 0 && mcu > 0 && mcu%d.restartInterval == 0 {
				if err := br.ReadRestartMarker(seq); err != nil {
					if !d.opts.RestartResync {
						return err
					}
					if err := br.ResyncToRestart(seq); err != nil {
						return err
					}
				}
				seq = (seq + 1) & 7
				for _, c := range d.comps {
					c.dcPred = 0
				}
			}

			for _, c := range d.comps {
				for by := 0; by < c.v; by++ {
					for bx := 0; bx < c.h; bx++ {
						off := (my*c.v+by)*8*c.stride + (mx*c.h+bx)*8
						if err := d.decodeBlock(br, c, c.plane[off:], c.stride); err != nil {
							return err
						}
					}
				}
			}
		}
	}

	br.ByteAlign()
	return verifyEOI(br.Trailing())
}

// decodeBlock entropy-decodes one 8x8 block and reconstructs it into out.
func (d *decoder) decodeBlock(br *common.BitReader, c *component, out []byte, stride int) error {
	var zz [64]int32

	s, err := br.Decode(d.dcTables[c.dcSel])
	if err != nil {
		return err
	}
	if s > 11 {
		return fmt.Errorf("%w: DC category %d", common.ErrCorruptEntropyStream, s)
	}
	diff, err := br.ReceiveExtend(s)
	if err != nil {
		return err
	}
	c.dcPred += diff
	zz[0] = c.dcPred

	for k := 1; k < 64; {
		rs, err := br.Decode(d.acTables[c.acSel])
		if err != nil {
			return err
		}
		run, size := int(rs>>4), rs&0x0F
		if size == 0 {
			if rs == 0x00 {
				break // end of block
			}
			if rs != 0xF0 {
				return fmt.Errorf("%w: AC symbol 0x%02x", common.ErrCorruptEntropyStream, rs)
			}
			k += 16
			if k > 64 {
				return fmt.Errorf("%w: zero run past block end", common.ErrCorruptEntropyStream)
			}
			continue
		}
		if size > 10 {
			return fmt.Errorf("%w: AC category %d", common.ErrCorruptEntropyStream, size)
		}
		k += run
		if k > 63 {
			return fmt.Errorf("%w: coefficient index %d past block end", common.ErrCorruptEntropyStream, k)
		}
		v, err := br.ReceiveExtend(size)
		if err != nil {
			return err
		}
		zz[k] = v
		k++
	}

	reconstruct(&zz, &d.quant[c.tq], out, stride)
	return nil
}

// verifyEOI checks that entropy-coded data is followed by EOI, allowing
// fill bytes before the marker.
func verifyEOI(tail []byte) error {
	i := 0
	for i+1 < len(tail) && tail[i] == 0xFF && tail[i+1] == 0xFF {
		i++
	}
	if i+1 < len(tail) && tail[i] == 0xFF && tail[i+1] == 0xD9 {
		return nil
	}
	return fmt.Errorf("%w: missing EOI after scan", common.ErrMalformedContainer)
}

// convert assembles the decoded planes into the output pixel buffer.
func (d *decoder) convert() ([]byte, error) {
	if len(d.comps) == 1 {
		c := d.comps[0]
		out := make([]byte, d.width*d.height)
		for y := 0; y < d.height; y++ {
			copy(out[y*d.width:(y+1)*d.width], c.plane[y*c.stride:y*c.stride+d.width])
		}
		return out, nil
	}

	// Planes expand independently, one goroutine each.
	planes := make([][]byte, len(d.comps))
	var wg sync.WaitGroup
	for i, c := range d.comps {
		wg.Add(1)
		go func(i int, c *component) {
			defer wg.Done()
			planes[i] = expandPlane(c.plane, c.stride, c.h, c.v, d.maxH, d.maxV, d.width, d.height)
		}(i, c)
	}
	wg.Wait()

	return ycbcrToRGB(planes[0], planes[1], planes[2], d.width, d.height), nil
}
