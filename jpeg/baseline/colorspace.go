package baseline

import (
	"runtime"
	"sync"

	"github.com/pixelform/go-jpeg-raster/jpeg/common"
)

// Fixed-point YCbCr coefficients, scaled by 65536.
const (
	crToR = 91881  // 1.402
	cbToG = 22554  // 0.344136
	crToG = 46802  // 0.714136
	cbToB = 116130 // 1.772
)

// ycbcrToRGB converts full-resolution planes into interleaved RGB. Rows are
// striped across the available CPUs; each worker writes a disjoint slice of
// the output.
func ycbcrToRGB(y, cb, cr []byte, width, height int) []byte {
	out := make([]byte, width*height*3)

	workers := runtime.NumCPU()
	if workers > height {
		workers = height
	}
	rowsPer := common.DivCeil(height, workers)

	var wg sync.WaitGroup
	for start := 0; start < height; start += rowsPer {
		end := start + rowsPer
		if end > height {
			end = height
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			convertRows(y, cb, cr, out, width, start, end)
		}(start, end)
	}
	wg.Wait()

	return out
}

func convertRows(y, cb, cr, out []byte, width, startRow, endRow int) {
	for row := startRow; row < endRow; row++ {
		for col := 0; col < width; col++ {
			i := row*width + col
			yy := int32(y[i])<<16 + 32768
			cbv := int32(cb[i]) - 128
			crv := int32(cr[i]) - 128

			r := (yy + crToR*crv) >> 16
			g := (yy - cbToG*cbv - crToG*crv) >> 16
			b := (yy + cbToB*cbv) >> 16

			o := i * 3
			out[o+0] = byte(common.Clamp(int(r), 0, 255))
			out[o+1] = byte(common.Clamp(int(g), 0, 255))
			out[o+2] = byte(common.Clamp(int(b), 0, 255))
		}
	}
}
