package baseline

// expandPlane resamples a component plane to the full frame size using
// nearest neighbor: destination (x, y) reads source (x*h/maxH, y*v/maxV).
// The returned plane is width*height with no padding.
func expandPlane(src []byte, srcStride, h, v, maxH, maxV, width, height int) []byte {
	dst := make([]byte, width*height)

	switch {
	case h == maxH && v == maxV:
		for y := 0; y < height; y++ {
			copy(dst[y*width:(y+1)*width], src[y*srcStride:y*srcStride+width])
		}

	case 2*h == maxH && 2*v == maxV:
		// The 4:2:0 case: every source sample covers a 2x2 tile.
		for y := 0; y < height; y++ {
			srow := src[(y/2)*srcStride:]
			drow := dst[y*width : (y+1)*width]
			x := 0
			for ; x+1 < width; x += 2 {
				s := srow[x/2]
				drow[x] = s
				drow[x+1] = s
			}
			if x < width {
				drow[x] = srow[x/2]
			}
		}

	default:
		for y := 0; y < height; y++ {
			srow := src[(y*v/maxV)*srcStride:]
			drow := dst[y*width : (y+1)*width]
			for x := 0; x < width; x++ {
				drow[x] = srow[x*h/maxH]
			}
		}
	}

	return dst
}
