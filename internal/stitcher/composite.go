package stitcher

// copyRGBATile copies the srcW x srcH top-left part of tile, whose rows are
// stride pixels long, into dst (dstW x dstH) with the tile's origin at the
// signed position (ox, oy). Pixels landing outside dst are skipped. Red and
// blue are swapped on every copied pixel.
func copyRGBATile(tile []uint32, stride, srcW, srcH int, dst []uint32, ox, oy, dstW, dstH int) {
	srcOriginY := 0
	if oy < 0 { // off the top
		srcOriginY = -oy
	}

	srcOriginX := 0
	if ox < 0 { // off the left
		srcOriginX = -ox
	}

	for srcY := srcOriginY; srcY < srcH; srcY++ {
		dstY := oy + srcY
		if dstY >= dstH {
			break
		}
		for srcX := srcOriginX; srcX < srcW; srcX++ {
			dstX := ox + srcX
			if dstX >= dstW {
				break
			}
			dst[dstY*dstW+dstX] = swapRedBlue(tile[srcY*stride+srcX])
		}
	}
}

func swapRedBlue(p uint32) uint32 {
	return p&0xFF00FF00 | (p<<16)&0xFF0000 | (p>>16)&0xFF
}
