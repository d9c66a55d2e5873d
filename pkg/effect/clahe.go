package effect

import (
	"image"
	"math"
)

// CLAHE applies contrast limited adaptive histogram equalization, matching
// OpenCV's behavior: the image is divided into a tileSize x tileSize grid,
// each tile gets a clip-limited equalization LUT, and pixels are mapped by
// bilinear interpolation between the four surrounding tile LUTs.
func CLAHE(gray *image.Gray, clipLimit float64, tileSize int) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	tilesX, tilesY := tileSize, tileSize
	tileW := (w + tilesX - 1) / tilesX
	tileH := (h + tilesY - 1) / tilesY

	luts := make([][256]uint8, tilesX*tilesY)

	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			xStart := tx * tileW
			yStart := ty * tileH
			xEnd := min(xStart+tileW, w)
			yEnd := min(yStart+tileH, h)
			tilePixels := (xEnd - xStart) * (yEnd - yStart)

			var hist [256]uint32
			for y := yStart; y < yEnd; y++ {
				row := y * gray.Stride
				for x := xStart; x < xEnd; x++ {
					hist[gray.Pix[row+x]]++
				}
			}

			clip := uint32(max(clipLimit*float64(tilePixels)/256.0, 1.0))
			clipHistogram(&hist, clip)

			var cdf [256]uint32
			cdf[0] = hist[0]
			for i := 1; i < 256; i++ {
				cdf[i] = cdf[i-1] + hist[i]
			}

			lut := &luts[ty*tilesX+tx]
			total := cdf[255]
			if total == 0 {
				for i := range lut {
					lut[i] = uint8(i)
				}
			} else {
				for i := 0; i < 256; i++ {
					v := uint32(float64(cdf[i])*255.0/float64(total) + 0.5)
					if v > 255 {
						v = 255
					}
					lut[i] = uint8(v)
				}
			}
		}
	}

	// Interpolate between tile LUTs, anchored at tile centers.
	for y := 0; y < h; y++ {
		srow := y * gray.Stride
		drow := y * out.Stride
		fy := (float64(y) - float64(tileH)/2.0) / float64(tileH)
		ty0 := clampInt(int(math.Floor(fy)), 0, tilesY-1)
		ty1 := min(ty0+1, tilesY-1)
		ay := clampF(fy-float64(ty0), 0, 1)

		for x := 0; x < w; x++ {
			fx := (float64(x) - float64(tileW)/2.0) / float64(tileW)
			tx0 := clampInt(int(math.Floor(fx)), 0, tilesX-1)
			tx1 := min(tx0+1, tilesX-1)
			ax := clampF(fx-float64(tx0), 0, 1)

			v := gray.Pix[srow+x]
			tl := float64(luts[ty0*tilesX+tx0][v])
			tr := float64(luts[ty0*tilesX+tx1][v])
			bl := float64(luts[ty1*tilesX+tx0][v])
			br := float64(luts[ty1*tilesX+tx1][v])

			top := tl*(1-ax) + tr*ax
			bottom := bl*(1-ax) + br*ax
			out.Pix[drow+x] = uint8(clampF(top*(1-ay)+bottom*ay+0.5, 0, 255))
		}
	}

	return out
}

// clipHistogram caps bins at limit and iteratively redistributes the excess,
// the way OpenCV does. Redistribution can push bins back over the limit, so
// it loops until no excess remains (bounded to avoid spinning).
func clipHistogram(hist *[256]uint32, limit uint32) {
	for iter := 0; iter < 256; iter++ {
		var excess uint32
		for i := range hist {
			if hist[i] > limit {
				excess += hist[i] - limit
				hist[i] = limit
			}
		}
		if excess == 0 {
			break
		}

		avgInc := excess / 256
		remainder := int(excess % 256)

		if avgInc > 0 {
			for i := range hist {
				hist[i] = min(hist[i]+avgInc, limit)
			}
		}

		distributed := 0
		for i := range hist {
			if distributed >= remainder {
				break
			}
			if hist[i] < limit {
				hist[i]++
				distributed++
			}
		}
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
