package effect

import (
	"image"
	"image/color"
)

// SobelMagnitude computes the gradient magnitude |gx| + |gy| of a grayscale
// image with reflect-101 borders, normalized to the full 0-255 range. A flat
// image yields all zeros.
func SobelMagnitude(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	raw := make([]int, w*h)
	maxVal := 0

	for y := 0; y < h; y++ {
		ym1 := reflect101(y-1, h)
		yp1 := reflect101(y+1, h)
		for x := 0; x < w; x++ {
			xm1 := reflect101(x-1, w)
			xp1 := reflect101(x+1, w)

			tl := int(gray.Pix[ym1*gray.Stride+xm1])
			tc := int(gray.Pix[ym1*gray.Stride+x])
			tr := int(gray.Pix[ym1*gray.Stride+xp1])
			ml := int(gray.Pix[y*gray.Stride+xm1])
			mr := int(gray.Pix[y*gray.Stride+xp1])
			bl := int(gray.Pix[yp1*gray.Stride+xm1])
			bc := int(gray.Pix[yp1*gray.Stride+x])
			br := int(gray.Pix[yp1*gray.Stride+xp1])

			gx := -tl + tr - 2*ml + 2*mr - bl + br
			gy := -tl - 2*tc - tr + bl + 2*bc + br

			mag := abs(gx) + abs(gy)
			raw[y*w+x] = mag
			if mag > maxVal {
				maxVal = mag
			}
		}
	}

	if maxVal == 0 {
		return out
	}
	for y := 0; y < h; y++ {
		drow := y * out.Stride
		for x := 0; x < w; x++ {
			out.Pix[drow+x] = uint8(min(raw[y*w+x]*255/maxVal, 255))
		}
	}

	return out
}

// EdgeMask thresholds gradient magnitudes into a binary edge map and
// thickens it. Magnitudes at or above threshold become edges; edgeWidth
// controls line weight (1 = no dilation, 2 = 3x3, 3 = 5x5, ...).
func EdgeMask(magnitudes *image.Gray, threshold uint8, edgeWidth int) Mask {
	b := magnitudes.Bounds()
	w, h := b.Dx(), b.Dy()
	m := NewMask(w, h)

	for y := 0; y < h; y++ {
		srow := y * magnitudes.Stride
		mrow := y * w
		for x := 0; x < w; x++ {
			m.Bits[mrow+x] = magnitudes.Pix[srow+x] >= threshold
		}
	}

	if edgeWidth <= 1 {
		return m
	}

	radius := edgeWidth - 1
	out := NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !m.Bits[y*w+x] {
				continue
			}
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx >= 0 && nx < w {
						out.Bits[ny*w+nx] = true
					}
				}
			}
		}
	}

	return out
}

// OverlayEdges paints edge pixels with the given color, in place.
func OverlayEdges(img *image.NRGBA, edges Mask, c color.NRGBA) {
	for y := 0; y < edges.H; y++ {
		mrow := y * edges.W
		di := y * img.Stride
		for x := 0; x < edges.W; x++ {
			if edges.Bits[mrow+x] {
				img.Pix[di+0] = c.R
				img.Pix[di+1] = c.G
				img.Pix[di+2] = c.B
				img.Pix[di+3] = c.A
			}
			di += 4
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
