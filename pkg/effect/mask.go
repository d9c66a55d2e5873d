package effect

import "image"

// subjectAlphaFloor is the confidence cutoff on the remover's alpha channel.
// Pixels at or below it are treated as background.
const subjectAlphaFloor = 10

// Mask marks which pixels belong to the subject.
type Mask struct {
	W, H int
	Bits []bool
}

// NewMask returns an all-background mask of the given size.
func NewMask(w, h int) Mask {
	return Mask{W: w, H: h, Bits: make([]bool, w*h)}
}

// MaskFromAlpha builds the subject mask from a background-removed image:
// a pixel is subject when its alpha exceeds the confidence floor.
func MaskFromAlpha(img *image.NRGBA) Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())

	for y := 0; y < m.H; y++ {
		si := y*img.Stride + 3
		mi := y * m.W
		for x := 0; x < m.W; x++ {
			m.Bits[mi+x] = img.Pix[si] > subjectAlphaFloor
			si += 4
		}
	}

	return m
}

// At reports whether the pixel belongs to the subject. Out-of-range
// coordinates are background.
func (m Mask) At(x, y int) bool {
	if x < 0 || x >= m.W || y < 0 || y >= m.H {
		return false
	}
	return m.Bits[y*m.W+x]
}

// Erode shrinks the subject by one pixel using a 3x3 structuring element,
// suppressing the halo the remover leaves along subject edges. Neighbors
// outside the image count as subject so the mask does not erode along the
// frame.
func (m Mask) Erode() Mask {
	out := NewMask(m.W, m.H)

	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !m.Bits[y*m.W+x] {
				continue
			}
			keep := true
			for dy := -1; dy <= 1 && keep; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= m.W || ny < 0 || ny >= m.H {
						continue
					}
					if !m.Bits[ny*m.W+nx] {
						keep = false
						break
					}
				}
			}
			out.Bits[y*m.W+x] = keep
		}
	}

	return out
}

// Dilate grows the subject by one pixel using a 3x3 structuring element.
func (m Mask) Dilate() Mask {
	out := NewMask(m.W, m.H)

	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !m.Bits[y*m.W+x] {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= m.H {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx >= 0 && nx < m.W {
						out.Bits[ny*m.W+nx] = true
					}
				}
			}
		}
	}

	return out
}

// Count returns the number of subject pixels.
func (m Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}
