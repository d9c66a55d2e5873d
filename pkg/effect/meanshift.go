package effect

import (
	"image"

	"github.com/disintegration/imaging"
)

const (
	meanShiftMaxIter  = 5
	meanShiftMaxLevel = 2
)

// MeanShiftFilter smooths colors while preserving edges, following OpenCV's
// pyramid mean-shift filtering. Each pixel's window, bounded by the spatial
// radius sp, repeatedly shifts toward the mean of neighbors whose squared
// RGB distance stays within sr*sr, for at most five iterations. The filter
// runs over a two-level image pyramid coarse to fine; at finer levels only
// pixels whose upsampled color no longer matches the source get recomputed.
// Alpha is carried through untouched.
func MeanShiftFilter(img *image.NRGBA, sp, sr int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || sp < 1 {
		return imaging.Clone(img)
	}

	src := make([]*image.NRGBA, 1, meanShiftMaxLevel+1)
	src[0] = imaging.Clone(img)
	for level := 1; level <= meanShiftMaxLevel; level++ {
		prev := src[level-1]
		pw := (prev.Bounds().Dx() + 1) / 2
		ph := (prev.Bounds().Dy() + 1) / 2
		if pw < 1 || ph < 1 {
			break
		}
		src = append(src, imaging.Resize(prev, pw, ph, imaging.Linear))
	}

	sr2 := sr * sr
	var dst *image.NRGBA

	for level := len(src) - 1; level >= 0; level-- {
		cur := src[level]
		cw, ch := cur.Bounds().Dx(), cur.Bounds().Dy()
		out := image.NewNRGBA(image.Rect(0, 0, cw, ch))

		var up *image.NRGBA
		redo := Mask{}
		if dst != nil {
			up = imaging.Resize(dst, cw, ch, imaging.Linear)
			redo = NewMask(cw, ch)
			for y := 0; y < ch; y++ {
				for x := 0; x < cw; x++ {
					si := y*cur.Stride + x*4
					ui := y*up.Stride + x*4
					dr := int(cur.Pix[si+0]) - int(up.Pix[ui+0])
					dg := int(cur.Pix[si+1]) - int(up.Pix[ui+1])
					db := int(cur.Pix[si+2]) - int(up.Pix[ui+2])
					redo.Bits[y*cw+x] = dr*dr+dg*dg+db*db > sr2
				}
			}
			redo = redo.Dilate()
		}

		for y := 0; y < ch; y++ {
			for x := 0; x < cw; x++ {
				di := y*out.Stride + x*4
				if up != nil && !redo.Bits[y*cw+x] {
					ui := y*up.Stride + x*4
					copy(out.Pix[di:di+4], up.Pix[ui:ui+4])
					continue
				}
				r, g, bl := meanShiftPoint(cur, x, y, sp, sr2)
				out.Pix[di+0] = r
				out.Pix[di+1] = g
				out.Pix[di+2] = bl
				out.Pix[di+3] = 255
			}
		}
		dst = out
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Pix[y*dst.Stride+x*4+3] = img.Pix[y*img.Stride+x*4+3]
		}
	}
	return dst
}

// meanShiftPoint runs the shift iterations for one pixel and returns the
// converged mean color.
func meanShiftPoint(img *image.NRGBA, x0, y0, sp, sr2 int) (uint8, uint8, uint8) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	i0 := y0*img.Stride + x0*4
	cr := int(img.Pix[i0+0])
	cg := int(img.Pix[i0+1])
	cb := int(img.Pix[i0+2])

	for iter := 0; iter < meanShiftMaxIter; iter++ {
		minX := max(x0-sp, 0)
		maxX := min(x0+sp, w-1)
		minY := max(y0-sp, 0)
		maxY := min(y0+sp, h-1)

		var sx, sy, sumR, sumG, sumB, count int
		for y := minY; y <= maxY; y++ {
			row := y * img.Stride
			for x := minX; x <= maxX; x++ {
				i := row + x*4
				dr := int(img.Pix[i+0]) - cr
				dg := int(img.Pix[i+1]) - cg
				db := int(img.Pix[i+2]) - cb
				if dr*dr+dg*dg+db*db <= sr2 {
					sx += x
					sy += y
					sumR += int(img.Pix[i+0])
					sumG += int(img.Pix[i+1])
					sumB += int(img.Pix[i+2])
					count++
				}
			}
		}
		if count == 0 {
			break
		}

		nx := (sx + count/2) / count
		ny := (sy + count/2) / count
		nr := (sumR + count/2) / count
		ng := (sumG + count/2) / count
		nb := (sumB + count/2) / count

		moved := nx != x0 || ny != y0
		dcr := nr - cr
		dcg := ng - cg
		dcb := nb - cb

		x0, y0 = nx, ny
		cr, cg, cb = nr, ng, nb

		if !moved && dcr*dcr+dcg*dcg+dcb*dcb <= 1 {
			break
		}
	}

	return uint8(cr), uint8(cg), uint8(cb)
}
