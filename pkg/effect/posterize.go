package effect

import (
	"image"

	"popart/pkg/palette"
)

// Posterize maps a brightness plane to the three palette colors. Every pixel
// starts as Background; subject pixels are then re-colored by band:
// brightness below Low stays Background, Low up to High becomes Midtone,
// High and above becomes Highlight. Non-subject pixels are always
// Background. The brightness plane and mask must share dimensions.
//
// The mapping is pure: identical inputs produce identical output bytes,
// and posterizing an already posterized image with the same parameters is
// a no-op as long as the palette colors land in their own bands.
func Posterize(bright *image.Gray, mask Mask, thr Thresholds, pal palette.Palette) *image.NRGBA {
	b := bright.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		si := y * bright.Stride
		mi := y * mask.W
		di := y * out.Stride
		for x := 0; x < w; x++ {
			c := pal.Background
			if mask.Bits[mi+x] {
				v := int(bright.Pix[si+x])
				switch {
				case v >= thr.High:
					c = pal.Highlight
				case v >= thr.Low:
					c = pal.Midtone
				}
			}
			out.Pix[di+0] = c.R
			out.Pix[di+1] = c.G
			out.Pix[di+2] = c.B
			out.Pix[di+3] = 255
			di += 4
		}
	}

	return out
}
