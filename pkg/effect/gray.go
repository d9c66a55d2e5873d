package effect

import "image"

// Grayscale converts a color image to single-channel brightness using the
// BT.601 integer weighting: (r*4899 + g*9617 + b*1868 + 8192) >> 14.
func Grayscale(img *image.NRGBA) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	gray := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		si := y * img.Stride
		di := y * gray.Stride
		for x := 0; x < w; x++ {
			r := uint32(img.Pix[si+0])
			g := uint32(img.Pix[si+1])
			bl := uint32(img.Pix[si+2])
			v := (r*4899 + g*9617 + bl*1868 + 8192) >> 14
			if v > 255 {
				v = 255
			}
			gray.Pix[di] = uint8(v)
			si += 4
			di++
		}
	}

	return gray
}
