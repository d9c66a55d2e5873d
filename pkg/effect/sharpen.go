package effect

import "image"

// Sharpen applies the 3x3 sharpening kernel
//
//	 0 -1  0
//	-1  5 -1
//	 0 -1  0
//
// with reflect-101 border handling, matching OpenCV's filter2D default.
func Sharpen(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		ym1 := reflect101(y-1, h)
		yp1 := reflect101(y+1, h)
		for x := 0; x < w; x++ {
			xm1 := reflect101(x-1, w)
			xp1 := reflect101(x+1, w)

			center := int(gray.Pix[y*gray.Stride+x])
			top := int(gray.Pix[ym1*gray.Stride+x])
			bottom := int(gray.Pix[yp1*gray.Stride+x])
			left := int(gray.Pix[y*gray.Stride+xm1])
			right := int(gray.Pix[y*gray.Stride+xp1])

			v := 5*center - top - bottom - left - right
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			out.Pix[y*out.Stride+x] = uint8(v)
		}
	}

	return out
}

// reflect101 mirrors an out-of-range index without repeating the border
// pixel (dcb|abcdefg|fed). A 1-pixel dimension has nothing to mirror.
func reflect101(idx, size int) int {
	if size == 1 {
		return 0
	}
	if idx < 0 {
		return -idx
	}
	if idx >= size {
		return 2*(size-1) - idx
	}
	return idx
}
