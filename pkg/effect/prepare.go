// Package effect implements the posterization pipeline stages: subject
// masking from remover alpha, the brightness pre-processing variants, and
// the three-band mapping onto a palette.
package effect

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"popart/pkg/palette"
)

// plainBlurSigma is OpenCV's derived sigma for a 9x9 Gaussian kernel.
const plainBlurSigma = 1.7

// Prepared is the intermediate every pre-processor produces: the brightness
// plane the posterizer thresholds, the subject mask, and the color cutout
// both were derived from. All three share dimensions.
type Prepared struct {
	Bright *image.Gray
	Mask   Mask
	Color  *image.NRGBA
}

// Preprocessor derives the Prepared triple from a background-removed image.
// Key identifies the preparation parameters: presets whose pre-processors
// report equal keys can share a single Prepare call.
type Preprocessor interface {
	Key() string
	Prepare(cutout *image.NRGBA) (Prepared, error)
}

// Finisher is implemented by pre-processors that composite extra detail onto
// the posterized output.
type Finisher interface {
	Finish(out *image.NRGBA, prep Prepared, pal palette.Palette)
}

// Stylize posterizes a prepared image and runs the pre-processor's finishing
// pass, if it has one.
func Stylize(pre Preprocessor, prep Prepared, thr Thresholds, pal palette.Palette) *image.NRGBA {
	out := Posterize(prep.Bright, prep.Mask, thr, pal)
	if f, ok := pre.(Finisher); ok {
		f.Finish(out, prep, pal)
	}
	return out
}

// PlainBlur is the classic poster look: grayscale smoothed with a Gaussian
// blur so skin texture does not speckle the bands.
type PlainBlur struct{}

func (PlainBlur) Key() string { return "plain" }

func (PlainBlur) Prepare(cutout *image.NRGBA) (Prepared, error) {
	if err := checkCutout(cutout); err != nil {
		return Prepared{}, err
	}
	bright := Grayscale(imaging.Blur(Grayscale(cutout), plainBlurSigma))
	return Prepared{
		Bright: bright,
		Mask:   MaskFromAlpha(cutout),
		Color:  cutout,
	}, nil
}

// MeanShift is the painted look: edge-preserving mean-shift color smoothing
// before grayscale, with the mask eroded one step to cut the removal halo.
type MeanShift struct {
	Sp int // spatial window radius
	Sr int // color window radius
}

func (m MeanShift) Key() string { return fmt.Sprintf("meanshift sp=%d sr=%d", m.Sp, m.Sr) }

func (m MeanShift) Prepare(cutout *image.NRGBA) (Prepared, error) {
	if err := checkCutout(cutout); err != nil {
		return Prepared{}, err
	}
	bright := Grayscale(MeanShiftFilter(cutout, m.Sp, m.Sr))
	return Prepared{
		Bright: bright,
		Mask:   MaskFromAlpha(cutout).Erode(),
		Color:  cutout,
	}, nil
}

// ContrastEnhance is the detailed look: CLAHE followed by a sharpening
// convolution, pulling local structure into the bands.
type ContrastEnhance struct {
	ClipLimit float64
	TileSize  int
}

func (c ContrastEnhance) Key() string {
	return fmt.Sprintf("clahe clip=%.2f tile=%d", c.ClipLimit, c.TileSize)
}

func (c ContrastEnhance) Prepare(cutout *image.NRGBA) (Prepared, error) {
	if err := checkCutout(cutout); err != nil {
		return Prepared{}, err
	}
	bright := Sharpen(CLAHE(Grayscale(cutout), c.ClipLimit, c.TileSize))
	return Prepared{
		Bright: bright,
		Mask:   MaskFromAlpha(cutout),
		Color:  cutout,
	}, nil
}

// ComicOutline is the comic look: CLAHE without sharpening (outlines provide
// the definition instead), then Sobel edges of the enhanced grayscale
// composited over the posterized output in the palette background color.
type ComicOutline struct {
	ClipLimit     float64
	TileSize      int
	EdgeThreshold uint8
	EdgeWidth     int
}

func (c ComicOutline) Key() string {
	return fmt.Sprintf("comic clip=%.2f tile=%d", c.ClipLimit, c.TileSize)
}

func (c ComicOutline) Prepare(cutout *image.NRGBA) (Prepared, error) {
	if err := checkCutout(cutout); err != nil {
		return Prepared{}, err
	}
	bright := CLAHE(Grayscale(cutout), c.ClipLimit, c.TileSize)
	return Prepared{
		Bright: bright,
		Mask:   MaskFromAlpha(cutout),
		Color:  cutout,
	}, nil
}

func (c ComicOutline) Finish(out *image.NRGBA, prep Prepared, pal palette.Palette) {
	edges := EdgeMask(SobelMagnitude(prep.Bright), c.EdgeThreshold, c.EdgeWidth)
	OverlayEdges(out, edges, pal.Background)
}

func checkCutout(cutout *image.NRGBA) error {
	if cutout == nil || cutout.Bounds().Empty() {
		return fmt.Errorf("empty image")
	}
	return nil
}
