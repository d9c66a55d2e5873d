// Package popart turns portrait photos into posterized three-color art.
//
// The pipeline removes the background (an external collaborator returns
// the image with alpha marking the subject), smooths or enhances the
// brightness plane according to a style preset, and maps every pixel
// into one of three palette colors by brightness band: background below
// the low threshold, midtone between the thresholds, highlight above.
// Pixels outside the subject always take the background color.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"popart"
//		"popart/pkg/preset"
//	)
//
//	func main() {
//		stylizer := popart.New()
//
//		p, err := preset.ByName("balanced")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		if err := stylizer.RenderFile(context.Background(), "photo.jpg", "photo_pop.png", p); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of four building blocks:
//
// 1. Remover (pkg/rembg): background removal, HTTP server or local fallback
// 2. Effects (pkg/effect): pre-processing variants and the band posterizer
// 3. Presets (pkg/preset): the compiled-in style table
// 4. Palettes (pkg/palette): named color triples, custom hex, or derived
//
// For whole folders, internal/batch drives the same pipeline with
// staleness checking and parallel workers; cmd/popart-batch is its CLI.
package popart

import (
	"context"
	"fmt"
	"image"
	"os"

	"popart/pkg/effect"
	"popart/pkg/imgio"
	"popart/pkg/palette"
	"popart/pkg/preset"
	"popart/pkg/rembg"
)

// Version of the popart library
const Version = "1.0.0"

// Stylizer binds a background remover and a palette into a single-image
// rendering pipeline.
type Stylizer struct {
	remover rembg.Remover
	palette palette.Palette
	auto    bool
}

// New creates a Stylizer with the local fallback remover and the default
// palette.
func New() *Stylizer {
	return &Stylizer{
		remover: rembg.AlphaRemover{},
		palette: palette.Default(),
	}
}

// NewWithConfig creates a Stylizer with a specific remover and palette.
func NewWithConfig(remover rembg.Remover, pal palette.Palette) *Stylizer {
	return &Stylizer{remover: remover, palette: pal}
}

// SetAutoPalette derives the palette from each image's subject instead
// of using the configured one.
func (s *Stylizer) SetAutoPalette(enabled bool) {
	s.auto = enabled
}

// Render posterizes raw image bytes with the given preset.
func (s *Stylizer) Render(ctx context.Context, raw []byte, p preset.Preset) (*image.NRGBA, error) {
	cutoutBytes, err := s.remover.Remove(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("background removal failed: %w", err)
	}
	cutout, err := imgio.Decode(cutoutBytes)
	if err != nil {
		return nil, fmt.Errorf("remover returned an undecodable image: %w", err)
	}

	pal := s.palette
	if s.auto {
		pal, err = palette.FromImage(cutout)
		if err != nil {
			return nil, fmt.Errorf("palette derivation failed: %w", err)
		}
	}

	prep, err := p.Pre.Prepare(cutout)
	if err != nil {
		return nil, fmt.Errorf("pre-processing failed: %w", err)
	}
	return effect.Stylize(p.Pre, prep, p.Thresholds, pal), nil
}

// RenderFile is a convenience that loads a file, renders one preset, and
// writes the PNG result.
func (s *Stylizer) RenderFile(ctx context.Context, inputPath, outputPath string, p preset.Preset) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read image %s: %w", inputPath, err)
	}
	out, err := s.Render(ctx, raw, p)
	if err != nil {
		return err
	}
	return imgio.SavePNG(out, outputPath)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
