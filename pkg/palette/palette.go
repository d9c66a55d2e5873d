package palette

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Palette is a three-color ramp for posterized output. Background paints
// both non-subject pixels and the darkest brightness band, Midtone the
// middle band, Highlight the brightest band.
type Palette struct {
	Name       string      `json:"name"`
	Background color.NRGBA `json:"-"`
	Midtone    color.NRGBA `json:"-"`
	Highlight  color.NRGBA `json:"-"`
}

var namedPalettes = []Palette{
	{
		Name:       "original",
		Background: color.NRGBA{0, 0, 0, 255},
		Midtone:    color.NRGBA{255, 20, 147, 255},
		Highlight:  color.NRGBA{255, 215, 0, 255},
	},
	{
		Name:       "burgundy",
		Background: color.NRGBA{0, 0, 0, 255},
		Midtone:    color.NRGBA{114, 5, 70, 255},
		Highlight:  color.NRGBA{255, 255, 255, 255},
	},
	{
		Name:       "burgundy_teal",
		Background: color.NRGBA{88, 4, 55, 255},
		Midtone:    color.NRGBA{114, 5, 70, 255},
		Highlight:  color.NRGBA{0, 210, 190, 255},
	},
	{
		Name:       "burgundy_gold",
		Background: color.NRGBA{0, 0, 0, 255},
		Midtone:    color.NRGBA{88, 4, 55, 255},
		Highlight:  color.NRGBA{255, 200, 50, 255},
	},
	{
		Name:       "rose",
		Background: color.NRGBA{88, 4, 55, 255},
		Midtone:    color.NRGBA{180, 30, 100, 255},
		Highlight:  color.NRGBA{255, 220, 230, 255},
	},
	{
		Name:       "cmyk",
		Background: color.NRGBA{0, 0, 0, 255},
		Midtone:    color.NRGBA{0, 180, 220, 255},
		Highlight:  color.NRGBA{230, 0, 120, 255},
	},
}

// Default is the palette applied when none is configured.
func Default() Palette {
	return namedPalettes[0]
}

// Named returns a compiled-in palette by name.
func Named(name string) (Palette, error) {
	for _, p := range namedPalettes {
		if p.Name == name {
			return p, nil
		}
	}
	return Palette{}, fmt.Errorf("unknown palette %q (available: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the compiled-in palette names in definition order.
func Names() []string {
	names := make([]string, len(namedPalettes))
	for i, p := range namedPalettes {
		names[i] = p.Name
	}
	return names
}

// Resolve turns a palette argument into a palette: empty means the
// default, a value with commas is parsed as three hex colors, anything
// else is looked up by name.
func Resolve(spec string) (Palette, error) {
	if spec == "" {
		return Default(), nil
	}
	if strings.Contains(spec, ",") {
		return FromHexList(spec)
	}
	return Named(spec)
}

// ParseHex parses a hex color like "#FF20AB" or "FF20AB".
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: expected 6 hex digits", s)
	}
	c, err := colorful.Hex("#" + strings.ToLower(h))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// FromHexList builds a custom palette from "bg,midtone,highlight" hex values.
// The order is kept as given; no brightness sorting is applied.
func FromHexList(list string) (Palette, error) {
	parts := strings.Split(list, ",")
	if len(parts) != 3 {
		return Palette{}, fmt.Errorf("expected 3 comma-separated hex colors, got %d", len(parts))
	}
	var cols [3]color.NRGBA
	for i, part := range parts {
		c, err := ParseHex(part)
		if err != nil {
			return Palette{}, err
		}
		cols[i] = c
	}
	return Palette{
		Name:       "custom",
		Background: cols[0],
		Midtone:    cols[1],
		Highlight:  cols[2],
	}, nil
}

// FromImage derives a palette from the subject pixels of a background-removed
// image. Fully transparent pixels are ignored, the remaining colors are
// clustered, three diverse cluster centers are picked and ordered darkest to
// brightest.
func FromImage(img image.Image) (Palette, error) {
	cols := kmeansColors(img, 3)
	if len(cols) < 3 {
		cols = dominantColors(img, 3)
	}
	if len(cols) == 0 {
		return Palette{}, fmt.Errorf("no opaque pixels to derive a palette from")
	}
	// Degenerate subjects (near-uniform color) can yield fewer than three
	// clusters; pad toward white so the ramp stays usable.
	for len(cols) < 3 {
		cols = append(cols, cols[len(cols)-1].BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.5).Clamped())
	}
	sortByBrightness(cols)
	return Palette{
		Name:       "auto",
		Background: toNRGBA(cols[0]),
		Midtone:    toNRGBA(cols[1]),
		Highlight:  toNRGBA(cols[2]),
	}, nil
}

type weightedColor struct {
	col    colorful.Color
	weight float64
}

func kmeansColors(img image.Image, k int) []colorful.Color {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	// Subsample to keep kmeans tractable on large images.
	maxSamples := 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		w := float64(len(c.Observations))
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{col: col, weight: w})
	}
	return selectDiverse(weighted, k)
}

func dominantColors(img image.Image, k int) []colorful.Color {
	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{col: col.Clamped(), weight: w})
	}
	return selectDiverse(weighted, k)
}

// selectDiverse greedily picks k colors, seeding with the heaviest candidate
// and then maximizing Lab distance to the picked set, weight-biased so rare
// outlier colors do not crowd out dominant tones.
func selectDiverse(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	type item struct {
		col colorful.Color
		lab [3]float64
		w   float64
	}
	items := make([]item, 0, len(cands))
	maxW := 0.0
	for _, c := range cands {
		l, a, b := c.col.Lab()
		if c.weight > maxW {
			maxW = c.weight
		}
		items = append(items, item{col: c.col, lab: [3]float64{l, a, b}, w: c.weight})
	}
	if k > len(items) {
		k = len(items)
	}
	if maxW <= 0 {
		maxW = 1.0
	}

	selectedIdx := make([]int, 0, k)
	selected := make([]bool, len(items))

	bestSeed := 0
	for i := 1; i < len(items); i++ {
		if items[i].w > items[bestSeed].w {
			bestSeed = i
		}
	}
	selectedIdx = append(selectedIdx, bestSeed)
	selected[bestSeed] = true

	for len(selectedIdx) < k {
		bestIdx := -1
		bestScore := -1.0
		for i := range items {
			if selected[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range selectedIdx {
				d0 := items[i].lab[0] - items[s].lab[0]
				d1 := items[i].lab[1] - items[s].lab[1]
				d2 := items[i].lab[2] - items[s].lab[2]
				if d := d0*d0 + d1*d1 + d2*d2; d < minD2 {
					minD2 = d
				}
			}
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(items[i].w/maxW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
	}

	out := make([]colorful.Color, 0, len(selectedIdx))
	for _, idx := range selectedIdx {
		out = append(out, items[idx].col)
	}
	return out
}

// sortByBrightness orders colors darkest to brightest by linear luminance.
func sortByBrightness(cols []colorful.Color) {
	slices.SortFunc(cols, func(a, b colorful.Color) int {
		ri, gi, bi := a.LinearRgb()
		rj, gj, bj := b.LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
