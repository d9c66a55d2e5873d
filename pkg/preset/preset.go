// Package preset defines the compiled-in style presets: which
// pre-processing variant to run, with which parameters, and which
// brightness thresholds split the three bands.
package preset

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"popart/pkg/effect"
	"popart/pkg/palette"
)

// fingerprintVersion is baked into every fingerprint so that changing the
// rendering algorithm invalidates all recorded outputs at once.
const fingerprintVersion = "popart/1"

// Preset names a fixed combination of pre-processing and thresholds.
type Preset struct {
	Name       string
	Family     string
	Pre        effect.Preprocessor
	Thresholds effect.Thresholds
}

// DefaultName is the preset used when none is requested.
const DefaultName = "balanced"

var presets = []Preset{
	{"dark", "plain", effect.PlainBlur{}, effect.Thresholds{Low: 60, High: 130}},
	{"balanced", "plain", effect.PlainBlur{}, effect.Thresholds{Low: 90, High: 165}},
	{"bright", "plain", effect.PlainBlur{}, effect.Thresholds{Low: 120, High: 190}},
	{"contrast", "plain", effect.PlainBlur{}, effect.Thresholds{Low: 70, High: 180}},
	{"soft", "plain", effect.PlainBlur{}, effect.Thresholds{Low: 100, High: 150}},

	{"painted_smooth", "painted", effect.MeanShift{Sp: 20, Sr: 45}, effect.Thresholds{Low: 90, High: 165}},
	{"painted_detail", "painted", effect.MeanShift{Sp: 10, Sr: 30}, effect.Thresholds{Low: 90, High: 165}},
	{"painted_abstract", "painted", effect.MeanShift{Sp: 20, Sr: 45}, effect.Thresholds{Low: 70, High: 180}},

	{"detailed_standard", "detailed", effect.ContrastEnhance{ClipLimit: 3.0, TileSize: 8}, effect.Thresholds{Low: 80, High: 160}},
	{"detailed_strong", "detailed", effect.ContrastEnhance{ClipLimit: 4.0, TileSize: 8}, effect.Thresholds{Low: 70, High: 150}},
	{"detailed_fine", "detailed", effect.ContrastEnhance{ClipLimit: 2.5, TileSize: 4}, effect.Thresholds{Low: 80, High: 160}},

	{"comic_bold", "comic", effect.ComicOutline{ClipLimit: 3.0, TileSize: 8, EdgeThreshold: 40, EdgeWidth: 3}, effect.Thresholds{Low: 80, High: 160}},
	{"comic_fine", "comic", effect.ComicOutline{ClipLimit: 3.0, TileSize: 8, EdgeThreshold: 25, EdgeWidth: 1}, effect.Thresholds{Low: 80, High: 160}},
	{"comic_heavy", "comic", effect.ComicOutline{ClipLimit: 4.5, TileSize: 8, EdgeThreshold: 50, EdgeWidth: 2}, effect.Thresholds{Low: 70, High: 150}},
}

func init() {
	seen := make(map[string]bool)
	for _, p := range presets {
		if err := p.Thresholds.Validate(); err != nil {
			panic(fmt.Sprintf("preset %s: %v", p.Name, err))
		}
		if seen[p.Name] {
			panic(fmt.Sprintf("preset %s defined twice", p.Name))
		}
		seen[p.Name] = true
	}
}

// All returns every preset in definition order.
func All() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// Names returns the preset names in definition order.
func Names() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// ByName looks a preset up by name.
func ByName(name string) (Preset, error) {
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(Names(), ", "))
}

// GroupKey identifies the pre-processing work this preset needs. Presets
// with equal keys can share one prepared image per input.
func (p Preset) GroupKey() string {
	return p.Pre.Key()
}

// Fingerprint hashes everything that shapes this preset's output for the
// given palette. A recorded fingerprint that no longer matches means the
// output was rendered with different parameters and is stale, whatever
// the file timestamps say.
func (p Preset) Fingerprint(pal palette.Palette) string {
	s := fmt.Sprintf("%s|%s|%T%+v|low=%d|high=%d|bg=%v|mid=%v|hi=%v",
		fingerprintVersion, p.Name, p.Pre, p.Pre,
		p.Thresholds.Low, p.Thresholds.High,
		pal.Background, pal.Midtone, pal.Highlight)
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// OutputName returns the file name an input stem renders to under this
// preset. Outputs are always PNG.
func (p Preset) OutputName(stem string) string {
	return stem + "_" + p.Name + ".png"
}
