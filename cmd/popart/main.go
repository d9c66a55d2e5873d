package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"popart"
	"popart/internal/logging"
	"popart/pkg/palette"
	"popart/pkg/preset"
	"popart/pkg/rembg"
)

const defaultOutput = "popart_result.png"

func main() {
	var presetName, palSpec, colors, removerURL string
	var timeout time.Duration
	var verbose bool

	flag.StringVar(&presetName, "preset", preset.DefaultName, "style preset (see -list)")
	flag.StringVar(&palSpec, "palette", "", "palette name, 'auto', or three hex colors '#bg,#mid,#hi'")
	flag.StringVar(&colors, "colors", "", "three hex colors '#bg,#mid,#hi' (overrides -palette)")
	flag.StringVar(&removerURL, "remover", "", "background remover server URL (empty = alpha-channel fallback)")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "background remover request timeout")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	list := flag.Bool("list", false, "list presets and palettes, then exit")

	flag.Parse()

	if *list {
		printChoices()
		return
	}

	input := flag.Arg(0)
	if input == "" {
		log.Fatalf("usage: %s [-preset name] [-palette name|auto|#hex,#hex,#hex] [-remover url] input.jpg [output.png]", filepath.Base(os.Args[0]))
	}
	output := flag.Arg(1)
	if output == "" {
		output = defaultOutput
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	logger := logging.New(level)

	p, err := preset.ByName(presetName)
	if err != nil {
		log.Fatalf("Invalid preset: %v", err)
	}

	pal, auto, err := resolvePalette(palSpec, colors)
	if err != nil {
		log.Fatalf("Invalid palette: %v", err)
	}

	stylizer := popart.NewWithConfig(rembg.New(removerURL, timeout), pal)
	stylizer.SetAutoPalette(auto)

	logger.Info().
		Str("input", input).
		Str("preset", p.Name).
		Str("palette", paletteLabel(pal, auto)).
		Msg("stylizing portrait")

	start := time.Now()
	if err := stylizer.RenderFile(context.Background(), input, output, p); err != nil {
		log.Fatalf("Stylize failed: %v", err)
	}
	logger.Info().Str("output", output).Dur("took", time.Since(start)).Msg("wrote poster")
}

// resolvePalette turns the -palette/-colors flags into a palette. The
// -colors flag wins when both are given; "auto" defers the choice to the
// source image.
func resolvePalette(palSpec, colors string) (palette.Palette, bool, error) {
	if colors != "" {
		pal, err := palette.FromHexList(colors)
		return pal, false, err
	}
	if palSpec == "auto" {
		return palette.Default(), true, nil
	}
	pal, err := palette.Resolve(palSpec)
	return pal, false, err
}

func paletteLabel(pal palette.Palette, auto bool) string {
	if auto {
		return "auto"
	}
	return pal.Name
}

func printChoices() {
	log.Printf("presets:")
	for _, p := range preset.All() {
		log.Printf("  %-18s (%s, low=%d high=%d)", p.Name, p.Family, p.Thresholds.Low, p.Thresholds.High)
	}
	log.Printf("palettes:")
	for _, name := range palette.Names() {
		log.Printf("  %s", name)
	}
	log.Printf("  auto (derive from the source image)")
}
