package popart

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"popart/pkg/effect"
	"popart/pkg/palette"
	"popart/pkg/preset"
)

// flatPre feeds the posterizer the unmodified brightness plane, so tests
// can pin exact band boundaries without smoothing in the way.
type flatPre struct{}

func (flatPre) Key() string { return "flat" }

func (flatPre) Prepare(cutout *image.NRGBA) (effect.Prepared, error) {
	return effect.Prepared{
		Bright: effect.Grayscale(cutout),
		Mask:   effect.MaskFromAlpha(cutout),
		Color:  cutout,
	}, nil
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNew(t *testing.T) {
	s := New()
	if s == nil {
		t.Fatal("New returned nil")
	}
	if s.palette.Name != "original" {
		t.Errorf("default palette = %q, expected original", s.palette.Name)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version || Version == "" {
		t.Errorf("GetVersion() = %q, Version = %q", GetVersion(), Version)
	}
}

func TestRenderBandMapping(t *testing.T) {
	// 2x2 opaque grays at 50, 100, 120, 200 against the default palette
	// and the balanced thresholds: background, midtone, midtone, highlight.
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	values := []uint8{50, 100, 120, 200}
	for i, v := range values {
		src.SetNRGBA(i%2, i/2, color.NRGBA{v, v, v, 255})
	}

	s := New()
	p := preset.Preset{Name: "flat", Family: "plain", Pre: flatPre{}, Thresholds: effect.Thresholds{Low: 90, High: 165}}
	out, err := s.Render(context.Background(), encodePNG(t, src), p)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	pal := palette.Default()
	expected := []color.NRGBA{pal.Background, pal.Midtone, pal.Midtone, pal.Highlight}
	for i, want := range expected {
		if got := out.NRGBAAt(i%2, i/2); got != want {
			t.Errorf("pixel %d = %v, expected %v", i, got, want)
		}
	}
}

func TestRenderTransparentPixelsAreBackground(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{200, 200, 200, 0})
	src.SetNRGBA(1, 0, color.NRGBA{200, 200, 200, 0})
	src.SetNRGBA(0, 1, color.NRGBA{200, 200, 200, 255})
	src.SetNRGBA(1, 1, color.NRGBA{200, 200, 200, 255})

	s := New()
	p := preset.Preset{Name: "flat", Family: "plain", Pre: flatPre{}, Thresholds: effect.Thresholds{Low: 90, High: 165}}
	out, err := s.Render(context.Background(), encodePNG(t, src), p)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	pal := palette.Default()
	if got := out.NRGBAAt(0, 0); got != pal.Background {
		t.Errorf("transparent pixel = %v, expected background", got)
	}
	if got := out.NRGBAAt(1, 1); got != pal.Highlight {
		t.Errorf("opaque bright pixel = %v, expected highlight", got)
	}
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "in.png")

	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			v := uint8(x * 16)
			src.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}
	if err := os.WriteFile(inputPath, encodePNG(t, src), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := preset.ByName("balanced")
	if err != nil {
		t.Fatal(err)
	}

	outputPath := filepath.Join(dir, "out.png")
	if err := New().RenderFile(context.Background(), inputPath, outputPath, p); err != nil {
		t.Fatalf("RenderFile failed: %v", err)
	}

	f, err := os.Open(outputPath)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 16 {
		t.Errorf("output bounds = %v, expected 16x16", img.Bounds())
	}
}

func TestRenderAutoPalette(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 30, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 30; x++ {
			var c color.NRGBA
			switch {
			case x < 10:
				c = color.NRGBA{20, 10, 30, 255}
			case x < 20:
				c = color.NRGBA{160, 60, 90, 255}
			default:
				c = color.NRGBA{240, 220, 230, 255}
			}
			src.SetNRGBA(x, y, c)
		}
	}

	s := New()
	s.SetAutoPalette(true)
	p := preset.Preset{Name: "flat", Family: "plain", Pre: flatPre{}, Thresholds: effect.Thresholds{Low: 90, High: 165}}
	out, err := s.Render(context.Background(), encodePNG(t, src), p)
	if err != nil {
		t.Fatalf("Render with auto palette failed: %v", err)
	}
	if out.Bounds() != src.Bounds() {
		t.Errorf("bounds = %v, expected %v", out.Bounds(), src.Bounds())
	}
}

func TestRenderRejectsGarbage(t *testing.T) {
	p, err := preset.ByName("balanced")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New().Render(context.Background(), []byte("junk"), p); err == nil {
		t.Error("expected error for undecodable input")
	}
}

func TestRenderFileMissingInput(t *testing.T) {
	p, err := preset.ByName("balanced")
	if err != nil {
		t.Fatal(err)
	}
	err = New().RenderFile(context.Background(), filepath.Join(t.TempDir(), "gone.png"), "out.png", p)
	if err == nil {
		t.Error("expected error for missing input file")
	}
}
