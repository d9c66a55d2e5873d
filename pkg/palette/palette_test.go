package palette

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

// createSubjectImage creates a cutout-style test image: three opaque color
// blocks on a fully transparent background.
func createSubjectImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	third := width / 3
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			switch {
			case y < height/4:
				// Transparent margin above the subject
				img.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 0})
			case x < third:
				img.SetNRGBA(x, y, color.NRGBA{30, 30, 30, 255})
			case x < 2*third:
				img.SetNRGBA(x, y, color.NRGBA{200, 40, 40, 255})
			default:
				img.SetNRGBA(x, y, color.NRGBA{240, 240, 240, 255})
			}
		}
	}

	return img
}

func TestNamed(t *testing.T) {
	p, err := Named("original")
	if err != nil {
		t.Fatalf("Named(original) failed: %v", err)
	}

	if p.Background != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("original background = %v, expected black", p.Background)
	}
	if p.Midtone != (color.NRGBA{255, 20, 147, 255}) {
		t.Errorf("original midtone = %v, expected deep magenta", p.Midtone)
	}
	if p.Highlight != (color.NRGBA{255, 215, 0, 255}) {
		t.Errorf("original highlight = %v, expected gold", p.Highlight)
	}
}

func TestNamedUnknown(t *testing.T) {
	_, err := Named("neon")
	if err == nil {
		t.Fatal("expected error for unknown palette name")
	}
	if !strings.Contains(err.Error(), "original") {
		t.Errorf("error should list available palettes, got: %v", err)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	expected := []string{"original", "burgundy", "burgundy_teal", "burgundy_gold", "rose", "cmyk"}

	if len(names) != len(expected) {
		t.Fatalf("expected %d palette names, got %d", len(expected), len(names))
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("names[%d] = %s, expected %s", i, names[i], name)
		}
	}

	for _, name := range names {
		if _, err := Named(name); err != nil {
			t.Errorf("listed palette %s not resolvable: %v", name, err)
		}
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		input    string
		expected color.NRGBA
		wantErr  bool
	}{
		{"#FF1493", color.NRGBA{255, 20, 147, 255}, false},
		{"ff1493", color.NRGBA{255, 20, 147, 255}, false},
		{" #FFD700 ", color.NRGBA{255, 215, 0, 255}, false},
		{"#000000", color.NRGBA{0, 0, 0, 255}, false},
		{"#FFF", color.NRGBA{}, true},
		{"#GGGGGG", color.NRGBA{}, true},
		{"", color.NRGBA{}, true},
	}

	for _, test := range tests {
		result, err := ParseHex(test.input)
		if test.wantErr {
			if err == nil {
				t.Errorf("ParseHex(%q) should fail", test.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHex(%q) failed: %v", test.input, err)
			continue
		}
		if result != test.expected {
			t.Errorf("ParseHex(%q) = %v, expected %v", test.input, result, test.expected)
		}
	}
}

func TestResolve(t *testing.T) {
	p, err := Resolve("")
	if err != nil || p.Name != "original" {
		t.Errorf("Resolve(\"\") = %v, %v; expected the default palette", p.Name, err)
	}

	p, err = Resolve("burgundy")
	if err != nil || p.Name != "burgundy" {
		t.Errorf("Resolve(burgundy) = %v, %v", p.Name, err)
	}

	p, err = Resolve("#000000,#B41E64,#FFDCE6")
	if err != nil || p.Name != "custom" {
		t.Errorf("Resolve(hex list) = %v, %v", p.Name, err)
	}

	if _, err = Resolve("plaid"); err == nil {
		t.Error("expected error for unknown palette name")
	}
}

func TestFromHexList(t *testing.T) {
	p, err := FromHexList("#000000,#FF1493,#FFD700")
	if err != nil {
		t.Fatalf("FromHexList failed: %v", err)
	}

	// Order is band order as given, never re-sorted.
	if p.Background != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("background = %v", p.Background)
	}
	if p.Midtone != (color.NRGBA{255, 20, 147, 255}) {
		t.Errorf("midtone = %v", p.Midtone)
	}
	if p.Highlight != (color.NRGBA{255, 215, 0, 255}) {
		t.Errorf("highlight = %v", p.Highlight)
	}
	if p.Name != "custom" {
		t.Errorf("name = %s, expected custom", p.Name)
	}
}

func TestFromHexListErrors(t *testing.T) {
	if _, err := FromHexList("#000000,#FF1493"); err == nil {
		t.Error("two colors should fail")
	}
	if _, err := FromHexList("#000000,#FF1493,#FFD700,#FFFFFF"); err == nil {
		t.Error("four colors should fail")
	}
	if _, err := FromHexList("#000000,#FF1493,notacolor"); err == nil {
		t.Error("invalid hex should fail")
	}
}

func TestFromImage(t *testing.T) {
	img := createSubjectImage(120, 120)

	p, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}

	if p.Name != "auto" {
		t.Errorf("name = %s, expected auto", p.Name)
	}

	// Derived ramps are always ordered darkest to brightest.
	lb := luma(p.Background)
	lm := luma(p.Midtone)
	lh := luma(p.Highlight)
	if lb > lm || lm > lh {
		t.Errorf("palette not brightness ordered: bg=%.3f mid=%.3f hi=%.3f", lb, lm, lh)
	}

	for _, c := range []color.NRGBA{p.Background, p.Midtone, p.Highlight} {
		if c.A != 255 {
			t.Errorf("derived color %v is not opaque", c)
		}
	}
}

func luma(c color.NRGBA) float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}

func BenchmarkFromImage(b *testing.B) {
	img := createSubjectImage(400, 400)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FromImage(img)
	}
}
