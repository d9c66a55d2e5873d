package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"popart/pkg/preset"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverFiltersAndDeduplicates(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.jpg")
	touch(t, dir, "a.png")               // duplicate stem, skipped
	touch(t, dir, "b_balanced.png")      // our own output
	touch(t, dir, "c_posterized.png")    // legacy output
	touch(t, dir, "d_balanced_rose.png") // output with palette suffix
	touch(t, dir, "selfie_rose.jpg")     // palette-like name on an input, kept
	touch(t, dir, "notes.txt")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "sub"), "nested.png") // non-recursive, skipped

	inputs, err := Discover(dir, preset.Names(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	var stems []string
	for _, in := range inputs {
		stems = append(stems, in.Stem)
	}
	expected := []string{"a", "selfie_rose"}
	if len(stems) != len(expected) {
		t.Fatalf("stems = %v, expected %v", stems, expected)
	}
	for i, want := range expected {
		if stems[i] != want {
			t.Errorf("stem %d = %q, expected %q", i, stems[i], want)
		}
	}

	// The alphabetically first twin wins.
	if filepath.Base(inputs[0].Path) != "a.jpg" {
		t.Errorf("kept %s, expected a.jpg", inputs[0].Path)
	}
}

func TestDiscoverMissingFolder(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "gone"), preset.Names(), zerolog.Nop()); err == nil {
		t.Error("expected error for missing work folder")
	}
}

func TestDiscoverEmptyFolder(t *testing.T) {
	inputs, err := Discover(t.TempDir(), preset.Names(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(inputs) != 0 {
		t.Errorf("found %d inputs in an empty folder", len(inputs))
	}
}

func TestIsGeneratedName(t *testing.T) {
	names := preset.Names()
	tests := []struct {
		stem     string
		expected bool
	}{
		{"portrait", false},
		{"portrait_balanced", true},
		{"portrait_comic_bold", true},
		{"portrait_posterized", true},
		{"portrait_balanced_rose", true},
		{"portrait_rose", false},
		{"balanced", false}, // no separator, not an output
		{"my_dark_photo", false},
	}

	for _, test := range tests {
		if got := isGeneratedName(test.stem, names); got != test.expected {
			t.Errorf("isGeneratedName(%q) = %v, expected %v", test.stem, got, test.expected)
		}
	}
}
