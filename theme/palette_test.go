package theme

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPaletteLookupEndpoints(t *testing.T) {
	p := DefaultPalette()
	if got := p.Lookup(0); got != p.Colors[0] {
		t.Errorf("Lookup(0) = %v, want first stop %v", got, p.Colors[0])
	}
	if got := p.Lookup(1); got != p.Colors[len(p.Colors)-1] {
		t.Errorf("Lookup(1) = %v, want last stop %v", got, p.Colors[len(p.Colors)-1])
	}
	// Out of range clamps
	if got := p.Lookup(-0.5); got != p.Colors[0] {
		t.Errorf("Lookup(-0.5) = %v, want first stop", got)
	}
	if got := p.Lookup(2); got != p.Colors[len(p.Colors)-1] {
		t.Errorf("Lookup(2) = %v, want last stop", got)
	}
}

func TestLoadGPL(t *testing.T) {
	content := `GIMP Palette
Name: test
Columns: 2
# comment
10 20 30	dark
200 210 220	light
`
	path := filepath.Join(t.TempDir(), "test.gpl")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadGPL(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Name != "test" {
		t.Errorf("name %q, want test", p.Name)
	}
	if len(p.Colors) != 2 {
		t.Fatalf("got %d colors, want 2", len(p.Colors))
	}
	if p.Colors[0] != (RGB{10, 20, 30}) || p.Colors[1] != (RGB{200, 210, 220}) {
		t.Errorf("colors %v", p.Colors)
	}
}

func TestLoadGPLEmptyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gpl")
	if err := os.WriteFile(path, []byte("GIMP Palette\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGPL(path); err == nil {
		t.Error("expected an error for a palette with no colors")
	}
}

func TestLoadGPLOrDefaultFallback(t *testing.T) {
	p := LoadGPLOrDefault("")
	if p.Name != "ink" {
		t.Errorf("empty path gave palette %q, want built-in ink", p.Name)
	}
	p = LoadGPLOrDefault("/nonexistent/path.gpl")
	if p.Name != "ink" {
		t.Errorf("unreadable path gave palette %q, want built-in ink", p.Name)
	}
}

func TestTrackColorStable(t *testing.T) {
	th := New(DefaultPalette())
	a := th.TrackColor(2, 5)
	b := th.TrackColor(2, 5)
	if a != b {
		t.Error("same layer produced different colors")
	}
	if th.TrackColor(0, 5) == th.TrackColor(4, 5) {
		t.Error("distinct layers share a color")
	}
}
