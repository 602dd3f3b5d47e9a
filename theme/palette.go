package theme

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type RGB [3]uint8

type Palette struct {
	Name   string
	Colors []RGB
}

// DefaultPalette is the built-in gradient used when no .gpl file is given
func DefaultPalette() *Palette {
	return &Palette{
		Name: "ink",
		Colors: []RGB{
			{18, 10, 34},
			{48, 22, 74},
			{96, 36, 110},
			{160, 60, 120},
			{220, 100, 110},
			{250, 160, 90},
			{255, 220, 120},
		},
	}
}

// LoadGPL reads a GIMP palette file
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := &Palette{}
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}

		// Skip headers and comments
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// Parse RGB values (first 3 fields are R G B)
		fields := strings.Fields(line)
		if len(fields) >= 3 {
			r, err1 := strconv.Atoi(fields[0])
			g, err2 := strconv.Atoi(fields[1])
			b, err3 := strconv.Atoi(fields[2])
			if err1 == nil && err2 == nil && err3 == nil {
				p.Colors = append(p.Colors, RGB{uint8(r), uint8(g), uint8(b)})
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors found in palette %s", path)
	}

	return p, nil
}

// LoadGPLOrDefault reads a palette file, falling back to the built-in
// gradient when the path is empty or unreadable
func LoadGPLOrDefault(path string) *Palette {
	if path == "" {
		return DefaultPalette()
	}
	p, err := LoadGPL(path)
	if err != nil {
		return DefaultPalette()
	}
	return p
}

// Lookup returns the color at a normalized position 0-1, blending between
// palette stops in HCL space so the gradient stays perceptually even
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 || len(p.Colors) == 1 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := toColorful(p.Colors[i])
	c1 := toColorful(p.Colors[i+1])
	blended := c0.BlendHcl(c1, frac).Clamped()

	return RGB{
		uint8(blended.R*255 + 0.5),
		uint8(blended.G*255 + 0.5),
		uint8(blended.B*255 + 0.5),
	}
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{
		R: float64(c[0]) / 255,
		G: float64(c[1]) / 255,
		B: float64(c[2]) / 255,
	}
}
