package graph

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette is a sequential colour ramp sampled at evenly spaced stops.
type Palette []colorful.Color

func mustPalette(hexes ...string) Palette {
	p := make(Palette, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("graph: bad palette colour %q: %v", h, err))
		}
		p[i] = c
	}
	return p
}

// Purples and Blues are the nine-step ColorBrewer ramps used by the views.
var (
	Purples = mustPalette("#fcfbfd", "#efedf5", "#dadaeb", "#bcbddc", "#9e9ac8", "#807dba", "#6a51a3", "#54278f", "#3f007d")
	Blues   = mustPalette("#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b")
)

// At interpolates the ramp at t, clamped to [0, 1], and returns a hex colour.
func (p Palette) At(t float64) string {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	scaled := t * float64(len(p)-1)
	i := int(math.Floor(scaled))
	if i >= len(p)-1 {
		return p[len(p)-1].Hex()
	}
	return p[i].BlendRgb(p[i+1], scaled-float64(i)).Clamped().Hex()
}

// HeatColor fades the heatmap base colour rgb(233,216,253) toward black as
// intensity grows.
func HeatColor(intensity float64) string {
	if math.IsNaN(intensity) || intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	f := 1 - intensity
	return fmt.Sprintf("rgb(%d, %d, %d)",
		int(math.Round(233*f)), int(math.Round(216*f)), int(math.Round(253*f)))
}

// HeatHex is HeatColor as a hex string for terminal rendering.
func HeatHex(intensity float64) string {
	if math.IsNaN(intensity) || intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	f := 1 - intensity
	c := colorful.Color{R: 233 * f / 255, G: 216 * f / 255, B: 253 * f / 255}
	return c.Clamped().Hex()
}
