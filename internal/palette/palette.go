// Package palette provides the colours used by the globe's debug overlays:
// one hue per chunk level, with a deterministic brightness jitter to tell
// neighbouring chunks of the same level apart.
package palette

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// levelHueStep is the hue rotation between consecutive levels, the golden
// angle, so nearby levels never share similar hues.
const levelHueStep = 137.50776

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ForLevel returns the colour for chunks of the given level.
func ForLevel(level int) color.RGBA {
	hue := math.Mod(float64(level)*levelHueStep, 360)
	if hue < 0 {
		hue += 360
	}
	c := colorful.Hsv(hue, 0.65, 0.95)
	red, green, blue := c.RGB255()
	return color.RGBA{R: red, G: green, B: blue, A: 255}
}

// Jittered returns c with its brightness shifted by up to ±10%, chosen
// deterministically from seed.
func Jittered(c color.RGBA, seed int64) color.RGBA {
	r := rand.New(rand.NewSource(seed))

	// Convert RGBA to HSV.
	cc := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	h, s, v := cc.Hsv()

	v = clamp(v+(r.Float64()-0.5)*0.2, 0, 1)

	red, green, blue := colorful.Hsv(h, s, v).RGB255()
	return color.RGBA{R: red, G: green, B: blue, A: c.A}
}

// Vec4 returns the colour as normalized (r, g, b, a) components.
func Vec4(c color.RGBA) [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}
