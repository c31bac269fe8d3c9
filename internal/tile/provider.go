package tile

import (
	"math"

	"github.com/irfansharif/globe/internal/geom"
)

// Metadata describes the data available for one tile.
type Metadata struct {
	// MaxLevel is the deepest level at which data exists for the tile's
	// area. Splitting past it adds no detail.
	MaxLevel int
	// MinHeight and MaxHeight bound the terrain displacement inside the
	// tile, in meters above the ellipsoid.
	MinHeight, MaxHeight float64
}

// Provider is the source of height data for the globe. Implementations are
// queried from the render thread and must not block.
type Provider interface {
	// Metadata returns what is known about the tile, or false if there is no
	// data for it at all.
	Metadata(Index) (Metadata, bool)
	// SampleHeight returns the terrain height at g, or false if the position
	// is not covered.
	SampleHeight(geom.Geodetic2) (float64, bool)
}

// Region is an area of a Procedural provider with data available down to a
// deeper level than the rest of the globe.
type Region struct {
	Patch    geom.GeodeticPatch
	MaxLevel int
}

// Procedural is a Provider that synthesizes terrain from a handful of
// sinusoids. It has no backing storage and is what the binary uses when no
// other provider is configured.
type Procedural struct {
	// Amplitude is the peak displacement in meters; heights lie in
	// [-Amplitude, Amplitude].
	Amplitude float64
	// MaxLevel applies everywhere outside Regions. A negative value means
	// there is no data outside Regions.
	MaxLevel int
	Regions  []Region
}

var _ Provider = (*Procedural)(nil)

// NewProcedural returns a provider with data everywhere down to maxLevel.
func NewProcedural(amplitude float64, maxLevel int, regions ...Region) *Procedural {
	return &Procedural{Amplitude: amplitude, MaxLevel: maxLevel, Regions: regions}
}

func (p *Procedural) Metadata(i Index) (Metadata, bool) {
	patch := i.Patch()
	level, ok := p.MaxLevel, p.MaxLevel >= 0
	for _, r := range p.Regions {
		if !r.Patch.Overlaps(patch) {
			continue
		}
		if !ok || r.MaxLevel > level {
			level, ok = r.MaxLevel, true
		}
	}
	if !ok {
		return Metadata{}, false
	}
	return Metadata{MaxLevel: level, MinHeight: -p.Amplitude, MaxHeight: p.Amplitude}, true
}

func (p *Procedural) SampleHeight(g geom.Geodetic2) (float64, bool) {
	if p.MaxLevel < 0 {
		covered := false
		for _, r := range p.Regions {
			if r.Patch.Contains(g) {
				covered = true
				break
			}
		}
		if !covered {
			return 0, false
		}
	}
	return p.Amplitude * procedural(g), true
}

// procedural returns a smooth field in [-1, 1].
func procedural(g geom.Geodetic2) float64 {
	h := 0.5*math.Sin(3*g.Lat)*math.Cos(2*g.Lon) +
		0.3*math.Sin(11*g.Lat+1.3)*math.Sin(7*g.Lon) +
		0.2*math.Cos(29*g.Lat)*math.Sin(31*g.Lon+0.7)
	return h
}
