// Package tile addresses the geodetic tiling of the globe and the data
// available for each tile.
//
// The globe is split into two root tiles at level 0, one per hemisphere of
// longitude. Each tile has four children one level down; at level L there are
// 2·2^L columns and 2^L rows, with row 0 touching the north pole and column 0
// starting at the antimeridian.
package tile

import (
	"fmt"
	"math"

	"github.com/irfansharif/globe/internal/geom"
)

// Index identifies a tile by its level and its column/row at that level.
type Index struct {
	Level int
	X, Y  int
}

var (
	// WestRoot covers longitudes [-π, 0].
	WestRoot = Index{Level: 0, X: 0, Y: 0}
	// EastRoot covers longitudes [0, π].
	EastRoot = Index{Level: 0, X: 1, Y: 0}
)

// Roots lists the two root tiles, west first.
var Roots = [2]Index{WestRoot, EastRoot}

// Child returns the index of the child in quadrant q.
func (i Index) Child(q geom.Quad) Index {
	return Index{
		Level: i.Level + 1,
		X:     2*i.X + int(q)%2,
		Y:     2*i.Y + int(q)/2,
	}
}

// Parent returns the index of the enclosing tile one level up. Roots are
// their own parent.
func (i Index) Parent() Index {
	if i.Level == 0 {
		return i
	}
	return Index{Level: i.Level - 1, X: i.X / 2, Y: i.Y / 2}
}

// Quad returns the quadrant this tile occupies within its parent.
func (i Index) Quad() geom.Quad {
	return geom.Quad(i.X%2 + 2*(i.Y%2))
}

// IsRoot reports whether i is one of the two level-0 tiles.
func (i Index) IsRoot() bool { return i.Level == 0 }

// Valid reports whether the index addresses an existing tile.
func (i Index) Valid() bool {
	if i.Level < 0 || i.Level > 30 {
		return false
	}
	rows := 1 << i.Level
	return i.X >= 0 && i.X < 2*rows && i.Y >= 0 && i.Y < rows
}

func (i Index) String() string {
	return fmt.Sprintf("%d/%d/%d", i.Level, i.X, i.Y)
}

// Patch returns the geodetic extent of the tile.
func (i Index) Patch() geom.GeodeticPatch {
	delta := math.Pi / float64(uint64(1)<<i.Level)
	half := delta / 2
	nw := geom.MakeGeodetic2(math.Pi/2-delta*float64(i.Y), -math.Pi+delta*float64(i.X))
	return geom.MakePatch(
		geom.MakeGeodetic2(nw.Lat-half, nw.Lon+half),
		geom.MakeGeodetic2(half, half),
	)
}

// Containing returns the tile at the given level whose patch contains g.
// Positions on a shared edge go to the tile to the south and east.
func Containing(level int, g geom.Geodetic2) Index {
	rows := 1 << level
	delta := math.Pi / float64(rows)
	lon := geom.NormalizeAngleAround(g.Lon, 0)
	x := int(math.Floor((lon + math.Pi) / delta))
	y := int(math.Floor((math.Pi/2 - g.Lat) / delta))
	return Index{
		Level: level,
		X:     max(0, min(x, 2*rows-1)),
		Y:     max(0, min(y, rows-1)),
	}
}
