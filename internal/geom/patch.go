package geom

import "math"

// Quad names one of the four quadrants of a patch. The numbering doubles as
// the child ordering of a tile: bit 0 selects east, bit 1 selects south.
type Quad int

const (
	NorthWest Quad = iota
	NorthEast
	SouthWest
	SouthEast
)

// Quads lists all quadrants in child order.
var Quads = [4]Quad{NorthWest, NorthEast, SouthWest, SouthEast}

func (q Quad) String() string {
	switch q {
	case NorthWest:
		return "north-west"
	case NorthEast:
		return "north-east"
	case SouthWest:
		return "south-west"
	case SouthEast:
		return "south-east"
	default:
		return "unknown"
	}
}

// IsNorth reports whether q is one of the two northern quadrants.
func (q Quad) IsNorth() bool { return q == NorthWest || q == NorthEast }

// IsEast reports whether q is one of the two eastern quadrants.
func (q Quad) IsEast() bool { return q == NorthEast || q == SouthEast }

// GeodeticPatch is a latitude/longitude aligned rectangle on the ellipsoid,
// described by its center and half extents.
type GeodeticPatch struct {
	center   Geodetic2
	halfSize Geodetic2
}

// MakePatch constructs a patch from its center and half size.
func MakePatch(center, halfSize Geodetic2) GeodeticPatch {
	return GeodeticPatch{center: center, halfSize: halfSize}
}

// MakePatchFromBounds constructs a patch spanning [minLat,maxLat] x
// [minLon,maxLon].
func MakePatchFromBounds(minLat, maxLat, minLon, maxLon float64) GeodeticPatch {
	half := Geodetic2{Lat: (maxLat - minLat) / 2, Lon: (maxLon - minLon) / 2}
	return GeodeticPatch{
		center:   Geodetic2{Lat: minLat + half.Lat, Lon: minLon + half.Lon},
		halfSize: half,
	}
}

func (p GeodeticPatch) Center() Geodetic2   { return p.center }
func (p GeodeticPatch) HalfSize() Geodetic2 { return p.halfSize }
func (p GeodeticPatch) Size() Geodetic2     { return p.halfSize.Scale(2) }
func (p GeodeticPatch) MinLat() float64     { return p.center.Lat - p.halfSize.Lat }
func (p GeodeticPatch) MaxLat() float64     { return p.center.Lat + p.halfSize.Lat }
func (p GeodeticPatch) MinLon() float64     { return p.center.Lon - p.halfSize.Lon }
func (p GeodeticPatch) MaxLon() float64     { return p.center.Lon + p.halfSize.Lon }

// IsNorthern reports whether the patch center lies north of the equator.
func (p GeodeticPatch) IsNorthern() bool { return p.center.Lat > 0 }

// Corner returns the position of the given corner.
func (p GeodeticPatch) Corner(q Quad) Geodetic2 {
	lat, lon := p.MinLat(), p.MinLon()
	if q.IsNorth() {
		lat = p.MaxLat()
	}
	if q.IsEast() {
		lon = p.MaxLon()
	}
	return Geodetic2{Lat: lat, Lon: lon}
}

// Contains reports whether g lies inside the patch, taking longitude
// wrap-around into account.
func (p GeodeticPatch) Contains(g Geodetic2) bool {
	d := g.Sub(p.center)
	d.Lon = NormalizeAngleAround(d.Lon, 0)
	return math.Abs(d.Lat) <= p.halfSize.Lat && math.Abs(d.Lon) <= p.halfSize.Lon
}

// Overlaps reports whether the two patches share any area.
func (p GeodeticPatch) Overlaps(o GeodeticPatch) bool {
	dLat := math.Abs(p.center.Lat - o.center.Lat)
	dLon := math.Abs(NormalizeAngleAround(p.center.Lon-o.center.Lon, 0))
	return dLat < p.halfSize.Lat+o.halfSize.Lat && dLon < p.halfSize.Lon+o.halfSize.Lon
}

// ClosestCorner returns the corner nearest to g in latitude/longitude space.
func (p GeodeticPatch) ClosestCorner(g Geodetic2) Geodetic2 {
	dLat := NormalizeAngleAround(g.Lat-p.center.Lat, 0)
	dLon := NormalizeAngleAround(g.Lon-p.center.Lon, 0)

	lat := p.center.Lat - p.halfSize.Lat
	if dLat > 0 {
		lat = p.center.Lat + p.halfSize.Lat
	}
	lon := p.center.Lon - p.halfSize.Lon
	if dLon > 0 {
		lon = p.center.Lon + p.halfSize.Lon
	}
	return Geodetic2{Lat: lat, Lon: lon}
}

// ClosestPoint returns the point of the patch closest to g in the
// great-circle sense. Latitude and longitude are cyclic, so a plain clamp is
// not enough: a point more than a quarter turn away in longitude is closer
// to the patch going over the pole, which is handled by mirroring its
// latitude past the pole before clamping.
func (p GeodeticPatch) ClosestPoint(g Geodetic2) Geodetic2 {
	lat := NormalizeAngleAround(g.Lat, p.center.Lat)
	lon := NormalizeAngleAround(g.Lon, p.center.Lon)

	if math.Abs(lon-p.center.Lon) > math.Pi/2 {
		if lat > 0 {
			lat = math.Pi - lat
		} else {
			lat = -math.Pi - lat
		}
		lon = NormalizeAngleAround(lon+math.Pi, p.center.Lon)
	}

	return Geodetic2{
		Lat: clamp(lat, p.MinLat(), p.MaxLat()),
		Lon: clamp(lon, p.MinLon(), p.MaxLon()),
	}
}
