// Package geom provides the reference geometry shared by the globe:
// - geodetic coordinates (latitude/longitude, optionally with height)
// - rectangular geodetic patches and their corners
// - the reference ellipsoid and geodetic <-> cartesian conversions
//
// All angles are in radians and all cartesian positions are model-space
// float64 vectors.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Geodetic2 is a position on the ellipsoid surface.
type Geodetic2 struct {
	Lat float64
	Lon float64
}

// Geodetic3 is a position at some height above (or below) the ellipsoid
// surface.
type Geodetic3 struct {
	Geodetic2
	Height float64
}

func MakeGeodetic2(lat, lon float64) Geodetic2 { return Geodetic2{Lat: lat, Lon: lon} }
func MakeGeodetic3(lat, lon, height float64) Geodetic3 {
	return Geodetic3{Geodetic2: Geodetic2{Lat: lat, Lon: lon}, Height: height}
}

func (g Geodetic2) Add(h Geodetic2) Geodetic2      { return Geodetic2{g.Lat + h.Lat, g.Lon + h.Lon} }
func (g Geodetic2) Sub(h Geodetic2) Geodetic2      { return Geodetic2{g.Lat - h.Lat, g.Lon - h.Lon} }
func (g Geodetic2) Scale(s float64) Geodetic2      { return Geodetic2{g.Lat * s, g.Lon * s} }
func (g Geodetic2) WithHeight(h float64) Geodetic3 { return Geodetic3{Geodetic2: g, Height: h} }

// NormalizeAngleAround wraps angle into the half-open interval
// [center-π, center+π).
func NormalizeAngleAround(angle, center float64) float64 {
	if angle >= center-math.Pi && angle < center+math.Pi {
		return angle
	}
	a := angle - center + math.Pi
	a -= 2 * math.Pi * math.Floor(a/(2*math.Pi))
	return a + center - math.Pi
}

// MulElem multiplies two vectors component-wise.
func MulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// DivElem divides two vectors component-wise.
func DivElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] / b[0], a[1] / b[1], a[2] / b[2]}
}

// Sum returns the sum of the vector's components.
func Sum(a mgl64.Vec3) float64 { return a[0] + a[1] + a[2] }

// TransformPoint applies m to the point p (w = 1) and drops w.
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDir applies m to the direction d (w = 0).
func TransformDir(m mgl64.Mat4, d mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(d.Vec4(0)).Vec3()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
