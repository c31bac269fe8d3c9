package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	projectionEpsilon       = 1e-10 // convergence threshold for surface projection
	projectionMaxIterations = 16
)

// Ellipsoid is a triaxial reference ellipsoid centered at the origin of
// model space, with the z axis pointing north.
type Ellipsoid struct {
	radii            mgl64.Vec3
	radiiSquared     mgl64.Vec3
	oneOverRadiiSq   mgl64.Vec3
	radiiToTheFourth mgl64.Vec3
	minimumRadius    float64
	maximumRadius    float64
	averageRadius    float64
}

// MakeEllipsoid constructs an ellipsoid from its three semi-axes.
func MakeEllipsoid(a, b, c float64) Ellipsoid {
	r := mgl64.Vec3{a, b, c}
	sq := MulElem(r, r)
	return Ellipsoid{
		radii:            r,
		radiiSquared:     sq,
		oneOverRadiiSq:   mgl64.Vec3{1 / sq[0], 1 / sq[1], 1 / sq[2]},
		radiiToTheFourth: MulElem(sq, sq),
		minimumRadius:    math.Min(a, math.Min(b, c)),
		maximumRadius:    math.Max(a, math.Max(b, c)),
		averageRadius:    (a + b + c) / 3,
	}
}

// MakeSphere constructs a sphere of the given radius.
func MakeSphere(r float64) Ellipsoid { return MakeEllipsoid(r, r, r) }

func (e Ellipsoid) Radii() mgl64.Vec3        { return e.radii }
func (e Ellipsoid) RadiiSquared() mgl64.Vec3 { return e.radiiSquared }
func (e Ellipsoid) MinimumRadius() float64   { return e.minimumRadius }
func (e Ellipsoid) MaximumRadius() float64   { return e.maximumRadius }
func (e Ellipsoid) AverageRadius() float64   { return e.averageRadius }

// GeodeticSurfaceNormal returns the outward surface normal at g.
func (e Ellipsoid) GeodeticSurfaceNormal(g Geodetic2) mgl64.Vec3 {
	cosLat := math.Cos(g.Lat)
	return mgl64.Vec3{
		cosLat * math.Cos(g.Lon),
		cosLat * math.Sin(g.Lon),
		math.Sin(g.Lat),
	}
}

// GeodeticSurfaceNormalForGeocentricallyProjectedPoint returns the surface
// normal at p, which must already lie on the surface.
func (e Ellipsoid) GeodeticSurfaceNormalForGeocentricallyProjectedPoint(p mgl64.Vec3) mgl64.Vec3 {
	return MulElem(p, e.oneOverRadiiSq).Normalize()
}

// GeodeticSurfaceProjection returns the point on the surface whose normal
// passes through p, found with Newton iteration. The origin has no such
// point and maps to itself.
func (e Ellipsoid) GeodeticSurfaceProjection(p mgl64.Vec3) mgl64.Vec3 {
	if p.LenSqr() == 0 {
		return p
	}

	p2 := MulElem(p, p)
	beta := 1 / math.Sqrt(Sum(MulElem(p2, e.oneOverRadiiSq)))
	n := MulElem(p.Mul(beta), e.oneOverRadiiSq).Len()
	alpha := (1 - beta) * (p.Len() / n)

	var d mgl64.Vec3
	s, dSdA := 0.0, 1.0
	for i := 0; i < projectionMaxIterations; i++ {
		alpha -= s / dSdA

		d = mgl64.Vec3{1, 1, 1}.Add(e.oneOverRadiiSq.Mul(alpha))
		d2 := MulElem(d, d)
		d3 := MulElem(d, d2)

		s = Sum(DivElem(p2, MulElem(e.radiiSquared, d2))) - 1
		dSdA = -2 * Sum(DivElem(p2, MulElem(e.radiiToTheFourth, d3)))

		if math.Abs(s) <= projectionEpsilon {
			break
		}
	}
	return DivElem(p, d)
}

// CartesianSurfacePosition returns the model-space position of g on the
// surface.
func (e Ellipsoid) CartesianSurfacePosition(g Geodetic2) mgl64.Vec3 {
	normal := e.GeodeticSurfaceNormal(g)
	k := MulElem(e.radiiSquared, normal)
	gamma := math.Sqrt(k.Dot(normal))
	return k.Mul(1 / gamma)
}

// CartesianPosition returns the model-space position of g, offset along the
// surface normal by its height.
func (e Ellipsoid) CartesianPosition(g Geodetic3) mgl64.Vec3 {
	normal := e.GeodeticSurfaceNormal(g.Geodetic2)
	return e.CartesianSurfacePosition(g.Geodetic2).Add(normal.Mul(g.Height))
}

// CartesianToGeodetic2 returns the geodetic coordinates of the surface
// projection of p.
func (e Ellipsoid) CartesianToGeodetic2(p mgl64.Vec3) Geodetic2 {
	if p.LenSqr() == 0 {
		return Geodetic2{}
	}
	normal := e.GeodeticSurfaceNormalForGeocentricallyProjectedPoint(e.GeodeticSurfaceProjection(p))
	return Geodetic2{
		Lat: math.Asin(clamp(normal[2]/normal.Len(), -1, 1)),
		Lon: math.Atan2(normal[1], normal[0]),
	}
}

// CartesianToGeodetic3 is like CartesianToGeodetic2 but also returns the
// signed height of p above the surface.
func (e Ellipsoid) CartesianToGeodetic3(p mgl64.Vec3) Geodetic3 {
	surface := e.GeodeticSurfaceProjection(p)
	g := e.CartesianToGeodetic2(p)
	h := p.Sub(surface)
	height := h.Len()
	if h.Dot(e.GeodeticSurfaceNormal(g)) < 0 {
		height = -height
	}
	return g.WithHeight(height)
}
