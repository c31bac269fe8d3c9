package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

var wgs84 = MakeEllipsoid(6378137.0, 6378137.0, 6356752.314245)

func TestNormalizeAngleAround(t *testing.T) {
	require.InDelta(t, 0.0, NormalizeAngleAround(2*math.Pi, 0), 1e-12)
	require.InDelta(t, -math.Pi/2, NormalizeAngleAround(3*math.Pi/2, 0), 1e-12)
	require.InDelta(t, 3*math.Pi/2, NormalizeAngleAround(-math.Pi/2, math.Pi), 1e-12)
	require.InDelta(t, -math.Pi, NormalizeAngleAround(math.Pi, 0), 1e-12)
}

func TestCartesianRoundTrip(t *testing.T) {
	for _, g := range []Geodetic3{
		MakeGeodetic3(0, 0, 0),
		MakeGeodetic3(0.7, -2.1, 1200),
		MakeGeodetic3(-1.2, 3.0, -400),
		MakeGeodetic3(1.5, 0.3, 35786000),
	} {
		p := wgs84.CartesianPosition(g)
		back := wgs84.CartesianToGeodetic3(p)
		require.InDelta(t, g.Lat, back.Lat, 1e-9)
		require.InDelta(t, g.Lon, back.Lon, 1e-9)
		require.InDelta(t, g.Height, back.Height, 1e-2)
	}
}

func TestSurfaceProjectionOfSurfacePoint(t *testing.T) {
	p := wgs84.CartesianSurfacePosition(MakeGeodetic2(0.4, 1.1))
	require.True(t, p.ApproxEqualThreshold(wgs84.GeodeticSurfaceProjection(p), 1e-6))
}

func TestSurfaceProjectionOfOrigin(t *testing.T) {
	require.Equal(t, mgl64.Vec3{}, wgs84.GeodeticSurfaceProjection(mgl64.Vec3{}))
	require.Equal(t, Geodetic2{}, wgs84.CartesianToGeodetic2(mgl64.Vec3{}))
}

func TestEllipsoidRadii(t *testing.T) {
	require.Equal(t, 6356752.314245, wgs84.MinimumRadius())
	require.Equal(t, 6378137.0, wgs84.MaximumRadius())

	north := wgs84.CartesianSurfacePosition(MakeGeodetic2(math.Pi/2, 0))
	require.InDelta(t, wgs84.MinimumRadius(), north.Len(), 1e-6)
}

func TestPatchCorners(t *testing.T) {
	p := MakePatchFromBounds(-0.5, 0.5, 1, 2)
	require.Equal(t, MakeGeodetic2(0.5, 1), p.Corner(NorthWest))
	require.Equal(t, MakeGeodetic2(0.5, 2), p.Corner(NorthEast))
	require.Equal(t, MakeGeodetic2(-0.5, 1), p.Corner(SouthWest))
	require.Equal(t, MakeGeodetic2(-0.5, 2), p.Corner(SouthEast))
	require.False(t, p.IsNorthern())
	require.True(t, p.Contains(MakeGeodetic2(0, 1.5)))
	require.False(t, p.Contains(MakeGeodetic2(0, 2.5)))
}

func TestPatchClosestPoint(t *testing.T) {
	p := MakePatchFromBounds(0, 0.5, 0, 0.5)

	inside := MakeGeodetic2(0.25, 0.25)
	require.Equal(t, inside, p.ClosestPoint(inside))

	require.Equal(t, MakeGeodetic2(0.5, 0.25), p.ClosestPoint(MakeGeodetic2(1.0, 0.25)))
	require.Equal(t, MakeGeodetic2(0.25, 0.5), p.ClosestPoint(MakeGeodetic2(0.25, 0.9)))

	// Across the antimeridian the patch is still approached from the west.
	q := MakePatchFromBounds(0, 0.5, math.Pi-0.5, math.Pi)
	c := q.ClosestPoint(MakeGeodetic2(0.25, -math.Pi+0.1))
	require.InDelta(t, 0.25, c.Lat, 1e-12)
	require.InDelta(t, math.Pi, c.Lon, 1e-12)
}

func TestPatchClosestCorner(t *testing.T) {
	p := MakePatchFromBounds(0, 1, 0, 1)
	require.Equal(t, p.Corner(NorthEast), p.ClosestCorner(MakeGeodetic2(2, 2)))
	require.Equal(t, p.Corner(SouthWest), p.ClosestCorner(MakeGeodetic2(-1, -1)))
	require.Equal(t, p.Corner(NorthWest), p.ClosestCorner(MakeGeodetic2(0.9, 0.1)))
}

func TestPatchOverlaps(t *testing.T) {
	a := MakePatchFromBounds(0, 1, 0, 1)
	require.True(t, a.Overlaps(MakePatchFromBounds(0.5, 1.5, 0.5, 1.5)))
	require.False(t, a.Overlaps(MakePatchFromBounds(1, 2, 0, 1)))
	require.True(t, MakePatchFromBounds(0, 1, math.Pi-0.5, math.Pi).
		Overlaps(MakePatchFromBounds(0, 1, -math.Pi-0.1, -math.Pi+0.5)))
}
