package chunk

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/irfansharif/globe/internal/geom"
	"github.com/irfansharif/globe/internal/tile"
)

func TestCullByHorizon(t *testing.T) {
	v := viewFor(above(geom.MakeGeodetic2(0, 0), 1e6))

	below := testChunk(6, geom.MakeGeodetic2(0.01, 0.01), nil)
	require.False(t, cullByHorizon(&below, wgs84, &v))

	antipode := testChunk(6, geom.MakeGeodetic2(0.01, math.Pi-0.01), nil)
	require.True(t, cullByHorizon(&antipode, wgs84, &v))

	// Just past the horizon a tall enough chunk pokes back into view.
	beyond := testChunk(8, geom.MakeGeodetic2(0, 0.7), nil)
	require.True(t, cullByHorizon(&beyond, wgs84, &v))
	beyond.maxHeight = 2e5
	require.False(t, cullByHorizon(&beyond, wgs84, &v))

	// A camera under the minimum radius culls nothing.
	inside := viewFor(above(geom.MakeGeodetic2(0, 0), -1e5))
	require.False(t, cullByHorizon(&antipode, wgs84, &inside))
}

func TestCullByFrustum(t *testing.T) {
	eye := wgs84.CartesianPosition(geom.MakeGeodetic3(0, 0, 1e6))
	below := testChunk(6, geom.MakeGeodetic2(0.01, 0.01), nil)

	toward := viewFor(lookingAt(eye, mgl64.Vec3{}))
	require.False(t, cullByFrustum(&below, &toward))

	away := viewFor(lookingAt(eye, eye.Mul(2)))
	require.True(t, cullByFrustum(&below, &away))

	// Off to the side of a narrow view.
	side := testChunk(6, geom.MakeGeodetic2(0.05, 0.01), nil)
	require.False(t, cullByFrustum(&side, &toward))
	narrow := lookingAt(eye, mgl64.Vec3{})
	narrow.Camera.Projection = mgl64.Perspective(mgl64.DegToRad(5), 1, 1, 1e9)
	nv := viewFor(narrow)
	require.True(t, cullByFrustum(&side, &nv))
}

func TestCornersLayout(t *testing.T) {
	provider := tile.NewProcedural(1000, 16)
	for _, g := range []geom.Geodetic2{
		geom.MakeGeodetic2(0.6, -1.0),
		geom.MakeGeodetic2(-0.6, 2.0),
	} {
		for level := 1; level <= 10; level += 3 {
			c := testChunk(level, g, provider)
			corners := c.Corners()

			for i, q := range geom.Quads {
				want := wgs84.CartesianPosition(c.Patch().Corner(q).WithHeight(-1000))
				require.True(t, corners[i].Vec3().ApproxEqualThreshold(want, 1e-6), "chunk %s corner %s", c.Index(), q)
				require.Equal(t, 1.0, corners[i][3])

				// The top corners reach the tangent plane above the patch
				// center at maximum height.
				top := corners[4+i].Vec3()
				require.Greater(t, top.Len(), corners[i].Vec3().Len())
				normal := wgs84.GeodeticSurfaceNormal(c.Patch().Center())
				center := wgs84.CartesianPosition(c.Patch().Center().WithHeight(1000))
				require.InDelta(t, center.Dot(normal), top.Dot(normal), 1e-3)
			}
		}
	}
}

func TestCornersGlobeBox(t *testing.T) {
	c := testChunk(0, geom.MakeGeodetic2(0, 1), nil)
	r := wgs84.MaximumRadius()
	for _, corner := range c.Corners() {
		for k := 0; k < 3; k++ {
			require.Equal(t, r, math.Abs(corner[k]))
		}
		require.Equal(t, 1.0, corner[3])
	}
}
