package tile

import (
	"math"
	"testing"

	"github.com/irfansharif/globe/internal/geom"
	"github.com/stretchr/testify/require"
)

func TestRootPatches(t *testing.T) {
	west, east := WestRoot.Patch(), EastRoot.Patch()

	require.InDelta(t, -math.Pi, west.MinLon(), 1e-12)
	require.InDelta(t, 0.0, west.MaxLon(), 1e-12)
	require.InDelta(t, 0.0, east.MinLon(), 1e-12)
	require.InDelta(t, math.Pi, east.MaxLon(), 1e-12)
	for _, p := range []geom.GeodeticPatch{west, east} {
		require.InDelta(t, -math.Pi/2, p.MinLat(), 1e-12)
		require.InDelta(t, math.Pi/2, p.MaxLat(), 1e-12)
	}
	require.False(t, west.Overlaps(east))
}

func TestChildParent(t *testing.T) {
	for _, root := range Roots {
		for _, q := range geom.Quads {
			c := root.Child(q)
			require.Equal(t, 1, c.Level)
			require.Equal(t, q, c.Quad())
			require.Equal(t, root, c.Parent())
			require.True(t, c.Valid())

			// The child's patch is the matching quadrant of the parent's.
			want := root.Patch().Corner(q)
			require.InDelta(t, want.Lat, c.Patch().Corner(q).Lat, 1e-12)
			require.InDelta(t, want.Lon, c.Patch().Corner(q).Lon, 1e-12)
		}
	}
	require.Equal(t, Index{Level: 3, X: 5, Y: 2}, Index{Level: 2, X: 2, Y: 1}.Child(geom.NorthEast))
	require.Equal(t, "3/5/2", Index{Level: 3, X: 5, Y: 2}.String())
}

func TestValid(t *testing.T) {
	require.True(t, Index{Level: 2, X: 7, Y: 3}.Valid())
	require.False(t, Index{Level: 2, X: 8, Y: 3}.Valid())
	require.False(t, Index{Level: 2, X: 0, Y: 4}.Valid())
	require.False(t, Index{Level: -1}.Valid())
}

func TestProceduralMetadata(t *testing.T) {
	inset := Region{Patch: geom.MakePatchFromBounds(0.1, 0.2, 0.1, 0.2), MaxLevel: 18}
	p := NewProcedural(500, 12, inset)

	md, ok := p.Metadata(EastRoot)
	require.True(t, ok)
	require.Equal(t, 18, md.MaxLevel)
	require.Equal(t, -500.0, md.MinHeight)
	require.Equal(t, 500.0, md.MaxHeight)

	md, ok = p.Metadata(WestRoot)
	require.True(t, ok)
	require.Equal(t, 12, md.MaxLevel)

	sparse := NewProcedural(500, -1, inset)
	_, ok = sparse.Metadata(WestRoot)
	require.False(t, ok)
	_, ok = sparse.SampleHeight(geom.MakeGeodetic2(-0.5, -0.5))
	require.False(t, ok)
	h, ok := sparse.SampleHeight(geom.MakeGeodetic2(0.15, 0.15))
	require.True(t, ok)
	require.LessOrEqual(t, math.Abs(h), 500.0)
}

func TestContaining(t *testing.T) {
	for _, g := range []geom.Geodetic2{
		geom.MakeGeodetic2(0.3, 0.5),
		geom.MakeGeodetic2(-1.2, -3.0),
		geom.MakeGeodetic2(math.Pi/2-1e-6, 0.01),
		geom.MakeGeodetic2(-math.Pi/2+1e-6, math.Pi-1e-6),
	} {
		for level := 0; level <= 12; level++ {
			i := Containing(level, g)
			require.True(t, i.Valid(), "%s", i)
			require.True(t, i.Patch().Contains(g), "%s does not contain %v", i, g)
		}
	}
	require.Equal(t, WestRoot, Containing(0, geom.MakeGeodetic2(0, -1)))
	require.Equal(t, EastRoot, Containing(0, geom.MakeGeodetic2(0, 1)))
}
