package chunk

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/irfansharif/globe/internal/geom"
	"github.com/irfansharif/globe/internal/tile"
)

func testChunk(level int, g geom.Geodetic2, provider tile.Provider) Chunk {
	c := NewChunk(tile.Containing(level, g))
	computeCorners(&c, wgs84, provider)
	return c
}

// overCenter returns render data for a camera at distance d straight above
// the chunk's center, looking at it.
func overCenter(c *Chunk, d float64) RenderData {
	center := c.Patch().Center()
	target := wgs84.CartesianSurfacePosition(center)
	eye := target.Add(wgs84.GeodeticSurfaceNormal(center).Mul(d))
	return lookingAt(eye, target)
}

func viewFor(data RenderData) view {
	return newView(wgs84, NewFrameState(mgl64.Ident4()), data)
}

func TestDetailGrowsWithProximity(t *testing.T) {
	tree := newTestTree(1, nil)
	for _, level := range []int{3, 6, 9} {
		c := testChunk(level, geom.MakeGeodetic2(0.3, 0.5), nil)
		prev, prevDistance := math.MinInt, math.MinInt
		for d := 1.6e7; d > 1; d /= 2 {
			v := viewFor(overCenter(&c, d))
			desired := tree.desiredLevel(&c, &v)
			require.GreaterOrEqual(t, desired, prev, "level %d at %.0fm", level, d)
			require.GreaterOrEqual(t, c.DesiredLevel(LevelByDistance), prevDistance)
			prev, prevDistance = desired, c.DesiredLevel(LevelByDistance)
		}
		require.Equal(t, MaxSplitDepth, prev)
	}
}

func TestLevelByDistance(t *testing.T) {
	c := testChunk(8, geom.MakeGeodetic2(-0.7, 2.2), nil)

	const d = 1e5
	v := viewFor(overCenter(&c, d))
	want := int(math.Ceil(math.Log2(10 * wgs84.MinimumRadius() / d)))
	require.Equal(t, want, levelByDistance(&c, wgs84, &v, 10))

	// Halving the distance asks for exactly one more level.
	v = viewFor(overCenter(&c, d/2))
	require.Equal(t, want+1, levelByDistance(&c, wgs84, &v, 10))

	// A camera on the patch itself asks for the deepest level.
	v = viewFor(overCenter(&c, 0))
	require.Equal(t, MaxSplitDepth, levelByDistance(&c, wgs84, &v, 10))
}

func TestLevelByProjectedArea(t *testing.T) {
	c := testChunk(8, geom.MakeGeodetic2(-0.7, 2.2), nil)

	far := viewFor(overCenter(&c, 1e6))
	near := viewFor(overCenter(&c, 1e5))
	require.Greater(t, levelByProjectedArea(&c, wgs84, &near, 10), levelByProjectedArea(&c, wgs84, &far, 10))

	// The children of a chunk seen from afar fill a quarter of its area
	// each, so they ask for the same level.
	parent := levelByProjectedArea(&c, wgs84, &far, 10)
	for _, q := range geom.Quads {
		child := NewChunk(c.Index().Child(q))
		require.InDelta(t, parent, levelByProjectedArea(&child, wgs84, &far, 10), 1)
	}

	// Without a projection there is no opinion.
	degenerate := far
	degenerate.projection = mgl64.Mat4{}
	require.Equal(t, UnknownLevel, levelByProjectedArea(&c, wgs84, &degenerate, 10))
}

func TestLevelByAvailableData(t *testing.T) {
	g := geom.MakeGeodetic2(0.3, 0.5)

	c := testChunk(4, g, nil)
	require.Equal(t, MaxSplitDepth, levelByAvailableData(&c, nil))

	provider := tile.NewProcedural(10, 7)
	c = testChunk(4, g, provider)
	require.Equal(t, 7, levelByAvailableData(&c, provider))

	empty := tile.NewProcedural(10, -1)
	c = testChunk(4, g, empty)
	require.Equal(t, MinSplitDepth, levelByAvailableData(&c, empty))
}

func TestDesiredLevelCombination(t *testing.T) {
	provider := tile.NewProcedural(10, 12)
	tree := newTestTree(1, provider)
	c := testChunk(5, geom.MakeGeodetic2(0.3, 0.5), provider)

	v := viewFor(overCenter(&c, 5e4))
	desired := tree.desiredLevel(&c, &v)
	viewer := max(c.DesiredLevel(LevelByDistance), c.DesiredLevel(LevelByProjectedArea))
	require.Equal(t, clampLevel(min(viewer, 12)), desired)
	require.Equal(t, 12, c.DesiredLevel(LevelByAvailableData))

	opts := tree.Options()
	require.Equal(t, LevelByProjectedArea, opts.DisplayedEvaluator())
	opts.LevelByProjectedAreaElseDistance = false
	require.Equal(t, LevelByDistance, opts.DisplayedEvaluator())
}

func TestClampLevel(t *testing.T) {
	require.Equal(t, MinSplitDepth, clampLevel(UnknownLevel))
	require.Equal(t, MinSplitDepth, clampLevel(-3))
	require.Equal(t, 7, clampLevel(7))
	require.Equal(t, MaxSplitDepth, clampLevel(MaxSplitDepth+5))
	require.Equal(t, -64, ceilLog2(0))
	require.Equal(t, 3, ceilLog2(5))
}
