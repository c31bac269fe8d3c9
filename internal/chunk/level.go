package chunk

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/irfansharif/globe/internal/geom"
	"github.com/irfansharif/globe/internal/tile"
)

// LevelEvaluator names one of the heuristics used to pick a chunk's desired
// level.
type LevelEvaluator int

const (
	// LevelByDistance grows the level as the camera approaches the patch.
	LevelByDistance LevelEvaluator = iota
	// LevelByProjectedArea grows the level with the patch's share of the
	// screen.
	LevelByProjectedArea
	// LevelByAvailableData caps the level at the resolution of the tile
	// data.
	LevelByAvailableData

	numLevelEvaluators
)

// LevelEvaluators lists every evaluator.
var LevelEvaluators = [numLevelEvaluators]LevelEvaluator{
	LevelByDistance, LevelByProjectedArea, LevelByAvailableData,
}

func (e LevelEvaluator) String() string {
	switch e {
	case LevelByDistance:
		return "distance"
	case LevelByProjectedArea:
		return "projected-area"
	case LevelByAvailableData:
		return "available-data"
	default:
		return "unknown"
	}
}

// UnknownLevel is reported by an evaluator that has no opinion, e.g. for a
// degenerate camera. It loses every max.
const UnknownLevel = math.MinInt32

// view is the camera as seen from the globe's model space, derived once per
// update.
type view struct {
	position   mgl64.Vec3
	geodetic   geom.Geodetic2
	projection mgl64.Mat4
	mvp        mgl64.Mat4
}

func newView(e geom.Ellipsoid, state FrameState, data RenderData) view {
	position := geom.TransformPoint(state.InverseModelTransform, data.Camera.Position)
	return view{
		position:   position,
		geodetic:   e.CartesianToGeodetic2(position),
		projection: data.Camera.Projection,
		mvp:        data.Camera.Projection.Mul4(data.Camera.View).Mul4(state.ModelTransform),
	}
}

// levelByDistance asks for the level at which lodScale chunks' worth of the
// minimum radius fit in the distance to the patch. Halving the distance asks
// for one more level.
func levelByDistance(c *Chunk, e geom.Ellipsoid, v *view, lodScale float64) int {
	closest := c.patch.ClosestPoint(v.geodetic)
	onPatch := e.CartesianPosition(closest.WithHeight(c.minHeight))
	distance := v.position.Sub(onPatch).Len()
	if !(distance > 0) {
		return MaxSplitDepth
	}
	return ceilLog2(lodScale * e.MinimumRadius() / distance)
}

// levelByProjectedArea approximates the patch's solid angle from the
// camera by the triangle spanned by its center and the midpoints of the two
// edges nearest the camera, projected onto the unit sphere around the camera
// (an eighth of the patch). The projection matrix's focal terms turn that
// into a fraction of the normalized screen. Each level down quarters the
// area, so the level moves by half the log of the scaled fraction.
func levelByProjectedArea(c *Chunk, e geom.Ellipsoid, v *view, lodScale float64) int {
	focal := v.projection[0] * v.projection[5]
	if !(focal > 0) {
		return UnknownLevel
	}

	center := c.patch.Center()
	corner := c.patch.ClosestCorner(v.geodetic)
	var dirs [3]mgl64.Vec3
	for i, g := range [3]geom.Geodetic2{
		center,
		geom.MakeGeodetic2(center.Lat, corner.Lon),
		geom.MakeGeodetic2(corner.Lat, center.Lon),
	} {
		d := e.CartesianPosition(g.WithHeight(c.minHeight)).Sub(v.position)
		if d.LenSqr() == 0 {
			return UnknownLevel
		}
		dirs[i] = d.Normalize()
	}

	area := 0.5 * dirs[1].Sub(dirs[0]).Cross(dirs[2].Sub(dirs[0])).Len()
	fraction := 8 * area * focal / 4
	if !(fraction > 0) {
		return UnknownLevel
	}
	return c.Level() + int(math.Ceil(0.5*math.Log2(lodScale*lodScale*fraction)))
}

// levelByAvailableData caps the level at what the provider has. Without a
// provider there is no cap; a tile without data gets the shallowest level.
func levelByAvailableData(c *Chunk, p tile.Provider) int {
	if p == nil {
		return MaxSplitDepth
	}
	if !c.hasData {
		return MinSplitDepth
	}
	return c.dataLevel
}

// desiredLevel runs every evaluator, caches each verdict on the chunk and
// combines them: the larger of the two viewer-driven levels, capped by the
// data, clamped to the valid range.
func (t *Tree) desiredLevel(c *Chunk, v *view) int {
	c.levels[LevelByDistance] = levelByDistance(c, t.ellipsoid, v, t.opts.LodScaleFactor)
	c.levels[LevelByProjectedArea] = levelByProjectedArea(c, t.ellipsoid, v, t.opts.LodScaleFactor)
	c.levels[LevelByAvailableData] = levelByAvailableData(c, t.provider)

	viewer := max(c.levels[LevelByDistance], c.levels[LevelByProjectedArea])
	return clampLevel(min(viewer, c.levels[LevelByAvailableData]))
}

func clampLevel(level int) int {
	return max(MinSplitDepth, min(level, MaxSplitDepth))
}

// ceilLog2 is ceil(log2(x)), saturated well outside the valid level range.
func ceilLog2(x float64) int {
	const limit = 64
	if !(x > 0) {
		return -limit
	}
	l := math.Ceil(math.Log2(x))
	if l > limit {
		return limit
	}
	if l < -limit {
		return -limit
	}
	return int(l)
}
