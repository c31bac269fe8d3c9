package render

import (
	"image/color"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/irfansharif/globe/internal/chunk"
	"github.com/irfansharif/globe/internal/palette"
)

// overlayStride is the number of floats per overlay vertex: position
// (x, y, z) and colour (r, g, b, a).
const overlayStride = 7

// hullAlpha is the opacity of the filled screen-space hulls.
const hullAlpha = 0.25

// boxEdges lists the corner pairs joined by the edges of a chunk's bounding
// box: bottom face, top face, then the four verticals.
var boxEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0},
	{4, 5}, {5, 7}, {7, 6}, {6, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

type overlay struct {
	lines, triangles []float32
}

func (o *overlay) reset() {
	o.lines, o.triangles = o.lines[:0], o.triangles[:0]
}

func (o *overlay) vertex(buf []float32, p mgl64.Vec3, c color.RGBA, alpha float32) []float32 {
	rgba := palette.Vec4(c)
	return append(buf, float32(p[0]), float32(p[1]), float32(p[2]), rgba[0], rgba[1], rgba[2], rgba[3]*alpha)
}

// renderOverlay draws the bounding boxes and/or the filled screen-space
// hulls of the given chunks, coloured by the displayed evaluator's desired
// level.
func (r *Renderer) renderOverlay(leaves []*chunk.Chunk, mvp mgl64.Mat4) {
	o := &r.overlay
	o.reset()

	for _, c := range leaves {
		ndc, ok := projectCorners(c, mvp)
		if !ok {
			continue
		}
		level := c.DesiredLevel(r.opts.DisplayedEvaluator)
		if level == chunk.UnknownLevel {
			level = c.Level()
		}
		col := palette.ForLevel(level)

		if r.opts.ShowChunkBounds {
			for _, e := range boxEdges {
				o.lines = o.vertex(o.lines, ndc[e[0]], col, 1)
				o.lines = o.vertex(o.lines, ndc[e[1]], col, 1)
			}
		}
		if r.opts.ShowChunkAABB {
			var flat [8]mgl64.Vec2
			for i, p := range ndc {
				flat[i] = mgl64.Vec2{p[0], p[1]}
			}
			hull := convexHull(flat[:])
			if len(hull) < 3 {
				continue
			}
			fill := palette.Jittered(col, int64(c.Index().X)^int64(c.Index().Y)<<20)
			for _, tri := range earClip(hull) {
				for _, p := range tri {
					o.triangles = o.vertex(o.triangles, mgl64.Vec3{p[0], p[1], 0}, fill, hullAlpha)
				}
			}
		}
	}

	if len(o.lines) == 0 && len(o.triangles) == 0 {
		return
	}
	r.backend.UseProgram(DebugProgram)
	if len(o.triangles) > 0 {
		r.backend.DrawTriangles(o.triangles)
		r.stats.DrawCalls++
	}
	if len(o.lines) > 0 {
		r.backend.DrawLines(o.lines)
		r.stats.DrawCalls++
	}
	renderLogger.Printf("overlay: %d line vertices, %d triangle vertices",
		len(o.lines)/overlayStride, len(o.triangles)/overlayStride)
}

// projectCorners maps the chunk's bounding corners to normalized device
// coordinates. It fails if any corner is behind the camera.
func projectCorners(c *chunk.Chunk, mvp mgl64.Mat4) ([8]mgl64.Vec3, bool) {
	var ndc [8]mgl64.Vec3
	for i, corner := range c.Corners() {
		clip := mvp.Mul4x1(corner)
		if clip[3] <= 0 {
			return ndc, false
		}
		ndc[i] = clip.Vec3().Mul(1 / clip[3])
	}
	return ndc, true
}

// convexHull returns the convex hull of the points in counter-clockwise
// order (Andrew's monotone chain), without collinear points.
func convexHull(points []mgl64.Vec2) []mgl64.Vec2 {
	pts := append([]mgl64.Vec2(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})
	if len(pts) < 3 {
		return pts
	}

	cross := func(o, a, b mgl64.Vec2) float64 {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}
	hull := make([]mgl64.Vec2, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	for i, lower := len(pts)-2, len(hull)+1; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}
