package chunk

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/irfansharif/globe/internal/geom"
	"github.com/irfansharif/globe/internal/tile"
)

// CullTest names one of the tests that can prove a chunk invisible.
type CullTest int

const (
	// CullByFrustum rejects chunks entirely outside the view frustum.
	CullByFrustum CullTest = iota
	// CullByHorizon rejects chunks hidden behind the globe's horizon.
	CullByHorizon
)

func (t CullTest) String() string {
	switch t {
	case CullByFrustum:
		return "frustum"
	case CullByHorizon:
		return "horizon"
	default:
		return "unknown"
	}
}

// cullByFrustum reports whether all eight bounding corners lie outside the
// same clip plane. The plane tests are linear in homogeneous clip space, so
// they hold for the whole box even for corners behind the camera.
func cullByFrustum(c *Chunk, v *view) bool {
	var outside [6]int
	for _, corner := range c.corners {
		clip := v.mvp.Mul4x1(corner)
		x, y, z, w := clip[0], clip[1], clip[2], clip[3]
		if x < -w {
			outside[0]++
		}
		if x > w {
			outside[1]++
		}
		if y < -w {
			outside[2]++
		}
		if y > w {
			outside[3]++
		}
		if z < -w {
			outside[4]++
		}
		if z > w {
			outside[5]++
		}
	}
	for _, n := range outside {
		if n == len(c.corners) {
			return true
		}
	}
	return false
}

// cullByHorizon reports whether the point of the patch nearest the camera is
// further away than the camera's horizon plus that point's own horizon, i.e.
// whether the globe's minimum sphere blocks every line of sight to it. The
// point's horizon is measured against a sphere shrunk by the chunk's maximum
// height so raised terrain is kept.
func cullByHorizon(c *Chunk, e geom.Ellipsoid, v *view) bool {
	minRadius := e.MinimumRadius()
	cameraRadiusSq := v.position.LenSqr()
	if cameraRadiusSq <= minRadius*minRadius {
		return false
	}

	object := e.CartesianSurfacePosition(c.patch.ClosestPoint(v.geodetic))
	objectDistance := v.position.Sub(object).Len()
	for _, q := range geom.Quads {
		p := e.CartesianSurfacePosition(c.patch.Corner(q))
		if d := v.position.Sub(p).Len(); d < objectDistance {
			object, objectDistance = p, d
		}
	}

	occluder := minRadius - c.maxHeight
	cameraHorizon := math.Sqrt(cameraRadiusSq - minRadius*minRadius)
	objectHorizon := math.Sqrt(math.Max(0, object.LenSqr()-occluder*occluder))
	return objectDistance > cameraHorizon+objectHorizon
}

// cull runs the enabled tests and records which one rejected the chunk.
func (t *Tree) cull(c *Chunk, v *view) bool {
	if t.opts.PerformFrustumCulling && cullByFrustum(c, v) {
		t.stats.CulledByFrustum++
		instrumentCulled(CullByFrustum)
		return true
	}
	if t.opts.PerformHorizonCulling && cullByHorizon(c, t.ellipsoid, v) {
		t.stats.CulledByHorizon++
		instrumentCulled(CullByHorizon)
		return true
	}
	return false
}

// globeBoundsHalfSize is the half size above which a patch is treated as a
// whole hemisphere and bounded by the globe's box instead.
const globeBoundsHalfSize = math.Pi/4 + 1e-9

// computeCorners refreshes the chunk's data from the provider and rebuilds
// its bounding box. The bottom corners sit at the patch corners at minimum
// height. The top corners are lifted along their normals until they reach
// the tangent plane above the patch center at maximum height, and the pair
// nearest the equator is first pushed toward it to cover the bulge of the
// small circle of latitude.
func computeCorners(c *Chunk, e geom.Ellipsoid, p tile.Provider) {
	c.minHeight, c.maxHeight = 0, 0
	c.dataLevel, c.hasData = 0, false
	if p != nil {
		if md, ok := p.Metadata(c.index); ok {
			c.minHeight, c.maxHeight = md.MinHeight, md.MaxHeight
			c.dataLevel, c.hasData = md.MaxLevel, true
		}
	}

	if c.patch.HalfSize().Lat > globeBoundsHalfSize {
		r := e.MaximumRadius() + math.Max(0, c.maxHeight)
		for i := range c.corners {
			c.corners[i] = mgl64.Vec4{r, r, r, 1}
			if i&1 != 0 {
				c.corners[i][0] = -r
			}
			if i&2 != 0 {
				c.corners[i][1] = -r
			}
			if i&4 != 0 {
				c.corners[i][2] = -r
			}
		}
		return
	}

	for i, q := range geom.Quads {
		corner := c.patch.Corner(q).WithHeight(c.minHeight)
		c.corners[i] = e.CartesianPosition(corner).Vec4(1)
	}

	equatorEdge := c.patch.MaxLat()
	if c.patch.IsNorthern() {
		equatorEdge = c.patch.MinLat()
	}
	p1 := e.CartesianSurfacePosition(geom.MakeGeodetic2(equatorEdge, c.patch.MinLon()))
	p2 := e.CartesianSurfacePosition(geom.MakeGeodetic2(equatorEdge, c.patch.MaxLon()))
	latDiff := equatorEdge - e.CartesianToGeodetic2(p1.Add(p2).Mul(0.5)).Lat

	center := c.patch.Center()
	normal := e.GeodeticSurfaceNormal(center)
	plane := e.CartesianSurfacePosition(center).Dot(normal) + c.maxHeight
	for i, q := range geom.Quads {
		corner := c.patch.Corner(q)
		if corner.Lat == equatorEdge {
			corner.Lat += latDiff
		}
		surface := e.CartesianSurfacePosition(corner)
		cos := e.GeodeticSurfaceNormal(corner).Dot(normal)
		height := (plane - surface.Dot(normal)) / cos
		c.corners[4+i] = e.CartesianPosition(corner.WithHeight(height)).Vec4(1)
	}
}
