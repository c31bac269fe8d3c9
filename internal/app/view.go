package app

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/irfansharif/globe/internal/chunk"
	"github.com/irfansharif/globe/internal/geom"
	"github.com/irfansharif/globe/internal/globe"
)

const (
	maxTilt     = 80 * math.Pi / 180
	maxLatitude = math.Pi/2 - 1e-6
	minFov      = 10 * math.Pi / 180
	maxFov      = 100 * math.Pi / 180
	maxAltitude = 1e8 // meters

	defaultAltitude = 2e7 // meters
	defaultFov      = 60 * math.Pi / 180

	zoomBase     = 1.15 // altitude ratio per unit of zoom
	panFraction  = 0.1  // fraction of the altitude covered by a unit pan
	nearFraction = 0.05 // near plane distance as a fraction of the altitude
	minNear      = 0.5  // meters
)

// View is an orbit camera: it looks at a point on the globe from some
// altitude above it, optionally tilted away from straight down toward the
// north.
type View struct {
	// Lat and Lon locate the point looked at, in radians.
	Lat, Lon float64
	// Altitude is the distance from the terrain at the point looked at, in
	// meters.
	Altitude float64
	// Tilt is the angle away from looking straight down, in radians.
	Tilt float64
	// Fov is the vertical field of view, in radians.
	Fov           float64
	Width, Height int
}

// NewView creates a new view looking down at the origin of latitude and
// longitude.
func NewView(width, height int) *View {
	return &View{
		Altitude: defaultAltitude,
		Fov:      defaultFov,
		Width:    width,
		Height:   height,
	}
}

// SetAltitude sets the altitude, clamped to [floor, maxAltitude].
func (v *View) SetAltitude(altitude, floor float64) {
	v.Altitude = clamp(altitude, floor, maxAltitude)
}

// Zoom moves the camera toward (positive delta) or away from the point
// looked at.
func (v *View) Zoom(delta, floor float64) {
	v.SetAltitude(v.Altitude*math.Pow(zoomBase, -delta), floor)
}

// Pan moves the point looked at east (dx) and north (dy). Pans cover more
// ground from higher up.
func (v *View) Pan(dx, dy, radius float64) {
	step := panFraction * v.Altitude / radius
	v.Lat = clamp(v.Lat+dy*step, -maxLatitude, maxLatitude)
	v.Lon = geom.NormalizeAngleAround(v.Lon+dx*step/math.Max(math.Cos(v.Lat), 0.01), 0)
}

// SetTilt sets the tilt, clamped to [0, 80°].
func (v *View) SetTilt(tilt float64) { v.Tilt = clamp(tilt, 0, maxTilt) }

// SetFov sets the vertical field of view, clamped to [10°, 100°].
func (v *View) SetFov(fov float64) { v.Fov = clamp(fov, minFov, maxFov) }

// SetViewport updates the viewport dimensions.
func (v *View) SetViewport(width, height int) {
	v.Width = width
	v.Height = height
}

// Aspect returns the viewport's width over its height.
func (v *View) Aspect() float64 {
	if v.Height <= 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

// Camera returns the world space camera for the globe. The camera never
// gets closer than the globe's minimum camera height to the terrain, either
// at the point looked at or right below itself.
func (v *View) Camera(g *globe.Globe) chunk.Camera {
	e := g.Ellipsoid()
	minHeight := g.Settings().CameraMinHeight
	target := geom.MakeGeodetic2(v.Lat, v.Lon)
	ground := g.Height(e.CartesianSurfacePosition(target))
	altitude := math.Max(v.Altitude, minHeight)

	normal := e.GeodeticSurfaceNormal(target)
	east := mgl64.Vec3{0, 0, 1}.Cross(normal)
	if east.LenSqr() < 1e-12 {
		east = mgl64.Vec3{0, 1, 0}
	}
	east = east.Normalize()
	north := normal.Cross(east)

	focus := e.CartesianPosition(target.WithHeight(ground))
	eye := focus.
		Add(normal.Mul(altitude * math.Cos(v.Tilt))).
		Sub(north.Mul(altitude * math.Sin(v.Tilt)))

	h := g.SurfacePositionHandle(eye)
	terrain := h.CenterToReferenceSurface.Add(h.ReferenceSurfaceOutDirection.Mul(h.HeightToSurface))
	if above := eye.Sub(terrain).Dot(h.ReferenceSurfaceOutDirection); above < minHeight {
		eye = eye.Add(h.ReferenceSurfaceOutDirection.Mul(minHeight - above))
	}

	model := g.ModelTransform()
	eyeWorld := geom.TransformPoint(model, eye)
	focusWorld := geom.TransformPoint(model, focus)
	up := geom.TransformDir(model, north)

	near := math.Max(altitude*nearFraction, minNear)
	far := eye.Len() + e.MaximumRadius()
	return chunk.Camera{
		Position:   eyeWorld,
		View:       mgl64.LookAtV(eyeWorld, focusWorld, up),
		Projection: mgl64.Perspective(v.Fov, v.Aspect(), near, far),
	}
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
