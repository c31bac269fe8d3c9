// Package render draws the globe's visible chunks.
//
// Each leaf chunk is drawn with one of two programs:
//  1. The global path, for coarse chunks far from the camera. The vertex
//     stage evaluates the ellipsoid directly from geodetic coordinates in
//     model space; single precision is enough at those distances.
//  2. The local path, for fine chunks near the camera. The four patch corners
//     are computed on the CPU in double precision relative to the camera,
//     then cast to single precision; the vertex stage only interpolates
//     between them.
//
// All GPU work goes through the Backend interface; GLBackend implements it
// with OpenGL.
package render

import (
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/irfansharif/globe/internal/chunk"
	"github.com/irfansharif/globe/internal/geom"
	"github.com/irfansharif/globe/internal/palette"
)

var renderLogger *log.Logger = log.New(io.Discard, "", 0)

func init() {
	if os.Getenv("GLOBE_DEBUG_RENDER") == "1" {
		renderLogger = log.New(os.Stdout, "[render] ", log.Ltime|log.Lmsgprefix)
	}
}

const (
	// DefaultCutoffLevel is the deepest level drawn by the global path.
	DefaultCutoffLevel = 10

	maxSkirtLength = 8000 // meters
)

// Path is the precision path a chunk is drawn with.
type Path int

const (
	GlobalPath Path = iota
	LocalPath
)

func (p Path) String() string {
	switch p {
	case GlobalPath:
		return "global"
	case LocalPath:
		return "local"
	default:
		return "unknown"
	}
}

// SelectPath returns the path for a chunk at the given level: chunks no
// deeper than the cutoff level are global, deeper ones local.
func SelectPath(level, cutoff int) Path {
	if level <= cutoff {
		return GlobalPath
	}
	return LocalPath
}

// Options control how chunks are shaded and which debug overlays are drawn.
type Options struct {
	// CutoffLevel is the deepest level drawn by the global path.
	CutoffLevel  int
	GridSegments int

	OrenNayarRoughness    float32
	PerformShading        bool
	UseAccurateNormals    bool
	EclipseShadowsEnabled bool
	EclipseHardShadows    bool

	ShowChunkEdges        bool
	ShowChunkBounds       bool
	ShowChunkAABB         bool
	ShowHeightResolution  bool
	ShowHeightIntensities bool
	// DisplayedEvaluator picks the desired level used to colour the bounds
	// and hull overlays.
	DisplayedEvaluator chunk.LevelEvaluator
}

// DefaultOptions returns the options the globe starts with.
func DefaultOptions() Options {
	return Options{
		CutoffLevel:        DefaultCutoffLevel,
		GridSegments:       DefaultGridSegments,
		OrenNayarRoughness: 0,
		PerformShading:     true,
		UseAccurateNormals: true,
		DisplayedEvaluator: chunk.LevelByProjectedArea,
	}
}

// Stats tracks rendering metrics for the last frame.
type Stats struct {
	GlobalChunks     int
	LocalChunks      int
	DrawCalls        int
	LastRenderTimeUs float64
}

// Renderer draws the leaf set produced by the chunk tree.
type Renderer struct {
	backend   Backend
	ellipsoid geom.Ellipsoid
	opts      Options
	stats     Stats

	global, local []*chunk.Chunk
	overlay       overlay
}

func NewRenderer(backend Backend, e geom.Ellipsoid, opts Options) *Renderer {
	return &Renderer{backend: backend, ellipsoid: e, opts: opts}
}

func (r *Renderer) Options() Options        { return r.opts }
func (r *Renderer) SetOptions(opts Options) { r.opts = opts }

// Stats returns the statistics of the last RenderChunks call.
func (r *Renderer) Stats() Stats { return r.stats }

// RenderChunks draws every leaf, global chunks first, then local ones, each
// group under a single program activation, followed by any enabled debug
// overlays.
func (r *Renderer) RenderChunks(leaves []*chunk.Chunk, state chunk.FrameState, data chunk.RenderData) Stats {
	start := time.Now()
	r.stats = Stats{}

	r.global, r.local = r.global[:0], r.local[:0]
	for _, c := range leaves {
		if SelectPath(c.Level(), r.opts.CutoffLevel) == GlobalPath {
			r.global = append(r.global, c)
		} else {
			r.local = append(r.local, c)
		}
	}

	modelView := data.Camera.View.Mul4(state.ModelTransform)
	if len(r.global) > 0 {
		r.backend.UseProgram(GlobalProgram)
		r.setCommonUniforms(modelView, data)
		mvp := data.Camera.Projection.Mul4(modelView)
		r.backend.SetUniform(UniformModelViewProjectionTransform, toMat4(mvp))
		r.backend.SetUniform(UniformRadiiSquared, toVec3(r.ellipsoid.RadiiSquared()))
		for _, c := range r.global {
			r.renderGlobal(c)
		}
	}
	if len(r.local) > 0 {
		r.backend.UseProgram(LocalProgram)
		r.setCommonUniforms(modelView, data)
		r.backend.SetUniform(UniformProjectionTransform, toMat4(data.Camera.Projection))
		for _, c := range r.local {
			r.renderLocal(c, modelView)
		}
	}

	if r.opts.ShowChunkBounds || r.opts.ShowChunkAABB {
		mvp := data.Camera.Projection.Mul4(modelView)
		r.renderOverlay(leaves, mvp)
	}

	r.stats.GlobalChunks, r.stats.LocalChunks = len(r.global), len(r.local)
	r.stats.LastRenderTimeUs = float64(time.Since(start).Microseconds())
	instrumentRender(r.stats, start)
	return r.stats
}

// setCommonUniforms supplies the uniforms both programs share.
func (r *Renderer) setCommonUniforms(modelView mgl64.Mat4, data chunk.RenderData) {
	light := geom.TransformDir(data.Camera.View, data.LightDirection)
	if light.LenSqr() > 0 {
		light = light.Normalize()
	}

	b := r.backend
	b.SetUniform(UniformModelViewTransform, toMat4(modelView))
	b.SetUniform(UniformLightDirectionCameraSpace, toVec3(light))
	b.SetUniform(UniformOrenNayarRoughness, r.opts.OrenNayarRoughness)
	b.SetUniform(UniformPerformShading, r.opts.PerformShading)
	b.SetUniform(UniformUseAccurateNormals, r.opts.UseAccurateNormals)
	b.SetUniform(UniformEclipseShadowsEnabled, r.opts.EclipseShadowsEnabled)
	b.SetUniform(UniformEclipseHardShadows, r.opts.EclipseHardShadows)
	b.SetUniform(UniformShowChunkEdges, r.opts.ShowChunkEdges)
	b.SetUniform(UniformShowHeightResolution, r.opts.ShowHeightResolution)
	b.SetUniform(UniformShowHeightIntensities, r.opts.ShowHeightIntensities)
	b.SetUniform(UniformXSegments, int32(r.opts.GridSegments))
}

// setChunkUniforms supplies the per-chunk uniforms both programs share.
func (r *Renderer) setChunkUniforms(c *chunk.Chunk) {
	b := r.backend
	b.SetUniform(UniformSkirtLength, skirtLength(c))
	b.SetUniform(UniformChunkLevel, int32(c.Level()))
	b.SetUniform(UniformChunkEdgeColor, mgl32.Vec4(palette.Vec4(palette.ForLevel(c.Level()))))
}

func (r *Renderer) renderGlobal(c *chunk.Chunk) {
	p := c.Patch()
	size := p.Size()
	r.setChunkUniforms(c)
	r.backend.SetUniform(UniformMinLatLon, mgl32.Vec2{float32(p.MinLat()), float32(p.MinLon())})
	r.backend.SetUniform(UniformLonLatScalingFactor, mgl32.Vec2{float32(size.Lon), float32(size.Lat)})
	r.draw()
}

func (r *Renderer) renderLocal(c *chunk.Chunk, modelView mgl64.Mat4) {
	corners := LocalCorners(r.ellipsoid, c.Patch(), modelView)
	normal := r.ellipsoid.GeodeticSurfaceNormal(c.Patch().Center())
	normalCamera := geom.TransformDir(modelView, normal).Normalize()

	r.setChunkUniforms(c)
	r.backend.SetUniform(UniformP00, toVec3(corners[0]))
	r.backend.SetUniform(UniformP10, toVec3(corners[1]))
	r.backend.SetUniform(UniformP01, toVec3(corners[2]))
	r.backend.SetUniform(UniformP11, toVec3(corners[3]))
	r.backend.SetUniform(UniformPatchNormalCameraSpace, toVec3(normalCamera))
	r.backend.SetUniform(UniformPatchNormalModelSpace, toVec3(normal))
	r.draw()
}

func (r *Renderer) draw() {
	r.backend.DrawGrid()
	r.stats.DrawCalls++
}

// LocalCorners returns the camera-space positions of the patch's south-west,
// south-east, north-west and north-east corners, in that order, computed in
// double precision.
func LocalCorners(e geom.Ellipsoid, p geom.GeodeticPatch, modelView mgl64.Mat4) [4]mgl64.Vec3 {
	var corners [4]mgl64.Vec3
	for i, q := range [4]geom.Quad{geom.SouthWest, geom.SouthEast, geom.NorthWest, geom.NorthEast} {
		corners[i] = geom.TransformPoint(modelView, e.CartesianSurfacePosition(p.Corner(q)))
	}
	return corners
}

// skirtLength is how far the grid's border is pulled down to hide cracks
// between neighbours of different levels.
func skirtLength(c *chunk.Chunk) float32 {
	return float32(math.Min(c.Patch().HalfSize().Lat*1e6, maxSkirtLength))
}

func toMat4(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}

func toVec3(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
