// Package globe ties the chunk tree and the renderer together into a single
// renderable ellipsoid. A frame is Update (placement) followed by Render;
// Render reshapes the tree for the camera before drawing any chunk.
package globe

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/irfansharif/globe/internal/chunk"
	"github.com/irfansharif/globe/internal/config"
	"github.com/irfansharif/globe/internal/geom"
	"github.com/irfansharif/globe/internal/render"
	"github.com/irfansharif/globe/internal/tile"
)

// validateInterval is the number of frames between tree integrity checks.
const validateInterval = 100

// SurfacePositionHandle locates a position relative to the globe's surface,
// in model space.
type SurfacePositionHandle struct {
	// CenterToReferenceSurface runs from the globe's center to the
	// ellipsoid surface below the position.
	CenterToReferenceSurface mgl64.Vec3
	// ReferenceSurfaceOutDirection is the surface normal there.
	ReferenceSurfaceOutDirection mgl64.Vec3
	// HeightToSurface is the terrain height above the ellipsoid there.
	HeightToSurface float64
}

// Globe is a chunked level-of-detail ellipsoid.
type Globe struct {
	settings  config.Settings
	ellipsoid geom.Ellipsoid
	provider  tile.Provider

	tree     *chunk.Tree
	renderer *render.Renderer

	state  chunk.FrameState
	frame  chunk.Frame
	stats  render.Stats
	frames int
}

// New returns a globe placed at the world origin. The provider may be nil,
// in which case the globe is a bare ellipsoid.
func New(s config.Settings, provider tile.Provider, backend render.Backend) (*Globe, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	e := s.Ellipsoid()
	pool := chunk.NewPool(s.PoolCapacity, s.StrictPool)
	return &Globe{
		settings:  s,
		ellipsoid: e,
		provider:  provider,
		tree:      chunk.NewTree(e, provider, pool, s.ChunkOptions()),
		renderer:  render.NewRenderer(backend, e, s.RenderOptions()),
		state:     chunk.NewFrameState(mgl64.Ident4()),
	}, nil
}

func (g *Globe) Settings() config.Settings      { return g.settings }
func (g *Globe) Ellipsoid() geom.Ellipsoid      { return g.ellipsoid }
func (g *Globe) Tree() *chunk.Tree              { return g.tree }
func (g *Globe) ModelTransform() mgl64.Mat4     { return g.state.ModelTransform }
func (g *Globe) Leaves() []*chunk.Chunk         { return g.frame.Leaves }
func (g *Globe) UpdateStats() chunk.UpdateStats { return g.frame.Stats }
func (g *Globe) RenderStats() render.Stats      { return g.stats }

// Apply replaces the globe's settings. The ellipsoid, pool and grid are
// fixed at creation; changing them is an error.
func (g *Globe) Apply(s config.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	switch {
	case s.Radii != g.settings.Radii:
		return fmt.Errorf("radii cannot change after creation")
	case s.PoolCapacity != g.settings.PoolCapacity, s.StrictPool != g.settings.StrictPool:
		return fmt.Errorf("chunk pool cannot change after creation")
	case s.GridSegments != g.settings.GridSegments:
		return fmt.Errorf("grid segments cannot change after creation")
	}

	g.settings = s
	g.tree.SetOptions(s.ChunkOptions())
	g.renderer.SetOptions(s.RenderOptions())
	return nil
}

// ModelTransform returns the transform placing a globe at translation,
// rotated then uniformly scaled.
func ModelTransform(translation mgl64.Vec3, rotation mgl64.Quat, scale float64) mgl64.Mat4 {
	return mgl64.Translate3D(translation[0], translation[1], translation[2]).
		Mul4(rotation.Mat4()).
		Mul4(mgl64.Scale3D(scale, scale, scale))
}

// Update places the globe in the world for the coming frames.
func (g *Globe) Update(model mgl64.Mat4) {
	g.state.ModelTransform = model
	g.state.InverseModelTransform = model.Inv()
}

// InvalidateGeometry makes every chunk recompute its bounds on the next
// frame, for instance after the provider's heights changed.
func (g *Globe) InvalidateGeometry() { g.state.CornersDirty = true }

// Render reshapes the chunk tree for the camera and draws the resulting
// leaves.
func (g *Globe) Render(data chunk.RenderData) (chunk.Frame, render.Stats) {
	g.state, g.frame = g.tree.Update(g.state, data)
	g.stats = g.renderer.RenderChunks(g.frame.Leaves, g.state, data)

	g.frames++
	if g.frames%validateInterval == 0 {
		if err := g.tree.Validate(); err != nil {
			if g.settings.StrictPool {
				panic(err)
			}
			log.Printf("WARNING: frame %d: %v", g.frames, err)
		}
	}
	return g.frame, g.stats
}

// Validate checks the integrity of the chunk tree.
func (g *Globe) Validate() error { return g.tree.Validate() }

// ModelPosition maps a world space position into model space.
func (g *Globe) ModelPosition(world mgl64.Vec3) mgl64.Vec3 {
	return geom.TransformPoint(g.state.InverseModelTransform, world)
}

// SurfacePositionHandle locates the surface below a model space position.
func (g *Globe) SurfacePositionHandle(target mgl64.Vec3) SurfacePositionHandle {
	geodetic := g.ellipsoid.CartesianToGeodetic2(target)
	return SurfacePositionHandle{
		CenterToReferenceSurface:     g.ellipsoid.CartesianSurfacePosition(geodetic),
		ReferenceSurfaceOutDirection: g.ellipsoid.GeodeticSurfaceNormal(geodetic),
		HeightToSurface:              g.terrainHeight(geodetic),
	}
}

// Height returns the terrain height above the ellipsoid below a model space
// position. Positions without height data are at height zero.
func (g *Globe) Height(target mgl64.Vec3) float64 {
	return g.terrainHeight(g.ellipsoid.CartesianToGeodetic2(target))
}

func (g *Globe) terrainHeight(geodetic geom.Geodetic2) float64 {
	if g.provider == nil {
		return 0
	}
	h, ok := g.provider.SampleHeight(geodetic)
	if !ok {
		return 0
	}
	return h
}
