package render

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/irfansharif/globe/internal/chunk"
	"github.com/irfansharif/globe/internal/geom"
	"github.com/irfansharif/globe/internal/tile"
)

var wgs84 = geom.MakeEllipsoid(6378137.0, 6378137.0, 6356752.314245)

// recorder is a Backend that records every call.
type recorder struct {
	programs []Program
	current  Program
	set      map[Program]map[string]any
	grids    map[Program]int
	lines    [][]float32
	tris     [][]float32
}

var _ Backend = (*recorder)(nil)

func newRecorder() *recorder {
	return &recorder{
		current: -1,
		set:     make(map[Program]map[string]any),
		grids:   make(map[Program]int),
	}
}

func (r *recorder) UseProgram(p Program) {
	r.programs = append(r.programs, p)
	r.current = p
}

func (r *recorder) SetUniform(name string, value any) {
	if r.set[r.current] == nil {
		r.set[r.current] = make(map[string]any)
	}
	r.set[r.current][name] = value
}

func (r *recorder) DrawGrid()                        { r.grids[r.current]++ }
func (r *recorder) DrawLines(vertices []float32)     { r.lines = append(r.lines, vertices) }
func (r *recorder) DrawTriangles(vertices []float32) { r.tris = append(r.tris, vertices) }

func leafAt(level int, lat, lon float64) *chunk.Chunk {
	c := chunk.NewChunk(tile.Containing(level, geom.MakeGeodetic2(lat, lon)))
	return &c
}

func lookingAt(from, target mgl64.Vec3) chunk.RenderData {
	return chunk.RenderData{
		Camera: chunk.Camera{
			Position:   from,
			View:       mgl64.LookAtV(from, target, mgl64.Vec3{0, 0, 1}),
			Projection: mgl64.Perspective(mgl64.DegToRad(60), 16.0/9.0, 1, 1e9),
		},
		LightDirection: mgl64.Vec3{1, 0, 0},
	}
}

func TestSelectPath(t *testing.T) {
	require.Equal(t, GlobalPath, SelectPath(0, DefaultCutoffLevel))
	require.Equal(t, GlobalPath, SelectPath(DefaultCutoffLevel, DefaultCutoffLevel))
	require.Equal(t, LocalPath, SelectPath(DefaultCutoffLevel+1, DefaultCutoffLevel))
	require.Equal(t, "global", GlobalPath.String())
	require.Equal(t, "local", LocalPath.String())
}

func TestRenderChunksGroupsByPath(t *testing.T) {
	b := newRecorder()
	r := NewRenderer(b, wgs84, DefaultOptions())
	leaves := []*chunk.Chunk{
		leafAt(12, 0.1, 0.2),
		leafAt(3, 0.1, 0.2),
		leafAt(DefaultCutoffLevel+1, -0.4, 1),
		leafAt(DefaultCutoffLevel, -0.4, 1),
	}

	state := chunk.NewFrameState(mgl64.Ident4())
	data := lookingAt(mgl64.Vec3{2e7, 0, 0}, mgl64.Vec3{})
	stats := r.RenderChunks(leaves, state, data)

	require.Equal(t, 2, stats.GlobalChunks)
	require.Equal(t, 2, stats.LocalChunks)
	require.Equal(t, 4, stats.DrawCalls)
	require.Equal(t, stats, r.Stats())

	// One activation per group, global first.
	require.Equal(t, []Program{GlobalProgram, LocalProgram}, b.programs)
	require.Equal(t, 2, b.grids[GlobalProgram])
	require.Equal(t, 2, b.grids[LocalProgram])

	for _, p := range []Program{GlobalProgram, LocalProgram} {
		for _, name := range ProgramUniforms[p] {
			require.Contains(t, b.set[p], name, "%s program", p)
		}
	}
	for _, set := range b.set {
		for name, v := range set {
			switch v.(type) {
			case bool, int32, float32, mgl32.Vec2, mgl32.Vec3, mgl32.Vec4, mgl32.Mat4:
			default:
				t.Fatalf("uniform %q has unsupported type %T", name, v)
			}
		}
	}
}

func TestRenderChunksCutoff(t *testing.T) {
	b := newRecorder()
	opts := DefaultOptions()
	opts.CutoffLevel = 4
	r := NewRenderer(b, wgs84, opts)

	state := chunk.NewFrameState(mgl64.Ident4())
	data := lookingAt(mgl64.Vec3{2e7, 0, 0}, mgl64.Vec3{})

	stats := r.RenderChunks([]*chunk.Chunk{leafAt(4, 0, 0)}, state, data)
	require.Equal(t, Stats{GlobalChunks: 1, DrawCalls: 1, LastRenderTimeUs: stats.LastRenderTimeUs}, stats)

	stats = r.RenderChunks([]*chunk.Chunk{leafAt(5, 0, 0)}, state, data)
	require.Equal(t, Stats{LocalChunks: 1, DrawCalls: 1, LastRenderTimeUs: stats.LastRenderTimeUs}, stats)
}

func TestRenderChunksEmpty(t *testing.T) {
	b := newRecorder()
	r := NewRenderer(b, wgs84, DefaultOptions())
	stats := r.RenderChunks(nil, chunk.NewFrameState(mgl64.Ident4()), lookingAt(mgl64.Vec3{2e7, 0, 0}, mgl64.Vec3{}))
	require.Zero(t, stats.DrawCalls)
	require.Empty(t, b.programs)
}

func TestGlobalChunkUniforms(t *testing.T) {
	b := newRecorder()
	r := NewRenderer(b, wgs84, DefaultOptions())
	c := leafAt(3, 0.1, 0.2)
	r.RenderChunks([]*chunk.Chunk{c}, chunk.NewFrameState(mgl64.Ident4()), lookingAt(mgl64.Vec3{2e7, 0, 0}, mgl64.Vec3{}))

	p := c.Patch()
	set := b.set[GlobalProgram]
	require.Equal(t, mgl32.Vec2{float32(p.MinLat()), float32(p.MinLon())}, set[UniformMinLatLon])
	require.Equal(t, mgl32.Vec2{float32(p.Size().Lon), float32(p.Size().Lat)}, set[UniformLonLatScalingFactor])
	require.Equal(t, int32(3), set[UniformChunkLevel])
	require.Equal(t, float32(maxSkirtLength), set[UniformSkirtLength])
}

func TestSkirtLength(t *testing.T) {
	require.Equal(t, float32(maxSkirtLength), skirtLength(leafAt(0, 0, 0)))

	c := leafAt(20, 0.3, 0.3)
	require.InDelta(t, c.Patch().HalfSize().Lat*1e6, float64(skirtLength(c)), 1e-3)
	require.Less(t, skirtLength(c), float32(maxSkirtLength))
}

func TestLocalCornersPrecision(t *testing.T) {
	g := geom.MakeGeodetic2(0.5, 0.3)
	c := leafAt(chunk.MaxSplitDepth, g.Lat, g.Lon)

	from := wgs84.CartesianPosition(c.Patch().Center().WithHeight(10))
	view := mgl64.LookAtV(from, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	corners := LocalCorners(wgs84, c.Patch(), view)

	// Camera space positions are small, so casting them to single precision
	// loses well under a millimeter.
	for _, p := range corners {
		require.Less(t, p.Len(), 1e3)
		cast := toVec3(p)
		for i := range p {
			require.InDelta(t, p[i], float64(cast[i]), 1e-4)
		}
	}

	// South-west, south-east, north-west, north-east.
	patch := c.Patch()
	for i, q := range []geom.Quad{geom.SouthWest, geom.SouthEast, geom.NorthWest, geom.NorthEast} {
		want := geom.TransformPoint(view, wgs84.CartesianSurfacePosition(patch.Corner(q)))
		for j := range want {
			require.InDelta(t, want[j], corners[i][j], 1e-6, "corner %s", q)
		}
	}
	width := corners[1].Sub(corners[0]).Len()
	modelWidth := wgs84.CartesianSurfacePosition(patch.Corner(geom.SouthEast)).
		Sub(wgs84.CartesianSurfacePosition(patch.Corner(geom.SouthWest))).Len()
	require.InDelta(t, modelWidth, width, 1e-6)
}

func TestRenderOverlay(t *testing.T) {
	tree := chunk.NewTree(wgs84, nil, chunk.NewPool(1<<12, true), chunk.DefaultOptions())
	data := lookingAt(mgl64.Vec3{2e7, 0, 0}, mgl64.Vec3{})
	state := chunk.NewFrameState(mgl64.Ident4())
	var frame chunk.Frame
	for i := 0; i < 4; i++ {
		state, frame = tree.Update(state, data)
	}
	require.NotEmpty(t, frame.Leaves)

	b := newRecorder()
	opts := DefaultOptions()
	opts.ShowChunkBounds = true
	opts.ShowChunkAABB = true
	r := NewRenderer(b, wgs84, opts)
	stats := r.RenderChunks(frame.Leaves, state, data)

	require.Equal(t, DebugProgram, b.programs[len(b.programs)-1])
	require.Len(t, b.lines, 1)
	require.Len(t, b.lines[0], len(frame.Leaves)*len(boxEdges)*2*overlayStride)
	require.Len(t, b.tris, 1)
	require.NotEmpty(t, b.tris[0])
	require.Zero(t, len(b.tris[0])%(3*overlayStride))
	require.Equal(t, len(frame.Leaves)+2, stats.DrawCalls)

	// Hull vertices carry the translucent fill.
	for i := overlayStride - 1; i < len(b.tris[0]); i += overlayStride {
		require.InDelta(t, hullAlpha, b.tris[0][i], 1e-6)
	}
}

func TestSkirtedGrid(t *testing.T) {
	g := NewSkirtedGrid(4)
	require.Equal(t, 4, g.Segments)
	require.Equal(t, 7*7, g.VertexCount())
	require.Len(t, g.Indices, 6*6*6)

	skirt := 0
	for i := 0; i < g.VertexCount(); i++ {
		u, v, s := g.Vertices[i*VertexStride], g.Vertices[i*VertexStride+1], g.Vertices[i*VertexStride+2]
		require.True(t, u >= 0 && u <= 1 && v >= 0 && v <= 1)
		if s == 1 {
			skirt++
			// Skirt vertices sit on the border of the unit square.
			require.True(t, u == 0 || u == 1 || v == 0 || v == 1)
		}
	}
	require.Equal(t, 7*7-5*5, skirt)
	for _, i := range g.Indices {
		require.Less(t, int(i), g.VertexCount())
	}

	require.Equal(t, 1, NewSkirtedGrid(0).Segments)
}

func TestConvexHull(t *testing.T) {
	hull := convexHull([]mgl64.Vec2{{0, 0}, {1, 0}, {0.5, 0.5}, {1, 1}, {0, 1}, {0.5, 0}})
	require.Equal(t, []mgl64.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, hull)

	area := 0.0
	for _, tri := range earClip(hull) {
		a, b, c := tri[0], tri[1], tri[2]
		area += math.Abs((b[0]-a[0])*(c[1]-a[1])-(b[1]-a[1])*(c[0]-a[0])) / 2
	}
	require.InDelta(t, 1.0, area, 1e-12)
	require.Nil(t, earClip(hull[:2]))
}
