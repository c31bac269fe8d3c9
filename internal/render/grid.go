package render

// DefaultGridSegments is the number of quads along each side of the grid.
const DefaultGridSegments = 64

// Grid is the unit-square mesh every chunk is drawn with. Around the n×n
// interior quads runs one extra ring of quads, the skirt, whose outer
// vertices sit on the square's border and are flagged so the vertex stage
// can pull them down below the surface.
type Grid struct {
	Segments int
	// Vertices holds (u, v, skirt) triples.
	Vertices []float32
	// Indices holds counter-clockwise triangles.
	Indices []uint32
}

// VertexStride is the number of floats per grid vertex.
const VertexStride = 3

// NewSkirtedGrid returns a grid with n interior segments per side:
// (n+3)² vertices and 6·(n+2)² indices.
func NewSkirtedGrid(n int) Grid {
	if n < 1 {
		n = 1
	}
	side := n + 3
	g := Grid{
		Segments: n,
		Vertices: make([]float32, 0, side*side*VertexStride),
		Indices:  make([]uint32, 0, 6*(n+2)*(n+2)),
	}

	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			u := clampUnit(float32(x-1) / float32(n))
			v := clampUnit(float32(y-1) / float32(n))
			var skirt float32
			if x == 0 || y == 0 || x == side-1 || y == side-1 {
				skirt = 1
			}
			g.Vertices = append(g.Vertices, u, v, skirt)
		}
	}

	for y := 0; y < side-1; y++ {
		for x := 0; x < side-1; x++ {
			v00 := uint32(y*side + x)
			v10 := v00 + 1
			v01 := v00 + uint32(side)
			v11 := v01 + 1
			g.Indices = append(g.Indices, v00, v10, v11, v00, v11, v01)
		}
	}
	return g
}

// VertexCount returns the number of vertices in the grid.
func (g Grid) VertexCount() int { return len(g.Vertices) / VertexStride }

func clampUnit(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
