package render

import (
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rclancey/earcut"
)

// earClip triangulates a simple polygon using the earcut algorithm. It
// returns nil, after logging, for degenerate polygons or if triangulation
// fails.
func earClip(polygon []mgl64.Vec2) [][3]mgl64.Vec2 {
	if len(polygon) < 3 {
		log.Printf("WARNING: degenerate polygon (%d vertices < 3)", len(polygon))
		return nil
	}

	// Flat coordinate array required by earcut: [x0, y0, x1, y1, ...].
	coords := make([]float64, len(polygon)*2)
	for i, p := range polygon {
		coords[i*2] = p[0]
		coords[i*2+1] = p[1]
	}

	indices, err := earcut.Earcut(coords, nil /* holeIndices */, 2 /* dim */)
	if err != nil {
		log.Printf("WARNING: triangulation failed for %d-vertex polygon: %v", len(polygon), err)
		return nil
	}
	if len(indices)%3 != 0 {
		log.Printf("WARNING: invalid triangle count (indices: %d, not divisible by 3)", len(indices))
		return nil
	}

	triangles := make([][3]mgl64.Vec2, len(indices)/3)
	for t := range triangles {
		for v := 0; v < 3; v++ {
			triangles[t][v] = polygon[indices[t*3+v]]
		}
	}
	return triangles
}
