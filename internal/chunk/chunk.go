// Package chunk implements the level-of-detail tree over the globe's tiles:
// the chunk nodes, the fixed-capacity pool that owns them, the evaluators
// that decide how deep each part of the tree should be, the culling tests
// that skip invisible chunks, and the per-frame updater tying it together.
package chunk

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/irfansharif/globe/internal/geom"
	"github.com/irfansharif/globe/internal/tile"
)

const (
	// MinSplitDepth is the shallowest level the tree renders at. Chunks
	// above it are always split.
	MinSplitDepth = 2
	// MaxSplitDepth is the deepest level a chunk may reach.
	MaxSplitDepth = 22
)

// Chunk is one node of the tree, covering the patch of its tile.
type Chunk struct {
	index tile.Index
	patch geom.GeodeticPatch

	visible bool

	// corners are the model-space vertices of a box enclosing the chunk's
	// terrain: 0-3 at the patch corners at minimum height, 4-7 lifted above
	// the patch's bulge. cornersGeneration records the tree geometry
	// generation they were computed for; zero means never.
	corners           [8]mgl64.Vec4
	cornersGeneration uint64

	// Bounding heights and data availability, refreshed with the corners.
	minHeight, maxHeight float64
	dataLevel            int
	hasData              bool

	levels   [numLevelEvaluators]int
	children [4]Index
}

// NewChunk returns a leaf chunk for the given tile.
func NewChunk(i tile.Index) Chunk {
	c := Chunk{index: i, patch: i.Patch()}
	for q := range c.children {
		c.children[q] = NilIndex
	}
	for e := range c.levels {
		c.levels[e] = UnknownLevel
	}
	return c
}

func (c *Chunk) Index() tile.Index         { return c.index }
func (c *Chunk) Patch() geom.GeodeticPatch { return c.patch }
func (c *Chunk) Level() int                { return c.index.Level }
func (c *Chunk) IsVisible() bool           { return c.visible }
func (c *Chunk) Corners() [8]mgl64.Vec4    { return c.corners }
func (c *Chunk) Child(q geom.Quad) Index   { return c.children[q] }

// BoundingHeights returns the minimum and maximum terrain height inside the
// chunk, as last reported by the tile provider.
func (c *Chunk) BoundingHeights() (lo, hi float64) { return c.minHeight, c.maxHeight }

// IsLeaf reports whether the chunk has no children.
func (c *Chunk) IsLeaf() bool { return c.children[0] == NilIndex }

// DesiredLevel returns the level the given evaluator last asked for, or
// UnknownLevel if it had no opinion.
func (c *Chunk) DesiredLevel(e LevelEvaluator) int { return c.levels[e] }
