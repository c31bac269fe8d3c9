package chunk

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/irfansharif/globe/internal/geom"
	"github.com/irfansharif/globe/internal/tile"
)

var chunksLogger *log.Logger = log.New(io.Discard, "", 0)

func init() {
	if os.Getenv("GLOBE_DEBUG_CHUNKS") == "1" {
		chunksLogger = log.New(os.Stdout, "[chunks] ", log.Ltime|log.Lmsgprefix)
	}
}

// Options tune how the tree is reshaped every frame.
type Options struct {
	// LodScaleFactor scales both viewer-driven evaluators; larger values
	// ask for more detail at the same distance.
	LodScaleFactor        float64
	PerformFrustumCulling bool
	PerformHorizonCulling bool
	// LevelByProjectedAreaElseDistance selects which evaluator's verdict
	// DisplayedEvaluator reports. Both are always computed and combined.
	LevelByProjectedAreaElseDistance bool
}

// DefaultOptions returns the options the globe starts with.
func DefaultOptions() Options {
	return Options{
		LodScaleFactor:                   10,
		PerformFrustumCulling:            true,
		PerformHorizonCulling:            true,
		LevelByProjectedAreaElseDistance: true,
	}
}

// DisplayedEvaluator is the evaluator whose desired level debug overlays
// show.
func (o Options) DisplayedEvaluator() LevelEvaluator {
	if o.LevelByProjectedAreaElseDistance {
		return LevelByProjectedArea
	}
	return LevelByDistance
}

// Tree is the two-rooted quadtree of chunks covering the globe. The roots
// are owned by the tree and never released; every other chunk lives in the
// pool.
type Tree struct {
	ellipsoid geom.Ellipsoid
	provider  tile.Provider
	pool      *Pool
	roots     [2]Chunk
	opts      Options

	// generation is bumped whenever bounding corners must be recomputed.
	// Chunks compare it against their own stamp, which starts at zero.
	generation uint64
	// exhausted is set while splits keep being declined, so the warning is
	// logged once per episode.
	exhausted bool
	// declined holds the chunks whose split was refused this frame; they are
	// the only leaves allowed above MinSplitDepth.
	declined map[*Chunk]bool

	leaves []*Chunk
	stats  UpdateStats
}

// NewTree returns a tree made of the two root chunks. A nil provider means
// data is available everywhere at every level.
func NewTree(e geom.Ellipsoid, provider tile.Provider, pool *Pool, opts Options) *Tree {
	t := &Tree{
		ellipsoid:  e,
		provider:   provider,
		pool:       pool,
		opts:       opts,
		generation: 1,
		declined:   make(map[*Chunk]bool),
	}
	for i, idx := range tile.Roots {
		t.roots[i] = NewChunk(idx)
	}
	return t
}

func (t *Tree) Ellipsoid() geom.Ellipsoid { return t.ellipsoid }
func (t *Tree) Provider() tile.Provider   { return t.provider }
func (t *Tree) Pool() *Pool               { return t.pool }
func (t *Tree) Options() Options          { return t.opts }
func (t *Tree) SetOptions(opts Options)   { t.opts = opts }

// Roots returns the west and east root chunks.
func (t *Tree) Roots() [2]*Chunk { return [2]*Chunk{&t.roots[0], &t.roots[1]} }

// Get returns the pooled chunk at idx.
func (t *Tree) Get(idx Index) *Chunk { return t.pool.Get(idx) }

// Reset releases every chunk, leaving the two roots as leaves.
func (t *Tree) Reset() {
	t.pool.Reset()
	for i, idx := range tile.Roots {
		t.roots[i] = NewChunk(idx)
	}
	t.generation++
	t.exhausted = false
	clear(t.declined)
	t.leaves = t.leaves[:0]
}

// Walk calls fn for every chunk in the tree, parents before children, west
// root first.
func (t *Tree) Walk(fn func(c *Chunk)) {
	var walk func(c *Chunk)
	walk = func(c *Chunk) {
		fn(c)
		if c.IsLeaf() {
			return
		}
		for _, idx := range c.children {
			walk(t.pool.Get(idx))
		}
	}
	for i := range t.roots {
		walk(&t.roots[i])
	}
}

// Update walks both roots once, culling, splitting and merging chunks for
// the given camera, and returns the visible leaves. The returned state is
// the input state with the corners marked clean.
func (t *Tree) Update(state FrameState, data RenderData) (FrameState, Frame) {
	start := time.Now()
	if state.CornersDirty {
		t.generation++
	}

	v := newView(t.ellipsoid, state, data)
	t.stats = UpdateStats{}
	clear(t.declined)
	t.leaves = t.leaves[:0]
	for i := range t.roots {
		t.update(&t.roots[i], &v, true)
	}

	if t.stats.SplitsDeclined == 0 {
		t.exhausted = false
	}
	t.stats.Leaves = len(t.leaves)
	t.stats.PoolInUse = t.pool.Len()
	instrumentUpdate(t.stats, start)
	if t.stats.Splits > 0 || t.stats.Merges > 0 {
		chunksLogger.Printf("%d splits, %d merges, %d leaves (max level %d), %d/%d chunks in use",
			t.stats.Splits, t.stats.Merges, t.stats.Leaves, t.stats.MaxLevel, t.stats.PoolInUse, t.pool.Cap())
	}

	state.CornersDirty = false
	return state, Frame{Leaves: t.leaves, Stats: t.stats}
}

// update visits one chunk. Chunks above MinSplitDepth are always split and
// never culled or rendered if their children exist. Otherwise a visible leaf
// may split once per frame: children created this frame are visited with
// allowSplit unset.
func (t *Tree) update(c *Chunk, v *view, allowSplit bool) {
	t.stats.Visited++
	if c.cornersGeneration != t.generation {
		computeCorners(c, t.ellipsoid, t.provider)
		c.cornersGeneration = t.generation
	}

	if c.Level() < MinSplitDepth {
		c.visible = true
		if c.IsLeaf() {
			if err := t.split(c); err != nil {
				t.declineSplit(c, err)
				t.appendLeaf(c)
				return
			}
		}
		t.updateChildren(c, v, true)
		return
	}

	if t.cull(c, v) {
		c.visible = false
		return
	}
	c.visible = true
	desired := t.desiredLevel(c, v)

	if c.IsLeaf() {
		if allowSplit && desired > c.Level() && c.Level() < MaxSplitDepth {
			if err := t.split(c); err != nil {
				t.declineSplit(c, err)
			} else {
				t.updateChildren(c, v, false)
				return
			}
		}
		t.appendLeaf(c)
		return
	}

	// Ties keep the children, so a chunk that just split does not merge
	// again on the next frame.
	if desired < c.Level() && c.Level() > MinSplitDepth {
		t.merge(c)
		t.appendLeaf(c)
		return
	}
	t.updateChildren(c, v, allowSplit)
}

func (t *Tree) updateChildren(c *Chunk, v *view, allowSplit bool) {
	for _, idx := range c.children {
		t.update(t.pool.Get(idx), v, allowSplit)
	}
}

func (t *Tree) appendLeaf(c *Chunk) {
	t.leaves = append(t.leaves, c)
	if c.Level() > t.stats.MaxLevel {
		t.stats.MaxLevel = c.Level()
	}
}

func (t *Tree) declineSplit(c *Chunk, err error) {
	t.stats.SplitsDeclined++
	t.declined[c] = true
	if !t.exhausted {
		t.exhausted = true
		log.Printf("WARNING: not splitting chunk %s: %v (%d/%d chunks in use)",
			c.index, err, t.pool.Len(), t.pool.Cap())
	}
}

// Split gives a leaf its four children. Either all four are acquired or, if
// the pool runs out, none are and ErrPoolExhausted is returned.
func (t *Tree) Split(c *Chunk) error {
	if !c.IsLeaf() {
		return fmt.Errorf("chunk %s: already split", c.index)
	}
	if c.Level() >= MaxSplitDepth {
		return fmt.Errorf("chunk %s: at maximum depth %d", c.index, MaxSplitDepth)
	}
	return t.split(c)
}

func (t *Tree) split(c *Chunk) error {
	var acquired [4]Index
	for i, q := range geom.Quads {
		idx, err := t.pool.Acquire(c.index.Child(q))
		if err != nil {
			for _, a := range acquired[:i] {
				t.pool.Release(a)
			}
			return err
		}
		acquired[i] = idx
	}
	c.children = acquired
	t.stats.Splits++
	return nil
}

// Merge releases every descendant of c back to the pool, leaving c a leaf.
func (t *Tree) Merge(c *Chunk) {
	if c.IsLeaf() {
		return
	}
	t.merge(c)
}

func (t *Tree) merge(c *Chunk) {
	t.releaseChildren(c)
	t.stats.Merges++
}

func (t *Tree) releaseChildren(c *Chunk) {
	if c.IsLeaf() {
		return
	}
	for q, idx := range c.children {
		t.releaseChildren(t.pool.Get(idx))
		t.pool.Release(idx)
		c.children[q] = NilIndex
	}
}

// Validate checks the shape of the tree: roots in place, zero or four
// children per chunk, child indices derived from their parent's, levels in
// range, each pooled chunk referenced exactly once and nothing leaked. Leaves
// of the last frame must sit at MinSplitDepth or deeper unless their split
// was declined.
func (t *Tree) Validate() error {
	var errs []string
	seen := make(map[Index]bool)

	var walk func(c *Chunk)
	walk = func(c *Chunk) {
		if c.Level() > MaxSplitDepth {
			errs = append(errs, fmt.Sprintf("chunk %s is deeper than %d", c.index, MaxSplitDepth))
		}
		if c.IsLeaf() {
			for _, idx := range c.children[1:] {
				if idx != NilIndex {
					errs = append(errs, fmt.Sprintf("chunk %s is partially split", c.index))
					break
				}
			}
			return
		}
		for _, q := range geom.Quads {
			idx := c.children[q]
			switch {
			case idx == NilIndex:
				errs = append(errs, fmt.Sprintf("chunk %s is missing its %s child", c.index, q))
				continue
			case !t.pool.InUse(idx):
				errs = append(errs, fmt.Sprintf("chunk %s references free slot %d", c.index, idx))
				continue
			case seen[idx]:
				errs = append(errs, fmt.Sprintf("chunk %s shares slot %d with another parent", c.index, idx))
				continue
			}
			seen[idx] = true

			child := t.pool.Get(idx)
			if want := c.index.Child(q); child.index != want {
				errs = append(errs, fmt.Sprintf("chunk %s has child %s in its %s slot, expected %s",
					c.index, child.index, q, want))
			}
			walk(child)
		}
	}
	for i := range t.roots {
		if t.roots[i].index != tile.Roots[i] {
			errs = append(errs, fmt.Sprintf("root %d is %s, expected %s", i, t.roots[i].index, tile.Roots[i]))
		}
		walk(&t.roots[i])
	}

	for _, c := range t.leaves {
		if c.Level() < MinSplitDepth && !t.declined[c] {
			errs = append(errs, fmt.Sprintf("chunk %s is a leaf above depth %d without a declined split",
				c.index, MinSplitDepth))
		}
	}

	if len(seen) != t.pool.Len() {
		errs = append(errs, fmt.Sprintf("%d chunks reachable but %d pool slots in use", len(seen), t.pool.Len()))
	}
	if err := t.pool.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		log.Printf("chunk tree integrity check failed with %d errors:", len(errs))
		for _, err := range errs {
			log.Printf("  - %s", err)
		}
		return fmt.Errorf("chunk tree integrity check failed with %d errors", len(errs))
	}
	return nil
}
