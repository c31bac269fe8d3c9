package chunk

import (
	"github.com/go-gl/mathgl/mgl64"
)

// FrameState is the state carried from one update to the next. Update takes
// the previous frame's state and returns the state for the next one.
type FrameState struct {
	// ModelTransform maps globe model space to world space;
	// InverseModelTransform is its inverse.
	ModelTransform        mgl64.Mat4
	InverseModelTransform mgl64.Mat4
	// CornersDirty forces every chunk to recompute its bounding corners,
	// for instance after the tile provider's heights changed.
	CornersDirty bool
}

// NewFrameState returns the state for a globe placed with the given model
// transform.
func NewFrameState(model mgl64.Mat4) FrameState {
	return FrameState{
		ModelTransform:        model,
		InverseModelTransform: model.Inv(),
		CornersDirty:          true,
	}
}

// Camera is the viewer, in world space.
type Camera struct {
	Position   mgl64.Vec3
	View       mgl64.Mat4
	Projection mgl64.Mat4
}

// RenderData is the per-frame input shared by the updater and the renderer.
type RenderData struct {
	Camera Camera
	// LightDirection points from the globe toward the light, in world space.
	LightDirection mgl64.Vec3
}

// UpdateStats summarizes one update pass.
type UpdateStats struct {
	Visited         int
	CulledByFrustum int
	CulledByHorizon int
	Splits          int
	Merges          int
	SplitsDeclined  int
	Leaves          int
	MaxLevel        int
	PoolInUse       int
}

// Frame is the output of an update pass. Leaves lists the visible leaf
// chunks in depth-first order, west root first; it is only valid until the
// next update.
type Frame struct {
	Leaves []*Chunk
	Stats  UpdateStats
}
