package app

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/irfansharif/globe/internal/chunk"
	"github.com/irfansharif/globe/internal/globe"
	"github.com/irfansharif/globe/internal/render"
)

// Toggle names a setting that can be switched on and off at runtime.
type Toggle int

const (
	ToggleChunkEdges Toggle = iota
	ToggleChunkBounds
	ToggleChunkAABB
	ToggleHeightResolution
	ToggleHeightIntensities
	ToggleFrustumCulling
	ToggleHorizonCulling
	ToggleLevelByProjectedArea
	ToggleShading
	ToggleAccurateNormals
)

func (t Toggle) String() string {
	switch t {
	case ToggleChunkEdges:
		return "chunk edges"
	case ToggleChunkBounds:
		return "chunk bounds"
	case ToggleChunkAABB:
		return "chunk AABB"
	case ToggleHeightResolution:
		return "height resolution"
	case ToggleHeightIntensities:
		return "height intensities"
	case ToggleFrustumCulling:
		return "frustum culling"
	case ToggleHorizonCulling:
		return "horizon culling"
	case ToggleLevelByProjectedArea:
		return "level by projected area"
	case ToggleShading:
		return "shading"
	case ToggleAccurateNormals:
		return "accurate normals"
	default:
		return "unknown"
	}
}

// App encapsulates the main application state and logic.
type App struct {
	Globe *globe.Globe
	View  *View
	// LightDirection points toward the light, in world space.
	LightDirection mgl64.Vec3
}

// NewApp creates a new application instance.
func NewApp(g *globe.Globe, view *View) *App {
	return &App{
		Globe:          g,
		View:           view,
		LightDirection: mgl64.Vec3{1, 0.3, 0.2}.Normalize(),
	}
}

// RenderData returns the camera and light for the current view.
func (app *App) RenderData() chunk.RenderData {
	return chunk.RenderData{
		Camera:         app.View.Camera(app.Globe),
		LightDirection: app.LightDirection,
	}
}

// Frame updates and draws the globe for the current view.
func (app *App) Frame() (chunk.Frame, render.Stats) {
	return app.Globe.Render(app.RenderData())
}

// Zoom moves the camera toward or away from the globe, never below the
// minimum camera height.
func (app *App) Zoom(delta float64) {
	app.View.Zoom(delta, app.Globe.Settings().CameraMinHeight)
}

// Pan moves the point looked at.
func (app *App) Pan(dx, dy float64) {
	app.View.Pan(dx, dy, app.Globe.Ellipsoid().MinimumRadius())
}

// Toggle flips the given setting.
func (app *App) Toggle(t Toggle) error {
	s := app.Globe.Settings()
	var flag *bool
	switch t {
	case ToggleChunkEdges:
		flag = &s.Debug.ShowChunkEdges
	case ToggleChunkBounds:
		flag = &s.Debug.ShowChunkBounds
	case ToggleChunkAABB:
		flag = &s.Debug.ShowChunkAABB
	case ToggleHeightResolution:
		flag = &s.Debug.ShowHeightResolution
	case ToggleHeightIntensities:
		flag = &s.Debug.ShowHeightIntensities
	case ToggleFrustumCulling:
		flag = &s.Debug.PerformFrustumCulling
	case ToggleHorizonCulling:
		flag = &s.Debug.PerformHorizonCulling
	case ToggleLevelByProjectedArea:
		flag = &s.Debug.LevelByProjectedAreaElseDistance
	case ToggleShading:
		flag = &s.PerformShading
	case ToggleAccurateNormals:
		flag = &s.UseAccurateNormals
	default:
		return fmt.Errorf("unknown toggle %d", t)
	}

	*flag = !*flag
	if err := app.Globe.Apply(s); err != nil {
		return err
	}
	log.Printf("%s: %t", t, *flag)
	return nil
}

// AdjustCutoffLevel moves the deepest level drawn in model space by delta.
func (app *App) AdjustCutoffLevel(delta int) error {
	s := app.Globe.Settings()
	s.Debug.ModelSpaceRenderingCutoffLevel += delta
	if err := app.Globe.Apply(s); err != nil {
		return err
	}
	log.Printf("model space rendering cutoff level: %d", s.Debug.ModelSpaceRenderingCutoffLevel)
	return nil
}

// ScaleLodFactor multiplies the level of detail scale factor.
func (app *App) ScaleLodFactor(factor float64) error {
	s := app.Globe.Settings()
	s.LodScaleFactor *= factor
	if err := app.Globe.Apply(s); err != nil {
		return err
	}
	log.Printf("lod scale factor: %.2f", s.LodScaleFactor)
	return nil
}
