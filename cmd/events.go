package main

import (
	"log"
	"math"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/irfansharif/globe/internal/app"
)

const repeatInterval = 16 * time.Millisecond // time between successive pans when pressed down
const tiltStep = 5 * math.Pi / 180
const dragPanScale = 0.01 // unit pans per pixel dragged

// toggleKeys maps the number keys to the settings they flip.
var toggleKeys = map[glfw.Key]app.Toggle{
	glfw.Key1: app.ToggleChunkEdges,
	glfw.Key2: app.ToggleChunkBounds,
	glfw.Key3: app.ToggleChunkAABB,
	glfw.Key4: app.ToggleHeightResolution,
	glfw.Key5: app.ToggleHeightIntensities,
	glfw.Key6: app.ToggleFrustumCulling,
	glfw.Key7: app.ToggleHorizonCulling,
	glfw.Key8: app.ToggleLevelByProjectedArea,
	glfw.Key9: app.ToggleShading,
	glfw.Key0: app.ToggleAccurateNormals,
}

// EventHandlers manages all event handling for the application.
type EventHandlers struct {
	application *app.App
	window      *glfw.Window

	// J/K/H/L allow panning across through keypresses. They also do so
	// continuously if held.
	panKeyHeld                   bool
	panDirectionX, panDirectionY float64
	lastPanTime                  time.Time

	// Drag state (per-gesture), captured on mouse press.
	isDragging           bool
	lastDragX, lastDragY float64
}

// NewEventHandlers creates a new event handlers manager.
func NewEventHandlers(application *app.App, window *glfw.Window) *EventHandlers {
	eh := &EventHandlers{
		application: application,
		window:      window,
		lastPanTime: time.Now(),
	}
	eh.SetupCallbacks(window)
	return eh
}

// SetupCallbacks configures all GLFW event callbacks.
func (eh *EventHandlers) SetupCallbacks(window *glfw.Window) {
	window.SetKeyCallback(func(wnd *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleKey(key, action, mods) // for various actions
	})
	window.SetMouseButtonCallback(func(wnd *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleMouseButton(button, action) // for panning
	})
	window.SetCursorPosCallback(func(wnd *glfw.Window, xpos, ypos float64) {
		eh.updatePanning(xpos, ypos)
	})
	window.SetScrollCallback(func(wnd *glfw.Window, _, zoomDelta float64) {
		eh.application.Zoom(zoomDelta) // for zooming
	})
	window.SetFramebufferSizeCallback(func(wnd *glfw.Window, newW, newH int) {
		eh.application.View.SetViewport(newW, newH) // for window resize
	})
}

// handleKey handles keyboard input events.
func (eh *EventHandlers) handleKey(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) {
	if t, ok := toggleKeys[key]; ok {
		if action == glfw.Press {
			eh.report(eh.application.Toggle(t))
		}
		return
	}

	switch key {
	case glfw.KeyJ:
		eh.handlePanKeys(action, 0 /*dx*/, -1 /*dy*/) // pan south
	case glfw.KeyK:
		eh.handlePanKeys(action, 0 /*dx*/, 1 /*dy*/) // pan north
	case glfw.KeyH:
		eh.handlePanKeys(action, -1 /*dx*/, 0 /*dy*/) // pan west
	case glfw.KeyL:
		eh.handlePanKeys(action, 1 /*dx*/, 0 /*dy*/) // pan east
	}

	if action != glfw.Press && action != glfw.Repeat {
		return
	}
	view := eh.application.View
	switch key {
	case glfw.KeyEqual:
		eh.application.Zoom(1) // zoom in
	case glfw.KeyMinus:
		eh.application.Zoom(-1) // zoom out
	case glfw.KeyT:
		if (mods & glfw.ModShift) != 0 {
			view.SetTilt(view.Tilt - tiltStep)
		} else {
			view.SetTilt(view.Tilt + tiltStep)
		}
	case glfw.KeyLeftBracket:
		eh.report(eh.application.AdjustCutoffLevel(-1))
	case glfw.KeyRightBracket:
		eh.report(eh.application.AdjustCutoffLevel(1))
	case glfw.KeyComma:
		eh.report(eh.application.ScaleLodFactor(1 / 1.25))
	case glfw.KeyPeriod:
		eh.report(eh.application.ScaleLodFactor(1.25))
	case glfw.KeyI:
		eh.application.Globe.InvalidateGeometry()
	case glfw.KeyR:
		w, h := eh.window.GetFramebufferSize()
		*view = *app.NewView(w, h)
	}
}

func (eh *EventHandlers) report(err error) {
	if err != nil {
		log.Printf("WARNING: %v", err)
	}
}

// handlePanKeys handles j/k/h/l key presses, and also releases for
// continuous panning.
func (eh *EventHandlers) handlePanKeys(action glfw.Action, dx, dy float64) {
	switch action {
	case glfw.Press:
		eh.panKeyHeld = true
		eh.panDirectionX = dx
		eh.panDirectionY = dy
		eh.application.Pan(dx, dy)
		eh.lastPanTime = time.Now()

	case glfw.Release:
		eh.panKeyHeld = false

	case glfw.Repeat:
		// Ignore repeat events - we handle continuous panning ourselves to
		// ensure consistent timing.
	}
}

// handleContinuousPanning handles continuous panning while pan keys are held.
func (eh *EventHandlers) handleContinuousPanning() {
	if !eh.panKeyHeld {
		return // nothing to do
	}

	now := time.Now()
	if now.Sub(eh.lastPanTime) < repeatInterval {
		return // not enough time has passed since the last pan
	}

	eh.application.Pan(eh.panDirectionX, eh.panDirectionY)
	eh.lastPanTime = now
}

// handleMouseButton handles mouse button events for panning.
func (eh *EventHandlers) handleMouseButton(button glfw.MouseButton, action glfw.Action) {
	if button != glfw.MouseButtonLeft {
		return // nothing to do
	}

	switch action {
	case glfw.Press:
		eh.isDragging = true
		eh.lastDragX, eh.lastDragY = eh.window.GetCursorPos()
	case glfw.Release:
		eh.isDragging = false
	}
}

// updatePanning drags the globe along with the cursor.
func (eh *EventHandlers) updatePanning(xpos, ypos float64) {
	if !eh.isDragging {
		return
	}

	scaleX, scaleY := eh.window.GetContentScale()
	dx := (xpos - eh.lastDragX) * float64(scaleX)
	dy := (ypos - eh.lastDragY) * float64(scaleY)
	eh.lastDragX, eh.lastDragY = xpos, ypos

	// Dragging right or down pulls the globe along, moving the view west
	// or north.
	eh.application.Pan(-dx*dragPanScale, dy*dragPanScale)
}
