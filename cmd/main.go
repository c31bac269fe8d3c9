package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/irfansharif/globe/internal/app"
	"github.com/irfansharif/globe/internal/chunk"
	"github.com/irfansharif/globe/internal/config"
	"github.com/irfansharif/globe/internal/globe"
	"github.com/irfansharif/globe/internal/render"
	"github.com/irfansharif/globe/internal/tile"
)

const logFlags = log.Ltime | log.Lshortfile

var runtimeLogger *log.Logger = log.New(io.Discard, "", 0)

var (
	configPath = flag.String("config", "", "path to a JSON settings file")
	amplitude  = flag.Float64("amplitude", 4000, "peak terrain displacement in meters, 0 for a bare ellipsoid")
	dataLevel  = flag.Int("data-level", chunk.MaxSplitDepth, "deepest level with terrain data")
)

func init() {
	// OpenGL contexts are tied to specific OS threads - let's pin to just one.
	runtime.LockOSThread()
	log.SetFlags(logFlags)

	if os.Getenv("GLOBE_DEBUG_RUNTIME") == "1" {
		runtimeLogger = log.New(os.Stdout, "[runtime] ", log.Ltime|log.Lmsgprefix)
	}
}

func makeTitle(fps float64, avgFrameTime float64, view *app.View, updateStats chunk.UpdateStats, renderStats render.Stats) string {
	return fmt.Sprintf("Globe (%.1f FPS, %.2fms/frame, %.0fkm altitude, %d chunks (%d global, %d local), max level %d, %d/%d culled by frustum/horizon, %d draw calls/frame)",
		fps,
		avgFrameTime,
		view.Altitude/1000,
		updateStats.Leaves,
		renderStats.GlobalChunks,
		renderStats.LocalChunks,
		updateStats.MaxLevel,
		updateStats.CulledByFrustum,
		updateStats.CulledByHorizon,
		renderStats.DrawCalls,
	)
}

func loadSettings() config.Settings {
	s := config.Default()
	if *configPath != "" {
		var err error
		if s, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
	}
	s.ApplyEnv()
	if err := s.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}
	return s
}

// serveMetrics exposes the process's metrics if GLOBE_METRICS_ADDR is set.
func serveMetrics() {
	addr := os.Getenv("GLOBE_METRICS_ADDR")
	if addr == "" {
		return
	}

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, &admin); err != nil {
			log.Printf("WARNING: metrics server stopped: %v", err)
		}
	}()
	log.Printf("serving metrics on %s/metrics", addr)
}

func main() {
	flag.Parse()
	settings := loadSettings()
	serveMetrics()

	if err := glfw.Init(); err != nil {
		log.Fatalf("Failed to initialize GLFW: %v", err)
	}
	defer glfw.Terminate()

	// Configure GLFW window hints - use OpenGL 4.1.
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.DepthBits, 24)

	window, err := glfw.CreateWindow(
		1280, // width
		960,  // height
		"Globe",
		nil, nil,
	)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		log.Fatalf("Failed to initialize OpenGL: %v", err)
	}
	runtimeLogger.Printf("OpenGL %s (%s)", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))

	backend, err := render.NewGLBackend(render.NewSkirtedGrid(settings.GridSegments))
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer backend.Cleanup()

	var provider tile.Provider
	if *amplitude > 0 {
		provider = tile.NewProcedural(*amplitude, *dataLevel)
	}
	g, err := globe.New(settings, provider, backend)
	if err != nil {
		log.Fatalf("Failed to create globe: %v", err)
	}

	cw, ch := window.GetFramebufferSize()
	application := app.NewApp(g, app.NewView(cw, ch))

	// Initialize event handlers.
	eventHandlers := NewEventHandlers(application, window)

	frameCount, frameTimeSum := 0, 0.0
	lastFPSUpdate := time.Now()

	// Main loop.
	for !window.ShouldClose() {
		frameStart := time.Now()

		eventHandlers.handleContinuousPanning()

		w, h := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		frame, renderStats := application.Frame()
		window.SwapBuffers()
		glfw.PollEvents()

		frameTime := time.Since(frameStart).Seconds() * 1000.0 // ms
		frameTimeSum += frameTime

		frameCount++
		now := time.Now()
		if now.Sub(lastFPSUpdate) >= time.Second {
			fps := float64(frameCount) / now.Sub(lastFPSUpdate).Seconds()
			avgFrameTime := frameTimeSum / float64(frameCount)
			frameCount, frameTimeSum = 0, 0.0
			lastFPSUpdate = now

			window.SetTitle(
				makeTitle(fps, avgFrameTime, application.View, frame.Stats, renderStats),
			)

			pool := g.Tree().Pool()
			runtimeLogger.Println("=== Performance statistics ===")
			runtimeLogger.Printf("Frame rate:     %.1f FPS (%.2f ms/frame, %d draw calls/frame)", fps, avgFrameTime, renderStats.DrawCalls)
			runtimeLogger.Printf("Chunks:         %d leaves (%d global, %d local), max level %d, %d visited", frame.Stats.Leaves, renderStats.GlobalChunks, renderStats.LocalChunks, frame.Stats.MaxLevel, frame.Stats.Visited)
			runtimeLogger.Printf("Culling:        %d by frustum, %d by horizon", frame.Stats.CulledByFrustum, frame.Stats.CulledByHorizon)
			runtimeLogger.Printf("Pool:           %d/%d chunks in use, %d splits declined", pool.Len(), pool.Cap(), frame.Stats.SplitsDeclined)
			runtimeLogger.Printf("Render time:    %.2f µs (last frame)", renderStats.LastRenderTimeUs)
			runtimeLogger.Println("==============================")
		}
	}
}
