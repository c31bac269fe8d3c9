// Package config holds the globe's user-facing settings: their defaults, a
// JSON file format, environment overrides and validation.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/segmentio/encoding/json"

	"github.com/irfansharif/globe/internal/chunk"
	"github.com/irfansharif/globe/internal/geom"
	"github.com/irfansharif/globe/internal/render"
)

// WGS84 semi-axes, in meters.
var WGS84 = [3]float64{6378137.0, 6378137.0, 6356752.314245}

// Environment overrides.
const (
	EnvPoolCapacity = "GLOBE_POOL_CAPACITY"
	EnvStrictPool   = "GLOBE_STRICT_POOL"
	EnvLodScale     = "GLOBE_LOD_SCALE"
)

// Settings configures a globe.
type Settings struct {
	Radii           [3]float64 `json:"radii"`
	LodScaleFactor  float64    `json:"lodScaleFactor"`
	CameraMinHeight float64    `json:"cameraMinHeight"`

	OrenNayarRoughness    float64 `json:"orenNayarRoughness"`
	PerformShading        bool    `json:"performShading"`
	UseAccurateNormals    bool    `json:"useAccurateNormals"`
	EclipseShadowsEnabled bool    `json:"eclipseShadowsEnabled"`
	EclipseHardShadows    bool    `json:"eclipseHardShadows"`

	PoolCapacity int  `json:"poolCapacity"`
	StrictPool   bool `json:"strictPool"`
	GridSegments int  `json:"gridSegments"`

	Debug Debug `json:"debug"`
}

// Debug holds the debugging toggles.
type Debug struct {
	ShowChunkEdges        bool `json:"showChunkEdges"`
	ShowChunkBounds       bool `json:"showChunkBounds"`
	ShowChunkAABB         bool `json:"showChunkAABB"`
	ShowHeightResolution  bool `json:"showHeightResolution"`
	ShowHeightIntensities bool `json:"showHeightIntensities"`

	PerformFrustumCulling bool `json:"performFrustumCulling"`
	PerformHorizonCulling bool `json:"performHorizonCulling"`

	LevelByProjectedAreaElseDistance bool `json:"levelByProjectedAreaElseDistance"`
	ModelSpaceRenderingCutoffLevel   int  `json:"modelSpaceRenderingCutoffLevel"`
}

// Default returns the settings a globe starts with.
func Default() Settings {
	return Settings{
		Radii:              WGS84,
		LodScaleFactor:     10,
		CameraMinHeight:    100,
		OrenNayarRoughness: 0,
		PerformShading:     true,
		UseAccurateNormals: true,
		PoolCapacity:       1 << 14,
		GridSegments:       render.DefaultGridSegments,
		Debug: Debug{
			PerformFrustumCulling:            true,
			PerformHorizonCulling:            true,
			LevelByProjectedAreaElseDistance: true,
			ModelSpaceRenderingCutoffLevel:   render.DefaultCutoffLevel,
		},
	}
}

// Load reads settings from the JSON file at path. Fields absent from the
// file keep their default values.
func Load(path string) (Settings, error) {
	s := Default()
	buf, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings: %w", err)
	}
	if err := json.Unmarshal(buf, &s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings %s: %w", path, err)
	}
	return s, nil
}

// ApplyEnv overrides settings from the environment. Malformed values are
// logged and ignored.
func (s *Settings) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvPoolCapacity); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("WARNING: ignoring %s=%q: %v", EnvPoolCapacity, v, err)
		} else {
			s.PoolCapacity = n
		}
	}
	if v, ok := os.LookupEnv(EnvStrictPool); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("WARNING: ignoring %s=%q: %v", EnvStrictPool, v, err)
		} else {
			s.StrictPool = b
		}
	}
	if v, ok := os.LookupEnv(EnvLodScale); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Printf("WARNING: ignoring %s=%q: %v", EnvLodScale, v, err)
		} else {
			s.LodScaleFactor = f
		}
	}
}

// Validate reports every invalid setting.
func (s Settings) Validate() error {
	var errs []error
	for i, r := range s.Radii {
		if !(r > 0) {
			errs = append(errs, fmt.Errorf("radii[%d] = %v: must be positive", i, r))
		}
	}
	if !(s.LodScaleFactor > 0) {
		errs = append(errs, fmt.Errorf("lodScaleFactor = %v: must be positive", s.LodScaleFactor))
	}
	if s.CameraMinHeight < 0 {
		errs = append(errs, fmt.Errorf("cameraMinHeight = %v: must not be negative", s.CameraMinHeight))
	}
	if s.OrenNayarRoughness < 0 || s.OrenNayarRoughness > 1 {
		errs = append(errs, fmt.Errorf("orenNayarRoughness = %v: must be within [0, 1]", s.OrenNayarRoughness))
	}
	// Room for the children of both roots.
	if minimum := 8; s.PoolCapacity < minimum {
		errs = append(errs, fmt.Errorf("poolCapacity = %d: must be at least %d", s.PoolCapacity, minimum))
	}
	if s.GridSegments < 1 {
		errs = append(errs, fmt.Errorf("gridSegments = %d: must be positive", s.GridSegments))
	}
	if l := s.Debug.ModelSpaceRenderingCutoffLevel; l < 0 || l > chunk.MaxSplitDepth {
		errs = append(errs, fmt.Errorf("debug.modelSpaceRenderingCutoffLevel = %d: must be within [0, %d]", l, chunk.MaxSplitDepth))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %w", errors.Join(errs...))
	}
	return nil
}

// Ellipsoid returns the reference ellipsoid.
func (s Settings) Ellipsoid() geom.Ellipsoid {
	return geom.MakeEllipsoid(s.Radii[0], s.Radii[1], s.Radii[2])
}

// ChunkOptions returns the tree update options.
func (s Settings) ChunkOptions() chunk.Options {
	return chunk.Options{
		LodScaleFactor:                   s.LodScaleFactor,
		PerformFrustumCulling:            s.Debug.PerformFrustumCulling,
		PerformHorizonCulling:            s.Debug.PerformHorizonCulling,
		LevelByProjectedAreaElseDistance: s.Debug.LevelByProjectedAreaElseDistance,
	}
}

// RenderOptions returns the renderer options.
func (s Settings) RenderOptions() render.Options {
	return render.Options{
		CutoffLevel:           s.Debug.ModelSpaceRenderingCutoffLevel,
		GridSegments:          s.GridSegments,
		OrenNayarRoughness:    float32(s.OrenNayarRoughness),
		PerformShading:        s.PerformShading,
		UseAccurateNormals:    s.UseAccurateNormals,
		EclipseShadowsEnabled: s.EclipseShadowsEnabled,
		EclipseHardShadows:    s.EclipseHardShadows,
		ShowChunkEdges:        s.Debug.ShowChunkEdges,
		ShowChunkBounds:       s.Debug.ShowChunkBounds,
		ShowChunkAABB:         s.Debug.ShowChunkAABB,
		ShowHeightResolution:  s.Debug.ShowHeightResolution,
		ShowHeightIntensities: s.Debug.ShowHeightIntensities,
		DisplayedEvaluator:    s.ChunkOptions().DisplayedEvaluator(),
	}
}
