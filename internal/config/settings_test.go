package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/irfansharif/globe/internal/chunk"
	"github.com/irfansharif/globe/internal/render"
)

func TestDefault(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	require.Equal(t, WGS84, s.Radii)
	require.Equal(t, 10.0, s.LodScaleFactor)
	require.Equal(t, 1<<14, s.PoolCapacity)
	require.True(t, s.Debug.PerformFrustumCulling)
	require.True(t, s.Debug.PerformHorizonCulling)
	require.Equal(t, render.DefaultCutoffLevel, s.Debug.ModelSpaceRenderingCutoffLevel)

	require.Equal(t, chunk.DefaultOptions(), s.ChunkOptions())
	require.Equal(t, 6356752.314245, s.Ellipsoid().MinimumRadius())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "globe.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"radii": [1000, 1000, 900],
		"lodScaleFactor": 4,
		"poolCapacity": 256,
		"debug": {
			"showChunkBounds": true,
			"performHorizonCulling": false,
			"levelByProjectedAreaElseDistance": false,
			"modelSpaceRenderingCutoffLevel": 6
		}
	}`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, s.Validate())
	require.Equal(t, [3]float64{1000, 1000, 900}, s.Radii)
	require.Equal(t, 4.0, s.LodScaleFactor)
	require.Equal(t, 256, s.PoolCapacity)

	// Absent fields keep their defaults.
	require.True(t, s.PerformShading)
	require.True(t, s.Debug.PerformFrustumCulling)
	require.False(t, s.Debug.PerformHorizonCulling)

	opts := s.RenderOptions()
	require.Equal(t, 6, opts.CutoffLevel)
	require.True(t, opts.ShowChunkBounds)
	require.Equal(t, chunk.LevelByDistance, opts.DisplayedEvaluator)
	require.Equal(t, render.DefaultGridSegments, opts.GridSegments)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"poolCapacity": "lots"}`), 0o644))
	_, err = Load(path)
	require.ErrorContains(t, err, "decoding settings")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvPoolCapacity, "64")
	t.Setenv(EnvStrictPool, "true")
	t.Setenv(EnvLodScale, "not-a-number")

	s := Default()
	s.ApplyEnv()
	require.Equal(t, 64, s.PoolCapacity)
	require.True(t, s.StrictPool)
	require.Equal(t, 10.0, s.LodScaleFactor)
}

func TestValidate(t *testing.T) {
	s := Default()
	s.Radii[2] = 0
	s.LodScaleFactor = -1
	s.PoolCapacity = 2
	s.Debug.ModelSpaceRenderingCutoffLevel = chunk.MaxSplitDepth + 1

	err := s.Validate()
	require.Error(t, err)
	for _, field := range []string{"radii[2]", "lodScaleFactor", "poolCapacity", "modelSpaceRenderingCutoffLevel"} {
		require.ErrorContains(t, err, field)
	}
}
