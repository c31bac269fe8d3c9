package render

// Program names one of the shader programs a Backend provides.
type Program int

const (
	GlobalProgram Program = iota
	LocalProgram
	// DebugProgram draws pre-transformed, coloured overlay geometry.
	DebugProgram
)

func (p Program) String() string {
	switch p {
	case GlobalProgram:
		return "global"
	case LocalProgram:
		return "local"
	case DebugProgram:
		return "debug"
	default:
		return "unknown"
	}
}

// Uniform names, as declared in the shaders.
const (
	UniformModelViewTransform        = "modelViewTransform"
	UniformLightDirectionCameraSpace = "lightDirectionCameraSpace"
	UniformOrenNayarRoughness        = "orenNayarRoughness"
	UniformPerformShading            = "performShading"
	UniformUseAccurateNormals        = "useAccurateNormals"
	UniformEclipseShadowsEnabled     = "eclipseShadowsEnabled"
	UniformEclipseHardShadows        = "eclipseHardShadows"
	UniformSkirtLength               = "skirtLength"
	UniformChunkLevel                = "chunkLevel"
	UniformChunkEdgeColor            = "chunkEdgeColor"
	UniformShowChunkEdges            = "showChunkEdges"
	UniformShowHeightResolution      = "showHeightResolution"
	UniformShowHeightIntensities     = "showHeightIntensities"
	UniformXSegments                 = "xSegments"

	UniformModelViewProjectionTransform = "modelViewProjectionTransform"
	UniformMinLatLon                    = "minLatLon"
	UniformLonLatScalingFactor          = "lonLatScalingFactor"
	UniformRadiiSquared                 = "radiiSquared"

	UniformProjectionTransform    = "projectionTransform"
	UniformP00                    = "p00"
	UniformP10                    = "p10"
	UniformP01                    = "p01"
	UniformP11                    = "p11"
	UniformPatchNormalCameraSpace = "patchNormalCameraSpace"
	UniformPatchNormalModelSpace  = "patchNormalModelSpace"
)

var commonUniforms = []string{
	UniformModelViewTransform,
	UniformLightDirectionCameraSpace,
	UniformOrenNayarRoughness,
	UniformPerformShading,
	UniformUseAccurateNormals,
	UniformEclipseShadowsEnabled,
	UniformEclipseHardShadows,
	UniformSkirtLength,
	UniformChunkLevel,
	UniformChunkEdgeColor,
	UniformShowChunkEdges,
	UniformShowHeightResolution,
	UniformShowHeightIntensities,
	UniformXSegments,
}

// ProgramUniforms lists the uniforms each chunk program expects.
var ProgramUniforms = map[Program][]string{
	GlobalProgram: append([]string{
		UniformModelViewProjectionTransform,
		UniformMinLatLon,
		UniformLonLatScalingFactor,
		UniformRadiiSquared,
	}, commonUniforms...),
	LocalProgram: append([]string{
		UniformProjectionTransform,
		UniformP00,
		UniformP10,
		UniformP01,
		UniformP11,
		UniformPatchNormalCameraSpace,
		UniformPatchNormalModelSpace,
	}, commonUniforms...),
}

// Backend is the GPU side of the renderer. Uniform values are one of bool,
// int32, float32, mgl32.Vec2, mgl32.Vec3, mgl32.Vec4 or mgl32.Mat4, and apply
// to the program last passed to UseProgram.
type Backend interface {
	UseProgram(Program)
	SetUniform(name string, value any)
	// DrawGrid draws the shared skirted grid with the current program.
	DrawGrid()
	// DrawLines and DrawTriangles draw overlay geometry given as
	// interleaved normalized device coordinates (x, y, z) and colour
	// (r, g, b, a).
	DrawLines(vertices []float32)
	DrawTriangles(vertices []float32)
}
