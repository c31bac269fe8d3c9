package render

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Vertex stage of the global path. Evaluates the ellipsoid at the vertex's
// geodetic position in model space.
const globalVertexShaderSource = `
#version 410 core
layout (location = 0) in vec2 in_uv;
layout (location = 1) in float in_skirt;

uniform mat4 modelViewProjectionTransform;
uniform mat4 modelViewTransform;
uniform vec3 radiiSquared;
uniform vec2 minLatLon;
uniform vec2 lonLatScalingFactor;
uniform float skirtLength;
uniform bool useAccurateNormals;

out vec2 fs_uv;
out float fs_skirt;
out vec3 fs_normalCameraSpace;
out vec3 fs_normalModelSpace;
out vec3 fs_positionCameraSpace;

vec3 geodeticSurfaceNormal(float lat, float lon) {
    float cosLat = cos(lat);
    return vec3(cosLat * cos(lon), cosLat * sin(lon), sin(lat));
}

void main() {
    float lat = minLatLon.x + lonLatScalingFactor.y * in_uv.y;
    float lon = minLatLon.y + lonLatScalingFactor.x * in_uv.x;

    vec3 normal = geodeticSurfaceNormal(lat, lon);
    vec3 k = radiiSquared * normal;
    vec3 surface = k / sqrt(dot(k, normal));
    vec3 position = surface - normal * skirtLength * in_skirt;
    if (!useAccurateNormals) {
        normal = normalize(surface);
    }

    gl_Position = modelViewProjectionTransform * vec4(position, 1.0);
    fs_uv = in_uv;
    fs_skirt = in_skirt;
    fs_normalModelSpace = normal;
    fs_normalCameraSpace = normalize(mat3(modelViewTransform) * normal);
    fs_positionCameraSpace = (modelViewTransform * vec4(position, 1.0)).xyz;
}
` + "\x00"

// Vertex stage of the local path. Bilinearly interpolates the camera-space
// patch corners.
const localVertexShaderSource = `
#version 410 core
layout (location = 0) in vec2 in_uv;
layout (location = 1) in float in_skirt;

uniform mat4 projectionTransform;
uniform vec3 p00;
uniform vec3 p10;
uniform vec3 p01;
uniform vec3 p11;
uniform vec3 patchNormalCameraSpace;
uniform vec3 patchNormalModelSpace;
uniform float skirtLength;

out vec2 fs_uv;
out float fs_skirt;
out vec3 fs_normalCameraSpace;
out vec3 fs_normalModelSpace;
out vec3 fs_positionCameraSpace;

void main() {
    vec3 position = mix(mix(p00, p10, in_uv.x), mix(p01, p11, in_uv.x), in_uv.y);
    position -= patchNormalCameraSpace * skirtLength * in_skirt;

    gl_Position = projectionTransform * vec4(position, 1.0);
    fs_uv = in_uv;
    fs_skirt = in_skirt;
    fs_normalModelSpace = patchNormalModelSpace;
    fs_normalCameraSpace = patchNormalCameraSpace;
    fs_positionCameraSpace = position;
}
` + "\x00"

// Fragment stage shared by both chunk programs.
const chunkFragmentShaderSource = `
#version 410 core
in vec2 fs_uv;
in float fs_skirt;
in vec3 fs_normalCameraSpace;
in vec3 fs_normalModelSpace;
in vec3 fs_positionCameraSpace;

uniform vec3 lightDirectionCameraSpace;
uniform float orenNayarRoughness;
uniform bool performShading;
uniform bool eclipseShadowsEnabled;
uniform bool eclipseHardShadows;
uniform int chunkLevel;
uniform vec4 chunkEdgeColor;
uniform bool showChunkEdges;
uniform bool showHeightResolution;
uniform bool showHeightIntensities;
uniform int xSegments;

out vec4 FragColor;

float orenNayar(vec3 n, vec3 l, vec3 v, float roughness) {
    float r2 = roughness * roughness;
    float a = 1.0 - 0.5 * r2 / (r2 + 0.33);
    float b = 0.45 * r2 / (r2 + 0.09);
    float nl = dot(n, l);
    float nv = dot(n, v);
    float ga = dot(v - n * nv, l - n * nl);
    float s = sqrt(max(0.0, (1.0 - nv * nv) * (1.0 - nl * nl)));
    return max(0.0, nl) * (a + b * max(0.0, ga) * s / max(nl, nv));
}

void main() {
    vec3 n = normalize(fs_normalCameraSpace);
    float polar = smoothstep(0.85, 0.95, abs(fs_normalModelSpace.z));
    vec3 color = mix(vec3(0.22, 0.36, 0.26), vec3(0.92), polar);

    if (showHeightIntensities) {
        color = vec3(0.5 + 0.5 * fs_normalModelSpace.z);
    }
    if (showHeightResolution) {
        vec2 cell = fract(fs_uv * float(xSegments));
        float gridLine = step(0.95, max(cell.x, cell.y));
        color = mix(color, vec3(1.0, 0.0, 0.0), 0.5 * gridLine);
    }

    if (performShading) {
        vec3 v = normalize(-fs_positionCameraSpace);
        float diffuse = orenNayar(n, normalize(lightDirectionCameraSpace), v, orenNayarRoughness);
        if (eclipseShadowsEnabled && eclipseHardShadows) {
            diffuse = step(0.05, diffuse) * diffuse;
        }
        color *= 0.1 + 0.9 * diffuse;
    }

    if (showChunkEdges) {
        float border = 1.0 / float(max(xSegments, 1));
        vec2 edge = min(fs_uv, 1.0 - fs_uv);
        if (min(edge.x, edge.y) < 0.1 * border || fs_skirt > 0.5) {
            color = chunkEdgeColor.rgb;
        }
    }

    FragColor = vec4(color, 1.0);
}
` + "\x00"

// Overlay geometry arrives in normalized device coordinates.
const debugVertexShaderSource = `
#version 410 core
layout (location = 0) in vec3 in_position;
layout (location = 1) in vec4 in_color;

out vec4 fs_color;

void main() {
    gl_Position = vec4(in_position, 1.0);
    fs_color = in_color;
}
` + "\x00"

const debugFragmentShaderSource = `
#version 410 core
in vec4 fs_color;
out vec4 FragColor;

void main() {
    FragColor = fs_color;
}
` + "\x00"

// shaderProgram is a linked program and its cached uniform locations.
type shaderProgram struct {
	name      string
	id        uint32
	locations map[string]int32
}

// newShaderProgram compiles and links a program from vertex and fragment
// sources.
func newShaderProgram(name, vertexSource, fragmentSource string) (*shaderProgram, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("%s vertex shader: %w", name, err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("%s fragment shader: %w", name, err)
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	// Check linking status.
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("%s program linking failed: %s", name, logText)
	}

	return &shaderProgram{name: name, id: program, locations: make(map[string]int32)}, nil
}

// location returns the cached location of the named uniform. Uniforms the
// compiler optimized away have location -1, which GL ignores.
func (sp *shaderProgram) location(name string) int32 {
	if loc, ok := sp.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(sp.id, gl.Str(name+"\x00"))
	if loc < 0 {
		renderLogger.Printf("%s program has no active uniform %q", sp.name, name)
	}
	sp.locations[name] = loc
	return loc
}

// compileShader compiles a single shader from source.
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	// Check compilation status.
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compilation failed: %s", logText)
	}
	return shader, nil
}
