package render

import (
	"fmt"
	"log"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// initialOverlayBytes is the starting size of the overlay vertex buffer. It
// doubles whenever a frame's overlay does not fit.
const initialOverlayBytes = 64 * 1024

// GLBackend implements Backend with OpenGL 4.1. It must be created and used
// on the thread owning the GL context.
type GLBackend struct {
	programs [3]*shaderProgram
	current  *shaderProgram

	gridVAO, gridVBO, gridEBO uint32
	gridIndexCount            int32

	overlayVAO, overlayVBO uint32
	overlayBytes           int

	// warned records uniforms with unsupported value types, so each is
	// reported once.
	warned map[string]bool
}

var _ Backend = (*GLBackend)(nil)

// NewGLBackend compiles the chunk and overlay programs and uploads the grid.
func NewGLBackend(grid Grid) (*GLBackend, error) {
	b := &GLBackend{warned: make(map[string]bool)}

	sources := [3][2]string{
		GlobalProgram: {globalVertexShaderSource, chunkFragmentShaderSource},
		LocalProgram:  {localVertexShaderSource, chunkFragmentShaderSource},
		DebugProgram:  {debugVertexShaderSource, debugFragmentShaderSource},
	}
	for p, src := range sources {
		sp, err := newShaderProgram(Program(p).String(), src[0], src[1])
		if err != nil {
			b.Cleanup()
			return nil, err
		}
		b.programs[p] = sp
	}

	b.uploadGrid(grid)
	b.createOverlayBuffer()

	// Skirts are seen from both sides, so faces are never culled.
	gl.Enable(gl.DEPTH_TEST)
	renderLogger.Printf("compiled %d programs, grid of %d vertices (%d indices)",
		len(b.programs), grid.VertexCount(), len(grid.Indices))
	return b, nil
}

func (b *GLBackend) uploadGrid(grid Grid) {
	gl.GenVertexArrays(1, &b.gridVAO)
	gl.GenBuffers(1, &b.gridVBO)
	gl.GenBuffers(1, &b.gridEBO)

	gl.BindVertexArray(b.gridVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.gridVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(grid.Vertices)*4, gl.Ptr(grid.Vertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.gridEBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(grid.Indices)*4, gl.Ptr(grid.Indices), gl.STATIC_DRAW)

	// Vertex format: [u, v, skirt] = 3 floats = 12 bytes.
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, VertexStride*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 1, gl.FLOAT, false, VertexStride*4, gl.PtrOffset(8))

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	b.gridIndexCount = int32(len(grid.Indices))
}

func (b *GLBackend) createOverlayBuffer() {
	gl.GenVertexArrays(1, &b.overlayVAO)
	b.allocateOverlay(initialOverlayBytes)
}

// allocateOverlay replaces the overlay buffer with one of the given size
// and rebinds the vertex format to it.
func (b *GLBackend) allocateOverlay(size int) {
	if b.overlayVBO != 0 {
		gl.DeleteBuffers(1, &b.overlayVBO)
	}
	gl.GenBuffers(1, &b.overlayVBO)

	gl.BindVertexArray(b.overlayVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.overlayVBO)
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)

	// Vertex format: [x, y, z, r, g, b, a] = 7 floats = 28 bytes.
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, overlayStride*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, overlayStride*4, gl.PtrOffset(12))

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	b.overlayBytes = size
}

func (b *GLBackend) UseProgram(p Program) {
	b.current = b.programs[p]
	gl.UseProgram(b.current.id)
}

func (b *GLBackend) SetUniform(name string, value any) {
	if b.current == nil {
		log.Fatalf("setting uniform %q with no program in use", name)
	}
	loc := b.current.location(name)
	if loc < 0 {
		return
	}

	switch v := value.(type) {
	case bool:
		var i int32
		if v {
			i = 1
		}
		gl.Uniform1i(loc, i)
	case int32:
		gl.Uniform1i(loc, v)
	case int:
		gl.Uniform1i(loc, int32(v))
	case float32:
		gl.Uniform1f(loc, v)
	case mgl32.Vec2:
		gl.Uniform2f(loc, v[0], v[1])
	case mgl32.Vec3:
		gl.Uniform3f(loc, v[0], v[1], v[2])
	case mgl32.Vec4:
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	case mgl32.Mat4:
		gl.UniformMatrix4fv(loc, 1, false, &v[0])
	default:
		if !b.warned[name] {
			b.warned[name] = true
			log.Printf("WARNING: uniform %q: unsupported value type %T", name, value)
		}
	}
}

func (b *GLBackend) DrawGrid() {
	gl.BindVertexArray(b.gridVAO)
	gl.DrawElements(gl.TRIANGLES, b.gridIndexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

func (b *GLBackend) DrawLines(vertices []float32) { b.drawOverlay(gl.LINES, vertices) }

func (b *GLBackend) DrawTriangles(vertices []float32) {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	b.drawOverlay(gl.TRIANGLES, vertices)
	gl.Disable(gl.BLEND)
}

func (b *GLBackend) drawOverlay(mode uint32, vertices []float32) {
	if len(vertices) == 0 {
		return
	}
	if len(vertices)%overlayStride != 0 {
		log.Printf("WARNING: overlay of %d floats is not a whole number of vertices, skipping", len(vertices))
		return
	}

	size := len(vertices) * 4
	if size > b.overlayBytes {
		grown := b.overlayBytes
		for grown < size {
			grown *= 2
		}
		renderLogger.Printf("growing overlay buffer: %d -> %d bytes", b.overlayBytes, grown)
		b.allocateOverlay(grown)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, b.overlayVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(vertices))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(b.overlayVAO)
	gl.DrawArrays(mode, 0, int32(len(vertices)/overlayStride))
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

// Cleanup releases all GL objects.
func (b *GLBackend) Cleanup() {
	for i, sp := range b.programs {
		if sp != nil {
			gl.DeleteProgram(sp.id)
			b.programs[i] = nil
		}
	}
	for _, vao := range []*uint32{&b.gridVAO, &b.overlayVAO} {
		if *vao != 0 {
			gl.DeleteVertexArrays(1, vao)
			*vao = 0
		}
	}
	for _, buf := range []*uint32{&b.gridVBO, &b.gridEBO, &b.overlayVBO} {
		if *buf != 0 {
			gl.DeleteBuffers(1, buf)
			*buf = 0
		}
	}
}

func (b *GLBackend) String() string {
	return fmt.Sprintf("gl backend (%d indices per chunk, %d byte overlay buffer)", b.gridIndexCount, b.overlayBytes)
}
