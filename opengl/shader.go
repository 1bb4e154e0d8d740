package opengl

import (
	"fmt"
	"strings"

	"node-render/core"
	"node-render/math"
)

// DefaultVertexCode draws a fullscreen triangle from gl_VertexID, so no
// vertex buffer is needed. ove_mvpmat transforms the triangle and
// ove_texcoord carries the matching texture coordinate.
const DefaultVertexCode = `
#version 410 core
uniform mat4 ove_mvpmat;
out vec2 ove_texcoord;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position  = ove_mvpmat * vec4(pos[gl_VertexID], 0.0, 1.0);
    ove_texcoord = pos[gl_VertexID] * 0.5 + 0.5;
}
`

// DefaultFragmentCode copies ove_maintex.
const DefaultFragmentCode = `
#version 410 core
uniform sampler2D ove_maintex;
in  vec2 ove_texcoord;
out vec4 fragColor;
void main() {
    fragColor = texture(ove_maintex, ove_texcoord);
}
`

// Shader is a linked program and the locations of its active uniforms.
// It is immutable once created.
type Shader struct {
	f        Functions
	ctx      Context
	program  uint32
	uniforms map[string]int32
}

// NewShader compiles and links a program. Empty sources are replaced by
// DefaultVertexCode and DefaultFragmentCode.
func NewShader(f Functions, ctx Context, vertSrc, fragSrc string) (*Shader, error) {
	if vertSrc == "" {
		vertSrc = DefaultVertexCode
	}
	if fragSrc == "" {
		fragSrc = DefaultFragmentCode
	}

	vert, err := compileShader(f, vertSrc, VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex: %w", err)
	}
	defer f.DeleteShader(vert)
	frag, err := compileShader(f, fragSrc, FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("fragment: %w", err)
	}
	defer f.DeleteShader(frag)

	prog := f.CreateProgram()
	f.AttachShader(prog, vert)
	f.AttachShader(prog, frag)
	f.LinkProgram(prog)

	if f.GetProgrami(prog, LINK_STATUS) == 0 {
		log := f.GetProgramInfoLog(prog)
		f.DeleteProgram(prog)
		return nil, fmt.Errorf("%w: link: %v", ErrCompile, log)
	}

	s := &Shader{f: f, ctx: ctx, program: prog, uniforms: make(map[string]int32)}
	s.introspect()
	return s, nil
}

// CreateDefault builds the identity copy program used for resizing blits.
func CreateDefault(f Functions, ctx Context) (*Shader, error) {
	return NewShader(f, ctx, DefaultVertexCode, DefaultFragmentCode)
}

func compileShader(f Functions, src string, shaderType Enum) (uint32, error) {
	shader := f.CreateShader(shaderType)
	f.ShaderSource(shader, src)
	f.CompileShader(shader)

	if f.GetShaderi(shader, COMPILE_STATUS) == 0 {
		log := f.GetShaderInfoLog(shader)
		f.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %v", ErrCompile, log)
	}
	return shader, nil
}

// introspect records the location of every active uniform. Arrays are
// reported by the driver as "name[0]" and are stored under both names.
func (s *Shader) introspect() {
	n := s.f.GetProgrami(s.program, ACTIVE_UNIFORMS)
	for i := 0; i < n; i++ {
		name, _, _ := s.f.GetActiveUniform(s.program, i)
		loc := s.f.GetUniformLocation(s.program, name)
		if loc < 0 {
			continue
		}
		s.uniforms[name] = loc
		if base, ok := strings.CutSuffix(name, "[0]"); ok {
			s.uniforms[base] = loc
		}
	}
}

func (s *Shader) Program() uint32  { return s.program }
func (s *Shader) Context() Context { return s.ctx }

// Bind makes this the active program.
func (s *Shader) Bind() {
	s.f.UseProgram(s.program)
}

// Release unbinds the active program.
func (s *Shader) Release() {
	s.f.UseProgram(0)
}

// UniformLocation returns the location of an active uniform, or -1 when the
// program does not use it.
func (s *Shader) UniformLocation(name string) int32 {
	if loc, ok := s.uniforms[name]; ok {
		return loc
	}
	return -1
}

// The setters below write to the bound program. A negative location is
// ignored, matching the driver.

func (s *Shader) SetInt(loc int32, v int) {
	if loc >= 0 {
		s.f.Uniform1i(loc, v)
	}
}

func (s *Shader) SetFloat(loc int32, v float32) {
	if loc >= 0 {
		s.f.Uniform1f(loc, v)
	}
}

func (s *Shader) SetBool(loc int32, v bool) {
	i := 0
	if v {
		i = 1
	}
	s.SetInt(loc, i)
}

func (s *Shader) SetVec2(loc int32, v math.Vec2) {
	if loc >= 0 {
		s.f.Uniform2f(loc, v.X, v.Y)
	}
}

func (s *Shader) SetVec3(loc int32, v math.Vec3) {
	if loc >= 0 {
		s.f.Uniform3f(loc, v.X, v.Y, v.Z)
	}
}

func (s *Shader) SetVec4(loc int32, v math.Vec4) {
	if loc >= 0 {
		s.f.Uniform4f(loc, v.X, v.Y, v.Z, v.W)
	}
}

func (s *Shader) SetColor(loc int32, c core.Color) {
	s.SetVec4(loc, math.NewVec4(c.R, c.G, c.B, c.A))
}

func (s *Shader) SetVec2Array(loc int32, vs []math.Vec2) {
	if loc >= 0 && len(vs) > 0 {
		s.f.Uniform2fv(loc, math.FlattenVec2(vs))
	}
}

func (s *Shader) SetVec3Array(loc int32, vs []math.Vec3) {
	if loc >= 0 && len(vs) > 0 {
		s.f.Uniform3fv(loc, math.FlattenVec3(vs))
	}
}

func (s *Shader) SetVec4Array(loc int32, vs []math.Vec4) {
	if loc >= 0 && len(vs) > 0 {
		s.f.Uniform4fv(loc, math.FlattenVec4(vs))
	}
}

func (s *Shader) SetMatrix(loc int32, m math.Mat4) {
	if loc >= 0 {
		floats := m.Floats()
		s.f.UniformMatrix4fv(loc, floats[:])
	}
}

// SetFloatByName and friends look the uniform up first and skip it when
// the program does not declare it.

func (s *Shader) SetIntByName(name string, v int) {
	s.SetInt(s.UniformLocation(name), v)
}

func (s *Shader) SetFloatByName(name string, v float32) {
	s.SetFloat(s.UniformLocation(name), v)
}

func (s *Shader) SetVec2ByName(name string, v math.Vec2) {
	s.SetVec2(s.UniformLocation(name), v)
}

func (s *Shader) destroy() {
	if s.program != 0 {
		s.f.DeleteProgram(s.program)
		s.program = 0
	}
}

// Destroy deletes the program. Shaders owned by a ShaderCache are destroyed
// by ShaderCache.Clear instead.
func (s *Shader) Destroy() {
	s.destroy()
}
