// Package opengltest provides a software stand-in for the driver function
// table. It records every call, keeps texture memory on the CPU and
// introspects uniforms by scanning GLSL declarations, which is enough to
// exercise the render core without a GPU.
package opengltest

import (
	"fmt"
	"regexp"
	"strings"

	"node-render/opengl"
)

// Call is one recorded function-table invocation.
type Call struct {
	Name string
	Args []any
}

// Draw is a snapshot taken at every DrawArrays.
type Draw struct {
	Program uint32
	// Target is the texture attached to the bound frame buffer, 0 for the
	// default frame buffer.
	Target uint32
	// Units maps texture unit index to bound texture.
	Units    map[int]uint32
	Viewport [4]int
}

// TextureData is the CPU copy of one texture.
type TextureData struct {
	Width, Height  int
	InternalFormat opengl.Enum
	Format, Type   opengl.Enum
	Data           []byte
}

type program struct {
	shaders  []uint32
	linked   bool
	uniforms []string
	values   map[string]any
}

// Recorder implements opengl.Functions.
type Recorder struct {
	Calls []Call
	Draws []Draw
	// Overruns lists transfers whose client buffer was shorter than the
	// span the driver would touch under the current pixel store state.
	Overruns []string

	// FailCompile decides whether a shader source fails to compile. The
	// default fails sources containing "#error".
	FailCompile func(src string) bool

	nextID uint32

	textures     map[uint32]*TextureData
	framebuffers map[uint32]uint32
	shaders      map[uint32]string
	programs     map[uint32]*program
	vertexArrays map[uint32]bool

	activeUnit  int
	units       map[int]uint32
	boundFB     uint32
	current     uint32
	viewport    [4]int
	pixelStore  map[opengl.Enum]int
	blendFactor [2]opengl.Enum
}

var _ opengl.Functions = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{
		FailCompile: func(src string) bool {
			return strings.Contains(src, "#error")
		},
		textures:     make(map[uint32]*TextureData),
		framebuffers: make(map[uint32]uint32),
		shaders:      make(map[uint32]string),
		programs:     make(map[uint32]*program),
		vertexArrays: make(map[uint32]bool),
		units:        make(map[int]uint32),
		pixelStore: map[opengl.Enum]int{
			opengl.UNPACK_ALIGNMENT: 4,
			opengl.PACK_ALIGNMENT:   4,
		},
	}
}

func (r *Recorder) record(name string, args ...any) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
}

func (r *Recorder) id() uint32 {
	r.nextID++
	return r.nextID
}

// Count returns how many times the named function was called.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// CallsNamed returns the recorded calls of one function in order.
func (r *Recorder) CallsNamed(name string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls and draws but keeps driver state.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.Draws = nil
}

// Texture returns the CPU copy of texture t.
func (r *Recorder) Texture(t uint32) (*TextureData, bool) {
	td, ok := r.textures[t]
	return td, ok
}

// LiveTextures is the number of textures not yet deleted.
func (r *Recorder) LiveTextures() int { return len(r.textures) }

// LivePrograms is the number of programs not yet deleted.
func (r *Recorder) LivePrograms() int { return len(r.programs) }

// UniformValue returns the last value written to a uniform of program p.
func (r *Recorder) UniformValue(p uint32, name string) (any, bool) {
	prog, ok := r.programs[p]
	if !ok {
		return nil, false
	}
	v, ok := prog.values[name]
	return v, ok
}

// CurrentProgram is the program selected by the last UseProgram.
func (r *Recorder) CurrentProgram() uint32 { return r.current }

// BoundFramebuffer is the frame buffer bound by the last BindFramebuffer.
func (r *Recorder) BoundFramebuffer() uint32 { return r.boundFB }

// UnitBinding returns the texture bound to a texture unit.
func (r *Recorder) UnitBinding(unit int) uint32 { return r.units[unit] }

// PixelStore returns the current value of a pixel store parameter.
func (r *Recorder) PixelStore(pname opengl.Enum) int { return r.pixelStore[pname] }

// BlendFactors returns the factors of the last BlendFunc.
func (r *Recorder) BlendFactors() (opengl.Enum, opengl.Enum) {
	return r.blendFactor[0], r.blendFactor[1]
}

// Viewport returns the current viewport.
func (r *Recorder) CurrentViewport() [4]int { return r.viewport }

func (r *Recorder) GetString(name opengl.Enum) string {
	r.record("GetString", name)
	switch name {
	case opengl.VERSION:
		return "4.1 opengltest"
	case opengl.RENDERER:
		return "opengltest.Recorder"
	}
	return ""
}

func (r *Recorder) ActiveTexture(unit opengl.Enum) {
	r.record("ActiveTexture", unit)
	r.activeUnit = int(unit - opengl.TEXTURE0)
}

func (r *Recorder) BindTexture(target opengl.Enum, t uint32) {
	r.record("BindTexture", target, t)
	if t == 0 {
		delete(r.units, r.activeUnit)
		return
	}
	r.units[r.activeUnit] = t
}

func (r *Recorder) CreateTexture() uint32 {
	t := r.id()
	r.record("CreateTexture", t)
	r.textures[t] = &TextureData{}
	return t
}

func (r *Recorder) DeleteTexture(t uint32) {
	r.record("DeleteTexture", t)
	delete(r.textures, t)
}

func bytesPerPixel(format, ty opengl.Enum) int {
	channels := 4
	if format == opengl.RGB {
		channels = 3
	}
	switch ty {
	case opengl.UNSIGNED_SHORT, opengl.HALF_FLOAT:
		return channels * 2
	case opengl.FLOAT:
		return channels * 4
	}
	return channels
}

func (r *Recorder) bound() *TextureData {
	return r.textures[r.units[r.activeUnit]]
}

func (r *Recorder) TexImage2D(target opengl.Enum, level int, internalFormat opengl.Enum, width, height int, format, ty opengl.Enum, data []byte) {
	r.record("TexImage2D", target, level, internalFormat, width, height, format, ty, data != nil)
	td := r.bound()
	if td == nil {
		return
	}
	*td = TextureData{
		Width: width, Height: height,
		InternalFormat: internalFormat, Format: format, Type: ty,
		Data: make([]byte, width*height*bytesPerPixel(format, ty)),
	}
	if data != nil {
		r.copyIn(td, width, height, format, ty, data)
	}
}

func (r *Recorder) TexSubImage2D(target opengl.Enum, level int, x, y, width, height int, format, ty opengl.Enum, data []byte) {
	r.record("TexSubImage2D", target, level, x, y, width, height, format, ty)
	if td := r.bound(); td != nil && data != nil {
		r.copyIn(td, width, height, format, ty, data)
	}
}

// rowStride returns the byte distance between rows of a client buffer the
// way the driver computes it from the row length and alignment settings.
func (r *Recorder) rowStride(width, bpp int, rowLength, alignment opengl.Enum) int {
	pixels := width
	if n := r.pixelStore[rowLength]; n > 0 {
		pixels = n
	}
	stride := pixels * bpp
	if a := r.pixelStore[alignment]; a > 1 {
		stride = (stride + a - 1) / a * a
	}
	return stride
}

// checkSpan records an overrun when a buffer of size n cannot hold height
// rows of width*bpp bytes spaced stride apart.
func (r *Recorder) checkSpan(name string, width, height, bpp, stride, n int) bool {
	if height == 0 {
		return true
	}
	need := (height-1)*stride + width*bpp
	if n < need {
		r.Overruns = append(r.Overruns, fmt.Sprintf("%s: %dx%d touches %d bytes of a %d-byte buffer", name, width, height, need, n))
		return false
	}
	return true
}

func (r *Recorder) copyIn(td *TextureData, width, height int, format, ty opengl.Enum, data []byte) {
	bpp := bytesPerPixel(format, ty)
	stride := r.rowStride(width, bpp, opengl.UNPACK_ROW_LENGTH, opengl.UNPACK_ALIGNMENT)
	if !r.checkSpan("upload", width, height, bpp, stride, len(data)) {
		return
	}
	for row := 0; row < height; row++ {
		copy(td.Data[row*width*bpp:(row+1)*width*bpp], data[row*stride:])
	}
}

func (r *Recorder) TexParameteri(target, pname opengl.Enum, param int) {
	r.record("TexParameteri", target, pname, param)
}

func (r *Recorder) PixelStorei(pname opengl.Enum, param int) {
	r.record("PixelStorei", pname, param)
	r.pixelStore[pname] = param
}

// ReadPixels copies from the texture attached to the bound frame buffer.
func (r *Recorder) ReadPixels(x, y, width, height int, format, ty opengl.Enum, data []byte) {
	r.record("ReadPixels", x, y, width, height, format, ty)
	td := r.textures[r.framebuffers[r.boundFB]]
	if td == nil || td.Format != format || td.Type != ty {
		return
	}
	bpp := bytesPerPixel(format, ty)
	stride := r.rowStride(width, bpp, opengl.PACK_ROW_LENGTH, opengl.PACK_ALIGNMENT)
	if !r.checkSpan("read", width, height, bpp, stride, len(data)) {
		return
	}
	for row := 0; row < height && row < td.Height; row++ {
		src := td.Data[(row*td.Width+x)*bpp:]
		n := width * bpp
		if n > len(src) {
			n = len(src)
		}
		copy(data[row*stride:], src[:n])
	}
}

func (r *Recorder) CreateFramebuffer() uint32 {
	fb := r.id()
	r.record("CreateFramebuffer", fb)
	r.framebuffers[fb] = 0
	return fb
}

func (r *Recorder) DeleteFramebuffer(fb uint32) {
	r.record("DeleteFramebuffer", fb)
	delete(r.framebuffers, fb)
}

func (r *Recorder) BindFramebuffer(target opengl.Enum, fb uint32) {
	r.record("BindFramebuffer", target, fb)
	r.boundFB = fb
}

func (r *Recorder) FramebufferTexture2D(target, attachment, texTarget opengl.Enum, t uint32, level int) {
	r.record("FramebufferTexture2D", target, attachment, texTarget, t, level)
	if r.boundFB != 0 {
		r.framebuffers[r.boundFB] = t
	}
}

func (r *Recorder) CheckFramebufferStatus(target opengl.Enum) opengl.Enum {
	r.record("CheckFramebufferStatus", target)
	if r.framebuffers[r.boundFB] == 0 {
		return 0
	}
	return opengl.FRAMEBUFFER_COMPLETE
}

func (r *Recorder) ClearColor(cr, cg, cb, ca float32) {
	r.record("ClearColor", cr, cg, cb, ca)
}

func (r *Recorder) Clear(mask opengl.Enum) {
	r.record("Clear", mask)
}

func (r *Recorder) Viewport(x, y, width, height int) {
	r.record("Viewport", x, y, width, height)
	r.viewport = [4]int{x, y, width, height}
}

func (r *Recorder) BlendFunc(sfactor, dfactor opengl.Enum) {
	r.record("BlendFunc", sfactor, dfactor)
	r.blendFactor = [2]opengl.Enum{sfactor, dfactor}
}

func (r *Recorder) CreateShader(ty opengl.Enum) uint32 {
	s := r.id()
	r.record("CreateShader", ty, s)
	r.shaders[s] = ""
	return s
}

func (r *Recorder) ShaderSource(s uint32, src string) {
	r.record("ShaderSource", s)
	r.shaders[s] = src
}

func (r *Recorder) CompileShader(s uint32) {
	r.record("CompileShader", s)
}

func (r *Recorder) GetShaderi(s uint32, pname opengl.Enum) int {
	if pname == opengl.COMPILE_STATUS {
		if r.FailCompile != nil && r.FailCompile(r.shaders[s]) {
			return 0
		}
		return 1
	}
	return 0
}

func (r *Recorder) GetShaderInfoLog(s uint32) string {
	return fmt.Sprintf("0:1(1): error: shader %d rejected", s)
}

func (r *Recorder) DeleteShader(s uint32) {
	r.record("DeleteShader", s)
	delete(r.shaders, s)
}

func (r *Recorder) CreateProgram() uint32 {
	p := r.id()
	r.record("CreateProgram", p)
	r.programs[p] = &program{values: make(map[string]any)}
	return p
}

func (r *Recorder) AttachShader(p, s uint32) {
	r.record("AttachShader", p, s)
	if prog := r.programs[p]; prog != nil {
		prog.shaders = append(prog.shaders, s)
	}
}

var uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*(\[[^\]]*\])?\s*;`)

func (r *Recorder) LinkProgram(p uint32) {
	r.record("LinkProgram", p)
	prog := r.programs[p]
	if prog == nil {
		return
	}
	seen := make(map[string]bool)
	for _, s := range prog.shaders {
		for _, m := range uniformDecl.FindAllStringSubmatch(r.shaders[s], -1) {
			name := m[1]
			if m[2] != "" {
				name += "[0]"
			}
			if !seen[name] {
				seen[name] = true
				prog.uniforms = append(prog.uniforms, name)
			}
		}
	}
	prog.linked = true
}

func (r *Recorder) GetProgrami(p uint32, pname opengl.Enum) int {
	prog := r.programs[p]
	if prog == nil {
		return 0
	}
	switch pname {
	case opengl.LINK_STATUS:
		if prog.linked {
			return 1
		}
	case opengl.ACTIVE_UNIFORMS:
		return len(prog.uniforms)
	}
	return 0
}

func (r *Recorder) GetProgramInfoLog(p uint32) string {
	return fmt.Sprintf("program %d failed to link", p)
}

func (r *Recorder) DeleteProgram(p uint32) {
	r.record("DeleteProgram", p)
	delete(r.programs, p)
}

func (r *Recorder) UseProgram(p uint32) {
	r.record("UseProgram", p)
	r.current = p
}

func (r *Recorder) GetActiveUniform(p uint32, index int) (string, int, opengl.Enum) {
	prog := r.programs[p]
	if prog == nil || index >= len(prog.uniforms) {
		return "", 0, 0
	}
	return prog.uniforms[index], 1, 0
}

// Uniform locations are the declaration index offset by program*1000, so
// locations from different programs never collide.
func (r *Recorder) GetUniformLocation(p uint32, name string) int32 {
	prog := r.programs[p]
	if prog == nil {
		return -1
	}
	for i, u := range prog.uniforms {
		if u == name || u == name+"[0]" {
			return int32(p)*1000 + int32(i)
		}
	}
	return -1
}

func (r *Recorder) setUniform(fn string, loc int32, v any) {
	r.record(fn, loc, v)
	prog := r.programs[r.current]
	if prog == nil {
		return
	}
	idx := int(loc - int32(r.current)*1000)
	if idx < 0 || idx >= len(prog.uniforms) {
		return
	}
	name, _ := strings.CutSuffix(prog.uniforms[idx], "[0]")
	prog.values[name] = v
}

func (r *Recorder) Uniform1i(loc int32, v int)     { r.setUniform("Uniform1i", loc, v) }
func (r *Recorder) Uniform1f(loc int32, v float32) { r.setUniform("Uniform1f", loc, v) }
func (r *Recorder) Uniform2f(loc int32, v0, v1 float32) {
	r.setUniform("Uniform2f", loc, [2]float32{v0, v1})
}
func (r *Recorder) Uniform3f(loc int32, v0, v1, v2 float32) {
	r.setUniform("Uniform3f", loc, [3]float32{v0, v1, v2})
}
func (r *Recorder) Uniform4f(loc int32, v0, v1, v2, v3 float32) {
	r.setUniform("Uniform4f", loc, [4]float32{v0, v1, v2, v3})
}
func (r *Recorder) Uniform2fv(loc int32, v []float32) {
	r.setUniform("Uniform2fv", loc, append([]float32(nil), v...))
}
func (r *Recorder) Uniform3fv(loc int32, v []float32) {
	r.setUniform("Uniform3fv", loc, append([]float32(nil), v...))
}
func (r *Recorder) Uniform4fv(loc int32, v []float32) {
	r.setUniform("Uniform4fv", loc, append([]float32(nil), v...))
}
func (r *Recorder) UniformMatrix4fv(loc int32, v []float32) {
	r.setUniform("UniformMatrix4fv", loc, append([]float32(nil), v...))
}

func (r *Recorder) CreateVertexArray() uint32 {
	a := r.id()
	r.record("CreateVertexArray", a)
	r.vertexArrays[a] = true
	return a
}

func (r *Recorder) BindVertexArray(a uint32) { r.record("BindVertexArray", a) }

func (r *Recorder) DeleteVertexArray(a uint32) {
	r.record("DeleteVertexArray", a)
	delete(r.vertexArrays, a)
}

func (r *Recorder) DrawArrays(mode opengl.Enum, first, count int) {
	r.record("DrawArrays", mode, first, count)
	units := make(map[int]uint32, len(r.units))
	for k, v := range r.units {
		units[k] = v
	}
	r.Draws = append(r.Draws, Draw{
		Program:  r.current,
		Target:   r.framebuffers[r.boundFB],
		Units:    units,
		Viewport: r.viewport,
	})
}
