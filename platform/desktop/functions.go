package desktop

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"node-render/opengl"
)

// functions forwards opengl.Functions to go-gl.
type functions struct{}

var _ opengl.Functions = functions{}

func loadFunctions() (opengl.Functions, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	return functions{}, nil
}

func cstr(s string) *uint8 {
	return gl.Str(s + "\x00")
}

func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}

func (functions) GetString(name opengl.Enum) string {
	s := gl.GetString(uint32(name))
	if s == nil {
		return ""
	}
	return gl.GoStr(s)
}

func (functions) ActiveTexture(unit opengl.Enum) { gl.ActiveTexture(uint32(unit)) }

func (functions) BindTexture(target opengl.Enum, t uint32) { gl.BindTexture(uint32(target), t) }

func (functions) CreateTexture() uint32 {
	var t uint32
	gl.GenTextures(1, &t)
	return t
}

func (functions) DeleteTexture(t uint32) { gl.DeleteTextures(1, &t) }

func (functions) TexImage2D(target opengl.Enum, level int, internalFormat opengl.Enum, width, height int, format, ty opengl.Enum, data []byte) {
	gl.TexImage2D(uint32(target), int32(level), int32(internalFormat), int32(width), int32(height), 0,
		uint32(format), uint32(ty), ptr(data))
}

func (functions) TexSubImage2D(target opengl.Enum, level int, x, y, width, height int, format, ty opengl.Enum, data []byte) {
	gl.TexSubImage2D(uint32(target), int32(level), int32(x), int32(y), int32(width), int32(height),
		uint32(format), uint32(ty), ptr(data))
}

func (functions) TexParameteri(target, pname opengl.Enum, param int) {
	gl.TexParameteri(uint32(target), uint32(pname), int32(param))
}

func (functions) PixelStorei(pname opengl.Enum, param int) {
	gl.PixelStorei(uint32(pname), int32(param))
}

func (functions) ReadPixels(x, y, width, height int, format, ty opengl.Enum, data []byte) {
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), uint32(format), uint32(ty), ptr(data))
}

func (functions) CreateFramebuffer() uint32 {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	return fb
}

func (functions) DeleteFramebuffer(fb uint32) { gl.DeleteFramebuffers(1, &fb) }

func (functions) BindFramebuffer(target opengl.Enum, fb uint32) {
	gl.BindFramebuffer(uint32(target), fb)
}

func (functions) FramebufferTexture2D(target, attachment, texTarget opengl.Enum, t uint32, level int) {
	gl.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(texTarget), t, int32(level))
}

func (functions) CheckFramebufferStatus(target opengl.Enum) opengl.Enum {
	return opengl.Enum(gl.CheckFramebufferStatus(uint32(target)))
}

func (functions) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (functions) Clear(mask opengl.Enum) { gl.Clear(uint32(mask)) }

func (functions) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (functions) BlendFunc(sfactor, dfactor opengl.Enum) {
	gl.BlendFunc(uint32(sfactor), uint32(dfactor))
}

func (functions) CreateShader(ty opengl.Enum) uint32 { return gl.CreateShader(uint32(ty)) }

func (functions) ShaderSource(s uint32, src string) {
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(s, 1, csrc, nil)
	free()
}

func (functions) CompileShader(s uint32) { gl.CompileShader(s) }

func (functions) GetShaderi(s uint32, pname opengl.Enum) int {
	var v int32
	gl.GetShaderiv(s, uint32(pname), &v)
	return int(v)
}

func (f functions) GetShaderInfoLog(s uint32) string {
	n := f.GetShaderi(s, gl.INFO_LOG_LENGTH)
	if n == 0 {
		return ""
	}
	log := strings.Repeat("\x00", n+1)
	gl.GetShaderInfoLog(s, int32(n), nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (functions) DeleteShader(s uint32) { gl.DeleteShader(s) }

func (functions) CreateProgram() uint32 { return gl.CreateProgram() }

func (functions) AttachShader(p, s uint32) { gl.AttachShader(p, s) }

func (functions) LinkProgram(p uint32) { gl.LinkProgram(p) }

func (functions) GetProgrami(p uint32, pname opengl.Enum) int {
	var v int32
	gl.GetProgramiv(p, uint32(pname), &v)
	return int(v)
}

func (f functions) GetProgramInfoLog(p uint32) string {
	n := f.GetProgrami(p, gl.INFO_LOG_LENGTH)
	if n == 0 {
		return ""
	}
	log := strings.Repeat("\x00", n+1)
	gl.GetProgramInfoLog(p, int32(n), nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (functions) DeleteProgram(p uint32) { gl.DeleteProgram(p) }

func (functions) UseProgram(p uint32) { gl.UseProgram(p) }

func (f functions) GetActiveUniform(p uint32, index int) (string, int, opengl.Enum) {
	maxLen := f.GetProgrami(p, gl.ACTIVE_UNIFORM_MAX_LENGTH)
	if maxLen == 0 {
		return "", 0, 0
	}
	buf := make([]uint8, maxLen)
	var length, size int32
	var ty uint32
	gl.GetActiveUniform(p, uint32(index), int32(maxLen), &length, &size, &ty, &buf[0])
	return string(buf[:length]), int(size), opengl.Enum(ty)
}

func (functions) GetUniformLocation(p uint32, name string) int32 {
	return gl.GetUniformLocation(p, cstr(name))
}

func (functions) Uniform1i(loc int32, v int)     { gl.Uniform1i(loc, int32(v)) }
func (functions) Uniform1f(loc int32, v float32) { gl.Uniform1f(loc, v) }

func (functions) Uniform2f(loc int32, v0, v1 float32) { gl.Uniform2f(loc, v0, v1) }

func (functions) Uniform3f(loc int32, v0, v1, v2 float32) { gl.Uniform3f(loc, v0, v1, v2) }

func (functions) Uniform4f(loc int32, v0, v1, v2, v3 float32) { gl.Uniform4f(loc, v0, v1, v2, v3) }

func (functions) Uniform2fv(loc int32, v []float32) {
	if len(v) >= 2 {
		gl.Uniform2fv(loc, int32(len(v)/2), &v[0])
	}
}

func (functions) Uniform3fv(loc int32, v []float32) {
	if len(v) >= 3 {
		gl.Uniform3fv(loc, int32(len(v)/3), &v[0])
	}
}

func (functions) Uniform4fv(loc int32, v []float32) {
	if len(v) >= 4 {
		gl.Uniform4fv(loc, int32(len(v)/4), &v[0])
	}
}

func (functions) UniformMatrix4fv(loc int32, v []float32) {
	if len(v) >= 16 {
		gl.UniformMatrix4fv(loc, int32(len(v)/16), false, &v[0])
	}
}

func (functions) CreateVertexArray() uint32 {
	var a uint32
	gl.GenVertexArrays(1, &a)
	return a
}

func (functions) BindVertexArray(a uint32) { gl.BindVertexArray(a) }

func (functions) DeleteVertexArray(a uint32) { gl.DeleteVertexArrays(1, &a) }

func (functions) DrawArrays(mode opengl.Enum, first, count int) {
	gl.DrawArrays(uint32(mode), int32(first), int32(count))
}
