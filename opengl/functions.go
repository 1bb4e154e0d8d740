package opengl

// Enum mirrors GLenum. Values are the ones from the OpenGL headers so a
// Functions implementation can pass them straight to the driver.
type Enum uint32

const (
	ZERO = Enum(0)
	ONE  = Enum(1)

	TRIANGLES = Enum(0x0004)

	UNPACK_ROW_LENGTH = Enum(0x0CF2)
	UNPACK_ALIGNMENT  = Enum(0x0CF5)
	PACK_ROW_LENGTH   = Enum(0x0D02)
	PACK_ALIGNMENT    = Enum(0x0D05)
	TEXTURE_2D        = Enum(0x0DE1)

	UNSIGNED_BYTE  = Enum(0x1401)
	UNSIGNED_SHORT = Enum(0x1403)
	FLOAT          = Enum(0x1406)
	HALF_FLOAT     = Enum(0x140B)

	RGB  = Enum(0x1907)
	RGBA = Enum(0x1908)

	RENDERER = Enum(0x1F01)
	VERSION  = Enum(0x1F02)

	NEAREST            = Enum(0x2600)
	LINEAR             = Enum(0x2601)
	TEXTURE_MAG_FILTER = Enum(0x2800)
	TEXTURE_MIN_FILTER = Enum(0x2801)
	TEXTURE_WRAP_S     = Enum(0x2802)
	TEXTURE_WRAP_T     = Enum(0x2803)

	COLOR_BUFFER_BIT = Enum(0x4000)

	RGB8   = Enum(0x8051)
	RGB16  = Enum(0x8054)
	RGBA8  = Enum(0x8058)
	RGBA16 = Enum(0x805B)

	CLAMP_TO_EDGE = Enum(0x812F)

	TEXTURE0 = Enum(0x84C0)

	RGBA32F = Enum(0x8814)
	RGB32F  = Enum(0x8815)
	RGBA16F = Enum(0x881A)
	RGB16F  = Enum(0x881B)

	FRAGMENT_SHADER = Enum(0x8B30)
	VERTEX_SHADER   = Enum(0x8B31)
	COMPILE_STATUS  = Enum(0x8B81)
	LINK_STATUS     = Enum(0x8B82)
	ACTIVE_UNIFORMS = Enum(0x8B86)

	FRAMEBUFFER_COMPLETE = Enum(0x8CD5)
	COLOR_ATTACHMENT0    = Enum(0x8CE0)
	FRAMEBUFFER          = Enum(0x8D40)
)

// Functions is the table of driver entry points used by the render core.
// It is loaded once the context is current and dropped before the context
// is destroyed.
type Functions interface {
	GetString(name Enum) string

	ActiveTexture(unit Enum)
	BindTexture(target Enum, t uint32)
	CreateTexture() uint32
	DeleteTexture(t uint32)
	TexImage2D(target Enum, level int, internalFormat Enum, width, height int, format, ty Enum, data []byte)
	TexSubImage2D(target Enum, level int, x, y, width, height int, format, ty Enum, data []byte)
	TexParameteri(target, pname Enum, param int)
	PixelStorei(pname Enum, param int)
	ReadPixels(x, y, width, height int, format, ty Enum, data []byte)

	CreateFramebuffer() uint32
	DeleteFramebuffer(fb uint32)
	BindFramebuffer(target Enum, fb uint32)
	FramebufferTexture2D(target, attachment, texTarget Enum, t uint32, level int)
	CheckFramebufferStatus(target Enum) Enum
	ClearColor(r, g, b, a float32)
	Clear(mask Enum)
	Viewport(x, y, width, height int)
	BlendFunc(sfactor, dfactor Enum)

	CreateShader(ty Enum) uint32
	ShaderSource(s uint32, src string)
	CompileShader(s uint32)
	GetShaderi(s uint32, pname Enum) int
	GetShaderInfoLog(s uint32) string
	DeleteShader(s uint32)
	CreateProgram() uint32
	AttachShader(p, s uint32)
	LinkProgram(p uint32)
	GetProgrami(p uint32, pname Enum) int
	GetProgramInfoLog(p uint32) string
	DeleteProgram(p uint32)
	UseProgram(p uint32)
	GetActiveUniform(p uint32, index int) (name string, size int, ty Enum)
	GetUniformLocation(p uint32, name string) int32

	Uniform1i(loc int32, v int)
	Uniform1f(loc int32, v float32)
	Uniform2f(loc int32, v0, v1 float32)
	Uniform3f(loc int32, v0, v1, v2 float32)
	Uniform4f(loc int32, v0, v1, v2, v3 float32)
	Uniform2fv(loc int32, v []float32)
	Uniform3fv(loc int32, v []float32)
	Uniform4fv(loc int32, v []float32)
	UniformMatrix4fv(loc int32, v []float32)

	CreateVertexArray() uint32
	BindVertexArray(a uint32)
	DeleteVertexArray(a uint32)
	DrawArrays(mode Enum, first, count int)
}
