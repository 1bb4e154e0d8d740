package opengl

import (
	"node-render/core"
	"node-render/math"
)

// InternalFormat maps a pixel format to the texture's internal format.
func InternalFormat(f core.PixelFormat) Enum {
	switch f {
	case core.PixFmtRGB8:
		return RGB8
	case core.PixFmtRGBA8:
		return RGBA8
	case core.PixFmtRGB16U:
		return RGB16
	case core.PixFmtRGBA16U:
		return RGBA16
	case core.PixFmtRGB16F:
		return RGB16F
	case core.PixFmtRGBA16F:
		return RGBA16F
	case core.PixFmtRGB32F:
		return RGB32F
	case core.PixFmtRGBA32F:
		return RGBA32F
	}
	return RGBA8
}

// PixelFormat maps a pixel format to the client-side channel layout.
func PixelFormat(f core.PixelFormat) Enum {
	if f.HasAlpha() {
		return RGBA
	}
	return RGB
}

// PixelType maps a pixel format to the client-side channel type.
func PixelType(f core.PixelFormat) Enum {
	switch f {
	case core.PixFmtRGB16U, core.PixFmtRGBA16U:
		return UNSIGNED_SHORT
	case core.PixFmtRGB16F, core.PixFmtRGBA16F:
		return HALF_FLOAT
	case core.PixFmtRGB32F, core.PixFmtRGBA32F:
		return FLOAT
	}
	return UNSIGNED_BYTE
}

// PrepareToDraw sets sampling state on the texture bound to the active unit.
func PrepareToDraw(f Functions) {
	f.TexParameteri(TEXTURE_2D, TEXTURE_MIN_FILTER, int(LINEAR))
	f.TexParameteri(TEXTURE_2D, TEXTURE_MAG_FILTER, int(LINEAR))
	f.TexParameteri(TEXTURE_2D, TEXTURE_WRAP_S, int(CLAMP_TO_EDGE))
	f.TexParameteri(TEXTURE_2D, TEXTURE_WRAP_T, int(CLAMP_TO_EDGE))
}

// Blitter draws fullscreen passes. Core profiles require a vertex array to
// be bound for any draw, so it owns an empty one.
type Blitter struct {
	f   Functions
	vao uint32
}

func NewBlitter(f Functions) *Blitter {
	return &Blitter{f: f, vao: f.CreateVertexArray()}
}

// Blit draws one fullscreen triangle through s into the bound frame buffer.
// matrix is written to ove_mvpmat when the program declares it; flipped
// mirrors the output vertically.
func (b *Blitter) Blit(s *Shader, flipped bool, matrix math.Mat4) {
	s.Bind()
	if flipped {
		matrix = matrix.Mul(math.Mat4Scale(math.NewVec3(1, -1, 1)))
	}
	s.SetMatrix(s.UniformLocation("ove_mvpmat"), matrix)

	b.f.BindVertexArray(b.vao)
	b.f.DrawArrays(TRIANGLES, 0, 3)
	b.f.BindVertexArray(0)

	s.Release()
}

func (b *Blitter) Destroy() {
	if b.vao != 0 {
		b.f.DeleteVertexArray(b.vao)
		b.vao = 0
	}
}
