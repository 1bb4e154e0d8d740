package color

import (
	"fmt"
	stdmath "math"

	"node-render/core"
)

// PixelFunc maps one straight-alpha RGBA pixel.
type PixelFunc func(px [4]float32) [4]float32

// FuncTransform runs Pixel on the CPU and GLSL on the GPU. GLSL must
// define `vec4 ove_transform(vec4 c)` operating on straight alpha.
type FuncTransform struct {
	Pixel PixelFunc
	GLSL  string
}

func (t *FuncTransform) ConvertFrame(frame *core.Frame) error {
	if !frame.Format().IsFloat() {
		return fmt.Errorf("convert frame: %v is not a float format", frame.Format())
	}
	if t.Pixel == nil {
		return nil
	}
	for y := 0; y < frame.Height(); y++ {
		for x := 0; x < frame.Width(); x++ {
			frame.SetPixel(x, y, t.Pixel(frame.Pixel(x, y)))
		}
	}
	return nil
}

func (t *FuncTransform) FragmentShader(premultiplied bool) string {
	glsl := t.GLSL
	if glsl == "" {
		glsl = identityGLSL
	}
	return BuildFragmentShader(glsl, premultiplied)
}

const identityGLSL = `vec4 ove_transform(vec4 c) { return c; }`

const fragmentTemplate = `
#version 410 core
uniform sampler2D ove_maintex;
in  vec2 ove_texcoord;
out vec4 fragColor;

%s

void main() {
    vec4 c = texture(ove_maintex, ove_texcoord);
%s
    c = ove_transform(c);
    c.rgb *= c.a;
    fragColor = c;
}
`

// BuildFragmentShader wraps an ove_transform definition into a program
// that disassociates premultiplied input first and always writes
// premultiplied output.
func BuildFragmentShader(transform string, premultiplied bool) string {
	unpremultiply := ""
	if premultiplied {
		unpremultiply = "    if (c.a > 0.0) c.rgb /= c.a;"
	}
	return fmt.Sprintf(fragmentTemplate, transform, unpremultiply)
}

// Identity returns a transform that leaves colors unchanged.
func Identity() Transform {
	return &FuncTransform{}
}

// SRGBToLinear decodes the sRGB transfer curve.
func SRGBToLinear() Transform {
	return &FuncTransform{
		Pixel: func(px [4]float32) [4]float32 {
			for i := 0; i < 3; i++ {
				px[i] = srgbDecode(px[i])
			}
			return px
		},
		GLSL: `
vec3 ove_srgb_decode(vec3 v) {
    return mix(v / 12.92, pow((v + 0.055) / 1.055, vec3(2.4)), step(0.04045, v));
}
vec4 ove_transform(vec4 c) { return vec4(ove_srgb_decode(c.rgb), c.a); }`,
	}
}

func srgbDecode(v float32) float32 {
	if v < 0.04045 {
		return v / 12.92
	}
	return float32(stdmath.Pow((float64(v)+0.055)/1.055, 2.4))
}
