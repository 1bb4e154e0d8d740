package render

import (
	"fmt"

	"node-render/core"
	"node-render/math"
	"node-render/node"
	"node-render/opengl"
)

// uniformKind is how a value reaches the GPU. Every node.DataType maps to
// exactly one kind; types without a GPU representation map to
// kindUnsupported and are skipped.
type uniformKind int

const (
	kindUnsupported uniformKind = iota
	kindInt
	kindFloat
	kindVec2
	kindVec3
	kindVec4
	kindMatrix
	kindCombo
	kindColor
	kindBoolean
	kindTexture
)

func kindOf(t node.DataType) uniformKind {
	switch t {
	case node.DataInt:
		return kindInt
	case node.DataFloat:
		return kindFloat
	case node.DataVec2:
		return kindVec2
	case node.DataVec3:
		return kindVec3
	case node.DataVec4:
		return kindVec4
	case node.DataMatrix:
		return kindMatrix
	case node.DataCombo:
		return kindCombo
	case node.DataColor:
		return kindColor
	case node.DataBoolean:
		return kindBoolean
	case node.DataFootage, node.DataTexture, node.DataBuffer:
		return kindTexture
	case node.DataNone, node.DataDecimal, node.DataNumber, node.DataRational,
		node.DataSamples, node.DataText, node.DataString, node.DataFont,
		node.DataFile, node.DataVector, node.DataAny:
		return kindUnsupported
	}
	return kindUnsupported
}

// binder sets a node's inputs on a bound program and tracks the texture
// units it consumes.
type binder struct {
	e      *Engine
	shader *opengl.Shader
	n      node.Node
	db     node.ValueDatabase

	// units is the number of texture units bound so far, starting at 0.
	units int
	// feedbackUnit is the unit of the node's iterative input.
	feedbackUnit int
}

func (b *binder) bindInputs() error {
	for _, in := range b.n.Inputs() {
		loc := b.shader.UniformLocation(in.ID)
		if loc < 0 {
			continue
		}

		v := b.n.InputValueFromTable(in, b.db)
		dt := v.Type
		if dt == node.DataNone {
			dt = in.Type
		}
		if err := b.bind(in, loc, kindOf(dt), v.Data); err != nil {
			return fmt.Errorf("input %s: %w", in.ID, err)
		}
	}
	return nil
}

func (b *binder) bind(in *node.Input, loc int32, kind uniformKind, data any) error {
	s := b.shader
	switch kind {
	case kindInt, kindCombo:
		s.SetInt(loc, toInt(data))
	case kindFloat:
		s.SetFloat(loc, toFloat(data))
	case kindVec2, kindVec3, kindVec4:
		if in.Array {
			b.bindVectorArray(in, loc, kind)
			break
		}
		switch kind {
		case kindVec2:
			v, _ := data.(math.Vec2)
			s.SetVec2(loc, v)
		case kindVec3:
			v, _ := data.(math.Vec3)
			s.SetVec3(loc, v)
		default:
			v, _ := data.(math.Vec4)
			s.SetVec4(loc, v)
		}
	case kindMatrix:
		m, ok := data.(math.Mat4)
		if !ok {
			m = math.Mat4Identity()
		}
		s.SetMatrix(loc, m)
	case kindColor:
		c, _ := data.(core.Color)
		s.SetColor(loc, c)
	case kindBoolean:
		v, _ := data.(bool)
		s.SetBool(loc, v)
	case kindTexture:
		ref, _ := data.(*opengl.TextureRef)
		return b.bindTexture(in, loc, ref)
	case kindUnsupported:
	}
	return nil
}

// bindVectorArray sends every element of a vector array input at once, plus
// the element count when the program declares <name>_count.
func (b *binder) bindVectorArray(in *node.Input, loc int32, kind uniformKind) {
	switch kind {
	case kindVec2:
		b.shader.SetVec2Array(loc, elements[math.Vec2](b.db, in, node.DataVec2))
	case kindVec3:
		b.shader.SetVec3Array(loc, elements[math.Vec3](b.db, in, node.DataVec3))
	case kindVec4:
		b.shader.SetVec4Array(loc, elements[math.Vec4](b.db, in, node.DataVec4))
	}
	b.shader.SetInt(b.shader.UniformLocation(in.ID+"_count"), len(in.Elements))
}

// elements collects the values of an array input's elements; missing ones
// are zero.
func elements[T any](db node.ValueDatabase, in *node.Input, dt node.DataType) []T {
	vs := make([]T, len(in.Elements))
	for i, el := range in.Elements {
		if v, ok := db[el.ID].Get(dt); ok {
			vs[i], _ = v.Data.(T)
		}
	}
	return vs
}

// bindTexture binds ref, which may be nil, to the next free unit.
func (b *binder) bindTexture(in *node.Input, loc int32, ref *opengl.TextureRef) error {
	if err := b.e.checkTexture(ref); err != nil {
		return err
	}
	f := b.e.f
	unit := b.units

	f.ActiveTexture(opengl.TEXTURE0 + opengl.Enum(unit))
	var id uint32
	if ref != nil {
		id = ref.Texture().ID()
	}
	f.BindTexture(opengl.TEXTURE_2D, id)
	b.shader.SetInt(loc, unit)
	b.shader.SetBool(b.shader.UniformLocation(in.ID+"_enabled"), id != 0)

	if id != 0 {
		tex := ref.Texture()
		b.shader.SetVec2(b.shader.UniformLocation(in.ID+"_resolution"), math.NewVec2(
			float32(tex.Width()*tex.Divider()),
			float32(tex.Height()*tex.Divider()),
		))
		opengl.PrepareToDraw(f)
	}
	if in == b.n.ShaderIterativeInput() {
		b.feedbackUnit = unit
	}

	b.units++
	return nil
}

// unbindTextures clears units [0, n) from the highest down.
func (b *binder) unbindTextures(n int) {
	for n > 0 {
		n--
		b.e.f.ActiveTexture(opengl.TEXTURE0 + opengl.Enum(n))
		b.e.f.BindTexture(opengl.TEXTURE_2D, 0)
	}
}

func toInt(v any) int {
	switch v := v.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

func toFloat(v any) float32 {
	switch v := v.(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int:
		return float32(v)
	case int32:
		return float32(v)
	case int64:
		return float32(v)
	case core.Rational:
		return float32(v.Float64())
	}
	return 0
}
