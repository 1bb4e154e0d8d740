package math

type Vec2 struct {
	X, Y float32
}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// FlattenVec2 packs a slice of Vec2 into the tightly packed layout expected
// by glUniform2fv.
func FlattenVec2(vs []Vec2) []float32 {
	out := make([]float32, 0, len(vs)*2)
	for _, v := range vs {
		out = append(out, v.X, v.Y)
	}
	return out
}
