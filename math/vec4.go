package math

type Vec4 struct {
	X, Y, Z, W float32
}

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

func FlattenVec4(vs []Vec4) []float32 {
	out := make([]float32, 0, len(vs)*4)
	for _, v := range vs {
		out = append(out, v.X, v.Y, v.Z, v.W)
	}
	return out
}
