package math

type Vec3 struct {
	X, Y, Z float32
}

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func FlattenVec3(vs []Vec3) []float32 {
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}
