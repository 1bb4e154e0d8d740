package math

// Mat4 is a column-major 4x4 matrix: m[col][row]. Its memory layout matches
// what glUniformMatrix4fv expects with transpose=false.
type Mat4 [4][4]float32

func Mat4Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				result[i][j] += m[i][k] * other[k][j]
			}
		}
	}
	return result
}

// Floats returns the matrix flattened in column-major order.
func (m Mat4) Floats() [16]float32 {
	var out [16]float32
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c*4+r] = m[c][r]
		}
	}
	return out
}

func Mat4Translation(translation Vec3) Mat4 {
	m := Mat4Identity()
	m[3][0] = translation.X
	m[3][1] = translation.Y
	m[3][2] = translation.Z
	return m
}

func Mat4Scale(scale Vec3) Mat4 {
	m := Mat4Identity()
	m[0][0] = scale.X
	m[1][1] = scale.Y
	m[2][2] = scale.Z
	return m
}

// Mat4FitAspect returns the scale that letterboxes a src-sized image inside a
// dst-sized viewport in normalized device coordinates, preserving the
// source's aspect ratio.
func Mat4FitAspect(srcW, srcH, dstW, dstH int) Mat4 {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return Mat4Identity()
	}
	srcAR := float32(srcW) / float32(srcH)
	dstAR := float32(dstW) / float32(dstH)
	if srcAR > dstAR {
		return Mat4Scale(NewVec3(1, dstAR/srcAR, 1))
	}
	return Mat4Scale(NewVec3(srcAR/dstAR, 1, 1))
}
