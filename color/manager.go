package color

import (
	"fmt"
	"strings"
)

// Reference color spaces known to BuiltinManager.
const (
	SpaceLinear = "linear"
	SpaceSRGB   = "srgb"
)

// BuiltinManager converts between linear and sRGB, enough for standalone
// use without a color library.
type BuiltinManager struct {
	// Reference is the working space; empty means linear.
	Reference string
	// Methods overrides DefaultMethodForMode per mode.
	Methods map[Mode]Method
}

func (m *BuiltinManager) MethodForMode(mode Mode) Method {
	if method, ok := m.Methods[mode]; ok {
		return method
	}
	return DefaultMethodForMode(mode)
}

func (m *BuiltinManager) ReferenceColorSpace() string {
	if m.Reference == "" {
		return SpaceLinear
	}
	return m.Reference
}

func (m *BuiltinManager) CreateTransform(src, dst string) (Transform, error) {
	src, dst = strings.ToLower(src), strings.ToLower(dst)
	switch {
	case src == dst:
		return Identity(), nil
	case src == SpaceSRGB && dst == SpaceLinear:
		return SRGBToLinear(), nil
	}
	return nil, fmt.Errorf("no transform from %q to %q", src, dst)
}

var _ Manager = (*BuiltinManager)(nil)
