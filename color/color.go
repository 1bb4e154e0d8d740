// Package color defines what the render core needs from a color manager:
// which conversion method a render mode calls for, and transforms that can
// run either over CPU frames or as a fragment shader.
package color

import (
	"fmt"
	"strings"

	"node-render/core"
)

// Method selects where a color transform runs.
type Method int

const (
	// MethodFast runs the transform as a fragment shader.
	MethodFast Method = iota
	// MethodAccurate runs the transform on the CPU in 32-bit float.
	MethodAccurate
)

func (m Method) String() string {
	switch m {
	case MethodFast:
		return "fast"
	case MethodAccurate:
		return "accurate"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Mode is the rendering context a frame is produced for.
type Mode int

const (
	// ModeOffline is interactive preview.
	ModeOffline Mode = iota
	// ModeOnline is final export.
	ModeOnline
)

func (m Mode) String() string {
	switch m {
	case ModeOffline:
		return "offline"
	case ModeOnline:
		return "online"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "offline", "preview":
		return ModeOffline, nil
	case "online", "export":
		return ModeOnline, nil
	}
	return 0, fmt.Errorf("unknown render mode %q", s)
}

// DefaultMethodForMode trades accuracy for speed during preview only.
func DefaultMethodForMode(m Mode) Method {
	if m == ModeOnline {
		return MethodAccurate
	}
	return MethodFast
}

// Transform converts pixels from one color space to another.
type Transform interface {
	// ConvertFrame converts a float frame with straight alpha in place.
	ConvertFrame(frame *core.Frame) error
	// FragmentShader returns a program body sampling ove_maintex that
	// writes the converted, premultiplied color. premultiplied describes
	// the input texture.
	FragmentShader(premultiplied bool) string
}

// Manager creates transforms and decides how they run.
type Manager interface {
	MethodForMode(m Mode) Method
	ReferenceColorSpace() string
	CreateTransform(src, dst string) (Transform, error)
}

// Stream describes the color of a decoded source.
type Stream struct {
	ColorSpace    string
	Premultiplied bool
	Manager       Manager
}

// MatchString identifies the transform a stream needs. Streams with equal
// match strings share one transform.
func (s Stream) MatchString() string {
	ref := ""
	if s.Manager != nil {
		ref = s.Manager.ReferenceColorSpace()
	}
	return fmt.Sprintf("%s>%s;premultiplied=%t", s.ColorSpace, ref, s.Premultiplied)
}
