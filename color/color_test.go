package color

import (
	"strings"
	"testing"

	"node-render/core"
)

func TestDefaultMethodForMode(t *testing.T) {
	if DefaultMethodForMode(ModeOnline) != MethodAccurate {
		t.Error("online should be accurate")
	}
	if DefaultMethodForMode(ModeOffline) != MethodFast {
		t.Error("offline should be fast")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"offline", ModeOffline, false},
		{"Online", ModeOnline, false},
		{" export ", ModeOnline, false},
		{"preview", ModeOffline, false},
		{"realtime", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v", tt.in, err)
			}
			if err == nil && got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBuiltinManager(t *testing.T) {
	m := &BuiltinManager{Methods: map[Mode]Method{ModeOffline: MethodAccurate}}
	if m.MethodForMode(ModeOffline) != MethodAccurate {
		t.Error("override ignored")
	}
	if m.MethodForMode(ModeOnline) != MethodAccurate {
		t.Error("online default should be accurate")
	}
	if m.ReferenceColorSpace() != SpaceLinear {
		t.Errorf("unexpected reference %q", m.ReferenceColorSpace())
	}
	if _, err := m.CreateTransform("sRGB", "linear"); err != nil {
		t.Errorf("sRGB to linear: %v", err)
	}
	if _, err := m.CreateTransform("acescg", "linear"); err == nil {
		t.Error("expected error for unknown space")
	}
}

func TestMatchStringSeparatesAlpha(t *testing.T) {
	m := &BuiltinManager{}
	a := Stream{ColorSpace: SpaceSRGB, Manager: m}
	b := Stream{ColorSpace: SpaceSRGB, Premultiplied: true, Manager: m}
	if a.MatchString() == b.MatchString() {
		t.Error("streams differing in alpha association should not share a transform")
	}
	if a.MatchString() != (Stream{ColorSpace: SpaceSRGB, Manager: m}).MatchString() {
		t.Error("identical streams should match")
	}
}

func TestSRGBToLinearConvertFrame(t *testing.T) {
	frame := core.NewFrame(2, 1, core.PixFmtRGBA32F)
	frame.SetPixel(0, 0, [4]float32{0, 0.5, 1, 0.25})
	frame.SetPixel(1, 0, [4]float32{0.02, 0.02, 0.02, 1})

	if err := SRGBToLinear().ConvertFrame(frame); err != nil {
		t.Fatal(err)
	}
	px := frame.Pixel(0, 0)
	if px[0] != 0 || px[2] != 1 || px[3] != 0.25 {
		t.Errorf("endpoints or alpha changed: %v", px)
	}
	if px[1] < 0.21 || px[1] > 0.22 {
		t.Errorf("0.5 should decode to ~0.214, got %v", px[1])
	}
	if got := frame.Pixel(1, 0)[0]; got < 0.00154 || got > 0.00156 {
		t.Errorf("linear segment: expected ~0.00155, got %v", got)
	}
}

func TestConvertFrameRequiresFloat(t *testing.T) {
	if err := Identity().ConvertFrame(core.NewFrame(1, 1, core.PixFmtRGBA8)); err == nil {
		t.Error("expected error for 8-bit frame")
	}
}

func TestFragmentShaderAlpha(t *testing.T) {
	straight := Identity().FragmentShader(false)
	premult := Identity().FragmentShader(true)
	if strings.Contains(straight, "c.rgb /= c.a") {
		t.Error("straight input should not be disassociated")
	}
	if !strings.Contains(premult, "c.rgb /= c.a") {
		t.Error("premultiplied input should be disassociated")
	}
	for _, src := range []string{straight, premult} {
		if !strings.Contains(src, "uniform sampler2D ove_maintex") || !strings.Contains(src, "c.rgb *= c.a") {
			t.Errorf("shader missing sampler or association:\n%s", src)
		}
	}
}
