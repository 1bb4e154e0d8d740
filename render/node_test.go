package render

import (
	"errors"
	"testing"

	"node-render/core"
	"node-render/math"
	"node-render/node"
	"node-render/opengl"
	"node-render/opengl/opengltest"
)

const gainFrag = `
#version 410 core
uniform sampler2D src;
uniform bool src_enabled;
uniform vec2 src_resolution;
uniform float gain;
uniform vec2 ove_resolution;
uniform int ove_iteration;
in  vec2 ove_texcoord;
out vec4 fragColor;
void main() {
    fragColor = texture(src, ove_texcoord) * gain;
}
`

func mustShaderNode(t *testing.T, cfg node.ShaderNodeConfig) *node.ShaderNode {
	t.Helper()
	n, err := node.NewShaderNode(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func program(t *testing.T, e *Engine, n node.Node) uint32 {
	t.Helper()
	s, ok := e.shaders.Get(n.ShaderID(nil))
	if !ok {
		t.Fatalf("no program cached for %s", n.ID())
	}
	return s.Program()
}

func resultTexture(t *testing.T, out *node.ValueTable) *opengl.TextureRef {
	t.Helper()
	if out.Len() != 1 {
		t.Fatalf("expected one output value, got %d", out.Len())
	}
	v, _ := out.Last()
	ref, ok := v.Data.(*opengl.TextureRef)
	if v.Type != node.DataTexture || !ok || ref == nil {
		t.Fatalf("expected texture output, got %+v", v)
	}
	return ref
}

func TestRunNodeGainScenario(t *testing.T) {
	e, p := newEngine(t, core.DefaultConfig())
	rec := p.Recorder

	texA, err := e.Pool().Get(e.Context(), core.NewVideoParams(32, 16, core.PixFmtRGBA8, 2))
	if err != nil {
		t.Fatal(err)
	}
	n := mustShaderNode(t, node.ShaderNodeConfig{
		ID:           "gain",
		FragmentCode: gainFrag,
		Inputs: []*node.Input{
			node.NewInput("gain", node.DataFloat),
			node.NewInput("src", node.DataTexture),
		},
	})
	db := node.ValueDatabase{}
	db.Set("gain", node.Value{Type: node.DataFloat, Data: 1.5})
	db.Set("src", node.Value{Type: node.DataTexture, Data: texA})

	params := core.NewVideoParams(64, 32, core.PixFmtRGBA16F, 1)
	out := &node.ValueTable{}
	if err := e.RunNodeAccelerated(n, node.TimeRange{}, db, out, params); err != nil {
		t.Fatalf("RunNodeAccelerated: %v", err)
	}

	prog := program(t, e, n)
	expect := map[string]any{
		"gain":           float32(1.5),
		"src":            0,
		"src_enabled":    1,
		"src_resolution": [2]float32{32, 16},
		"ove_resolution": [2]float32{64, 32},
		"ove_iteration":  0,
	}
	for name, want := range expect {
		if got, _ := rec.UniformValue(prog, name); got != want {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}

	if len(rec.Draws) != 1 {
		t.Fatalf("expected 1 blit, got %d", len(rec.Draws))
	}
	d := rec.Draws[0]
	if d.Units[0] != texA.Texture().ID() {
		t.Errorf("unit 0: expected texture %d, got %d", texA.Texture().ID(), d.Units[0])
	}
	if d.Viewport != [4]int{0, 0, 64, 32} {
		t.Errorf("viewport: got %v", d.Viewport)
	}

	ref := resultTexture(t, out)
	if ref.Texture().Params() != params {
		t.Errorf("output params: expected %v, got %v", params, ref.Texture().Params())
	}
	if d.Target != ref.Texture().ID() {
		t.Errorf("blit went to texture %d, output is %d", d.Target, ref.Texture().ID())
	}
	if rec.UnitBinding(0) != 0 || rec.CurrentProgram() != 0 {
		t.Error("units or program left bound")
	}
	if e.buffer.Attached() != nil {
		t.Error("frame buffer left attached")
	}
}

func TestRunNodeSkipsUndeclaredInputs(t *testing.T) {
	e, p := newEngine(t, core.DefaultConfig())
	rec := p.Recorder

	ghost, _ := e.Pool().Get(e.Context(), core.NewVideoParams(8, 8, core.PixFmtRGBA8, 1))
	src, _ := e.Pool().Get(e.Context(), core.NewVideoParams(8, 8, core.PixFmtRGBA8, 1))
	n := mustShaderNode(t, node.ShaderNodeConfig{
		ID:           "gain",
		FragmentCode: gainFrag,
		Inputs: []*node.Input{
			node.NewInput("ghost", node.DataTexture),
			node.NewInput("src", node.DataTexture),
		},
	})
	db := node.ValueDatabase{}
	db.Set("ghost", node.Value{Type: node.DataTexture, Data: ghost})
	db.Set("src", node.Value{Type: node.DataTexture, Data: src})

	if err := e.RunNodeAccelerated(n, node.TimeRange{}, db, &node.ValueTable{}, core.NewVideoParams(8, 8, core.PixFmtRGBA8, 1)); err != nil {
		t.Fatal(err)
	}
	if got := rec.Draws[0].Units[0]; got != src.Texture().ID() {
		t.Errorf("src should take unit 0, got texture %d", got)
	}
	for _, c := range rec.CallsNamed("ActiveTexture") {
		if c.Args[0] != opengl.TEXTURE0 {
			t.Errorf("unexpected unit %v activated", c.Args[0])
		}
	}
}

func TestRunNodeNullTexture(t *testing.T) {
	e, p := newEngine(t, core.DefaultConfig())
	n := mustShaderNode(t, node.ShaderNodeConfig{
		ID:           "gain",
		FragmentCode: gainFrag,
		Inputs:       []*node.Input{node.NewInput("src", node.DataFootage)},
	})
	if err := e.RunNodeAccelerated(n, node.TimeRange{}, node.ValueDatabase{}, &node.ValueTable{}, core.NewVideoParams(8, 8, core.PixFmtRGBA8, 1)); err != nil {
		t.Fatal(err)
	}
	prog := program(t, e, n)
	if v, _ := p.Recorder.UniformValue(prog, "src_enabled"); v != 0 {
		t.Errorf("src_enabled: expected 0, got %v", v)
	}
	if _, ok := p.Recorder.UniformValue(prog, "src_resolution"); ok {
		t.Error("src_resolution set for a null texture")
	}
}

func TestRunNodePingPong(t *testing.T) {
	e, p := newEngine(t, core.DefaultConfig())
	rec := p.Recorder

	texA, _ := e.Pool().Get(e.Context(), core.NewVideoParams(16, 16, core.PixFmtRGBA8, 1))
	src := node.NewInput("src", node.DataTexture)
	n := mustShaderNode(t, node.ShaderNodeConfig{
		ID:             "blur",
		FragmentCode:   gainFrag,
		Inputs:         []*node.Input{src},
		Iterations:     3,
		IterativeInput: src,
	})
	db := node.ValueDatabase{}
	db.Set("src", node.Value{Type: node.DataTexture, Data: texA})

	created := rec.Count("CreateTexture")
	out := &node.ValueTable{}
	if err := e.RunNodeAccelerated(n, node.TimeRange{}, db, out, core.NewVideoParams(16, 16, core.PixFmtRGBA8, 1)); err != nil {
		t.Fatal(err)
	}

	if got := rec.Count("CreateTexture") - created; got != 2 {
		t.Errorf("expected 2 destination textures, got %d", got)
	}
	if len(rec.Draws) != 3 {
		t.Fatalf("expected 3 blits, got %d", len(rec.Draws))
	}
	d := rec.Draws
	if d[0].Target == d[1].Target || d[2].Target != d[0].Target {
		t.Errorf("targets should alternate, got %d %d %d", d[0].Target, d[1].Target, d[2].Target)
	}
	if d[0].Units[0] != texA.Texture().ID() {
		t.Error("first pass should read the input texture")
	}
	if d[1].Units[0] != d[0].Target || d[2].Units[0] != d[1].Target {
		t.Error("later passes should read the previous pass's output")
	}
	if got := resultTexture(t, out).Texture().ID(); got != d[2].Target {
		t.Errorf("result should be the last destination %d, got %d", d[2].Target, got)
	}
	if v, _ := rec.UniformValue(program(t, e, n), "ove_iteration"); v != 2 {
		t.Errorf("ove_iteration: expected 2, got %v", v)
	}

	stats := e.Pool().Stats()
	if stats.Live != 2 || stats.Free != 1 {
		t.Errorf("expected input and result live and the other target free, got %+v", stats)
	}
}

func TestRunNodeIterationsWithoutFeedback(t *testing.T) {
	e, p := newEngine(t, core.DefaultConfig())
	rec := p.Recorder
	n := mustShaderNode(t, node.ShaderNodeConfig{ID: "repeat", FragmentCode: gainFrag, Iterations: 3})

	out := &node.ValueTable{}
	if err := e.RunNodeAccelerated(n, node.TimeRange{}, node.ValueDatabase{}, out, core.NewVideoParams(16, 16, core.PixFmtRGBA8, 1)); err != nil {
		t.Fatal(err)
	}
	if got := rec.Count("CreateTexture"); got != 1 {
		t.Errorf("expected a single destination texture, got %d", got)
	}
	target := resultTexture(t, out).Texture().ID()
	for i, d := range rec.Draws {
		if d.Target != target {
			t.Errorf("pass %d drew into %d, expected %d", i, d.Target, target)
		}
		if i > 0 && d.Units[0] != target {
			t.Errorf("pass %d should sample its own target", i)
		}
	}
	if len(rec.Draws) != 3 {
		t.Errorf("expected 3 blits, got %d", len(rec.Draws))
	}
	if rec.UnitBinding(0) != 0 {
		t.Error("feedback unit left bound")
	}
}

type fixedIterations struct {
	*node.ShaderNode
	n int
}

func (f fixedIterations) ShaderIterations() int { return f.n }

func TestRunNodeIterationsBelowOne(t *testing.T) {
	e, p := newEngine(t, core.DefaultConfig())
	n := fixedIterations{mustShaderNode(t, node.ShaderNodeConfig{ID: "none"}), 0}

	out := &node.ValueTable{}
	if err := e.RunNodeAccelerated(n, node.TimeRange{}, node.ValueDatabase{}, out, core.NewVideoParams(4, 4, core.PixFmtRGBA8, 1)); err != nil {
		t.Fatal(err)
	}
	if len(p.Recorder.Draws) != 1 {
		t.Errorf("expected 1 blit, got %d", len(p.Recorder.Draws))
	}
	resultTexture(t, out)
}

func TestRunNodeCompileFailure(t *testing.T) {
	e, p := newEngine(t, core.DefaultConfig())
	rec := p.Recorder
	n := mustShaderNode(t, node.ShaderNodeConfig{ID: "broken", FragmentCode: "#error broken"})

	for attempt := 1; attempt <= 2; attempt++ {
		out := &node.ValueTable{}
		err := e.RunNodeAccelerated(n, node.TimeRange{}, node.ValueDatabase{}, out, core.NewVideoParams(4, 4, core.PixFmtRGBA8, 1))
		if !errors.Is(err, opengl.ErrCompile) {
			t.Fatalf("attempt %d: expected ErrCompile, got %v", attempt, err)
		}
		if out.Len() != 0 {
			t.Errorf("attempt %d: output pushed despite failure", attempt)
		}
		if got := rec.Count("CompileShader"); got != 2+2*attempt {
			t.Errorf("attempt %d: expected %d compiles, got %d", attempt, 2+2*attempt, got)
		}
	}
	if e.Pool().Stats().Live != 0 {
		t.Error("failed render leaked a texture")
	}
}

func TestRunNodeForeignTexture(t *testing.T) {
	e, p := newEngine(t, core.DefaultConfig())

	other := opengltest.NewContext("other")
	foreignPool, err := opengl.NewTexturePool(p.Recorder, other, opengl.PoolOptions{})
	if err != nil {
		t.Fatal(err)
	}
	foreign, err := foreignPool.Get(other, core.NewVideoParams(4, 4, core.PixFmtRGBA8, 1))
	if err != nil {
		t.Fatal(err)
	}

	n := mustShaderNode(t, node.ShaderNodeConfig{
		ID:           "gain",
		FragmentCode: gainFrag,
		Inputs:       []*node.Input{node.NewInput("src", node.DataTexture)},
	})
	db := node.ValueDatabase{}
	db.Set("src", node.Value{Type: node.DataTexture, Data: foreign})

	out := &node.ValueTable{}
	err = e.RunNodeAccelerated(n, node.TimeRange{}, db, out, core.NewVideoParams(4, 4, core.PixFmtRGBA8, 1))
	if !errors.Is(err, opengl.ErrContextMismatch) {
		t.Fatalf("expected ErrContextMismatch, got %v", err)
	}
	if out.Len() != 0 || e.Pool().Stats().Live != 0 {
		t.Error("rejected render left output or live textures behind")
	}
	if p.Recorder.CurrentProgram() != 0 {
		t.Error("program left bound")
	}
}

func TestRunNodeUniformKinds(t *testing.T) {
	e, p := newEngine(t, core.DefaultConfig())
	const frag = `
#version 410 core
uniform vec2 points[4];
uniform int points_count;
uniform vec4 tint;
uniform int blend;
uniform bool invert;
uniform mat4 xform;
uniform vec3 offset;
uniform vec4 rect;
uniform int steps;
uniform float label;
out vec4 fragColor;
void main() { fragColor = tint; }
`
	points := node.NewArrayInput("points", node.DataVec2, 2)
	n := mustShaderNode(t, node.ShaderNodeConfig{
		ID:           "kinds",
		FragmentCode: frag,
		Inputs: []*node.Input{
			points,
			node.NewInput("tint", node.DataColor),
			node.NewInput("blend", node.DataCombo),
			node.NewInput("invert", node.DataBoolean),
			node.NewInput("xform", node.DataMatrix),
			node.NewInput("offset", node.DataVec3),
			node.NewInput("rect", node.DataVec4),
			node.NewInput("steps", node.DataInt),
			node.NewInput("label", node.DataText),
		},
	})
	db := node.ValueDatabase{}
	db.Set("points.0", node.Value{Type: node.DataVec2, Data: math.NewVec2(1, 2)})
	db.Set("points.1", node.Value{Type: node.DataVec2, Data: math.NewVec2(3, 4)})
	db.Set("tint", node.Value{Type: node.DataColor, Data: core.Color{R: 1, G: 0.5, B: 0.25, A: 1}})
	db.Set("blend", node.Value{Type: node.DataCombo, Data: 2})
	db.Set("invert", node.Value{Type: node.DataBoolean, Data: true})
	db.Set("xform", node.Value{Type: node.DataMatrix, Data: math.Mat4Translation(math.NewVec3(1, 2, 3))})
	db.Set("offset", node.Value{Type: node.DataVec3, Data: math.NewVec3(1, 2, 3)})
	db.Set("rect", node.Value{Type: node.DataVec4, Data: math.NewVec4(1, 2, 3, 4)})
	db.Set("steps", node.Value{Type: node.DataFloat, Data: 7.0})
	db.Set("label", node.Value{Type: node.DataText, Data: "hello"})

	if err := e.RunNodeAccelerated(n, node.TimeRange{}, db, &node.ValueTable{}, core.NewVideoParams(4, 4, core.PixFmtRGBA8, 1)); err != nil {
		t.Fatal(err)
	}
	prog := program(t, e, n)
	get := func(name string) any {
		v, _ := p.Recorder.UniformValue(prog, name)
		return v
	}

	if pts, ok := get("points").([]float32); !ok || len(pts) != 4 || pts[2] != 3 {
		t.Errorf("points: got %v", get("points"))
	}
	if get("points_count") != 2 {
		t.Errorf("points_count: got %v", get("points_count"))
	}
	if get("tint") != [4]float32{1, 0.5, 0.25, 1} {
		t.Errorf("tint: got %v", get("tint"))
	}
	if get("blend") != 2 || get("invert") != 1 {
		t.Errorf("blend/invert: got %v %v", get("blend"), get("invert"))
	}
	if m, ok := get("xform").([]float32); !ok || m[12] != 1 || m[14] != 3 {
		t.Errorf("xform: got %v", get("xform"))
	}
	if get("offset") != [3]float32{1, 2, 3} || get("rect") != [4]float32{1, 2, 3, 4} {
		t.Errorf("offset/rect: got %v %v", get("offset"), get("rect"))
	}
	// A float value routes through the float setter even for an int input.
	if get("steps") != float32(7) {
		t.Errorf("steps: got %v", get("steps"))
	}
	if _, ok := p.Recorder.UniformValue(prog, "label"); ok {
		t.Error("text input should not be bound")
	}
}

func TestRunNodeVectorArrays(t *testing.T) {
	e, p := newEngine(t, core.DefaultConfig())
	const frag = `
#version 410 core
uniform vec3 offsets[4];
uniform int offsets_count;
uniform vec4 rects[2];
out vec4 fragColor;
void main() { fragColor = rects[0]; }
`
	offsets := node.NewArrayInput("offsets", node.DataVec3, 2)
	rects := node.NewArrayInput("rects", node.DataVec4, 2)
	n := mustShaderNode(t, node.ShaderNodeConfig{
		ID:           "arrays",
		FragmentCode: frag,
		Inputs:       []*node.Input{offsets, rects},
	})
	db := node.ValueDatabase{}
	db.Set("offsets.0", node.Value{Type: node.DataVec3, Data: math.NewVec3(1, 2, 3)})
	db.Set("offsets.1", node.Value{Type: node.DataVec3, Data: math.NewVec3(4, 5, 6)})
	db.Set("rects.1", node.Value{Type: node.DataVec4, Data: math.NewVec4(1, 2, 3, 4)})

	if err := e.RunNodeAccelerated(n, node.TimeRange{}, db, &node.ValueTable{}, core.NewVideoParams(4, 4, core.PixFmtRGBA8, 1)); err != nil {
		t.Fatal(err)
	}
	prog := program(t, e, n)
	get := func(name string) any {
		v, _ := p.Recorder.UniformValue(prog, name)
		return v
	}

	if v, ok := get("offsets").([]float32); !ok || len(v) != 6 || v[3] != 4 || v[5] != 6 {
		t.Errorf("offsets: got %v", get("offsets"))
	}
	if get("offsets_count") != 2 {
		t.Errorf("offsets_count: got %v", get("offsets_count"))
	}
	// Unset elements bind as zero vectors.
	if v, ok := get("rects").([]float32); !ok || len(v) != 8 || v[0] != 0 || v[7] != 4 {
		t.Errorf("rects: got %v", get("rects"))
	}
}

func TestRunNodeTransition(t *testing.T) {
	e, p := newEngine(t, core.DefaultConfig())
	const frag = `
#version 410 core
uniform float ove_tprog_all;
uniform float ove_tprog_out;
uniform float ove_tprog_in;
out vec4 fragColor;
void main() { fragColor = vec4(ove_tprog_all); }
`
	n, err := node.NewTransitionNode(node.ShaderNodeConfig{ID: "dissolve", FragmentCode: frag}, core.NewRational(2, 1))
	if err != nil {
		t.Fatal(err)
	}
	r := node.NewTimeRange(core.NewRational(3, 2), core.NewRational(2, 1))
	if err := e.RunNodeAccelerated(n, r, node.ValueDatabase{}, &node.ValueTable{}, core.NewVideoParams(4, 4, core.PixFmtRGBA8, 1)); err != nil {
		t.Fatal(err)
	}
	prog := program(t, e, n)
	for name, want := range map[string]float32{"ove_tprog_all": 0.75, "ove_tprog_out": 0, "ove_tprog_in": 0.5} {
		if got, _ := p.Recorder.UniformValue(prog, name); got != want {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}
}

func TestKindOfCoversEveryType(t *testing.T) {
	for dt := node.DataNone; dt <= node.DataAny; dt++ {
		k := kindOf(dt)
		if dt.IsTexture() != (k == kindTexture) {
			t.Errorf("%v: texture kind mismatch", dt)
		}
	}
	if kindOf(node.DataCombo) != kindCombo || kindOf(node.DataColor) != kindColor {
		t.Error("combo or color mapped to the wrong kind")
	}
}
