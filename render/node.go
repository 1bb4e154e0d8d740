package render

import (
	"fmt"

	"node-render/core"
	"node-render/math"
	"node-render/node"
	"node-render/opengl"
)

// RunNodeAccelerated renders n at the start of r into a texture described
// by params and pushes it onto out. Inputs are read from db. A node that
// fails to compile pushes nothing.
func (e *Engine) RunNodeAccelerated(n node.Node, r node.TimeRange, db node.ValueDatabase, out *node.ValueTable, params core.VideoParams) error {
	if !e.ready {
		return ErrNotInitialized
	}

	key := n.ShaderID(db)
	shader, err := e.shaders.GetOrCompile(key, n.ShaderVertexCode(db), n.ShaderFragmentCode(db))
	if err != nil {
		return fmt.Errorf("node %s: %w", n.ID(), err)
	}

	iterations := n.ShaderIterations()
	if iterations < 1 {
		iterations = 1
	}

	first, err := e.pool.Get(e.ctx, params)
	if err != nil {
		return fmt.Errorf("node %s: %w", n.ID(), err)
	}
	dst := []*opengl.TextureRef{first}
	if iterations > 1 {
		if n.ShaderIterativeInput() != nil {
			second, err := e.pool.Get(e.ctx, params)
			if err != nil {
				first.Release()
				return fmt.Errorf("node %s: %w", n.ID(), err)
			}
			dst = append(dst, second)
		} else {
			// Every pass samples the texture it is drawing into.
			e.logger().Debug("iterating without a feedback input reuses one texture",
				"node", n.ID(), "iterations", iterations)
		}
	}

	shader.Bind()

	b := &binder{e: e, shader: shader, n: n, db: db}
	bound := 0
	fail := func(err error) error {
		b.unbindTextures(max(bound, b.units))
		shader.Release()
		for _, d := range dst {
			d.Release()
		}
		return fmt.Errorf("node %s: %w", n.ID(), err)
	}
	if err := b.bindInputs(); err != nil {
		return fail(err)
	}

	e.f.Viewport(0, 0, params.EffectiveWidth(), params.EffectiveHeight())
	shader.SetVec2ByName("ove_resolution", math.NewVec2(float32(params.Width), float32(params.Height)))
	if t, ok := n.(node.Transition); ok {
		shader.SetFloatByName("ove_tprog_all", float32(t.TotalProgress(r.In)))
		shader.SetFloatByName("ove_tprog_out", float32(t.OutProgress(r.In)))
		shader.SetFloatByName("ove_tprog_in", float32(t.InProgress(r.In)))
	}

	// Passes after the first rebind the feedback unit, which may not have
	// been bound by any input.
	bound = b.units
	if iterations > 1 && b.feedbackUnit >= bound {
		bound = b.feedbackUnit + 1
	}

	var result *opengl.TextureRef
	for i := 0; i < iterations; i++ {
		source := dst[(i+1)%len(dst)]
		target := dst[i%len(dst)]

		shader.Bind()
		shader.SetIntByName("ove_iteration", i)

		if i > 0 {
			e.f.ActiveTexture(opengl.TEXTURE0 + opengl.Enum(b.feedbackUnit))
			e.f.BindTexture(opengl.TEXTURE_2D, source.Texture().ID())
		}

		if err := e.draw(shader, target.Texture(), math.Mat4Identity()); err != nil {
			return fail(fmt.Errorf("pass %d: %w", i, err))
		}
		result = target
	}

	b.unbindTextures(bound)
	shader.Release()

	for _, d := range dst {
		if d != result {
			d.Release()
		}
	}

	out.Push(node.Value{Type: node.DataTexture, Data: result})
	return nil
}

// draw runs one full frame buffer cycle: attach target, bind, blit through
// s with matrix, release and detach.
func (e *Engine) draw(s *opengl.Shader, target *opengl.Texture, matrix math.Mat4) error {
	if err := e.buffer.Attach(target, e.cfg.ClearOnAttach); err != nil {
		return err
	}
	if err := e.buffer.Bind(); err != nil {
		e.buffer.Detach()
		return err
	}
	e.blitter.Blit(s, false, matrix)
	e.buffer.Release()
	e.buffer.Detach()
	return nil
}
