package render

import (
	"fmt"
	"log/slog"

	"node-render/color"
	"node-render/core"
	"node-render/math"
	"node-render/opengl"
)

// ColorProcessor runs one color transform, either over CPU frames or, once
// enabled, as a GPU program.
type ColorProcessor struct {
	f         opengl.Functions
	ctx       opengl.Context
	transform color.Transform
	shader    *opengl.Shader
}

func (p *ColorProcessor) IsEnabled() bool { return p.shader != nil }

// Enable compiles the transform's GPU program. premultiplied describes
// the textures it will be run over. Enabling twice is a no-op.
func (p *ColorProcessor) Enable(premultiplied bool) error {
	if p.shader != nil {
		return nil
	}
	s, err := opengl.NewShader(p.f, p.ctx, "", p.transform.FragmentShader(premultiplied))
	if err != nil {
		return fmt.Errorf("color program: %w", err)
	}
	p.shader = s
	return nil
}

// ConvertFrame transforms a float frame with straight alpha in place.
func (p *ColorProcessor) ConvertFrame(frame *core.Frame) error {
	return p.transform.ConvertFrame(frame)
}

// Process blits the texture bound to unit 0 through the transform into the
// bound frame buffer.
func (p *ColorProcessor) Process(b *opengl.Blitter) error {
	if p.shader == nil {
		return fmt.Errorf("color processor: %w", ErrNotInitialized)
	}
	p.shader.Bind()
	p.shader.SetIntByName("ove_maintex", 0)
	b.Blit(p.shader, false, math.Mat4Identity())
	return nil
}

func (p *ColorProcessor) destroy() {
	if p.shader != nil {
		p.shader.Destroy()
		p.shader = nil
	}
}

// ColorCache keeps one ColorProcessor per color space match string for the
// lifetime of an engine.
type ColorCache struct {
	f          opengl.Functions
	ctx        opengl.Context
	processors map[string]*ColorProcessor
}

func NewColorCache(f opengl.Functions, ctx opengl.Context) *ColorCache {
	return &ColorCache{
		f:          f,
		ctx:        ctx,
		processors: make(map[string]*ColorProcessor),
	}
}

// GetOrCreate returns the processor cached under key, asking m for a
// src to dst transform on a miss.
func (c *ColorCache) GetOrCreate(key string, m color.Manager, src, dst string) (*ColorProcessor, error) {
	if p, ok := c.processors[key]; ok {
		return p, nil
	}
	t, err := m.CreateTransform(src, dst)
	if err != nil {
		return nil, fmt.Errorf("color transform %s: %w", key, err)
	}
	p := &ColorProcessor{f: c.f, ctx: c.ctx, transform: t}
	c.processors[key] = p
	c.logger().Debug("color processor created", "key", key, "src", src, "dst", dst)
	return p, nil
}

func (c *ColorCache) Len() int { return len(c.processors) }

// Destroy deletes the GPU programs of every processor.
func (c *ColorCache) Destroy() {
	for key, p := range c.processors {
		p.destroy()
		delete(c.processors, key)
	}
}

func (c *ColorCache) logger() *slog.Logger {
	return core.Logger().With("component", "color-cache")
}
