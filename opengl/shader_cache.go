package opengl

import (
	"fmt"
	"log/slog"

	"node-render/core"
)

// ShaderCache owns compiled programs keyed by a shader identity string.
// Failed compilations are never cached.
type ShaderCache struct {
	f       Functions
	ctx     Context
	shaders map[string]*Shader
}

func NewShaderCache(f Functions, ctx Context) *ShaderCache {
	return &ShaderCache{
		f:       f,
		ctx:     ctx,
		shaders: make(map[string]*Shader),
	}
}

// GetOrCompile returns the program cached under key, compiling it from
// vertSrc and fragSrc on a miss.
func (c *ShaderCache) GetOrCompile(key, vertSrc, fragSrc string) (*Shader, error) {
	if s, ok := c.shaders[key]; ok {
		return s, nil
	}
	s, err := NewShader(c.f, c.ctx, vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", key, err)
	}
	c.logger().Debug("shader compiled", "key", key, "program", s.Program())
	c.shaders[key] = s
	return s, nil
}

// Get returns the program cached under key, if any.
func (c *ShaderCache) Get(key string) (*Shader, bool) {
	s, ok := c.shaders[key]
	return s, ok
}

func (c *ShaderCache) Len() int { return len(c.shaders) }

// Clear deletes every cached program.
func (c *ShaderCache) Clear() {
	for key, s := range c.shaders {
		s.destroy()
		delete(c.shaders, key)
	}
}

func (c *ShaderCache) logger() *slog.Logger {
	return core.Logger().With("component", "shader-cache")
}
