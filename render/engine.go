// Package render evaluates graph nodes on the GPU. An Engine owns one GPU
// context together with its texture pool, compiled shaders, color
// pipelines and the frame buffer every pass draws through.
//
// An Engine is not safe for concurrent use. It must be initialized and
// driven from a single OS thread, locked with runtime.LockOSThread.
package render

import (
	"errors"
	"fmt"
	"log/slog"

	"node-render/core"
	"node-render/opengl"
)

var (
	// ErrNotInitialized is returned by operations on an engine whose
	// initialization has not completed or has failed.
	ErrNotInitialized = errors.New("render engine not initialized")
	// ErrContextCreate is returned when the GPU context cannot be created
	// or made current.
	ErrContextCreate = errors.New("GPU context creation failed")
)

// Platform creates GPU contexts and loads their function tables.
type Platform interface {
	CreateContext() (opengl.Context, error)
	LoadFunctions(ctx opengl.Context) (opengl.Functions, error)
}

// Engine renders nodes into pooled textures.
type Engine struct {
	platform Platform
	cfg      core.Config

	ctx         opengl.Context
	f           opengl.Functions
	pool        *opengl.TexturePool
	shaders     *opengl.ShaderCache
	colors      *ColorCache
	buffer      *opengl.FrameBuffer
	blitter     *opengl.Blitter
	copyProgram *opengl.Shader

	ready bool
}

// New returns an engine that has not touched the GPU yet. Call Init and then
// FinishInit on the thread that will drive it.
func New(platform Platform, cfg core.Config) *Engine {
	return &Engine{
		platform: platform,
		cfg:      cfg,
	}
}

// Init creates the engine's GPU context.
func (e *Engine) Init() error {
	if e.ctx != nil {
		return nil
	}
	ctx, err := e.platform.CreateContext()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrContextCreate, err)
	}
	e.ctx = ctx
	return nil
}

// FinishInit binds the context to the calling thread and creates every
// GPU-side resource. On failure the engine is torn down and unusable.
func (e *Engine) FinishInit() error {
	if e.ctx == nil {
		return ErrNotInitialized
	}
	if e.ready {
		return nil
	}
	if err := e.finishInit(); err != nil {
		e.Close()
		return err
	}
	e.ready = true
	return nil
}

func (e *Engine) finishInit() error {
	if err := e.ctx.MakeCurrent(); err != nil {
		return fmt.Errorf("%w: make current: %w", ErrContextCreate, err)
	}
	f, err := e.platform.LoadFunctions(e.ctx)
	if err != nil {
		return fmt.Errorf("load functions: %w", err)
	}
	e.f = f
	e.logger().Info("GPU context ready", "version", f.GetString(opengl.VERSION), "renderer", f.GetString(opengl.RENDERER))

	f.BlendFunc(opengl.ONE, opengl.ZERO)

	e.buffer = opengl.NewFrameBuffer(f, e.ctx)
	e.blitter = opengl.NewBlitter(f)
	e.copyProgram, err = opengl.CreateDefault(f, e.ctx)
	if err != nil {
		return fmt.Errorf("copy program: %w", err)
	}

	e.pool, err = opengl.NewTexturePool(f, e.ctx, opengl.PoolOptions{
		UploadCacheSize: e.cfg.UploadCacheSize,
		MaxFreeTextures: e.cfg.MaxFreeTextures,
	})
	if err != nil {
		return err
	}
	e.shaders = opengl.NewShaderCache(f, e.ctx)
	e.colors = NewColorCache(f, e.ctx)
	return nil
}

// Close releases every GPU resource and then destroys the context. Cached
// resources go first since they are invalid once the context is gone.
// Close is safe to call more than once.
func (e *Engine) Close() {
	e.ready = false
	if e.shaders != nil {
		e.shaders.Clear()
		e.shaders = nil
	}
	if e.colors != nil {
		e.colors.Destroy()
		e.colors = nil
	}
	if e.pool != nil {
		e.pool.Destroy()
		e.pool = nil
	}
	if e.buffer != nil {
		e.buffer.Destroy()
		e.buffer = nil
	}
	if e.blitter != nil {
		e.blitter.Destroy()
		e.blitter = nil
	}
	if e.copyProgram != nil {
		e.copyProgram.Destroy()
		e.copyProgram = nil
	}
	e.f = nil
	if e.ctx != nil {
		e.ctx.Destroy()
		e.ctx = nil
	}
}

// Context returns the engine's GPU context, nil before Init.
func (e *Engine) Context() opengl.Context { return e.ctx }

// Pool returns the engine's texture pool, nil until FinishInit succeeds.
func (e *Engine) Pool() *opengl.TexturePool { return e.pool }

func (e *Engine) checkTexture(ref *opengl.TextureRef) error {
	if ref != nil && ref.Context() != e.ctx {
		return fmt.Errorf("texture %d: %w", ref.Texture().ID(), opengl.ErrContextMismatch)
	}
	return nil
}

// logger resolves the shared logger on every call so SetLogger takes effect
// on existing instances.
func (e *Engine) logger() *slog.Logger {
	return core.Logger().With("component", "engine")
}
