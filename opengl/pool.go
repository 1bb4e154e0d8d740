package opengl

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru"

	"node-render/core"
)

// PoolOptions tunes a TexturePool.
type PoolOptions struct {
	// UploadCacheSize is the number of CPU frames whose uploads stay cached.
	// 0 disables the upload cache.
	UploadCacheSize int
	// MaxFreeTextures caps released textures kept per descriptor.
	MaxFreeTextures int
}

// PoolStats is a snapshot of a pool's arena.
type PoolStats struct {
	Live   int // slots with at least one reference
	Free   int // released textures waiting for reuse
	Cached int // frames in the upload cache
}

// TexturePool hands out reference-counted textures from an arena of slots.
// Released slots are kept on a free list keyed by descriptor and reused by
// later requests for the same descriptor.
type TexturePool struct {
	f      Functions
	ctx    Context
	opts   PoolOptions
	slots  []textureSlot
	free   map[core.VideoParams][]int
	vacant []int

	// uploads maps *core.Frame to a pool-owned *TextureRef.
	uploads *lru.Cache

	destroyed bool
}

type textureSlot struct {
	tex  *Texture
	refs int
}

func NewTexturePool(f Functions, ctx Context, opts PoolOptions) (*TexturePool, error) {
	p := &TexturePool{
		f:    f,
		ctx:  ctx,
		opts: opts,
		free: make(map[core.VideoParams][]int),
	}
	if opts.UploadCacheSize > 0 {
		c, err := lru.NewWithEvict(opts.UploadCacheSize, func(_, value interface{}) {
			value.(*TextureRef).Release()
		})
		if err != nil {
			return nil, fmt.Errorf("upload cache: %w", err)
		}
		p.uploads = c
	}
	return p, nil
}

// Get returns a texture matching params without uploading anything. Two
// calls with no intervening release never return the same texture.
func (p *TexturePool) Get(ctx Context, params core.VideoParams) (*TextureRef, error) {
	if err := p.check(ctx, params); err != nil {
		return nil, err
	}
	return p.acquire(params, nil, 0), nil
}

// Upload returns a texture holding frame's pixels, bypassing the upload
// cache. Use it for frames that are never presented twice.
func (p *TexturePool) Upload(ctx Context, frame *core.Frame) (*TextureRef, error) {
	params := frame.VideoParams()
	if err := p.check(ctx, params); err != nil {
		return nil, err
	}
	return p.acquire(params, frame.Data(), frame.LinesizePixels()), nil
}

// GetFrame returns a texture holding frame's pixels. A frame seen recently
// is served from the upload cache: the returned reference then aliases the
// cached texture and must be treated as read-only.
func (p *TexturePool) GetFrame(ctx Context, frame *core.Frame) (*TextureRef, error) {
	if p.uploads != nil && ctx == p.ctx {
		if v, ok := p.uploads.Get(frame); ok {
			p.logger().Debug("upload cache hit", "frame", fmt.Sprintf("%p", frame))
			return p.share(v.(*TextureRef)), nil
		}
	}
	ref, err := p.Upload(ctx, frame)
	if err != nil {
		return nil, err
	}
	if p.uploads != nil {
		p.uploads.Add(frame, p.share(ref))
	}
	return ref, nil
}

func (p *TexturePool) check(ctx Context, params core.VideoParams) error {
	if p.destroyed {
		return fmt.Errorf("texture pool: %w", ErrContextMismatch)
	}
	if ctx != p.ctx {
		return fmt.Errorf("texture pool: %w", ErrContextMismatch)
	}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	return nil
}

func (p *TexturePool) acquire(params core.VideoParams, data []byte, linesizePixels int) *TextureRef {
	if free := p.free[params]; len(free) > 0 {
		idx := free[len(free)-1]
		p.free[params] = free[:len(free)-1]
		slot := &p.slots[idx]
		slot.refs = 1
		if data != nil {
			slot.tex.Upload(data, linesizePixels)
		}
		p.logger().Debug("texture reused", "params", params, "slot", idx)
		return &TextureRef{pool: p, slot: idx, tex: slot.tex}
	}

	tex := newTexture(p.f, p.ctx, params, data, linesizePixels)
	var idx int
	if n := len(p.vacant); n > 0 {
		idx = p.vacant[n-1]
		p.vacant = p.vacant[:n-1]
		p.slots[idx] = textureSlot{tex: tex, refs: 1}
	} else {
		idx = len(p.slots)
		p.slots = append(p.slots, textureSlot{tex: tex, refs: 1})
	}
	p.logger().Debug("texture allocated", "params", params, "slot", idx, "id", tex.ID())
	return &TextureRef{pool: p, slot: idx, tex: tex}
}

// share clones ref. Only the pool aliases textures.
func (p *TexturePool) share(ref *TextureRef) *TextureRef {
	p.slots[ref.slot].refs++
	return &TextureRef{pool: p, slot: ref.slot, tex: ref.tex}
}

func (p *TexturePool) release(idx int) {
	if p.destroyed {
		return
	}
	slot := &p.slots[idx]
	slot.refs--
	if slot.refs > 0 {
		return
	}
	params := slot.tex.Params()
	if len(p.free[params]) < p.opts.MaxFreeTextures {
		p.free[params] = append(p.free[params], idx)
		return
	}
	slot.tex.destroy()
	p.slots[idx] = textureSlot{}
	p.vacant = append(p.vacant, idx)
}

func (p *TexturePool) Stats() PoolStats {
	var s PoolStats
	for _, slot := range p.slots {
		if slot.refs > 0 {
			s.Live++
		}
	}
	for _, free := range p.free {
		s.Free += len(free)
	}
	if p.uploads != nil {
		s.Cached = p.uploads.Len()
	}
	return s
}

// Destroy drops the upload cache and deletes every texture, including ones
// still referenced. Outstanding references become inert.
func (p *TexturePool) Destroy() {
	if p.destroyed {
		return
	}
	if p.uploads != nil {
		p.uploads.Purge()
	}
	p.destroyed = true
	for i := range p.slots {
		if p.slots[i].tex != nil {
			p.slots[i].tex.destroy()
		}
	}
	p.slots = nil
	p.free = nil
	p.vacant = nil
}

// TextureRef pins one pooled texture. Release it once done so the texture
// can be reused.
type TextureRef struct {
	pool     *TexturePool
	slot     int
	tex      *Texture
	released bool
}

func (r *TextureRef) Texture() *Texture { return r.tex }

func (r *TextureRef) Context() Context { return r.tex.ctx }

// Release drops this reference. Releasing twice is a no-op.
func (r *TextureRef) Release() {
	if r == nil {
		return
	}
	if r.released {
		r.pool.logger().Warn("texture reference released twice", "slot", r.slot)
		return
	}
	r.released = true
	r.pool.release(r.slot)
}

// logger resolves the shared logger on every call so SetLogger takes effect
// on existing instances.
func (p *TexturePool) logger() *slog.Logger {
	return core.Logger().With("component", "texture-pool")
}
