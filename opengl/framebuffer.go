package opengl

import (
	"fmt"
	"log/slog"

	"node-render/core"
)

// FrameBuffer is the single render target reused for every pass. A texture
// is attached, the target bound, drawn to, released and detached again;
// nothing stays attached between passes.
type FrameBuffer struct {
	f        Functions
	ctx      Context
	fbo      uint32
	attached *Texture
}

func NewFrameBuffer(f Functions, ctx Context) *FrameBuffer {
	return &FrameBuffer{
		f:   f,
		ctx: ctx,
		fbo: f.CreateFramebuffer(),
	}
}

// Attach makes tex the color attachment, clearing it to transparent black
// when clear is set.
func (fb *FrameBuffer) Attach(tex *Texture, clear bool) error {
	if fb.attached != nil {
		return fmt.Errorf("attach texture %d: %w: texture %d still attached", tex.ID(), ErrFrameBufferState, fb.attached.ID())
	}
	if tex.Context() != fb.ctx {
		return fmt.Errorf("attach texture %d: %w", tex.ID(), ErrContextMismatch)
	}

	fb.f.BindFramebuffer(FRAMEBUFFER, fb.fbo)
	fb.f.FramebufferTexture2D(FRAMEBUFFER, COLOR_ATTACHMENT0, TEXTURE_2D, tex.ID(), 0)
	if s := fb.f.CheckFramebufferStatus(FRAMEBUFFER); s != FRAMEBUFFER_COMPLETE {
		fb.logger().Warn("framebuffer incomplete", "status", fmt.Sprintf("0x%X", uint32(s)), "texture", tex.ID())
	}
	if clear {
		fb.f.ClearColor(0, 0, 0, 0)
		fb.f.Clear(COLOR_BUFFER_BIT)
	}
	fb.f.BindFramebuffer(FRAMEBUFFER, 0)

	fb.attached = tex
	return nil
}

// Bind makes the frame buffer the render destination.
func (fb *FrameBuffer) Bind() error {
	if fb.attached == nil {
		return fmt.Errorf("bind: %w: nothing attached", ErrFrameBufferState)
	}
	fb.f.BindFramebuffer(FRAMEBUFFER, fb.fbo)
	return nil
}

// Release restores the default frame buffer.
func (fb *FrameBuffer) Release() {
	fb.f.BindFramebuffer(FRAMEBUFFER, 0)
}

// Detach removes the color attachment.
func (fb *FrameBuffer) Detach() {
	if fb.attached == nil {
		return
	}
	fb.f.BindFramebuffer(FRAMEBUFFER, fb.fbo)
	fb.f.FramebufferTexture2D(FRAMEBUFFER, COLOR_ATTACHMENT0, TEXTURE_2D, 0, 0)
	fb.f.BindFramebuffer(FRAMEBUFFER, 0)
	fb.attached = nil
}

// Attached returns the attached texture or nil.
func (fb *FrameBuffer) Attached() *Texture { return fb.attached }

// Destroy frees the frame buffer object.
func (fb *FrameBuffer) Destroy() {
	fb.Detach()
	if fb.fbo != 0 {
		fb.f.DeleteFramebuffer(fb.fbo)
		fb.fbo = 0
	}
}

func (fb *FrameBuffer) logger() *slog.Logger {
	return core.Logger().With("component", "framebuffer")
}
