package render

import (
	"fmt"
	stdmath "math"

	"node-render/color"
	"node-render/core"
	"node-render/math"
	"node-render/node"
	"node-render/opengl"
)

// FrameToValue uploads frame as a texture in the reference color space.
// The stream's manager picks the method for mode: the accurate method
// converts on the CPU before upload, the fast method uploads the raw frame
// and converts it on the GPU into a texture of params.Format, correcting
// for non-square pixels on the way.
func (e *Engine) FrameToValue(frame *core.Frame, stream color.Stream, params core.VideoParams, mode color.Mode) (node.Value, error) {
	if !e.ready {
		return node.Value{}, ErrNotInitialized
	}
	if stream.Manager == nil {
		return node.Value{}, fmt.Errorf("frame to value: stream has no color manager")
	}

	proc, err := e.colors.GetOrCreate(stream.MatchString(), stream.Manager,
		stream.ColorSpace, stream.Manager.ReferenceColorSpace())
	if err != nil {
		return node.Value{}, err
	}

	if stream.Manager.MethodForMode(mode) == color.MethodAccurate {
		converted, err := convertAccurate(frame, stream.Premultiplied, proc)
		if err != nil {
			return node.Value{}, err
		}
		ref, err := e.pool.Upload(e.ctx, converted)
		if err != nil {
			return node.Value{}, err
		}
		return node.Value{Type: node.DataTexture, Data: ref}, nil
	}

	raw, err := e.pool.GetFrame(e.ctx, frame)
	if err != nil {
		return node.Value{}, err
	}
	defer raw.Release()

	if !proc.IsEnabled() {
		if err := proc.Enable(stream.Premultiplied); err != nil {
			return node.Value{}, err
		}
	}

	fp := correctAspect(frame.VideoParams(), frame.SampleAspectRatio())
	dst, err := e.pool.Get(e.ctx, core.NewVideoParams(fp.Width, fp.Height, params.Format, fp.Divider))
	if err != nil {
		return node.Value{}, err
	}

	if err := e.buffer.Attach(dst.Texture(), e.cfg.ClearOnAttach); err != nil {
		dst.Release()
		return node.Value{}, err
	}
	if err := e.buffer.Bind(); err != nil {
		e.buffer.Detach()
		dst.Release()
		return node.Value{}, err
	}
	e.f.ActiveTexture(opengl.TEXTURE0)
	raw.Texture().Bind()
	e.f.Viewport(0, 0, dst.Texture().Width(), dst.Texture().Height())

	err = proc.Process(e.blitter)

	raw.Texture().Release()
	e.buffer.Release()
	e.buffer.Detach()

	if err != nil {
		dst.Release()
		return node.Value{}, err
	}
	return node.Value{Type: node.DataTexture, Data: dst}, nil
}

// convertAccurate returns a float copy of frame with the color transform
// applied and alpha associated. frame is left untouched.
func convertAccurate(frame *core.Frame, premultiplied bool, proc *ColorProcessor) (*core.Frame, error) {
	hasAlpha := frame.Format().HasAlpha()
	format := core.PixFmtRGB32F
	if hasAlpha {
		format = core.PixFmtRGBA32F
	}
	converted, err := core.ConvertPixelFormat(frame, format)
	if err != nil {
		return nil, err
	}
	if converted == frame {
		converted = frame.Clone()
	}

	if hasAlpha && premultiplied {
		core.DisassociateAlpha(converted)
	}
	if err := proc.ConvertFrame(converted); err != nil {
		return nil, err
	}
	if hasAlpha {
		if premultiplied {
			core.ReassociateAlpha(converted)
		} else {
			core.AssociateAlpha(converted)
		}
	}
	return converted, nil
}

// correctAspect stretches p so that non-square pixels display at their
// intended shape without losing resolution: wide pixels widen the image,
// tall ones heighten it.
func correctAspect(p core.VideoParams, sar core.Rational) core.VideoParams {
	if sar.IsNull() || sar.Num == sar.Den {
		return p
	}
	ratio := sar.Float64()
	if ratio > 1 {
		p.Width = int(stdmath.Round(float64(p.Width) * ratio))
	} else {
		p.Height = int(stdmath.Round(float64(p.Height) / ratio))
	}
	return p
}

// PreCachedFrameToValue uploads frame without any color handling.
func (e *Engine) PreCachedFrameToValue(frame *core.Frame) (node.Value, error) {
	if !e.ready {
		return node.Value{}, ErrNotInitialized
	}
	ref, err := e.pool.GetFrame(e.ctx, frame)
	if err != nil {
		return node.Value{}, err
	}
	return node.Value{Type: node.DataTexture, Data: ref}, nil
}

// TextureToBuffer reads the texture held by v into frame. When sizes
// differ the texture is first drawn into a frame-sized texture through the
// copy program, transformed by m. A value without a texture is ignored.
func (e *Engine) TextureToBuffer(v node.Value, frame *core.Frame, m math.Mat4) error {
	if !e.ready {
		return ErrNotInitialized
	}
	ref, _ := v.Data.(*opengl.TextureRef)
	if ref == nil {
		return nil
	}
	if err := e.checkTexture(ref); err != nil {
		return err
	}

	e.f.Viewport(0, 0, frame.Width(), frame.Height())

	download := ref.Texture()
	if frame.Width() != download.Width() || frame.Height() != download.Height() {
		resized, err := e.pool.Get(e.ctx, frame.VideoParams())
		if err != nil {
			return fmt.Errorf("resize target: %w", err)
		}
		defer resized.Release()

		e.f.ActiveTexture(opengl.TEXTURE0)
		download.Bind()
		err = e.draw(e.copyProgram, resized.Texture(), m)
		download.Release()
		if err != nil {
			return err
		}
		download = resized.Texture()
	}

	if err := e.buffer.Attach(download, false); err != nil {
		return err
	}
	if err := e.buffer.Bind(); err != nil {
		e.buffer.Detach()
		return err
	}

	restore := opengl.StoreRows(e.f, true, frame.LinesizePixels())
	e.f.ReadPixels(0, 0, frame.Width(), frame.Height(),
		opengl.PixelFormat(frame.Format()), opengl.PixelType(frame.Format()), frame.Data())
	restore()

	e.buffer.Release()
	e.buffer.Detach()
	return nil
}
