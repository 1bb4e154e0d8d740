package core

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"
)

// Frame is a decoded CPU image. Rows may be padded: Linesize is the byte
// distance between the starts of two consecutive rows.
type Frame struct {
	width    int
	height   int
	format   PixelFormat
	linesize int
	data     []byte

	sampleAspectRatio Rational
}

// NewFrame allocates a tightly packed frame.
func NewFrame(width, height int, format PixelFormat) *Frame {
	return NewFrameWithStride(width, height, format, width)
}

// NewFrameWithStride allocates a frame whose rows are linesizePixels pixels
// apart. linesizePixels smaller than width is raised to width.
func NewFrameWithStride(width, height int, format PixelFormat, linesizePixels int) *Frame {
	if linesizePixels < width {
		linesizePixels = width
	}
	linesize := linesizePixels * format.BytesPerPixel()
	return &Frame{
		width:             width,
		height:            height,
		format:            format,
		linesize:          linesize,
		data:              make([]byte, linesize*height),
		sampleAspectRatio: NewRational(1, 1),
	}
}

func (f *Frame) Width() int          { return f.width }
func (f *Frame) Height() int         { return f.height }
func (f *Frame) Format() PixelFormat { return f.format }
func (f *Frame) Data() []byte        { return f.data }
func (f *Frame) Linesize() int       { return f.linesize }

// LinesizePixels is the row stride expressed in pixels, as consumed by
// GL_PACK_ROW_LENGTH and GL_UNPACK_ROW_LENGTH.
func (f *Frame) LinesizePixels() int {
	bpp := f.format.BytesPerPixel()
	if bpp == 0 {
		return 0
	}
	return f.linesize / bpp
}

// VideoParams describes the frame at full resolution.
func (f *Frame) VideoParams() VideoParams {
	return NewVideoParams(f.width, f.height, f.format, 1)
}

func (f *Frame) SampleAspectRatio() Rational { return f.sampleAspectRatio }

func (f *Frame) SetSampleAspectRatio(r Rational) { f.sampleAspectRatio = r }

// Clone returns a deep copy of the frame with the same stride.
func (f *Frame) Clone() *Frame {
	out := *f
	out.data = append([]byte(nil), f.data...)
	return &out
}

func (f *Frame) offset(x, y int) int {
	return y*f.linesize + x*f.format.BytesPerPixel()
}

// Pixel returns the pixel at (x, y) normalized to float RGBA. Formats
// without alpha report an alpha of 1.
func (f *Frame) Pixel(x, y int) [4]float32 {
	px := [4]float32{0, 0, 0, 1}
	off := f.offset(x, y)
	bpc := f.format.BytesPerChannel()
	for c := 0; c < f.format.Channels(); c++ {
		px[c] = readChannel(f.data[off+c*bpc:], f.format)
	}
	return px
}

// SetPixel stores a float RGBA value at (x, y). Alpha is dropped for formats
// without an alpha channel and integer formats are clamped to [0, 1].
func (f *Frame) SetPixel(x, y int, px [4]float32) {
	off := f.offset(x, y)
	bpc := f.format.BytesPerChannel()
	for c := 0; c < f.format.Channels(); c++ {
		writeChannel(f.data[off+c*bpc:], f.format, px[c])
	}
}

func readChannel(b []byte, format PixelFormat) float32 {
	switch format {
	case PixFmtRGB8, PixFmtRGBA8:
		return float32(b[0]) / 255
	case PixFmtRGB16U, PixFmtRGBA16U:
		return float32(binary.NativeEndian.Uint16(b)) / 65535
	case PixFmtRGB16F, PixFmtRGBA16F:
		return float16.Frombits(binary.NativeEndian.Uint16(b)).Float32()
	case PixFmtRGB32F, PixFmtRGBA32F:
		return math.Float32frombits(binary.NativeEndian.Uint32(b))
	}
	return 0
}

func writeChannel(b []byte, format PixelFormat, v float32) {
	switch format {
	case PixFmtRGB8, PixFmtRGBA8:
		b[0] = uint8(math.Round(float64(clamp01(v)) * 255))
	case PixFmtRGB16U, PixFmtRGBA16U:
		binary.NativeEndian.PutUint16(b, uint16(math.Round(float64(clamp01(v))*65535)))
	case PixFmtRGB16F, PixFmtRGBA16F:
		binary.NativeEndian.PutUint16(b, float16.Fromfloat32(v).Bits())
	case PixFmtRGB32F, PixFmtRGBA32F:
		binary.NativeEndian.PutUint32(b, math.Float32bits(v))
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ConvertPixelFormat returns frame re-encoded as format. The frame itself is
// returned when it already has that format.
func ConvertPixelFormat(frame *Frame, format PixelFormat) (*Frame, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("convert to %v: unsupported format", format)
	}
	if frame.format == format {
		return frame, nil
	}
	out := NewFrame(frame.width, frame.height, format)
	out.sampleAspectRatio = frame.sampleAspectRatio
	for y := 0; y < frame.height; y++ {
		for x := 0; x < frame.width; x++ {
			out.SetPixel(x, y, frame.Pixel(x, y))
		}
	}
	return out, nil
}

// DisassociateAlpha divides color by alpha, turning premultiplied pixels
// into straight ones. Pixels with zero alpha are left untouched.
func DisassociateAlpha(frame *Frame) {
	mapAlpha(frame, func(px *[4]float32) {
		if px[3] > 0 {
			px[0] /= px[3]
			px[1] /= px[3]
			px[2] /= px[3]
		}
	})
}

// ReassociateAlpha undoes DisassociateAlpha, multiplying color back by alpha
// wherever alpha is non-zero.
func ReassociateAlpha(frame *Frame) {
	mapAlpha(frame, func(px *[4]float32) {
		if px[3] > 0 {
			px[0] *= px[3]
			px[1] *= px[3]
			px[2] *= px[3]
		}
	})
}

// AssociateAlpha premultiplies straight alpha pixels.
func AssociateAlpha(frame *Frame) {
	mapAlpha(frame, func(px *[4]float32) {
		px[0] *= px[3]
		px[1] *= px[3]
		px[2] *= px[3]
	})
}

func mapAlpha(frame *Frame, fn func(px *[4]float32)) {
	if !frame.format.HasAlpha() {
		return
	}
	for y := 0; y < frame.height; y++ {
		for x := 0; x < frame.width; x++ {
			px := frame.Pixel(x, y)
			fn(&px)
			frame.SetPixel(x, y, px)
		}
	}
}
