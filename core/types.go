package core

import (
	"errors"
	"fmt"
	"strings"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorTransparent = Color{0, 0, 0, 0}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
)

// PixelFormat describes how one pixel of a frame or texture is stored.
type PixelFormat int

const (
	PixFmtInvalid PixelFormat = iota
	PixFmtRGB8
	PixFmtRGBA8
	PixFmtRGB16U
	PixFmtRGBA16U
	PixFmtRGB16F
	PixFmtRGBA16F
	PixFmtRGB32F
	PixFmtRGBA32F
)

var pixelFormatNames = map[PixelFormat]string{
	PixFmtRGB8:    "rgb8",
	PixFmtRGBA8:   "rgba8",
	PixFmtRGB16U:  "rgb16u",
	PixFmtRGBA16U: "rgba16u",
	PixFmtRGB16F:  "rgb16f",
	PixFmtRGBA16F: "rgba16f",
	PixFmtRGB32F:  "rgb32f",
	PixFmtRGBA32F: "rgba32f",
}

func (f PixelFormat) Valid() bool {
	_, ok := pixelFormatNames[f]
	return ok
}

func (f PixelFormat) String() string {
	if name, ok := pixelFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// HasAlpha reports whether the format stores an alpha channel.
func (f PixelFormat) HasAlpha() bool {
	switch f {
	case PixFmtRGBA8, PixFmtRGBA16U, PixFmtRGBA16F, PixFmtRGBA32F:
		return true
	}
	return false
}

func (f PixelFormat) Channels() int {
	if !f.Valid() {
		return 0
	}
	if f.HasAlpha() {
		return 4
	}
	return 3
}

func (f PixelFormat) BytesPerChannel() int {
	switch f {
	case PixFmtRGB8, PixFmtRGBA8:
		return 1
	case PixFmtRGB16U, PixFmtRGBA16U, PixFmtRGB16F, PixFmtRGBA16F:
		return 2
	case PixFmtRGB32F, PixFmtRGBA32F:
		return 4
	}
	return 0
}

func (f PixelFormat) BytesPerPixel() int {
	return f.Channels() * f.BytesPerChannel()
}

func (f PixelFormat) IsFloat() bool {
	switch f {
	case PixFmtRGB16F, PixFmtRGBA16F, PixFmtRGB32F, PixFmtRGBA32F:
		return true
	}
	return false
}

// MarshalText lets pixel formats appear by name in TOML config files.
func (f PixelFormat) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid pixel format %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *PixelFormat) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for k, v := range pixelFormatNames {
		if v == name {
			*f = k
			return nil
		}
	}
	return fmt.Errorf("unknown pixel format %q", name)
}

// Rational is an exact ratio such as a sample aspect ratio.
type Rational struct {
	Num, Den int64
}

func NewRational(num, den int64) Rational {
	return Rational{Num: num, Den: den}
}

// IsNull reports whether the ratio is zero or undefined.
func (r Rational) IsNull() bool {
	return r.Num == 0 || r.Den == 0
}

func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// VideoParams describes a frame or texture: its full-resolution size, pixel
// format and resolution divider. Two VideoParams describe interchangeable
// textures iff they are equal.
type VideoParams struct {
	Width   int
	Height  int
	Format  PixelFormat
	Divider int
}

var errInvalidParams = errors.New("invalid video params")

func NewVideoParams(width, height int, format PixelFormat, divider int) VideoParams {
	return VideoParams{Width: width, Height: height, Format: format, Divider: divider}
}

func (p VideoParams) divider() int {
	if p.Divider < 1 {
		return 1
	}
	return p.Divider
}

// EffectiveWidth is the pixel width after applying the resolution divider.
func (p VideoParams) EffectiveWidth() int {
	return p.Width / p.divider()
}

// EffectiveHeight is the pixel height after applying the resolution divider.
func (p VideoParams) EffectiveHeight() int {
	return p.Height / p.divider()
}

// Validate rejects non-positive dimensions, dividers that would collapse the
// effective size to zero and unknown formats.
func (p VideoParams) Validate() error {
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: non-positive size %dx%d", errInvalidParams, p.Width, p.Height)
	case p.Divider <= 0:
		return fmt.Errorf("%w: non-positive divider %d", errInvalidParams, p.Divider)
	case p.EffectiveWidth() <= 0 || p.EffectiveHeight() <= 0:
		return fmt.Errorf("%w: divider %d collapses %dx%d", errInvalidParams, p.Divider, p.Width, p.Height)
	case !p.Format.Valid():
		return fmt.Errorf("%w: %v", errInvalidParams, p.Format)
	}
	return nil
}

func (p VideoParams) String() string {
	return fmt.Sprintf("%dx%d %v /%d", p.Width, p.Height, p.Format, p.Divider)
}
