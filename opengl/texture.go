package opengl

import (
	"node-render/core"
)

// Texture is a 2D GPU texture sized to the effective (divider-scaled)
// dimensions of its VideoParams.
type Texture struct {
	f      Functions
	ctx    Context
	id     uint32
	params core.VideoParams
}

// newTexture allocates storage for params and uploads data if non-nil. Rows
// of data are linesizePixels pixels apart.
func newTexture(f Functions, ctx Context, params core.VideoParams, data []byte, linesizePixels int) *Texture {
	t := &Texture{f: f, ctx: ctx, params: params}
	t.id = f.CreateTexture()
	f.BindTexture(TEXTURE_2D, t.id)

	f.TexParameteri(TEXTURE_2D, TEXTURE_MIN_FILTER, int(LINEAR))
	f.TexParameteri(TEXTURE_2D, TEXTURE_MAG_FILTER, int(LINEAR))
	f.TexParameteri(TEXTURE_2D, TEXTURE_WRAP_S, int(CLAMP_TO_EDGE))
	f.TexParameteri(TEXTURE_2D, TEXTURE_WRAP_T, int(CLAMP_TO_EDGE))

	restore := func() {}
	if data != nil {
		restore = StoreRows(f, false, linesizePixels)
	}
	f.TexImage2D(TEXTURE_2D, 0, InternalFormat(params.Format),
		t.Width(), t.Height(), PixelFormat(params.Format), PixelType(params.Format), data)
	restore()

	f.BindTexture(TEXTURE_2D, 0)
	return t
}

// Upload replaces the texture's pixels. data must match the texture's
// format and effective size; its rows are linesizePixels pixels apart.
func (t *Texture) Upload(data []byte, linesizePixels int) {
	t.f.BindTexture(TEXTURE_2D, t.id)
	restore := StoreRows(t.f, false, linesizePixels)
	t.f.TexSubImage2D(TEXTURE_2D, 0, 0, 0, t.Width(), t.Height(),
		PixelFormat(t.params.Format), PixelType(t.params.Format), data)
	restore()
	t.f.BindTexture(TEXTURE_2D, 0)
}

// defaultAlignment is the initial UNPACK_ALIGNMENT and PACK_ALIGNMENT.
const defaultAlignment = 4

// StoreRows sets up the pixel store for a client buffer whose rows start
// every rowLength pixels with no padding, for uploads or, with pack set,
// for reads. Frame rows are packed to the byte, so alignment drops to 1.
// The returned func restores the defaults.
func StoreRows(f Functions, pack bool, rowLength int) (restore func()) {
	length, align := UNPACK_ROW_LENGTH, UNPACK_ALIGNMENT
	if pack {
		length, align = PACK_ROW_LENGTH, PACK_ALIGNMENT
	}
	f.PixelStorei(align, 1)
	f.PixelStorei(length, rowLength)
	return func() {
		f.PixelStorei(length, 0)
		f.PixelStorei(align, defaultAlignment)
	}
}

// Bind binds the texture to the active texture unit.
func (t *Texture) Bind() {
	t.f.BindTexture(TEXTURE_2D, t.id)
}

// Release unbinds whatever texture is bound to the active unit.
func (t *Texture) Release() {
	t.f.BindTexture(TEXTURE_2D, 0)
}

func (t *Texture) ID() uint32               { return t.id }
func (t *Texture) Context() Context         { return t.ctx }
func (t *Texture) Params() core.VideoParams { return t.params }
func (t *Texture) Format() core.PixelFormat { return t.params.Format }
func (t *Texture) Divider() int             { return t.params.Divider }
func (t *Texture) Width() int               { return t.params.EffectiveWidth() }
func (t *Texture) Height() int              { return t.params.EffectiveHeight() }

func (t *Texture) destroy() {
	if t.id != 0 {
		t.f.DeleteTexture(t.id)
		t.id = 0
	}
}
