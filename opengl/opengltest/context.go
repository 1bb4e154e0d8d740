package opengltest

import "node-render/opengl"

// Context is a fake GPU context.
type Context struct {
	Name string
	// MakeCurrentErr is returned by MakeCurrent when set.
	MakeCurrentErr error

	Current   bool
	Destroyed bool
	// OnDestroy runs inside Destroy, before the context is marked destroyed.
	OnDestroy func()
}

var _ opengl.Context = (*Context)(nil)

func NewContext(name string) *Context {
	return &Context{Name: name}
}

func (c *Context) MakeCurrent() error {
	if c.MakeCurrentErr != nil {
		return c.MakeCurrentErr
	}
	c.Current = true
	return nil
}

func (c *Context) Destroy() {
	if c.OnDestroy != nil {
		c.OnDestroy()
	}
	c.Current = false
	c.Destroyed = true
}
