// Package opengl holds the GPU-side building blocks of the render core: a
// function table abstracting the driver, a reference-counted texture pool, a
// compiled shader cache, the reusable frame buffer target and blit helpers.
//
// Nothing here is safe for concurrent use. Every object belongs to exactly
// one Context and must only be touched from the OS thread on which that
// context is current.
package opengl

import "errors"

// Context is one GPU command stream. All resources created by this package
// remember the Context they were created in and refuse to be used with
// another.
type Context interface {
	// MakeCurrent binds the context to the calling OS thread.
	MakeCurrent() error
	// Destroy frees the context. Resources created in it become invalid.
	Destroy()
}

var (
	// ErrInvalidDescriptor is returned for texture descriptors with
	// non-positive dimensions.
	ErrInvalidDescriptor = errors.New("invalid texture descriptor")
	// ErrCompile is returned when a shader stage fails to compile or link.
	ErrCompile = errors.New("shader compilation failed")
	// ErrContextMismatch is returned when a resource is used with a context
	// other than the one it was created in.
	ErrContextMismatch = errors.New("resource belongs to a different context")
	// ErrFrameBufferState is returned for out-of-order frame buffer use.
	ErrFrameBufferState = errors.New("frame buffer used out of order")
)
