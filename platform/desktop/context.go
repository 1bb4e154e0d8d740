// Package desktop runs the render core on a real driver: each context is
// owned by a hidden glfw window and driven through go-gl.
//
// glfw requires window creation on the main thread on some systems, so
// CreateContext should be called from the main goroutine with the OS thread
// locked. The returned context may then be made current on any thread.
package desktop

import (
	"fmt"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"

	"node-render/opengl"
)

var (
	glfwMu   sync.Mutex
	glfwRefs int
)

func acquireGLFW() error {
	glfwMu.Lock()
	defer glfwMu.Unlock()
	if glfwRefs == 0 {
		if err := glfw.Init(); err != nil {
			return fmt.Errorf("failed to initialize GLFW: %w", err)
		}
	}
	glfwRefs++
	return nil
}

func releaseGLFW() {
	glfwMu.Lock()
	defer glfwMu.Unlock()
	glfwRefs--
	if glfwRefs == 0 {
		glfw.Terminate()
	}
}

// Context is an OpenGL 4.1 core context backed by an invisible window.
type Context struct {
	window *glfw.Window
}

// MakeCurrent binds the context to the calling OS thread. The caller must
// keep the goroutine locked to that thread while using it.
func (c *Context) MakeCurrent() error {
	if c.window == nil {
		return fmt.Errorf("make current: context destroyed")
	}
	c.window.MakeContextCurrent()
	return nil
}

func (c *Context) Destroy() {
	if c.window == nil {
		return
	}
	if glfw.GetCurrentContext() == c.window {
		glfw.DetachCurrentContext()
	}
	c.window.Destroy()
	c.window = nil
	releaseGLFW()
}

// Platform creates desktop contexts. The zero value is ready to use.
type Platform struct{}

func (Platform) CreateContext() (opengl.Context, error) {
	if err := acquireGLFW(); err != nil {
		return nil, err
	}

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	// The window is never drawn to; all rendering targets textures.
	window, err := glfw.CreateWindow(1, 1, "node-render", nil, nil)
	if err != nil {
		releaseGLFW()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	return &Context{window: window}, nil
}

// LoadFunctions resolves the driver entry points. ctx must be current.
func (Platform) LoadFunctions(ctx opengl.Context) (opengl.Functions, error) {
	if _, ok := ctx.(*Context); !ok {
		return nil, fmt.Errorf("load functions: %T is not a desktop context", ctx)
	}
	return loadFunctions()
}
