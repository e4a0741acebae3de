// Package render provides the GL backed pieces of the character view: the
// surface state the delegate configures, the per-session sprite engine and
// texture cache, and the scene view drawing the character with its overlay
// sprites. Import proper image codecs in your main package.
package render

import (
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/gl"
)

// GLSurface holds the GL context handed over by the host. All calls are
// no-ops while no context is bound.
type GLSurface struct {
	glctx gl.Context
	last  gl.Context
	gen   int
	sz    size.Event
}

// NewSurface returns an unbound surface.
func NewSurface() *GLSurface {
	return &GLSurface{}
}

// Bind attaches glctx. A context different from the last bound one starts a
// new generation; resources created for older generations are stale. Bind
// reports whether glctx replaced an earlier context.
func (s *GLSurface) Bind(glctx gl.Context) (replaced bool) {
	if glctx != s.last {
		replaced = s.last != nil
		s.gen++
	}
	s.glctx = glctx
	s.last = glctx
	return replaced
}

// Unbind detaches the context. The generation is kept so that rebinding the
// same context keeps existing GL resources.
func (s *GLSurface) Unbind() {
	s.glctx = nil
}

// Context returns the bound context or nil.
func (s *GLSurface) Context() gl.Context { return s.glctx }

// Generation identifies the bound context.
func (s *GLSurface) Generation() int { return s.gen }

// Resize records the host window configuration.
func (s *GLSurface) Resize(sz size.Event) { s.sz = sz }

// Size returns the last window configuration.
func (s *GLSurface) Size() size.Event { return s.sz }

// ConfigureSampling sets linear texture filtering.
func (s *GLSurface) ConfigureSampling() {
	if s.glctx == nil {
		return
	}
	s.glctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	s.glctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
}

// ConfigureBlending enables blending for premultiplied alpha.
func (s *GLSurface) ConfigureBlending() {
	if s.glctx == nil {
		return
	}
	s.glctx.Enable(gl.BLEND)
	s.glctx.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
}

// Viewport sets the GL viewport.
func (s *GLSurface) Viewport(x, y, width, height int) {
	if s.glctx == nil {
		return
	}
	s.glctx.Viewport(x, y, width, height)
}

// Clear fills the color buffer with the given color and resets depth.
func (s *GLSurface) Clear(r, g, b, a float32) {
	if s.glctx == nil {
		return
	}
	s.glctx.ClearColor(r, g, b, a)
	s.glctx.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	s.glctx.ClearDepthf(1)
}
