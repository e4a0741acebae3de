// Package delegate forwards host lifecycle, surface, frame and touch events
// to the render framework, the scene view and the scene manager.
//
// All methods are called from the host event loop goroutine; the delegate
// does no locking of its own.
package delegate

import (
	log "github.com/sirupsen/logrus"

	"github.com/pawelkowalak/l2dview/cubism"
)

// Default clear color, opaque white.
var defaultClearColor = [4]float32{1, 1, 1, 1}

// Delegate is the application delegate. Obtain it from a Holder.
type Delegate struct {
	holder *Holder
	deps   Deps
	opt    cubism.Option

	activity Host
	context  Context

	textures     TextureManager
	view         View
	windowWidth  int
	windowHeight int
	active       bool

	clearColor [4]float32

	// Scene index snapshot taken on pause.
	currentModel int

	captured       bool
	mouseX, mouseY float32

	state State
}

func newDelegate(h *Holder, deps Deps) *Delegate {
	d := &Delegate{
		holder:       h,
		deps:         deps,
		active:       true,
		clearColor:   defaultClearColor,
		currentModel: 0,
		opt: cubism.Option{
			LogFunction:  deps.LogFunction,
			LoggingLevel: deps.LogLevel,
		},
	}
	if deps.Framework != nil {
		deps.Framework.CleanUp()
		deps.Framework.StartUp(d.opt)
	}
	return d
}

func (d *Delegate) setState(s State) {
	if d.state == s {
		return
	}
	from := d.state
	d.state = s
	log.WithFields(log.Fields{
		"from": from,
		"to":   s,
	}).Debug("delegate state")
	if d.deps.OnStateChange != nil {
		d.deps.OnStateChange(from, s)
	}
}

// DeactivateApp marks the app inactive; the next Run asks the host to finish.
func (d *Delegate) DeactivateApp() {
	d.active = false
}

// OnStart starts a session inside host and records it as the activity.
func (d *Delegate) OnStart(host Host) {
	d.OnStartWithContext(host)
	d.activity = host
}

// OnStartWithContext starts a session with a fresh texture manager and view.
// When ctx is also a Host it becomes the activity.
func (d *Delegate) OnStartWithContext(ctx Context) {
	if d.deps.NewTextures != nil {
		d.textures = d.deps.NewTextures()
	}
	if d.deps.NewView != nil {
		d.view = d.deps.NewView(d)
	}

	if ctx != nil {
		d.context = ctx.ApplicationContext()
		if h, ok := ctx.(Host); ok {
			d.activity = h
		}
	}

	if d.deps.Clock != nil {
		d.deps.Clock.UpdateTime()
	}
	d.setState(StateStarted)
}

// OnPause remembers the active scene so it can be restored when the surface
// comes back.
func (d *Delegate) OnPause() {
	if d.deps.Scenes != nil {
		d.currentModel = d.deps.Scenes.CurrentModel()
	}
	d.setState(StatePaused)
}

// OnStop closes the view, drops the texture manager, releases the scene
// manager and disposes the framework.
func (d *Delegate) OnStop() {
	// The view goes first so its resources are released even when a later
	// step panics.
	if d.view != nil {
		d.view.Close()
	}
	if d.textures != nil {
		d.textures.Release()
		d.textures = nil
	}

	if d.deps.Scenes != nil {
		d.deps.Scenes.Release()
	}
	if d.deps.Framework != nil {
		d.deps.Framework.Dispose()
	}
	d.setState(StateStopped)
}

// OnDestroy releases this delegate from its holder.
func (d *Delegate) OnDestroy() {
	d.setState(StateDestroyed)
	if d.holder != nil {
		d.holder.Release()
	}
}

// OnSurfaceCreated configures sampling and blending on the new surface and
// initializes the framework. It must run before the first Run.
func (d *Delegate) OnSurfaceCreated() {
	if d.deps.Surface != nil {
		d.deps.Surface.ConfigureSampling()
		d.deps.Surface.ConfigureBlending()
	}
	if d.deps.Framework != nil {
		d.deps.Framework.Initialize()
	}
	d.setState(StateSurfaceReady)
}

// OnSurfaceChanged sizes the viewport, initializes the view and restores the
// scene that was active before the last pause.
func (d *Delegate) OnSurfaceChanged(width, height int) {
	if d.deps.Surface != nil {
		d.deps.Surface.Viewport(0, 0, width, height)
	}
	d.windowWidth = width
	d.windowHeight = height

	if d.view != nil {
		d.view.Initialize(width, height)
		d.view.InitializeSprite()
	}

	if d.deps.Scenes != nil && d.deps.Scenes.CurrentModel() != d.currentModel {
		d.deps.Scenes.ChangeScene(d.currentModel)
	}

	d.active = true
	d.setState(StateRunning)
}

// Run draws one frame. The host calls it once per display refresh.
func (d *Delegate) Run() {
	if d.deps.Clock != nil {
		d.deps.Clock.UpdateTime()
	}

	if d.deps.Surface != nil {
		c := d.clearColor
		d.deps.Surface.Clear(c[0], c[1], c[2], c[3])
	}

	if d.view != nil {
		d.view.Render()
	}

	if !d.active && d.activity != nil {
		log.Info("app deactivated, finishing host task")
		d.activity.FinishAndRemoveTask()
	}
}

// OnTouchBegan starts a single-finger gesture.
func (d *Delegate) OnTouchBegan(x, y float32) {
	d.mouseX = x
	d.mouseY = y

	if d.view != nil {
		d.captured = true
		d.view.OnTouchesBegan(d.mouseX, d.mouseY)
	}
}

// OnTouchEnd ends the current gesture.
func (d *Delegate) OnTouchEnd(x, y float32) {
	d.mouseX = x
	d.mouseY = y

	if d.view != nil {
		d.captured = false
		d.view.OnTouchesEnded(d.mouseX, d.mouseY)
	}
}

// OnTouchMoved forwards a move only while a gesture is captured.
func (d *Delegate) OnTouchMoved(x, y float32) {
	d.mouseX = x
	d.mouseY = y

	if d.captured && d.view != nil {
		d.view.OnTouchesMoved(d.mouseX, d.mouseY)
	}
}

// OnMultiTouchBegan starts a two-finger gesture. The tracked pointer is the
// midpoint of both fingers.
func (d *Delegate) OnMultiTouchBegan(x1, y1, x2, y2 float32) {
	d.mouseX = (x1 + x2) * 0.5
	d.mouseY = (y1 + y2) * 0.5

	if d.view != nil {
		d.captured = true
		d.view.OnMultiTouchesBegan(x1, y1, x2, y2)
	}
}

// OnMultiTouchMoved forwards a two-finger move while a gesture is captured.
func (d *Delegate) OnMultiTouchMoved(x1, y1, x2, y2 float32) {
	d.mouseX = (x1 + x2) * 0.5
	d.mouseY = (y1 + y2) * 0.5

	if d.captured && d.view != nil {
		d.view.OnMultiTouchesMoved(x1, y1, x2, y2)
	}
}

func (d *Delegate) Activity() Host { return d.activity }

// Context returns the recorded context, or the activity when there is none.
func (d *Delegate) Context() Context {
	if d.context != nil {
		return d.context
	}
	if d.activity == nil {
		return nil
	}
	return d.activity
}

func (d *Delegate) TextureManager() TextureManager { return d.textures }
func (d *Delegate) View() View                     { return d.view }
func (d *Delegate) WindowWidth() int               { return d.windowWidth }
func (d *Delegate) WindowHeight() int              { return d.windowHeight }

// SetClearColor sets the frame clear color. Components are not clamped.
func (d *Delegate) SetClearColor(r, g, b, a float32) {
	d.clearColor = [4]float32{r, g, b, a}
}

func (d *Delegate) ClearColor() [4]float32 { return d.clearColor }

// CurrentModel returns the scene index snapshot taken on the last pause.
func (d *Delegate) CurrentModel() int { return d.currentModel }

func (d *Delegate) IsActive() bool   { return d.active }
func (d *Delegate) IsCaptured() bool { return d.captured }
func (d *Delegate) State() State     { return d.state }

// Pointer returns the last tracked pointer position.
func (d *Delegate) Pointer() (x, y float32) { return d.mouseX, d.mouseY }
