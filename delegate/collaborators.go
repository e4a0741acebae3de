package delegate

import "github.com/pawelkowalak/l2dview/cubism"

// Context is the host application context.
type Context interface {
	// ApplicationContext returns the long-lived context behind this one.
	ApplicationContext() Context
}

// Host is the activity the delegate runs in.
type Host interface {
	Context
	// FinishAndRemoveTask asks the host to close the activity and its task.
	FinishAndRemoveTask()
}

// Framework is the process-wide render framework.
type Framework interface {
	StartUp(opt cubism.Option) bool
	CleanUp()
	Initialize()
	Dispose()
}

// View owns the drawing of the character scene and its overlay sprites.
type View interface {
	Initialize(width, height int)
	InitializeSprite()
	Render()
	OnTouchesBegan(x, y float32)
	OnTouchesMoved(x, y float32)
	OnTouchesEnded(x, y float32)
	OnMultiTouchesBegan(x1, y1, x2, y2 float32)
	OnMultiTouchesMoved(x1, y1, x2, y2 float32)
	Close()
}

// TextureManager loads and caches textures for one surface session.
type TextureManager interface {
	Release()
}

// SceneManager tracks the active scene index.
type SceneManager interface {
	CurrentModel() int
	ChangeScene(index int)
	Release()
}

// Surface is the render target state the delegate configures.
type Surface interface {
	// ConfigureSampling sets linear min/mag texture filtering.
	ConfigureSampling()
	// ConfigureBlending enables blending with premultiplied alpha.
	ConfigureBlending()
	Viewport(x, y, width, height int)
	// Clear clears color and depth buffers with the given color.
	Clear(r, g, b, a float32)
}

// Clock is the frame clock.
type Clock interface {
	UpdateTime()
}

// Deps bundles the collaborators a Delegate is built from.
type Deps struct {
	Framework Framework
	Scenes    SceneManager
	Surface   Surface
	Clock     Clock

	// NewView and NewTextures are called on every OnStart.
	NewView     func(d *Delegate) View
	NewTextures func() TextureManager

	LogFunction cubism.LogFunc
	LogLevel    cubism.LogLevel

	// OnStateChange, when set, observes every lifecycle state transition.
	OnStateChange func(from, to State)
}
