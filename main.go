// Command l2dview hosts the character view in a gomobile app. It translates
// the app's lifecycle, size, paint and touch events into delegate events.
package main

import (
	_ "image/png"

	log "github.com/sirupsen/logrus"
	"golang.org/x/mobile/app"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"
	"golang.org/x/mobile/gl"

	"github.com/pawelkowalak/l2dview/config"
	"github.com/pawelkowalak/l2dview/cubism"
	"github.com/pawelkowalak/l2dview/delegate"
	"github.com/pawelkowalak/l2dview/gesture"
	"github.com/pawelkowalak/l2dview/logging"
	"github.com/pawelkowalak/l2dview/remote"
	"github.com/pawelkowalak/l2dview/render"
	"github.com/pawelkowalak/l2dview/scene"
	"github.com/pawelkowalak/l2dview/timing"
	"github.com/pawelkowalak/l2dview/viewstate"
)

func main() {
	app.Main(func(a app.App) {
		cfg, err := config.LoadAsset(config.AssetName)
		if err != nil {
			cfg = config.Default()
		}
		if serr := logging.Setup(nil, cfg.LogLevel); serr != nil {
			log.Warn(serr)
		}
		if err != nil {
			log.Warnf("using default config: %v", err)
		}
		logs := logging.NewBuffer(logging.DefaultBufferSize)
		log.AddHook(logs)

		v := newViewer(a, cfg, logs)
		v.run()
		v.close()
		log.WithField("buffered", len(logs.Entries())).Info("app finished")
	})
}

// viewer owns the collaborators of one app process.
type viewer struct {
	app     app.App
	host    *host
	cfg     *config.Config
	holder  *delegate.Holder
	surface *render.GLSurface
	touches *gesture.Dispatcher
	status  *remote.StatusServer

	sz      size.Event
	visible bool
}

func newLoop(a app.App, cfg *config.Config) *viewer {
	return &viewer{
		app:     a,
		host:    &host{},
		cfg:     cfg,
		surface: render.NewSurface(),
	}
}

func newViewer(a app.App, cfg *config.Config, logs *logging.Buffer) *viewer {
	v := newLoop(a, cfg)

	fwLevel, err := cubism.ParseLogLevel(cfg.FrameworkLogLevel)
	if err != nil {
		log.Warn(err)
		fwLevel = cubism.LogVerbose
	}

	models := make([]scene.Model, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		models = append(models, scene.Model{Name: m.Name, Dir: m.Dir})
	}
	scenes := scene.NewManager(models)
	scenes.OnChange(func(i int, m scene.Model) {
		log.WithFields(log.Fields{"index": i, "model": m.Name}).Info("Model shown")
	})

	clk := timing.New()
	clk.SetSpeed(cfg.MotionSpeed)

	if cfg.Status.Enabled {
		v.status = remote.NewStatusServer(cfg.Status.Port, cfg.Status.BroadcastPort)
		if err := v.status.Start(); err != nil {
			log.Warnf("status server disabled: %v", err)
			v.status = nil
		}
	}

	placements := viewstate.OpenSetting(cfg.PlacementFile)
	log.WithField("path", placements.Path()).Debug("placement store")

	deps := delegate.Deps{
		Framework: cubism.New(),
		Scenes:    scenes,
		Surface:   v.surface,
		Clock:     clk,
		NewTextures: func() delegate.TextureManager {
			return render.NewTextures(v.surface)
		},
		NewView: func(d *delegate.Delegate) delegate.View {
			tex, ok := d.TextureManager().(*render.Textures)
			if !ok {
				tex = render.NewTextures(v.surface)
			}
			opts := render.ViewOptions{
				OnPower:    d.DeactivateApp,
				Speed:      clk,
				Placements: placements,
				Background: cfg.Background,
			}
			if logs != nil {
				opts.Logs = logs
			}
			return render.NewSceneView(v.surface, tex, clk, scenes, opts)
		},
		LogFunction: logging.FrameworkLogFunc(log.StandardLogger(), "cubism"),
		LogLevel:    fwLevel,
	}
	if v.status != nil {
		deps.OnStateChange = v.status.ObserveState
	}
	v.init(deps)
	return v
}

// init builds the delegate holder and the touch pipeline feeding it.
func (v *viewer) init(deps delegate.Deps) {
	v.holder = delegate.NewHolder(deps)

	g := v.cfg.Gesture
	v.touches = gesture.NewDispatcher(&touchForwarder{
		dispatch: v.dispatch,
		throttle: logging.NewThrottle(),
	}, gesture.Limits{
		ShortWindow:         durationMs(g.ShortWindowMs),
		MaxSingleDelta:      g.MaxSingleDeltaPx,
		MaxMultiCenterDelta: g.MaxMultiCenterDeltaPx,
		MaxMultiRatio:       g.MaxMultiRatio,
		MinMultiRatio:       g.MinMultiRatio,
	})
}

func (v *viewer) dispatch(e delegate.Event) {
	delegate.Dispatch(v.holder.Instance(), e)
}

func (v *viewer) run() {
	for e := range v.app.Events() {
		switch e := v.app.Filter(e).(type) {
		case lifecycle.Event:
			if e.Crosses(lifecycle.StageAlive) == lifecycle.CrossOn {
				v.start()
			}
			switch e.Crosses(lifecycle.StageVisible) {
			case lifecycle.CrossOn:
				glctx, _ := e.DrawContext.(gl.Context)
				if v.surface.Bind(glctx) {
					// Everything built on the old context is gone.
					log.Info("GL context replaced, resetting")
					v.holder.Reset()
					v.start()
				}
				v.visible = true
				v.dispatch(delegate.Event{Kind: delegate.EventSurfaceCreated})
				if v.sz.WidthPx > 0 && v.sz.HeightPx > 0 {
					v.surfaceChanged()
				}
				v.app.Send(paint.Event{})
			case lifecycle.CrossOff:
				v.touches.Reset()
				v.dispatch(delegate.Event{Kind: delegate.EventPause})
				v.surface.Unbind()
				v.visible = false
			}
			if e.Crosses(lifecycle.StageAlive) == lifecycle.CrossOff {
				v.stop()
				return
			}
		case size.Event:
			v.sz = e
			v.surface.Resize(e)
			if v.visible {
				v.surfaceChanged()
			}
		case paint.Event:
			if v.surface.Context() == nil || e.External {
				// As we are actively painting as fast as
				// we can (usually 60 FPS), skip any paint
				// events sent by the system.
				continue
			}
			v.dispatch(delegate.Event{Kind: delegate.EventFrame})
			if v.host.finished {
				v.stop()
				return
			}
			v.app.Publish()
			// Drive the animation by preparing to paint the next frame
			// after this one is shown.
			v.app.Send(paint.Event{})
		case touch.Event:
			v.touches.OnTouch(e)
		}
	}
}

// start begins a session of the current delegate in the host window.
func (v *viewer) start() {
	d := v.holder.Instance()
	d.SetClearColor(v.cfg.ClearRGBA())
	v.dispatch(delegate.Event{Kind: delegate.EventStart, Host: v.host})
}

func (v *viewer) surfaceChanged() {
	v.dispatch(delegate.Event{
		Kind:   delegate.EventSurfaceChanged,
		Width:  v.sz.WidthPx,
		Height: v.sz.HeightPx,
	})
}

// stop ends the session of the current delegate, if any.
func (v *viewer) stop() {
	d := v.holder.Current()
	if d == nil {
		return
	}
	delegate.Dispatch(d, delegate.Event{Kind: delegate.EventStop})
	delegate.Dispatch(d, delegate.Event{Kind: delegate.EventDestroy})
}

func (v *viewer) close() {
	if v.status != nil {
		v.status.Stop()
	}
}
