package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/app"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"
	"golang.org/x/mobile/gl"

	"github.com/pawelkowalak/l2dview/config"
	"github.com/pawelkowalak/l2dview/cubism"
	"github.com/pawelkowalak/l2dview/delegate"
	"github.com/pawelkowalak/l2dview/scene"
	"github.com/pawelkowalak/l2dview/timing"
)

// fakeApp replays scripted events. Sent events are queued behind them.
type fakeApp struct {
	events    chan interface{}
	sent      []interface{}
	published int
}

func newFakeApp(events ...interface{}) *fakeApp {
	a := &fakeApp{events: make(chan interface{}, 64)}
	for _, e := range events {
		a.events <- e
	}
	return a
}

func (a *fakeApp) Events() <-chan interface{}                     { return a.events }
func (a *fakeApp) Publish() app.PublishResult                     { a.published++; return app.PublishResult{} }
func (a *fakeApp) Filter(e interface{}) interface{}               { return e }
func (a *fakeApp) RegisterFilter(f func(interface{}) interface{}) {}

func (a *fakeApp) Send(e interface{}) {
	a.sent = append(a.sent, e)
	select {
	case a.events <- e:
	default:
	}
}

// fakeGL accepts the calls the surface makes.
type fakeGL struct {
	gl.Context
}

func (fakeGL) TexParameteri(target, pname gl.Enum, param int) {}
func (fakeGL) Enable(c gl.Enum)                               {}
func (fakeGL) BlendFunc(s, d gl.Enum)                         {}
func (fakeGL) Viewport(x, y, w, h int)                        {}
func (fakeGL) ClearColor(r, g, b, a float32)                  {}
func (fakeGL) Clear(mask gl.Enum)                             {}
func (fakeGL) ClearDepthf(d float32)                          {}

type stubView struct {
	onRender func()
	renders  int
	began    int
	closed   int
}

func (v *stubView) Initialize(width, height int)               {}
func (v *stubView) InitializeSprite()                          {}
func (v *stubView) OnTouchesBegan(x, y float32)                { v.began++ }
func (v *stubView) OnTouchesMoved(x, y float32)                {}
func (v *stubView) OnTouchesEnded(x, y float32)                {}
func (v *stubView) OnMultiTouchesBegan(x1, y1, x2, y2 float32) {}
func (v *stubView) OnMultiTouchesMoved(x1, y1, x2, y2 float32) {}
func (v *stubView) Close()                                     { v.closed++ }

func (v *stubView) Render() {
	v.renders++
	if v.onRender != nil {
		v.onRender()
	}
}

type loopFixture struct {
	app    *fakeApp
	v      *viewer
	states []delegate.State
	views  []*stubView
}

// newLoopFixture wires a viewer to fakes. Views deactivate the app on
// their first frame when quit is set.
func newLoopFixture(quit bool, events ...interface{}) *loopFixture {
	f := &loopFixture{app: newFakeApp(events...)}
	f.v = newLoop(f.app, config.Default())
	f.v.init(delegate.Deps{
		Framework: cubism.New(),
		Scenes:    scene.NewManager([]scene.Model{{Name: "Haru", Dir: "Haru"}}),
		Surface:   f.v.surface,
		Clock:     timing.New(),
		NewView: func(d *delegate.Delegate) delegate.View {
			sv := &stubView{}
			if quit {
				sv.onRender = d.DeactivateApp
			}
			f.views = append(f.views, sv)
			return sv
		},
		OnStateChange: func(from, to delegate.State) {
			f.states = append(f.states, to)
		},
	})
	return f
}

func (f *loopFixture) run(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		f.v.run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("event loop didn't end")
	}
}

func TestViewer_RunUntilDeactivated(t *testing.T) {
	f := newLoopFixture(true,
		lifecycle.Event{From: lifecycle.StageDead, To: lifecycle.StageFocused, DrawContext: &fakeGL{}},
		size.Event{WidthPx: 800, HeightPx: 600, PixelsPerPt: 1},
		touch.Event{X: 10, Y: 20, Type: touch.TypeBegin},
	)
	f.run(t)

	assert.Equal(t, []delegate.State{
		delegate.StateStarted,
		delegate.StateSurfaceReady,
		delegate.StateRunning,
		delegate.StateStopped,
		delegate.StateDestroyed,
	}, f.states)
	require.Len(t, f.views, 1)
	assert.Equal(t, 1, f.views[0].renders)
	assert.Equal(t, 1, f.views[0].began)
	assert.Equal(t, 1, f.views[0].closed)
	assert.Equal(t, 0, f.app.published, "the finishing frame isn't published")
	assert.True(t, f.v.host.finished)
	assert.Nil(t, f.v.holder.Current())
	assert.Contains(t, f.app.sent, paint.Event{})
}

func TestViewer_PauseAndDie(t *testing.T) {
	f := newLoopFixture(false,
		size.Event{WidthPx: 800, HeightPx: 600, PixelsPerPt: 1},
		lifecycle.Event{From: lifecycle.StageDead, To: lifecycle.StageFocused, DrawContext: &fakeGL{}},
		paint.Event{External: true},
		lifecycle.Event{From: lifecycle.StageFocused, To: lifecycle.StageAlive},
		lifecycle.Event{From: lifecycle.StageAlive, To: lifecycle.StageDead},
	)
	f.run(t)

	assert.Equal(t, []delegate.State{
		delegate.StateStarted,
		delegate.StateSurfaceReady,
		delegate.StateRunning,
		delegate.StatePaused,
		delegate.StateStopped,
		delegate.StateDestroyed,
	}, f.states)
	require.Len(t, f.views, 1)
	assert.Equal(t, 0, f.views[0].renders, "system paint events are skipped")
	assert.Nil(t, f.v.surface.Context())
	assert.False(t, f.v.host.finished)
}

func TestViewer_NewContextResets(t *testing.T) {
	f := newLoopFixture(false,
		lifecycle.Event{From: lifecycle.StageDead, To: lifecycle.StageFocused, DrawContext: &fakeGL{}},
		size.Event{WidthPx: 800, HeightPx: 600, PixelsPerPt: 1},
		lifecycle.Event{From: lifecycle.StageFocused, To: lifecycle.StageAlive},
		lifecycle.Event{From: lifecycle.StageAlive, To: lifecycle.StageFocused, DrawContext: &fakeGL{}},
		lifecycle.Event{From: lifecycle.StageFocused, To: lifecycle.StageDead},
	)
	f.run(t)

	session := []delegate.State{
		delegate.StateStarted,
		delegate.StateSurfaceReady,
		delegate.StateRunning,
		delegate.StatePaused,
		delegate.StateStopped,
		delegate.StateDestroyed,
	}
	assert.Equal(t, append(append([]delegate.State{}, session...), session...), f.states)
	require.Len(t, f.views, 2, "the reset builds a new delegate with a new view")
	assert.Equal(t, 1, f.views[0].closed)
}

func TestViewer_SameContextKeepsSession(t *testing.T) {
	ctx := &fakeGL{}
	f := newLoopFixture(false,
		lifecycle.Event{From: lifecycle.StageDead, To: lifecycle.StageFocused, DrawContext: ctx},
		lifecycle.Event{From: lifecycle.StageFocused, To: lifecycle.StageAlive},
		lifecycle.Event{From: lifecycle.StageAlive, To: lifecycle.StageFocused, DrawContext: ctx},
		lifecycle.Event{From: lifecycle.StageFocused, To: lifecycle.StageDead},
	)
	f.run(t)

	assert.Equal(t, []delegate.State{
		delegate.StateStarted,
		delegate.StateSurfaceReady,
		delegate.StatePaused,
		delegate.StateSurfaceReady,
		delegate.StatePaused,
		delegate.StateStopped,
		delegate.StateDestroyed,
	}, f.states)
	assert.Len(t, f.views, 1)
}
