package delegate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawelkowalak/l2dview/cubism"
)

// mockView is a test double for View.
type mockView struct {
	initialized       int
	spritesInit       int
	rendered          int
	closed            int
	began, moved, end [][2]float32
	multiBegan        [][4]float32
	multiMoved        [][4]float32
	width, height     int
}

func (m *mockView) Initialize(w, h int)         { m.initialized++; m.width, m.height = w, h }
func (m *mockView) InitializeSprite()           { m.spritesInit++ }
func (m *mockView) Render()                     { m.rendered++ }
func (m *mockView) Close()                      { m.closed++ }
func (m *mockView) OnTouchesBegan(x, y float32) { m.began = append(m.began, [2]float32{x, y}) }
func (m *mockView) OnTouchesMoved(x, y float32) { m.moved = append(m.moved, [2]float32{x, y}) }
func (m *mockView) OnTouchesEnded(x, y float32) { m.end = append(m.end, [2]float32{x, y}) }
func (m *mockView) OnMultiTouchesBegan(x1, y1, x2, y2 float32) {
	m.multiBegan = append(m.multiBegan, [4]float32{x1, y1, x2, y2})
}
func (m *mockView) OnMultiTouchesMoved(x1, y1, x2, y2 float32) {
	m.multiMoved = append(m.multiMoved, [4]float32{x1, y1, x2, y2})
}

type mockTextures struct {
	released int
	panics   bool
}

func (m *mockTextures) Release() {
	m.released++
	if m.panics {
		panic("texture release failed")
	}
}

type mockScenes struct {
	current  int
	changes  []int
	released int
}

func (m *mockScenes) CurrentModel() int { return m.current }
func (m *mockScenes) ChangeScene(i int) { m.changes = append(m.changes, i); m.current = i }
func (m *mockScenes) Release()          { m.released++; m.current = 0 }

type mockFramework struct {
	startUps    []cubism.Option
	cleanUps    int
	initialized int
	disposed    int
	live        bool
}

func (m *mockFramework) StartUp(opt cubism.Option) bool {
	m.startUps = append(m.startUps, opt)
	return true
}
func (m *mockFramework) CleanUp()            { m.cleanUps++ }
func (m *mockFramework) Initialize()         { m.initialized++; m.live = true }
func (m *mockFramework) Dispose()            { m.disposed++; m.live = false }
func (m *mockFramework) IsInitialized() bool { return m.live }

type mockSurface struct {
	sampling, blending int
	viewports          [][4]int
	clears             [][4]float32
}

func (m *mockSurface) ConfigureSampling() { m.sampling++ }
func (m *mockSurface) ConfigureBlending() { m.blending++ }
func (m *mockSurface) Viewport(x, y, w, h int) {
	m.viewports = append(m.viewports, [4]int{x, y, w, h})
}
func (m *mockSurface) Clear(r, g, b, a float32) {
	m.clears = append(m.clears, [4]float32{r, g, b, a})
}

type mockClock struct{ updates int }

func (m *mockClock) UpdateTime() { m.updates++ }

type mockContext struct{ app *mockContext }

func (m *mockContext) ApplicationContext() Context {
	if m.app == nil {
		return m
	}
	return m.app
}

type mockHost struct {
	mockContext
	finished int
}

func (m *mockHost) FinishAndRemoveTask() { m.finished++ }

type fixture struct {
	holder   *Holder
	fw       *mockFramework
	scenes   *mockScenes
	surface  *mockSurface
	clock    *mockClock
	views    []*mockView
	textures []*mockTextures
	states   []State
}

func newFixture() *fixture {
	f := &fixture{
		fw:      &mockFramework{},
		scenes:  &mockScenes{},
		surface: &mockSurface{},
		clock:   &mockClock{},
	}
	f.holder = NewHolder(Deps{
		Framework: f.fw,
		Scenes:    f.scenes,
		Surface:   f.surface,
		Clock:     f.clock,
		NewView: func(*Delegate) View {
			v := &mockView{}
			f.views = append(f.views, v)
			return v
		},
		NewTextures: func() TextureManager {
			t := &mockTextures{}
			f.textures = append(f.textures, t)
			return t
		},
		LogLevel:      cubism.LogInfo,
		OnStateChange: func(_, to State) { f.states = append(f.states, to) },
	})
	return f
}

func (f *fixture) view() *mockView { return f.views[len(f.views)-1] }

func TestNew_StartsFramework(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()

	assert.Equal(t, 1, f.fw.cleanUps, "framework cleaned up before start")
	require.Len(t, f.fw.startUps, 1)
	assert.Equal(t, cubism.LogInfo, f.fw.startUps[0].LoggingLevel)
	assert.True(t, d.IsActive())
	assert.Equal(t, 0, d.CurrentModel())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, d.ClearColor())
	assert.Equal(t, StateUninitialized, d.State())
}

func TestOnStart(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	host := &mockHost{}

	d.OnStart(host)

	assert.Len(t, f.views, 1)
	assert.Len(t, f.textures, 1)
	assert.Same(t, host, d.Activity())
	assert.NotNil(t, d.TextureManager())
	assert.Equal(t, 1, f.clock.updates)
	assert.Equal(t, StateStarted, d.State())
}

func TestOnStartWithContext(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	app := &mockContext{}
	ctx := &mockContext{app: app}

	d.OnStartWithContext(ctx)

	assert.Nil(t, d.Activity(), "plain context is not an activity")
	assert.Same(t, app, d.Context(), "application context is recorded")
}

func TestContext_FallsBackToActivity(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	assert.Nil(t, d.Context())

	host := &mockHost{}
	d.activity = host
	assert.Same(t, host, d.Context())
}

func TestOnSurfaceCreated(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	d.OnStart(&mockHost{})

	d.OnSurfaceCreated()

	assert.Equal(t, 1, f.surface.sampling)
	assert.Equal(t, 1, f.surface.blending)
	assert.Equal(t, 1, f.fw.initialized)
	assert.Equal(t, StateSurfaceReady, d.State())
}

func TestOnSurfaceChanged(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	d.OnStart(&mockHost{})
	d.OnSurfaceCreated()

	d.OnSurfaceChanged(1080, 1920)

	assert.Equal(t, [][4]int{{0, 0, 1080, 1920}}, f.surface.viewports)
	assert.Equal(t, 1080, d.WindowWidth())
	assert.Equal(t, 1920, d.WindowHeight())
	assert.Equal(t, 1, f.view().initialized)
	assert.Equal(t, 1, f.view().spritesInit)
	assert.Equal(t, 1080, f.view().width)
	assert.Empty(t, f.scenes.changes, "same scene index, no change")
	assert.True(t, d.IsActive())
	assert.Equal(t, StateRunning, d.State())
}

func TestOnSurfaceChanged_SceneRestore(t *testing.T) {
	tests := []struct {
		name     string
		snapshot int
		current  int
		changes  []int
	}{
		{"unchanged", 2, 2, nil},
		{"manager moved on", 2, 0, []int{2}},
		{"manager released", 1, 0, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			d := f.holder.Instance()
			d.OnStart(&mockHost{})

			f.scenes.current = tt.snapshot
			d.OnPause()
			assert.Equal(t, tt.snapshot, d.CurrentModel())

			f.scenes.current = tt.current
			d.OnSurfaceCreated()
			d.OnSurfaceChanged(100, 100)

			assert.Equal(t, tt.changes, f.scenes.changes)
		})
	}
}

func TestRun(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	host := &mockHost{}
	d.OnStart(host)
	d.OnSurfaceCreated()
	d.OnSurfaceChanged(10, 10)

	d.SetClearColor(0.5, 2, -1, 0)
	d.Run()

	assert.Equal(t, [][4]float32{{0.5, 2, -1, 0}}, f.surface.clears, "clear color is not clamped")
	assert.Equal(t, 1, f.view().rendered)
	assert.Equal(t, 2, f.clock.updates)
	assert.Equal(t, 0, host.finished)
}

func TestRun_DeactivatedFinishesHost(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	host := &mockHost{}
	d.OnStart(host)
	d.OnSurfaceCreated()
	d.OnSurfaceChanged(10, 10)

	d.DeactivateApp()
	assert.False(t, d.IsActive())
	d.Run()
	assert.Equal(t, 1, host.finished)
	assert.Equal(t, 1, f.view().rendered, "frame is still drawn")
}

func TestRun_DeactivatedWithoutHost(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	d.OnStartWithContext(&mockContext{})

	d.DeactivateApp()
	assert.NotPanics(t, d.Run)
}

func TestRun_WithoutView(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()

	d.Run()
	assert.Len(t, f.surface.clears, 1)
}

func TestActiveFlag_Sequence(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	d.OnStart(&mockHost{})
	d.OnSurfaceCreated()
	d.DeactivateApp()
	assert.False(t, d.IsActive())

	d.OnSurfaceChanged(10, 10)
	assert.True(t, d.IsActive(), "surface change reactivates")

	d.OnPause()
	d.DeactivateApp()
	assert.False(t, d.IsActive())

	d.OnSurfaceCreated()
	d.OnSurfaceChanged(10, 10)
	assert.True(t, d.IsActive())
	assert.Equal(t, StateRunning, d.State())
}

func TestTouch_MovedBeforeBeganIsIgnored(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	d.OnStart(&mockHost{})

	d.OnTouchMoved(3, 4)

	assert.Empty(t, f.view().moved)
	x, y := d.Pointer()
	assert.Equal(t, float32(3), x, "pointer is tracked even when not forwarded")
	assert.Equal(t, float32(4), y)
}

func TestTouch_SingleGesture(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	d.OnStart(&mockHost{})

	d.OnTouchBegan(1, 2)
	assert.True(t, d.IsCaptured())
	d.OnTouchMoved(3, 4)
	d.OnTouchEnd(5, 6)
	assert.False(t, d.IsCaptured())
	d.OnTouchMoved(7, 8)

	v := f.view()
	assert.Equal(t, [][2]float32{{1, 2}}, v.began)
	assert.Equal(t, [][2]float32{{3, 4}}, v.moved)
	assert.Equal(t, [][2]float32{{5, 6}}, v.end)
}

func TestTouch_WithoutViewDoesNotCapture(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()

	d.OnTouchBegan(1, 2)
	assert.False(t, d.IsCaptured())
	d.OnMultiTouchBegan(0, 0, 2, 2)
	assert.False(t, d.IsCaptured())
}

func TestTouch_MultiMidpoint(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	d.OnStart(&mockHost{})

	d.OnMultiTouchBegan(0, 0, 10, 0)
	x, y := d.Pointer()
	assert.Equal(t, float32(5), x)
	assert.Equal(t, float32(0), y)
	assert.True(t, d.IsCaptured())

	d.OnMultiTouchMoved(2, 2, 4, 6)
	x, y = d.Pointer()
	assert.Equal(t, float32(3), x)
	assert.Equal(t, float32(4), y)

	v := f.view()
	assert.Equal(t, [][4]float32{{0, 0, 10, 0}}, v.multiBegan)
	assert.Equal(t, [][4]float32{{2, 2, 4, 6}}, v.multiMoved, "raw points are forwarded")
}

func TestTouch_MultiMovedNotCaptured(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	d.OnStart(&mockHost{})

	d.OnMultiTouchMoved(0, 0, 10, 10)
	assert.Empty(t, f.view().multiMoved)
	x, _ := d.Pointer()
	assert.Equal(t, float32(5), x)
}

func TestOnStop(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	d.OnStart(&mockHost{})
	d.OnSurfaceCreated()
	d.OnSurfaceChanged(10, 10)

	d.OnStop()

	assert.Equal(t, 1, f.view().closed)
	assert.Nil(t, d.TextureManager())
	assert.Equal(t, 1, f.textures[0].released)
	assert.Equal(t, 1, f.scenes.released)
	assert.Equal(t, 1, f.fw.disposed)
	assert.Equal(t, StateStopped, d.State())
}

func TestOnStop_ClosesViewBeforePanic(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	d.OnStart(&mockHost{})
	f.textures[0].panics = true

	assert.Panics(t, d.OnStop)
	assert.Equal(t, 1, f.view().closed)
	assert.Equal(t, 0, f.scenes.released, "later steps do not run")
}

func TestOnDestroy_ReleasesInstance(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	d.OnStart(&mockHost{})
	d.DeactivateApp()
	d.SetClearColor(0, 0, 0, 1)
	d.currentModel = 3

	d.OnDestroy()
	assert.Nil(t, f.holder.Current())

	fresh := f.holder.Instance()
	assert.NotSame(t, d, fresh)
	assert.Equal(t, 0, fresh.CurrentModel())
	assert.True(t, fresh.IsActive())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, fresh.ClearColor())
	assert.Nil(t, fresh.View())
	assert.Len(t, f.fw.startUps, 2, "each construction starts the framework")
}

func TestHolder_InstanceIsShared(t *testing.T) {
	f := newFixture()
	assert.Nil(t, f.holder.Current())
	assert.Same(t, f.holder.Instance(), f.holder.Instance())
}

func TestHolder_Reset(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	d.OnStart(&mockHost{})
	d.OnSurfaceCreated()

	f.holder.Reset()

	assert.Nil(t, f.holder.Current())
	assert.Equal(t, 1, f.view().closed)
	assert.Equal(t, 2, f.scenes.released, "released by reset and by stop")
	assert.Equal(t, 1, f.fw.disposed, "stop already disposed the framework")
	assert.Equal(t, StateDestroyed, d.State())
}

func TestHolder_ResetWithoutDelegate(t *testing.T) {
	f := newFixture()
	f.fw.live = true

	f.holder.Reset()
	assert.Equal(t, 1, f.fw.disposed)
}

func TestStateChanges(t *testing.T) {
	f := newFixture()
	d := f.holder.Instance()
	d.OnStart(&mockHost{})
	d.OnSurfaceCreated()
	d.OnSurfaceChanged(1, 1)
	d.OnPause()
	d.OnSurfaceCreated()
	d.OnSurfaceChanged(1, 1)
	d.OnPause()
	d.OnStop()
	d.OnDestroy()

	assert.Equal(t, []State{
		StateStarted, StateSurfaceReady, StateRunning,
		StatePaused, StateSurfaceReady, StateRunning,
		StatePaused, StateStopped, StateDestroyed,
	}, f.states)
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateUninitialized, "Uninitialized"},
		{StateStarted, "Started"},
		{StateSurfaceReady, "SurfaceReady"},
		{StateRunning, "Running"},
		{StatePaused, "Paused"},
		{StateStopped, "Stopped"},
		{StateDestroyed, "Destroyed"},
		{State(99), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}
