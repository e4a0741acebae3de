package render

import (
	"fmt"
	"image"
	"math"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/mobile/exp/app/debug"
	"golang.org/x/mobile/exp/f32"
	"golang.org/x/mobile/exp/sprite"
	"golang.org/x/mobile/exp/sprite/clock"

	"github.com/pawelkowalak/l2dview/logging"
	"github.com/pawelkowalak/l2dview/scene"
	"github.com/pawelkowalak/l2dview/timing"
	"github.com/pawelkowalak/l2dview/viewstate"
)

// Overlay textures looked up among the app assets.
const (
	BackTexture  = "back_class_normal.png"
	GearTexture  = "icon_gear.png"
	PowerTexture = "close.png"
	// PreviewTexture is the still image of a model, relative to its dir.
	PreviewTexture = "preview.png"
)

const (
	logPanelLines   = 8
	logLineMaxRunes = 64
	// logRefreshFrames limits how often an open log panel is redrawn.
	logRefreshFrames = 15
)

// FrameClock provides the animation time of the current frame.
type FrameClock interface {
	Frame() clock.Time
}

// Scenes is the part of the scene manager the view drives.
type Scenes interface {
	CurrentModel() int
	Model() (scene.Model, bool)
	NextScene()
}

// SpeedControl steps through the motion speed presets.
type SpeedControl interface {
	NextPreset()
	PreviousPreset()
	ResetSpeed()
	Speed() float32
}

// LogSource holds the recent log entries shown in the log panel.
type LogSource interface {
	Entries() []logging.Entry
	Clear()
}

// ViewOptions are the optional collaborators of a SceneView.
type ViewOptions struct {
	// OnPower is called when the power icon is tapped.
	OnPower func()

	// Speed adds a caption stepping the motion speed when tapped.
	Speed SpeedControl

	// Logs adds a caption toggling the log panel.
	Logs LogSource

	// Placements keeps the character placement per model. When nil the
	// placements live as long as the view.
	Placements *viewstate.Store

	// Background is an image file drawn instead of BackTexture.
	Background string
}

// SceneView draws the background, the current character with its name and
// the overlay icons. Touches drag and pinch the character, a tap on gear
// switches the model and a tap on power calls the power callback.
type SceneView struct {
	surface  *GLSurface
	textures *Textures
	clock    FrameClock
	scenes   Scenes
	opts     ViewOptions
	label    *Label

	eng  sprite.Engine
	root *sprite.Node
	fps  *debug.FPS

	width, height float32 // points
	place         placement

	back, gear, power, character, caption sprite.SubTex
	shownModel                            int
	shownName                             string
	showing                               bool

	speedCaption sprite.SubTex
	shownSpeed   float32

	logs struct {
		open, dirty bool
		caption     sprite.SubTex
		panel       sprite.SubTex
		refreshed   clock.Time
	}

	touch struct {
		startX, startY float32
		lastX, lastY   float32
		moved          bool
	}
	pinch struct {
		dist, zoom float32
	}
}

// NewSceneView returns a view drawing with textures on surface.
func NewSceneView(surface *GLSurface, textures *Textures, clk FrameClock, scenes Scenes, opts ViewOptions) *SceneView {
	label, err := NewLabel(14)
	if err != nil {
		log.Warnf("can't create model label: %v", err)
	}
	if opts.Placements == nil {
		opts.Placements = viewstate.NewStore()
	}
	return &SceneView{
		surface:    surface,
		textures:   textures,
		clock:      clk,
		scenes:     scenes,
		opts:       opts,
		label:      label,
		place:      newPlacement(),
		shownModel: -1,
	}
}

// Initialize records the window size in pixels.
func (v *SceneView) Initialize(width, height int) {
	sz := v.surface.Size()
	v.width = toPt(sz, float32(width))
	v.height = toPt(sz, float32(height))
	log.WithFields(log.Fields{
		"widthPt":  v.width,
		"heightPt": v.height,
	}).Debug("view initialized")
}

// InitializeSprite builds the scene graph for the current sprite engine. It
// is a no-op when the graph already belongs to that engine.
func (v *SceneView) InitializeSprite() {
	eng := v.textures.Engine()
	if eng == nil {
		log.Warn("can't initialize sprites without a GL context")
		return
	}
	if eng == v.eng && v.root != nil {
		return
	}
	v.eng = eng
	v.fps = nil
	if images := v.textures.Images(); images != nil {
		v.fps = debug.NewFPS(images)
	}
	v.back = v.background()
	v.gear = v.subTex(GearTexture)
	v.power = v.subTex(PowerTexture)
	v.character = sprite.SubTex{}
	v.caption = sprite.SubTex{}
	v.speedCaption = sprite.SubTex{}
	v.shownSpeed = 0
	v.logs.caption = sprite.SubTex{}
	v.logs.panel = sprite.SubTex{}
	v.logs.dirty = true
	v.shownModel = -1
	if v.opts.Logs != nil {
		v.replaceLabel(&v.logs.caption, "Logs")
	}

	v.root = &sprite.Node{}
	eng.Register(v.root)
	eng.SetTransform(v.root, f32.Affine{
		{1, 0, 0},
		{0, 1, 0},
	})

	newNode := func(fn arrangerFunc) {
		n := &sprite.Node{Arranger: fn}
		eng.Register(n)
		v.root.AppendChild(n)
	}

	// Background.
	newNode(func(eng sprite.Engine, n *sprite.Node, t clock.Time) {
		sub := v.back
		if sub.T != nil {
			tw, th := sub.T.Bounds()
			sub.R = coverRect(tw, th, v.width, v.height)
		}
		eng.SetSubTex(n, sub)
		eng.SetTransform(n, box{0, 0, v.width, v.height}.affine())
	})

	// Character.
	newNode(func(eng sprite.Engine, n *sprite.Node, t clock.Time) {
		tw, th := 0, 0
		if v.character.T != nil {
			tw, th = v.character.R.Dx(), v.character.R.Dy()
		}
		eng.SetSubTex(n, v.character)
		eng.SetTransform(n, characterBox(v.width, v.height, tw, th, v.place).affine())
	})

	// Model name.
	newNode(func(eng sprite.Engine, n *sprite.Node, t clock.Time) {
		eng.SetSubTex(n, v.caption)
		eng.SetTransform(n, v.labelBox(iconMargin, iconMargin, v.caption).affine())
	})

	// Gear.
	newNode(func(eng sprite.Engine, n *sprite.Node, t clock.Time) {
		eng.SetSubTex(n, v.gear)
		eng.SetTransform(n, gearBox(v.width, v.height).affine())
	})

	// Power.
	newNode(func(eng sprite.Engine, n *sprite.Node, t clock.Time) {
		eng.SetSubTex(n, v.power)
		eng.SetTransform(n, powerBox(v.width, v.height).affine())
	})

	// Speed.
	newNode(func(eng sprite.Engine, n *sprite.Node, t clock.Time) {
		b := speedBox(v.width, v.height)
		eng.SetSubTex(n, v.speedCaption)
		eng.SetTransform(n, v.labelBox(b.x, b.y, v.speedCaption).affine())
	})

	// Log toggle and panel.
	newNode(func(eng sprite.Engine, n *sprite.Node, t clock.Time) {
		b := logBox(v.width, v.height)
		eng.SetSubTex(n, v.logs.caption)
		eng.SetTransform(n, v.labelBox(b.x, b.y, v.logs.caption).affine())
	})
	newNode(func(eng sprite.Engine, n *sprite.Node, t clock.Time) {
		b := logPanelBox(v.width, v.height)
		eng.SetSubTex(n, v.logs.panel)
		eng.SetTransform(n, v.labelBox(b.x, b.y, v.logs.panel).affine())
	})
}

// Render draws one frame.
func (v *SceneView) Render() {
	if v.root == nil || !v.textures.live(v.eng) {
		return
	}
	now := v.clock.Frame()
	v.syncModel()
	v.syncSpeed()
	v.syncLogs(now)
	sz := v.surface.Size()
	v.eng.Render(v.root, now, sz)
	if v.fps != nil {
		v.fps.Draw(sz)
	}
}

// syncModel swaps the character and caption textures after a scene change
// and restores the placement saved for the new model.
func (v *SceneView) syncModel() {
	idx := v.scenes.CurrentModel()
	if idx == v.shownModel {
		return
	}
	v.savePlacement()
	v.shownModel = idx
	m, ok := v.scenes.Model()
	if !ok {
		v.character = sprite.SubTex{}
		v.showing = false
		v.place = newPlacement()
		return
	}
	v.character = v.subTex(m.Dir + "/" + PreviewTexture)
	v.shownName = m.Name
	v.showing = true
	v.place = newPlacement()
	if t, ok := v.opts.Placements.Get(m.Name); ok {
		v.place = placementOf(t)
	}
	v.replaceLabel(&v.caption, m.Name)
}

// savePlacement records the placement of the shown model.
func (v *SceneView) savePlacement() {
	if !v.showing {
		return
	}
	v.opts.Placements.Put(v.shownName, v.place.transform())
}

func (v *SceneView) syncSpeed() {
	if v.opts.Speed == nil {
		return
	}
	s := v.opts.Speed.Speed()
	if s == v.shownSpeed && v.speedCaption.T != nil {
		return
	}
	v.shownSpeed = s
	v.replaceLabel(&v.speedCaption, "- "+timing.SpeedName(s)+" +")
}

func (v *SceneView) syncLogs(now clock.Time) {
	if v.opts.Logs == nil {
		return
	}
	if !v.logs.open {
		v.replaceLabel(&v.logs.panel)
		return
	}
	if !v.logs.dirty && now >= v.logs.refreshed && now-v.logs.refreshed < logRefreshFrames {
		return
	}
	v.logs.dirty = false
	v.logs.refreshed = now
	v.replaceLabel(&v.logs.panel, logLines(v.opts.Logs.Entries(), logPanelLines)...)
}

// replaceLabel releases the texture in dst and replaces it with lines
// rendered through the label. Blank lines leave dst empty.
func (v *SceneView) replaceLabel(dst *sprite.SubTex, lines ...string) {
	if dst.T != nil {
		dst.T.Release()
		*dst = sprite.SubTex{}
	}
	if v.label == nil || strings.Join(lines, "") == "" {
		return
	}
	img, err := v.label.RenderLines(lines, v.surface.Size().PixelsPerPt)
	if err != nil {
		log.Warnf("can't render label: %v", err)
		return
	}
	tex, err := v.textures.LoadImage(img)
	if err != nil {
		log.Warnf("can't load label: %v", err)
		return
	}
	*dst = sprite.SubTex{T: tex, R: img.Bounds()}
}

// labelBox places a label texture at x, y in its natural size.
func (v *SceneView) labelBox(x, y float32, sub sprite.SubTex) box {
	ppt := v.surface.Size().PixelsPerPt
	if ppt <= 0 {
		ppt = 1
	}
	return box{x, y, float32(sub.R.Dx()) / ppt, float32(sub.R.Dy()) / ppt}
}

// background loads the configured background file, falling back to
// BackTexture when it is unset or can't be loaded.
func (v *SceneView) background() sprite.SubTex {
	path := strings.TrimSpace(v.opts.Background)
	if path == "" {
		return v.subTex(BackTexture)
	}
	t, err := v.textures.OpenFile(path)
	if err != nil {
		log.WithField("background", path).Warnf("using default background: %v", err)
		return v.subTex(BackTexture)
	}
	w, h := t.Bounds()
	return sprite.SubTex{T: t, R: image.Rect(0, 0, w, h)}
}

func (v *SceneView) subTex(name string) sprite.SubTex {
	t, err := v.textures.Open(name)
	if err != nil {
		log.WithField("texture", name).Warn(err)
		return sprite.SubTex{}
	}
	w, h := t.Bounds()
	return sprite.SubTex{T: t, R: image.Rect(0, 0, w, h)}
}

// logLines formats the last n entries, oldest first.
func logLines(entries []logging.Entry, n int) []string {
	if len(entries) == 0 {
		return []string{"no log entries"}
	}
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		s := fmt.Sprintf("%s %-4.4s %s", e.Time.Format("15:04:05"), strings.ToUpper(e.Level.String()), e.Message)
		if r := []rune(s); len(r) > logLineMaxRunes {
			s = string(r[:logLineMaxRunes-1]) + "~"
		}
		lines = append(lines, s)
	}
	return lines
}

// OnTouchesBegan starts a drag or a tap.
func (v *SceneView) OnTouchesBegan(x, y float32) {
	sz := v.surface.Size()
	px, py := toPt(sz, x), toPt(sz, y)
	v.touch.startX, v.touch.startY = px, py
	v.touch.lastX, v.touch.lastY = px, py
	v.touch.moved = false
}

// OnTouchesMoved drags the character.
func (v *SceneView) OnTouchesMoved(x, y float32) {
	sz := v.surface.Size()
	px, py := toPt(sz, x), toPt(sz, y)
	if !v.touch.moved && hypot(px-v.touch.startX, py-v.touch.startY) > tapSlop {
		v.touch.moved = true
	}
	v.place.translate(px-v.touch.lastX, py-v.touch.lastY)
	v.touch.lastX, v.touch.lastY = px, py
}

// OnTouchesEnded handles taps on the icons and the log panel.
func (v *SceneView) OnTouchesEnded(x, y float32) {
	if v.touch.moved {
		return
	}
	sz := v.surface.Size()
	px, py := toPt(sz, x), toPt(sz, y)
	switch {
	case gearBox(v.width, v.height).contains(px, py):
		log.Info("gear tapped, switching model")
		v.scenes.NextScene()
	case powerBox(v.width, v.height).contains(px, py):
		log.Info("power tapped")
		if v.opts.OnPower != nil {
			v.opts.OnPower()
		}
	case v.opts.Speed != nil && speedBox(v.width, v.height).contains(px, py):
		v.tapSpeed(speedBox(v.width, v.height), px)
	case v.opts.Logs != nil && logBox(v.width, v.height).contains(px, py):
		v.logs.open = !v.logs.open
		v.logs.dirty = true
	case v.logs.open && logPanelBox(v.width, v.height).contains(px, py):
		v.opts.Logs.Clear()
		v.logs.dirty = true
	}
}

func (v *SceneView) tapSpeed(b box, x float32) {
	switch third := (x - b.x) * 3 / b.w; {
	case third < 1:
		v.opts.Speed.PreviousPreset()
	case third < 2:
		v.opts.Speed.ResetSpeed()
	default:
		v.opts.Speed.NextPreset()
	}
	log.WithField("speed", timing.SpeedName(v.opts.Speed.Speed())).Info("speed tapped")
}

// OnMultiTouchesBegan starts a pinch.
func (v *SceneView) OnMultiTouchesBegan(x1, y1, x2, y2 float32) {
	v.touch.moved = true
	v.pinch.dist = hypot(x1-x2, y1-y2)
	v.pinch.zoom = v.place.zoom
	v.touch.lastX, v.touch.lastY = toPt(v.surface.Size(), (x1+x2)/2), toPt(v.surface.Size(), (y1+y2)/2)
}

// OnMultiTouchesMoved zooms by the finger distance ratio and drags by the
// midpoint.
func (v *SceneView) OnMultiTouchesMoved(x1, y1, x2, y2 float32) {
	if v.pinch.dist > 0 {
		v.place.setZoom(v.pinch.zoom * hypot(x1-x2, y1-y2) / v.pinch.dist)
	}
	sz := v.surface.Size()
	mx, my := toPt(sz, (x1+x2)/2), toPt(sz, (y1+y2)/2)
	v.place.translate(mx-v.touch.lastX, my-v.touch.lastY)
	v.touch.lastX, v.touch.lastY = mx, my
}

// Zoom returns the character zoom factor.
func (v *SceneView) Zoom() float32 { return v.place.zoom }

// Offset returns the character offset in points.
func (v *SceneView) Offset() (dx, dy float32) { return v.place.dx, v.place.dy }

// LogsOpen reports whether the log panel is shown.
func (v *SceneView) LogsOpen() bool { return v.logs.open }

// Close saves the placement of the shown model and frees the GL objects
// owned by the view. Textures loaded through the texture manager are freed
// with it.
func (v *SceneView) Close() {
	v.savePlacement()
	if err := v.opts.Placements.Save(); err != nil {
		log.Warn(err)
	}
	if v.textures.live(v.eng) {
		if v.fps != nil {
			v.fps.Release()
		}
		for _, sub := range []sprite.SubTex{v.caption, v.speedCaption, v.logs.caption, v.logs.panel} {
			if sub.T != nil {
				sub.T.Release()
			}
		}
	}
	v.fps = nil
	v.root = nil
	v.eng = nil
	v.caption = sprite.SubTex{}
	v.speedCaption = sprite.SubTex{}
	v.logs.caption = sprite.SubTex{}
	v.logs.panel = sprite.SubTex{}
	v.character = sprite.SubTex{}
	v.shownModel = -1
	v.showing = false
}

type arrangerFunc func(e sprite.Engine, n *sprite.Node, t clock.Time)

func (a arrangerFunc) Arrange(e sprite.Engine, n *sprite.Node, t clock.Time) { a(e, n, t) }

func hypot(dx, dy float32) float32 {
	return float32(math.Hypot(float64(dx), float64(dy)))
}
