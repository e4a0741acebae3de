package render

import (
	"image"

	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/exp/f32"

	"github.com/pawelkowalak/l2dview/viewstate"
)

// Sizes in points.
const (
	iconSize   = 40
	iconMargin = 12
	tapSlop    = 6
)

// box is an axis aligned rectangle in points.
type box struct {
	x, y, w, h float32
}

func (b box) contains(x, y float32) bool {
	return x >= b.x && x <= b.x+b.w && y >= b.y && y <= b.y+b.h
}

func (b box) affine() f32.Affine {
	return f32.Affine{
		{b.w, 0, b.x},
		{0, b.h, b.y},
	}
}

// placement is the character offset and zoom set by user gestures.
type placement struct {
	dx, dy float32
	zoom   float32
}

func newPlacement() placement {
	return placementOf(viewstate.Identity)
}

func placementOf(t viewstate.Transform) placement {
	return placement{dx: t.OffsetX, dy: t.OffsetY, zoom: t.Zoom}
}

func (p placement) transform() viewstate.Transform {
	return viewstate.Transform{OffsetX: p.dx, OffsetY: p.dy, Zoom: p.zoom}
}

func (p *placement) translate(dx, dy float32) {
	p.dx += dx
	p.dy += dy
}

func (p *placement) setZoom(z float32) {
	p.zoom = viewstate.ClampZoom(z)
}

// characterBox centers a texture of tw x th pixels on a w x h point screen,
// scaled to 80% of the screen height and then moved by p.
func characterBox(w, h float32, tw, th int, p placement) box {
	ch := h * 0.8 * p.zoom
	cw := ch
	if tw > 0 && th > 0 {
		cw = ch * float32(tw) / float32(th)
	}
	return box{
		x: (w-cw)/2 + p.dx,
		y: (h-ch)/2 + p.dy,
		w: cw,
		h: ch,
	}
}

// gearBox is the top-right icon switching to the next model.
func gearBox(w, h float32) box {
	return box{w - iconSize - iconMargin, iconMargin, iconSize, iconSize}
}

// powerBox is the bottom-right icon closing the app.
func powerBox(w, h float32) box {
	return box{w - iconSize - iconMargin, h - iconSize - iconMargin, iconSize, iconSize}
}

// speedBox is the bottom-left speed caption. Its thirds select the
// previous preset, normal speed and the next preset.
func speedBox(w, h float32) box {
	return box{iconMargin, h - iconSize - iconMargin, 3 * iconSize, iconSize}
}

// logBox is the caption next to speedBox toggling the log panel.
func logBox(w, h float32) box {
	return box{2*iconMargin + 3*iconSize, h - iconSize - iconMargin, 2 * iconSize, iconSize}
}

// logPanelBox is the area between the top and bottom icon rows holding the
// log panel.
func logPanelBox(w, h float32) box {
	top := float32(2*iconMargin + iconSize)
	return box{iconMargin, top, w - 2*iconMargin, h - 2*top}
}

// coverRect crops a tw x th texture around its center to the aspect of a
// w x h screen.
func coverRect(tw, th int, w, h float32) image.Rectangle {
	r := image.Rect(0, 0, tw, th)
	if tw <= 0 || th <= 0 || w <= 0 || h <= 0 {
		return r
	}
	if float32(tw)*h > float32(th)*w {
		cw := int(float32(th) * w / h)
		x := (tw - cw) / 2
		return image.Rect(x, 0, x+cw, th)
	}
	ch := int(float32(tw) * h / w)
	y := (th - ch) / 2
	return image.Rect(0, y, tw, y+ch)
}

// toPt converts a pixel coordinate using the window density.
func toPt(sz size.Event, px float32) float32 {
	if sz.PixelsPerPt <= 0 {
		return px
	}
	return px / sz.PixelsPerPt
}
