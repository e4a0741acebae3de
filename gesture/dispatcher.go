// Package gesture turns raw touch sequences into single- and two-finger
// gestures, dropping moves that jump too far in too little time.
package gesture

import (
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/mobile/event/touch"
)

// Callbacks receives recognized gestures.
type Callbacks interface {
	OnSingleDown(x, y float32)
	OnSingleMove(x, y float32)
	OnSingleUp(x, y float32)
	OnMultiStart(x1, y1, x2, y2 float32)
	OnMultiMove(x1, y1, x2, y2 float32)
	OnMultiEnd()
}

// Limits configures the jump filter.
type Limits struct {
	ShortWindow         time.Duration
	MaxSingleDelta      float32
	MaxMultiCenterDelta float32
	MaxMultiRatio       float32
	MinMultiRatio       float32
}

// DefaultLimits are tuned for phone screens.
var DefaultLimits = Limits{
	ShortWindow:         45 * time.Millisecond,
	MaxSingleDelta:      240,
	MaxMultiCenterDelta: 280,
	MaxMultiRatio:       2.2,
	MinMultiRatio:       0.45,
}

const minDistance = 5

type point struct{ x, y float32 }

type pointer struct {
	seq  touch.Sequence
	down bool
	pos  point
}

// Dispatcher tracks a primary and a secondary finger. It is not safe for
// concurrent use.
type Dispatcher struct {
	cb     Callbacks
	limits Limits
	now    func() time.Time

	primary, secondary pointer
	multi              bool

	single struct {
		ok  bool
		at  time.Time
		pos point
	}
	pair struct {
		ok     bool
		at     time.Time
		center point
		dist   float32
	}
}

// NewDispatcher returns a dispatcher sending gestures to cb.
func NewDispatcher(cb Callbacks, limits Limits) *Dispatcher {
	return &Dispatcher{cb: cb, limits: limits, now: time.Now}
}

// OnTouch feeds one touch event. Begin and move events with non-finite
// coordinates are dropped; an end event with them ends the sequence at the
// pointer's last known position.
func (d *Dispatcher) OnTouch(e touch.Event) {
	p := point{e.X, e.Y}
	if !finite(p.x) || !finite(p.y) {
		if e.Type != touch.TypeEnd {
			log.WithFields(log.Fields{"x": p.x, "y": p.y, "type": e.Type}).Warn("ignoring non-finite touch")
			return
		}
		p = d.lastPos(e.Sequence)
	}
	switch e.Type {
	case touch.TypeBegin:
		d.begin(e.Sequence, p)
	case touch.TypeMove:
		d.move(e.Sequence, p)
	case touch.TypeEnd:
		d.end(e.Sequence, p)
	}
}

func (d *Dispatcher) begin(seq touch.Sequence, p point) {
	switch {
	case !d.primary.down:
		d.primary = pointer{seq: seq, down: true, pos: p}
		d.secondary = pointer{}
		d.multi = false
		d.recordSingle(p)
		d.cb.OnSingleDown(p.x, p.y)
	case !d.secondary.down && seq != d.primary.seq:
		d.secondary = pointer{seq: seq, down: true, pos: p}
		d.multi = true
		d.recordPair(d.primary.pos, p)
		log.WithFields(log.Fields{
			"primary":   d.primary.seq,
			"secondary": seq,
		}).Debug("multi touch start")
		d.cb.OnMultiStart(d.primary.pos.x, d.primary.pos.y, p.x, p.y)
	}
}

func (d *Dispatcher) move(seq touch.Sequence, p point) {
	switch {
	case d.primary.down && seq == d.primary.seq:
		d.primary.pos = p
	case d.secondary.down && seq == d.secondary.seq:
		d.secondary.pos = p
	default:
		return
	}

	if d.multi {
		a, b := d.primary.pos, d.secondary.pos
		if d.ignorePair(a, b) {
			return
		}
		d.cb.OnMultiMove(a.x, a.y, b.x, b.y)
		d.recordPair(a, b)
		return
	}
	if d.ignoreSingle(p) {
		return
	}
	d.cb.OnSingleMove(p.x, p.y)
}

func (d *Dispatcher) end(seq touch.Sequence, p point) {
	switch {
	case d.secondary.down && seq == d.secondary.seq:
		d.endMulti()
		d.secondary = pointer{}
		d.recordSingle(d.primary.pos)
		d.cb.OnSingleDown(d.primary.pos.x, d.primary.pos.y)
	case d.primary.down && seq == d.primary.seq:
		d.endMulti()
		if d.secondary.down {
			d.primary = d.secondary
			d.secondary = pointer{}
			d.recordSingle(d.primary.pos)
			d.cb.OnSingleDown(d.primary.pos.x, d.primary.pos.y)
			return
		}
		d.cb.OnSingleUp(p.x, p.y)
		d.Reset()
	}
}

func (d *Dispatcher) lastPos(seq touch.Sequence) point {
	if d.secondary.down && seq == d.secondary.seq {
		return d.secondary.pos
	}
	return d.primary.pos
}

// Reset forgets every pointer, ending a running two-finger gesture.
func (d *Dispatcher) Reset() {
	d.primary = pointer{}
	d.secondary = pointer{}
	d.endMulti()
	d.single.ok = false
}

func (d *Dispatcher) endMulti() {
	if d.multi {
		d.cb.OnMultiEnd()
	}
	d.multi = false
	d.pair.ok = false
}

func (d *Dispatcher) recordSingle(p point) {
	d.single.ok = true
	d.single.at = d.now()
	d.single.pos = p
}

func (d *Dispatcher) recordPair(a, b point) {
	d.pair.ok = true
	d.pair.at = d.now()
	d.pair.center = mid(a, b)
	d.pair.dist = dist(a, b)
}

func (d *Dispatcher) ignoreSingle(p point) bool {
	if !d.single.ok {
		d.recordSingle(p)
		return false
	}
	dt := d.now().Sub(d.single.at)
	delta := dist(p, d.single.pos)
	if dt >= 0 && dt < d.limits.ShortWindow && delta > d.limits.MaxSingleDelta {
		log.WithFields(log.Fields{"dt": dt, "delta": delta}).Warn("ignoring single move")
		return true
	}
	d.recordSingle(p)
	return false
}

func (d *Dispatcher) ignorePair(a, b point) bool {
	if !d.pair.ok {
		d.recordPair(a, b)
		return false
	}
	dt := d.now().Sub(d.pair.at)
	centerDelta := dist(mid(a, b), d.pair.center)
	ratio := float32(1)
	if d.pair.dist > minDistance {
		ratio = dist(a, b) / d.pair.dist
	}
	if dt >= 0 && dt < d.limits.ShortWindow &&
		(centerDelta > d.limits.MaxMultiCenterDelta || ratio > d.limits.MaxMultiRatio || ratio < d.limits.MinMultiRatio) {
		log.WithFields(log.Fields{"dt": dt, "center": centerDelta, "ratio": ratio}).Warn("ignoring multi move")
		return true
	}
	if !finite(ratio) || !finite(centerDelta) {
		log.WithFields(log.Fields{"center": centerDelta, "ratio": ratio}).Warn("ignoring non-finite multi move")
		return true
	}
	return false
}

func mid(a, b point) point {
	return point{(a.x + b.x) * 0.5, (a.y + b.y) * 0.5}
}

func dist(a, b point) float32 {
	return float32(math.Hypot(float64(a.x-b.x), float64(a.y-b.y)))
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
