package main

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pawelkowalak/l2dview/delegate"
	"github.com/pawelkowalak/l2dview/logging"
)

// host stands for the app window. Finishing it ends the event loop after
// the current frame.
type host struct {
	finished bool
}

func (h *host) ApplicationContext() delegate.Context { return h }

func (h *host) FinishAndRemoveTask() {
	if !h.finished {
		log.Info("Finishing app")
	}
	h.finished = true
}

// touchForwarder delivers recognized gestures as delegate events.
type touchForwarder struct {
	dispatch func(e delegate.Event)
	throttle *logging.Throttle
}

func (t *touchForwarder) send(e delegate.Event) {
	t.throttle.Logf(log.StandardLogger(), log.DebugLevel, e.Kind.String(), "%v at %v,%v", e.Kind, e.X1, e.Y1)
	t.dispatch(e)
}

func (t *touchForwarder) OnSingleDown(x, y float32) {
	t.send(delegate.Event{Kind: delegate.EventTouchBegan, X1: x, Y1: y})
}

func (t *touchForwarder) OnSingleMove(x, y float32) {
	t.send(delegate.Event{Kind: delegate.EventTouchMoved, X1: x, Y1: y})
}

func (t *touchForwarder) OnSingleUp(x, y float32) {
	t.send(delegate.Event{Kind: delegate.EventTouchEnded, X1: x, Y1: y})
}

func (t *touchForwarder) OnMultiStart(x1, y1, x2, y2 float32) {
	t.send(delegate.Event{Kind: delegate.EventMultiTouchBegan, X1: x1, Y1: y1, X2: x2, Y2: y2})
}

func (t *touchForwarder) OnMultiMove(x1, y1, x2, y2 float32) {
	t.send(delegate.Event{Kind: delegate.EventMultiTouchMoved, X1: x1, Y1: y1, X2: x2, Y2: y2})
}

func (t *touchForwarder) OnMultiEnd() {
	log.Debug("multi touch end")
}

func durationMs(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
