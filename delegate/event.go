package delegate

import "fmt"

// EventKind enumerates the host callbacks.
type EventKind int

const (
	EventStart EventKind = iota
	EventPause
	EventStop
	EventDestroy
	EventSurfaceCreated
	EventSurfaceChanged
	EventFrame
	EventTouchBegan
	EventTouchMoved
	EventTouchEnded
	EventMultiTouchBegan
	EventMultiTouchMoved
)

var eventNames = [...]string{
	EventStart:           "Start",
	EventPause:           "Pause",
	EventStop:            "Stop",
	EventDestroy:         "Destroy",
	EventSurfaceCreated:  "SurfaceCreated",
	EventSurfaceChanged:  "SurfaceChanged",
	EventFrame:           "Frame",
	EventTouchBegan:      "TouchBegan",
	EventTouchMoved:      "TouchMoved",
	EventTouchEnded:      "TouchEnded",
	EventMultiTouchBegan: "MultiTouchBegan",
	EventMultiTouchMoved: "MultiTouchMoved",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one host callback with its arguments. Only the fields meaningful
// for Kind are read.
type Event struct {
	Kind EventKind

	// Start: Host takes precedence over Context.
	Host    Host
	Context Context

	// SurfaceChanged.
	Width, Height int

	// Touch events. Single-finger events use X1, Y1.
	X1, Y1, X2, Y2 float32
}

// Dispatch delivers e to d.
func Dispatch(d *Delegate, e Event) {
	switch e.Kind {
	case EventStart:
		if e.Host != nil {
			d.OnStart(e.Host)
		} else {
			d.OnStartWithContext(e.Context)
		}
	case EventPause:
		d.OnPause()
	case EventStop:
		d.OnStop()
	case EventDestroy:
		d.OnDestroy()
	case EventSurfaceCreated:
		d.OnSurfaceCreated()
	case EventSurfaceChanged:
		d.OnSurfaceChanged(e.Width, e.Height)
	case EventFrame:
		d.Run()
	case EventTouchBegan:
		d.OnTouchBegan(e.X1, e.Y1)
	case EventTouchMoved:
		d.OnTouchMoved(e.X1, e.Y1)
	case EventTouchEnded:
		d.OnTouchEnd(e.X1, e.Y1)
	case EventMultiTouchBegan:
		d.OnMultiTouchBegan(e.X1, e.Y1, e.X2, e.Y2)
	case EventMultiTouchMoved:
		d.OnMultiTouchMoved(e.X1, e.Y1, e.X2, e.Y2)
	}
}
