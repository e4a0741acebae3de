package delegate

import (
	log "github.com/sirupsen/logrus"
)

// Holder owns at most one Delegate. It is created by the program entry point
// and passed to whatever needs the delegate.
type Holder struct {
	deps Deps
	d    *Delegate
}

// NewHolder returns an empty holder that builds delegates from deps.
func NewHolder(deps Deps) *Holder {
	return &Holder{deps: deps}
}

// Instance returns the current delegate, constructing a fresh one if there is
// none.
func (h *Holder) Instance() *Delegate {
	if h.d == nil {
		h.d = newDelegate(h, h.deps)
	}
	return h.d
}

// Current returns the delegate without constructing one.
func (h *Holder) Current() *Delegate { return h.d }

// Release drops the current delegate. The next Instance builds a new one.
func (h *Holder) Release() {
	h.d = nil
}

// frameworkState is implemented by frameworks that report their lifetime.
type frameworkState interface {
	IsInitialized() bool
}

// Reset tears everything down: the scene manager is released, the current
// delegate (if any) is stopped and destroyed, and the framework is disposed
// if it is still initialized.
func (h *Holder) Reset() {
	log.Debug("global reset")
	if h.deps.Scenes != nil {
		h.deps.Scenes.Release()
	}
	if d := h.d; d != nil {
		d.OnStop()
		d.OnDestroy()
	}
	h.Release()

	if fw, ok := h.deps.Framework.(frameworkState); ok && fw.IsInitialized() {
		h.deps.Framework.Dispose()
	}
}
