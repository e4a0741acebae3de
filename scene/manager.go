// Package scene keeps track of which character model is on screen.
package scene

import (
	log "github.com/sirupsen/logrus"
)

// Model is one selectable character model.
type Model struct {
	Name string
	Dir  string
}

// Manager holds the model list and the index of the active one.
type Manager struct {
	models   []Model
	current  int
	loaded   bool
	onChange func(index int, m Model)
}

// NewManager returns a manager over models with index 0 active and nothing
// loaded yet.
func NewManager(models []Model) *Manager {
	return &Manager{models: models}
}

// OnChange registers fn to be called after every scene change.
func (m *Manager) OnChange(fn func(index int, m Model)) {
	m.onChange = fn
}

// CurrentModel returns the active scene index.
func (m *Manager) CurrentModel() int { return m.current }

// Loaded reports whether a scene has been loaded since the last Release.
func (m *Manager) Loaded() bool { return m.loaded }

// Models returns the configured model list.
func (m *Manager) Models() []Model { return m.models }

// Model returns the active model.
func (m *Manager) Model() (Model, bool) {
	if len(m.models) == 0 {
		return Model{}, false
	}
	return m.models[m.current], true
}

// ChangeScene makes index the active scene. Out of range indices wrap around
// the model list.
func (m *Manager) ChangeScene(index int) {
	if len(m.models) == 0 {
		log.Warn("no models configured, scene change ignored")
		return
	}
	n := len(m.models)
	index = ((index % n) + n) % n
	m.current = index
	m.loaded = true
	model := m.models[index]
	log.WithFields(log.Fields{
		"index": index,
		"model": model.Name,
		"dir":   model.Dir,
	}).Info("scene changed")
	if m.onChange != nil {
		m.onChange(index, model)
	}
}

// NextScene switches to the model after the active one.
func (m *Manager) NextScene() {
	m.ChangeScene(m.current + 1)
}

// Release drops the loaded scene and resets the index, leaving the manager as
// freshly constructed.
func (m *Manager) Release() {
	m.current = 0
	m.loaded = false
	log.Debug("scene manager released")
}
