// Package timing provides the frame clock shared by the delegate and the
// scene view. The clock can run faster or slower than wall time through a
// motion speed multiplier.
package timing

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/mobile/exp/sprite/clock"
)

// Speed limits and presets for motion playback.
const (
	MinSpeed = 0.1
	MaxSpeed = 30.0

	defaultPreset = 4
)

var presets = []float32{0.1, 0.25, 0.5, 0.75, 1, 1.25, 1.5, 2, 3, 5, 10, 15, 20, 25, 30}

// Clock measures the time between UpdateTime calls, scaled by speed.
type Clock struct {
	now     func() time.Time
	last    time.Time
	delta   float64 // scaled seconds since previous update
	elapsed float64 // scaled seconds since first update
	speed   float32
	preset  int
	changes int
}

// New returns a clock at normal speed reading the wall clock.
func New() *Clock {
	return NewWithSource(time.Now)
}

// NewWithSource returns a clock reading time from now.
func NewWithSource(now func() time.Time) *Clock {
	return &Clock{now: now, speed: 1, preset: defaultPreset}
}

// UpdateTime advances the clock. The first call only records the reference
// point and leaves the delta at zero.
func (c *Clock) UpdateTime() {
	t := c.now()
	if c.last.IsZero() {
		c.last = t
		c.delta = 0
		return
	}
	c.delta = t.Sub(c.last).Seconds() * float64(c.speed)
	c.elapsed += c.delta
	c.last = t
}

// DeltaTime returns the scaled seconds between the last two updates.
func (c *Clock) DeltaTime() float32 { return float32(c.delta) }

// Elapsed returns the scaled time accumulated since the first update.
func (c *Clock) Elapsed() time.Duration {
	return time.Duration(c.elapsed * float64(time.Second))
}

// Frame returns the elapsed time as a 60 Hz sprite clock.
func (c *Clock) Frame() clock.Time {
	return clock.Time(c.elapsed * 60)
}

// Speed returns the current multiplier.
func (c *Clock) Speed() float32 { return c.speed }

// SetSpeed clamps s to [MinSpeed, MaxSpeed] and applies it.
func (c *Clock) SetSpeed(s float32) {
	if s < MinSpeed {
		s = MinSpeed
	}
	if s > MaxSpeed {
		s = MaxSpeed
	}
	if s == c.speed {
		return
	}
	old := c.speed
	c.speed = s
	c.changes++
	for i, p := range presets {
		if p == s {
			c.preset = i
			break
		}
	}
	log.WithFields(log.Fields{
		"from": SpeedName(old),
		"to":   SpeedName(s),
	}).Debug("motion speed changed")
}

// NextPreset moves to the next preset speed, wrapping around.
func (c *Clock) NextPreset() {
	c.preset = (c.preset + 1) % len(presets)
	c.SetSpeed(presets[c.preset])
}

// PreviousPreset moves to the previous preset speed, wrapping around.
func (c *Clock) PreviousPreset() {
	if c.preset > 0 {
		c.preset--
	} else {
		c.preset = len(presets) - 1
	}
	c.SetSpeed(presets[c.preset])
}

// ResetSpeed returns to normal speed.
func (c *Clock) ResetSpeed() {
	c.preset = defaultPreset
	c.SetSpeed(1)
}

// SpeedChanges returns how many times the speed actually changed.
func (c *Clock) SpeedChanges() int { return c.changes }

// SpeedName formats a speed multiplier for display.
func SpeedName(s float32) string {
	return fmt.Sprintf("%gx", s)
}
