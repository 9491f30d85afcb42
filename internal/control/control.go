package control

import (
	"sync/atomic"

	"FeedbackResponder/internal/ports"
)

// RunControl is the start/stop switch shared by the HTTP control surface
// and the sweep loop. The zero value is stopped.
type RunControl struct {
	running atomic.Bool
}

var _ ports.RunState = (*RunControl)(nil)

// New returns a RunControl in the given initial state.
func New(running bool) *RunControl {
	c := &RunControl{}
	c.running.Store(running)
	return c
}

// Running reports the current state.
func (c *RunControl) Running() bool {
	return c.running.Load()
}

// SetRunning flips the switch.
func (c *RunControl) SetRunning(running bool) {
	c.running.Store(running)
}

// Start enables sweeping.
func (c *RunControl) Start() { c.SetRunning(true) }

// Stop prevents the next sweep from starting.
func (c *RunControl) Stop() { c.SetRunning(false) }
