package game

import (
	"math"
	"time"

	"github.com/rs/zerolog"
)

// AimMachine tracks the cannon's aim angle. Directional input nudges a
// target angle in fixed steps; the displayed angle chases the target by
// exponential smoothing each tick, snapping once within epsilon. With
// no direction held, the target drifts back toward center. Both angles
// stay clamped to [MinAngle, MaxAngle]; 0° is straight up.
type AimMachine struct {
	opts  Options
	clock Clock
	gate  *ActionGate
	hub   *Hub
	log   zerolog.Logger

	currentAngle float64
	targetAngle  float64

	inputDir      Direction
	inputActive   bool
	aiming        bool
	lastDirChange time.Time
}

// NewAimMachine creates the machine and subscribes it to the
// directional input events and the shot-fired reset on the hub.
func NewAimMachine(gate *ActionGate, hub *Hub, clock Clock, opts Options, log zerolog.Logger) *AimMachine {
	m := &AimMachine{
		opts:  opts,
		clock: clock,
		gate:  gate,
		hub:   hub,
		log:   log.With().Str("component", "aim").Logger(),
	}
	hub.Subscribe(EventAimLeft, func(Event, any) { m.Nudge(DirLeft) })
	hub.Subscribe(EventAimRight, func(Event, any) { m.Nudge(DirRight) })
	hub.Subscribe(EventShotFired, func(Event, any) { m.reset() })
	return m
}

// CurrentAngle returns the displayed angle in degrees.
func (m *AimMachine) CurrentAngle() float64 { return m.currentAngle }

// TargetAngle returns the angle the display is chasing.
func (m *AimMachine) TargetAngle() float64 { return m.targetAngle }

// Aiming reports whether a directional input has been accepted since
// the last shot.
func (m *AimMachine) Aiming() bool { return m.aiming }

// InputDirection returns the active direction, if any.
func (m *AimMachine) InputDirection() (Direction, bool) {
	return m.inputDir, m.inputActive
}

// Nudge moves the target angle one step in the given direction. The
// gate is re-checked here: an aim event reaching the machine in a stage
// that no longer allows aiming mutates nothing.
func (m *AimMachine) Nudge(d Direction) bool {
	return m.gate.PerformAction(ActionAim, func() {
		if !m.inputActive || m.inputDir != d {
			m.lastDirChange = m.clock.Now()
		}
		m.inputDir = d
		m.inputActive = true
		m.aiming = true

		step := m.opts.AimStep
		if d == DirLeft {
			step = -step
		}
		m.targetAngle = m.clamp(m.targetAngle + step)
	})
}

// ReleaseDirection clears the active direction; the target then drifts
// back toward center on subsequent ticks.
func (m *AimMachine) ReleaseDirection() {
	m.inputActive = false
}

// reset is the shot-fired reaction: direction and aiming flags clear.
// The pipeline's direction buffer is shared infrastructure and is not
// touched here.
func (m *AimMachine) reset() {
	m.inputActive = false
	m.aiming = false
}

// Tick advances the smoothing. Publishes an angle-changed event only
// when the displayed angle actually moved.
func (m *AimMachine) Tick() {
	// Recenter drift: with no active direction the target eases back to
	// 0° with the same smoothing curve the display uses.
	if !m.inputActive {
		m.targetAngle += (0 - m.targetAngle) * m.opts.Smoothing
		if math.Abs(m.targetAngle) < m.opts.SnapEpsilon {
			m.targetAngle = 0
		}
	}

	prev := m.currentAngle
	m.currentAngle += (m.targetAngle - m.currentAngle) * m.opts.Smoothing
	if math.Abs(m.targetAngle-m.currentAngle) < m.opts.SnapEpsilon {
		m.currentAngle = m.targetAngle
	}
	m.currentAngle = m.clamp(m.currentAngle)

	if m.currentAngle != prev {
		m.hub.Publish(EventAngleChanged, AngleChanged{Angle: m.currentAngle})
	}
}

func (m *AimMachine) clamp(a float64) float64 {
	if a < m.opts.MinAngle {
		return m.opts.MinAngle
	}
	if a > m.opts.MaxAngle {
		return m.opts.MaxAngle
	}
	return a
}
