package game

import (
	"time"

	"github.com/rs/zerolog"
)

// ChargeState is the charge machine's mode.
type ChargeState int

const (
	ChargeIdle ChargeState = iota
	ChargeCharging
)

func (s ChargeState) String() string {
	switch s {
	case ChargeIdle:
		return "idle"
	case ChargeCharging:
		return "charging"
	default:
		return "unknown"
	}
}

// ChargeMachine is the press-hold-release power mechanic. Power grows
// linearly with held duration, bounded to [MinPower, MaxPower]. One
// authoritative maximum is used on both the manual-release path and the
// forced-timeout path: the rate is derived so power reaches MaxPower
// exactly when the hold timeout elapses.
//
// The machine re-checks the gate itself on charge start and on fire; it
// never trusts that an upstream event was gated.
type ChargeMachine struct {
	opts  Options
	clock Clock
	gate  *ActionGate
	hub   *Hub
	log   zerolog.Logger

	state         ChargeState
	startTime     time.Time
	power         float64
	cooldownUntil time.Time
}

// NewChargeMachine creates the machine and subscribes it to the charge
// and fire input events on the hub.
func NewChargeMachine(gate *ActionGate, hub *Hub, clock Clock, opts Options, log zerolog.Logger) *ChargeMachine {
	m := &ChargeMachine{
		opts:  opts,
		clock: clock,
		gate:  gate,
		hub:   hub,
		log:   log.With().Str("component", "charge").Logger(),
	}
	hub.Subscribe(EventChargeStart, func(Event, any) { m.Start() })
	hub.Subscribe(EventFire, func(Event, any) { m.Release() })
	return m
}

// State returns the current machine state.
func (m *ChargeMachine) State() ChargeState { return m.state }

// Charging reports whether a charge is in progress.
func (m *ChargeMachine) Charging() bool { return m.state == ChargeCharging }

// Power returns the most recently computed power value. While idle it
// holds the value captured at the last fire (or the minimum before any
// charge).
func (m *ChargeMachine) Power() float64 { return m.power }

// Start begins charging. Refused while already charging, inside the
// post-fire cooldown, or when the gate denies the charge action.
func (m *ChargeMachine) Start() bool {
	if m.state != ChargeIdle {
		return false
	}
	now := m.clock.Now()
	if now.Before(m.cooldownUntil) {
		return false
	}
	return m.gate.PerformAction(ActionCharge, func() {
		m.state = ChargeCharging
		m.startTime = now
		m.power = m.opts.minPower()
	})
}

// Tick recomputes power from elapsed charge time and, once the hold
// ceiling is reached, forces a release. Call once per frame.
func (m *ChargeMachine) Tick() {
	if m.state != ChargeCharging {
		return
	}
	now := m.clock.Now()
	elapsed := now.Sub(m.startTime)
	m.power = m.powerAt(elapsed)
	if elapsed >= m.opts.holdTimeout() {
		// Forced completion behaves exactly like a manual release;
		// powerAt has already pinned power to the maximum.
		m.Release()
	}
}

// Release fires the shot: the power at the moment of release is
// captured into the shot-fired event and the post-fire cooldown
// starts. A release while idle does nothing. A gate denial of the fire
// action cancels the charge instead — the machine may not stay
// charging past a release, and it may not fire ungated.
func (m *ChargeMachine) Release() bool {
	if m.state != ChargeCharging {
		return false
	}
	now := m.clock.Now()
	m.power = m.powerAt(now.Sub(m.startTime))
	fired := m.gate.PerformAction(ActionFire, func() {
		power := m.power
		m.state = ChargeIdle
		m.cooldownUntil = now.Add(m.opts.PostFireCooldown)
		m.hub.Publish(EventShotFired, ShotFired{Power: power})
	})
	if !fired {
		m.log.Debug().Msg("release denied by gate, cancelling charge")
		m.Cancel()
	}
	return fired
}

// Cancel unconditionally returns to idle without a fired event.
func (m *ChargeMachine) Cancel() {
	m.state = ChargeIdle
}

// powerAt computes the bounded power for a given held duration.
func (m *ChargeMachine) powerAt(elapsed time.Duration) float64 {
	p := m.opts.minPower() + float64(elapsed/time.Millisecond)*m.opts.chargeRate()
	if max := m.opts.maxPower(); p > max {
		return max
	}
	return p
}
