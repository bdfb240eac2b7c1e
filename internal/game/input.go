package game

import (
	"time"

	"github.com/rs/zerolog"
)

// Direction is a left/right aiming input.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
)

func (d Direction) String() string {
	if d == DirLeft {
		return "left"
	}
	return "right"
}

func (d Direction) opposite() Direction {
	if d == DirLeft {
		return DirRight
	}
	return DirLeft
}

func (d Direction) event() Event {
	if d == DirLeft {
		return EventAimLeft
	}
	return EventAimRight
}

// pressBuffer is a fixed-capacity FIFO of recent press timestamps;
// the oldest entry is evicted on overflow.
type pressBuffer struct {
	times []time.Time
}

func (b *pressBuffer) push(t time.Time) {
	if len(b.times) == directionBufferCap {
		copy(b.times, b.times[1:])
		b.times = b.times[:directionBufferCap-1]
	}
	b.times = append(b.times, t)
}

// last returns the most recent timestamp, if any.
func (b *pressBuffer) last() (time.Time, bool) {
	if len(b.times) == 0 {
		return time.Time{}, false
	}
	return b.times[len(b.times)-1], true
}

func (b *pressBuffer) len() int { return len(b.times) }

// pendingDispatch is a filtered non-critical input waiting out its
// dispatch delay before the gate check runs.
type pendingDispatch struct {
	action Action
	event  Event
	due    time.Time
}

// InputPipeline converts raw physical input into validated domain
// events. Within one input, filtering always completes in a fixed
// order — disabled-action check, then debounce, then (for directions)
// the opposite-direction buffer check — before the gate is consulted,
// and only a gate-approved input publishes its event.
//
// All methods run on the event-loop goroutine; "delayed" dispatch is a
// deadline checked on Update, not a timer.
type InputPipeline struct {
	opts  Options
	clock Clock
	gate  *ActionGate
	hub   *Hub
	log   zerolog.Logger

	disabled    map[Action]struct{}
	lastTrigger map[string]time.Time // debounce key → last accepted trigger
	dirBufs     [2]pressBuffer

	held      bool
	heldSince time.Time

	pending []pendingDispatch
}

// NewInputPipeline creates a pipeline. opts should come from
// DefaultOptions(), possibly with fields overridden.
func NewInputPipeline(gate *ActionGate, hub *Hub, clock Clock, opts Options, log zerolog.Logger) *InputPipeline {
	return &InputPipeline{
		opts:        opts,
		clock:       clock,
		gate:        gate,
		hub:         hub,
		log:         log.With().Str("component", "input").Logger(),
		disabled:    make(map[Action]struct{}),
		lastTrigger: make(map[string]time.Time),
	}
}

// SetDisabledActions replaces the disabled-action set. A disabled
// action is dropped before any debounce or buffer logic runs.
func (p *InputPipeline) SetDisabledActions(actions []Action) {
	p.disabled = make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		p.disabled[a] = struct{}{}
	}
}

// DisabledActions returns the disabled set, for reporting.
func (p *InputPipeline) DisabledActions() []Action {
	out := make([]Action, 0, len(p.disabled))
	for a := range p.disabled {
		out = append(out, a)
	}
	return out
}

func (p *InputPipeline) isDisabled(a Action) bool {
	_, ok := p.disabled[a]
	return ok
}

// debounced reports whether a trigger under the given key arrived
// sooner than the action's debounce interval after the last accepted
// one. An accepted trigger records its timestamp.
func (p *InputPipeline) debounced(key string, a Action, now time.Time) bool {
	if last, ok := p.lastTrigger[key]; ok {
		if now.Sub(last) < p.opts.debounceFor(a) {
			return true
		}
	}
	p.lastTrigger[key] = now
	return false
}

// HandleDirection processes one left/right press. Debounce is tracked
// per direction so that an intentional reversal is judged by the
// reversal window, not swallowed by the shared-action debounce.
// Returns true when a domain event was published.
func (p *InputPipeline) HandleDirection(d Direction) bool {
	if p.isDisabled(ActionAim) {
		return false
	}
	now := p.clock.Now()
	if p.debounced("aim:"+d.String(), ActionAim, now) {
		return false
	}
	// Rapid reversal: a press landing hard on the heels of the opposite
	// direction is almost always jitter, not intent.
	if last, ok := p.dirBufs[d.opposite()].last(); ok {
		if now.Sub(last) < p.opts.ReversalWindow {
			p.log.Debug().Str("dir", d.String()).Msg("direction reversal suppressed")
			return false
		}
	}
	p.dirBufs[d].push(now)
	return p.gate.PerformAction(ActionAim, func() {
		p.hub.Publish(d.event(), nil)
	})
}

// LastDirectionPress returns the most recent accepted press timestamp
// for one direction. The aim machine shares this buffer; it is not
// reset on shot-fired.
func (p *InputPipeline) LastDirectionPress(d Direction) (time.Time, bool) {
	return p.dirBufs[d].last()
}

// HandleChargeStart processes a charge-key press. On gate approval the
// held flag is set and the hold clock starts.
func (p *InputPipeline) HandleChargeStart() bool {
	if p.isDisabled(ActionCharge) {
		return false
	}
	now := p.clock.Now()
	if p.debounced(string(ActionCharge), ActionCharge, now) {
		return false
	}
	return p.gate.PerformAction(ActionCharge, func() {
		p.held = true
		p.heldSince = now
		p.hub.Publish(EventChargeStart, nil)
	})
}

// HandleRelease processes the charge-key release. A release with no
// active hold is ignored.
func (p *InputPipeline) HandleRelease() bool {
	if !p.held {
		return false
	}
	p.held = false
	return p.gate.PerformAction(ActionFire, func() {
		p.hub.Publish(EventFire, nil)
	})
}

// Held reports whether a charge input is currently held.
func (p *InputPipeline) Held() bool { return p.held }

// HandleDelayed processes a low-risk input (pause, confirm, restart,
// exit). It passes the disabled and debounce filters now, then waits
// out the non-critical delay before the gate check runs — absorbing
// accidental taps. Returns true if the input was scheduled.
func (p *InputPipeline) HandleDelayed(a Action, ev Event) bool {
	if p.isDisabled(a) {
		return false
	}
	now := p.clock.Now()
	if p.debounced(string(a), a, now) {
		return false
	}
	p.pending = append(p.pending, pendingDispatch{
		action: a,
		event:  ev,
		due:    now.Add(p.opts.NonCriticalDelay),
	})
	return true
}

// Trigger processes an input that dispatches immediately (menu
// navigation and similar): disabled check, debounce, gate, publish.
func (p *InputPipeline) Trigger(a Action, ev Event) bool {
	if p.isDisabled(a) {
		return false
	}
	now := p.clock.Now()
	if p.debounced(string(a), a, now) {
		return false
	}
	return p.gate.PerformAction(a, func() {
		p.hub.Publish(ev, nil)
	})
}

// Update runs the per-tick bookkeeping: the held-input hard timeout and
// the pending non-critical dispatches. Call once per frame.
func (p *InputPipeline) Update() {
	now := p.clock.Now()

	// Forced release: a hold past the ceiling synthesizes exactly one
	// release; clearing the flag first makes re-entry impossible.
	if p.held && now.Sub(p.heldSince) >= p.opts.HoldTimeout {
		p.held = false
		p.log.Debug().Dur("held", now.Sub(p.heldSince)).Msg("hold timeout, forcing release")
		p.gate.PerformAction(ActionFire, func() {
			p.hub.Publish(EventFire, nil)
		})
	}

	// Pending dispatches fire in arrival order once due.
	kept := p.pending[:0]
	for _, pd := range p.pending {
		if now.Before(pd.due) {
			kept = append(kept, pd)
			continue
		}
		pd := pd
		p.gate.PerformAction(pd.action, func() {
			p.hub.Publish(pd.event, nil)
		})
	}
	p.pending = kept
}
