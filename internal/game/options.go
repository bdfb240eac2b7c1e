package game

import "time"

// Tuning defaults for the input pipeline and the charge/aim machines.
const (
	defaultDebounce         = 200 * time.Millisecond
	defaultAimDebounce      = 50 * time.Millisecond
	defaultReversalWindow   = 50 * time.Millisecond
	defaultHoldTimeout      = 2 * time.Second
	defaultNonCriticalDelay = 100 * time.Millisecond

	defaultMinPower         = 0.1
	defaultMaxPower         = 1.0
	defaultPostFireCooldown = 200 * time.Millisecond

	defaultMinAngle    = -80.0
	defaultMaxAngle    = 80.0
	defaultAimStep     = 2.0
	defaultSmoothing   = 0.1
	defaultSnapEpsilon = 0.1

	// Capacity of each direction's recent-press buffer.
	directionBufferCap = 5
)

// Options collects every timing and range knob of the core in one
// place. Zero values are replaced by the defaults above, so callers can
// override a single field of DefaultOptions() without restating the rest.
type Options struct {
	// Input pipeline.
	Debounce         time.Duration                // minimum inter-trigger interval per action
	DebounceOverride map[Action]time.Duration     // per-action debounce, beats Debounce
	ReversalWindow   time.Duration                // opposite-direction rejection window
	HoldTimeout      time.Duration                // hard ceiling on held charge input
	NonCriticalDelay time.Duration                // dispatch delay for low-risk actions

	// Charge machine.
	MinPower         float64
	MaxPower         float64
	ChargeRate       float64 // power gained per millisecond; 0 = derived from range/timeout
	PostFireCooldown time.Duration

	// Aim machine.
	MinAngle    float64 // degrees
	MaxAngle    float64 // degrees
	AimStep     float64 // degrees per accepted directional input
	Smoothing   float64 // exponential smoothing factor per tick
	SnapEpsilon float64 // degrees; below this the displayed angle snaps to target
}

// DefaultOptions returns the tuning used by the shipped game. The
// charge rate is derived so that power reaches MaxPower exactly when
// the hold timeout forces a release, keeping the tick path and the
// forced-release path in agreement.
func DefaultOptions() Options {
	return Options{
		Debounce: defaultDebounce,
		DebounceOverride: map[Action]time.Duration{
			ActionAim: defaultAimDebounce,
		},
		ReversalWindow:   defaultReversalWindow,
		HoldTimeout:      defaultHoldTimeout,
		NonCriticalDelay: defaultNonCriticalDelay,

		MinPower:         defaultMinPower,
		MaxPower:         defaultMaxPower,
		PostFireCooldown: defaultPostFireCooldown,

		MinAngle:    defaultMinAngle,
		MaxAngle:    defaultMaxAngle,
		AimStep:     defaultAimStep,
		Smoothing:   defaultSmoothing,
		SnapEpsilon: defaultSnapEpsilon,
	}
}

// msDuration converts a millisecond count to a Duration.
func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// debounceFor resolves the debounce interval for one action.
func (o Options) debounceFor(a Action) time.Duration {
	if d, ok := o.DebounceOverride[a]; ok {
		return d
	}
	if o.Debounce > 0 {
		return o.Debounce
	}
	return defaultDebounce
}

// chargeRate resolves the power-per-millisecond rate, deriving it from
// the power range and hold timeout when unset.
func (o Options) chargeRate() float64 {
	if o.ChargeRate > 0 {
		return o.ChargeRate
	}
	ceilingMs := float64(o.holdTimeout() / time.Millisecond)
	if ceilingMs <= 0 {
		ceilingMs = float64(defaultHoldTimeout / time.Millisecond)
	}
	return (o.maxPower() - o.minPower()) / ceilingMs
}

func (o Options) holdTimeout() time.Duration {
	if o.HoldTimeout > 0 {
		return o.HoldTimeout
	}
	return defaultHoldTimeout
}

func (o Options) minPower() float64 {
	if o.MinPower > 0 {
		return o.MinPower
	}
	return defaultMinPower
}

func (o Options) maxPower() float64 {
	if o.MaxPower > 0 {
		return o.MaxPower
	}
	return defaultMaxPower
}
