package game

import (
	"time"

	"github.com/rs/zerolog"
)

// TestSim is a headless harness used by tests and cmd/headless-report.
// It mirrors Game.Update but has no ebiten dependency: a ManualClock
// stands in for wall time and scripted inputs stand in for the
// keyboard. Every component is the real one.
type TestSim struct {
	Clock    *ManualClock
	Hub      *Hub
	Gate     *ActionGate
	Pipeline *InputPipeline
	Charge   *ChargeMachine
	Aim      *AimMachine
	SimLog   *SimLog
	Tick     int

	tickInterval time.Duration
}

// SimOption is a builder function applied to a TestSim during
// construction.
type SimOption func(*simConfig)

type simConfig struct {
	opts         Options
	roadmap      *Roadmap
	tickInterval time.Duration
	logger       zerolog.Logger
	startStage   string
}

// WithOptions replaces the default tuning.
func WithOptions(o Options) SimOption {
	return func(c *simConfig) { c.opts = o }
}

// WithRoadmap replaces the default roadmap.
func WithRoadmap(rm *Roadmap) SimOption {
	return func(c *simConfig) { c.roadmap = rm }
}

// WithTickInterval sets how much simulated time one Step advances.
// Default is 16ms, close to a 60 Hz frame.
func WithTickInterval(d time.Duration) SimOption {
	return func(c *simConfig) { c.tickInterval = d }
}

// WithLogger routes component logs somewhere visible. Default discards.
func WithLogger(l zerolog.Logger) SimOption {
	return func(c *simConfig) { c.logger = l }
}

// WithStartStage jumps the session to the named stage right after the
// session starts.
func WithStartStage(name string) SimOption {
	return func(c *simConfig) { c.startStage = name }
}

// NewTestSim builds the full core around a ManualClock and starts a
// session at the roadmap's first stage.
func NewTestSim(options ...SimOption) *TestSim {
	cfg := simConfig{
		opts:         DefaultOptions(),
		roadmap:      DefaultRoadmap(),
		tickInterval: 16 * time.Millisecond,
		logger:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(&cfg)
	}

	ts := &TestSim{
		Clock:        NewManualClock(time.Unix(0, 0)),
		Hub:          NewHub(),
		tickInterval: cfg.tickInterval,
	}
	ts.SimLog = NewSimLog(&ts.Tick)
	ts.SimLog.Attach(ts.Hub)
	ts.Gate = NewActionGate(ts.Hub, cfg.logger)
	ts.Gate.Initialize(cfg.roadmap)
	ts.Pipeline = NewInputPipeline(ts.Gate, ts.Hub, ts.Clock, cfg.opts, cfg.logger)
	ts.Charge = NewChargeMachine(ts.Gate, ts.Hub, ts.Clock, cfg.opts, cfg.logger)
	ts.Aim = NewAimMachine(ts.Gate, ts.Hub, ts.Clock, cfg.opts, cfg.logger)

	ts.Gate.StartSession("sim", nil)
	if cfg.startStage != "" {
		ts.Gate.SetStageByName(cfg.startStage)
	}
	return ts
}

// Step advances simulated time by one tick interval and runs the same
// per-tick work the ebiten shell runs.
func (ts *TestSim) Step() {
	ts.Tick++
	ts.Clock.Advance(ts.tickInterval)
	ts.Pipeline.Update()
	ts.Charge.Tick()
	ts.Aim.Tick()
}

// StepN runs n ticks.
func (ts *TestSim) StepN(n int) {
	for i := 0; i < n; i++ {
		ts.Step()
	}
}

// StepFor runs ticks until at least d of simulated time has passed.
func (ts *TestSim) StepFor(d time.Duration) {
	n := int(d / ts.tickInterval)
	if time.Duration(n)*ts.tickInterval < d {
		n++
	}
	ts.StepN(n)
}
