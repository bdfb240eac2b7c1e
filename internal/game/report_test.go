package game

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestStateReport_SnapshotContents(t *testing.T) {
	sim := NewTestSim(WithStartStage(StageActiveGameplay))
	sim.Pipeline.HandleDirection(DirRight)
	sim.Pipeline.HandleChargeStart()
	sim.StepN(10)

	r := StateReport(sim.Gate, sim.Pipeline, sim.Charge, sim.Aim)
	for _, want := range []string{
		"session=sim",
		"stage=" + StageActiveGameplay,
		"held=true",
		"charge: state=charging",
		"last_right=",
	} {
		if !strings.Contains(r, want) {
			t.Fatalf("report missing %q:\n%s", want, r)
		}
	}
}

func TestStateReport_NoSession(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	hub := NewHub()
	gate := NewActionGate(hub, zerolog.Nop())
	pipe := NewInputPipeline(gate, hub, clock, DefaultOptions(), zerolog.Nop())
	charge := NewChargeMachine(gate, hub, clock, DefaultOptions(), zerolog.Nop())
	aim := NewAimMachine(gate, hub, clock, DefaultOptions(), zerolog.Nop())

	r := StateReport(gate, pipe, charge, aim)
	if !strings.Contains(r, "session: (none)") {
		t.Fatalf("report should note the missing session:\n%s", r)
	}
}
