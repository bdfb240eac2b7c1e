package game

import (
	"testing"
	"time"
)

// Full-run scenarios driving the real core through the TestSim harness.

func TestScenario_FullShot(t *testing.T) {
	sim := NewTestSim(WithStartStage(StageActiveGameplay))

	// Aim a little to the right, then charge for half the window.
	sim.Pipeline.HandleDirection(DirRight)
	sim.StepN(5)
	sim.Pipeline.HandleChargeStart()
	sim.StepFor(1 * time.Second)
	sim.Pipeline.HandleRelease()

	shots := sim.SimLog.Filter("event", string(EventShotFired))
	if len(shots) != 1 {
		t.Fatalf("expected one shot, got %d", len(shots))
	}
	power := shots[0].NumVal
	if power < 0.5 || power > 0.6 {
		t.Fatalf("half-charge power = %.3f, want about 0.55", power)
	}
	if sim.Charge.State() != ChargeIdle {
		t.Fatalf("charge machine should be idle after release, got %v", sim.Charge.State())
	}
	if sim.Aim.CurrentAngle() <= 0 {
		t.Fatalf("aim should be right of center, got %.2f", sim.Aim.CurrentAngle())
	}
}

func TestScenario_HoldPastTimeoutFiresOnceAtMax(t *testing.T) {
	sim := NewTestSim(WithStartStage(StageActiveGameplay))

	sim.Pipeline.HandleChargeStart()
	sim.StepFor(3 * time.Second) // well past the forced-release ceiling

	shots := sim.SimLog.Filter("event", string(EventShotFired))
	if len(shots) != 1 {
		t.Fatalf("forced release must fire exactly once, got %d shots", len(shots))
	}
	if shots[0].NumVal != 1.0 {
		t.Fatalf("forced release power = %.3f, want max", shots[0].NumVal)
	}
	if sim.Pipeline.Held() {
		t.Fatal("pipeline must clear its held state after the forced release")
	}
}

func TestScenario_PauseFreezesShooting(t *testing.T) {
	sim := NewTestSim(WithStartStage(StageActiveGameplay))

	sim.Gate.SetStageByName(StagePaused)
	sim.Pipeline.HandleChargeStart()
	sim.StepN(10)
	sim.Pipeline.HandleRelease()
	if got := sim.SimLog.Count("event", string(EventShotFired)); got != 0 {
		t.Fatalf("paused session fired %d shots", got)
	}

	// Resuming restores the full loop. Step past the charge debounce
	// window first so the retry is not filtered as a repeat press.
	sim.Gate.SetStageByName(StageActiveGameplay)
	sim.StepFor(250 * time.Millisecond)
	sim.Pipeline.HandleChargeStart()
	sim.StepN(10)
	sim.Pipeline.HandleRelease()
	if got := sim.SimLog.Count("event", string(EventShotFired)); got != 1 {
		t.Fatalf("resumed session fired %d shots, want 1", got)
	}
}

func TestScenario_StageTransitionsLogged(t *testing.T) {
	sim := NewTestSim()

	sim.Gate.SetStageByName(StageGamePreparation)
	sim.Gate.SetStageByName(StageActiveGameplay)
	sim.Gate.SetStageByName(StageGameOver)

	changes := sim.SimLog.Filter("stage", string(EventStageChanged))
	// One from session start plus three explicit jumps.
	if len(changes) != 4 {
		t.Fatalf("expected 4 stage changes, got %d", len(changes))
	}
	last := changes[len(changes)-1]
	if last.Value != StageActiveGameplay+" -> "+StageGameOver {
		t.Fatalf("last transition = %q", last.Value)
	}
}

func TestScenario_ReversalThenCleanAim(t *testing.T) {
	sim := NewTestSim(WithStartStage(StageActiveGameplay))

	// A press, an immediate jittery reversal, then a clean press after
	// the window: two aim events total.
	sim.Pipeline.HandleDirection(DirLeft)
	sim.Clock.Advance(20 * time.Millisecond)
	sim.Pipeline.HandleDirection(DirRight) // suppressed
	sim.Clock.Advance(200 * time.Millisecond)
	sim.Pipeline.HandleDirection(DirRight)

	lefts := sim.SimLog.Count("event", string(EventAimLeft))
	rights := sim.SimLog.Count("event", string(EventAimRight))
	if lefts != 1 || rights != 1 {
		t.Fatalf("aim events left=%d right=%d, want 1/1", lefts, rights)
	}
}

func TestScenario_DisabledPauseNeverDispatches(t *testing.T) {
	sim := NewTestSim(WithStartStage(StageActiveGameplay))
	sim.Pipeline.SetDisabledActions([]Action{ActionPause})

	sim.Pipeline.HandleDelayed(ActionPause, EventPause)
	sim.StepFor(500 * time.Millisecond)

	if got := sim.SimLog.Count("event", string(EventPause)); got != 0 {
		t.Fatalf("disabled pause dispatched %d times", got)
	}
}
