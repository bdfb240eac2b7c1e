package game

import (
	"testing"

	"github.com/rs/zerolog"
)

func newTestGate(rm *Roadmap) (*ActionGate, *Hub) {
	hub := NewHub()
	g := NewActionGate(hub, zerolog.Nop())
	if rm != nil {
		g.Initialize(rm)
	}
	return g, hub
}

// --- Session lifecycle ---

func TestGate_StartSessionWithoutRoadmap(t *testing.T) {
	g, _ := newTestGate(nil)
	if s := g.StartSession("s1", nil); s != nil {
		t.Fatal("start before Initialize with no roadmap should fail")
	}
	if g.Current() != nil {
		t.Fatal("no session should be current after a failed start")
	}
}

func TestGate_StartSessionExplicitRoadmap(t *testing.T) {
	g, _ := newTestGate(nil)
	s := g.StartSession("s1", DefaultRoadmap())
	if s == nil {
		t.Fatal("start with an explicit roadmap should succeed without Initialize")
	}
	if g.Current() != s {
		t.Fatal("started session should become current")
	}
	if s.StageIndex() != 0 {
		t.Fatalf("session should start at stage 0, got %d", s.StageIndex())
	}
}

func TestGate_GeneratedSessionID(t *testing.T) {
	g, _ := newTestGate(DefaultRoadmap())
	s := g.StartSession("", nil)
	if s == nil || s.ID() == "" {
		t.Fatal("empty id should be replaced by a generated one")
	}
}

func TestGate_EndSession(t *testing.T) {
	g, _ := newTestGate(DefaultRoadmap())
	g.StartSession("s1", nil)
	if !g.EndSession("s1") {
		t.Fatal("ending a registered session should succeed")
	}
	if g.Current() != nil {
		t.Fatal("ending the current session should clear the current pointer")
	}
	if g.EndSession("s1") {
		t.Fatal("ending an already-ended session should fail")
	}
}

func TestGate_EndSessionKeepsOthersInert(t *testing.T) {
	g, _ := newTestGate(DefaultRoadmap())
	g.StartSession("s1", nil)
	g.StartSession("s2", nil)
	if g.Current().ID() != "s2" {
		t.Fatal("most recently started session should be current")
	}
	if !g.EndSession("s1") {
		t.Fatal("ending a non-current session should succeed")
	}
	if g.Current() == nil || g.Current().ID() != "s2" {
		t.Fatal("ending a non-current session must not disturb the current one")
	}
}

// --- Stage navigation ---

func TestGate_SetStageByNameUnknown(t *testing.T) {
	g, _ := newTestGate(DefaultRoadmap())
	g.StartSession("s1", nil)
	before := g.CurrentStage().Name()
	if g.SetStageByName("DoesNotExist") {
		t.Fatal("unknown stage name should return false")
	}
	if g.CurrentStage().Name() != before {
		t.Fatal("failed SetStageByName must not mutate the current stage")
	}
}

func TestGate_SetStageByIndexBounds(t *testing.T) {
	g, _ := newTestGate(DefaultRoadmap())
	g.StartSession("s1", nil)
	if g.SetStageByIndex(-1) {
		t.Fatal("negative index should be rejected")
	}
	if g.SetStageByIndex(DefaultRoadmap().Len()) {
		t.Fatal("index past the last stage should be rejected")
	}
	if !g.SetStageByIndex(3) {
		t.Fatal("in-range index should succeed")
	}
	if g.CurrentStage().Name() != StagePaused {
		t.Fatalf("expected stage %s, got %s", StagePaused, g.CurrentStage().Name())
	}
}

func TestGate_ArbitraryJumps(t *testing.T) {
	// Stage membership governs permission, not reachability: every stage
	// is reachable from every other.
	g, _ := newTestGate(DefaultRoadmap())
	g.StartSession("s1", nil)
	if !g.SetStageByName(StageGameOver) {
		t.Fatal("jump from first to last stage should succeed")
	}
	if !g.SetStageByName(StageMainMenu) {
		t.Fatal("jump backwards should succeed")
	}
}

func TestGate_AdvanceStageBounded(t *testing.T) {
	g, _ := newTestGate(DefaultRoadmap())
	g.StartSession("s1", nil)
	last := DefaultRoadmap().Len() - 1
	for i := 0; i < last; i++ {
		if !g.AdvanceStage() {
			t.Fatalf("advance %d should succeed", i)
		}
	}
	if g.Current().StageIndex() != last {
		t.Fatalf("expected index %d, got %d", last, g.Current().StageIndex())
	}
	if g.AdvanceStage() {
		t.Fatal("advance at the last stage should return false")
	}
	if g.Current().StageIndex() != last {
		t.Fatal("failed advance must leave the index unchanged")
	}
}

// --- Gating ---

func TestGate_IsActionAllowedMatchesStageSets(t *testing.T) {
	g, _ := newTestGate(DefaultRoadmap())
	g.StartSession("s1", nil)
	rm := DefaultRoadmap()
	probe := []Action{
		ActionAim, ActionCharge, ActionFire, ActionPause, ActionResume,
		ActionRestart, ActionQuit, ActionStartGame, ActionOpenSettings,
		ActionNextLevel, ActionRetry, ActionMainMenu, ActionViewHelp,
		Action("neverAllowed"),
	}
	for i := 0; i < rm.Len(); i++ {
		if !g.SetStageByIndex(i) {
			t.Fatalf("SetStageByIndex(%d) failed", i)
		}
		st := rm.Stage(i)
		for _, a := range probe {
			if got, want := g.IsActionAllowed(a), st.Allows(a); got != want {
				t.Fatalf("stage %s action %s: allowed=%v, want %v", st.Name(), a, got, want)
			}
		}
	}
}

func TestGate_IsActionAllowedNoSession(t *testing.T) {
	g, _ := newTestGate(DefaultRoadmap())
	if g.IsActionAllowed(ActionStartGame) {
		t.Fatal("no current session should deny every action")
	}
}

func TestGate_IsActionAllowedEmptyRoadmap(t *testing.T) {
	g, _ := newTestGate(NewRoadmap("empty", nil))
	g.StartSession("s1", nil)
	if g.CurrentStage() != nil {
		t.Fatal("empty roadmap should have no current stage")
	}
	if g.IsActionAllowed(ActionStartGame) {
		t.Fatal("no current stage should deny every action")
	}
}

func TestGate_PerformAction(t *testing.T) {
	g, _ := newTestGate(DefaultRoadmap())
	g.StartSession("s1", nil)

	ran := false
	if !g.PerformAction(ActionStartGame, func() { ran = true }) {
		t.Fatal("allowed action should be performed")
	}
	if !ran {
		t.Fatal("callback of an allowed action must run")
	}

	ran = false
	if g.PerformAction(ActionFire, func() { ran = true }) {
		t.Fatal("fire is not allowed in MainMenu")
	}
	if ran {
		t.Fatal("callback of a denied action must not run")
	}
}

// --- Stage-change notifications ---

func TestGate_StageChangeNotificationOrderAndVisibility(t *testing.T) {
	g, hub := newTestGate(DefaultRoadmap())

	var order []string
	hub.Subscribe(EventStageChanged, func(_ Event, payload any) {
		order = append(order, "first")
		// A subscriber must observe the new stage, never a stale one.
		sc := payload.(StageChanged)
		if cur := g.CurrentStage(); cur != sc.Current {
			t.Fatalf("subscriber sees stage %v, payload says %v", cur, sc.Current)
		}
	})
	hub.Subscribe(EventStageChanged, func(Event, any) {
		order = append(order, "second")
	})

	g.StartSession("s1", nil)
	g.AdvanceStage()

	// One notification for the session start, one for the advance.
	want := []string{"first", "second", "first", "second"}
	if len(order) != len(want) {
		t.Fatalf("expected %d deliveries, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("delivery %d: got %s, want %s", i, order[i], want[i])
		}
	}
}

func TestGate_StageChangePayload(t *testing.T) {
	g, hub := newTestGate(DefaultRoadmap())
	var got []StageChanged
	hub.Subscribe(EventStageChanged, func(_ Event, payload any) {
		got = append(got, payload.(StageChanged))
	})

	g.StartSession("s1", nil)
	g.SetStageByName(StageActiveGameplay)

	if len(got) != 2 {
		t.Fatalf("expected 2 stage changes, got %d", len(got))
	}
	if got[0].Previous != nil {
		t.Fatal("first stage change should carry a nil previous stage")
	}
	if got[0].Current.Name() != StageMainMenu {
		t.Fatalf("first change current = %s, want %s", got[0].Current.Name(), StageMainMenu)
	}
	if got[1].Previous.Name() != StageMainMenu || got[1].Current.Name() != StageActiveGameplay {
		t.Fatalf("second change %s -> %s, want %s -> %s",
			got[1].Previous.Name(), got[1].Current.Name(), StageMainMenu, StageActiveGameplay)
	}
}

// --- Session state ---

func TestSession_StateIsolation(t *testing.T) {
	g, _ := newTestGate(DefaultRoadmap())
	s1 := g.StartSession("s1", nil)
	s2 := g.StartSession("s2", nil)

	s1.SetState("score", 42)
	if _, ok := s2.State("score"); ok {
		t.Fatal("state must not leak across sessions")
	}
	v, ok := s1.State("score")
	if !ok || v.(int) != 42 {
		t.Fatalf("expected score 42, got %v (ok=%v)", v, ok)
	}
}

// --- Scenario from the acceptance checklist ---

func TestGate_TwoStageScenario(t *testing.T) {
	rm, err := NewCustomRoadmap("two", []Stage{
		NewStage("A", []Action{"x"}, nil),
		NewStage("B", []Action{"y"}, nil),
	})
	if err != nil {
		t.Fatalf("custom roadmap: %v", err)
	}
	g, _ := newTestGate(rm)
	g.StartSession("s1", nil)

	if !g.SetStageByName("A") {
		t.Fatal("SetStageByName(A) failed")
	}
	if g.IsActionAllowed("y") {
		t.Fatal("y must be denied in stage A")
	}
	if !g.AdvanceStage() {
		t.Fatal("advance A -> B failed")
	}
	if !g.IsActionAllowed("y") {
		t.Fatal("y must be allowed in stage B")
	}
	if g.AdvanceStage() {
		t.Fatal("there is no third stage")
	}
}
