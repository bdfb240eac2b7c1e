package game

import "github.com/rs/zerolog"

// ActionGate decides, from the current session's stage, whether a named
// action may execute. It owns the session registry and the single
// "current session" pointer. Every component that wants to mutate
// externally visible state goes through PerformAction; nothing bypasses
// the gate.
//
// The gate is an explicitly constructed object with its collaborators
// injected — there is no package-level instance. "One active session"
// is an ordinary field, not a global.
type ActionGate struct {
	hub *Hub
	log zerolog.Logger

	defaultRoadmap *Roadmap
	sessions       map[string]*Session
	currentID      string
}

// NewActionGate creates a gate with no roadmap installed. Until
// Initialize (or a StartSession with an explicit roadmap), every query
// degrades to a logged error and a nil/false result.
func NewActionGate(hub *Hub, log zerolog.Logger) *ActionGate {
	return &ActionGate{
		hub:      hub,
		log:      log.With().Str("component", "gate").Logger(),
		sessions: make(map[string]*Session),
	}
}

// Initialize installs the default roadmap reused by subsequent
// StartSession calls that do not supply their own.
func (g *ActionGate) Initialize(rm *Roadmap) {
	g.defaultRoadmap = rm
}

// StartSession creates a session at stage index 0 and makes it current.
// rm may be nil to use the default roadmap; if neither exists the call
// fails with a nil result. An empty id gets a generated one. Starting a
// session with an id already in the registry replaces that session.
func (g *ActionGate) StartSession(id string, rm *Roadmap) *Session {
	if rm == nil {
		rm = g.defaultRoadmap
	}
	if rm == nil {
		g.log.Error().Str("session", id).Msg("start session before gate initialized and no roadmap supplied")
		return nil
	}
	s := newSession(id, rm)
	g.sessions[s.id] = s
	g.currentID = s.id
	if cur := s.CurrentStage(); cur != nil {
		g.hub.Publish(EventStageChanged, StageChanged{Previous: nil, Current: cur})
	}
	return s
}

// EndSession removes a session from the registry. An empty id targets
// the current session. Ending the current session clears the current
// pointer; other registered sessions stay inert until made current by a
// new StartSession.
func (g *ActionGate) EndSession(id string) bool {
	if id == "" {
		id = g.currentID
	}
	if _, ok := g.sessions[id]; !ok {
		return false
	}
	delete(g.sessions, id)
	if g.currentID == id {
		g.currentID = ""
	}
	return true
}

// Current returns the current session, or nil.
func (g *ActionGate) Current() *Session {
	if g.currentID == "" {
		return nil
	}
	return g.sessions[g.currentID]
}

// Session returns a registered session by id, or nil.
func (g *ActionGate) Session(id string) *Session {
	return g.sessions[id]
}

// CurrentStage returns the current session's stage, or nil when there
// is no current session or the session's roadmap is empty.
func (g *ActionGate) CurrentStage() *Stage {
	s := g.Current()
	if s == nil {
		return nil
	}
	return s.CurrentStage()
}

// SetStageByName jumps the current session to the named stage. Any
// stage is reachable from any other: membership governs permission, not
// reachability. Returns false without mutation when there is no current
// session or the name is unknown.
func (g *ActionGate) SetStageByName(name string) bool {
	s := g.Current()
	if s == nil {
		g.log.Error().Str("stage", name).Msg("set stage with no current session")
		return false
	}
	idx := s.roadmap.IndexOf(name)
	if idx < 0 {
		g.log.Warn().Str("stage", name).Msg("unknown stage")
		return false
	}
	g.moveTo(s, idx)
	return true
}

// SetStageByIndex jumps the current session to the stage at index i.
// Returns false without mutation when out of range.
func (g *ActionGate) SetStageByIndex(i int) bool {
	s := g.Current()
	if s == nil {
		g.log.Error().Int("index", i).Msg("set stage with no current session")
		return false
	}
	if i < 0 || i >= s.roadmap.Len() {
		g.log.Warn().Int("index", i).Msg("stage index out of range")
		return false
	}
	g.moveTo(s, i)
	return true
}

// AdvanceStage moves to the next stage in roadmap order, or returns
// false at the last stage (index unchanged).
func (g *ActionGate) AdvanceStage() bool {
	s := g.Current()
	if s == nil {
		g.log.Error().Msg("advance stage with no current session")
		return false
	}
	if s.stageIndex+1 >= s.roadmap.Len() {
		return false
	}
	g.moveTo(s, s.stageIndex+1)
	return true
}

// moveTo updates the cursor and publishes the stage-change event.
// Subscribers run synchronously, in registration order, after the index
// is updated — an observer calling back into CurrentStage always sees
// the new stage.
func (g *ActionGate) moveTo(s *Session, idx int) {
	prev := s.CurrentStage()
	s.stageIndex = idx
	cur := s.CurrentStage()
	g.hub.Publish(EventStageChanged, StageChanged{Previous: prev, Current: cur})
}

// IsActionAllowed reports whether the action is permitted in the
// current session's stage. False when there is no current session or no
// current stage.
func (g *ActionGate) IsActionAllowed(a Action) bool {
	st := g.CurrentStage()
	if st == nil {
		return false
	}
	return st.Allows(a)
}

// PerformAction invokes fn synchronously if the action is allowed and
// returns true. A denied action logs a warning and returns false
// without invoking fn; denial is an expected outcome, not a failure.
func (g *ActionGate) PerformAction(a Action, fn func()) bool {
	st := g.CurrentStage()
	if st == nil {
		g.log.Warn().Str("action", string(a)).Msg("action denied: no current stage")
		return false
	}
	if !st.Allows(a) {
		g.log.Warn().Str("action", string(a)).Str("stage", st.Name()).Msg("action denied")
		return false
	}
	if fn != nil {
		fn()
	}
	return true
}
