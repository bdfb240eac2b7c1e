package game

import "github.com/google/uuid"

// Session is a live cursor over one roadmap plus arbitrary keyed state,
// scoped to one gameplay/UI session. The roadmap reference is fixed for
// the session's lifetime; the stage index and state map mutate freely.
// Sessions are created and consumed on the event-loop goroutine only,
// so no locking is needed.
type Session struct {
	id         string
	roadmap    *Roadmap
	stageIndex int
	state      map[string]any
}

// newSession creates a session at stage index 0. An empty id gets a
// generated one.
func newSession(id string, rm *Roadmap) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		id:      id,
		roadmap: rm,
		state:   make(map[string]any),
	}
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Roadmap returns the roadmap this session walks.
func (s *Session) Roadmap() *Roadmap { return s.roadmap }

// StageIndex returns the current stage index. Meaningless when the
// roadmap is empty.
func (s *Session) StageIndex() int { return s.stageIndex }

// CurrentStage returns the stage at the cursor, or nil for an empty
// roadmap.
func (s *Session) CurrentStage() *Stage {
	return s.roadmap.Stage(s.stageIndex)
}

// State returns the value stored under key, if any.
func (s *Session) State(key string) (any, bool) {
	v, ok := s.state[key]
	return v, ok
}

// SetState stores a value under key. State is plain map access visible
// only within this session; there is no cross-session sharing.
func (s *Session) SetState(key string, v any) {
	s.state[key] = v
}
