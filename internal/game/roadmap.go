package game

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Action names something the player can attempt. Stage membership
// decides whether it may run right now. The constants below cover the
// actions this package dispatches on; roadmaps loaded from files may
// carry identifiers outside this set.
type Action string

const (
	ActionAim          Action = "aim"
	ActionCharge       Action = "charge"
	ActionFire         Action = "fire"
	ActionCancelShot   Action = "cancelShot"
	ActionPause        Action = "pause"
	ActionConfirm      Action = "confirm"
	ActionResume       Action = "resume"
	ActionRestart      Action = "restart"
	ActionQuit         Action = "quit"
	ActionStartGame    Action = "startGame"
	ActionOpenSettings Action = "openSettings"
	ActionViewHelp     Action = "viewHelp"
	ActionNextLevel    Action = "nextLevel"
	ActionRetry        Action = "retry"
	ActionMainMenu     Action = "mainMenu"
)

// --- Stage ---

// Stage is a named mode of interaction with a fixed set of permitted
// actions. Immutable after construction: the allowed set and metadata
// are copied in and only exposed through accessors.
type Stage struct {
	name     string
	allowed  map[Action]struct{}
	metadata map[string]string
}

// NewStage builds a stage. The metadata map carries collaborator
// requirements (e.g. which scenes a stage needs) and is opaque to the
// gate itself.
func NewStage(name string, actions []Action, metadata map[string]string) Stage {
	s := Stage{
		name:    name,
		allowed: make(map[Action]struct{}, len(actions)),
	}
	for _, a := range actions {
		s.allowed[a] = struct{}{}
	}
	if len(metadata) > 0 {
		s.metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			s.metadata[k] = v
		}
	}
	return s
}

// Name returns the stage's unique name within its roadmap.
func (s *Stage) Name() string { return s.name }

// Allows reports whether the action is permitted in this stage.
func (s *Stage) Allows(a Action) bool {
	_, ok := s.allowed[a]
	return ok
}

// AllowedActions returns the permitted actions, sorted for stable
// display and reporting.
func (s *Stage) AllowedActions() []Action {
	out := make([]Action, 0, len(s.allowed))
	for a := range s.allowed {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Metadata returns the value for key, if set.
func (s *Stage) Metadata(key string) (string, bool) {
	v, ok := s.metadata[key]
	return v, ok
}

// --- Roadmap ---

// Roadmap is an ordered collection of stages defining a nominal
// progression. Order defines the implicit "next" stage for
// AdvanceStage but does not constrain jumps: any stage is reachable
// from any other, because membership governs permission, not
// reachability.
type Roadmap struct {
	name   string
	stages []Stage
}

// NewRoadmap builds a roadmap. An empty stage list is legal here; a
// session over an empty roadmap simply has no current stage and denies
// every action.
func NewRoadmap(name string, stages []Stage) *Roadmap {
	return &Roadmap{name: name, stages: append([]Stage(nil), stages...)}
}

// NewCustomRoadmap is the factory for externally assembled roadmaps,
// which must have at least one stage.
func NewCustomRoadmap(name string, stages []Stage) (*Roadmap, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("custom roadmap %q has no stages", name)
	}
	return NewRoadmap(name, stages), nil
}

// Name returns the roadmap's name.
func (r *Roadmap) Name() string { return r.name }

// Len returns the number of stages.
func (r *Roadmap) Len() int { return len(r.stages) }

// Stage returns the stage at index i, or nil if out of range.
func (r *Roadmap) Stage(i int) *Stage {
	if i < 0 || i >= len(r.stages) {
		return nil
	}
	return &r.stages[i]
}

// IndexOf returns the index of the named stage, or -1. Lookup is a
// linear scan; roadmaps are a handful of stages.
func (r *Roadmap) IndexOf(name string) int {
	for i := range r.stages {
		if r.stages[i].name == name {
			return i
		}
	}
	return -1
}

// Stage names of the default roadmap.
const (
	StageMainMenu        = "MainMenu"
	StageGamePreparation = "GamePreparation"
	StageActiveGameplay  = "ActiveGameplay"
	StagePaused          = "Paused"
	StageLevelComplete   = "LevelComplete"
	StageGameOver        = "GameOver"
)

// DefaultRoadmap returns the shipped six-stage progression.
func DefaultRoadmap() *Roadmap {
	return NewRoadmap("default", []Stage{
		NewStage(StageMainMenu, []Action{ActionStartGame, ActionOpenSettings, ActionViewHelp}, nil),
		NewStage(StageGamePreparation, []Action{ActionAim, ActionCharge, ActionCancelShot}, nil),
		NewStage(StageActiveGameplay, []Action{ActionAim, ActionCharge, ActionFire, ActionPause}, nil),
		NewStage(StagePaused, []Action{ActionResume, ActionRestart, ActionQuit}, nil),
		NewStage(StageLevelComplete, []Action{ActionNextLevel, ActionRetry, ActionMainMenu}, nil),
		NewStage(StageGameOver, []Action{ActionRestart, ActionMainMenu}, nil),
	})
}

// --- YAML roadmap files ---

// roadmapFile mirrors the on-disk YAML roadmap format:
//
//	name: tutorial
//	stages:
//	  - name: Intro
//	    actions: [confirm]
//	    metadata:
//	      scene: intro
type roadmapFile struct {
	Name   string      `yaml:"name"`
	Stages []stageFile `yaml:"stages"`
}

type stageFile struct {
	Name     string            `yaml:"name"`
	Actions  []string          `yaml:"actions"`
	Metadata map[string]string `yaml:"metadata"`
}

// LoadRoadmapFile reads a YAML roadmap definition. It goes through the
// custom factory path, so a file with an empty stage list is rejected.
func LoadRoadmapFile(path string) (*Roadmap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roadmap file: %w", err)
	}
	return ParseRoadmap(raw)
}

// ParseRoadmap decodes a YAML roadmap definition.
func ParseRoadmap(raw []byte) (*Roadmap, error) {
	var rf roadmapFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return nil, fmt.Errorf("parse roadmap: %w", err)
	}
	if rf.Name == "" {
		return nil, fmt.Errorf("roadmap has no name")
	}
	stages := make([]Stage, 0, len(rf.Stages))
	seen := make(map[string]struct{}, len(rf.Stages))
	for _, sf := range rf.Stages {
		if sf.Name == "" {
			return nil, fmt.Errorf("roadmap %q has a stage with no name", rf.Name)
		}
		if _, dup := seen[sf.Name]; dup {
			return nil, fmt.Errorf("roadmap %q has duplicate stage %q", rf.Name, sf.Name)
		}
		seen[sf.Name] = struct{}{}
		actions := make([]Action, len(sf.Actions))
		for i, a := range sf.Actions {
			actions[i] = Action(a)
		}
		stages = append(stages, NewStage(sf.Name, actions, sf.Metadata))
	}
	return NewCustomRoadmap(rf.Name, stages)
}
