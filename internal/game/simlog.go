package game

import "fmt"

// SimLogEntry is one recorded event during a headless scripted run.
type SimLogEntry struct {
	Tick     int
	Category string  // event, stage, input, charge, aim
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] event   shot-fired       power=0.55
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-8s %-22s %s", e.Tick, e.Category, e.Key, e.Value)
}

// SimLog collects structured events during a headless scripted run.
// Unlike zerolog output (human diagnostics), SimLog is unbounded and
// machine-readable so reports and tests can assert on it.
type SimLog struct {
	entries []SimLogEntry
	tick    *int
}

// NewSimLog creates a SimLog reading the current tick through the given
// pointer, matching how the headless driver advances time.
func NewSimLog(tick *int) *SimLog {
	return &SimLog{tick: tick}
}

// Add records a new entry at the current tick.
func (sl *SimLog) Add(category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     *sl.tick,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// Attach taps the hub so every published domain event is captured.
func (sl *SimLog) Attach(hub *Hub) {
	hub.Tap(func(ev Event, payload any) {
		switch p := payload.(type) {
		case ShotFired:
			sl.Add("event", string(ev), fmt.Sprintf("power=%.2f", p.Power), p.Power)
		case AngleChanged:
			sl.Add("event", string(ev), fmt.Sprintf("angle=%.1f", p.Angle), p.Angle)
		case StageChanged:
			prev := "(none)"
			if p.Previous != nil {
				prev = p.Previous.Name()
			}
			cur := "(none)"
			if p.Current != nil {
				cur = p.Current.Name()
			}
			sl.Add("stage", string(ev), fmt.Sprintf("%s -> %s", prev, cur), 0)
		default:
			sl.Add("event", string(ev), "", 0)
		}
	})
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Count returns how many entries match the given category and key.
func (sl *SimLog) Count(category, key string) int {
	return len(sl.Filter(category, key))
}
