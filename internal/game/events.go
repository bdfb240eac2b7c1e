package game

// Event names the domain events the core publishes to external
// collaborators (renderers, dialogs, physics). The vocabulary is closed
// here because every producer lives in this package; collaborators
// subscribe by constant.
type Event string

const (
	EventAimLeft      Event = "input-aim-left"
	EventAimRight     Event = "input-aim-right"
	EventChargeStart  Event = "input-charge-start"
	EventFire         Event = "input-fire"
	EventPause        Event = "input-pause"
	EventConfirm      Event = "input-confirm"
	EventRestart      Event = "input-restart"
	EventExit         Event = "input-exit"
	EventShotFired    Event = "shot-fired"
	EventAngleChanged Event = "aim-angle-changed"
	EventStageChanged Event = "handover-stage-changed"
)

// ShotFired is the payload of EventShotFired.
type ShotFired struct {
	Power float64 // captured at release, in [MinPower, MaxPower]
}

// AngleChanged is the payload of EventAngleChanged.
type AngleChanged struct {
	Angle float64 // degrees, 0 = centered
}

// StageChanged is the payload of EventStageChanged. Previous is nil on
// the first stage of a fresh session.
type StageChanged struct {
	Previous *Stage
	Current  *Stage
}

// Handler consumes one published event. Handlers run synchronously on
// the publisher's goroutine; they must not block.
type Handler func(ev Event, payload any)

// Hub is a synchronous publish/subscribe hub. Delivery is in-order:
// subscribers for an event are invoked in the order they registered,
// before Publish returns. There is no queue and no goroutine — the hub
// exists to decouple producers from consumers, not to defer work.
type Hub struct {
	handlers map[Event][]Handler
	taps     []Handler // receive every event, after specific handlers
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{handlers: make(map[Event][]Handler)}
}

// Subscribe registers fn for one event.
func (h *Hub) Subscribe(ev Event, fn Handler) {
	h.handlers[ev] = append(h.handlers[ev], fn)
}

// Tap registers fn for every event. Taps run after the event's own
// subscribers; the SimLog uses this to capture a full run.
func (h *Hub) Tap(fn Handler) {
	h.taps = append(h.taps, fn)
}

// Publish delivers ev to its subscribers, then to the taps.
func (h *Hub) Publish(ev Event, payload any) {
	for _, fn := range h.handlers[ev] {
		fn(ev, payload)
	}
	for _, fn := range h.taps {
		fn(ev, payload)
	}
}
