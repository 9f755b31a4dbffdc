package component

import "github.com/milk9111/stalker/common"

// AIEventType defines the kind of behaviour event.
type AIEventType string

const (
	EventStateChanged AIEventType = "state_changed"
	EventDetected     AIEventType = "detected"
	EventNoiseHeard   AIEventType = "noise_heard"
	EventDoorNoticed  AIEventType = "door_noticed"
	EventDoorOpened   AIEventType = "door_opened"
	EventSpotClaimed  AIEventType = "spot_claimed"
	EventSpotReleased AIEventType = "spot_released"
	EventCaptured     AIEventType = "captured"
)

// AIEvent is emitted by the engine whenever something observable happens.
type AIEvent struct {
	Type     AIEventType `json:"type" yaml:"type"`
	From     StateID     `json:"from,omitempty" yaml:"from,omitempty"`
	To       StateID     `json:"to,omitempty" yaml:"to,omitempty"`
	Position common.Vec3 `json:"position" yaml:"position"`
	Detail   string      `json:"detail,omitempty" yaml:"detail,omitempty"`
	Tick     uint64      `json:"tick" yaml:"tick"`
}

// AIEventHandler handles behaviour events.
type AIEventHandler func(evt AIEvent)

// AIEventEmitter fans events out to handlers.
type AIEventEmitter struct {
	Handlers []AIEventHandler
}

// Subscribe appends a handler.
func (e *AIEventEmitter) Subscribe(h AIEventHandler) {
	if e == nil || h == nil {
		return
	}
	e.Handlers = append(e.Handlers, h)
}

// Emit sends an event to all handlers.
func (e *AIEventEmitter) Emit(evt AIEvent) {
	if e == nil || len(e.Handlers) == 0 {
		return
	}
	for _, h := range e.Handlers {
		if h != nil {
			h(evt)
		}
	}
}
