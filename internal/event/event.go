package event

import (
	"context"
	"fmt"
	"sync"
)

// EventSchemaVersion is stamped on every event built by the constructors below.
const EventSchemaVersion = "1.0"

// Type represents the type of an event
type Type string

// Encounter event types
const (
	StepCountChanged Type = "encounter.step_count_changed"
	BattleStarting   Type = "encounter.battle_starting"
	EncounterAborted Type = "encounter.aborted"
	BattleEnded      Type = "encounter.battle_ended"
	ZoneEntered      Type = "zone.entered"
	ZoneLeft         Type = "zone.left"
	WeatherChanged   Type = "ambient.weather_changed"
	DayPhaseChanged  Type = "ambient.day_phase_changed"
)

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"`
	Type    Type        `json:"type"`
	Source  string      `json:"source,omitempty"` // player/session the event belongs to
	Payload interface{} `json:"payload"`
}

// Handler processes a published event.
type Handler func(ctx context.Context, event Event) error

// Bus is the publish/subscribe surface used by the encounter core and the host.
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// StepCountChangedPayloadV1 carries the new step count.
type StepCountChangedPayloadV1 struct {
	Steps int    `json:"steps"`
	Zone  string `json:"zone"`
}

// BattleStartingPayloadV1 is published when a transition sequence begins.
type BattleStartingPayloadV1 struct {
	EncounterID string   `json:"encounter_id"`
	Zone        string   `json:"zone"`
	Enemies     []string `json:"enemies"`
	IsBoss      bool     `json:"is_boss"`
}

// EncounterAbortedPayloadV1 is published when a triggered encounter could not start.
type EncounterAbortedPayloadV1 struct {
	Zone   string `json:"zone"`
	Reason string `json:"reason"`
}

// BattleEndedPayloadV1 is published once the player is back in the overworld.
type BattleEndedPayloadV1 struct {
	EncounterID string `json:"encounter_id"`
	Zone        string `json:"zone"`
	Victory     bool   `json:"victory"`
}

// ZonePayloadV1 is used for zone enter/leave events.
type ZonePayloadV1 struct {
	Zone string `json:"zone"`
	Map  string `json:"map"`
}

// AmbientPayloadV1 carries the new weather or day phase name.
type AmbientPayloadV1 struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NewStepCountChangedEvent creates a step counter event.
func NewStepCountChangedEvent(source string, steps int, zone string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    StepCountChanged,
		Source:  source,
		Payload: StepCountChangedPayloadV1{Steps: steps, Zone: zone},
	}
}

// NewBattleStartingEvent creates a battle starting event.
func NewBattleStartingEvent(source, encounterID, zone string, enemies []string, isBoss bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BattleStarting,
		Source:  source,
		Payload: BattleStartingPayloadV1{
			EncounterID: encounterID,
			Zone:        zone,
			Enemies:     append([]string(nil), enemies...),
			IsBoss:      isBoss,
		},
	}
}

// NewEncounterAbortedEvent creates an aborted encounter event.
func NewEncounterAbortedEvent(source, zone, reason string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    EncounterAborted,
		Source:  source,
		Payload: EncounterAbortedPayloadV1{Zone: zone, Reason: reason},
	}
}

// NewBattleEndedEvent creates a battle ended event.
func NewBattleEndedEvent(source, encounterID, zone string, victory bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BattleEnded,
		Source:  source,
		Payload: BattleEndedPayloadV1{EncounterID: encounterID, Zone: zone, Victory: victory},
	}
}

// NewZoneEvent creates a zone entered/left event.
func NewZoneEvent(t Type, source, zone, mapName string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    t,
		Source:  source,
		Payload: ZonePayloadV1{Zone: zone, Map: mapName},
	}
}

// NewAmbientEvent creates a weather or day phase change event.
func NewAmbientEvent(t Type, from, to string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    t,
		Payload: AmbientPayloadV1{From: from, To: to},
	}
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers.
// Handlers run synchronously on the caller's goroutine, in subscription order.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d handler(s) failed for event %s: %v", len(errs), event.Type, errs)
	}
	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
