package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	var got []Event

	bus.Subscribe(StepCountChanged, func(ctx context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	err := bus.Publish(context.Background(), NewStepCountChangedEvent("p1", 7, "meadow"))
	require.NoError(t, err)
	require.Len(t, got, 1)

	payload, ok := got[0].Payload.(StepCountChangedPayloadV1)
	require.True(t, ok)
	assert.Equal(t, 7, payload.Steps)
	assert.Equal(t, "meadow", payload.Zone)
	assert.Equal(t, "p1", got[0].Source)
	assert.Equal(t, EventSchemaVersion, got[0].Version)
}

func TestMemoryBus_HandlersRunInOrder(t *testing.T) {
	bus := NewMemoryBus()
	var order []int
	bus.Subscribe(BattleStarting, func(context.Context, Event) error { order = append(order, 1); return nil })
	bus.Subscribe(BattleStarting, func(context.Context, Event) error { order = append(order, 2); return nil })

	require.NoError(t, bus.Publish(context.Background(), NewBattleStartingEvent("p1", "id", "cave", []string{"bat"}, false)))
	assert.Equal(t, []int{1, 2}, order)
}

func TestMemoryBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	assert.NoError(t, bus.Publish(context.Background(), NewBattleEndedEvent("p1", "id", "cave", true)))
}

func TestMemoryBus_PublishError(t *testing.T) {
	bus := NewMemoryBus()
	called := 0
	bus.Subscribe(EncounterAborted, func(context.Context, Event) error { return errors.New("boom") })
	bus.Subscribe(EncounterAborted, func(context.Context, Event) error { called++; return nil })

	err := bus.Publish(context.Background(), NewEncounterAbortedEvent("p1", "cave", "empty party"))
	assert.Error(t, err)
	assert.Equal(t, 1, called, "later handlers still run after a failure")
}

func TestNewBattleStartingEvent_CopiesEnemies(t *testing.T) {
	enemies := []string{"slime", "bat"}
	e := NewBattleStartingEvent("p1", "id", "cave", enemies, true)
	enemies[0] = "dragon"

	payload := e.Payload.(BattleStartingPayloadV1)
	assert.Equal(t, []string{"slime", "bat"}, payload.Enemies)
	assert.True(t, payload.IsBoss)
}
