package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusStopsAtFirstHandler(t *testing.T) {
	bus := NewEventBus(8)
	var calls []string
	bus.Register(EVENT_CODE_APPLICATION_QUIT, func(EventContext) bool {
		calls = append(calls, "first")
		return true
	})
	bus.Register(EVENT_CODE_APPLICATION_QUIT, func(EventContext) bool {
		calls = append(calls, "second")
		return true
	})

	require.NoError(t, bus.Fire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}))
	assert.Equal(t, 1, bus.Dispatch())
	assert.Equal(t, []string{"first"}, calls)
}

func TestEventBusDeliversEventsFiredWhileDraining(t *testing.T) {
	bus := NewEventBus(4)
	quit := false
	bus.Register(EVENT_CODE_KEY_PRESSED, func(ctx EventContext) bool {
		if ctx.Data.(*KeyEvent).KeyCode == KEY_ESCAPE {
			require.NoError(t, bus.Fire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}))
			return true
		}
		return false
	})
	bus.Register(EVENT_CODE_APPLICATION_QUIT, func(EventContext) bool {
		quit = true
		return true
	})

	input := NewInput(bus)
	require.NoError(t, input.ProcessKey(KEY_ESCAPE, true))
	assert.Equal(t, 2, bus.Dispatch())
	assert.True(t, quit)
	assert.Zero(t, bus.Pending())
}

func TestEventBusFullQueue(t *testing.T) {
	bus := NewEventBus(1)
	require.NoError(t, bus.Fire(EventContext{Type: EVENT_CODE_RESIZED}))
	assert.Error(t, bus.Fire(EventContext{Type: EVENT_CODE_RESIZED}))
}

func TestEventBusGrowsForKeyEvents(t *testing.T) {
	bus := NewEventBus(2)
	input := NewInput(bus)
	require.NoError(t, bus.Fire(EventContext{Type: EVENT_CODE_RESIZED}))
	require.NoError(t, bus.Fire(EventContext{Type: EVENT_CODE_RESIZED}))
	require.Error(t, bus.Fire(EventContext{Type: EVENT_CODE_RESIZED}))

	var keys []KeyCode
	bus.Register(EVENT_CODE_KEY_PRESSED, func(ctx EventContext) bool {
		keys = append(keys, ctx.Data.(*KeyEvent).KeyCode)
		return true
	})
	require.NoError(t, input.ProcessKey(KEY_ESCAPE, true))
	assert.True(t, input.IsKeyDown(KEY_ESCAPE))
	require.NoError(t, bus.Fire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}))

	assert.Equal(t, 4, bus.Dispatch())
	assert.Equal(t, []KeyCode{KEY_ESCAPE}, keys)
}

func TestInputOnlyFiresOnStateChange(t *testing.T) {
	bus := NewEventBus(8)
	input := NewInput(bus)

	require.NoError(t, input.ProcessKey(KEY_SPACE, true))
	require.NoError(t, input.ProcessKey(KEY_SPACE, true))
	assert.Equal(t, 1, bus.Pending())
	assert.True(t, input.IsKeyDown(KEY_SPACE))
	assert.True(t, input.WasKeyUp(KEY_SPACE))

	input.Update()
	assert.True(t, input.WasKeyDown(KEY_SPACE))
}
