package core

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/containers"
)

// System internal event codes. Application should use codes beyond 255.
type EventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Keyboard key pressed. Data: *KeyEvent
	EVENT_CODE_KEY_PRESSED EventCode = 0x02

	// Keyboard key released. Data: *KeyEvent
	EVENT_CODE_KEY_RELEASED EventCode = 0x03

	// Resized/resolution changed from the OS. Data: *SystemEvent
	EVENT_CODE_RESIZED EventCode = 0x08

	MAX_EVENT_CODE EventCode = 0xFF
)

func (c EventCode) lossless() bool {
	switch c {
	case EVENT_CODE_APPLICATION_QUIT, EVENT_CODE_KEY_PRESSED, EVENT_CODE_KEY_RELEASED:
		return true
	}
	return false
}

type KeyEvent struct {
	KeyCode KeyCode
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type EventContext struct {
	Type EventCode
	Data interface{}
}

// Should return true if handled.
type FnOnEvent func(context EventContext) bool

// EventBus queues events fired during a frame and hands them to the
// registered listeners when Dispatch is called. It is owned by the render
// thread and is not safe for concurrent use.
type EventBus struct {
	registered map[EventCode][]FnOnEvent
	pending    *containers.RingQueue[EventContext]
}

func NewEventBus(capacity int) *EventBus {
	return &EventBus{
		registered: make(map[EventCode][]FnOnEvent),
		pending:    containers.NewRingQueue[EventContext](capacity),
	}
}

// Register a listener for the given code. Listeners are called in
// registration order until one reports the event as handled.
func (b *EventBus) Register(code EventCode, onEvent FnOnEvent) {
	b.registered[code] = append(b.registered[code], onEvent)
}

// Fire queues an event for the next Dispatch. Key and quit events grow the
// queue when it is full; any other event is dropped with an error.
func (b *EventBus) Fire(context EventContext) error {
	err := b.pending.Enqueue(context)
	if errors.Is(err, containers.ErrQueueFull) && context.Type.lossless() {
		b.pending.Grow(2 * max(b.pending.Cap(), 1))
		err = b.pending.Enqueue(context)
	}
	if err != nil {
		return fmt.Errorf("event %d dropped: %w", context.Type, err)
	}
	return nil
}

// Dispatch drains the queue, including events fired by listeners while
// draining, and returns how many events were delivered.
func (b *EventBus) Dispatch() int {
	delivered := 0
	for !b.pending.IsEmpty() {
		context, err := b.pending.Dequeue()
		if err != nil {
			break
		}
		delivered++
		for _, fn := range b.registered[context.Type] {
			if fn(context) {
				// Message has been handled, do not send to other listeners.
				break
			}
		}
	}
	return delivered
}

// Pending reports the number of queued events.
func (b *EventBus) Pending() int {
	return b.pending.Len()
}
