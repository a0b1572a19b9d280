package core

// Key code definitions
type KeyCode uint16

const (
	KEY_UNKNOWN   KeyCode = 0x00
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_F5        KeyCode = 0x74
	KEY_F12       KeyCode = 0x7B
	KEYS_MAX_KEYS KeyCode = 0xFF
)

// Keyboard state structure
type KeyboardState struct {
	Keys [256]bool
}

// Input tracks current and previous keyboard states and turns state changes
// into key events on the bus.
type Input struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState

	events *EventBus
}

func NewInput(events *EventBus) *Input {
	return &Input{events: events}
}

// Update copies the current state into the previous one. Call once per frame
// after all input for the frame has been recorded.
func (i *Input) Update() {
	i.KeyboardPrevious = i.KeyboardCurrent
}

func (i *Input) IsKeyDown(key KeyCode) bool {
	return i.KeyboardCurrent.Keys[key]
}

func (i *Input) IsKeyUp(key KeyCode) bool {
	return !i.KeyboardCurrent.Keys[key]
}

func (i *Input) WasKeyDown(key KeyCode) bool {
	return i.KeyboardPrevious.Keys[key]
}

func (i *Input) WasKeyUp(key KeyCode) bool {
	return !i.KeyboardPrevious.Keys[key]
}

func (i *Input) ProcessKey(key KeyCode, pressed bool) error {
	if key >= KEYS_MAX_KEYS {
		return nil
	}
	// Only handle this if the state actually changed.
	if i.KeyboardCurrent.Keys[key] == pressed {
		return nil
	}

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	err := i.events.Fire(EventContext{
		Type: code,
		Data: &KeyEvent{
			KeyCode: key,
		},
	})
	if err != nil {
		// state stays in step with the events that were delivered
		return err
	}
	i.KeyboardCurrent.Keys[key] = pressed
	return nil
}
