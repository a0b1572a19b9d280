// Package headless is a window without a display. Input is scripted by the
// caller, which makes it suitable for tests and offscreen runs.
package headless

import (
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/platform"
)

// Window queues scripted key presses and delivers them on PollEvents.
type Window struct {
	cfg         platform.WindowConfig
	input       *core.Input
	shouldClose bool
	closeAfter  int
	polls       int
	swaps       int
	pending     []core.KeyCode
}

func New(cfg platform.WindowConfig, input *core.Input) *Window {
	return &Window{cfg: cfg, input: input}
}

// PressKey queues a press and release of key for the next PollEvents.
func (w *Window) PressKey(key core.KeyCode) {
	w.pending = append(w.pending, key)
}

// CloseAfter requests close once n frames have been presented.
func (w *Window) CloseAfter(n int) {
	w.closeAfter = n
}

func (w *Window) ShouldClose() bool {
	return w.shouldClose
}

func (w *Window) SetShouldClose(value bool) {
	w.shouldClose = value
}

func (w *Window) PollEvents() {
	w.polls++
	keys := w.pending
	w.pending = nil
	for _, key := range keys {
		if err := w.input.ProcessKey(key, true); err != nil {
			core.LogWarn("dropped key event: %s", err)
		}
		if err := w.input.ProcessKey(key, false); err != nil {
			core.LogWarn("dropped key event: %s", err)
		}
	}
}

func (w *Window) SwapBuffers() {
	w.swaps++
	if w.closeAfter > 0 && w.swaps >= w.closeAfter {
		w.shouldClose = true
	}
}

func (w *Window) FramebufferSize() (uint32, uint32) {
	return w.cfg.Width, w.cfg.Height
}

func (w *Window) Shutdown() error {
	return nil
}

// Swaps returns how many frames were presented.
func (w *Window) Swaps() int {
	return w.swaps
}

func (w *Window) Polls() int {
	return w.polls
}
