// Package platform describes the window the frame loop presents into.
// Implementations push key and resize input onto the engine event bus.
package platform

type WindowConfig struct {
	Title  string
	X      int
	Y      int
	Width  uint32
	Height uint32
	VSync  bool
}

type Window interface {
	ShouldClose() bool
	SetShouldClose(value bool)
	// PollEvents processes pending window-system input without blocking.
	PollEvents()
	SwapBuffers()
	FramebufferSize() (uint32, uint32)
	Shutdown() error
}
