package window

import (
	"log/slog"

	"github.com/1broseidon/lumen/internal/event"
	"github.com/1broseidon/lumen/internal/platform"
)

// windowData is the state the native callbacks act on. Each callback
// synthesizes exactly one event and hands it to the handler before
// returning.
type windowData struct {
	title   string
	width   int
	height  int
	vsync   bool
	handler Handler
	logger  *slog.Logger
}

func (d *windowData) callbacks() *platform.Callbacks {
	return &platform.Callbacks{
		Key:         d.onKey,
		MouseButton: d.onMouseButton,
		Scroll:      d.onScroll,
		CursorPos:   d.onCursorPos,
		Size:        d.onSize,
		Close:       d.onClose,
		Char:        d.onChar,
	}
}

func (d *windowData) emit(e event.Event) {
	if d.handler == nil {
		d.logger.Debug("event without handler", "event", e.String())
		return
	}
	d.handler(e)
}

func (d *windowData) onKey(key event.Key, _ int, action platform.Action, _ platform.Modifier) {
	switch action {
	case platform.Press:
		d.emit(event.KeyPressed{Key: key, RepeatCount: 0})
	case platform.Release:
		d.emit(event.KeyReleased{Key: key})
	case platform.Repeat:
		d.emit(event.KeyPressed{Key: key, RepeatCount: 1})
	}
}

func (d *windowData) onMouseButton(button event.MouseButton, action platform.Action, _ platform.Modifier) {
	switch action {
	case platform.Press:
		d.emit(event.MouseButtonPressed{Button: button})
	case platform.Release:
		d.emit(event.MouseButtonReleased{Button: button})
	}
}

func (d *windowData) onScroll(xoffset, yoffset float64) {
	d.emit(event.MouseScrolled{XOffset: xoffset, YOffset: yoffset})
}

func (d *windowData) onCursorPos(xpos, ypos float64) {
	d.emit(event.MouseMoved{X: xpos, Y: ypos})
}

// onSize records the new size before emitting so the handler already sees
// it through Width and Height.
func (d *windowData) onSize(width, height int) {
	d.width = width
	d.height = height
	d.emit(event.WindowResize{Width: width, Height: height})
}

func (d *windowData) onClose() {
	d.emit(event.WindowClose{})
}

func (d *windowData) onChar(codepoint rune) {
	d.emit(event.KeyTyped{Codepoint: codepoint})
}
