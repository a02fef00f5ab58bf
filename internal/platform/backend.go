// Package platform is the boundary between the engine and a native window
// system. A Backend creates NativeWindows; a NativeWindow reports raw input
// and window signals through a Callbacks table while PollEvents runs.
package platform

import (
	"fmt"

	"github.com/1broseidon/lumen/internal/event"
	"github.com/1broseidon/lumen/internal/gfx"
)

// Action is the state transition reported for keys and buttons.
type Action int

const (
	Release Action = iota
	Press
	Repeat
)

func (a Action) String() string {
	switch a {
	case Release:
		return "release"
	case Press:
		return "press"
	case Repeat:
		return "repeat"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Modifier is a bit-set of held modifier keys.
type Modifier uint16

const (
	ModShift Modifier = 1 << iota
	ModControl
	ModAlt
	ModSuper
	ModCapsLock
	ModNumLock
)

// WindowSpec is what a backend needs to create a native window.
type WindowSpec struct {
	Title  string
	Width  int
	Height int
}

// Callbacks receives native signals. Backends invoke the fields
// synchronously from inside PollEvents, one call per signal, in the order
// the window system delivered them. Nil fields are skipped.
type Callbacks struct {
	Key         func(key event.Key, scancode int, action Action, mods Modifier)
	MouseButton func(button event.MouseButton, action Action, mods Modifier)
	Scroll      func(xoffset, yoffset float64)
	CursorPos   func(xpos, ypos float64)
	Size        func(width, height int)
	Close       func()
	Char        func(codepoint rune)
}

// NativeWindow is a window owned by a Backend.
type NativeWindow interface {
	// SetCallbacks installs the callback table. Passing nil detaches it.
	SetCallbacks(cb *Callbacks)
	// PollEvents processes every pending native signal without blocking.
	PollEvents()
	// Size queries the current client area from the window system.
	Size() (width, height int)
	// CreateContext creates the graphics context bound to this window.
	CreateContext() (gfx.Context, error)
	Destroy()
}

// Backend is a native window system.
type Backend interface {
	Name() string
	// Init connects to the window system. Callers guarantee a single Init
	// per Terminate.
	Init() error
	Terminate()
	CreateWindow(spec WindowSpec) (NativeWindow, error)
}
