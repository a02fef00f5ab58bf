package event

import (
	"fmt"
	"strings"
)

// Type identifies an event variant.
type Type int

const (
	TypeNone Type = iota
	TypeWindowClose
	TypeWindowResize
	TypeKeyPressed
	TypeKeyReleased
	TypeKeyTyped
	TypeMouseButtonPressed
	TypeMouseButtonReleased
	TypeMouseMoved
	TypeMouseScrolled
)

var typeNames = map[Type]string{
	TypeNone:                "None",
	TypeWindowClose:         "WindowClose",
	TypeWindowResize:        "WindowResize",
	TypeKeyPressed:          "KeyPressed",
	TypeKeyReleased:         "KeyReleased",
	TypeKeyTyped:            "KeyTyped",
	TypeMouseButtonPressed:  "MouseButtonPressed",
	TypeMouseButtonReleased: "MouseButtonReleased",
	TypeMouseMoved:          "MouseMoved",
	TypeMouseScrolled:       "MouseScrolled",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Category is a bit-set used by consumers to filter events.
type Category uint8

const (
	CategoryApplication Category = 1 << iota
	CategoryInput
	CategoryKeyboard
	CategoryMouse
	CategoryMouseButton
)

func (c Category) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	names := []struct {
		bit  Category
		name string
	}{
		{CategoryApplication, "application"},
		{CategoryInput, "input"},
		{CategoryKeyboard, "keyboard"},
		{CategoryMouse, "mouse"},
		{CategoryMouseButton, "mouse-button"},
	}
	for _, n := range names {
		if c&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Event is one of the variants declared in this package. Events are plain
// values: they are handed to a handler synchronously and must not be
// retained past the call.
type Event interface {
	Type() Type
	Categories() Category
	String() string

	sealed()
}

// InCategory reports whether e belongs to any of the categories in c.
func InCategory(e Event, c Category) bool {
	if e == nil {
		return false
	}
	return e.Categories()&c != 0
}

// KeyPressed is emitted on a key press (RepeatCount 0) and on key repeat
// (RepeatCount 1).
type KeyPressed struct {
	Key         Key
	RepeatCount int
}

func (KeyPressed) Type() Type { return TypeKeyPressed }
func (KeyPressed) Categories() Category {
	return CategoryInput | CategoryKeyboard
}
func (e KeyPressed) String() string {
	return fmt.Sprintf("KeyPressed: %s (%d repeats)", e.Key, e.RepeatCount)
}
func (KeyPressed) sealed() {}

type KeyReleased struct {
	Key Key
}

func (KeyReleased) Type() Type { return TypeKeyReleased }
func (KeyReleased) Categories() Category {
	return CategoryInput | CategoryKeyboard
}
func (e KeyReleased) String() string { return fmt.Sprintf("KeyReleased: %s", e.Key) }
func (KeyReleased) sealed()          {}

// KeyTyped carries a Unicode code point produced by character input.
type KeyTyped struct {
	Codepoint rune
}

func (KeyTyped) Type() Type { return TypeKeyTyped }
func (KeyTyped) Categories() Category {
	return CategoryInput | CategoryKeyboard
}
func (e KeyTyped) String() string {
	return fmt.Sprintf("KeyTyped: U+%04X %q", e.Codepoint, e.Codepoint)
}
func (KeyTyped) sealed() {}

type MouseButtonPressed struct {
	Button MouseButton
}

func (MouseButtonPressed) Type() Type { return TypeMouseButtonPressed }
func (MouseButtonPressed) Categories() Category {
	return CategoryInput | CategoryMouse | CategoryMouseButton
}
func (e MouseButtonPressed) String() string {
	return fmt.Sprintf("MouseButtonPressed: %s", e.Button)
}
func (MouseButtonPressed) sealed() {}

type MouseButtonReleased struct {
	Button MouseButton
}

func (MouseButtonReleased) Type() Type { return TypeMouseButtonReleased }
func (MouseButtonReleased) Categories() Category {
	return CategoryInput | CategoryMouse | CategoryMouseButton
}
func (e MouseButtonReleased) String() string {
	return fmt.Sprintf("MouseButtonReleased: %s", e.Button)
}
func (MouseButtonReleased) sealed() {}

type MouseScrolled struct {
	XOffset float64
	YOffset float64
}

func (MouseScrolled) Type() Type { return TypeMouseScrolled }
func (MouseScrolled) Categories() Category {
	return CategoryInput | CategoryMouse
}
func (e MouseScrolled) String() string {
	return fmt.Sprintf("MouseScrolled: %g, %g", e.XOffset, e.YOffset)
}
func (MouseScrolled) sealed() {}

type MouseMoved struct {
	X float64
	Y float64
}

func (MouseMoved) Type() Type { return TypeMouseMoved }
func (MouseMoved) Categories() Category {
	return CategoryInput | CategoryMouse
}
func (e MouseMoved) String() string { return fmt.Sprintf("MouseMoved: %g, %g", e.X, e.Y) }
func (MouseMoved) sealed()          {}

type WindowResize struct {
	Width  int
	Height int
}

func (WindowResize) Type() Type           { return TypeWindowResize }
func (WindowResize) Categories() Category { return CategoryApplication }
func (e WindowResize) String() string {
	return fmt.Sprintf("WindowResize: %d, %d", e.Width, e.Height)
}
func (WindowResize) sealed() {}

type WindowClose struct{}

func (WindowClose) Type() Type           { return TypeWindowClose }
func (WindowClose) Categories() Category { return CategoryApplication }
func (WindowClose) String() string       { return "WindowClose" }
func (WindowClose) sealed()              {}
