package event

import "testing"

func TestCategories(t *testing.T) {
	tests := []struct {
		ev   Event
		in   Category
		out  Category
		want Type
	}{
		{KeyPressed{Key: KeyA}, CategoryKeyboard | CategoryInput, CategoryMouse | CategoryApplication, TypeKeyPressed},
		{KeyReleased{Key: KeyA}, CategoryKeyboard, CategoryMouseButton, TypeKeyReleased},
		{KeyTyped{Codepoint: 'a'}, CategoryKeyboard, CategoryMouse, TypeKeyTyped},
		{MouseButtonPressed{Button: MouseButtonLeft}, CategoryMouseButton | CategoryMouse, CategoryKeyboard, TypeMouseButtonPressed},
		{MouseButtonReleased{Button: MouseButtonRight}, CategoryMouseButton, CategoryApplication, TypeMouseButtonReleased},
		{MouseScrolled{XOffset: 0, YOffset: 1}, CategoryMouse, CategoryMouseButton, TypeMouseScrolled},
		{MouseMoved{X: 1, Y: 2}, CategoryMouse | CategoryInput, CategoryKeyboard, TypeMouseMoved},
		{WindowResize{Width: 1, Height: 1}, CategoryApplication, CategoryInput, TypeWindowResize},
		{WindowClose{}, CategoryApplication, CategoryInput | CategoryMouse, TypeWindowClose},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if tt.ev.Type() != tt.want {
				t.Fatalf("Type() = %v, want %v", tt.ev.Type(), tt.want)
			}
			if !InCategory(tt.ev, tt.in) {
				t.Errorf("expected %v in %v", tt.ev, tt.in)
			}
			if InCategory(tt.ev, tt.out) {
				t.Errorf("expected %v not in %v", tt.ev, tt.out)
			}
			if tt.ev.String() == "" {
				t.Errorf("empty String() for %v", tt.want)
			}
		})
	}
}

func TestInCategory_NilEvent(t *testing.T) {
	if InCategory(nil, CategoryApplication) {
		t.Fatal("nil event should not be in any category")
	}
}

func TestCategoryString(t *testing.T) {
	if got := (CategoryInput | CategoryMouse).String(); got != "input|mouse" {
		t.Fatalf("String() = %q", got)
	}
	if got := Category(0).String(); got != "none" {
		t.Fatalf("String() = %q", got)
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyA, "A"},
		{Key0, "0"},
		{KeySpace, "Space"},
		{KeyEscape, "Escape"},
		{KeyF1, "F1"},
		{KeyF12, "F12"},
		{KeyRightControl, "RightControl"},
		{Key(9999), "Key(9999)"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("Key(%d).String() = %q, want %q", int32(tt.key), got, tt.want)
		}
	}
}

func TestDispatch(t *testing.T) {
	d := NewDispatcher(WindowResize{Width: 10, Height: 20})

	if Dispatch(d, func(KeyPressed) bool { return true }) {
		t.Fatal("KeyPressed handler must not run for WindowResize")
	}

	var got WindowResize
	if !Dispatch(d, func(e WindowResize) bool {
		got = e
		return true
	}) {
		t.Fatal("WindowResize handler did not run")
	}
	if got.Width != 10 || got.Height != 20 {
		t.Fatalf("got %+v", got)
	}
	if !d.Handled() {
		t.Fatal("expected event to be handled")
	}

	if Dispatch(d, func(WindowResize) bool { return true }) {
		t.Fatal("handled event must not be dispatched again")
	}
}

func TestDispatch_UnhandledContinues(t *testing.T) {
	d := NewDispatcher(WindowClose{})
	calls := 0
	Dispatch(d, func(WindowClose) bool { calls++; return false })
	Dispatch(d, func(WindowClose) bool { calls++; return false })
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if d.Handled() {
		t.Fatal("event should not be marked handled")
	}
}
