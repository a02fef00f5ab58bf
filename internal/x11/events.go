package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/lumen/internal/platform"
)

// keysymLookup returns the keysym in the given column of a keycode's
// mapping. Column 0 is unshifted and column 1 shifted.
type keysymLookup func(code xproto.Keycode, column byte) xproto.Keysym

// translator turns core protocol events for one window into callback
// invocations.
type translator struct {
	width  int
	height int

	protocolsAtom xproto.Atom
	deleteAtom    xproto.Atom
	keysym        keysymLookup
}

// dispatch delivers events in order to the callbacks current returns,
// stopping once it returns nil. An autorepeated key arrives as a release and
// a press sharing a keycode and timestamp; the pair is reported as a single
// Repeat.
func (t *translator) dispatch(events []xgb.Event, current func() *platform.Callbacks) {
	for i := 0; i < len(events); i++ {
		cb := current()
		if cb == nil {
			return
		}
		switch ev := events[i].(type) {
		case xproto.KeyPressEvent:
			t.key(cb, ev.Detail, ev.State, platform.Press)
		case xproto.KeyReleaseEvent:
			if i+1 < len(events) {
				if next, ok := events[i+1].(xproto.KeyPressEvent); ok &&
					next.Detail == ev.Detail && next.Time == ev.Time {
					i++
					t.key(cb, next.Detail, next.State, platform.Repeat)
					continue
				}
			}
			t.key(cb, ev.Detail, ev.State, platform.Release)
		case xproto.ButtonPressEvent:
			t.button(cb, ev.Detail, ev.State, platform.Press)
		case xproto.ButtonReleaseEvent:
			t.button(cb, ev.Detail, ev.State, platform.Release)
		case xproto.MotionNotifyEvent:
			if cb.CursorPos != nil {
				cb.CursorPos(float64(ev.EventX), float64(ev.EventY))
			}
		case xproto.ConfigureNotifyEvent:
			w, h := int(ev.Width), int(ev.Height)
			if w == t.width && h == t.height {
				continue
			}
			t.width, t.height = w, h
			if cb.Size != nil {
				cb.Size(w, h)
			}
		case xproto.ClientMessageEvent:
			if ev.Format != 32 || ev.Type != t.protocolsAtom {
				continue
			}
			if data := ev.Data.Data32; len(data) > 0 && xproto.Atom(data[0]) == t.deleteAtom && cb.Close != nil {
				cb.Close()
			}
		}
	}
}

func (t *translator) key(cb *platform.Callbacks, code xproto.Keycode, state uint16, action platform.Action) {
	mods := modsFromState(state)
	if cb.Key != nil {
		cb.Key(keyFromKeysym(t.keysym(code, 0)), int(code), action, mods)
	}
	if action == platform.Release || cb.Char == nil || mods&(platform.ModControl|platform.ModAlt) != 0 {
		return
	}
	if r, ok := t.char(code, mods); ok {
		cb.Char(r)
	}
}

// char resolves the text a key produces under the held modifiers.
func (t *translator) char(code xproto.Keycode, mods platform.Modifier) (rune, bool) {
	sym := t.keysym(code, 0)
	if mods&platform.ModShift != 0 {
		if shifted := t.keysym(code, 1); shifted != 0 {
			sym = shifted
		}
	}
	if mods&platform.ModCapsLock != 0 {
		switch {
		case sym >= 'a' && sym <= 'z' && mods&platform.ModShift == 0:
			sym -= 'a' - 'A'
		case sym >= 'A' && sym <= 'Z' && mods&platform.ModShift != 0:
			sym += 'a' - 'A'
		}
	}
	return runeFromKeysym(sym)
}

func (t *translator) button(cb *platform.Callbacks, detail xproto.Button, state uint16, action platform.Action) {
	in, ok := translateButton(detail)
	if !ok {
		return
	}
	if in.scroll {
		if action == platform.Press && cb.Scroll != nil {
			cb.Scroll(in.scrollX, in.scrollY)
		}
		return
	}
	if cb.MouseButton != nil {
		cb.MouseButton(in.button, action, modsFromState(state))
	}
}

// eventWindow returns the window an event is addressed to.
func eventWindow(ev xgb.Event) (xproto.Window, bool) {
	switch ev := ev.(type) {
	case xproto.KeyPressEvent:
		return ev.Event, true
	case xproto.KeyReleaseEvent:
		return ev.Event, true
	case xproto.ButtonPressEvent:
		return ev.Event, true
	case xproto.ButtonReleaseEvent:
		return ev.Event, true
	case xproto.MotionNotifyEvent:
		return ev.Event, true
	case xproto.ConfigureNotifyEvent:
		return ev.Window, true
	case xproto.ClientMessageEvent:
		return ev.Window, true
	case xproto.ExposeEvent:
		return ev.Window, true
	}
	return 0, false
}
