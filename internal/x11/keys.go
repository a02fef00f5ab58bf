package x11

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/lumen/internal/event"
	"github.com/1broseidon/lumen/internal/platform"
)

// Keysyms with no printable form, from X11/keysymdef.h.
const (
	keysymBackSpace  = 0xff08
	keysymTab        = 0xff09
	keysymReturn     = 0xff0d
	keysymPause      = 0xff13
	keysymScrollLock = 0xff14
	keysymEscape     = 0xff1b
	keysymHome       = 0xff50
	keysymLeft       = 0xff51
	keysymUp         = 0xff52
	keysymRight      = 0xff53
	keysymDown       = 0xff54
	keysymPageUp     = 0xff55
	keysymPageDown   = 0xff56
	keysymEnd        = 0xff57
	keysymPrint      = 0xff61
	keysymInsert     = 0xff63
	keysymMenu       = 0xff67
	keysymNumLock    = 0xff7f
	keysymKPEnter    = 0xff8d
	keysymF1         = 0xffbe
	keysymF12        = 0xffc9
	keysymShiftL     = 0xffe1
	keysymShiftR     = 0xffe2
	keysymControlL   = 0xffe3
	keysymControlR   = 0xffe4
	keysymCapsLock   = 0xffe5
	keysymAltL       = 0xffe9
	keysymAltR       = 0xffea
	keysymSuperL     = 0xffeb
	keysymSuperR     = 0xffec
	keysymDelete     = 0xffff

	// keysymUnicodeBase marks keysyms that carry a UCS code point in their
	// low 24 bits.
	keysymUnicodeBase = 0x01000000
)

var namedKeys = map[xproto.Keysym]event.Key{
	keysymBackSpace:  event.KeyBackspace,
	keysymTab:        event.KeyTab,
	keysymReturn:     event.KeyEnter,
	keysymPause:      event.KeyPause,
	keysymScrollLock: event.KeyScrollLock,
	keysymEscape:     event.KeyEscape,
	keysymHome:       event.KeyHome,
	keysymLeft:       event.KeyLeft,
	keysymUp:         event.KeyUp,
	keysymRight:      event.KeyRight,
	keysymDown:       event.KeyDown,
	keysymPageUp:     event.KeyPageUp,
	keysymPageDown:   event.KeyPageDown,
	keysymEnd:        event.KeyEnd,
	keysymPrint:      event.KeyPrintScreen,
	keysymInsert:     event.KeyInsert,
	keysymMenu:       event.KeyMenu,
	keysymNumLock:    event.KeyNumLock,
	keysymKPEnter:    event.KeyKPEnter,
	keysymShiftL:     event.KeyLeftShift,
	keysymShiftR:     event.KeyRightShift,
	keysymControlL:   event.KeyLeftControl,
	keysymControlR:   event.KeyRightControl,
	keysymCapsLock:   event.KeyCapsLock,
	keysymAltL:       event.KeyLeftAlt,
	keysymAltR:       event.KeyRightAlt,
	keysymSuperL:     event.KeyLeftSuper,
	keysymSuperR:     event.KeyRightSuper,
	keysymDelete:     event.KeyDelete,
}

// keyFromKeysym maps the unshifted keysym of a key to an engine key.
func keyFromKeysym(sym xproto.Keysym) event.Key {
	if k, ok := namedKeys[sym]; ok {
		return k
	}
	switch {
	case sym >= keysymF1 && sym <= keysymF12:
		return event.KeyF1 + event.Key(sym-keysymF1)
	case sym >= 'a' && sym <= 'z':
		return event.Key(sym - 'a' + 'A')
	case sym >= ' ' && sym <= '`':
		if k := event.Key(sym); isEngineASCIIKey(k) {
			return k
		}
	}
	return event.KeyUnknown
}

// isEngineASCIIKey reports whether k is one of the printable keys the engine
// defines a code for.
func isEngineASCIIKey(k event.Key) bool {
	switch k {
	case event.KeySpace, event.KeyApostrophe, event.KeyComma, event.KeyMinus,
		event.KeyPeriod, event.KeySlash, event.KeySemicolon, event.KeyEqual,
		event.KeyLeftBracket, event.KeyBackslash, event.KeyRightBracket,
		event.KeyGraveAccent:
		return true
	}
	return (k >= event.Key0 && k <= event.Key9) || (k >= event.KeyA && k <= event.KeyZ)
}

// runeFromKeysym returns the character a keysym produces, or false for
// keysyms that do not produce text.
func runeFromKeysym(sym xproto.Keysym) (rune, bool) {
	switch {
	case sym >= 0x20 && sym <= 0x7e, sym >= 0xa0 && sym <= 0xff:
		return rune(sym), true
	case sym&0xff000000 == keysymUnicodeBase:
		r := rune(sym & 0x00ffffff)
		if r < 0x20 || (r >= 0x7f && r < 0xa0) {
			return 0, false
		}
		return r, true
	}
	return 0, false
}

// modsFromState converts a core protocol key/button mask.
func modsFromState(state uint16) platform.Modifier {
	var mods platform.Modifier
	if state&xproto.ModMaskShift != 0 {
		mods |= platform.ModShift
	}
	if state&xproto.ModMaskControl != 0 {
		mods |= platform.ModControl
	}
	if state&xproto.ModMask1 != 0 {
		mods |= platform.ModAlt
	}
	if state&xproto.ModMask4 != 0 {
		mods |= platform.ModSuper
	}
	if state&xproto.ModMaskLock != 0 {
		mods |= platform.ModCapsLock
	}
	if state&xproto.ModMask2 != 0 {
		mods |= platform.ModNumLock
	}
	return mods
}

// buttonInput is what a core pointer button number means to the engine.
type buttonInput struct {
	button  event.MouseButton
	scrollX float64
	scrollY float64
	scroll  bool
}

// translateButton maps core button numbers. Buttons 4 to 7 are wheel
// steps and only count on press.
func translateButton(detail xproto.Button) (buttonInput, bool) {
	switch detail {
	case 1:
		return buttonInput{button: event.MouseButtonLeft}, true
	case 2:
		return buttonInput{button: event.MouseButtonMiddle}, true
	case 3:
		return buttonInput{button: event.MouseButtonRight}, true
	case 4:
		return buttonInput{scroll: true, scrollY: 1}, true
	case 5:
		return buttonInput{scroll: true, scrollY: -1}, true
	case 6:
		return buttonInput{scroll: true, scrollX: 1}, true
	case 7:
		return buttonInput{scroll: true, scrollX: -1}, true
	case 8:
		return buttonInput{button: event.MouseButton4}, true
	case 9:
		return buttonInput{button: event.MouseButton5}, true
	}
	return buttonInput{}, false
}
