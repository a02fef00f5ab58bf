package x11

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/lumen/internal/gfx"
	"github.com/1broseidon/lumen/internal/platform"
)

const windowEventMask = xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskExposure |
	xproto.EventMaskStructureNotify

// Window is a top-level X11 window.
type Window struct {
	backend   *Backend
	xwin      *xwindow.Window
	id        xproto.Window
	title     string
	refresh   float64
	tr        translator
	queue     []xgb.Event
	callbacks *platform.Callbacks
	ctx       *SoftwareContext
	destroyed bool
	logger    *slog.Logger
}

var _ platform.NativeWindow = (*Window)(nil)

// maxWindowDimension is the largest width or height the X protocol can carry.
const maxWindowDimension = 65535

func (b *Backend) createWindow(spec platform.WindowSpec) (*Window, error) {
	if spec.Width > maxWindowDimension || spec.Height > maxWindowDimension {
		return nil, fmt.Errorf("create window: %dx%d exceeds the X11 limit of %d", spec.Width, spec.Height, maxWindowDimension)
	}

	c := b.conn
	screen := c.XUtil.Screen()

	x, y, refresh := 0, 0, 0.0
	if mon, err := c.GetActiveMonitor(); err == nil {
		x, y = centerOn(*mon, spec.Width, spec.Height)
		refresh = mon.RefreshRate
	} else {
		b.logger.Debug("no active monitor, placing window at origin", "error", err)
	}

	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, err
	}
	// Value list order follows the bit positions of the mask.
	err = win.CreateChecked(c.Root, x, y, spec.Width, spec.Height,
		xproto.CwBackPixel|xproto.CwEventMask,
		screen.BlackPixel, windowEventMask)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	wid := win.Id

	protocols, err := c.Atom("WM_PROTOCOLS")
	if err != nil {
		win.Destroy()
		return nil, err
	}
	deleteWindow, err := c.Atom("WM_DELETE_WINDOW")
	if err != nil {
		win.Destroy()
		return nil, err
	}
	if err := icccm.WmProtocolsSet(c.XUtil, wid, []string{"WM_DELETE_WINDOW"}); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("set WM_PROTOCOLS: %w", err)
	}

	// Titles are best effort: a window without one is still usable.
	if err := icccm.WmNameSet(c.XUtil, wid, spec.Title); err != nil {
		b.logger.Debug("failed to set WM_NAME", "error", err)
	}
	if err := ewmh.WmNameSet(c.XUtil, wid, spec.Title); err != nil {
		b.logger.Debug("failed to set _NET_WM_NAME", "error", err)
	}

	win.Map()

	return &Window{
		backend: b,
		xwin:    win,
		id:      wid,
		title:   spec.Title,
		refresh: refresh,
		tr: translator{
			width:         spec.Width,
			height:        spec.Height,
			protocolsAtom: protocols,
			deleteAtom:    deleteWindow,
			keysym: func(code xproto.Keycode, column byte) xproto.Keysym {
				return keybind.KeysymGet(c.XUtil, code, column)
			},
		},
		logger: b.logger,
	}, nil
}

// ID returns the X11 window id.
func (w *Window) ID() xproto.Window { return w.id }

func (w *Window) SetCallbacks(cb *platform.Callbacks) { w.callbacks = cb }

// PollEvents reads everything the server has sent so far and delivers this
// window's share of it.
func (w *Window) PollEvents() {
	if w.destroyed {
		return
	}
	w.backend.pump()
	events := w.queue
	w.queue = nil
	w.tr.dispatch(events, func() *platform.Callbacks { return w.callbacks })
}

// Size queries the current geometry from the server.
func (w *Window) Size() (int, int) {
	geom, err := w.xwin.Geometry()
	if err != nil {
		return w.tr.width, w.tr.height
	}
	return geom.Width(), geom.Height()
}

func (w *Window) CreateContext() (gfx.Context, error) {
	w.ctx = newSoftwareContext(w)
	return w.ctx, nil
}

func (w *Window) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	w.callbacks = nil
	w.queue = nil
	if w.ctx != nil {
		w.ctx.release()
	}
	w.xwin.Destroy()
	w.backend.forget(w)
	w.logger.Debug("x11 window destroyed", "window", w.id)
}
