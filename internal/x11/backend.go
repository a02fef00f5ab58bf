package x11

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/lumen/internal/platform"
)

var errNotConnected = errors.New("x11 backend not initialized")

// Backend implements platform.Backend on an X11 display.
type Backend struct {
	conn    *Connection
	display DisplayEnv
	windows map[xproto.Window]*Window
	logger  *slog.Logger
}

var _ platform.Backend = (*Backend)(nil)

// New creates an X11 backend. Init connects to the display; empty fields of
// display are resolved by ResolveDisplay.
func New(display DisplayEnv, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{
		display: display,
		windows: make(map[xproto.Window]*Window),
		logger:  logger,
	}
}

func (b *Backend) Name() string { return "x11" }

func (b *Backend) Init() error {
	env, err := ResolveDisplay(b.display)
	if err != nil {
		return err
	}
	// xgb reads the auth cookie location from the environment.
	if env.XAuthority != "" && os.Getenv("XAUTHORITY") == "" {
		os.Setenv("XAUTHORITY", env.XAuthority)
	}
	conn, err := NewConnection(env.Display)
	if err != nil {
		return fmt.Errorf("connect to X server %s: %w", env.Display, err)
	}
	b.conn = conn
	b.logger.Info("connected to X server", "display", env.Display, "root", conn.Root)
	return nil
}

func (b *Backend) Terminate() {
	if b.conn == nil {
		return
	}
	for _, w := range b.windows {
		w.Destroy()
	}
	b.conn.Close()
	b.conn = nil
}

func (b *Backend) CreateWindow(spec platform.WindowSpec) (platform.NativeWindow, error) {
	if b.conn == nil {
		return nil, errNotConnected
	}
	w, err := b.createWindow(spec)
	if err != nil {
		return nil, err
	}
	b.windows[w.id] = w
	return w, nil
}

// pump drains the connection without blocking and queues each event on the
// window it is addressed to.
func (b *Backend) pump() {
	for {
		ev, xerr := b.conn.XUtil.Conn().PollForEvent()
		if ev == nil && xerr == nil {
			return
		}
		if xerr != nil {
			b.logger.Warn("x11 error", "error", xerr)
			continue
		}
		id, ok := eventWindow(ev)
		if !ok {
			continue
		}
		if w, ok := b.windows[id]; ok {
			w.queue = append(w.queue, ev)
		}
	}
}

func (b *Backend) forget(w *Window) {
	delete(b.windows, w.id)
}
