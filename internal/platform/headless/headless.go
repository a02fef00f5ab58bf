// Package headless is an in-memory window system. Native signals are
// scripted by the caller and delivered on the next PollEvents, which lets the
// engine run without a display and lets tests drive the event path exactly.
package headless

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/lumen/internal/event"
	"github.com/1broseidon/lumen/internal/gfx"
	"github.com/1broseidon/lumen/internal/platform"
)

// ErrNotInitialized is returned when a window is requested before Init.
var ErrNotInitialized = errors.New("headless backend not initialized")

// Options configures a Backend.
type Options struct {
	// InitErr, when set, is returned by Init.
	InitErr error
	// CreateErr, when set, is returned by CreateWindow.
	CreateErr error
	// ContextErr, when set, is returned by Context.Init.
	ContextErr error
	// MaxTextureDimension is forwarded to each window's SoftDevice.
	MaxTextureDimension int
	Logger              *slog.Logger
}

// Backend implements platform.Backend without a display.
type Backend struct {
	opts        Options
	initialized bool
	inits       int
	terminates  int
	windows     []*Window
}

var _ platform.Backend = (*Backend)(nil)

// New creates a headless backend.
func New(opts Options) *Backend {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{opts: opts}
}

func (b *Backend) Name() string { return "headless" }

func (b *Backend) Init() error {
	b.inits++
	if b.opts.InitErr != nil {
		return b.opts.InitErr
	}
	b.initialized = true
	return nil
}

func (b *Backend) Terminate() {
	b.terminates++
	b.initialized = false
}

// InitCount returns how many times Init was called.
func (b *Backend) InitCount() int { return b.inits }

// TerminateCount returns how many times Terminate was called.
func (b *Backend) TerminateCount() int { return b.terminates }

// Windows returns every window created by this backend.
func (b *Backend) Windows() []*Window { return b.windows }

// LastWindow returns the most recently created window, or nil.
func (b *Backend) LastWindow() *Window {
	if len(b.windows) == 0 {
		return nil
	}
	return b.windows[len(b.windows)-1]
}

func (b *Backend) CreateWindow(spec platform.WindowSpec) (platform.NativeWindow, error) {
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	if b.opts.CreateErr != nil {
		return nil, b.opts.CreateErr
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", spec.Width, spec.Height)
	}
	w := &Window{
		backend: b,
		title:   spec.Title,
		width:   spec.Width,
		height:  spec.Height,
	}
	b.windows = append(b.windows, w)
	b.opts.Logger.Debug("headless window created", "title", spec.Title, "width", spec.Width, "height", spec.Height)
	return w, nil
}

// Window is a scripted native window. Signal methods queue one native signal
// each; PollEvents delivers everything queued before it started.
type Window struct {
	backend   *Backend
	title     string
	width     int
	height    int
	callbacks *platform.Callbacks
	queue     []func(cb *platform.Callbacks)
	polls     int
	destroyed bool
	ctx       *Context
}

var _ platform.NativeWindow = (*Window)(nil)

func (w *Window) SetCallbacks(cb *platform.Callbacks) { w.callbacks = cb }

// PollEvents delivers the queued signals. Signals queued by a callback while
// polling are delivered on the next call.
func (w *Window) PollEvents() {
	w.polls++
	pending := w.queue
	w.queue = nil
	for _, signal := range pending {
		if w.callbacks == nil {
			continue
		}
		signal(w.callbacks)
	}
}

func (w *Window) Size() (int, int) { return w.width, w.height }

func (w *Window) CreateContext() (gfx.Context, error) {
	w.ctx = &Context{
		window: w,
		err:    w.backend.opts.ContextErr,
		maxDim: w.backend.opts.MaxTextureDimension,
		logger: w.backend.opts.Logger,
	}
	return w.ctx, nil
}

func (w *Window) Destroy() {
	w.destroyed = true
	w.callbacks = nil
	w.queue = nil
}

// Title returns the title the window was created with.
func (w *Window) Title() string { return w.title }

// Destroyed reports whether Destroy was called.
func (w *Window) Destroyed() bool { return w.destroyed }

// Pending returns the number of queued signals.
func (w *Window) Pending() int { return len(w.queue) }

// Polls returns how many times PollEvents ran.
func (w *Window) Polls() int { return w.polls }

// Context returns the graphics context created for this window, if any.
func (w *Window) Context() *Context { return w.ctx }

func (w *Window) push(signal func(cb *platform.Callbacks)) {
	if w.destroyed {
		return
	}
	w.queue = append(w.queue, signal)
}

// Key queues a key signal without modifiers.
func (w *Window) Key(key event.Key, action platform.Action) {
	w.KeyWithMods(key, 0, action, 0)
}

// KeyWithMods queues a key signal.
func (w *Window) KeyWithMods(key event.Key, scancode int, action platform.Action, mods platform.Modifier) {
	w.push(func(cb *platform.Callbacks) {
		if cb.Key != nil {
			cb.Key(key, scancode, action, mods)
		}
	})
}

func (w *Window) MouseButton(button event.MouseButton, action platform.Action) {
	w.push(func(cb *platform.Callbacks) {
		if cb.MouseButton != nil {
			cb.MouseButton(button, action, 0)
		}
	})
}

func (w *Window) Scroll(xoffset, yoffset float64) {
	w.push(func(cb *platform.Callbacks) {
		if cb.Scroll != nil {
			cb.Scroll(xoffset, yoffset)
		}
	})
}

func (w *Window) CursorPos(x, y float64) {
	w.push(func(cb *platform.Callbacks) {
		if cb.CursorPos != nil {
			cb.CursorPos(x, y)
		}
	})
}

// Resize changes the native size immediately, as an external resize would,
// and queues the size signal.
func (w *Window) Resize(width, height int) {
	if w.destroyed {
		return
	}
	w.width, w.height = width, height
	w.push(func(cb *platform.Callbacks) {
		if cb.Size != nil {
			cb.Size(width, height)
		}
	})
}

// RequestClose queues a close request, as a window manager close button would.
func (w *Window) RequestClose() {
	w.push(func(cb *platform.Callbacks) {
		if cb.Close != nil {
			cb.Close()
		}
	})
}

func (w *Window) Char(codepoint rune) {
	w.push(func(cb *platform.Callbacks) {
		if cb.Char != nil {
			cb.Char(codepoint)
		}
	})
}

// Context is the graphics context of a headless window. It draws into a
// SoftDevice and counts presentations.
type Context struct {
	window   *Window
	err      error
	maxDim   int
	logger   *slog.Logger
	device   *gfx.SoftDevice
	interval int
	swaps    int
}

var _ gfx.Context = (*Context)(nil)

func (c *Context) Init() error {
	if c.err != nil {
		return c.err
	}
	c.device = gfx.NewSoftDevice(c.window.width, c.window.height, c.logger)
	c.device.MaxTextureDimension = c.maxDim
	return nil
}

func (c *Context) SwapBuffers() error {
	c.swaps++
	return nil
}

func (c *Context) SetSwapInterval(interval int) { c.interval = interval }

func (c *Context) Device() gfx.Device {
	if c.device == nil {
		return nil
	}
	return c.device
}

// SoftDevice returns the concrete device for inspection.
func (c *Context) SoftDevice() *gfx.SoftDevice { return c.device }

// SwapInterval returns the last interval set.
func (c *Context) SwapInterval() int { return c.interval }

// Swaps returns how many frames were presented.
func (c *Context) Swaps() int { return c.swaps }
