// Package window owns the native window and its graphics context and turns
// native window-system callbacks into engine events.
package window

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/lumen/internal/event"
	"github.com/1broseidon/lumen/internal/gfx"
	"github.com/1broseidon/lumen/internal/platform"
)

var (
	ErrInvalidConfig = errors.New("invalid window config")
	// ErrPlatformInit means no usable window could be created. Nothing else
	// in the engine can run without one.
	ErrPlatformInit    = errors.New("native window system initialization failed")
	ErrReentrantUpdate = errors.New("OnUpdate called from inside the event handler")
	ErrClosed          = errors.New("window closed")
)

// Config describes the window to create.
type Config struct {
	Title  string
	Width  int
	Height int
	VSync  bool
}

// DefaultConfig returns a 1280x720 window with vsync enabled.
func DefaultConfig() Config {
	return Config{
		Title:  "Lumen",
		Width:  1280,
		Height: 720,
		VSync:  true,
	}
}

// Validate checks that the configured size is positive.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	}
	return nil
}

// Handler receives every event synthesized by a Window. It runs on the
// goroutine calling OnUpdate and must not call OnUpdate itself.
type Handler func(e event.Event)

// Option configures a Window.
type Option func(*Window)

// WithLogger sets the logger used for lifecycle and event tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Window) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Window is a native window plus its graphics context.
type Window struct {
	native   platform.NativeWindow
	ctx      gfx.Context
	data     *windowData
	logger   *slog.Logger
	updating bool
	closed   bool
}

// New creates the native window described by cfg on backend, creates and
// initializes its graphics context, installs the callback bindings, and
// applies cfg.VSync. The backend must already be initialized.
func New(backend platform.Backend, cfg Config, opts ...Option) (*Window, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &Window{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(w)
	}
	w.data = &windowData{
		title:  cfg.Title,
		width:  cfg.Width,
		height: cfg.Height,
		logger: w.logger,
	}

	native, err := backend.CreateWindow(platform.WindowSpec{
		Title:  cfg.Title,
		Width:  cfg.Width,
		Height: cfg.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: create window: %w", ErrPlatformInit, backend.Name(), err)
	}

	ctx, err := native.CreateContext()
	if err != nil {
		native.Destroy()
		return nil, fmt.Errorf("%w: %s: create context: %w", ErrPlatformInit, backend.Name(), err)
	}
	if err := ctx.Init(); err != nil {
		native.Destroy()
		return nil, fmt.Errorf("%w: %s: init context: %w", ErrPlatformInit, backend.Name(), err)
	}

	w.native = native
	w.ctx = ctx
	native.SetCallbacks(w.data.callbacks())
	w.SetVSync(cfg.VSync)

	w.logger.Info("window created",
		"backend", backend.Name(),
		"title", cfg.Title,
		"width", cfg.Width,
		"height", cfg.Height,
		"vsync", cfg.VSync,
	)
	return w, nil
}

// OnUpdate delivers every pending native event to the registered handler,
// in delivery order, then presents the frame. Presentation may block for the
// swap interval.
func (w *Window) OnUpdate() error {
	if w.closed {
		return ErrClosed
	}
	if w.updating {
		return ErrReentrantUpdate
	}

	w.updating = true
	func() {
		defer func() { w.updating = false }()
		w.native.PollEvents()
	}()

	// The handler may have closed the window.
	if w.closed {
		return nil
	}
	if err := w.ctx.SwapBuffers(); err != nil {
		return fmt.Errorf("swap buffers: %w", err)
	}
	return nil
}

// SetVSync sets the swap interval to one frame when enabled and to zero
// otherwise, and records the flag.
func (w *Window) SetVSync(enabled bool) {
	interval := 0
	if enabled {
		interval = 1
	}
	w.ctx.SetSwapInterval(interval)
	w.data.vsync = enabled
}

// IsVSync returns the flag recorded by the last SetVSync.
func (w *Window) IsVSync() bool { return w.data.vsync }

// Width returns the width recorded by the last resize callback. The window
// system is not queried.
func (w *Window) Width() int { return w.data.width }

// Height returns the height recorded by the last resize callback.
func (w *Window) Height() int { return w.data.height }

// Title returns the window title.
func (w *Window) Title() string { return w.data.title }

// RegisterEventHandler installs h as the single receiver of events. The
// previous handler, if any, receives nothing from this point on. A nil h
// detaches the current handler.
func (w *Window) RegisterEventHandler(h Handler) {
	w.data.handler = h
}

// Context returns the graphics context bound to this window.
func (w *Window) Context() gfx.Context { return w.ctx }

// Closed reports whether Close was called.
func (w *Window) Closed() bool { return w.closed }

// Close destroys the native window and, with it, the graphics context.
// The handler is not called again.
func (w *Window) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.native.SetCallbacks(nil)
	w.native.Destroy()
	w.logger.Info("window closed", "title", w.data.title)
}
