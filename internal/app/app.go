package app

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/1broseidon/lumen/internal/config"
	"github.com/1broseidon/lumen/internal/event"
	"github.com/1broseidon/lumen/internal/framebuffer"
	"github.com/1broseidon/lumen/internal/gfx"
	"github.com/1broseidon/lumen/internal/ipc"
	"github.com/1broseidon/lumen/internal/tracelog"
	"github.com/1broseidon/lumen/internal/window"
)

// ErrNotRunning is returned by Do when the frame loop has exited.
var ErrNotRunning = errors.New("frame loop not running")

// renderer is implemented by devices that can clear the bound target and
// copy a color texture onto the window surface.
type renderer interface {
	Clear(c color.RGBA)
	BlitToDefault(id gfx.TextureID) error
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the lifecycle logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTrace records every delivered event and state change in trace.
func WithTrace(trace *tracelog.Logger) Option {
	return func(a *App) { a.trace = trace }
}

// WithEventObserver calls fn for every event before the app handles it.
func WithEventObserver(fn func(frame uint64, e event.Event)) Option {
	return func(a *App) { a.observer = fn }
}

// App is one window, its presentation surface, and an off-screen
// framebuffer rendered into every frame.
type App struct {
	boot     *Bootstrap
	win      *window.Window
	present  framebuffer.Target
	fb       *framebuffer.Framebuffer
	follows  bool
	clear    color.RGBA
	trace    *tracelog.Logger
	logger   *slog.Logger
	observer func(frame uint64, e event.Event)

	requests chan func()
	stopped  chan struct{}
	frames   uint64
	started  time.Time
	lostOnce bool
}

var _ ipc.Engine = (*App)(nil)

// New initializes the window system through boot, then creates the window
// and render targets described by cfg.
func New(cfg *config.Config, boot *Bootstrap, opts ...Option) (*App, error) {
	a := &App{
		boot:     boot,
		follows:  cfg.Framebuffer.FollowsWindow(),
		clear:    cfg.ClearRGBA(),
		logger:   slog.New(slog.DiscardHandler),
		requests: make(chan func(), 16),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := boot.Init(); err != nil {
		return nil, err
	}

	win, err := window.New(boot.Backend(), window.Config{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		VSync:  cfg.Window.VSync,
	}, window.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	a.win = win
	dev := win.Context().Device()

	present, err := framebuffer.New(dev, framebuffer.Spec{
		Width:           uint32(win.Width()),
		Height:          uint32(win.Height()),
		SwapChainTarget: true,
	}, framebuffer.WithLogger(a.logger))
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("create swap chain: %w", err)
	}
	a.present = present

	fbW, fbH := cfg.Framebuffer.Width, cfg.Framebuffer.Height
	if a.follows {
		fbW, fbH = win.Width(), win.Height()
	}
	fb, err := framebuffer.NewFramebuffer(dev, framebuffer.Spec{
		Width:   uint32(fbW),
		Height:  uint32(fbH),
		Samples: uint32(cfg.Framebuffer.Samples),
	}, framebuffer.WithLogger(a.logger))
	if err != nil {
		present.Destroy()
		win.Close()
		return nil, fmt.Errorf("create framebuffer: %w", err)
	}
	a.fb = fb

	win.RegisterEventHandler(a.handleEvent)
	return a, nil
}

// Window returns the app window.
func (a *App) Window() *window.Window { return a.win }

// Framebuffer returns the off-screen framebuffer.
func (a *App) Framebuffer() *framebuffer.Framebuffer { return a.fb }

// Frames returns the number of completed frames.
func (a *App) Frames() uint64 { return a.frames }

// Run drives the frame loop until the window closes, ctx is cancelled, or
// maxFrames frames have completed (0 means no limit).
func (a *App) Run(ctx context.Context, maxFrames uint64) error {
	defer close(a.stopped)
	a.started = time.Now()
	a.trace.Record(tracelog.LevelInfo, "RUN", map[string]any{
		"width":  a.win.Width(),
		"height": a.win.Height(),
		"vsync":  a.win.IsVSync(),
	})

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("frame loop cancelled", "frames", a.frames)
			return nil
		default:
		}

		a.drainRequests()
		if a.win.Closed() {
			return nil
		}

		if err := a.render(); err != nil {
			return err
		}
		if err := a.win.OnUpdate(); err != nil {
			if errors.Is(err, window.ErrClosed) {
				return nil
			}
			return err
		}
		a.frames++

		if a.win.Closed() {
			a.logger.Info("window closed", "frames", a.frames)
			return nil
		}
		if maxFrames > 0 && a.frames >= maxFrames {
			return nil
		}
	}
}

func (a *App) drainRequests() {
	for {
		select {
		case fn := <-a.requests:
			fn()
		default:
			return
		}
	}
}

// render clears the framebuffer and copies its color attachment onto the
// window surface. A lost framebuffer is skipped and only the surface is
// cleared.
func (a *App) render() error {
	r, ok := a.win.Context().Device().(renderer)
	if !ok {
		return nil
	}

	if err := a.fb.Bind(); err != nil {
		if !errors.Is(err, framebuffer.ErrLost) {
			return err
		}
		if !a.lostOnce {
			a.lostOnce = true
			a.logger.Warn("framebuffer lost, presenting clear color", "error", err)
		}
		if err := a.present.Bind(); err != nil {
			return err
		}
		r.Clear(a.clear)
		return nil
	}
	r.Clear(a.clear)
	a.fb.Unbind()

	if err := a.present.Bind(); err != nil {
		return err
	}
	return r.BlitToDefault(a.fb.ColorAttachmentID())
}

func (a *App) handleEvent(e event.Event) {
	a.trace.Event(a.frames, e)
	if a.observer != nil {
		a.observer(a.frames, e)
	}

	d := event.NewDispatcher(e)
	event.Dispatch(d, func(ev event.WindowResize) bool {
		a.onResize(ev.Width, ev.Height)
		return false
	})
	event.Dispatch(d, func(event.WindowClose) bool {
		a.win.Close()
		return true
	})
}

func (a *App) onResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if err := a.present.Resize(uint32(width), uint32(height)); err != nil {
		a.logger.Warn("swap chain resize failed", "error", err)
	}
	if a.follows {
		a.resizeFramebuffer(uint32(width), uint32(height))
	}
}

func (a *App) resizeFramebuffer(width, height uint32) error {
	if err := a.fb.Resize(width, height); err != nil {
		a.logger.Error("framebuffer resize failed", "width", width, "height", height, "error", err)
		a.trace.Record(tracelog.LevelError, "FRAMEBUFFER_RESIZE_FAILED", map[string]any{
			"width":  width,
			"height": height,
			"error":  err.Error(),
		})
		return err
	}
	a.trace.Record(tracelog.LevelInfo, "FRAMEBUFFER_RESIZE", map[string]any{
		"width":  width,
		"height": height,
		"color":  uint32(a.fb.ColorAttachmentID()),
		"depth":  uint32(a.fb.DepthAttachmentID()),
	})
	return nil
}

// Request states shared between Do and the frame loop.
const (
	requestPending int32 = iota
	requestRunning
	requestAbandoned
)

// Do runs fn on the frame loop goroutine between frames and waits for it.
// When Do returns an error, fn has not run and never will. Once the loop has
// started fn, Do waits for it to finish regardless of ctx.
func (a *App) Do(ctx context.Context, fn func()) error {
	var state atomic.Int32
	done := make(chan struct{})
	req := func() {
		if ctx.Err() != nil {
			state.CompareAndSwap(requestPending, requestAbandoned)
			return
		}
		if !state.CompareAndSwap(requestPending, requestRunning) {
			return
		}
		fn()
		close(done)
	}

	select {
	case a.requests <- req:
	case <-a.stopped:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}

	// abandon reports whether the request was withdrawn before the loop
	// started it. Otherwise it waits for fn to complete.
	abandon := func() bool {
		if state.CompareAndSwap(requestPending, requestAbandoned) || state.Load() == requestAbandoned {
			return true
		}
		<-done
		return false
	}

	select {
	case <-done:
		return nil
	case <-a.stopped:
		if abandon() {
			return ErrNotRunning
		}
		return nil
	case <-ctx.Done():
		if abandon() {
			return ctx.Err()
		}
		return nil
	}
}

// Status implements ipc.Engine.
func (a *App) Status(ctx context.Context) (ipc.StatusData, error) {
	var st ipc.StatusData
	err := a.Do(ctx, func() { st = a.status() })
	return st, err
}

func (a *App) status() ipc.StatusData {
	spec := a.fb.Spec()
	return ipc.StatusData{
		Backend:      a.boot.Backend().Name(),
		Title:        a.win.Title(),
		WindowWidth:  a.win.Width(),
		WindowHeight: a.win.Height(),
		VSync:        a.win.IsVSync(),
		Framebuffer: ipc.FramebufferStatus{
			Width:           spec.Width,
			Height:          spec.Height,
			Samples:         spec.Samples,
			FollowsWindow:   a.follows,
			ColorAttachment: uint32(a.fb.ColorAttachmentID()),
			DepthAttachment: uint32(a.fb.DepthAttachmentID()),
			Lost:            a.fb.Lost(),
		},
		Frames:        a.frames,
		UptimeSeconds: int64(time.Since(a.started).Seconds()),
	}
}

// SetVSync implements ipc.Engine.
func (a *App) SetVSync(ctx context.Context, enabled bool) error {
	return a.Do(ctx, func() {
		a.win.SetVSync(enabled)
		a.trace.Record(tracelog.LevelInfo, "VSYNC", map[string]any{"enabled": enabled})
	})
}

// ResizeFramebuffer implements ipc.Engine. 0x0 makes the framebuffer follow
// the window size again; any other size pins it.
func (a *App) ResizeFramebuffer(ctx context.Context, width, height uint32) error {
	if (width == 0) != (height == 0) {
		return fmt.Errorf("%w: %dx%d", framebuffer.ErrInvalidSize, width, height)
	}
	var err error
	doErr := a.Do(ctx, func() {
		if width == 0 {
			a.follows = true
			width, height = uint32(a.win.Width()), uint32(a.win.Height())
		} else {
			a.follows = false
		}
		err = a.resizeFramebuffer(width, height)
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// CloseWindow implements ipc.Engine.
func (a *App) CloseWindow(ctx context.Context) error {
	return a.Do(ctx, func() {
		a.trace.Record(tracelog.LevelInfo, "CLOSE_REQUESTED", nil)
		a.win.Close()
	})
}

// Close releases the render targets and the window, then terminates the
// window system. Call it after Run returns.
func (a *App) Close() {
	a.fb.Destroy()
	a.present.Destroy()
	a.win.Close()
	a.boot.Terminate()
}
