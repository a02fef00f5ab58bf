package app

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/lumen/internal/config"
	"github.com/1broseidon/lumen/internal/event"
	"github.com/1broseidon/lumen/internal/framebuffer"
	"github.com/1broseidon/lumen/internal/platform"
	"github.com/1broseidon/lumen/internal/platform/headless"
	"github.com/1broseidon/lumen/internal/tracelog"
	"github.com/1broseidon/lumen/internal/window"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendHeadless
	cfg.Window.Width = 800
	cfg.Window.Height = 600
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...Option) (*App, *headless.Backend) {
	t.Helper()
	backend := headless.New(headless.Options{MaxTextureDimension: 4096})
	a, err := New(cfg, NewBootstrap(backend, nil), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)
	return a, backend
}

func TestBootstrap_InitOnce(t *testing.T) {
	backend := headless.New(headless.Options{})
	boot := NewBootstrap(backend, nil)

	for i := 0; i < 3; i++ {
		if err := boot.Init(); err != nil {
			t.Fatalf("Init #%d: %v", i, err)
		}
	}
	if backend.InitCount() != 1 {
		t.Fatalf("backend Init called %d times, want 1", backend.InitCount())
	}

	boot.Terminate()
	boot.Terminate()
	if backend.TerminateCount() != 1 {
		t.Fatalf("backend Terminate called %d times, want 1", backend.TerminateCount())
	}
}

func TestBootstrap_InitFailureIsCached(t *testing.T) {
	backend := headless.New(headless.Options{InitErr: errors.New("no display")})
	boot := NewBootstrap(backend, nil)

	err1 := boot.Init()
	err2 := boot.Init()
	if !errors.Is(err1, window.ErrPlatformInit) || err1 != err2 {
		t.Fatalf("Init errors = %v, %v; want the same ErrPlatformInit", err1, err2)
	}
	if backend.InitCount() != 1 {
		t.Fatalf("backend Init called %d times, want 1", backend.InitCount())
	}

	boot.Terminate()
	if backend.TerminateCount() != 0 {
		t.Fatal("Terminate must not reach a backend that never initialized")
	}
}

func TestNew_PlatformInitFailure(t *testing.T) {
	backend := headless.New(headless.Options{InitErr: errors.New("no display")})
	_, err := New(testConfig(), NewBootstrap(backend, nil))
	if !errors.Is(err, window.ErrPlatformInit) {
		t.Fatalf("New err = %v, want ErrPlatformInit", err)
	}
	if len(backend.Windows()) != 0 {
		t.Fatal("no window should be created")
	}
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{backend: config.BackendHeadless, want: "headless"},
		{backend: config.BackendX11, want: "x11"},
		{backend: "", want: "x11"},
		{backend: "wayland", wantErr: true},
	}
	for _, tt := range tests {
		cfg := config.DefaultConfig()
		cfg.Backend = tt.backend
		b, err := NewBackend(cfg, nil)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewBackend(%q) expected error", tt.backend)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NewBackend(%q): %v", tt.backend, err)
		}
		if b.Name() != tt.want {
			t.Errorf("NewBackend(%q).Name() = %q, want %q", tt.backend, b.Name(), tt.want)
		}
	}
}

func TestNew_FramebufferFollowsWindow(t *testing.T) {
	a, _ := newTestApp(t, testConfig())

	spec := a.Framebuffer().Spec()
	if spec.Width != 800 || spec.Height != 600 {
		t.Fatalf("framebuffer = %dx%d, want 800x600", spec.Width, spec.Height)
	}
	if a.Framebuffer().ColorAttachmentID() == 0 || a.Framebuffer().DepthAttachmentID() == 0 {
		t.Fatal("framebuffer attachments not allocated")
	}
}

func TestRun_RendersClearColor(t *testing.T) {
	a, backend := newTestApp(t, testConfig())

	if err := a.Run(context.Background(), 3); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.Frames() != 3 {
		t.Fatalf("frames = %d, want 3", a.Frames())
	}

	native := backend.LastWindow()
	if native.Context().Swaps() != 3 {
		t.Fatalf("swaps = %d, want 3", native.Context().Swaps())
	}
	want := color.RGBA{R: 0x1f, G: 0x29, B: 0x33, A: 0xff}
	if got := native.Context().SoftDevice().Backbuffer().RGBAAt(10, 10); got != want {
		t.Fatalf("backbuffer pixel = %v, want %v", got, want)
	}
}

func TestRun_WindowResizeFollows(t *testing.T) {
	a, backend := newTestApp(t, testConfig())
	oldColor := a.Framebuffer().ColorAttachmentID()

	backend.LastWindow().Resize(1024, 768)
	if err := a.Run(context.Background(), 1); err != nil {
		t.Fatalf("Run: %v", err)
	}

	spec := a.Framebuffer().Spec()
	if spec.Width != 1024 || spec.Height != 768 {
		t.Fatalf("framebuffer = %dx%d, want 1024x768", spec.Width, spec.Height)
	}
	if a.Framebuffer().ColorAttachmentID() == oldColor {
		t.Fatal("color attachment should be reallocated")
	}
	if a.Window().Width() != 1024 || a.Window().Height() != 768 {
		t.Fatalf("window = %dx%d", a.Window().Width(), a.Window().Height())
	}
	if b := backend.LastWindow().Context().SoftDevice().Backbuffer().Bounds(); b.Dx() != 1024 || b.Dy() != 768 {
		t.Fatalf("backbuffer = %v, want 1024x768", b)
	}
}

func TestRun_PinnedFramebufferIgnoresWindowResize(t *testing.T) {
	cfg := testConfig()
	cfg.Framebuffer.Width = 512
	cfg.Framebuffer.Height = 512
	a, backend := newTestApp(t, cfg)
	color0 := a.Framebuffer().ColorAttachmentID()

	backend.LastWindow().Resize(1024, 768)
	if err := a.Run(context.Background(), 1); err != nil {
		t.Fatalf("Run: %v", err)
	}

	spec := a.Framebuffer().Spec()
	if spec.Width != 512 || spec.Height != 512 {
		t.Fatalf("framebuffer = %dx%d, want 512x512", spec.Width, spec.Height)
	}
	if a.Framebuffer().ColorAttachmentID() != color0 {
		t.Fatal("pinned framebuffer must not be reallocated")
	}
}

func TestRun_CloseRequestEndsLoop(t *testing.T) {
	a, backend := newTestApp(t, testConfig())
	native := backend.LastWindow()
	native.RequestClose()

	if err := a.Run(context.Background(), 100); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !a.Window().Closed() || !native.Destroyed() {
		t.Fatal("window should be closed and destroyed")
	}
	if a.Frames() != 1 {
		t.Fatalf("frames = %d, want 1", a.Frames())
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.Run(ctx, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.Frames() != 0 {
		t.Fatalf("frames = %d, want 0", a.Frames())
	}
}

func TestRun_ObserverAndTrace(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "events.log")
	trace, err := tracelog.New(tracelog.Config{Enabled: true, Level: tracelog.LevelInfo, FilePath: tracePath})
	if err != nil {
		t.Fatalf("tracelog.New: %v", err)
	}
	defer trace.Close()

	var seen []event.Event
	a, backend := newTestApp(t, testConfig(),
		WithTrace(trace),
		WithEventObserver(func(_ uint64, e event.Event) { seen = append(seen, e) }),
	)
	backend.LastWindow().Key(event.KeyA, platform.Press)
	backend.LastWindow().Resize(640, 480)

	if err := a.Run(context.Background(), 1); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("observer saw %d events, want 2: %v", len(seen), seen)
	}

	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	for _, want := range []string{"RUN", "KEYPRESSED", "WINDOWRESIZE", "FRAMEBUFFER_RESIZE"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("trace missing %s:\n%s", want, data)
		}
	}
}

func startLoop(t *testing.T, a *App) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, 0) }()
	return cancel, done
}

func waitLoop(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("frame loop did not exit")
	}
}

func TestEngine_RequestsRunOnLoop(t *testing.T) {
	cfg := testConfig()
	cfg.Window.VSync = false
	a, _ := newTestApp(t, cfg)
	cancel, done := startLoop(t, a)
	defer cancel()

	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()

	st, err := a.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Backend != "headless" || st.WindowWidth != 800 || st.VSync {
		t.Fatalf("status = %+v", st)
	}
	if !st.Framebuffer.FollowsWindow || st.Framebuffer.Width != 800 {
		t.Fatalf("framebuffer status = %+v", st.Framebuffer)
	}

	if err := a.SetVSync(ctx, true); err != nil {
		t.Fatalf("SetVSync: %v", err)
	}
	if err := a.ResizeFramebuffer(ctx, 256, 128); err != nil {
		t.Fatalf("ResizeFramebuffer: %v", err)
	}
	st, err = a.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.VSync {
		t.Fatal("vsync should be enabled")
	}
	if st.Framebuffer.FollowsWindow || st.Framebuffer.Width != 256 || st.Framebuffer.Height != 128 {
		t.Fatalf("framebuffer status = %+v", st.Framebuffer)
	}

	if err := a.ResizeFramebuffer(ctx, 0, 0); err != nil {
		t.Fatalf("ResizeFramebuffer(0,0): %v", err)
	}
	st, _ = a.Status(ctx)
	if !st.Framebuffer.FollowsWindow || st.Framebuffer.Width != 800 || st.Framebuffer.Height != 600 {
		t.Fatalf("framebuffer status after follow = %+v", st.Framebuffer)
	}

	if err := a.CloseWindow(ctx); err != nil {
		t.Fatalf("CloseWindow: %v", err)
	}
	waitLoop(t, done)

	if err := a.Do(ctx, func() {}); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Do after exit err = %v, want ErrNotRunning", err)
	}
}

func TestEngine_ResizeRejectsHalfZero(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	err := a.ResizeFramebuffer(context.Background(), 0, 10)
	if !errors.Is(err, framebuffer.ErrInvalidSize) {
		t.Fatalf("err = %v, want ErrInvalidSize", err)
	}
}

func TestEngine_LostFramebufferKeepsPresenting(t *testing.T) {
	cfg := testConfig()
	cfg.Window.VSync = false
	a, backend := newTestApp(t, cfg)
	cancel, done := startLoop(t, a)
	defer cancel()

	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()

	err := a.ResizeFramebuffer(ctx, 8192, 8192)
	if !errors.Is(err, framebuffer.ErrLost) {
		t.Fatalf("ResizeFramebuffer err = %v, want ErrLost", err)
	}
	st, err := a.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Framebuffer.Lost || st.Framebuffer.ColorAttachment != 0 {
		t.Fatalf("framebuffer status = %+v, want lost without attachments", st.Framebuffer)
	}
	before := st.Frames

	// The loop keeps presenting frames.
	deadline := time.Now().Add(2 * time.Second)
	for st.Frames == before && time.Now().Before(deadline) {
		st, _ = a.Status(ctx)
	}
	if st.Frames == before {
		t.Fatal("frame loop stalled after framebuffer loss")
	}

	if err := a.CloseWindow(ctx); err != nil {
		t.Fatalf("CloseWindow: %v", err)
	}
	waitLoop(t, done)

	want := color.RGBA{R: 0x1f, G: 0x29, B: 0x33, A: 0xff}
	if got := backend.LastWindow().Context().SoftDevice().Backbuffer().RGBAAt(0, 0); got != want {
		t.Fatalf("backbuffer pixel = %v, want clear color %v", got, want)
	}
}

func TestDo_ContextExpiresWhenLoopIdle(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := a.Do(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do err = %v, want DeadlineExceeded", err)
	}
}

func TestEngine_ExpiredRequestsAreNotApplied(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := a.SetVSync(ctx, false); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("SetVSync err = %v, want DeadlineExceeded", err)
	}
	if err := a.ResizeFramebuffer(ctx, 256, 128); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("ResizeFramebuffer err = %v, want DeadlineExceeded", err)
	}
	if err := a.CloseWindow(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("CloseWindow err = %v, want DeadlineExceeded", err)
	}

	if err := a.Run(context.Background(), 2); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !a.Window().IsVSync() {
		t.Fatal("timed-out SetVSync was applied")
	}
	if spec := a.Framebuffer().Spec(); spec.Width != 800 || spec.Height != 600 {
		t.Fatalf("timed-out resize was applied: %dx%d", spec.Width, spec.Height)
	}
	if a.Window().Closed() || a.Frames() != 2 {
		t.Fatalf("timed-out close was applied: closed=%v frames=%d", a.Window().Closed(), a.Frames())
	}
}
