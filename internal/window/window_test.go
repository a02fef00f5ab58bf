package window

import (
	"errors"
	"testing"

	"github.com/1broseidon/lumen/internal/event"
	"github.com/1broseidon/lumen/internal/platform"
	"github.com/1broseidon/lumen/internal/platform/headless"
)

func newTestWindow(t *testing.T, cfg Config) (*Window, *headless.Window, *headless.Backend) {
	t.Helper()
	b := headless.New(headless.Options{})
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	w, err := New(b, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w, b.LastWindow(), b
}

type recorder struct {
	events []event.Event
}

func (r *recorder) handle(e event.Event) { r.events = append(r.events, e) }

func TestNew_AppliesConfig(t *testing.T) {
	w, native, _ := newTestWindow(t, Config{Title: "test", Width: 800, Height: 600, VSync: true})

	if w.Width() != 800 || w.Height() != 600 {
		t.Fatalf("size = %dx%d, want 800x600", w.Width(), w.Height())
	}
	if !w.IsVSync() {
		t.Fatal("expected vsync enabled")
	}
	if native.Context().SwapInterval() != 1 {
		t.Fatalf("swap interval = %d, want 1", native.Context().SwapInterval())
	}
	if native.Title() != "test" {
		t.Fatalf("native title = %q", native.Title())
	}
	if w.Context() == nil || w.Context().Device() == nil {
		t.Fatal("expected an initialized context")
	}
}

func TestDefaultConfigEnablesVSync(t *testing.T) {
	w, _, _ := newTestWindow(t, DefaultConfig())
	if !w.IsVSync() {
		t.Fatal("DefaultConfig must enable vsync")
	}
}

func TestNew_RejectsInvalidSize(t *testing.T) {
	b := headless.New(headless.Options{})
	_ = b.Init()
	for _, cfg := range []Config{
		{Width: 0, Height: 600},
		{Width: 800, Height: 0},
		{Width: -1, Height: 10},
	} {
		if _, err := New(b, cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("New(%+v) err = %v, want ErrInvalidConfig", cfg, err)
		}
	}
	if len(b.Windows()) != 0 {
		t.Fatalf("no native window should be created, got %d", len(b.Windows()))
	}
}

func TestNew_PlatformFailures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("backend not initialized", func(t *testing.T) {
		b := headless.New(headless.Options{})
		if _, err := New(b, DefaultConfig()); !errors.Is(err, ErrPlatformInit) {
			t.Fatalf("err = %v, want ErrPlatformInit", err)
		}
	})

	t.Run("create window", func(t *testing.T) {
		b := headless.New(headless.Options{CreateErr: boom})
		_ = b.Init()
		_, err := New(b, DefaultConfig())
		if !errors.Is(err, ErrPlatformInit) || !errors.Is(err, boom) {
			t.Fatalf("err = %v, want ErrPlatformInit wrapping boom", err)
		}
	})

	t.Run("context init", func(t *testing.T) {
		b := headless.New(headless.Options{ContextErr: boom})
		_ = b.Init()
		_, err := New(b, DefaultConfig())
		if !errors.Is(err, ErrPlatformInit) || !errors.Is(err, boom) {
			t.Fatalf("err = %v, want ErrPlatformInit wrapping boom", err)
		}
		if !b.LastWindow().Destroyed() {
			t.Fatal("native window must be destroyed when the context fails")
		}
	})
}

func TestCallbackMapping(t *testing.T) {
	w, native, _ := newTestWindow(t, DefaultConfig())
	rec := &recorder{}
	w.RegisterEventHandler(rec.handle)

	native.Key(event.KeyA, platform.Press)
	native.Key(event.KeyA, platform.Repeat)
	native.Key(event.KeyA, platform.Release)
	native.MouseButton(event.MouseButtonLeft, platform.Press)
	native.MouseButton(event.MouseButtonLeft, platform.Release)
	native.Scroll(0.5, -1)
	native.CursorPos(10, 20)
	native.Resize(640, 480)
	native.RequestClose()
	native.Char('é')

	if err := w.OnUpdate(); err != nil {
		t.Fatalf("OnUpdate: %v", err)
	}

	want := []event.Event{
		event.KeyPressed{Key: event.KeyA, RepeatCount: 0},
		event.KeyPressed{Key: event.KeyA, RepeatCount: 1},
		event.KeyReleased{Key: event.KeyA},
		event.MouseButtonPressed{Button: event.MouseButtonLeft},
		event.MouseButtonReleased{Button: event.MouseButtonLeft},
		event.MouseScrolled{XOffset: 0.5, YOffset: -1},
		event.MouseMoved{X: 10, Y: 20},
		event.WindowResize{Width: 640, Height: 480},
		event.WindowClose{},
		event.KeyTyped{Codepoint: 'é'},
	}
	if len(rec.events) != len(want) {
		t.Fatalf("got %d events %v, want %d", len(rec.events), rec.events, len(want))
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("event %d = %#v, want %#v", i, rec.events[i], want[i])
		}
	}
}

func TestKeyPressRepeatCounts(t *testing.T) {
	w, native, _ := newTestWindow(t, DefaultConfig())
	rec := &recorder{}
	w.RegisterEventHandler(rec.handle)

	keys := []event.Key{event.KeyA, event.KeyB, event.KeyEscape, event.KeySpace}
	for _, k := range keys {
		native.Key(k, platform.Press)
	}
	_ = w.OnUpdate()

	if len(rec.events) != len(keys) {
		t.Fatalf("got %d events, want %d", len(rec.events), len(keys))
	}
	for i, k := range keys {
		kp, ok := rec.events[i].(event.KeyPressed)
		if !ok {
			t.Fatalf("event %d = %T, want KeyPressed", i, rec.events[i])
		}
		if kp.Key != k || kp.RepeatCount != 0 {
			t.Errorf("event %d = %+v, want key %v repeat 0", i, kp, k)
		}
	}
}

func TestResizeScenario(t *testing.T) {
	w, native, _ := newTestWindow(t, Config{Title: "scenario", Width: 800, Height: 600, VSync: true})

	var sizesSeen [][2]int
	rec := &recorder{}
	w.RegisterEventHandler(func(e event.Event) {
		if _, ok := e.(event.WindowResize); ok {
			sizesSeen = append(sizesSeen, [2]int{w.Width(), w.Height()})
		}
		rec.handle(e)
	})

	native.Resize(1024, 768)
	native.CursorPos(1, 1)

	// Stored size is a cache: it only moves when the callback runs.
	if w.Width() != 800 || w.Height() != 600 {
		t.Fatalf("size before OnUpdate = %dx%d, want cached 800x600", w.Width(), w.Height())
	}

	if err := w.OnUpdate(); err != nil {
		t.Fatalf("OnUpdate: %v", err)
	}

	if w.Width() != 1024 || w.Height() != 768 {
		t.Fatalf("size = %dx%d, want 1024x768", w.Width(), w.Height())
	}
	if len(rec.events) != 2 {
		t.Fatalf("got %d events, want 2", len(rec.events))
	}
	if rec.events[0] != (event.WindowResize{Width: 1024, Height: 768}) {
		t.Fatalf("first event = %#v", rec.events[0])
	}
	if _, ok := rec.events[1].(event.MouseMoved); !ok {
		t.Fatalf("second event = %#v", rec.events[1])
	}
	if len(sizesSeen) != 1 || sizesSeen[0] != [2]int{1024, 768} {
		t.Fatalf("handler saw size %v, want updated size", sizesSeen)
	}
}

func TestSetVSync(t *testing.T) {
	w, native, _ := newTestWindow(t, DefaultConfig())

	w.SetVSync(false)
	if w.IsVSync() {
		t.Fatal("IsVSync = true after SetVSync(false)")
	}
	if native.Context().SwapInterval() != 0 {
		t.Fatalf("swap interval = %d, want 0", native.Context().SwapInterval())
	}

	w.SetVSync(true)
	if !w.IsVSync() {
		t.Fatal("IsVSync = false after SetVSync(true)")
	}
	if native.Context().SwapInterval() != 1 {
		t.Fatalf("swap interval = %d, want 1", native.Context().SwapInterval())
	}
}

func TestRegisterEventHandlerReplaces(t *testing.T) {
	w, native, _ := newTestWindow(t, DefaultConfig())
	first := &recorder{}
	second := &recorder{}

	w.RegisterEventHandler(first.handle)
	native.Key(event.KeyA, platform.Press)
	native.Key(event.KeyB, platform.Press)
	w.RegisterEventHandler(second.handle)
	_ = w.OnUpdate()

	if len(first.events) != 0 {
		t.Fatalf("replaced handler received %d events", len(first.events))
	}
	if len(second.events) != 2 {
		t.Fatalf("new handler received %d events, want 2", len(second.events))
	}
}

func TestHandlerReplacedDuringDispatch(t *testing.T) {
	w, native, _ := newTestWindow(t, DefaultConfig())
	second := &recorder{}
	firstCalls := 0
	w.RegisterEventHandler(func(event.Event) {
		firstCalls++
		w.RegisterEventHandler(second.handle)
	})

	native.Key(event.KeyA, platform.Press)
	native.Key(event.KeyB, platform.Press)
	_ = w.OnUpdate()

	if firstCalls != 1 || len(second.events) != 1 {
		t.Fatalf("first calls = %d, second events = %d; want 1 and 1", firstCalls, len(second.events))
	}
}

func TestOnUpdateReentrant(t *testing.T) {
	w, native, _ := newTestWindow(t, DefaultConfig())
	var inner error
	w.RegisterEventHandler(func(event.Event) {
		inner = w.OnUpdate()
	})
	native.RequestClose()

	if err := w.OnUpdate(); err != nil {
		t.Fatalf("outer OnUpdate: %v", err)
	}
	if !errors.Is(inner, ErrReentrantUpdate) {
		t.Fatalf("inner OnUpdate err = %v, want ErrReentrantUpdate", inner)
	}
	if native.Context().Swaps() != 1 {
		t.Fatalf("swaps = %d, want 1", native.Context().Swaps())
	}
}

func TestOnUpdatePresentsEveryFrame(t *testing.T) {
	w, native, _ := newTestWindow(t, DefaultConfig())
	for i := 0; i < 3; i++ {
		if err := w.OnUpdate(); err != nil {
			t.Fatalf("OnUpdate: %v", err)
		}
	}
	if native.Context().Swaps() != 3 || native.Polls() != 3 {
		t.Fatalf("swaps = %d polls = %d, want 3 and 3", native.Context().Swaps(), native.Polls())
	}
}

func TestClose(t *testing.T) {
	w, native, _ := newTestWindow(t, DefaultConfig())
	rec := &recorder{}
	w.RegisterEventHandler(func(e event.Event) {
		rec.handle(e)
		if _, ok := e.(event.WindowClose); ok {
			w.Close()
		}
	})
	native.RequestClose()
	native.Key(event.KeyA, platform.Press)

	if err := w.OnUpdate(); err != nil {
		t.Fatalf("OnUpdate: %v", err)
	}
	if !native.Destroyed() || !w.Closed() {
		t.Fatal("expected native window destroyed")
	}
	if len(rec.events) != 1 {
		t.Fatalf("got %d events after close, want 1", len(rec.events))
	}
	if native.Context().Swaps() != 0 {
		t.Fatal("closed window must not present")
	}
	if err := w.OnUpdate(); !errors.Is(err, ErrClosed) {
		t.Fatalf("OnUpdate after Close err = %v, want ErrClosed", err)
	}
	w.Close()
}

func TestNoHandlerDoesNotPanic(t *testing.T) {
	w, native, _ := newTestWindow(t, DefaultConfig())
	native.Resize(300, 200)
	if err := w.OnUpdate(); err != nil {
		t.Fatalf("OnUpdate: %v", err)
	}
	if w.Width() != 300 || w.Height() != 200 {
		t.Fatalf("size = %dx%d, want 300x200", w.Width(), w.Height())
	}
}

func TestMultipleWindowsShareBackend(t *testing.T) {
	b := headless.New(headless.Options{})
	_ = b.Init()
	w1, err := New(b, Config{Title: "one", Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w2, err := New(b, Config{Title: "two", Width: 200, Height: 200})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b.Windows()[1].Resize(50, 60)
	_ = w1.OnUpdate()
	_ = w2.OnUpdate()
	if w1.Width() != 100 || w2.Width() != 50 {
		t.Fatalf("widths = %d, %d; want 100, 50", w1.Width(), w2.Width())
	}
	if b.InitCount() != 1 {
		t.Fatalf("InitCount = %d, want 1", b.InitCount())
	}
}
