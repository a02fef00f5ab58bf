package tracelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/lumen/internal/event"
)

func newTestLogger(t *testing.T, cfg Config) *Logger {
	t.Helper()
	if cfg.FilePath == "" {
		cfg.FilePath = filepath.Join(t.TempDir(), "nested", "events.log")
	}
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestEventEntry(t *testing.T) {
	l := newTestLogger(t, Config{Enabled: true, Level: LevelInfo, MaxSizeMB: 1, MaxFiles: 2})

	l.Event(7, event.KeyPressed{Key: event.KeyA, RepeatCount: 1})
	l.Event(7, event.MouseMoved{X: 1, Y: 2})
	_ = l.Close()

	got := readLog(t, l.config.FilePath)
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected mouse motion filtered at info level, got %q", got)
	}
	if !strings.HasPrefix(lines[0], "2026-01-02 03:04:05.000 [KEYPRESSED]") {
		t.Fatalf("entry = %q", lines[0])
	}
	if !strings.Contains(lines[0], "frame=7") || !strings.Contains(lines[0], "categories=\"input|keyboard\"") {
		t.Fatalf("entry = %q", lines[0])
	}
}

func TestDebugLevelKeepsMotion(t *testing.T) {
	l := newTestLogger(t, Config{Enabled: true, Level: LevelDebug, MaxSizeMB: 1, MaxFiles: 2})
	l.Event(1, event.MouseMoved{X: 1, Y: 2})
	l.Record(LevelInfo, "VSYNC", map[string]any{"enabled": false})
	_ = l.Close()

	got := readLog(t, l.config.FilePath)
	if !strings.Contains(got, "[MOUSEMOVED]") || !strings.Contains(got, "[VSYNC] enabled=false") {
		t.Fatalf("log = %q", got)
	}
}

func TestDisabledLoggerWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	l, err := New(Config{Enabled: false, FilePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Event(1, event.WindowClose{})
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("disabled logger created %s", path)
	}

	var nilLogger *Logger
	nilLogger.Event(1, event.WindowClose{})
	if err := nilLogger.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}

func TestRotation(t *testing.T) {
	l := newTestLogger(t, Config{Enabled: true, Level: LevelDebug, MaxSizeMB: 1, MaxFiles: 2})
	path := l.config.FilePath

	for round := 0; round < 3; round++ {
		// Pretend the file is full so the next write rotates.
		l.currentSize = 1024 * 1024
		l.Event(uint64(round), event.WindowResize{Width: round + 1, Height: 1})
	}
	_ = l.Close()

	if got := readLog(t, path); !strings.Contains(got, "WindowResize: 3, 1") {
		t.Fatalf("current log = %q", got)
	}
	if got := readLog(t, path+".1"); !strings.Contains(got, "WindowResize: 2, 1") {
		t.Fatalf(".1 = %q", got)
	}
	if got := readLog(t, path+".2"); !strings.Contains(got, "WindowResize: 1, 1") {
		t.Fatalf(".2 = %q", got)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatal("expected no more than MaxFiles rotated files")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"héllo wörld", 8, "héllo..."},
		{"hello", 2, "he"},
		{"hello", 0, "hello"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
