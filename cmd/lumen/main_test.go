package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/lumen/internal/config"
	"github.com/1broseidon/lumen/internal/event"
	"github.com/1broseidon/lumen/internal/ipc"
	"github.com/1broseidon/lumen/internal/tracelog"
	"github.com/1broseidon/lumen/internal/window"
)

func TestParseOnOff(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{in: "on", want: true},
		{in: "true", want: true},
		{in: "1", want: true},
		{in: "off"},
		{in: "false"},
		{in: "0"},
		{in: "maybe", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseOnOff(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseOnOff(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseOnOff(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		w, h         string
		wantW, wantH uint32
		wantErr      bool
	}{
		{w: "1024", h: "768", wantW: 1024, wantH: 768},
		{w: "0", h: "0"},
		{w: "0", h: "10", wantErr: true},
		{w: "-1", h: "10", wantErr: true},
		{w: "wide", h: "10", wantErr: true},
		{w: "10", h: "99999999999", wantErr: true},
	}
	for _, tt := range tests {
		w, h, err := parseSize(tt.w, tt.h)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSize(%q, %q) err = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			continue
		}
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("parseSize(%q, %q) = %dx%d, want %dx%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestFormatEcho(t *testing.T) {
	line := formatEcho(7, event.KeyPressed{Key: event.KeyA, RepeatCount: 1}, 0)
	if !strings.Contains(line, "[     7]") || !strings.Contains(line, "KeyPressed: A (1 repeats)") {
		t.Fatalf("formatEcho = %q", line)
	}

	short := formatEcho(7, event.KeyPressed{Key: event.KeyA, RepeatCount: 1}, 12)
	if len([]rune(short)) != 12 || !strings.HasSuffix(short, "...") {
		t.Fatalf("truncated formatEcho = %q", short)
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{src: config.Source{Kind: config.SourceDefault}, want: "default"},
		{src: config.Source{Kind: config.SourceFile}, want: "file"},
		{src: config.Source{Kind: config.SourceFile, File: "/c.yaml"}, want: "file:/c.yaml"},
		{src: config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, want: "file:/c.yaml:3:5"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, &ipc.StatusData{
		Backend:      "x11",
		Title:        "Lumen",
		WindowWidth:  1280,
		WindowHeight: 720,
		VSync:        true,
		Framebuffer:  ipc.FramebufferStatus{Width: 1280, Height: 720, Samples: 1, FollowsWindow: true, ColorAttachment: 3, DepthAttachment: 4},
		Frames:       600,
	})
	out := buf.String()
	for _, want := range []string{"window:          1280x720", "vsync:           true", "color=3 depth=4", "frames:          600"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "framebuffer_lost") {
		t.Errorf("status output should not report loss:\n%s", out)
	}
}

func TestExitPlatformInitClosesTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	trace, err := tracelog.New(tracelog.Config{Enabled: true, Level: tracelog.LevelDebug, FilePath: path})
	if err != nil {
		t.Fatalf("open trace: %v", err)
	}

	var fatal string
	orig := fatalf
	fatalf = func(format string, args ...any) { fatal = fmt.Sprintf(format, args...) }
	t.Cleanup(func() { fatalf = orig })

	exitPlatformInit(trace, fmt.Errorf("%w: x11: no display", window.ErrPlatformInit))

	if !strings.Contains(fatal, "Failed to start window system") {
		t.Fatalf("fatal message = %q", fatal)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	if !strings.Contains(string(before), "[PLATFORM_INIT]") {
		t.Fatalf("trace missing failure entry:\n%s", before)
	}

	trace.Record(tracelog.LevelError, "AFTER", nil)
	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Fatal("trace should be closed before the fatal exit")
	}

	exitPlatformInit(nil, window.ErrPlatformInit)
}
