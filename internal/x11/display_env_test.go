package x11

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestResolveDisplay_UsesProcessEnv(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return ":99", "/tmp/should-not-be-used" },
		func(string) string { return ":88" },
	)
	defer restore()
	t.Setenv("DISPLAY", ":7")
	t.Setenv("XAUTHORITY", "/tmp/xauth-existing")

	got, err := ResolveDisplay(DisplayEnv{Display: ":1", XAuthority: "/tmp/cfg"})
	if err != nil {
		t.Fatalf("ResolveDisplay returned error: %v", err)
	}
	if got.Display != ":7" || got.XAuthority != "/tmp/xauth-existing" {
		t.Fatalf("ResolveDisplay = %+v", got)
	}
}

func TestResolveDisplay_UsesConfigAndFallsBackToHomeXAuthority(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return "", "" },
		func(string) string { return "" },
	)
	defer restore()

	home := t.TempDir()
	xauth := filepath.Join(home, ".Xauthority")
	if err := os.WriteFile(xauth, []byte("cookie"), 0600); err != nil {
		t.Fatalf("write xauthority: %v", err)
	}
	t.Setenv("DISPLAY", "")
	t.Setenv("XAUTHORITY", "")
	t.Setenv("HOME", home)

	got, err := ResolveDisplay(DisplayEnv{Display: ":1"})
	if err != nil {
		t.Fatalf("ResolveDisplay returned error: %v", err)
	}
	if got.Display != ":1" {
		t.Fatalf("Display = %q, want %q", got.Display, ":1")
	}
	if got.XAuthority != xauth {
		t.Fatalf("XAuthority = %q, want %q", got.XAuthority, xauth)
	}
}

func TestResolveDisplay_UsesDetectedSession(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return ":5", "/tmp/xauth-detected" },
		func(string) string { return ":9" },
	)
	defer restore()
	t.Setenv("DISPLAY", "")
	t.Setenv("XAUTHORITY", "")
	t.Setenv("HOME", t.TempDir())

	got, err := ResolveDisplay(DisplayEnv{})
	if err != nil {
		t.Fatalf("ResolveDisplay returned error: %v", err)
	}
	if got.Display != ":5" || got.XAuthority != "/tmp/xauth-detected" {
		t.Fatalf("ResolveDisplay = %+v", got)
	}
}

func TestResolveDisplay_FallsBackToSocket(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return "", "" },
		func(string) string { return ":3" },
	)
	defer restore()
	t.Setenv("DISPLAY", "")
	t.Setenv("XAUTHORITY", "")
	t.Setenv("HOME", t.TempDir())

	got, err := ResolveDisplay(DisplayEnv{})
	if err != nil {
		t.Fatalf("ResolveDisplay returned error: %v", err)
	}
	if got.Display != ":3" || got.XAuthority != "" {
		t.Fatalf("ResolveDisplay = %+v", got)
	}
}

func TestResolveDisplay_ErrorWhenUnavailable(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return "", "" },
		func(string) string { return "" },
	)
	defer restore()
	t.Setenv("DISPLAY", "")
	t.Setenv("XAUTHORITY", "")
	t.Setenv("HOME", t.TempDir())

	_, err := ResolveDisplay(DisplayEnv{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "no X display found") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDetectDisplayFromSockets(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"X0", "X2", "not-a-display"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if got := detectDisplayFromSockets(dir); got != ":2" {
		t.Fatalf("detectDisplayFromSockets = %q, want %q", got, ":2")
	}
	if got := detectDisplayFromSockets(filepath.Join(dir, "missing")); got != "" {
		t.Fatalf("detectDisplayFromSockets(missing) = %q, want empty", got)
	}
}

func TestParseLoginctlSessions(t *testing.T) {
	out := strings.Join([]string{
		"1 1000 george seat0",
		"2 1001 alice seat0",
		"3 1000 george seat1",
		"",
	}, "\n")
	got := parseLoginctlSessions(out, "1000")
	if len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Fatalf("parseLoginctlSessions = %v, want [1 3]", got)
	}
}

func TestDetectSessionX11Env_ReadsLeaderEnviron(t *testing.T) {
	origRun, origRead := runCommandOutputFn, readFileFn
	defer func() { runCommandOutputFn, readFileFn = origRun, origRead }()

	uid := os.Getuid()
	runCommandOutputFn = func(name string, args ...string) (string, error) {
		if len(args) > 0 && args[0] == "list-sessions" {
			return "4 " + strconv.Itoa(uid) + " user seat0\n", nil
		}
		switch args[len(args)-2] {
		case "Display":
			return ":0\n", nil
		case "Leader":
			return "1234\n", nil
		}
		return "", nil
	}
	readFileFn = func(path string) ([]byte, error) {
		if path != "/proc/1234/environ" {
			t.Fatalf("unexpected path %q", path)
		}
		return []byte("HOME=/home/u\x00DISPLAY=:1\x00XAUTHORITY=/run/user/x/auth\x00"), nil
	}

	display, xauth := detectSessionX11Env()
	if display != ":1" || xauth != "/run/user/x/auth" {
		t.Fatalf("detectSessionX11Env = %q, %q", display, xauth)
	}
}

func stubDetectFns(
	detectSession func() (string, string),
	detectSocket func(string) string,
) func() {
	origSession := detectSessionX11EnvFn
	origSocket := detectDisplayFromSocketFn
	detectSessionX11EnvFn = detectSession
	detectDisplayFromSocketFn = detectSocket
	return func() {
		detectSessionX11EnvFn = origSession
		detectDisplayFromSocketFn = origSocket
	}
}
