package x11

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	runCommandOutputFn        = runCommandOutput
	readFileFn                = os.ReadFile
	readDirFn                 = os.ReadDir
	detectSessionX11EnvFn     = detectSessionX11Env
	detectDisplayFromSocketFn = detectDisplayFromSockets
)

// DisplayEnv names the X server to connect to and the cookie file to
// authenticate with.
type DisplayEnv struct {
	Display    string
	XAuthority string
}

// ResolveDisplay picks the display to open. Priority for each value:
// 1) the process environment
// 2) the configured value
// 3) the graphical login session of the current user (loginctl)
// 4) the highest numbered socket in /tmp/.X11-unix (display only)
// 5) ~/.Xauthority (xauthority only)
// It lets the engine start from a shell that has no DISPLAY exported.
func ResolveDisplay(configured DisplayEnv) (DisplayEnv, error) {
	display := strings.TrimSpace(os.Getenv("DISPLAY"))
	xauthority := strings.TrimSpace(os.Getenv("XAUTHORITY"))

	if display == "" {
		display = strings.TrimSpace(configured.Display)
	}
	if xauthority == "" {
		xauthority = strings.TrimSpace(configured.XAuthority)
	}

	if display == "" || xauthority == "" {
		detectedDisplay, detectedXAuthority := detectSessionX11EnvFn()
		if display == "" {
			display = strings.TrimSpace(detectedDisplay)
		}
		if xauthority == "" {
			xauthority = strings.TrimSpace(detectedXAuthority)
		}
	}

	if display == "" {
		display = detectDisplayFromSocketFn("/tmp/.X11-unix")
	}
	if display == "" {
		return DisplayEnv{}, fmt.Errorf("no X display found; export DISPLAY or set x11.display in config (e.g. display: \":1\")")
	}

	if xauthority == "" {
		home := strings.TrimSpace(os.Getenv("HOME"))
		if home == "" {
			if detectedHome, err := os.UserHomeDir(); err == nil {
				home = detectedHome
			}
		}
		if home != "" {
			candidate := filepath.Join(home, ".Xauthority")
			if _, err := os.Stat(candidate); err == nil {
				xauthority = candidate
			}
		}
	}

	return DisplayEnv{Display: display, XAuthority: xauthority}, nil
}

func runCommandOutput(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func detectSessionX11Env() (display string, xauthority string) {
	uid := strconv.Itoa(os.Getuid())
	out, err := runCommandOutputFn("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return "", ""
	}
	for _, sessionID := range parseLoginctlSessions(out, uid) {
		d := loginctlShowSessionProp(sessionID, "Display")
		if d == "" || strings.EqualFold(d, "n/a") {
			continue
		}

		xauth := ""
		leader := loginctlShowSessionProp(sessionID, "Leader")
		if leader != "" && leader != "0" {
			if envMap, err := readProcEnviron(leader); err == nil {
				if ed := strings.TrimSpace(envMap["DISPLAY"]); ed != "" {
					d = ed
				}
				xauth = strings.TrimSpace(envMap["XAUTHORITY"])
			}
		}
		return d, xauth
	}
	return "", ""
}

func parseLoginctlSessions(output string, uid string) []string {
	var sessions []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == uid {
			sessions = append(sessions, fields[0])
		}
	}
	return sessions
}

func loginctlShowSessionProp(sessionID string, prop string) string {
	out, err := runCommandOutputFn("loginctl", "show-session", sessionID, "-p", prop, "--value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func readProcEnviron(pid string) (map[string]string, error) {
	data, err := readFileFn(filepath.Join("/proc", pid, "environ"))
	if err != nil {
		return nil, err
	}

	env := make(map[string]string)
	for _, part := range strings.Split(string(data), "\x00") {
		if k, v, ok := strings.Cut(part, "="); ok {
			env[k] = v
		}
	}
	return env, nil
}

func detectDisplayFromSockets(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}

	var displays []int
	for _, entry := range entries {
		name := entry.Name()
		if len(name) < 2 || name[0] != 'X' {
			continue
		}
		if n, err := strconv.Atoi(name[1:]); err == nil {
			displays = append(displays, n)
		}
	}
	if len(displays) == 0 {
		return ""
	}
	sort.Ints(displays)
	return fmt.Sprintf(":%d", displays[len(displays)-1])
}
