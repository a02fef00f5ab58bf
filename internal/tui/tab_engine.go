package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/lumen/internal/ipc"
)

const pollInterval = time.Second

// Inspector is the engine control surface the dashboard drives.
// *ipc.Client implements it.
type Inspector interface {
	GetStatus() (*ipc.StatusData, error)
	SetVSync(enabled bool) error
	ResizeFramebuffer(width, height uint32) error
	CloseWindow() error
}

var _ Inspector = (*ipc.Client)(nil)

type tickMsg time.Time

type statusMsg struct {
	status *ipc.StatusData
	err    error
}

type actionMsg struct {
	notice string
	err    error
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchStatus(inspector Inspector) tea.Cmd {
	if inspector == nil {
		return nil
	}
	return func() tea.Msg {
		st, err := inspector.GetStatus()
		return statusMsg{status: st, err: err}
	}
}

func runAction(notice string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{notice: notice, err: fn()}
	}
}

// EngineTab shows live engine status and sends inspector commands.
type EngineTab struct {
	inspector Inspector
	status    *ipc.StatusData
	lastErr   string
	notice    string

	width  int
	height int

	resizing  bool
	textInput textinput.Model
}

// NewEngineTab creates an EngineTab bound to inspector.
func NewEngineTab(inspector Inspector) EngineTab {
	ti := textinput.New()
	ti.Placeholder = "e.g. 1920x1080, or 0x0 to follow the window"
	ti.CharLimit = 24
	ti.Width = 40

	return EngineTab{
		inspector: inspector,
		textInput: ti,
	}
}

// Connected reports whether the last status poll reached the engine.
func (e EngineTab) Connected() bool {
	return e.status != nil
}

// Update implements tea.Model.
func (e EngineTab) Update(msg tea.Msg) (EngineTab, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		if msg.err != nil {
			e.status = nil
			e.lastErr = msg.err.Error()
		} else {
			e.status = msg.status
			e.lastErr = ""
		}
		return e, nil

	case actionMsg:
		if msg.err != nil {
			e.notice = ""
			e.lastErr = msg.err.Error()
		} else {
			e.notice = msg.notice
			e.lastErr = ""
		}
		return e, fetchStatus(e.inspector)

	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.height = msg.Height
		return e, nil
	}

	if e.resizing {
		return e.updateResizing(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok || e.status == nil || e.inspector == nil {
		return e, nil
	}
	switch km.String() {
	case "v":
		enabled := !e.status.VSync
		return e, runAction("vsync "+onOff(enabled), func() error {
			return e.inspector.SetVSync(enabled)
		})
	case "r":
		e.resizing = true
		e.textInput.SetValue("")
		e.textInput.Focus()
		return e, textinput.Blink
	case "c":
		return e, runAction("close requested", e.inspector.CloseWindow)
	}
	return e, nil
}

func (e EngineTab) updateResizing(msg tea.Msg) (EngineTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			e.resizing = false
			e.textInput.Blur()
			return e, nil
		case "enter":
			w, h, err := parseDimensions(e.textInput.Value())
			if err != nil {
				e.lastErr = err.Error()
				return e, nil
			}
			e.resizing = false
			e.textInput.Blur()
			notice := fmt.Sprintf("framebuffer resized to %dx%d", w, h)
			if w == 0 {
				notice = "framebuffer follows the window"
			}
			return e, runAction(notice, func() error {
				return e.inspector.ResizeFramebuffer(w, h)
			})
		}
	}

	var cmd tea.Cmd
	e.textInput, cmd = e.textInput.Update(msg)
	return e, cmd
}

// parseDimensions accepts "WxH" or "W H". 0x0 means follow the window.
func parseDimensions(s string) (uint32, uint32, error) {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == 'x' || r == ' ' || r == ','
	})
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("size must look like WIDTHxHEIGHT")
	}
	w, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width %q", fields[0])
	}
	h, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height %q", fields[1])
	}
	if (w == 0) != (h == 0) {
		return 0, 0, fmt.Errorf("width and height must both be zero or both be positive")
	}
	return uint32(w), uint32(h), nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// View implements tea.Model.
func (e EngineTab) View() string {
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	if e.status == nil {
		msg := "Engine not running\n\n" + dimStyle.Render("start it with 'lumen run'")
		if e.lastErr != "" {
			msg += "\n\n" + errStyle.Render(e.lastErr)
		}
		style := lipgloss.NewStyle().
			Width(e.width).
			Height(e.height).
			Foreground(lipgloss.Color("250")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render(msg)
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(22).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	st := e.status
	fb := st.Framebuffer
	fbSize := fmt.Sprintf("%dx%d", fb.Width, fb.Height)
	if fb.FollowsWindow {
		fbSize += dimStyle.Render("  (follows window)")
	}
	lost := "no"
	if fb.Lost {
		lost = errStyle.Render("yes")
	}

	lines := []string{
		"",
		row("Title", st.Title),
		row("Backend", st.Backend),
		row("Window", fmt.Sprintf("%dx%d", st.WindowWidth, st.WindowHeight)),
		row("VSync", onOff(st.VSync)),
		"",
		row("Framebuffer", fbSize),
		row("Samples", strconv.FormatUint(uint64(fb.Samples), 10)),
		row("Attachments", fmt.Sprintf("color=%d depth=%d", fb.ColorAttachment, fb.DepthAttachment)),
		row("Lost", lost),
		"",
		row("Frames", strconv.FormatUint(st.Frames, 10)),
		row("Uptime", (time.Duration(st.UptimeSeconds) * time.Second).String()),
		"",
	}

	if e.resizing {
		lines = append(lines, labelStyle.Render("New size")+e.textInput.View())
		lines = append(lines, dimStyle.Render("  enter: apply  esc: cancel"))
	}
	if e.lastErr != "" {
		lines = append(lines, errStyle.Render("  "+e.lastErr))
	} else if e.notice != "" {
		lines = append(lines, okStyle.Render("  "+e.notice))
	}

	style := lipgloss.NewStyle().
		Width(e.width).
		Height(e.height).
		Padding(1, 2)
	return style.Render(strings.Join(lines, "\n"))
}
