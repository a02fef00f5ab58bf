package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/lumen/internal/config"
)

// SettingsTab is the sub-model for the config editor tab.
type SettingsTab struct {
	cfg *config.Config

	// Display dimensions
	width  int
	height int

	// Edit mode
	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fBackend     string
	fTitle       string
	fWidth       string
	fHeight      string
	fVSync       bool
	fFBWidth     string
	fFBHeight    string
	fSamples     string
	fClearColor  string
	fLogLevel    string
	fTraceEvents bool
	fInspector   bool
}

// NewSettingsTab creates a SettingsTab from the loaded config.
func NewSettingsTab(cfg *config.Config) SettingsTab {
	return SettingsTab{cfg: cfg}
}

// Update implements tea.Model.
func (s SettingsTab) Update(msg tea.Msg) (SettingsTab, tea.Cmd) {
	if s.editing {
		return s.updateEditing(msg)
	}
	return s.updateDisplay(msg)
}

func (s SettingsTab) updateDisplay(msg tea.Msg) (SettingsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" && s.cfg != nil {
			s.startEditing()
			return s, s.form.Init()
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}
	return s, nil
}

func (s SettingsTab) updateEditing(msg tea.Msg) (SettingsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			s.editing = false
			s.form = nil
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.applyForm()
		s.editing = false
		s.form = nil
		return s, nil
	}

	return s, cmd
}

func (s *SettingsTab) loadFields() {
	cfg := s.cfg
	s.fBackend = cfg.Backend
	s.fTitle = cfg.Window.Title
	s.fWidth = strconv.Itoa(cfg.Window.Width)
	s.fHeight = strconv.Itoa(cfg.Window.Height)
	s.fVSync = cfg.Window.VSync
	s.fFBWidth = strconv.Itoa(cfg.Framebuffer.Width)
	s.fFBHeight = strconv.Itoa(cfg.Framebuffer.Height)
	s.fSamples = strconv.Itoa(cfg.Framebuffer.Samples)
	s.fClearColor = cfg.Framebuffer.ClearColor
	s.fLogLevel = cfg.Logging.Level
	s.fTraceEvents = cfg.Logging.TraceEvents
	s.fInspector = cfg.Inspector.Enabled
}

func (s *SettingsTab) startEditing() {
	s.loadFields()

	w := s.width - 4
	if w < 40 {
		w = 40
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("backend").
				Title("Backend").
				Description("Windowing backend used by 'lumen run'").
				Options(
					huh.NewOption(config.BackendX11, config.BackendX11),
					huh.NewOption(config.BackendHeadless, config.BackendHeadless),
				).
				Value(&s.fBackend),

			huh.NewInput().
				Key("title").
				Title("Window Title").
				Value(&s.fTitle),

			huh.NewInput().
				Key("width").
				Title("Window Width").
				Validate(validateInt(1)).
				Value(&s.fWidth),

			huh.NewInput().
				Key("height").
				Title("Window Height").
				Validate(validateInt(1)).
				Value(&s.fHeight),

			huh.NewConfirm().
				Key("vsync").
				Title("VSync").
				Value(&s.fVSync),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("fb_width").
				Title("Framebuffer Width").
				Description("0 follows the window").
				Validate(validateInt(0)).
				Value(&s.fFBWidth),
			huh.NewInput().
				Key("fb_height").
				Title("Framebuffer Height").
				Description("0 follows the window").
				Validate(validateInt(0)).
				Value(&s.fFBHeight),
			huh.NewInput().
				Key("samples").
				Title("Samples").
				Validate(validateInt(1)).
				Value(&s.fSamples),
			huh.NewInput().
				Key("clear_color").
				Title("Clear Color").
				Description("#rrggbb or #rrggbbaa").
				Validate(func(v string) error {
					_, err := config.ParseColor(v)
					return err
				}).
				Value(&s.fClearColor),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&s.fLogLevel),
			huh.NewConfirm().
				Key("trace_events").
				Title("Trace Events").
				Description("Record every engine event in the trace log").
				Value(&s.fTraceEvents),
			huh.NewConfirm().
				Key("inspector").
				Title("Inspector Socket").
				Description("Accept status and control requests while running").
				Value(&s.fInspector),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	s.editing = true
}

func validateInt(min int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		if n < min {
			return fmt.Errorf("must be >= %d", min)
		}
		return nil
	}
}

func (s *SettingsTab) applyForm() {
	if s.cfg == nil {
		return
	}

	if s.fBackend != "" {
		s.cfg.Backend = s.fBackend
	}
	s.cfg.Window.Title = s.fTitle
	if v, err := strconv.Atoi(s.fWidth); err == nil && v > 0 {
		s.cfg.Window.Width = v
	}
	if v, err := strconv.Atoi(s.fHeight); err == nil && v > 0 {
		s.cfg.Window.Height = v
	}
	s.cfg.Window.VSync = s.fVSync
	if v, err := strconv.Atoi(s.fFBWidth); err == nil && v >= 0 {
		s.cfg.Framebuffer.Width = v
	}
	if v, err := strconv.Atoi(s.fFBHeight); err == nil && v >= 0 {
		s.cfg.Framebuffer.Height = v
	}
	if v, err := strconv.Atoi(s.fSamples); err == nil && v > 0 {
		s.cfg.Framebuffer.Samples = v
	}
	if _, err := config.ParseColor(s.fClearColor); err == nil {
		s.cfg.Framebuffer.ClearColor = s.fClearColor
	}
	if s.fLogLevel != "" {
		s.cfg.Logging.Level = s.fLogLevel
	}
	s.cfg.Logging.TraceEvents = s.fTraceEvents
	s.cfg.Inspector.Enabled = s.fInspector
}

// View implements tea.Model.
func (s SettingsTab) View() string {
	if s.editing && s.form != nil {
		return s.viewEditing()
	}
	return s.viewDisplay()
}

func (s SettingsTab) viewDisplay() string {
	cfg := s.cfg
	if cfg == nil {
		style := lipgloss.NewStyle().
			Width(s.width).
			Height(s.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("No config loaded")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(22).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	fbSize := fmt.Sprintf("%dx%d", cfg.Framebuffer.Width, cfg.Framebuffer.Height)
	if cfg.Framebuffer.FollowsWindow() {
		fbSize = "(follows window)"
	}

	lines := []string{
		"",
		row("Backend", cfg.Backend),
		row("Window Title", cfg.Window.Title),
		row("Window Size", fmt.Sprintf("%dx%d", cfg.Window.Width, cfg.Window.Height)),
		row("VSync", onOff(cfg.Window.VSync)),
		"",
		row("Framebuffer", fbSize),
		row("Samples", strconv.Itoa(cfg.Framebuffer.Samples)),
		row("Clear Color", cfg.Framebuffer.ClearColor),
		"",
		row("Log Level", cfg.Logging.Level),
		row("Trace Events", onOff(cfg.Logging.TraceEvents)),
		row("Inspector", onOff(cfg.Inspector.Enabled)),
		"",
		dimStyle.Render("  Press 'e' to edit settings"),
	}

	content := strings.Join(lines, "\n")

	contentStyle := lipgloss.NewStyle().
		Width(s.width).
		Height(s.height).
		Padding(1, 2)

	return contentStyle.Render(content)
}

func (s SettingsTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	content := header + "\n\n" + s.form.View()

	style := lipgloss.NewStyle().
		Width(s.width).
		Height(s.height).
		Padding(1, 2)

	return style.Render(content)
}
