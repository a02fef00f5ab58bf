package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/lumen/internal/config"
)

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	cfg        *config.Config
	loadErr    error
	inspector  Inspector

	// Tab navigation
	activeTab Tab

	// Sub-models
	engineTab   EngineTab
	settingsTab SettingsTab

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	// Terminal dimensions
	width  int
	height int
}

func newModel(opts Options) model {
	m := model{
		configPath: opts.ConfigPath,
		inspector:  opts.Inspector,
		activeTab:  opts.StartTab,
	}

	res, err := config.LoadFromPath(m.configPath)
	if err != nil {
		// Edit from defaults rather than refusing to start; saving overwrites
		// the broken file.
		m.loadErr = err
		m.cfg = config.DefaultConfig()
	} else {
		m.cfg = res.Config
	}
	m.originalConfig = cloneConfig(m.cfg)

	m.engineTab = NewEngineTab(m.inspector)
	m.settingsTab = NewSettingsTab(m.cfg)
	return m
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(fetchStatus(m.inspector), tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Engine polling runs regardless of which tab or overlay has focus.
	switch msg := msg.(type) {
	case tickMsg:
		return m, tea.Batch(fetchStatus(m.inspector), tick())
	case statusMsg, actionMsg:
		var cmd tea.Cmd
		m.engineTab, cmd = m.engineTab.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.engineTab, _ = m.engineTab.Update(subMsg)
		m.settingsTab, _ = m.settingsTab.Update(subMsg)
		return m, nil
	}

	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok {
			if km.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(km, m.cfg, m.configPath, m.inspector, m.engineTab.Connected())
			// After successful save, update the original snapshot
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.cfg)
				m.loadErr = nil
			}
		}
		return m, nil
	}

	// ctrl+s triggers save overlay from any context (including form editing)
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		m.saveOverlay.Show(m.originalConfig, m.cfg)
		return m, nil
	}

	// When a sub-model captures input, delegate all messages to it
	// (the form/input consumes keys; only ctrl+c escapes to quit)
	capturing := (m.activeTab == TabSettings && m.settingsTab.editing) ||
		(m.activeTab == TabEngine && m.engineTab.resizing)
	if capturing {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.delegate(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabEngine
			return m, nil
		case "2":
			m.activeTab = TabSettings
			return m, nil
		}
	}

	return m.delegate(msg)
}

func (m model) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case TabEngine:
		m.engineTab, cmd = m.engineTab.Update(msg)
	case TabSettings:
		m.settingsTab, cmd = m.settingsTab.Update(msg)
	}
	return m, cmd
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.engineTab.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.activeTab, m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch {
	case m.saveOverlay.Active():
		content = m.saveOverlay.View(m.width, contentHeight)
	case m.activeTab == TabEngine:
		content = m.engineTab.View()
	default:
		content = m.settingsTab.View()
		if m.loadErr != nil && !m.settingsTab.editing {
			warn := lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Padding(0, 2).
				Render("config error, showing defaults: " + m.loadErr.Error())
			content = lipgloss.JoinVertical(lipgloss.Left, warn, content)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
