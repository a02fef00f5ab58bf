// Package tui is the interactive terminal dashboard behind 'lumen top'. It
// polls a running engine over the inspector socket and edits the config file.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/lumen/internal/config"
)

// Options configures the dashboard.
type Options struct {
	// ConfigPath is the file the Settings tab edits. Empty selects the
	// default location.
	ConfigPath string
	// Inspector reaches the running engine. nil shows the engine as stopped.
	Inspector Inspector
	StartTab  Tab
}

// Run starts the dashboard and blocks until the user quits.
func Run(opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	if opts.ConfigPath == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		opts.ConfigPath = path
	}

	p := tea.NewProgram(newModel(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
