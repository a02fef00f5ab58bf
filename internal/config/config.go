package config

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendX11      = "x11"
	BackendHeadless = "headless"
)

// MaxDimension bounds every configured width and height. X11 geometry is
// 16 bits wide.
const MaxDimension = 65535

// WindowConfig configures the main window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	VSync  bool   `yaml:"vsync"`
}

// FramebufferConfig configures the off-screen render target.
type FramebufferConfig struct {
	// Width and Height of zero make the framebuffer follow the window size.
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Samples    int    `yaml:"samples"`
	ClearColor string `yaml:"clear_color"`
}

// FollowsWindow reports whether the framebuffer is sized from the window.
func (f FramebufferConfig) FollowsWindow() bool {
	return f.Width == 0 || f.Height == 0
}

// X11Config points the X11 backend at a specific display.
type X11Config struct {
	Display    string `yaml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty"`
}

// LoggingConfig configures diagnostics and the event trace log.
type LoggingConfig struct {
	// Level controls verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// TraceEvents records every engine event in File.
	TraceEvents bool `yaml:"trace_events"`
	// File is the trace log path (default: ~/.local/share/lumen/events.log)
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum trace file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files"`
}

// InspectorConfig configures the control socket.
type InspectorConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Config is the effective configuration.
type Config struct {
	Backend     string            `yaml:"backend"`
	Window      WindowConfig      `yaml:"window"`
	Framebuffer FramebufferConfig `yaml:"framebuffer"`
	X11         X11Config         `yaml:"x11,omitempty"`
	Logging     LoggingConfig     `yaml:"logging"`
	Inspector   InspectorConfig   `yaml:"inspector"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendX11,
		Window: WindowConfig{
			Title:  "Lumen",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Framebuffer: FramebufferConfig{
			Samples:    1,
			ClearColor: "#1f2933",
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
		Inspector: InspectorConfig{Enabled: true},
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendX11, BackendHeadless:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: %s, %s", BackendX11, BackendHeadless)}
	}
	if c.Window.Width <= 0 || c.Window.Width > MaxDimension {
		return &ValidationError{Path: "window.width", Err: fmt.Errorf("width must be in 1..%d", MaxDimension)}
	}
	if c.Window.Height <= 0 || c.Window.Height > MaxDimension {
		return &ValidationError{Path: "window.height", Err: fmt.Errorf("height must be in 1..%d", MaxDimension)}
	}
	if c.Framebuffer.Width < 0 || c.Framebuffer.Width > MaxDimension {
		return &ValidationError{Path: "framebuffer.width", Err: fmt.Errorf("width must be in 0..%d", MaxDimension)}
	}
	if c.Framebuffer.Height < 0 || c.Framebuffer.Height > MaxDimension {
		return &ValidationError{Path: "framebuffer.height", Err: fmt.Errorf("height must be in 0..%d", MaxDimension)}
	}
	if (c.Framebuffer.Width == 0) != (c.Framebuffer.Height == 0) {
		return &ValidationError{Path: "framebuffer", Err: fmt.Errorf("width and height must both be set or both be 0")}
	}
	switch c.Framebuffer.Samples {
	case 1, 2, 4, 8:
	default:
		return &ValidationError{Path: "framebuffer.samples", Err: fmt.Errorf("samples must be one of: 1, 2, 4, 8")}
	}
	if _, err := ParseColor(c.Framebuffer.ClearColor); err != nil {
		return &ValidationError{Path: "framebuffer.clear_color", Err: err}
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return &ValidationError{Path: "logging.level", Err: err}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	return nil
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{}
	}
	cfg := c.Logging
	if cfg.File == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = os.Getenv("HOME")
		}
		if home == "" {
			home = "."
		}
		cfg.File = filepath.Join(home, ".local/share/lumen/events.log")
	} else {
		cfg.File = expandHome(cfg.File)
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// ClearRGBA returns the parsed clear color. Validate guarantees it parses.
func (c *Config) ClearRGBA() color.RGBA {
	rgba, err := ParseColor(c.Framebuffer.ClearColor)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return rgba
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save validates the config and writes it to the standard location.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo validates the config and writes it to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return color.RGBA{}, fmt.Errorf("color %q must look like #rrggbb or #rrggbbaa", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q is not hexadecimal", s)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("level must be one of: debug, info, warn, error")
}
