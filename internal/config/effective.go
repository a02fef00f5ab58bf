package config

import "fmt"

// ValidationError reports an invalid setting, with the file position it came
// from when known.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig overlays raw onto the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	set(&cfg.Backend, raw.Backend)
	if w := raw.Window; w != nil {
		set(&cfg.Window.Title, w.Title)
		set(&cfg.Window.Width, w.Width)
		set(&cfg.Window.Height, w.Height)
		set(&cfg.Window.VSync, w.VSync)
	}
	if fb := raw.Framebuffer; fb != nil {
		set(&cfg.Framebuffer.Width, fb.Width)
		set(&cfg.Framebuffer.Height, fb.Height)
		set(&cfg.Framebuffer.Samples, fb.Samples)
		set(&cfg.Framebuffer.ClearColor, fb.ClearColor)
	}
	if x := raw.X11; x != nil {
		set(&cfg.X11.Display, x.Display)
		set(&cfg.X11.XAuthority, x.XAuthority)
	}
	if l := raw.Logging; l != nil {
		set(&cfg.Logging.Level, l.Level)
		set(&cfg.Logging.TraceEvents, l.TraceEvents)
		set(&cfg.Logging.File, l.File)
		set(&cfg.Logging.MaxSizeMB, l.MaxSizeMB)
		set(&cfg.Logging.MaxFiles, l.MaxFiles)
	}
	if i := raw.Inspector; i != nil {
		set(&cfg.Inspector.Enabled, i.Enabled)
	}
	return cfg
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
