package config

import "fmt"

// Explain returns the effective value at a dotted path such as
// "window.vsync" and where it came from.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	lookup, ok := valueLookups[path]
	if !ok {
		return nil, Source{}, fmt.Errorf("unknown path: %s", path)
	}
	value := lookup(res.Config)

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

var valueLookups = map[string]func(*Config) any{
	"backend":                 func(c *Config) any { return c.Backend },
	"window.title":            func(c *Config) any { return c.Window.Title },
	"window.width":            func(c *Config) any { return c.Window.Width },
	"window.height":           func(c *Config) any { return c.Window.Height },
	"window.vsync":            func(c *Config) any { return c.Window.VSync },
	"framebuffer.width":       func(c *Config) any { return c.Framebuffer.Width },
	"framebuffer.height":      func(c *Config) any { return c.Framebuffer.Height },
	"framebuffer.samples":     func(c *Config) any { return c.Framebuffer.Samples },
	"framebuffer.clear_color": func(c *Config) any { return c.Framebuffer.ClearColor },
	"x11.display":             func(c *Config) any { return c.X11.Display },
	"x11.xauthority":          func(c *Config) any { return c.X11.XAuthority },
	"logging.level":           func(c *Config) any { return c.Logging.Level },
	"logging.trace_events":    func(c *Config) any { return c.Logging.TraceEvents },
	"logging.file":            func(c *Config) any { return c.GetLoggingConfig().File },
	"logging.max_size_mb":     func(c *Config) any { return c.Logging.MaxSizeMB },
	"logging.max_files":       func(c *Config) any { return c.Logging.MaxFiles },
	"inspector.enabled":       func(c *Config) any { return c.Inspector.Enabled },
}
