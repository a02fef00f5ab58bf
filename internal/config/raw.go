package config

// Raw types mirror the YAML file. Pointer fields distinguish "absent" from
// the zero value so defaults only fill what the file leaves out.

type RawWindow struct {
	Title  *string `yaml:"title"`
	Width  *int    `yaml:"width"`
	Height *int    `yaml:"height"`
	VSync  *bool   `yaml:"vsync"`
}

type RawFramebuffer struct {
	Width      *int    `yaml:"width"`
	Height     *int    `yaml:"height"`
	Samples    *int    `yaml:"samples"`
	ClearColor *string `yaml:"clear_color"`
}

type RawX11 struct {
	Display    *string `yaml:"display"`
	XAuthority *string `yaml:"xauthority"`
}

type RawLogging struct {
	Level       *string `yaml:"level"`
	TraceEvents *bool   `yaml:"trace_events"`
	File        *string `yaml:"file"`
	MaxSizeMB   *int    `yaml:"max_size_mb"`
	MaxFiles    *int    `yaml:"max_files"`
}

type RawInspector struct {
	Enabled *bool `yaml:"enabled"`
}

type RawConfig struct {
	Backend     *string         `yaml:"backend"`
	Window      *RawWindow      `yaml:"window"`
	Framebuffer *RawFramebuffer `yaml:"framebuffer"`
	X11         *RawX11         `yaml:"x11"`
	Logging     *RawLogging     `yaml:"logging"`
	Inspector   *RawInspector   `yaml:"inspector"`
}
