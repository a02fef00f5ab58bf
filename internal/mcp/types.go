package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// FramebufferInfo describes the off-screen render target.
type FramebufferInfo struct {
	Width           uint32 `json:"width"`
	Height          uint32 `json:"height"`
	Samples         uint32 `json:"samples"`
	FollowsWindow   bool   `json:"follows_window"`
	ColorAttachment uint32 `json:"color_attachment"`
	DepthAttachment uint32 `json:"depth_attachment"`
	Lost            bool   `json:"lost"`
}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Backend       string          `json:"backend"`
	Title         string          `json:"title"`
	WindowWidth   int             `json:"window_width"`
	WindowHeight  int             `json:"window_height"`
	VSync         bool            `json:"vsync"`
	Framebuffer   FramebufferInfo `json:"framebuffer"`
	Frames        uint64          `json:"frames"`
	UptimeSeconds int64           `json:"uptime_seconds"`
}

// SetVSyncInput is the input for the set_vsync tool.
type SetVSyncInput struct {
	Enabled bool `json:"enabled" jsonschema:"required,true to wait for vertical blank on every buffer swap, false to present immediately"`
}

// SetVSyncOutput is the output for the set_vsync tool.
type SetVSyncOutput struct {
	VSync bool `json:"vsync"`
}

// ResizeFramebufferInput is the input for the resize_framebuffer tool.
type ResizeFramebufferInput struct {
	Width  uint32 `json:"width" jsonschema:"New framebuffer width in pixels. 0 together with height 0 makes the framebuffer follow the window size again."`
	Height uint32 `json:"height" jsonschema:"New framebuffer height in pixels."`
}

// ResizeFramebufferOutput is the output for the resize_framebuffer tool.
type ResizeFramebufferOutput struct {
	Width           uint32 `json:"width"`
	Height          uint32 `json:"height"`
	ColorAttachment uint32 `json:"color_attachment"`
	DepthAttachment uint32 `json:"depth_attachment"`
}

// CloseWindowInput is the input for the close_window tool.
type CloseWindowInput struct{}

// CloseWindowOutput is the output for the close_window tool.
type CloseWindowOutput struct {
	Closed bool `json:"closed"`
}
