package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/lumen/internal/ipc"
	"github.com/1broseidon/lumen/internal/tracelog"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.inspector.GetStatus()
	if err != nil {
		s.logFailure("get_status", err)
		return nil, GetStatusOutput{}, err
	}
	return nil, statusOutput(status), nil
}

func (s *Server) handleSetVSync(_ context.Context, _ *mcpsdk.CallToolRequest, args SetVSyncInput) (*mcpsdk.CallToolResult, SetVSyncOutput, error) {
	if err := s.inspector.SetVSync(args.Enabled); err != nil {
		s.logFailure("set_vsync", err)
		return nil, SetVSyncOutput{}, err
	}
	s.logger.Record(tracelog.LevelInfo, "MCP_SET_VSYNC", map[string]any{"enabled": args.Enabled})
	return nil, SetVSyncOutput{VSync: args.Enabled}, nil
}

func (s *Server) handleResizeFramebuffer(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeFramebufferInput) (*mcpsdk.CallToolResult, ResizeFramebufferOutput, error) {
	if (args.Width == 0) != (args.Height == 0) {
		return nil, ResizeFramebufferOutput{}, fmt.Errorf("width and height must both be zero or both be positive, got %dx%d", args.Width, args.Height)
	}
	if err := s.inspector.ResizeFramebuffer(args.Width, args.Height); err != nil {
		s.logFailure("resize_framebuffer", err)
		return nil, ResizeFramebufferOutput{}, err
	}

	// Report the size the engine settled on; 0x0 resolves to the window size.
	status, err := s.inspector.GetStatus()
	if err != nil {
		return nil, ResizeFramebufferOutput{}, fmt.Errorf("framebuffer resized but status unavailable: %w", err)
	}
	fb := status.Framebuffer
	s.logger.Record(tracelog.LevelInfo, "MCP_RESIZE_FRAMEBUFFER", map[string]any{
		"width":  fb.Width,
		"height": fb.Height,
	})
	return nil, ResizeFramebufferOutput{
		Width:           fb.Width,
		Height:          fb.Height,
		ColorAttachment: fb.ColorAttachment,
		DepthAttachment: fb.DepthAttachment,
	}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, _ CloseWindowInput) (*mcpsdk.CallToolResult, CloseWindowOutput, error) {
	if err := s.inspector.CloseWindow(); err != nil {
		s.logFailure("close_window", err)
		return nil, CloseWindowOutput{}, err
	}
	s.logger.Record(tracelog.LevelInfo, "MCP_CLOSE_WINDOW", nil)
	return nil, CloseWindowOutput{Closed: true}, nil
}

func (s *Server) logFailure(tool string, err error) {
	s.logger.Record(tracelog.LevelError, "MCP_TOOL_FAILED", map[string]any{
		"tool":  tool,
		"error": tracelog.Truncate(err.Error(), 200),
	})
}

func statusOutput(st *ipc.StatusData) GetStatusOutput {
	return GetStatusOutput{
		Backend:      st.Backend,
		Title:        st.Title,
		WindowWidth:  st.WindowWidth,
		WindowHeight: st.WindowHeight,
		VSync:        st.VSync,
		Framebuffer: FramebufferInfo{
			Width:           st.Framebuffer.Width,
			Height:          st.Framebuffer.Height,
			Samples:         st.Framebuffer.Samples,
			FollowsWindow:   st.Framebuffer.FollowsWindow,
			ColorAttachment: st.Framebuffer.ColorAttachment,
			DepthAttachment: st.Framebuffer.DepthAttachment,
			Lost:            st.Framebuffer.Lost,
		},
		Frames:        st.Frames,
		UptimeSeconds: st.UptimeSeconds,
	}
}
