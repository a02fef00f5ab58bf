package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus         CommandType = "GET_STATUS"
	CommandSetVSync          CommandType = "SET_VSYNC"
	CommandResizeFramebuffer CommandType = "RESIZE_FRAMEBUFFER"
	CommandCloseWindow       CommandType = "CLOSE_WINDOW"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// FramebufferStatus describes the off-screen render target.
type FramebufferStatus struct {
	Width           uint32 `json:"width"`
	Height          uint32 `json:"height"`
	Samples         uint32 `json:"samples"`
	FollowsWindow   bool   `json:"follows_window"`
	ColorAttachment uint32 `json:"color_attachment"`
	DepthAttachment uint32 `json:"depth_attachment"`
	Lost            bool   `json:"lost"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Backend       string            `json:"backend"`
	Title         string            `json:"title"`
	WindowWidth   int               `json:"window_width"`
	WindowHeight  int               `json:"window_height"`
	VSync         bool              `json:"vsync"`
	Framebuffer   FramebufferStatus `json:"framebuffer"`
	Frames        uint64            `json:"frames"`
	UptimeSeconds int64             `json:"uptime_seconds"`
}

// SetVSyncPayload represents the payload for SET_VSYNC
type SetVSyncPayload struct {
	Enabled bool `json:"enabled"`
}

// ResizeFramebufferPayload represents the payload for RESIZE_FRAMEBUFFER
type ResizeFramebufferPayload struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
