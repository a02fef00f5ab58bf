package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/lumen/internal/runtimepath"
)

// Client handles IPC communication with a running engine
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for the socket at path.
func NewClientWithSocket(path string) *Client {
	return &Client{
		socketPath: path,
		timeout:    DefaultRequestTimeout + time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to engine: %w (is `lumen run` active?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("engine error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) sendPayload(cmd CommandType, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
	}
	_, err = c.sendRequest(&Request{Command: cmd, Payload: data})
	return err
}

// GetStatus retrieves engine status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// SetVSync switches vertical sync on the running window.
func (c *Client) SetVSync(enabled bool) error {
	return c.sendPayload(CommandSetVSync, SetVSyncPayload{Enabled: enabled})
}

// ResizeFramebuffer resizes the off-screen framebuffer. A size of 0x0 makes
// it follow the window again.
func (c *Client) ResizeFramebuffer(width, height uint32) error {
	return c.sendPayload(CommandResizeFramebuffer, ResizeFramebufferPayload{Width: width, Height: height})
}

// CloseWindow asks the engine to close its window and exit the frame loop.
func (c *Client) CloseWindow() error {
	_, err := c.sendRequest(&Request{Command: CommandCloseWindow})
	return err
}

// Ping checks if the engine is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
