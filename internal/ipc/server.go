package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/lumen/internal/runtimepath"
)

// Engine is the running engine as seen by the inspector. Implementations
// must be safe to call from the connection goroutines.
type Engine interface {
	Status(ctx context.Context) (StatusData, error)
	SetVSync(ctx context.Context, enabled bool) error
	ResizeFramebuffer(ctx context.Context, width, height uint32) error
	CloseWindow(ctx context.Context) error
}

// DefaultRequestTimeout bounds how long a request waits for the engine.
const DefaultRequestTimeout = 5 * time.Second

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	engine       Engine
	timeout      time.Duration
	logger       *slog.Logger
	wg           sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithSocketPath overrides the socket location.
func WithSocketPath(path string) ServerOption {
	return func(s *Server) { s.socketPath = path }
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRequestTimeout bounds how long a request waits for the engine.
func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.timeout = d }
}

// NewServer creates a new IPC server
func NewServer(engine Engine, opts ...ServerOption) (*Server, error) {
	s := &Server{
		engine:  engine,
		timeout: DefaultRequestTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.socketPath == "" {
		socketPath, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		s.socketPath = socketPath
	}

	// Remove a stale socket left by a previous run.
	os.Remove(s.socketPath)

	return s, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection reads one request line and writes one response line.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.writeResponse(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.writeResponse(conn, s.handleCommand(ctx, req))
}

func (s *Server) writeResponse(conn net.Conn, resp *Response) {
	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)
	switch req.Command {
	case CommandGetStatus:
		status, err := s.engine.Status(ctx)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return okResponse(status)
	case CommandSetVSync:
		var payload SetVSyncPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return NewErrorResponse(err.Error())
		}
		if err := s.engine.SetVSync(ctx, payload.Enabled); err != nil {
			return NewErrorResponse(err.Error())
		}
		return okResponse(nil)
	case CommandResizeFramebuffer:
		var payload ResizeFramebufferPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return NewErrorResponse(err.Error())
		}
		if err := s.engine.ResizeFramebuffer(ctx, payload.Width, payload.Height); err != nil {
			return NewErrorResponse(err.Error())
		}
		return okResponse(nil)
	case CommandCloseWindow:
		if err := s.engine.CloseWindow(ctx); err != nil {
			return NewErrorResponse(err.Error())
		}
		return okResponse(nil)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func decodePayload(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func okResponse(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// Stop closes the listener, waits for in-flight requests and removes the
// socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
